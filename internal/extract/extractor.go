// Package extract asks an LLM for the structured fields of an assembled
// letter payload and validates what comes back.
package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/resilience"
	"github.com/sells-group/oficio-cli/pkg/anthropic"
)

// Request is one extraction call: the bounded payload plus what the engine
// already decided about the letter.
type Request struct {
	Document         string
	Payload          string
	HasAnnex         bool
	HasStatus        bool
	TitleOrderNumber string
	Rejected         bool
	RejectionReason  string
}

// FieldExtractor turns a payload into structured fields.
type FieldExtractor interface {
	Extract(ctx context.Context, req Request) (*model.Fields, error)
}

// AnthropicExtractor implements FieldExtractor over the Anthropic API.
type AnthropicExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	backoff   resilience.Backoff
	schema    *jsonschema.Schema
	now       func() time.Time
}

// NewAnthropicExtractor builds an extractor limited to cfg.RequestsPerSecond
// calls per second across all goroutines sharing it.
func NewAnthropicExtractor(client anthropic.Client, cfg config.AnthropicConfig) (*AnthropicExtractor, error) {
	schema, err := compileSchema(fieldsSchema())
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &AnthropicExtractor{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(limit, 1),
		backoff:   resilience.DefaultBackoff(),
		schema:    schema,
		now:       time.Now,
	}, nil
}

// Extract calls the model, parses and validates its JSON and applies the
// engine's decisions on top of it.
func (e *AnthropicExtractor) Extract(ctx context.Context, req Request) (*model.Fields, error) {
	log := zap.L().With(zap.String("document", req.Document))

	temp := 0.0
	msgReq := anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      systemPrompt,
		CacheSystem: true,
		Messages:    []anthropic.Message{{Role: "user", Content: buildPrompt(req)}},
		Temperature: &temp,
	}

	resp, err := resilience.Retry(ctx, e.backoff, "anthropic_extract", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "extract: rate limit wait")
		}
		resp, err := e.client.CreateMessage(ctx, msgReq)
		if err != nil {
			if resilience.TransientStatus(anthropic.StatusCode(err)) {
				return nil, resilience.Transient(err, anthropic.StatusCode(err))
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: call model")
	}
	resp.Usage.Log(e.model, req.Document)

	fields, err := e.parse(resp.Text)
	if err != nil {
		log.Error("model reply rejected", zap.Error(err), zap.String("reply", truncate(resp.Text, 500)))
		return nil, err
	}

	e.postProcess(fields, req)
	return fields, nil
}

// parse extracts the JSON object from reply, normalises it, validates it
// against the schema and decodes it.
func (e *AnthropicExtractor) parse(reply string) (*model.Fields, error) {
	raw := jsonObject(reply)
	if raw == "" {
		return nil, eris.New("extract: no JSON object in model reply")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, eris.Wrap(err, "extract: parse model reply")
	}

	normalize(m)

	if err := e.schema.Validate(m); err != nil {
		return nil, eris.Wrap(err, "extract: fields do not match schema")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "extract: re-encode fields")
	}
	var f model.Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, eris.Wrap(err, "extract: decode fields")
	}
	return &f, nil
}

// jsonObject returns the outermost {...} span of s, tolerating code fences
// and prose around it.
func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
