package extract

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/model"
)

const (
	elderlyAge         = 60
	defaultAnomalyNote = "PDF com formato anômalo detectado pelo LLM"
)

// postProcess overrides model output with what the engine already knows.
func (e *AnthropicExtractor) postProcess(f *model.Fields, req Request) {
	if f.NumeroOrdem == nil && req.TitleOrderNumber != "" {
		f.NumeroOrdem = ptr(req.TitleOrderNumber)
	}

	if req.Rejected {
		f.Rejeitado = ptr(true)
		if f.MotivoRejeicao == nil && req.RejectionReason != "" {
			f.MotivoRejeicao = ptr(req.RejectionReason)
		}
	}

	if missing := missingAmounts(f); len(missing) > 0 && f.Observacoes == nil {
		f.Observacoes = ptr("Campos não encontrados: " + strings.Join(missing, ", "))
		zap.L().Warn("mandatory amounts missing",
			zap.String("document", req.Document),
			zap.Strings("fields", missing),
		)
	}

	if f.Anomalia != nil && *f.Anomalia && f.DescricaoAnomalia == nil {
		f.DescricaoAnomalia = ptr(defaultAnomalyNote)
	}

	if f.DataNascimento != nil {
		if born, err := time.Parse(time.DateOnly, *f.DataNascimento); err == nil {
			f.Idoso = ptr(ageAt(born, e.now()) >= elderlyAge)
		}
	}
}

func missingAmounts(f *model.Fields) []string {
	var out []string
	check := []struct {
		name string
		v    *float64
	}{
		{"valor_principal_liquido", f.ValorPrincipalLiquido},
		{"valor_principal_bruto", f.ValorPrincipalBruto},
		{"juros_moratorios", f.JurosMoratorios},
		{"valor_total_requisitado", f.ValorTotalRequisitado},
	}
	for _, c := range check {
		if c.v == nil || *c.v == 0 {
			out = append(out, c.name)
		}
	}
	return out
}

// ageAt returns completed years between born and now.
func ageAt(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age
}

func ptr[T any](v T) *T { return &v }
