package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/detect"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored results over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			zap.L().Info("starting results server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.L().Error("server error", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return nil
	},
}

// buildRouter exposes read-only endpoints over st.
func buildRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/results", func(w http.ResponseWriter, req *http.Request) {
		filter, err := parseResultFilter(req)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		results, err := st.ListResults(req.Context(), filter)
		if err != nil {
			zap.L().Error("list results", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "list results failed"})
			return
		}
		if results == nil {
			results = []model.Result{}
		}
		respondJSON(w, http.StatusOK, results)
	})

	r.Get("/results/{taxID}", func(w http.ResponseWriter, req *http.Request) {
		taxID := detect.DigitsOnly(chi.URLParam(req, "taxID"))
		res, err := st.GetResult(req.Context(), taxID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		case err != nil:
			zap.L().Error("get result", zap.String("tax_id", taxID), zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "get result failed"})
			return
		}
		respondJSON(w, http.StatusOK, res)
	})

	return r
}

func parseResultFilter(req *http.Request) (store.ResultFilter, error) {
	q := req.URL.Query()
	var f store.ResultFilter

	if v := q.Get("tax_id"); v != "" {
		f.TaxID = detect.DigitsOnly(v)
	}
	for name, dst := range map[string]**bool{"rejected": &f.Rejected, "needs_review": &f.NeedsReview} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %q", name, v)
		}
		*dst = &b
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid %s: %q", name, v)
		}
		*dst = n
	}
	return f, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
