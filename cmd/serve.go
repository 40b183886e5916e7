package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API routes. The background context outlives individual
// requests so async extractions survive the response being written.
func newRouter(bgCtx context.Context, env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/companies", func(w http.ResponseWriter, req *http.Request) {
		var in model.Company
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if in.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}

		created, err := env.Store.CreateCompany(req.Context(), in)
		if err != nil {
			zap.L().Error("create company failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create company failed"})
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	r.Get("/companies", func(w http.ResponseWriter, req *http.Request) {
		companies, err := env.Store.ListCompanies(req.Context())
		if err != nil {
			zap.L().Error("list companies failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list companies failed"})
			return
		}
		writeJSON(w, http.StatusOK, companies)
	})

	r.Post("/extract/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		company, err := env.Store.GetCompany(req.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
			return
		}

		// Extraction runs in the background; the caller polls /aum/latest.
		go func() {
			result, err := env.Pipeline.Run(bgCtx, *company)
			if err != nil {
				zap.L().Error("async extraction failed",
					zap.String("company", company.Name),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("async extraction complete",
				zap.String("company", company.Name),
				zap.String("method", string(result.Extraction.Method)),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  "accepted",
			"company": company.Name,
		})
	})

	r.Get("/aum/latest", func(w http.ResponseWriter, req *http.Request) {
		latest, err := env.Store.LatestSnapshots(req.Context())
		if err != nil {
			zap.L().Error("latest snapshots failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "latest snapshots failed"})
			return
		}
		writeJSON(w, http.StatusOK, latest)
	})

	r.Get("/usage", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, env.Tracker.DailyStats())
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
