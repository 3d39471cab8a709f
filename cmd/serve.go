package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trigger and feed HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve")
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
			Handler: newRouter(env, cfg.Server.CronSecret),
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

// newRouter builds the HTTP surface: cron triggers behind the shared
// secret, the per-user feed, interaction recording, and health.
func newRouter(env *pipelineEnv, cronSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireCronSecret(cronSecret))

		r.Post("/cron/fetch", func(w http.ResponseWriter, req *http.Request) {
			result, err := env.Pipeline.RunFetch(req.Context())
			if err != nil {
				zap.L().Error("cron fetch failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fetch failed"})
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Post("/cron/process", func(w http.ResponseWriter, req *http.Request) {
			result, err := env.Pipeline.RunProcess(req.Context())
			if err != nil {
				zap.L().Error("cron process failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "process failed"})
				return
			}
			writeJSON(w, http.StatusOK, result)
		})
	})

	r.Get("/feed/{userID}", func(w http.ResponseWriter, req *http.Request) {
		userID := chi.URLParam(req, "userID")
		items, err := env.Ranker.Rank(req.Context(), userID)
		if err != nil {
			zap.L().Error("feed ranking failed", zap.String("user_id", userID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "feed failed"})
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	r.Post("/interactions", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			UserID          string `json:"user_id"`
			SegmentID       string `json:"segment_id"`
			Type            string `json:"interaction_type"`
			DurationSeconds *int   `json:"duration_seconds"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.UserID == "" || body.SegmentID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and segment_id are required"})
			return
		}
		if !model.ValidInteractionType(model.InteractionType(body.Type)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown interaction_type"})
			return
		}

		interaction := model.UserInteraction{
			ID:              uuid.New().String(),
			UserID:          body.UserID,
			SegmentID:       body.SegmentID,
			Type:            model.InteractionType(body.Type),
			DurationSeconds: body.DurationSeconds,
			CreatedAt:       time.Now().UTC(),
		}
		if err := env.Store.RecordInteraction(req.Context(), interaction); err != nil {
			zap.L().Error("record interaction failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "record failed"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": interaction.ID})
	})

	return r
}

// requireCronSecret rejects trigger requests without the shared bearer
// secret. An unconfigured secret rejects everything.
func requireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
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
