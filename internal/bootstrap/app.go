package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/textcraft/internal/domain/generation"
	"github.com/yanqian/textcraft/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	models *generation.ModelCache
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, models *generation.ModelCache) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, models: models}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails. Models are loaded lazily by the first request for each operation.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting",
			"address", a.cfg.HTTP.Address,
			"inference", inferenceMode(a.cfg),
			"max_file_bytes", a.cfg.Limits.MaxFileBytes,
		)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received", "loaded_models", len(a.models.Loaded()))
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func inferenceMode(cfg *config.Config) string {
	if cfg.Inference.BaseURL == "" {
		return "lead"
	}
	return "remote"
}
