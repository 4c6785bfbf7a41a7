package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/bootstrap"
	"tire-backend/internal/shared/config"
	"tire-backend/internal/shared/server"
	"tire-backend/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred Close always runs.
func run() error {
	cfg := config.Load()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err.Error()})
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Error("db.close_failed", map[string]any{"error": err.Error()})
		}
	}()

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.starting", map[string]any{"addr": addr, "env": cfg.Env})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.error", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}
