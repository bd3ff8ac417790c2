package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/bootstrap"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/http"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	cfg, err := config.Get()
	if err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	observability.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, observability.NewMetrics())
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer app.Close()

	if app.DB != nil && cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, app.DB); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
	}

	server := httpHandlers.NewApp(app.Services)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := server.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.APIAddr).Msg("api listening")
	if err := server.Listen(cfg.APIAddr); err != nil {
		log.Error().Err(err).Msg("server exit")
	}
}
