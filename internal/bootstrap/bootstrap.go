// Package bootstrap wires storage, collaborators and services from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/cloud"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/database"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/events"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/repository"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/service"
)

// App holds the wired services and whatever must be closed on shutdown.
type App struct {
	Services *service.Services
	Archive  *cloud.S3Client
	DB       *sqlx.DB
	closers  []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}
}

// Build opens storage and the optional cloud and Kafka collaborators. metrics may be nil.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	app := &App{}

	repos, err := app.openRepos(cfg)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log.Logger),
		service.WithMetrics(metrics),
		service.WithStatsWindow(cfg.StatsWindow),
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		app.closers = append(app.closers, pub.Close)
		opts = append(opts, service.WithObservers(pub))
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("reading events enabled")
	}

	if cfg.UseCloudServices {
		archive, err := cloud.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("s3: %w", err)
		}
		app.Archive = archive
		opts = append(opts, service.WithArchiver(archive))

		if cfg.SNSTopicArn != "" {
			sns, err := cloud.NewSNSClient(ctx, cfg.AWSRegion, cfg.SNSTopicArn)
			if err != nil {
				app.Close()
				return nil, fmt.Errorf("sns: %w", err)
			}
			opts = append(opts, service.WithObservers(&cloud.LowLevelAlert{Client: sns, Threshold: cfg.AlertLowPercentage}))
		}
		log.Info().Str("bucket", cfg.S3Bucket).Bool("alerts", cfg.SNSTopicArn != "").Msg("cloud services enabled")
	}

	app.Services = service.New(repos, opts...)
	return app, nil
}

func (a *App) openRepos(cfg *config.Config) (*repository.Repos, error) {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		return repository.NewMemory(), nil
	}
	db, err := database.Connect()
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	return repository.New(db), nil
}
