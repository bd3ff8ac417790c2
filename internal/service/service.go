// Package service implements the tank and reading workflows on top of the
// domain storage ports.
package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/repository"
)

// Archiver stores readings somewhere durable before they are pruned.
type Archiver interface {
	ArchiveReadings(ctx context.Context, tankID int64, readings []domain.TankReading) error
}

// ReadingObserver is notified after a reading has been persisted.
type ReadingObserver interface {
	Name() string
	ReadingRegistered(ctx context.Context, tank *domain.Tank, reading *domain.TankReading) error
}

type Services struct {
	Tanks    *TankService
	Readings *ReadingService
	Ingest   *Ingest
}

type options struct {
	logger      zerolog.Logger
	metrics     *observability.Metrics
	calculator  domain.VolumeCalculator
	archiver    Archiver
	observers   []ReadingObserver
	statsWindow int
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

func WithMetrics(m *observability.Metrics) Option { return func(o *options) { o.metrics = m } }

func WithCalculator(c domain.VolumeCalculator) Option { return func(o *options) { o.calculator = c } }

// WithArchiver makes pruning upload the doomed readings first.
func WithArchiver(a Archiver) Option { return func(o *options) { o.archiver = a } }

func WithObservers(obs ...ReadingObserver) Option {
	return func(o *options) { o.observers = append(o.observers, obs...) }
}

// WithStatsWindow sets the moving-average window used by ReadingService.Stats.
func WithStatsWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.statsWindow = n
		}
	}
}

func New(repos *repository.Repos, opts ...Option) *Services {
	o := options{
		logger:      log.Logger,
		calculator:  domain.GeometricCalculator{},
		statsWindow: 5,
	}
	for _, opt := range opts {
		opt(&o)
	}

	tanks := &TankService{tanks: repos.Tanks, log: o.logger, metrics: o.metrics}
	readings := &ReadingService{
		tanks:       repos.Tanks,
		readings:    repos.Readings,
		calc:        o.calculator,
		archiver:    o.archiver,
		statsWindow: o.statsWindow,
		log:         o.logger,
		metrics:     o.metrics,
	}
	return &Services{
		Tanks:    tanks,
		Readings: readings,
		Ingest: &Ingest{
			readings:  readings,
			observers: o.observers,
			log:       o.logger,
			metrics:   o.metrics,
		},
	}
}
