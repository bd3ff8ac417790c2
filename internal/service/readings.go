package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

type RegisterReadingInput struct {
	TankID      int64
	LiquidLevel float64
	Timestamp   *time.Time
	Temperature *float64
	RawData     json.RawMessage
}

type ReadingService struct {
	tanks       domain.TankRepository
	readings    domain.ReadingRepository
	calc        domain.VolumeCalculator
	archiver    Archiver
	statsWindow int
	log         zerolog.Logger
	metrics     *observability.Metrics
}

// Register derives volume and percentage for the sample and persists it.
// The tank itself is never modified.
func (s *ReadingService) Register(ctx context.Context, in RegisterReadingInput) (*domain.TankReading, error) {
	reading, _, err := s.register(ctx, in)
	return reading, err
}

func (s *ReadingService) register(ctx context.Context, in RegisterReadingInput) (*domain.TankReading, *domain.Tank, error) {
	start := time.Now()

	tank, err := s.tanks.FindByID(ctx, in.TankID)
	if err != nil {
		s.metrics.ReadingFailed()
		return nil, nil, err
	}
	if tank == nil {
		s.metrics.ReadingFailed()
		return nil, nil, domain.ErrTankNotFound
	}

	reading := domain.NewTankReading(tank, s.calc, domain.ReadingSample{
		LiquidLevel: in.LiquidLevel,
		Temperature: in.Temperature,
		RawData:     in.RawData,
		Timestamp:   in.Timestamp,
	})

	saved, err := s.readings.Save(ctx, reading)
	if err != nil {
		s.metrics.ReadingFailed()
		return nil, nil, err
	}
	s.metrics.ReadingRegistered(time.Since(start).Seconds())
	s.log.Debug().
		Int64("tank_id", tank.ID).
		Int64("reading_id", saved.ID).
		Float64("volume", saved.Volume).
		Float64("percentage", saved.Percentage).
		Msg("reading registered")
	return saved, tank, nil
}

// List returns every reading of the tank, newest first.
func (s *ReadingService) List(ctx context.Context, tankID int64) ([]domain.TankReading, error) {
	if err := s.requireTank(ctx, tankID); err != nil {
		return nil, err
	}
	return s.readings.FindByTankID(ctx, tankID)
}

// ListInRange returns readings taken within [start, end], newest first.
func (s *ReadingService) ListInRange(ctx context.Context, tankID int64, start, end time.Time) ([]domain.TankReading, error) {
	if err := s.requireTank(ctx, tankID); err != nil {
		return nil, err
	}
	return s.readings.FindByTankIDAndDateRange(ctx, tankID, start, end)
}

// Latest returns the most recent reading, or nil without error when the tank has none.
func (s *ReadingService) Latest(ctx context.Context, tankID int64) (*domain.TankReading, error) {
	if err := s.requireTank(ctx, tankID); err != nil {
		return nil, err
	}
	return s.readings.FindLatestByTankID(ctx, tankID)
}

// Get returns one reading by id.
func (s *ReadingService) Get(ctx context.Context, id int64) (*domain.TankReading, error) {
	r, err := s.readings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrReadingNotFound
	}
	return r, nil
}

// Prune deletes the tank's readings taken strictly before olderThan and
// returns how many were removed. With an archiver configured the readings are
// uploaded first and an upload failure leaves them in place.
func (s *ReadingService) Prune(ctx context.Context, tankID int64, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, fmt.Errorf("%w: prune cutoff is required", domain.ErrInvalidInput)
	}
	if err := s.requireTank(ctx, tankID); err != nil {
		return 0, err
	}

	if s.archiver != nil {
		doomed, err := s.readings.FindOlderThan(ctx, tankID, olderThan)
		if err != nil {
			return 0, err
		}
		if len(doomed) > 0 {
			if err := s.archiver.ArchiveReadings(ctx, tankID, doomed); err != nil {
				return 0, fmt.Errorf("archive readings before prune: %w", err)
			}
		}
	}

	n, err := s.readings.DeleteOldReadings(ctx, tankID, olderThan)
	if err != nil {
		return 0, err
	}
	s.metrics.Pruned(n)
	s.log.Info().Int64("tank_id", tankID).Time("older_than", olderThan).Int64("deleted", n).Msg("readings pruned")
	return n, nil
}

func (s *ReadingService) requireTank(ctx context.Context, tankID int64) error {
	tank, err := s.tanks.FindByID(ctx, tankID)
	if err != nil {
		return err
	}
	if tank == nil {
		return domain.ErrTankNotFound
	}
	return nil
}
