package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/repository"
)

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// countingTanks wraps a TankRepository and counts writes.
type countingTanks struct {
	domain.TankRepository
	saves   int
	deletes int
}

func (c *countingTanks) Save(ctx context.Context, t *domain.Tank) (*domain.Tank, error) {
	c.saves++
	return c.TankRepository.Save(ctx, t)
}

func (c *countingTanks) Delete(ctx context.Context, id int64) (bool, error) {
	c.deletes++
	return c.TankRepository.Delete(ctx, id)
}

// countingReadings wraps a ReadingRepository and counts writes.
type countingReadings struct {
	domain.ReadingRepository
	saves   int
	deletes int
}

func (c *countingReadings) Save(ctx context.Context, r *domain.TankReading) (*domain.TankReading, error) {
	c.saves++
	return c.ReadingRepository.Save(ctx, r)
}

func (c *countingReadings) DeleteOldReadings(ctx context.Context, tankID int64, olderThan time.Time) (int64, error) {
	c.deletes++
	return c.ReadingRepository.DeleteOldReadings(ctx, tankID, olderThan)
}

type fixture struct {
	svcs     *Services
	tanks    *countingTanks
	readings *countingReadings
	clock    *clockwork.FakeClock
	metrics  *observability.Metrics
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	fake := clockwork.NewFakeClockAt(now)
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	mem := repository.NewMemory()
	f := &fixture{
		tanks:    &countingTanks{TankRepository: mem.Tanks},
		readings: &countingReadings{ReadingRepository: mem.Readings},
		clock:    fake,
		metrics:  observability.NewMetricsForTesting(),
	}
	base := []Option{WithLogger(zerolog.Nop()), WithMetrics(f.metrics)}
	f.svcs = New(&repository.Repos{Tanks: f.tanks, Readings: f.readings}, append(base, opts...)...)
	return f
}

// proportionalTank creates a 100 cm, 1000 L tank without a diameter.
func (f *fixture) proportionalTank(t *testing.T, serial string) *domain.Tank {
	t.Helper()
	tank, err := f.svcs.Tanks.Create(context.Background(), CreateTankInput{
		Name: "Tank " + serial, SerialNumber: serial, Capacity: 1000, Height: 100,
	})
	require.NoError(t, err)
	return tank
}

func (f *fixture) reading(t *testing.T, tankID int64, level float64, at time.Time) *domain.TankReading {
	t.Helper()
	r, err := f.svcs.Readings.Register(context.Background(), RegisterReadingInput{
		TankID: tankID, LiquidLevel: level, Timestamp: &at,
	})
	require.NoError(t, err)
	return r
}
