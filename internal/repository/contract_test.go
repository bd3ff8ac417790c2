package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seedTank(t *testing.T, repos *Repos, serial string) *domain.Tank {
	t.Helper()
	tank, err := repos.Tanks.Save(context.Background(), domain.NewTank(domain.TankSpec{
		Name: "tank " + serial, SerialNumber: serial, Capacity: 1000, Height: 100,
	}))
	require.NoError(t, err)
	return tank
}

func seedReading(t *testing.T, repos *Repos, tankID int64, at time.Time) *domain.TankReading {
	t.Helper()
	r, err := repos.Readings.Save(context.Background(), &domain.TankReading{
		TankID: tankID, LiquidLevel: 10, ReadingTimestamp: at,
	})
	require.NoError(t, err)
	return r
}

func readingIDs(readings []domain.TankReading) []int64 {
	ids := make([]int64, len(readings))
	for i, r := range readings {
		ids[i] = r.ID
	}
	return ids
}

// runRepositoryContract checks the behaviour every Repos implementation must share.
// newRepos must return repositories over empty storage with fresh id sequences.
func runRepositoryContract(t *testing.T, newRepos func(t *testing.T) *Repos) {
	ctx := context.Background()

	t.Run("tanks get sequential ids", func(t *testing.T) {
		repos := newRepos(t)
		a := seedTank(t, repos, "A")
		b := seedTank(t, repos, "B")

		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, int64(2), b.ID)

		all, err := repos.Tanks.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "A", all[0].SerialNumber)
		assert.True(t, all[0].Active)
	})

	t.Run("find all without tanks is empty", func(t *testing.T) {
		all, err := newRepos(t).Tanks.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("save updates a persisted tank", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")

		tank.Rename("renamed")
		tank.SetDiameter(ptr(40.0))
		tank.RecordLevel(55)
		_, err := repos.Tanks.Save(ctx, tank)
		require.NoError(t, err)

		got, err := repos.Tanks.FindByID(ctx, tank.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "renamed", got.Name)
		require.NotNil(t, got.Diameter)
		assert.Equal(t, 40.0, *got.Diameter)
		require.NotNil(t, got.CurrentLevel)
		assert.Equal(t, 55.0, *got.CurrentLevel)
		assert.Nil(t, got.Location)
	})

	t.Run("save recreates a tank whose row is gone", func(t *testing.T) {
		repos := newRepos(t)
		ghost := domain.NewTank(domain.TankSpec{Name: "ghost", SerialNumber: "G", Capacity: 1, Height: 1})
		ghost.ID = 99

		saved, err := repos.Tanks.Save(ctx, ghost)
		require.NoError(t, err)
		assert.True(t, saved.IsPersisted())

		got, err := repos.Tanks.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("duplicate serial on insert", func(t *testing.T) {
		repos := newRepos(t)
		seedTank(t, repos, "A")

		_, err := repos.Tanks.Save(ctx, domain.NewTank(domain.TankSpec{
			Name: "dup", SerialNumber: "A", Capacity: 1, Height: 1,
		}))
		assert.ErrorIs(t, err, domain.ErrConflict)

		all, err := repos.Tanks.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("duplicate serial on update", func(t *testing.T) {
		repos := newRepos(t)
		seedTank(t, repos, "A")
		b := seedTank(t, repos, "B")

		b.SetSerialNumber("A")
		_, err := repos.Tanks.Save(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := repos.Tanks.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "B", got.SerialNumber)
	})

	t.Run("returned tanks are copies", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")

		tank.Name = "mutated outside"
		got, err := repos.Tanks.FindByID(ctx, tank.ID)
		require.NoError(t, err)
		assert.Equal(t, "tank A", got.Name)
	})

	t.Run("missing tanks are nil without error", func(t *testing.T) {
		repos := newRepos(t)

		byID, err := repos.Tanks.FindByID(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, byID)

		bySerial, err := repos.Tanks.FindBySerialNumber(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, bySerial)
	})

	t.Run("deleting a tank drops its readings", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		r := seedReading(t, repos, tank.ID, base)

		ok, err := repos.Tanks.Delete(ctx, tank.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repos.Readings.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err = repos.Tanks.Delete(ctx, tank.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("readings need an existing tank", func(t *testing.T) {
		_, err := newRepos(t).Readings.Save(ctx, &domain.TankReading{TankID: 5, ReadingTimestamp: base})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("save updates a persisted reading", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		r := seedReading(t, repos, tank.ID, base)

		r.LiquidLevel = 42
		r.Temperature = ptr(18.5)
		_, err := repos.Readings.Save(ctx, r)
		require.NoError(t, err)

		got, err := repos.Readings.FindByID(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 42.0, got.LiquidLevel)
		require.NotNil(t, got.Temperature)
		assert.Equal(t, 18.5, *got.Temperature)

		all, err := repos.Readings.FindByTankID(ctx, tank.ID)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("listings are newest first and ranges inclusive", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		other := seedTank(t, repos, "B")

		seedReading(t, repos, tank.ID, base.Add(1*time.Hour))
		seedReading(t, repos, tank.ID, base.Add(3*time.Hour))
		seedReading(t, repos, tank.ID, base.Add(2*time.Hour))
		seedReading(t, repos, other.ID, base.Add(5*time.Hour))

		all, err := repos.Readings.FindByTankID(ctx, tank.ID)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.WithinDuration(t, base.Add(3*time.Hour), all[0].ReadingTimestamp, 0)
		assert.WithinDuration(t, base.Add(2*time.Hour), all[1].ReadingTimestamp, 0)
		assert.WithinDuration(t, base.Add(1*time.Hour), all[2].ReadingTimestamp, 0)

		inRange, err := repos.Readings.FindByTankIDAndDateRange(ctx, tank.ID, base.Add(1*time.Hour), base.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, inRange, 2, "bounds are inclusive")
		assert.WithinDuration(t, base.Add(2*time.Hour), inRange[0].ReadingTimestamp, 0)

		latest, err := repos.Readings.FindLatestByTankID(ctx, tank.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.WithinDuration(t, base.Add(3*time.Hour), latest.ReadingTimestamp, 0)

		none, err := repos.Readings.FindLatestByTankID(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("equal timestamps order by id", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		first := seedReading(t, repos, tank.ID, base)
		second := seedReading(t, repos, tank.ID, base)

		all, err := repos.Readings.FindByTankID(ctx, tank.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{second.ID, first.ID}, readingIDs(all))
	})

	t.Run("pruning is strict", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		other := seedTank(t, repos, "B")

		seedReading(t, repos, tank.ID, base.Add(-2*time.Hour))
		seedReading(t, repos, tank.ID, base.Add(-time.Minute))
		atCutoff := seedReading(t, repos, tank.ID, base)
		seedReading(t, repos, other.ID, base.Add(-time.Hour))

		n, err := repos.Readings.DeleteOldReadings(ctx, tank.ID, base)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := repos.Readings.FindByTankID(ctx, tank.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, atCutoff.ID, left[0].ID)

		otherLeft, err := repos.Readings.FindByTankID(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, otherLeft, 1)

		n, err = repos.Readings.DeleteOldReadings(ctx, tank.ID, base)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	// Sub-microsecond cutoffs must select the same rows in both queries.
	cutoffs := []time.Duration{0, 500 * time.Nanosecond, time.Microsecond, time.Minute}
	for _, offset := range cutoffs {
		t.Run("find older than matches delete at +"+offset.String(), func(t *testing.T) {
			repos := newRepos(t)
			tank := seedTank(t, repos, "A")
			seedReading(t, repos, tank.ID, base.Add(-time.Hour))
			seedReading(t, repos, tank.ID, base)
			seedReading(t, repos, tank.ID, base.Add(time.Microsecond))
			seedReading(t, repos, tank.ID, base.Add(time.Hour))
			cutoff := base.Add(offset)

			doomed, err := repos.Readings.FindOlderThan(ctx, tank.ID, cutoff)
			require.NoError(t, err)

			n, err := repos.Readings.DeleteOldReadings(ctx, tank.ID, cutoff)
			require.NoError(t, err)
			assert.Equal(t, int64(len(doomed)), n)

			left, err := repos.Readings.FindByTankID(ctx, tank.ID)
			require.NoError(t, err)
			assert.Len(t, left, 4-len(doomed))
			for _, r := range left {
				assert.NotContains(t, readingIDs(doomed), r.ID)
			}
		})
	}

	t.Run("raw data keeps its bytes", func(t *testing.T) {
		repos := newRepos(t)
		tank := seedTank(t, repos, "A")
		raw := json.RawMessage(`{ "b":1,  "a":[2,3] }`)

		saved, err := repos.Readings.Save(ctx, &domain.TankReading{TankID: tank.ID, RawData: raw, ReadingTimestamp: base})
		require.NoError(t, err)

		got, err := repos.Readings.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, string(raw), string(got.RawData))

		bare := seedReading(t, repos, tank.ID, base)
		got, err = repos.Readings.FindByID(ctx, bare.ID)
		require.NoError(t, err)
		assert.Nil(t, got.RawData)
	})
}
