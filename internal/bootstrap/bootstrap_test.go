package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/service"
)

func TestBuild_Memory(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, &config.Config{StorageDriver: "memory", StatsWindow: 3}, nil)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Archive)

	tank, err := app.Services.Tanks.Create(ctx, service.CreateTankInput{
		Name: "t", SerialNumber: "S", Capacity: 100, Height: 10,
	})
	require.NoError(t, err)

	r, err := app.Services.Ingest.Register(ctx, service.RegisterReadingInput{TankID: tank.ID, LiquidLevel: 5})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, r.Volume, 1e-9)
}

func TestBuild_KafkaObserverClosedOnShutdown(t *testing.T) {
	app, err := Build(context.Background(), &config.Config{
		StorageDriver: "memory",
		StatsWindow:   1,
		KafkaBrokers:  []string{"localhost:9092"},
		KafkaTopic:    "tank-readings",
	}, nil)
	require.NoError(t, err)

	assert.Len(t, app.closers, 1)
	assert.NotPanics(t, app.Close)
}
