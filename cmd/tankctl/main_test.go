package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

func TestPrintTanks(t *testing.T) {
	d := 50.0
	var buf bytes.Buffer
	require.NoError(t, printTanks(&buf, []domain.Tank{
		{ID: 1, SerialNumber: "SN-1", Name: "North", Capacity: 1000, Height: 100, Active: true},
		{ID: 2, SerialNumber: "SN-2", Name: "South", Capacity: 500, Height: 80, Diameter: &d},
	}))

	out := buf.String()
	assert.Contains(t, out, "SERIAL")
	assert.Contains(t, out, "SN-1")
	assert.Contains(t, out, "50.0")
	assert.Contains(t, out, "false")
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(&cli{})
	for _, path := range [][]string{{"migrate"}, {"prune"}, {"tanks", "list"}, {"archives", "list"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestTanksList_MemoryStorage(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd(&cli{})
	root.SetOut(&out)
	root.SetArgs([]string{"tanks", "list"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "ID")
}

func TestPrune_RequiresTank(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd(&cli{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"prune", "--older-than", "1h"})
	assert.Error(t, root.Execute())
}

func TestPrune_FailureLeavesAppForClose(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	c := &cli{}
	root := newRootCmd(c)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"prune", "--tank", "42", "--older-than", "1h"})

	err := root.ExecuteContext(context.Background())
	require.ErrorIs(t, err, domain.ErrTankNotFound)
	require.NotNil(t, c.app, "the app stays reachable after a failed command")

	c.close()
	assert.Nil(t, c.app)
	assert.NotPanics(t, c.close)
}
