package internal

import (
	"testing"

	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/markusressel/pid2go/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeObjects(t *testing.T) {
	// GIVEN
	simulation.SimulationMap.Clear()
	t.Cleanup(simulation.SimulationMap.Clear)

	a := configuration.DefaultSimulationConfig()
	a.ID = "a"
	b := configuration.DefaultSimulationConfig()
	b.ID = "b"
	b.Setpoint = 0.5

	// WHEN
	loops, err := InitializeObjects([]configuration.SimulationConfig{a, b})

	// THEN
	require.NoError(t, err)
	assert.Len(t, loops, 2)
	assert.Equal(t, 2, simulation.SimulationMap.Count())

	loop, exists := simulation.SimulationMap.Get("b")
	require.True(t, exists)
	assert.Equal(t, 0.5, loop.GetParameters().Setpoint)
	assert.Equal(t, simulation.Idle, loop.GetStatus())
}

func TestInitializeObjects_InvalidConfig(t *testing.T) {
	// GIVEN
	simulation.SimulationMap.Clear()
	t.Cleanup(simulation.SimulationMap.Clear)

	config := configuration.DefaultSimulationConfig()
	config.Dt = 0

	// WHEN
	loops, err := InitializeObjects([]configuration.SimulationConfig{config})

	// THEN
	assert.Nil(t, loops)
	assert.ErrorIs(t, err, util.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "simulation rod: ")
}
