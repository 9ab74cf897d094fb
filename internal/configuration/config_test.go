package configuration

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/markusressel/pid2go/internal/plant"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, content string) Configuration {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	require.NoError(t, v.ReadConfig(strings.NewReader(content)))

	config, err := decodeConfig(v)
	require.NoError(t, err)
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.port", 9001)
	v.SetDefault("simulations", []interface{}{})
}

func TestDecodeConfig_NoSimulationsUsesDefault(t *testing.T) {
	// WHEN
	config := readConfig(t, "dbPath: /tmp/pid2go.db\n")

	// THEN
	assert.Equal(t, "/tmp/pid2go.db", config.DbPath)
	assert.True(t, config.Api.Enabled)
	assert.Equal(t, 9001, config.Api.Port)
	assert.Equal(t, []SimulationConfig{DefaultSimulationConfig()}, config.Simulations)
}

func TestDecodeConfig_PartialSimulationKeepsDefaults(t *testing.T) {
	// GIVEN
	content := `
simulations:
  - id: fast
    tickRate: 10ms
    integration: Semi_Implicit_Euler
    controller:
      kp: 5
      ki: 1
      kd: 0.5
    disturbance:
      seed: 42
`

	// WHEN
	config := readConfig(t, content)

	// THEN
	require.Len(t, config.Simulations, 1)
	simulation := config.Simulations[0]
	assert.Equal(t, "fast", simulation.ID)
	assert.Equal(t, 10*time.Millisecond, simulation.TickRate)
	assert.Equal(t, plant.MethodSemiImplicitEuler, simulation.Integration)
	assert.Equal(t, 5.0, simulation.Controller.Kp)
	assert.Equal(t, 1.0, simulation.Controller.Ki)
	assert.Equal(t, 0.5, simulation.Controller.Kd)
	assert.Equal(t, int64(42), simulation.Disturbance.Seed)

	defaults := DefaultSimulationConfig()
	assert.Equal(t, defaults.Dt, simulation.Dt)
	assert.Equal(t, defaults.Plant, simulation.Plant)
	assert.Equal(t, defaults.Controller.IntegralLimit, simulation.Controller.IntegralLimit)
	assert.Equal(t, defaults.Disturbance.Magnitude, simulation.Disturbance.Magnitude)
	assert.Equal(t, defaults.Telemetry, simulation.Telemetry)
}

func TestDecodeConfig_SingleSimulationWithoutId(t *testing.T) {
	// GIVEN
	content := `
simulations:
  - setpoint: 0.5
`

	// WHEN
	config := readConfig(t, content)

	// THEN
	require.Len(t, config.Simulations, 1)
	assert.Equal(t, DefaultSimulationId, config.Simulations[0].ID)
	assert.Equal(t, 0.5, config.Simulations[0].Setpoint)
}

func TestDecodeConfig_UnknownIntegrationMethodIsKept(t *testing.T) {
	// GIVEN
	content := `
simulations:
  - id: a
    integration: Verlet
`

	// WHEN
	config := readConfig(t, content)

	// THEN
	assert.Equal(t, plant.IntegrationMethod("verlet"), config.Simulations[0].Integration)
	assert.Error(t, validateConfig(&config))
}

func TestFindSimulationConfig(t *testing.T) {
	// GIVEN
	a := DefaultSimulationConfig()
	a.ID = "a"
	b := DefaultSimulationConfig()
	b.ID = "b"
	config := Configuration{Simulations: []SimulationConfig{a, b}}

	// WHEN
	first, errFirst := config.FindSimulationConfig("")
	second, errSecond := config.FindSimulationConfig("b")
	_, errMissing := config.FindSimulationConfig("c")

	// THEN
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
	assert.EqualError(t, errMissing, "no simulation with id found: c, options: a, b")
}

func TestDecodeConfig_ExampleConfigIsValid(t *testing.T) {
	// GIVEN
	content, err := os.ReadFile("../../pid2go.yaml")
	require.NoError(t, err)

	// WHEN
	config := readConfig(t, string(content))

	// THEN
	require.Len(t, config.Simulations, 1)
	simulation := config.Simulations[0]
	assert.Equal(t, "rod", simulation.ID)
	assert.True(t, simulation.AutoStart)
	assert.Equal(t, 50*time.Millisecond, simulation.TickRate)
	assert.Equal(t, 5.0, simulation.Controller.Kp)
	assert.NoError(t, validateConfig(&config))
}
