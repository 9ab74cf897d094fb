package configuration

import (
	"math"
	"testing"
	"time"

	"github.com/markusressel/pid2go/internal/plant"
	"github.com/markusressel/pid2go/internal/util"
	"github.com/stretchr/testify/assert"
)

func createConfig(simulations ...SimulationConfig) Configuration {
	return Configuration{
		Api: ApiConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    9001,
		},
		Statistics: StatisticsConfig{
			Enabled: true,
			Port:    9000,
		},
		Simulations: simulations,
	}
}

func TestValidateDefaultConfig(t *testing.T) {
	// GIVEN
	config := createConfig(DefaultSimulationConfig())

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateDuplicateSimulationId(t *testing.T) {
	// GIVEN
	config := createConfig(DefaultSimulationConfig(), DefaultSimulationConfig())

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "duplicate simulation id detected: rod")
}

func TestValidateMissingSimulationId(t *testing.T) {
	// GIVEN
	simulation := DefaultSimulationConfig()
	simulation.ID = ""
	config := createConfig(simulation)

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "simulation: missing id")
}

func TestValidateNoSimulations(t *testing.T) {
	// GIVEN
	config := createConfig()

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "no simulations configured")
}

func TestValidateSharedPort(t *testing.T) {
	// GIVEN
	config := createConfig(DefaultSimulationConfig())
	config.Statistics.Port = config.Api.Port

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "api and statistics cannot share port 9001")
}

func TestValidateInvalidPort(t *testing.T) {
	// GIVEN
	config := createConfig(DefaultSimulationConfig())
	config.Api.Port = 0

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "api: invalid port 0, must be in (0..65535)")
}

func TestValidateDisabledApiPortIsIgnored(t *testing.T) {
	// GIVEN
	config := createConfig(DefaultSimulationConfig())
	config.Api.Enabled = false
	config.Api.Port = -1

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateSimulation_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(c *SimulationConfig)
		sentinel error
	}{
		{"zero dt", func(c *SimulationConfig) { c.Dt = 0 }, util.ErrInvalidConfiguration},
		{"negative dt", func(c *SimulationConfig) { c.Dt = -0.01 }, util.ErrInvalidConfiguration},
		{"nan kp", func(c *SimulationConfig) { c.Controller.Kp = math.NaN() }, util.ErrInvalidConfiguration},
		{"inf setpoint", func(c *SimulationConfig) { c.Setpoint = math.Inf(1) }, util.ErrInvalidConfiguration},
		{"negative noise", func(c *SimulationConfig) { c.Disturbance.NoiseStdDev = -1 }, util.ErrInvalidConfiguration},
		{"negative integral limit", func(c *SimulationConfig) { c.Controller.IntegralLimit = -1 }, util.ErrInvalidConfiguration},
		{"negative damping", func(c *SimulationConfig) { c.Plant.DampingRatio = -1 }, util.ErrInvalidConfiguration},
		{"zero tolerance", func(c *SimulationConfig) { c.Settle.Tolerance = 0 }, util.ErrInvalidConfiguration},
		{"zero tick rate", func(c *SimulationConfig) { c.TickRate = 0 }, nil},
		{"zero capacity", func(c *SimulationConfig) { c.Telemetry.Capacity = 0 }, nil},
		{"zero window", func(c *SimulationConfig) { c.Settle.WindowSize = 0 }, nil},
		{"unknown integrator", func(c *SimulationConfig) { c.Integration = plant.IntegrationMethod("verlet") }, nil},
		{"nan initial position", func(c *SimulationConfig) { c.Plant.InitialPosition = math.NaN() }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			simulation := DefaultSimulationConfig()
			tt.modify(&simulation)
			config := createConfig(simulation)

			// WHEN
			err := validateConfig(&config)

			// THEN
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "simulation rod: ")
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestValidateSimulation_UnknownIntegrator(t *testing.T) {
	// GIVEN
	simulation := DefaultSimulationConfig()
	simulation.Integration = "verlet"
	config := createConfig(simulation)

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.EqualError(t, err, "simulation rod: unsupported integration method 'verlet', use one of: euler | semi-implicit-euler | rk4")
}

func TestValidateSimulation_DisabledWindupClampIsValid(t *testing.T) {
	// GIVEN
	simulation := DefaultSimulationConfig()
	simulation.Controller.IntegralLimit = 0
	simulation.TickRate = time.Millisecond
	config := createConfig(simulation)

	// WHEN
	err := validateConfig(&config)

	// THEN
	assert.NoError(t, err)
}
