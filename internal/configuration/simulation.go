package configuration

import (
	"fmt"
	"time"

	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/plant"
	"github.com/markusressel/pid2go/internal/telemetry"
	"github.com/mitchellh/mapstructure"
)

const (
	DefaultSimulationId = "rod"
	DefaultTickRate     = 50 * time.Millisecond
	DefaultDt           = 0.01
)

type SimulationConfig struct {
	ID string `json:"id" yaml:"id"`
	// Start ticking as soon as the daemon is up
	AutoStart bool `json:"autoStart" yaml:"autoStart"`
	// Wall clock time between two ticks
	TickRate time.Duration `json:"tickRate" yaml:"tickRate"`
	// Simulated time advanced by each tick, in seconds
	Dt          float64                 `json:"dt" yaml:"dt"`
	Integration plant.IntegrationMethod `json:"integration" yaml:"integration"`

	Plant       PlantConfig       `json:"plant" yaml:"plant"`
	Controller  ControllerConfig  `json:"controller" yaml:"controller"`
	Setpoint    float64           `json:"setpoint" yaml:"setpoint"`
	Disturbance DisturbanceConfig `json:"disturbance" yaml:"disturbance"`
	Telemetry   TelemetryConfig   `json:"telemetry" yaml:"telemetry"`
	Settle      SettleConfig      `json:"settle" yaml:"settle"`
}

type PlantConfig struct {
	Gain             float64 `json:"gain" yaml:"gain"`
	NaturalFrequency float64 `json:"naturalFrequency" yaml:"naturalFrequency"`
	DampingRatio     float64 `json:"dampingRatio" yaml:"dampingRatio"`
	InitialPosition  float64 `json:"initialPosition" yaml:"initialPosition"`
	InitialVelocity  float64 `json:"initialVelocity" yaml:"initialVelocity"`
}

type ControllerConfig struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
	// Bound for the integral accumulator, 0 disables the clamp
	IntegralLimit float64 `json:"integralLimit" yaml:"integralLimit"`
}

type DisturbanceConfig struct {
	// Constant bias added to the control input, e.g. gravity
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	// Standard deviation of gaussian noise added on top, 0 disables noise
	NoiseStdDev float64 `json:"noiseStdDev" yaml:"noiseStdDev"`
	// Seed of the noise source, 0 picks a time based seed
	Seed int64 `json:"seed" yaml:"seed"`
}

type TelemetryConfig struct {
	// Number of samples kept, the oldest one is dropped when full
	Capacity int `json:"capacity" yaml:"capacity"`
}

type SettleConfig struct {
	// Number of recent samples the settle check looks at
	WindowSize int `json:"windowSize" yaml:"windowSize"`
	// Max absolute error within the window for the simulation to count as settled
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultSimulationConfig is a lightly damped motor rod under gravity, held by a P controller
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		ID:          DefaultSimulationId,
		AutoStart:   false,
		TickRate:    DefaultTickRate,
		Dt:          DefaultDt,
		Integration: plant.DefaultMethod,
		Plant: PlantConfig{
			Gain:             1.0,
			NaturalFrequency: 2.0,
			DampingRatio:     0.1,
		},
		Controller: ControllerConfig{
			Kp:            1.0,
			IntegralLimit: control_loop.DefaultIntegralLimit,
		},
		Setpoint: 0.0,
		Disturbance: DisturbanceConfig{
			Magnitude:   0.5,
			NoiseStdDev: 0.01,
		},
		Telemetry: TelemetryConfig{
			Capacity: telemetry.DefaultCapacity,
		},
		Settle: SettleConfig{
			WindowSize: 100,
			Tolerance:  0.02,
		},
	}
}

func (c SimulationConfig) PlantParameters() plant.Parameters {
	return plant.Parameters{
		Gain:             c.Plant.Gain,
		NaturalFrequency: c.Plant.NaturalFrequency,
		DampingRatio:     c.Plant.DampingRatio,
	}
}

func (c SimulationConfig) InitialState() plant.State {
	return plant.State{
		Position: c.Plant.InitialPosition,
		Velocity: c.Plant.InitialVelocity,
	}
}

func (c SimulationConfig) Gains() control_loop.Gains {
	return control_loop.Gains{
		Kp: c.Controller.Kp,
		Ki: c.Controller.Ki,
		Kd: c.Controller.Kd,
	}
}

// decodeSimulations decodes each raw simulation entry on top of DefaultSimulationConfig,
// so that only the values present in the config file override the defaults.
// Without any entries, a single default simulation is returned.
func decodeSimulations(raw interface{}) ([]SimulationConfig, error) {
	var entries []interface{}
	switch v := raw.(type) {
	case nil:
	case []interface{}:
		entries = v
	case []map[string]interface{}:
		for _, entry := range v {
			entries = append(entries, entry)
		}
	default:
		return nil, fmt.Errorf("simulations: expected a list, got %T", raw)
	}

	if len(entries) == 0 {
		return []SimulationConfig{DefaultSimulationConfig()}, nil
	}

	result := make([]SimulationConfig, 0, len(entries))
	for idx, entry := range entries {
		config := DefaultSimulationConfig()
		config.ID = ""
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: DecodeHook(),
			Result:     &config,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(entry); err != nil {
			return nil, fmt.Errorf("simulations[%d]: %w", idx, err)
		}
		if config.ID == "" && len(entries) == 1 {
			config.ID = DefaultSimulationId
		}
		result = append(result, config)
	}
	return result, nil
}
