package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markusressel/pid2go/internal/plant"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/markusressel/pid2go/internal/util"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if config.Api.Enabled {
		if err := validatePort("api", config.Api.Port); err != nil {
			return err
		}
	}
	if config.Statistics.Enabled {
		if err := validatePort("statistics", config.Statistics.Port); err != nil {
			return err
		}
	}
	if config.Api.Enabled && config.Statistics.Enabled && config.Api.Port == config.Statistics.Port {
		return fmt.Errorf("api and statistics cannot share port %d", config.Api.Port)
	}

	return validateSimulations(config)
}

func validatePort(name string, port int) error {
	if port <= 0 || port >= 65535 {
		return fmt.Errorf("%s: invalid port %d, must be in (0..65535)", name, port)
	}
	return nil
}

func validateSimulations(config *Configuration) error {
	if len(config.Simulations) == 0 {
		return errors.New("no simulations configured")
	}

	var ids []string
	for _, simulationConfig := range config.Simulations {
		if len(simulationConfig.ID) <= 0 {
			return errors.New("simulation: missing id")
		}
		if slices.Contains(ids, simulationConfig.ID) {
			return fmt.Errorf("duplicate simulation id detected: %s", simulationConfig.ID)
		}
		ids = append(ids, simulationConfig.ID)

		if err := validateSimulation(simulationConfig); err != nil {
			return fmt.Errorf("simulation %s: %w", simulationConfig.ID, err)
		}
	}

	return nil
}

func validateSimulation(config SimulationConfig) error {
	if !util.IsFinite(config.Dt) || config.Dt <= 0 {
		return util.NewInvalidConfigurationError("dt", config.Dt, "must be finite and > 0")
	}
	if config.TickRate <= 0 {
		return fmt.Errorf("invalid tickRate %s, must be > 0", config.TickRate)
	}

	if !slices.Contains(plant.SupportedMethods, config.Integration) {
		supported := make([]string, 0, len(plant.SupportedMethods))
		for _, method := range plant.SupportedMethods {
			supported = append(supported, string(method))
		}
		return fmt.Errorf("unsupported integration method '%s', use one of: %s", config.Integration, strings.Join(supported, " | "))
	}

	if err := config.PlantParameters().Validate(); err != nil {
		return err
	}
	if !util.AllFinite(config.Plant.InitialPosition, config.Plant.InitialVelocity) {
		return errors.New("initial plant state must be finite")
	}

	if err := config.Gains().Validate(); err != nil {
		return err
	}
	if !util.IsFinite(config.Controller.IntegralLimit) || config.Controller.IntegralLimit < 0 {
		return util.NewInvalidConfigurationError("integralLimit", config.Controller.IntegralLimit, "must be finite and >= 0")
	}
	if config.Controller.IntegralLimit == 0 {
		ui.Warning("Simulation %s: integral windup clamp is disabled", config.ID)
	}
	if !util.IsFinite(config.Setpoint) {
		return util.NewInvalidConfigurationError("setpoint", config.Setpoint, "must be finite")
	}

	if !util.IsFinite(config.Disturbance.Magnitude) {
		return util.NewInvalidConfigurationError("disturbance.magnitude", config.Disturbance.Magnitude, "must be finite")
	}
	if !util.IsFinite(config.Disturbance.NoiseStdDev) || config.Disturbance.NoiseStdDev < 0 {
		return util.NewInvalidConfigurationError("disturbance.noiseStdDev", config.Disturbance.NoiseStdDev, "must be finite and >= 0")
	}

	if config.Telemetry.Capacity <= 0 {
		return fmt.Errorf("invalid telemetry capacity %d, must be > 0", config.Telemetry.Capacity)
	}
	if config.Settle.WindowSize <= 0 {
		return fmt.Errorf("invalid settle windowSize %d, must be > 0", config.Settle.WindowSize)
	}
	if !util.IsFinite(config.Settle.Tolerance) || config.Settle.Tolerance <= 0 {
		return util.NewInvalidConfigurationError("settle.tolerance", config.Settle.Tolerance, "must be finite and > 0")
	}

	return nil
}
