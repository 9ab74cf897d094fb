package profile

import (
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/spf13/cobra"
)

var simulationId string

var Command = &cobra.Command{
	Use:              "profile",
	Short:            "Gain profile related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&simulationId,
		"id", "i",
		"",
		"Simulation ID as specified in the config (default is the first one)",
	)
}

// loadPersistence reads the config and resolves the simulation id used by all profile commands
func loadPersistence() (persistence.Persistence, string, error) {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Debug("Using configuration file at: %s", configPath)
	configuration.LoadConfig()

	config, err := configuration.CurrentConfig.FindSimulationConfig(simulationId)
	if err != nil {
		return nil, "", err
	}

	p := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := p.Init(); err != nil {
		return nil, "", err
	}
	return p, config.ID, nil
}
