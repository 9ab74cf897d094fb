package profile

import (
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/spf13/cobra"
)

var saveGains control_loop.Gains

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a gain profile, unset gains default to the configured ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, id, err := loadPersistence()
		if err != nil {
			return err
		}
		config, err := configuration.CurrentConfig.FindSimulationConfig(id)
		if err != nil {
			return err
		}

		gains := config.Gains()
		if cmd.Flags().Changed("kp") {
			gains.Kp = saveGains.Kp
		}
		if cmd.Flags().Changed("ki") {
			gains.Ki = saveGains.Ki
		}
		if cmd.Flags().Changed("kd") {
			gains.Kd = saveGains.Kd
		}

		err = p.SaveProfile(id, persistence.Profile{Name: args[0], Gains: gains})
		if err != nil {
			return err
		}
		ui.Success("Saved profile '%s' of simulation %s", args[0], id)
		return nil
	},
}

func init() {
	saveCmd.Flags().Float64Var(&saveGains.Kp, "kp", 0, "Proportional gain")
	saveCmd.Flags().Float64Var(&saveGains.Ki, "ki", 0, "Integral gain")
	saveCmd.Flags().Float64Var(&saveGains.Kd, "kd", 0, "Derivative gain")
	Command.AddCommand(saveCmd)
}
