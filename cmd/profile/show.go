package profile

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/markusressel/pid2go/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the gains of a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, id, err := loadPersistence()
		if err != nil {
			return err
		}

		name := args[0]
		profile, err := p.LoadProfile(id, name)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no profile '%s' saved for simulation %s", name, id)
		}
		if err != nil {
			return err
		}

		ui.Printfln("Kp: %s  Ki: %s  Kd: %s",
			formatFloat(profile.Gains.Kp),
			formatFloat(profile.Gains.Ki),
			formatFloat(profile.Gains.Kd),
		)
		return nil
	},
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func init() {
	Command.AddCommand(showCmd)
}
