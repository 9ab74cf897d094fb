package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/markusressel/pid2go/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, id, err := loadPersistence()
		if err != nil {
			return err
		}

		name := args[0]
		err = p.DeleteProfile(id, name)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no profile '%s' saved for simulation %s", name, id)
		}
		if err != nil {
			return err
		}

		ui.Success("Deleted profile '%s' of simulation %s", name, id)
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
