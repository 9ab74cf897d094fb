package profile

import (
	"bytes"

	"github.com/markusressel/pid2go/cmd/global"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved gain profiles of a simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, id, err := loadPersistence()
		if err != nil {
			return err
		}

		profiles, err := p.ListProfiles(id)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			ui.Info("No profiles saved for simulation %s", id)
			return nil
		}

		var rows [][]string
		for _, profile := range profiles {
			rows = append(rows, []string{
				profile.Name,
				formatFloat(profile.Gains.Kp),
				formatFloat(profile.Gains.Ki),
				formatFloat(profile.Gains.Kd),
				profile.SavedAt.Format("2006-01-02 15:04:05"),
			})
		}

		tab := table.Table{
			Headers: []string{"Name", "Kp", "Ki", "Kd", "Saved"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		ui.Printfln("%s", buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
