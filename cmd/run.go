package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/pid2go/cmd/global"
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/markusressel/pid2go/internal/telemetry"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var (
	runSimulationId string
	runDuration     time.Duration
	runProfile      string
	runKp           float64
	runKi           float64
	runKd           float64
	runSetpoint     float64
	runDisturbance  float64
	runSeed         int64
	runOutput       string
	runNoPlot       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation headless for a fixed duration and print its step response",
	Long: `Runs a configured simulation as fast as possible for the given
simulated duration, then prints a summary, a plot of setpoint and
measurement, and optionally writes the telemetry to a CSV file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		configPath := configuration.DetectAndReadConfigFile()
		ui.Debug("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			return err
		}

		found, err := configuration.CurrentConfig.FindSimulationConfig(runSimulationId)
		if err != nil {
			return err
		}
		config := *found

		if runProfile != "" {
			p := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
			profile, err := p.LoadProfile(config.ID, runProfile)
			if err != nil {
				return fmt.Errorf("unable to load profile '%s': %w", runProfile, err)
			}
			config.Controller.Kp = profile.Gains.Kp
			config.Controller.Ki = profile.Gains.Ki
			config.Controller.Kd = profile.Gains.Kd
		}
		applyRunFlags(cmd, &config)

		steps := int(math.Round(runDuration.Seconds() / config.Dt))
		if steps <= 0 {
			return errors.New("duration must cover at least one step")
		}
		// keep the whole run
		config.Telemetry.Capacity = max(config.Telemetry.Capacity, steps)

		loop, err := simulation.NewSimulationLoop(config)
		if err != nil {
			return err
		}

		loop.Start()
		runErr := loop.Advance(steps)

		samples := loop.GetTelemetry().Snapshot()
		if err := printRunSummary(loop.GetSnapshot(), config, telemetry.Summarize(samples, config.Settle.Tolerance)); err != nil {
			return err
		}
		if !runNoPlot && len(samples) > 0 {
			printRunPlot(samples)
		}

		if runOutput != "" {
			if err := telemetry.ExportCSV(runOutput, samples); err != nil {
				return err
			}
			ui.Success("Wrote %d samples to %s", len(samples), runOutput)
		}

		return runErr
	},
}

func applyRunFlags(cmd *cobra.Command, config *configuration.SimulationConfig) {
	flags := cmd.Flags()
	if flags.Changed("kp") {
		config.Controller.Kp = runKp
	}
	if flags.Changed("ki") {
		config.Controller.Ki = runKi
	}
	if flags.Changed("kd") {
		config.Controller.Kd = runKd
	}
	if flags.Changed("setpoint") {
		config.Setpoint = runSetpoint
	}
	if flags.Changed("disturbance") {
		config.Disturbance.Magnitude = runDisturbance
	}
	if flags.Changed("seed") {
		config.Disturbance.Seed = runSeed
	}
}

func printRunSummary(snapshot simulation.Snapshot, config configuration.SimulationConfig, summary telemetry.Summary) error {
	settleTime := "-"
	if summary.Settled {
		settleTime = formatFloat(summary.SettleTime) + "s"
	}

	tab := table.Table{
		Headers: []string{"ID", "Method", "Kp", "Ki", "Kd", "Setpoint", "Final", "Error", "Peak", "Overshoot", "Settled", "Skipped"},
		Rows: [][]string{
			{
				snapshot.Id,
				string(config.Integration),
				formatFloat(snapshot.Parameters.Gains.Kp),
				formatFloat(snapshot.Parameters.Gains.Ki),
				formatFloat(snapshot.Parameters.Gains.Kd),
				formatFloat(snapshot.Parameters.Setpoint),
				fmt.Sprintf("%.4f", summary.Final),
				fmt.Sprintf("%.4f", summary.FinalError),
				fmt.Sprintf("%.4f", summary.Peak),
				fmt.Sprintf("%.1f%%", summary.Overshoot*100),
				settleTime,
				strconv.FormatUint(snapshot.Statistics.SkippedTickCount, 10),
			},
		},
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
}

func printRunPlot(samples []telemetry.Sample) {
	setpoints := telemetry.Column(samples, func(s telemetry.Sample) float64 { return s.Setpoint })
	measurements := telemetry.Column(samples, func(s telemetry.Sample) float64 { return s.Measurement })

	options := []asciigraph.Option{
		asciigraph.Height(15),
		asciigraph.Width(100),
		asciigraph.Caption(fmt.Sprintf("setpoint / position over %ss", formatFloat(samples[len(samples)-1].Timestamp))),
	}
	if !global.NoColor {
		options = append(options, asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue))
	}

	graph := asciigraph.PlotMany([][]float64{setpoints, measurements}, options...)
	ui.Printfln("%s", graph)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', 6, 64)
}

func init() {
	runCmd.Flags().StringVarP(&runSimulationId, "id", "i", "", "Simulation ID as specified in the config (default is the first one)")
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 10*time.Second, "Simulated duration")
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", "", "Use the gains of a saved profile")
	runCmd.Flags().Float64Var(&runKp, "kp", 0, "Proportional gain")
	runCmd.Flags().Float64Var(&runKi, "ki", 0, "Integral gain")
	runCmd.Flags().Float64Var(&runKd, "kd", 0, "Derivative gain")
	runCmd.Flags().Float64VarP(&runSetpoint, "setpoint", "s", 0, "Setpoint")
	runCmd.Flags().Float64Var(&runDisturbance, "disturbance", 0, "Constant disturbance added to the control input")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed of the disturbance noise, 0 picks a time based one")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the telemetry to this CSV file")
	runCmd.Flags().BoolVar(&runNoPlot, "no-plot", false, "Do not print the response plot")

	rootCmd.AddCommand(runCmd)
}
