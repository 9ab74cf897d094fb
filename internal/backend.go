package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pid2go/internal/api"
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/markusressel/pid2go/internal/statistics"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
)

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence at %s: %v", configuration.CurrentConfig.DbPath, err)
	}

	loops, err := InitializeObjects(configuration.CurrentConfig.Simulations)
	if err != nil {
		ui.Fatal("Unable to process simulation configuration: %v", err)
	}
	if len(loops) == 0 {
		ui.Fatal("No valid simulation configurations, exiting.")
	}
	statistics.Register(statistics.NewSimulationCollector(loops))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		if configuration.CurrentConfig.Statistics.Enabled {
			// === Prometheus Exporter
			port := configuration.CurrentConfig.Statistics.Port
			server := api.CreateStatisticsServer(prometheus.DefaultGatherer)
			addServer(&g, "statistics", server, fmt.Sprintf(":%d", port))
		}
	}
	{
		if configuration.CurrentConfig.Api.Enabled {
			// === REST api
			apiConfig := configuration.CurrentConfig.Api
			server := api.CreateRestService(pers, prometheus.NewRegistry())
			addServer(&g, "api", server, fmt.Sprintf("%s:%d", apiConfig.Host, apiConfig.Port))
		}
	}
	{
		// === simulation loops
		for _, loop := range loops {
			l := loop
			g.Add(func() error {
				err := l.Run(ctx)
				ui.Info("Simulation loop %s stopped.", l.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
				cancel()
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// addServer adds an actor serving the given echo instance until the group is interrupted
func addServer(g *run.Group, name string, server *echo.Echo, addr string) {
	g.Add(func() error {
		ui.Info("Starting %s server at %s", name, addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.Error("Cannot start %s server (%s)", name, err.Error())
			return err
		}
		return nil
	}, func(err error) {
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			ui.Warning("Error stopping %s server: %v", name, err)
		} else {
			ui.Info("%s server stopped.", name)
		}
	})
}

// InitializeObjects creates a simulation loop for each config
// and registers it in simulation.SimulationMap
func InitializeObjects(configs []configuration.SimulationConfig) ([]simulation.SimulationLoop, error) {
	var loops []simulation.SimulationLoop
	for _, config := range configs {
		loop, err := simulation.NewSimulationLoop(config)
		if err != nil {
			return nil, fmt.Errorf("simulation %s: %w", config.ID, err)
		}
		simulation.SimulationMap.Set(config.ID, loop)
		loops = append(loops, loop)
	}
	return loops, nil
}
