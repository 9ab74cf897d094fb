package simulation

import (
	"context"

	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/telemetry"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	SimulationMap = cmap.New[SimulationLoop]()
)

type SimulationLoop interface {
	GetId() string
	GetConfig() configuration.SimulationConfig

	// Run ticks the simulation until ctx is cancelled.
	// Must not be called concurrently with Tick or Advance.
	Run(ctx context.Context) error
	// Tick applies pending commands and, while Running, advances the simulation by one step
	Tick() error
	// Advance calls Tick n times, stopping at the first error
	Advance(n int) error

	Start()
	Pause()
	Reset()
	GetStatus() Status

	GetParameters() Parameters
	SetGains(gains control_loop.Gains) error
	SetSetpoint(value float64) error
	SetDisturbance(value float64) error

	GetSnapshot() Snapshot
	GetTelemetry() *telemetry.Buffer
}
