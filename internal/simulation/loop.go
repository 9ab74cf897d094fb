package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/plant"
	"github.com/markusressel/pid2go/internal/telemetry"
	"github.com/markusressel/pid2go/internal/ui"
	"github.com/markusressel/pid2go/internal/util"
)

// DefaultSimulationLoop closes the loop between a MotorRodPlant and a PidControlLoop.
//
// Plant, controller, noise source and statistics are owned by the goroutine
// calling Run (or Tick/Advance when running headless) and are never locked.
// Commands and parameter changes from other goroutines are published through
// atomics and picked up on the next tick.
type DefaultSimulationLoop struct {
	config configuration.SimulationConfig

	// --- owned by the ticking goroutine
	plant       *plant.MotorRodPlant
	pid         *control_loop.PidControlLoop
	noise       *rand.Rand
	errorWindow *rolling.PointPolicy
	statistics  Statistics
	lastWarning string
	appliedSeq  uint64

	// --- shared
	telemetry *telemetry.Buffer
	seed      uint64

	paramsMu sync.Mutex
	params   atomic.Pointer[Parameters]

	status   atomic.Int32
	resetSeq atomic.Uint64
	wake     chan struct{}

	snapshot atomic.Pointer[Snapshot]
}

func NewSimulationLoop(config configuration.SimulationConfig) (*DefaultSimulationLoop, error) {
	if !(config.Dt > 0) || !util.IsFinite(config.Dt) {
		return nil, util.NewInvalidConfigurationError("dt", config.Dt, "must be finite and > 0")
	}
	if config.TickRate <= 0 {
		return nil, fmt.Errorf("simulation %s: tickRate must be > 0, got %s", config.ID, config.TickRate)
	}

	p, err := plant.NewMotorRodPlant(config.PlantParameters(), config.Integration, config.InitialState())
	if err != nil {
		return nil, err
	}

	seed := uint64(config.Disturbance.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	loop := &DefaultSimulationLoop{
		config:    config,
		plant:     p,
		pid:       control_loop.NewPidControlLoop(config.Controller.IntegralLimit),
		telemetry: telemetry.NewBuffer(config.Telemetry.Capacity),
		seed:      seed,
		wake:      make(chan struct{}, 1),
	}

	params := Parameters{
		Gains:       config.Gains(),
		Setpoint:    config.Setpoint,
		Disturbance: config.Disturbance.Magnitude,
	}
	if err := validateParameters(params); err != nil {
		return nil, err
	}
	loop.params.Store(&params)

	loop.reset()
	return loop, nil
}

func validateParameters(params Parameters) error {
	if err := params.Gains.Validate(); err != nil {
		return err
	}
	if !util.IsFinite(params.Setpoint) {
		return util.NewInvalidConfigurationError("setpoint", params.Setpoint, "must be finite")
	}
	if !util.IsFinite(params.Disturbance) {
		return util.NewInvalidConfigurationError("disturbance", params.Disturbance, "must be finite")
	}
	return nil
}

func (l *DefaultSimulationLoop) GetId() string {
	return l.config.ID
}

func (l *DefaultSimulationLoop) GetConfig() configuration.SimulationConfig {
	return l.config
}

func (l *DefaultSimulationLoop) GetTelemetry() *telemetry.Buffer {
	return l.telemetry
}

func (l *DefaultSimulationLoop) GetStatus() Status {
	return Status(l.status.Load())
}

func (l *DefaultSimulationLoop) GetParameters() Parameters {
	return *l.params.Load()
}

// GetSnapshot returns the state published by the latest tick, with the current status
func (l *DefaultSimulationLoop) GetSnapshot() Snapshot {
	snapshot := *l.snapshot.Load()
	snapshot.Status = l.GetStatus()
	snapshot.Parameters = l.GetParameters()
	return snapshot
}

func (l *DefaultSimulationLoop) Start() {
	if l.status.CompareAndSwap(int32(Idle), int32(Running)) || l.status.CompareAndSwap(int32(Paused), int32(Running)) {
		ui.Debug("Simulation %s: running", l.GetId())
		l.notify()
	}
}

func (l *DefaultSimulationLoop) Pause() {
	if l.status.CompareAndSwap(int32(Running), int32(Paused)) {
		ui.Debug("Simulation %s: paused", l.GetId())
		l.notify()
	}
}

// Reset stops the simulation and requests its state to be flushed.
// Gains, setpoint and disturbance are kept.
func (l *DefaultSimulationLoop) Reset() {
	l.status.Store(int32(Idle))
	l.resetSeq.Add(1)
	ui.Debug("Simulation %s: reset", l.GetId())
	l.notify()
}

func (l *DefaultSimulationLoop) SetGains(gains control_loop.Gains) error {
	if err := gains.Validate(); err != nil {
		return err
	}
	l.updateParameters(func(p *Parameters) {
		p.Gains = gains
	})
	return nil
}

func (l *DefaultSimulationLoop) SetSetpoint(value float64) error {
	if !util.IsFinite(value) {
		return util.NewInvalidConfigurationError("setpoint", value, "must be finite")
	}
	l.updateParameters(func(p *Parameters) {
		p.Setpoint = value
	})
	return nil
}

func (l *DefaultSimulationLoop) SetDisturbance(value float64) error {
	if !util.IsFinite(value) {
		return util.NewInvalidConfigurationError("disturbance", value, "must be finite")
	}
	l.updateParameters(func(p *Parameters) {
		p.Disturbance = value
	})
	return nil
}

// updateParameters publishes a modified copy of the current parameters
func (l *DefaultSimulationLoop) updateParameters(modify func(p *Parameters)) {
	l.paramsMu.Lock()
	defer l.paramsMu.Unlock()

	next := *l.params.Load()
	modify(&next)
	l.params.Store(&next)
}

func (l *DefaultSimulationLoop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *DefaultSimulationLoop) Run(ctx context.Context) error {
	ui.Info("Starting simulation loop '%s'", l.GetId())
	if l.config.AutoStart {
		l.Start()
	}

	ticker := time.NewTicker(l.config.TickRate)
	defer ticker.Stop()

	for {
		if l.GetStatus() != Running {
			select {
			case <-ctx.Done():
				return nil
			case <-l.wake:
				l.applyPendingReset()
				if l.GetStatus() == Running {
					ticker.Reset(l.config.TickRate)
				}
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.applyPendingReset()
		case <-ticker.C:
			// recoverable errors are already logged and counted by Tick
			_ = l.Tick()
		}
	}
}

func (l *DefaultSimulationLoop) Advance(n int) error {
	for i := 0; i < n; i++ {
		if err := l.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", l.statistics.TickCount+1, err)
		}
	}
	return nil
}

func (l *DefaultSimulationLoop) Tick() error {
	l.applyPendingReset()
	if l.GetStatus() != Running {
		return nil
	}

	err := l.step()
	if err != nil {
		l.statistics.SkippedTickCount++
		l.lastWarning = err.Error()
		ui.Warning("Simulation %s: skipping tick: %v", l.GetId(), err)
	}
	l.publish()
	return err
}

// step computes the controller output and the next plant state
// and only commits both if neither failed.
func (l *DefaultSimulationLoop) step() error {
	params := l.GetParameters()
	dt := l.config.Dt

	measured := l.plant.State().Position
	terms, pidState, err := l.pid.Evaluate(params.Setpoint, measured, dt, params.Gains)
	if err != nil {
		return err
	}

	disturbance := params.Disturbance
	if l.config.Disturbance.NoiseStdDev > 0 {
		disturbance += l.noise.NormFloat64() * l.config.Disturbance.NoiseStdDev
	}

	next, err := l.plant.Next(terms.Output, disturbance, dt)
	if err != nil {
		return err
	}

	l.pid.Commit(terms, pidState)
	l.plant.Commit(next)

	l.statistics.TickCount++
	timestamp := float64(l.statistics.TickCount) * dt

	l.telemetry.Append(telemetry.Sample{
		Timestamp:   timestamp,
		Setpoint:    params.Setpoint,
		Measurement: next.Position,
		Control:     terms.Output,
	})

	l.errorWindow.Append(math.Abs(params.Setpoint - next.Position))
	l.statistics.MaxRecentError = util.GetWindowMax(l.errorWindow)
	l.statistics.Settled = l.statistics.TickCount >= uint64(l.config.Settle.WindowSize) &&
		l.statistics.MaxRecentError <= l.config.Settle.Tolerance

	return nil
}

func (l *DefaultSimulationLoop) applyPendingReset() {
	seq := l.resetSeq.Load()
	if seq == l.appliedSeq {
		return
	}
	l.appliedSeq = seq
	l.reset()
}

// reset flushes all owned state back to the configured initial condition
func (l *DefaultSimulationLoop) reset() {
	l.plant.Reset(l.config.InitialState())
	l.pid.Reset()
	l.telemetry.Clear()
	l.noise = rand.New(rand.NewPCG(l.seed, l.seed))
	l.statistics = Statistics{}
	l.lastWarning = ""

	windowSize := l.config.Settle.WindowSize
	if windowSize <= 0 {
		windowSize = 1
	}
	initialError := math.Abs(l.GetParameters().Setpoint - l.config.Plant.InitialPosition)
	l.errorWindow = util.CreateRollingWindow(windowSize)
	util.FillWindow(l.errorWindow, windowSize, initialError)
	l.statistics.MaxRecentError = initialError

	l.publish()
}

func (l *DefaultSimulationLoop) publish() {
	l.snapshot.Store(&Snapshot{
		Id:          l.GetId(),
		Status:      l.GetStatus(),
		Time:        float64(l.statistics.TickCount) * l.config.Dt,
		Plant:       l.plant.State(),
		Parameters:  l.GetParameters(),
		Terms:       l.pid.Terms(),
		Statistics:  l.statistics,
		Seed:        l.seed,
		LastWarning: l.lastWarning,
	})
}
