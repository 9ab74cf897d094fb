package statistics

import (
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/prometheus/client_golang/prometheus"
)

const simulationSubsystem = "simulation"

type SimulationCollector struct {
	simulations []simulation.SimulationLoop

	position         *prometheus.Desc
	velocity         *prometheus.Desc
	setpoint         *prometheus.Desc
	controlOutput    *prometheus.Desc
	error            *prometheus.Desc
	status           *prometheus.Desc
	tickCount        *prometheus.Desc
	skippedTickCount *prometheus.Desc
	maxRecentError   *prometheus.Desc
}

func newSimulationDesc(name string, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, simulationSubsystem, name),
		help,
		[]string{"id"}, nil,
	)
}

func NewSimulationCollector(simulations []simulation.SimulationLoop) *SimulationCollector {
	return &SimulationCollector{
		simulations:      simulations,
		position:         newSimulationDesc("position", "Current position of the rod"),
		velocity:         newSimulationDesc("velocity", "Current velocity of the rod"),
		setpoint:         newSimulationDesc("setpoint", "Current setpoint of the controller"),
		controlOutput:    newSimulationDesc("control_output", "Last output of the PID controller"),
		error:            newSimulationDesc("error", "Difference between setpoint and position"),
		status:           newSimulationDesc("status", "Status of the simulation loop (0: idle, 1: running, 2: paused)"),
		tickCount:        newSimulationDesc("ticks_total", "Number of simulation steps since the last reset"),
		skippedTickCount: newSimulationDesc("skipped_ticks_total", "Number of ticks skipped because of an invalid value"),
		maxRecentError:   newSimulationDesc("max_recent_error", "Max absolute error within the settle window"),
	}
}

func (collector *SimulationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.position
	ch <- collector.velocity
	ch <- collector.setpoint
	ch <- collector.controlOutput
	ch <- collector.error
	ch <- collector.status
	ch <- collector.tickCount
	ch <- collector.skippedTickCount
	ch <- collector.maxRecentError
}

// Collect implements required collect function for all prometheus collectors
func (collector *SimulationCollector) Collect(ch chan<- prometheus.Metric) {
	for _, sim := range collector.simulations {
		id := sim.GetId()
		snapshot := sim.GetSnapshot()
		ch <- prometheus.MustNewConstMetric(collector.position, prometheus.GaugeValue, snapshot.Plant.Position, id)
		ch <- prometheus.MustNewConstMetric(collector.velocity, prometheus.GaugeValue, snapshot.Plant.Velocity, id)
		ch <- prometheus.MustNewConstMetric(collector.setpoint, prometheus.GaugeValue, snapshot.Parameters.Setpoint, id)
		ch <- prometheus.MustNewConstMetric(collector.controlOutput, prometheus.GaugeValue, snapshot.Terms.Output, id)
		ch <- prometheus.MustNewConstMetric(collector.error, prometheus.GaugeValue, snapshot.TrackingError(), id)
		ch <- prometheus.MustNewConstMetric(collector.status, prometheus.GaugeValue, float64(snapshot.Status), id)
		ch <- prometheus.MustNewConstMetric(collector.tickCount, prometheus.CounterValue, float64(snapshot.Statistics.TickCount), id)
		ch <- prometheus.MustNewConstMetric(collector.skippedTickCount, prometheus.CounterValue, float64(snapshot.Statistics.SkippedTickCount), id)
		ch <- prometheus.MustNewConstMetric(collector.maxRecentError, prometheus.GaugeValue, snapshot.Statistics.MaxRecentError, id)
	}
}
