package simulation

import (
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/plant"
)

// Parameters are the inputs that can be changed while the simulation is running
type Parameters struct {
	Gains       control_loop.Gains `json:"gains"`
	Setpoint    float64            `json:"setpoint"`
	Disturbance float64            `json:"disturbance"`
}

type Statistics struct {
	// number of successful steps since the last reset
	TickCount uint64 `json:"tickCount"`
	// number of ticks skipped because of an invalid value
	SkippedTickCount uint64 `json:"skippedTickCount"`
	// max absolute error within the settle window
	MaxRecentError float64 `json:"maxRecentError"`
	// true once all errors within a full settle window are within tolerance
	Settled bool `json:"settled"`
}

// Snapshot is an immutable view of a simulation after its latest tick
type Snapshot struct {
	Id     string `json:"id"`
	Status Status `json:"status"`
	// simulated time in seconds
	Time        float64            `json:"time"`
	Plant       plant.State        `json:"plant"`
	Parameters  Parameters         `json:"parameters"`
	Terms       control_loop.Terms `json:"terms"`
	Statistics  Statistics         `json:"statistics"`
	Seed        uint64             `json:"seed"`
	LastWarning string             `json:"lastWarning,omitempty"`
}

// TrackingError returns the distance between setpoint and position
func (s Snapshot) TrackingError() float64 {
	return s.Parameters.Setpoint - s.Plant.Position
}
