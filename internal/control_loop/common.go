package control_loop

// ControlLoop computes a control signal driving measured towards setpoint
type ControlLoop interface {
	// Compute advances the control loop by dt
	Compute(setpoint, measured, dt float64, gains Gains) (float64, error)
	// Reset clears all accumulated state
	Reset()
}
