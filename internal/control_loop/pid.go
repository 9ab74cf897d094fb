package control_loop

import (
	"github.com/markusressel/pid2go/internal/util"
)

const (
	// DefaultIntegralLimit bounds the integral accumulator, 0 disables the clamp
	DefaultIntegralLimit = 10.0
)

type Gains struct {
	// Proportional Constant
	Kp float64 `json:"kp"`
	// Integral Constant
	Ki float64 `json:"ki"`
	// Derivative Constant
	Kd float64 `json:"kd"`
}

func (g Gains) Validate() error {
	if !util.IsFinite(g.Kp) {
		return util.NewInvalidConfigurationError("kp", g.Kp, "must be finite")
	}
	if !util.IsFinite(g.Ki) {
		return util.NewInvalidConfigurationError("ki", g.Ki, "must be finite")
	}
	if !util.IsFinite(g.Kd) {
		return util.NewInvalidConfigurationError("kd", g.Kd, "must be finite")
	}
	return nil
}

// PidState is the error history the PID loop carries between calls
type PidState struct {
	// error of the previous loop
	PreviousError float64 `json:"previousError"`
	// integral from previous loop + error, i.e. integral error
	Integral float64 `json:"integral"`
}

// Terms is the breakdown of a single PID output
type Terms struct {
	Error        float64 `json:"error"`
	Proportional float64 `json:"proportional"`
	Integral     float64 `json:"integral"`
	Derivative   float64 `json:"derivative"`
	Output       float64 `json:"output"`
}

// PidControlLoop is a textbook PID controller with a clamped integral accumulator.
// It is not safe for concurrent use.
type PidControlLoop struct {
	// bound for the integral accumulator, <= 0 means unbounded
	integralLimit float64

	state     PidState
	lastTerms Terms
}

// NewPidControlLoop creates a PidControlLoop. The integral accumulator is clamped
// to [-integralLimit, integralLimit], an integralLimit <= 0 disables the clamp.
func NewPidControlLoop(integralLimit float64) *PidControlLoop {
	return &PidControlLoop{
		integralLimit: integralLimit,
	}
}

func (l *PidControlLoop) IntegralLimit() float64 {
	return l.integralLimit
}

func (l *PidControlLoop) State() PidState {
	return l.state
}

// Terms returns the breakdown of the last committed output
func (l *PidControlLoop) Terms() Terms {
	return l.lastTerms
}

// Evaluate computes the next control output and the resulting loop state
// without modifying the loop. Apply the result using Commit.
func (l *PidControlLoop) Evaluate(setpoint, measured, dt float64, gains Gains) (Terms, PidState, error) {
	if !(dt > 0) || !util.IsFinite(dt) {
		return Terms{}, l.state, util.NewInvalidConfigurationError("dt", dt, "must be finite and > 0")
	}
	if err := gains.Validate(); err != nil {
		return Terms{}, l.state, err
	}
	if !util.IsFinite(setpoint) {
		return Terms{}, l.state, util.NewInvalidConfigurationError("setpoint", setpoint, "must be finite")
	}
	if !util.IsFinite(measured) {
		return Terms{}, l.state, util.NewInvalidInputError("measurement", measured, "must be finite")
	}

	err := setpoint - measured

	// --- I Term (anti-windup by clamping the accumulator) ---
	integral := l.state.Integral + err*dt
	if l.integralLimit > 0 {
		integral = util.Coerce(integral, -l.integralLimit, l.integralLimit)
	}

	terms := Terms{
		Error:        err,
		Proportional: gains.Kp * err,
		Integral:     gains.Ki * integral,
		Derivative:   gains.Kd * (err - l.state.PreviousError) / dt,
	}
	terms.Output = terms.Proportional + terms.Integral + terms.Derivative
	if !util.IsFinite(terms.Output) {
		return Terms{}, l.state, util.NewInvalidInputError("control", terms.Output, "must be finite")
	}

	next := PidState{
		PreviousError: err,
		Integral:      integral,
	}
	return terms, next, nil
}

// Commit applies the result of a previous Evaluate call
func (l *PidControlLoop) Commit(terms Terms, next PidState) {
	l.state = next
	l.lastTerms = terms
}

// Compute advances the pid loop and returns the control output
func (l *PidControlLoop) Compute(setpoint, measured, dt float64, gains Gains) (float64, error) {
	terms, next, err := l.Evaluate(setpoint, measured, dt, gains)
	if err != nil {
		return 0, err
	}
	l.Commit(terms, next)
	return terms.Output, nil
}

// Reset clears the error history, gains are not part of the loop state
func (l *PidControlLoop) Reset() {
	l.state = PidState{}
	l.lastTerms = Terms{}
}
