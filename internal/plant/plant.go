package plant

import (
	"github.com/markusressel/pid2go/internal/util"
)

// State of the rod: angle and angular velocity
type State struct {
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
}

// Parameters of the transfer function G(s) = K / (s² + 2ζωn·s + ωn²)
type Parameters struct {
	Gain             float64 `json:"gain"`
	NaturalFrequency float64 `json:"naturalFrequency"`
	DampingRatio     float64 `json:"dampingRatio"`
}

// MotorRodPlant is a second-order model of a motor holding a rod against gravity:
//
//	position'' = K·(u + d) − 2ζωn·position' − ωn²·position
//
// It is not safe for concurrent use.
type MotorRodPlant struct {
	params     Parameters
	method     IntegrationMethod
	integrator integrator

	state State
}

func NewMotorRodPlant(params Parameters, method IntegrationMethod, initial State) (*MotorRodPlant, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	integrator, ok := newIntegrator(method)
	if !ok {
		return nil, util.NewInvalidConfigurationError("integration method '"+string(method)+"'", 0, "is not supported")
	}
	if err := validateState(initial); err != nil {
		return nil, err
	}

	return &MotorRodPlant{
		params:     params,
		method:     method,
		integrator: integrator,
		state:      initial,
	}, nil
}

// Validate checks that the parameters describe a usable plant
func (p Parameters) Validate() error {
	if !util.IsFinite(p.Gain) {
		return util.NewInvalidConfigurationError("gain", p.Gain, "must be finite")
	}
	if !util.IsFinite(p.NaturalFrequency) || p.NaturalFrequency < 0 {
		return util.NewInvalidConfigurationError("naturalFrequency", p.NaturalFrequency, "must be finite and >= 0")
	}
	if !util.IsFinite(p.DampingRatio) || p.DampingRatio < 0 {
		return util.NewInvalidConfigurationError("dampingRatio", p.DampingRatio, "must be finite and >= 0")
	}
	return nil
}

func validateState(s State) error {
	if !util.IsFinite(s.Position) {
		return util.NewInvalidInputError("position", s.Position, "must be finite")
	}
	if !util.IsFinite(s.Velocity) {
		return util.NewInvalidInputError("velocity", s.Velocity, "must be finite")
	}
	return nil
}

func (p *MotorRodPlant) Parameters() Parameters {
	return p.params
}

func (p *MotorRodPlant) Method() IntegrationMethod {
	return p.method
}

func (p *MotorRodPlant) State() State {
	return p.state
}

// Next computes the state one step of dt ahead, given the control input u and
// disturbance d, without modifying the plant.
func (p *MotorRodPlant) Next(u, d, dt float64) (State, error) {
	if !(dt > 0) || !util.IsFinite(dt) {
		return p.state, util.NewInvalidConfigurationError("dt", dt, "must be finite and > 0")
	}
	if !util.IsFinite(u) {
		return p.state, util.NewInvalidInputError("control", u, "must be finite")
	}
	if !util.IsFinite(d) {
		return p.state, util.NewInvalidInputError("disturbance", d, "must be finite")
	}

	next := p.integrator.step(p.derivative(u+d), p.state, dt)
	if err := validateState(next); err != nil {
		return p.state, err
	}
	return next, nil
}

// Step advances the plant by dt and returns the new state.
// On error the plant state is left untouched.
func (p *MotorRodPlant) Step(u, d, dt float64) (State, error) {
	next, err := p.Next(u, d, dt)
	if err != nil {
		return p.state, err
	}
	p.Commit(next)
	return next, nil
}

// Commit applies the result of a previous Next call
func (p *MotorRodPlant) Commit(next State) {
	p.state = next
}

// Reset restores the plant to the given state
func (p *MotorRodPlant) Reset(initial State) {
	p.state = initial
}

func (p *MotorRodPlant) derivative(input float64) derivative {
	k := p.params.Gain
	wn := p.params.NaturalFrequency
	damping := 2 * p.params.DampingRatio * wn
	stiffness := wn * wn
	return func(position, velocity float64) (float64, float64) {
		return velocity, k*input - damping*velocity - stiffness*position
	}
}

// SteadyState returns the resting position for a constant total input,
// or false if the plant has no restoring force (ωn = 0).
func (p Parameters) SteadyState(input float64) (float64, bool) {
	stiffness := p.NaturalFrequency * p.NaturalFrequency
	if stiffness == 0 {
		return 0, false
	}
	return p.Gain * input / stiffness, true
}
