package plant

import "strings"

// IntegrationMethod selects the fixed-step scheme used to advance the plant.
type IntegrationMethod string

const (
	MethodEuler             IntegrationMethod = "euler"
	MethodSemiImplicitEuler IntegrationMethod = "semi-implicit-euler"
	MethodRK4               IntegrationMethod = "rk4"

	DefaultMethod = MethodRK4
)

var SupportedMethods = []IntegrationMethod{
	MethodEuler,
	MethodSemiImplicitEuler,
	MethodRK4,
}

var methodAliases = map[string]IntegrationMethod{
	"euler":               MethodEuler,
	"explicit-euler":      MethodEuler,
	"semi-implicit-euler": MethodSemiImplicitEuler,
	"semi-implicit":       MethodSemiImplicitEuler,
	"symplectic-euler":    MethodSemiImplicitEuler,
	"rk4":                 MethodRK4,
	"runge-kutta":         MethodRK4,
}

// ParseIntegrationMethod normalizes the given name (case, "_" vs "-") and resolves aliases.
// An empty name resolves to DefaultMethod.
func ParseIntegrationMethod(name string) (IntegrationMethod, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if normalized == "" {
		return DefaultMethod, true
	}
	method, ok := methodAliases[normalized]
	return method, ok
}

// derivative returns (position', velocity') for the given state
type derivative func(position, velocity float64) (float64, float64)

type integrator interface {
	step(f derivative, s State, dt float64) State
}

func newIntegrator(method IntegrationMethod) (integrator, bool) {
	switch method {
	case MethodEuler:
		return euler{}, true
	case MethodSemiImplicitEuler:
		return semiImplicitEuler{}, true
	case MethodRK4:
		return rk4{}, true
	default:
		return nil, false
	}
}

type euler struct{}

func (euler) step(f derivative, s State, dt float64) State {
	dx, dv := f(s.Position, s.Velocity)
	return State{
		Position: s.Position + dt*dx,
		Velocity: s.Velocity + dt*dv,
	}
}

// semiImplicitEuler updates the velocity first and integrates the position with the new velocity
type semiImplicitEuler struct{}

func (semiImplicitEuler) step(f derivative, s State, dt float64) State {
	_, dv := f(s.Position, s.Velocity)
	velocity := s.Velocity + dt*dv
	return State{
		Position: s.Position + dt*velocity,
		Velocity: velocity,
	}
}

type rk4 struct{}

func (rk4) step(f derivative, s State, dt float64) State {
	k1x, k1v := f(s.Position, s.Velocity)
	k2x, k2v := f(s.Position+dt*0.5*k1x, s.Velocity+dt*0.5*k1v)
	k3x, k3v := f(s.Position+dt*0.5*k2x, s.Velocity+dt*0.5*k2v)
	k4x, k4v := f(s.Position+dt*k3x, s.Velocity+dt*k3v)

	dt6 := dt / 6.0
	return State{
		Position: s.Position + dt6*(k1x+2*k2x+2*k3x+k4x),
		Velocity: s.Velocity + dt6*(k1v+2*k2v+2*k3v+k4v),
	}
}
