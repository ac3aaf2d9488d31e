// Package field describes external electric-dipole perturbations and their
// time dependence.
package field

import "math"

// Field is the set of dipole amplitudes active at one instant, indexed by
// spatial axis x, y, z.
type Field struct {
	Amp [3]float64
}

// Active reports whether any axis carries an amplitude. Callers apply their
// own per-axis negligibility thresholds on top.
func (f Field) Active() bool {
	return f.Amp != [3]float64{}
}

// Source supplies the field valid at a given simulation time. Configured
// lets callers skip the whole perturbation path when no field exists.
type Source interface {
	At(t float64) Field
	Configured() bool
}

// Static is a time-independent field.
type Static struct {
	Amp [3]float64
}

func (s Static) At(t float64) Field { return Field{Amp: s.Amp} }
func (s Static) Configured() bool   { return Field{Amp: s.Amp}.Active() }

// GaussianPulse is a carrier wave under a gaussian envelope centered at T0:
//
//	A(t) = Amp · exp(-(t-T0)²/(2σ²)) · cos(ω(t-T0))
type GaussianPulse struct {
	Amp   [3]float64
	T0    float64
	Sigma float64
	Omega float64
}

func (g GaussianPulse) At(t float64) Field {
	dt := t - g.T0
	env := math.Exp(-dt*dt/(2*g.Sigma*g.Sigma)) * math.Cos(g.Omega*dt)
	var f Field
	for i, a := range g.Amp {
		f.Amp[i] = a * env
	}
	return f
}

func (g GaussianPulse) Configured() bool { return Field{Amp: g.Amp}.Active() }
