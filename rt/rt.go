// Package rt couples the Fock assembler to real-time propagation: it looks
// up the external field at the current simulation time, rebuilds the Fock
// matrix through that field, and advances the complex density along the
// Liouville-von Neumann equation dD/dt = -i[F,D].
package rt

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"

	"fock"
	"fock/field"
)

// RealTime drives one propagated electronic-structure state. It holds no
// field-construction knowledge of its own; the perturbation source decides
// what is active at each instant.
type RealTime struct {
	State *fock.State[complex128]
	Pert  field.Source
	XHFX  float64
	Time  float64

	// Propagation scratch, sized on first use.
	d0 []complex128
	ds []complex128
	k  [4][]complex128
	fd []complex128
	df []complex128
}

func New(s *fock.State[complex128], pert field.Source, xHFX float64) *RealTime {
	return &RealTime{State: s, Pert: pert, XHFX: xHFX}
}

// FormFock evaluates the perturbation at time t and forwards to the Fock
// assembler with the caller's increment flag.
func (r *RealTime) FormFock(increment bool, t float64) error {
	var f field.Field
	if r.Pert != nil && r.Pert.Configured() {
		f = r.Pert.At(t)
	}
	if err := r.State.FormFock(f, increment, r.XHFX); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Step advances the scalar density by one classical Runge-Kutta step of
// width dt, rebuilding the Fock matrix at every stage time. The stage
// rebuilds after the first run incrementally on the density change since the
// previous rebuild; the final density and Time are updated on success.
func (r *RealTime) Step(dt float64) error {
	s := r.State
	nb2 := s.NB * s.NB
	r.grow(s.NB)

	d := s.OnePDM[fock.Scalar]
	copy(r.d0, d)

	// Stage 1 is a full build at the step start.
	if err := r.FormFock(false, r.Time); err != nil {
		return errors.Wrap(err, "")
	}
	r.liouville(r.k[0], r.d0)

	stage := func(ki int, w, at float64) error {
		prev := make([]complex128, nb2)
		copy(prev, d)
		for i := 0; i < nb2; i++ {
			r.ds[i] = r.d0[i] + complex(w, 0)*r.k[ki-1][i]
		}
		copy(d, r.ds)
		s.SetDelta(d, prev)
		if err := r.FormFock(true, r.Time+at); err != nil {
			return errors.Wrap(err, "")
		}
		r.liouville(r.k[ki], d)
		return nil
	}
	if err := stage(1, dt/2, dt/2); err != nil {
		return errors.Wrap(err, "")
	}
	if err := stage(2, dt/2, dt/2); err != nil {
		return errors.Wrap(err, "")
	}
	if err := stage(3, dt, dt); err != nil {
		return errors.Wrap(err, "")
	}

	w := complex(dt/6, 0)
	for i := 0; i < nb2; i++ {
		d[i] = r.d0[i] + w*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	r.Time += dt
	return nil
}

// liouville writes -i[F,D] into dst for the current scalar Fock matrix.
// Column-major buffers read as row-major cblas128 views are the transposes,
// and [D^T,F^T] = [F,D]^T, so multiplying the views in swapped order lands
// the commutator back in column-major layout.
func (r *RealTime) liouville(dst, d []complex128) {
	nb := r.State.NB
	fT := cblas128.General{Rows: nb, Cols: nb, Stride: nb, Data: r.State.Fock[fock.Scalar]}
	dT := cblas128.General{Rows: nb, Cols: nb, Stride: nb, Data: d}
	fd := cblas128.General{Rows: nb, Cols: nb, Stride: nb, Data: r.fd}
	df := cblas128.General{Rows: nb, Cols: nb, Stride: nb, Data: r.df}
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, dT, fT, 0, fd)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, fT, dT, 0, df)
	for i := range dst {
		dst[i] = -1i * (r.fd[i] - r.df[i])
	}
}

func (r *RealTime) grow(nb int) {
	nb2 := nb * nb
	if len(r.d0) == nb2 {
		return
	}
	r.d0 = make([]complex128, nb2)
	r.ds = make([]complex128, nb2)
	for i := range r.k {
		r.k[i] = make([]complex128, nb2)
	}
	r.fd = make([]complex128, nb2)
	r.df = make([]complex128, nb2)
}
