package fock

import (
	"math"

	"github.com/pkg/errors"

	"fock/linalg"
	"fock/pool"
)

// Component indexes the matrices of a multi-component quantity. Index 0 is
// always the charge (scalar) component; the spin projections exist only in
// two-component treatments.
type Component int

const (
	Scalar Component = iota
	Mx
	My
	Mz
)

// Kind selects the operator of a two-body contraction request.
type Kind int

const (
	Coulomb Kind = iota
	Exchange
)

// Contraction is one request to the two-body engine: contract Density with
// the electron repulsion integrals and write (or accumulate onto) Dest.
type Contraction[T linalg.Scalar] struct {
	Density    []T
	Dest       []T
	Accumulate bool
	Kind       Kind
}

// Contractor is the external two-electron integral engine. A whole Fock
// build issues a single batched call so the engine can share integral
// screening between the Coulomb and exchange terms.
type Contractor[T linalg.Scalar] interface {
	Contract([]Contraction[T]) error
}

// State owns every matrix of one electronic-structure calculation. All
// buffers are NB×NB column-major slices sharing the same leading dimension
// NB; component-indexed quantities hold one buffer per Component. The
// canonical Coulomb storage JScalar is always real, whatever the working
// scalar type is.
//
// OnePDM is the full density, DeltaOnePDM the change since the last build;
// FormGD contracts one or the other depending on its increment flag. The
// state assumes exclusive access to its buffers for the duration of a call.
type State[T linalg.Scalar] struct {
	NB int

	OnePDM      [][]T
	DeltaOnePDM [][]T
	Fock        [][]T
	GD          [][]T
	K           [][]T
	JScalar     []float64

	// CoreH holds one real matrix per component, Dipole one real matrix
	// per spatial axis (nil axes carry no field coupling).
	CoreH  [][]float64
	Dipole [3][]float64

	TwoBody Contractor[T]
	Mem     *pool.Pool
}

// NewState allocates the mutable buffer set for nb basis functions. The
// number of components is taken from coreH: 1 for scalar treatments, 4 for
// two-component ones. Real scalar types admit only the scalar component.
func NewState[T linalg.Scalar](nb int, coreH [][]float64, dipole [3][]float64, twoBody Contractor[T], mem *pool.Pool) (*State[T], error) {
	ncomp := len(coreH)
	if ncomp != 1 && ncomp != 4 {
		return nil, errors.Errorf("%d core Hamiltonian components", ncomp)
	}
	if _, real64 := any(*new(T)).(float64); real64 && ncomp != 1 {
		return nil, errors.Errorf("%d components in a real calculation", ncomp)
	}
	nb2 := nb * nb
	for i, h := range coreH {
		if len(h) != nb2 {
			return nil, errors.Errorf("component %d: %d elements, expected %d", i, len(h), nb2)
		}
	}
	for axis, d := range dipole {
		if d != nil && len(d) != nb2 {
			return nil, errors.Errorf("axis %d: %d elements, expected %d", axis, len(d), nb2)
		}
	}

	s := &State[T]{
		NB:      nb,
		JScalar: make([]float64, nb2),
		CoreH:   coreH,
		Dipole:  dipole,
		TwoBody: twoBody,
		Mem:     mem,
	}
	alloc := func() [][]T {
		m := make([][]T, ncomp)
		for i := range m {
			m[i] = make([]T, nb2)
		}
		return m
	}
	s.OnePDM = alloc()
	s.DeltaOnePDM = alloc()
	s.Fock = alloc()
	s.GD = alloc()
	s.K = alloc()
	return s, nil
}

// Energy returns the electronic energy Re Tr[D(Hcore+F)] of the current
// scalar density against the last built Fock matrix.
func (s *State[T]) Energy() float64 {
	nb := s.NB
	var e complex128
	for j := 0; j < nb; j++ {
		for i := 0; i < nb; i++ {
			d := linalg.To[complex128](s.OnePDM[Scalar][j*nb+i])
			hf := complex(s.CoreH[Scalar][i*nb+j], 0) + linalg.To[complex128](s.Fock[Scalar][i*nb+j])
			e += d * hf
		}
	}
	return real(e)
}

// DipoleExpectation returns -2 Re Tr[D·d] per axis, the electronic dipole of
// the scalar density. Axes without dipole integrals report zero.
func (s *State[T]) DipoleExpectation() [3]float64 {
	nb := s.NB
	var mu [3]float64
	for axis, d := range s.Dipole {
		if d == nil {
			continue
		}
		var tr complex128
		for j := 0; j < nb; j++ {
			for i := 0; i < nb; i++ {
				tr += linalg.To[complex128](s.OnePDM[Scalar][j*nb+i]) * complex(d[i*nb+j], 0)
			}
		}
		mu[axis] = -2 * real(tr)
	}
	return mu
}

// SetDelta fills DeltaOnePDM with cur-prev for the scalar component, the
// delta density driving an incremental build.
func (s *State[T]) SetDelta(cur, prev []T) {
	if len(cur) != s.NB*s.NB || len(prev) != s.NB*s.NB {
		panic(errors.Errorf("%d %d, expected %d", len(cur), len(prev), s.NB*s.NB).Error())
	}
	for i := range cur {
		s.DeltaOnePDM[Scalar][i] = cur[i] - prev[i]
	}
}

func negligible(v, tol float64) bool {
	return math.Abs(v) <= tol
}
