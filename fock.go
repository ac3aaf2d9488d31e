// Package fock assembles the effective one-particle Hamiltonian of a
// self-consistent field calculation: the fixed core Hamiltonian, the
// density-dependent mean field G[D] = 2J[D] - x·K[D], and an optional
// external dipole coupling. The same assembly serves ground-state SCF on
// real matrices and real-time propagation on complex ones.
//
// References:
//   - Modern Quantum Chemistry, Attila Szabo and Neil S. Ostlund, chapter 3
package fock

import (
	"github.com/pkg/errors"

	"fock/field"
	"fock/linalg"
	"fock/pool"
)

const (
	// ExchangeTol is the negligibility threshold below which the exact
	// exchange contraction is skipped entirely.
	ExchangeTol = 1e-12
	// FieldTol is the per-axis threshold below which a field component
	// adds no perturbation term.
	FieldTol = 1e-10
)

// FormGD forms the two-body mean field G[D] = 2J[D] - xHFX·K[D], contracting
// the full density, or the delta density when increment is set, in which
// case J and K accumulate onto their previous contents.
//
// The Coulomb term is always contracted against the scalar density only;
// exchange runs once per component and is skipped altogether when xHFX is
// negligible, leaving this cycle's K treated as zero.
func (s *State[T]) FormGD(increment bool, xHFX float64) error {
	nb := s.NB
	pdm := s.OnePDM
	if increment {
		pdm = s.DeltaOnePDM
	}

	// Complex calculations stage J in a transient buffer from the shared
	// allocator; real ones contract straight into the canonical storage.
	jContract, transient, err := s.coulombBuffer()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if transient {
		defer pool.Release(s.Mem, jContract)
	}
	if !increment && !transient {
		clear(jContract)
	}

	contract := []Contraction[T]{{Density: pdm[Scalar], Dest: jContract, Accumulate: true, Kind: Coulomb}}
	if !negligible(xHFX, ExchangeTol) {
		for i := range s.K {
			if !increment {
				clear(s.K[i])
			}
			contract = append(contract, Contraction[T]{Density: pdm[i], Dest: s.K[i], Accumulate: true, Kind: Exchange})
		}
	}
	if err := s.TwoBody.Contract(contract); err != nil {
		return errors.Wrap(err, "")
	}

	// Fold the staged Coulomb matrix back into canonical real storage.
	if transient {
		if increment {
			one := linalg.FromReal[T](1)
			linalg.Combine('N', 'N', nb, nb, one, jContract, nb, one, s.JScalar, nb, jContract, nb)
		}
		linalg.GetReal(nb, nb, 1, jContract, nb, s.JScalar, nb)
	}

	if !negligible(xHFX, ExchangeTol) {
		zero := linalg.FromReal[T](0)
		mx := linalg.FromReal[T](-xHFX)
		for i := range s.K {
			linalg.Combine('N', 'N', nb, nb, zero, s.GD[i], nb, mx, s.K[i], nb, s.GD[i], nb)
		}
	} else {
		for i := range s.GD {
			clear(s.GD[i])
		}
	}

	// Coulomb has no spin dependence: 2J enters the scalar component only.
	one := linalg.FromReal[T](1)
	two := linalg.FromReal[T](2)
	linalg.Combine('N', 'N', nb, nb, one, s.GD[Scalar], nb, two, s.JScalar, nb, s.GD[Scalar], nb)
	return nil
}

// FormFock builds the full Fock matrix for the current density and the given
// field. The increment flag only steers the internal G[D] update; on return
// every Fock component holds the complete operator, never a delta.
func (s *State[T]) FormFock(pert field.Field, increment bool, xHFX float64) error {
	nb := s.NB

	if err := s.FormGD(increment, xHFX); err != nil {
		return errors.Wrap(err, "")
	}

	for i := range s.Fock {
		clear(s.Fock[i])
	}

	// The scalar component of the core Hamiltonian lives on the real
	// axis; the spin components couple through the imaginary one.
	linalg.SetReal(nb, nb, 1, s.CoreH[Scalar], nb, s.Fock[Scalar], nb)
	for i := 1; i < len(s.CoreH); i++ {
		linalg.SetImag(nb, nb, 1, s.CoreH[i], nb, s.Fock[i], nb)
	}

	one := linalg.FromReal[T](1)
	for i := range s.Fock {
		linalg.Combine('N', 'N', nb, nb, one, s.Fock[i], nb, one, s.GD[i], nb, s.Fock[i], nb)
	}

	if pert.Active() {
		for axis, amp := range pert.Amp {
			if negligible(amp, FieldTol) || s.Dipole[axis] == nil {
				continue
			}
			scale := linalg.FromReal[T](-2 * amp)
			linalg.Combine('N', 'N', nb, nb, one, s.Fock[Scalar], nb, scale, s.Dipole[axis], nb, s.Fock[Scalar], nb)
		}
	}
	return nil
}

func (s *State[T]) coulombBuffer() (buf []T, transient bool, err error) {
	if j, ok := any(s.JScalar).([]T); ok {
		return j, false, nil
	}
	buf, err = pool.Alloc[T](s.Mem, s.NB*s.NB)
	if err != nil {
		return nil, false, errors.Wrap(err, "")
	}
	return buf, true, nil
}
