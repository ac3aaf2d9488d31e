package rt

import (
	"math/cmplx"
	"testing"

	"fock"
	"fock/eri"
	"fock/field"
	"fock/pool"
)

func twoLevel(t *testing.T, e0, e1 float64) *fock.State[complex128] {
	t.Helper()
	const nb = 2
	coreH := [][]float64{{e0, 0, 0, e1}}
	zeroERI := eri.Pack(nb, make([]float64, nb*nb*nb*nb), 0)
	s, err := fock.NewState[complex128](nb, coreH, [3][]float64{}, eri.NewEngine[complex128](zeroERI), pool.New(0, 0))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return s
}

// TestLiouville checks -i[F,D] elementwise on asymmetric matrices, where a
// layout or transpose slip would show.
func TestLiouville(t *testing.T) {
	t.Parallel()
	s := twoLevel(t, 0, 0)
	// Column-major F = [[1,2],[3,4]], D = [[5,6],[7,8]].
	copy(s.Fock[fock.Scalar], []complex128{1, 3, 2, 4})
	d := []complex128{5, 7, 6, 8}

	r := New(s, nil, 0)
	r.grow(s.NB)
	dst := make([]complex128, 4)
	r.liouville(dst, d)

	// FD = [[19,22],[43,50]], DF = [[23,34],[31,46]].
	want := []complex128{4i, -12i, 12i, -4i}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("%d: %v, expected %v", i, dst[i], want[i])
		}
	}
}

// TestStepTwoLevel propagates a field-free two-level system, where the
// off-diagonal density element rotates as D01(t) = D01(0)·exp(-i(e0-e1)t)
// and the populations stay put.
func TestStepTwoLevel(t *testing.T) {
	t.Parallel()
	const e0, e1 = 1.0, 2.0
	s := twoLevel(t, e0, e1)
	d0 := []complex128{0.7, complex(0.2, 0.1), complex(0.2, -0.1), 0.3}
	copy(s.OnePDM[fock.Scalar], d0)

	r := New(s, nil, 0)
	const dt = 0.01
	const steps = 100
	for i := 0; i < steps; i++ {
		if err := r.Step(dt); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	tEnd := dt * steps
	if diff := r.Time - tEnd; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("%v, expected %v", r.Time, tEnd)
	}

	phase := cmplx.Exp(complex(0, -(e0-e1)*tEnd))
	// D10 rotates with the opposite phase.
	want := []complex128{0.7, d0[1] * phase, d0[2] * cmplx.Conj(phase), 0.3}

	got := s.OnePDM[fock.Scalar]
	const tol = 1e-7
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > tol {
			t.Fatalf("%d: %v, expected %v", i, got[i], want[i])
		}
	}

	// Unitary propagation preserves the trace.
	tr := got[0] + got[3]
	if cmplx.Abs(tr-1) > 1e-10 {
		t.Fatalf("trace %v", tr)
	}
}

// TestFormFockField checks that the coupling layer applies the field valid
// at the requested time, not at the stored one.
func TestFormFockField(t *testing.T) {
	t.Parallel()
	const nb = 2
	coreH := [][]float64{{1, 0, 0, 2}}
	dipole := [3][]float64{{1, 1, 1, 1}, nil, nil}
	zeroERI := eri.Pack(nb, make([]float64, nb*nb*nb*nb), 0)
	s, err := fock.NewState[complex128](nb, coreH, dipole, eri.NewEngine[complex128](zeroERI), pool.New(0, 0))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	copy(s.OnePDM[fock.Scalar], []complex128{0.5, 0, 0, 0.5})

	pulse := field.GaussianPulse{Amp: [3]float64{0.5, 0, 0}, T0: 5, Sigma: 1e6, Omega: 0}
	r := New(s, pulse, 0)

	// At the envelope center the amplitude is 0.5, so every element of
	// the scalar Fock picks up -2·0.5·1 = -1.
	if err := r.FormFock(false, 5); err != nil {
		t.Fatalf("%+v", err)
	}
	want := []complex128{0, -1, -1, 1}
	for i := range want {
		if s.Fock[fock.Scalar][i] != want[i] {
			t.Fatalf("%d: %v, expected %v", i, s.Fock[fock.Scalar][i], want[i])
		}
	}
}
