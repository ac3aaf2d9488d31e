package linalg

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
)

// Combine computes the weighted elementwise sum
//
//	c[i,j] = alpha*a[i,j] + beta*b[i,j]
//
// over an m×n block of column-major matrices with leading dimensions lda,
// ldb, ldc. Operand scalar types may differ; real operands are promoted to
// the result type. Only the 'N'/'N' transpose combination is supported, any
// other request is a programming error and panics. c may alias a, b, or both.
//
// Same-typed float64 and complex128 instantiations are delegated to gonum's
// vectorized kernels; every other combination takes the generic path, which
// partitions the columns over the available processors.
func Combine[A, B, C Scalar](transA, transB byte, m, n int, alpha C, a []A, lda int, beta C, b []B, ldb int, c []C, ldc int) {
	if transA != 'N' || transB != 'N' {
		panic(fmt.Sprintf("unsupported transpose %c%c", transA, transB))
	}
	checkDim(len(a), m, n, lda)
	checkDim(len(b), m, n, ldb)
	checkDim(len(c), m, n, ldc)

	switch cc := any(c).(type) {
	case []float64:
		ca, aok := any(a).([]float64)
		cb, bok := any(b).([]float64)
		if aok && bok {
			combineFloat64(m, n, any(alpha).(float64), ca, lda, any(beta).(float64), cb, ldb, cc, ldc)
			return
		}
	case []complex128:
		ca, aok := any(a).([]complex128)
		cb, bok := any(b).([]complex128)
		switch {
		case aok && bok:
			combineComplex128(m, n, any(alpha).(complex128), ca, lda, any(beta).(complex128), cb, ldb, cc, ldc)
			return
		case aok && !bok:
			// The promoted real second operand is the one mixed
			// instantiation the pipeline exercises on a hot path.
			combineComplexReal(m, n, any(alpha).(complex128), ca, lda, any(beta).(complex128), any(b).([]float64), ldb, cc, ldc)
			return
		}
	}

	parallelCols(n, func(j0, j1 int) {
		for j := j0; j < j1; j++ {
			oa, ob, oc := j*lda, j*ldb, j*ldc
			for i := 0; i < m; i++ {
				c[oc+i] = alpha*To[C](a[oa+i]) + beta*To[C](b[ob+i])
			}
		}
	})
}

func combineFloat64(m, n int, alpha float64, a []float64, lda int, beta float64, b []float64, ldb int, c []float64, ldc int) {
	parallelCols(n, func(j0, j1 int) {
		for j := j0; j < j1; j++ {
			colA := a[j*lda : j*lda+m]
			colB := b[j*ldb : j*ldb+m]
			colC := c[j*ldc : j*ldc+m]
			switch {
			case same(colC, colA) && same(colC, colB):
				floats.Scale(alpha+beta, colC)
			case same(colC, colB):
				floats.Scale(beta, colC)
				floats.AddScaledTo(colC, colC, alpha, colA)
			default:
				floats.ScaleTo(colC, alpha, colA)
				floats.AddScaledTo(colC, colC, beta, colB)
			}
		}
	})
}

func combineComplex128(m, n int, alpha complex128, a []complex128, lda int, beta complex128, b []complex128, ldb int, c []complex128, ldc int) {
	parallelCols(n, func(j0, j1 int) {
		for j := j0; j < j1; j++ {
			colA := a[j*lda : j*lda+m]
			colB := b[j*ldb : j*ldb+m]
			colC := c[j*ldc : j*ldc+m]
			switch {
			case same(colC, colA) && same(colC, colB):
				cmplxs.Scale(alpha+beta, colC)
			case same(colC, colB):
				cmplxs.Scale(beta, colC)
				cmplxs.AddScaledTo(colC, colC, alpha, colA)
			default:
				cmplxs.ScaleTo(colC, alpha, colA)
				cmplxs.AddScaledTo(colC, colC, beta, colB)
			}
		}
	})
}

func combineComplexReal(m, n int, alpha complex128, a []complex128, lda int, beta complex128, b []float64, ldb int, c []complex128, ldc int) {
	parallelCols(n, func(j0, j1 int) {
		for j := j0; j < j1; j++ {
			oa, ob, oc := j*lda, j*ldb, j*ldc
			for i := 0; i < m; i++ {
				c[oc+i] = alpha*a[oa+i] + beta*complex(b[ob+i], 0)
			}
		}
	})
}

// parallelCols splits columns [0,n) over the available processors and blocks
// until every partition is done. Partitions are independent, so no
// synchronization beyond the final join is needed.
func parallelCols(n int, do func(j0, j1 int)) {
	procs := runtime.GOMAXPROCS(-1)
	if procs > n {
		procs = n
	}
	if procs <= 1 {
		do(0, n)
		return
	}

	per := n / procs
	var wg sync.WaitGroup
	for w := 0; w < procs; w++ {
		j0 := w * per
		j1 := j0 + per
		if w == procs-1 {
			j1 = n
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(j0, j1)
		}()
	}
	wg.Wait()
}

func checkDim(have, m, n, ld int) {
	if ld < m {
		panic(fmt.Sprintf("leading dimension %d < %d rows", ld, m))
	}
	if need := (n-1)*ld + m; have < need {
		panic(fmt.Sprintf("buffer holds %d elements, block needs %d", have, need))
	}
}

func same[T Scalar](a, b []T) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
