package linalg

import "fmt"

// SetReal writes scale*src into the real part of an m×n block of dst,
// leaving the imaginary part untouched. The real instantiation is a plain
// scaled copy.
func SetReal[T Scalar](m, n int, scale float64, src []float64, lds int, dst []T, ldd int) {
	checkDim(len(src), m, n, lds)
	checkDim(len(dst), m, n, ldd)

	switch d := any(dst).(type) {
	case []float64:
		for j := 0; j < n; j++ {
			os, od := j*lds, j*ldd
			for i := 0; i < m; i++ {
				d[od+i] = scale * src[os+i]
			}
		}
	case []complex128:
		for j := 0; j < n; j++ {
			os, od := j*lds, j*ldd
			for i := 0; i < m; i++ {
				d[od+i] = complex(scale*src[os+i], imag(d[od+i]))
			}
		}
	}
}

// SetImag writes scale*src into the imaginary part of an m×n block of dst,
// leaving the real part untouched. Real destinations have no imaginary axis;
// asking for one is a programming error.
func SetImag[T Scalar](m, n int, scale float64, src []float64, lds int, dst []T, ldd int) {
	checkDim(len(src), m, n, lds)
	checkDim(len(dst), m, n, ldd)

	d, ok := any(dst).([]complex128)
	if !ok {
		panic(fmt.Sprintf("no imaginary part in %T", dst))
	}
	for j := 0; j < n; j++ {
		os, od := j*lds, j*ldd
		for i := 0; i < m; i++ {
			d[od+i] = complex(real(d[od+i]), scale*src[os+i])
		}
	}
}

// GetReal extracts scale times the real part of an m×n block of src into dst.
func GetReal[T Scalar](m, n int, scale float64, src []T, lds int, dst []float64, ldd int) {
	checkDim(len(src), m, n, lds)
	checkDim(len(dst), m, n, ldd)

	switch s := any(src).(type) {
	case []float64:
		for j := 0; j < n; j++ {
			os, od := j*lds, j*ldd
			for i := 0; i < m; i++ {
				dst[od+i] = scale * s[os+i]
			}
		}
	case []complex128:
		for j := 0; j < n; j++ {
			os, od := j*lds, j*ldd
			for i := 0; i < m; i++ {
				dst[od+i] = scale * real(s[os+i])
			}
		}
	}
}
