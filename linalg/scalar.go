// Package linalg provides the dense column-major matrix primitives shared by
// the Fock assembly pipeline: the weighted combine kernel and the real/imag
// component transfers between real and complex storage.
package linalg

import "fmt"

// Scalar is the set of working scalar types of the engine. Ground-state
// calculations run on float64; real-time propagation carries complex128
// through the same code paths.
type Scalar interface {
	float64 | complex128
}

// FromReal widens a real coefficient to the working scalar type.
func FromReal[T Scalar](v float64) T {
	var t T
	switch p := any(&t).(type) {
	case *float64:
		*p = v
	case *complex128:
		*p = complex(v, 0)
	}
	return t
}

// To converts between working scalar types. Real values promote to complex.
// Narrowing a complex value to float64 is a contract violation.
func To[Dst, Src Scalar](v Src) Dst {
	var d Dst
	switch p := any(&d).(type) {
	case *float64:
		switch s := any(v).(type) {
		case float64:
			*p = s
		case complex128:
			panic(fmt.Sprintf("narrowing complex128 %v to float64", s))
		}
	case *complex128:
		switch s := any(v).(type) {
		case float64:
			*p = complex(s, 0)
		case complex128:
			*p = s
		}
	}
	return d
}
