// Package eri implements a reference two-electron contraction engine over a
// packed list of electron repulsion integrals (ij|kl). It serves as the
// in-process Contractor behind Fock builds; production integral engines with
// screening plug in through the same interface.
package eri

import (
	"fmt"
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"fock"
	"fock/linalg"
)

// Element is one stored integral value with its four basis indices.
type Element struct {
	V          float64
	I, J, K, L int
}

// List is the packed integral store: nonzero (ij|kl) values in row-major
// canonical order. Negligible values are dropped at packing time, which is
// the screening production engines do dynamically.
type List struct {
	NB   int
	Data []Element
}

// Pack builds a List from a dense nb⁴ tensor laid out as (ij|kl) with l
// fastest. Entries with |v| <= tol are dropped.
func Pack(nb int, dense []float64, tol float64) *List {
	if len(dense) != nb*nb*nb*nb {
		panic(fmt.Sprintf("%d integrals, expected %d", len(dense), nb*nb*nb*nb))
	}
	l := &List{NB: nb, Data: make([]Element, 0)}
	for i := 0; i < nb; i++ {
		for j := 0; j < nb; j++ {
			for k := 0; k < nb; k++ {
				for m := 0; m < nb; m++ {
					v := dense[((i*nb+j)*nb+k)*nb+m]
					if math.Abs(v) <= tol {
						continue
					}
					l.Data = append(l.Data, Element{V: v, I: i, J: j, K: k, L: m})
				}
			}
		}
	}
	return l
}

// Engine contracts densities against a List. It implements fock.Contractor.
type Engine[T linalg.Scalar] struct {
	List *List
	// Workers overrides the process-wide parallelism when positive.
	Workers int
}

func NewEngine[T linalg.Scalar](l *List) *Engine[T] {
	return &Engine[T]{List: l}
}

// Contract walks the integral list once and applies every request of the
// batch per stored element, so Coulomb and exchange terms share the packed
// screening. Per request,
//
//	Coulomb:  J[i,j] += (ij|kl) · D[k,l]
//	Exchange: K[i,k] += (ij|kl) · D[j,l]
//
// with destinations zeroed first unless Accumulate is set. The element
// blocks are contracted in parallel into per-worker partials and merged at
// the join.
func (e *Engine[T]) Contract(reqs []fock.Contraction[T]) error {
	nb := e.List.NB
	nb2 := nb * nb
	for i, r := range reqs {
		if len(r.Density) != nb2 || len(r.Dest) != nb2 {
			return errors.Errorf("request %d: density %d dest %d, expected %d", i, len(r.Density), len(r.Dest), nb2)
		}
		if r.Kind != fock.Coulomb && r.Kind != fock.Exchange {
			return errors.Errorf("request %d: unknown contraction kind %d", i, r.Kind)
		}
		if !r.Accumulate {
			clear(r.Dest)
		}
	}
	if len(e.List.Data) == 0 {
		return nil
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers > len(e.List.Data) {
		workers = len(e.List.Data)
	}
	per := len(e.List.Data) / workers

	partials := make([][][]T, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		lo := w * per
		hi := lo + per
		if w == workers-1 {
			hi = len(e.List.Data)
		}
		g.Go(func() error {
			part := make([][]T, len(reqs))
			for i := range part {
				part[i] = make([]T, nb2)
			}
			for _, el := range e.List.Data[lo:hi] {
				if el.I >= nb || el.J >= nb || el.K >= nb || el.L >= nb {
					return errors.Errorf("element %+v outside %d basis functions", el, nb)
				}
				v := linalg.FromReal[T](el.V)
				for ri, r := range reqs {
					switch r.Kind {
					case fock.Coulomb:
						part[ri][el.J*nb+el.I] += v * r.Density[el.L*nb+el.K]
					case fock.Exchange:
						part[ri][el.K*nb+el.I] += v * r.Density[el.L*nb+el.J]
					}
				}
			}
			partials[w] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "")
	}

	for _, part := range partials {
		for ri, r := range reqs {
			for i, v := range part[ri] {
				r.Dest[i] += v
			}
		}
	}
	return nil
}
