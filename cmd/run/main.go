package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"fock"
	"fock/config"
	"fock/eri"
	"fock/field"
	"fock/pool"
	"fock/rt"
	"fock/trace"
)

const (
	fnameTrace = "trace.db"
	fnameDone  = "done.txt"
)

var (
	runDir  = flag.String("d", filepath.Join("runs", "h2"), "run directory")
	cfgPath = flag.String("c", "", "yaml config path")
)

// Minimal-basis H2 at bond length 1.4 bohr; integral values from Szabo &
// Ostlund, table 3.12 neighborhood.
const (
	nb   = 2
	s12  = 0.6593
	vnuc = 1 / 1.4
)

func coreH() [][]float64 {
	return [][]float64{{-1.1204, -0.9584, -0.9584, -1.1204}}
}

// dipoleX is <i|x|j> with the molecule along x and one atom at the origin.
func dipoleX() []float64 {
	return []float64{0, 1.4 * s12 / 2, 1.4 * s12 / 2, 1.4}
}

func integrals() *eri.List {
	at := func(i, j, k, l int) int { return ((i*nb+j)*nb+k)*nb + l }
	dense := make([]float64, nb*nb*nb*nb)
	for _, e := range []struct {
		i, j, k, l int
		v          float64
	}{
		{0, 0, 0, 0, 0.7746},
		{1, 1, 1, 1, 0.7746},
		{0, 0, 1, 1, 0.5697},
		{1, 0, 0, 0, 0.4441},
		{1, 0, 1, 1, 0.4441},
		{1, 0, 1, 0, 0.2970},
	} {
		// (ij|kl) has the full 8-fold real-orbital symmetry.
		for _, p := range [][4]int{
			{e.i, e.j, e.k, e.l}, {e.j, e.i, e.k, e.l},
			{e.i, e.j, e.l, e.k}, {e.j, e.i, e.l, e.k},
			{e.k, e.l, e.i, e.j}, {e.l, e.k, e.i, e.j},
			{e.k, e.l, e.j, e.i}, {e.l, e.k, e.j, e.i},
		} {
			dense[at(p[0], p[1], p[2], p[3])] = e.v
		}
	}
	return eri.Pack(nb, dense, 1e-14)
}

// groundDensity is C·Cᵀ for the doubly occupied bonding orbital
// (1,1)/sqrt(2(1+S12)) of the symmetric dimer.
func groundDensity() []complex128 {
	c2 := complex(1/(2*(1+s12)), 0)
	return []complex128{c2, c2, c2, c2}
}

func propagate(dir string, cfg config.Config) error {
	memBytes, err := cfg.MemBytes()
	if err != nil {
		return errors.Wrap(err, "")
	}
	mem := pool.New(memBytes, cfg.MemBlk)

	dipole := [3][]float64{dipoleX(), nil, nil}
	s, err := fock.NewState[complex128](nb, coreH(), dipole, eri.NewEngine[complex128](integrals()), mem)
	if err != nil {
		return errors.Wrap(err, "")
	}
	copy(s.OnePDM[fock.Scalar], groundDensity())

	pulse := field.GaussianPulse(cfg.Pulse)
	r := rt.New(s, pulse, cfg.XHFX)

	rec, err := trace.Open(filepath.Join(dir, fnameTrace))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer rec.Close()

	for i := 0; i < cfg.Steps; i++ {
		if err := r.Step(cfg.Dt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("step %d", i))
		}
		// One more build so the recorded energy sees the post-step
		// density instead of the last stage's.
		if err := r.FormFock(false, r.Time); err != nil {
			return errors.Wrap(err, fmt.Sprintf("step %d", i))
		}

		rs := trace.Step{
			Step:   i,
			T:      r.Time,
			Field:  pulse.At(r.Time).Amp,
			Energy: s.Energy() + vnuc,
			Dipole: s.DipoleExpectation(),
		}
		if err := rec.Record(rs); err != nil {
			return errors.Wrap(err, fmt.Sprintf("step %d", i))
		}
		if i%50 == 0 {
			log.Printf("step %d t=%.3f energy=%.6f", i, rs.T, rs.Energy)
		}
	}
	return nil
}

func solve(dir string, cfg config.Config) error {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	if err := propagate(dir, cfg); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func gather(dir string) ([]trace.Step, error) {
	rec, err := trace.OpenExisting(filepath.Join(dir, fnameTrace))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rec.Close()
	steps, err := rec.Steps()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return steps, nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}
	if cfg.NSMP > 0 {
		runtime.GOMAXPROCS(cfg.NSMP)
	}
	log.Printf("%d workers, %d steps of dt=%g", runtime.GOMAXPROCS(-1), cfg.Steps, cfg.Dt)

	if err := solve(*runDir, cfg); err != nil {
		return errors.Wrap(err, "")
	}

	// Gather results and print them.
	steps, err := gather(*runDir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("step,t,fx,energy,dx\n")
	for _, s := range steps {
		fmt.Printf("%d,%f,%f,%f,%f\n", s.Step, s.T, s.Field[0], s.Energy, s.Dipole[0])
	}
	return nil
}
