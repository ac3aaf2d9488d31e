package pool

import (
	"strings"
	"sync"
	"testing"
)

func TestAllocRelease(t *testing.T) {
	t.Parallel()
	p := New(4096, 1024)

	buf, err := Alloc[float64](p, 100) // 800 bytes, charged 1024
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(buf) != 100 {
		t.Fatalf("%d", len(buf))
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("%d: %v", i, v)
		}
	}
	if free := p.Free(); free != 4096-1024 {
		t.Fatalf("%d", free)
	}

	Release(p, buf)
	if free := p.Free(); free != 4096 {
		t.Fatalf("%d", free)
	}
}

func TestExhausted(t *testing.T) {
	t.Parallel()
	p := New(2048, 1024)

	if _, err := Alloc[complex128](p, 1000); err == nil {
		t.Fatalf("expected exhaustion")
	} else if !strings.Contains(err.Error(), "pool exhausted") {
		t.Fatalf("%+v", err)
	}

	// The failed charge must not leak capacity.
	if free := p.Free(); free != 2048 {
		t.Fatalf("%d", free)
	}
}

func TestConcurrent(t *testing.T) {
	t.Parallel()
	p := New(1<<20, 64)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buf, err := Alloc[complex128](p, 16)
				if err != nil {
					t.Errorf("%+v", err)
					return
				}
				Release(p, buf)
			}
		}()
	}
	wg.Wait()

	if free := p.Free(); free != 1<<20 {
		t.Fatalf("%d", free)
	}
}
