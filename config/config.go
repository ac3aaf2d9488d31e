// Package config loads run options: allocator sizing, process parallelism,
// and the propagation parameters of the driver.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Pulse struct {
	Amp   [3]float64 `yaml:"amp"`
	T0    float64    `yaml:"t0"`
	Sigma float64    `yaml:"sigma"`
	Omega float64    `yaml:"omega"`
}

type Config struct {
	// Mem is the allocator budget, either a plain byte count or a number
	// with a KB/MB/GB suffix. MemBlk is the block granularity in bytes.
	Mem    string `yaml:"mem"`
	MemBlk int64  `yaml:"memblk"`
	// NSMP is the process-wide worker count; 0 keeps the runtime default.
	NSMP int `yaml:"nsmp"`

	XHFX  float64 `yaml:"xhfx"`
	Steps int     `yaml:"steps"`
	Dt    float64 `yaml:"dt"`
	Pulse Pulse   `yaml:"pulse"`
}

func Default() Config {
	return Config{
		Mem:    "256MB",
		MemBlk: 2048,
		XHFX:   1,
		Steps:  200,
		Dt:     0.025,
		Pulse:  Pulse{Amp: [3]float64{0.05, 0, 0}, T0: 1, Sigma: 0.2, Omega: 1.5},
	}
}

// Load reads a yaml config; absent keys keep their defaults.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	return c, nil
}

// MemBytes resolves the Mem string to bytes.
func (c Config) MemBytes() (int64, error) {
	b, err := ParseMem(c.Mem)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return b, nil
}

// ParseMem parses a memory size: "256MB", "1.5 GB", "4000000" are all legal.
// Suffixes are decimal (KB = 1e3 bytes).
func ParseMem(s string) (int64, error) {
	s = strings.TrimSpace(s)
	mult := 1.0
	for _, suf := range []struct {
		name string
		mult float64
	}{
		{name: "KB", mult: 1e3},
		{name: "MB", mult: 1e6},
		{name: "GB", mult: 1e9},
	} {
		if strings.HasSuffix(strings.ToUpper(s), suf.name) {
			s = strings.TrimSpace(s[:len(s)-len(suf.name)])
			mult = suf.mult
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(err, s)
	}
	if v <= 0 {
		return 0, errors.Errorf("non-positive memory size %q", s)
	}
	return int64(v * mult), nil
}
