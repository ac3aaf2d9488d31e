package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int64
	}{
		{in: "256MB", want: 256e6},
		{in: "1.5GB", want: 1.5e9},
		{in: "100 KB", want: 100e3},
		{in: "4096", want: 4096},
		{in: " 2mb ", want: 2e6},
	}
	for _, test := range tests {
		got, err := ParseMem(test.in)
		require.NoError(t, err, test.in)
		require.Equal(t, test.want, got, test.in)
	}

	for _, in := range []string{"", "lots", "-1MB", "0"} {
		_, err := ParseMem(in)
		require.Error(t, err, in)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
mem: 1GB
nsmp: 4
xhfx: 0.25
pulse:
  amp: [0.1, 0, 0]
  t0: 2
  sigma: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, c.NSMP)
	require.Equal(t, 0.25, c.XHFX)
	require.Equal(t, [3]float64{0.1, 0, 0}, c.Pulse.Amp)
	require.Equal(t, 2.0, c.Pulse.T0)

	// Absent keys keep their defaults.
	require.Equal(t, Default().Steps, c.Steps)
	require.Equal(t, Default().MemBlk, c.MemBlk)

	b, err := c.MemBytes()
	require.NoError(t, err)
	require.Equal(t, int64(1e9), b)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
