// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigRegisterFlags(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse(nil))
	require.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, fs.Parse([]string{
		"-arena.capacity-bytes=4096",
		"-arena.max-alignment=64",
		"-arena.guard=LockFree",
		"-arena.backing=mmap",
	}))
	require.Equal(t, Config{CapacityBytes: 4096, MaxAlignment: 64, Guard: GuardLockFree, Backing: BackingMmap}, cfg)
	require.NoError(t, cfg.Validate())

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	cfg.RegisterFlagsWithPrefix("scratch.", fs)
	require.Error(t, fs.Parse([]string{"-scratch.guard=futex"}))
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		err    error
	}{
		"default": {
			mutate: func(*Config) {},
		},
		"zero capacity on the heap": {
			mutate: func(cfg *Config) { cfg.CapacityBytes = 0 },
		},
		"zero capacity mapped": {
			mutate: func(cfg *Config) { cfg.CapacityBytes, cfg.Backing = 0, BackingMmap },
			err:    ErrInvalidCapacity,
		},
		"capacity larger than an int": {
			mutate: func(cfg *Config) { cfg.CapacityBytes = 1 << 63 },
			err:    ErrInvalidCapacity,
		},
		"alignment not a power of two": {
			mutate: func(cfg *Config) { cfg.MaxAlignment = 48 },
			err:    ErrInvalidAlignment,
		},
		"negative alignment": {
			mutate: func(cfg *Config) { cfg.MaxAlignment = -16 },
			err:    ErrInvalidAlignment,
		},
		"unknown guard": {
			mutate: func(cfg *Config) { cfg.Guard = "futex" },
			err:    errUnsupportedGuard,
		},
		"unknown backing": {
			mutate: func(cfg *Config) { cfg.Backing = "" },
			err:    errUnsupportedBacking,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
capacity_bytes: 65536
guard: mutex
`))
	require.NoError(t, err)
	require.Equal(t, Config{CapacityBytes: 65536, MaxAlignment: DefaultMaxAlign, Guard: GuardMutex, Backing: BackingHeap}, cfg)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(strings.NewReader("capacity: 10\n"))
	require.Error(t, err)

	_, err = LoadConfig(strings.NewReader("max_alignment: 3\n"))
	require.ErrorIs(t, err, ErrInvalidAlignment)
}

func TestNewFixedArenaFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CapacityBytes = 256
	cfg.Guard = GuardLockFree

	a, err := NewFixedArenaFromConfig(cfg, nil)
	require.NoError(t, err)
	defer a.Release()
	require.Equal(t, 256, a.Cap())
	require.Equal(t, GuardLockFree, a.Guard())

	cfg.MaxAlignment = 0
	_, err = NewFixedArenaFromConfig(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidAlignment)
}
