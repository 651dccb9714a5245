// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"flag"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/alecthomas/units"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a FixedArena: how much to reserve, the alignment the buffer
// guarantees, how allocations are serialized and where the buffer lives.
type Config struct {
	CapacityBytes uint64    `yaml:"capacity_bytes"`
	MaxAlignment  int       `yaml:"max_alignment"`
	Guard         GuardKind `yaml:"guard"`
	Backing       Backing   `yaml:"backing"`
}

// DefaultConfig returns a 1MiB heap backed arena, aligned to DefaultMaxAlign and guarded by a spin lock.
func DefaultConfig() Config {
	return Config{
		CapacityBytes: uint64(1 * units.Mebibyte),
		MaxAlignment:  DefaultMaxAlign,
		Guard:         GuardSpin,
		Backing:       BackingHeap,
	}
}

// RegisterFlags registers the config flags under the "arena." prefix.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("arena.", f)
}

// RegisterFlagsWithPrefix registers the config flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	def := DefaultConfig()
	cfg.Guard = def.Guard
	cfg.Backing = def.Backing

	f.Uint64Var(&cfg.CapacityBytes, prefix+"capacity-bytes", def.CapacityBytes, "Number of bytes reserved for the arena. The arena never grows beyond it.")
	f.IntVar(&cfg.MaxAlignment, prefix+"max-alignment", def.MaxAlignment, "Alignment of the arena buffer and the largest alignment a request may ask for. Must be a power of two.")
	f.Var(&cfg.Guard, prefix+"guard", fmt.Sprintf("How concurrent allocations are serialized. Supported values are: %s.", joinValues(SupportedGuards)))
	f.Var(&cfg.Backing, prefix+"backing", fmt.Sprintf("Where the arena buffer is reserved. Supported values are: %s.", joinValues(SupportedBackings)))
}

// Validate the config.
func (cfg *Config) Validate() error {
	if cfg.CapacityBytes > math.MaxInt {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", cfg.CapacityBytes)
	}
	if cfg.MaxAlignment <= 0 || !isPowerOfTwo(uintptr(cfg.MaxAlignment)) {
		return errors.Wrapf(ErrInvalidAlignment, "max alignment %d", cfg.MaxAlignment)
	}
	if !slices.Contains(SupportedGuards, cfg.Guard) {
		return errors.Wrapf(errUnsupportedGuard, "%q", cfg.Guard)
	}
	if !slices.Contains(SupportedBackings, cfg.Backing) {
		return errors.Wrapf(errUnsupportedBacking, "%q", cfg.Backing)
	}
	if cfg.Backing == BackingMmap && cfg.CapacityBytes == 0 {
		return errors.Wrap(ErrInvalidCapacity, "mmap backing requires a non-zero capacity")
	}
	return nil
}

// LoadConfig decodes a YAML config on top of DefaultConfig and validates it.
// Unknown fields are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode arena config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// String satisfies flag.Value.
func (g GuardKind) String() string {
	return string(g)
}

// Set satisfies flag.Value.
func (g *GuardKind) Set(s string) error {
	v := GuardKind(strings.ToLower(s))
	if !slices.Contains(SupportedGuards, v) {
		return errors.Wrapf(errUnsupportedGuard, "%q", s)
	}
	*g = v
	return nil
}

// String satisfies flag.Value.
func (b Backing) String() string {
	return string(b)
}

// Set satisfies flag.Value.
func (b *Backing) Set(s string) error {
	v := Backing(strings.ToLower(s))
	if !slices.Contains(SupportedBackings, v) {
		return errors.Wrapf(errUnsupportedBacking, "%q", s)
	}
	*b = v
	return nil
}

func joinValues[T ~string](values []T) string {
	s := make([]string, 0, len(values))
	for _, v := range values {
		s = append(s, string(v))
	}
	return strings.Join(s, ", ")
}
