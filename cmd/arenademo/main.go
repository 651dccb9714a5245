// SPDX-License-Identifier: Apache-2.0

// Command arenademo exercises both allocator surfaces: a container growing inside a
// scoped handle, and typed values taken from the process-wide arena.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/alecthomas/units"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	arena "github.com/wundergraph/go-bump-arena"
)

type options struct {
	configFile string
	capacity   units.Base2Bytes
	guard      string
	logLevel   string
	pushes     int
}

func main() {
	var opts options

	app := kingpin.New("arenademo", "Allocate from fixed-capacity bump arenas.")
	app.Flag("config.file", "YAML arena config. Flags override the capacity and guard it sets.").StringVar(&opts.configFile)
	app.Flag("arena.capacity", "Bytes reserved for the arena.").Default("1KiB").BytesVar(&opts.capacity)
	app.Flag("arena.guard", "Concurrency guard of the scoped arena.").Default(string(arena.GuardMutex)).
		EnumVar(&opts.guard, string(arena.GuardNone), string(arena.GuardMutex), string(arena.GuardSpin), string(arena.GuardLockFree))
	app.Flag("log.level", "Only log messages with the given severity or above.").Default("info").
		EnumVar(&opts.logLevel, "debug", "info", "warn", "error")

	handleCmd := app.Command("handle", "Grow a vector inside a scoped arena handle until it holds --pushes bytes.")
	handleCmd.Flag("pushes", "Number of bytes to push.").Default("128").IntVar(&opts.pushes)
	globalCmd := app.Command("global", "Allocate from the process-wide arena.")

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(opts.logLevel)
	cfg, err := loadConfig(opts)
	if err != nil {
		level.Error(logger).Log("msg", "invalid arena config", "err", err)
		os.Exit(1)
	}

	switch cmd {
	case handleCmd.FullCommand():
		err = runHandle(cfg, opts.pushes, logger)
	case globalCmd.FullCommand():
		err = runGlobal(cfg, logger)
	}
	if err != nil {
		level.Error(logger).Log("msg", "allocation failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(lvl string) log.Logger {
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

func loadConfig(opts options) (arena.Config, error) {
	cfg := arena.DefaultConfig()
	if opts.configFile != "" {
		f, err := os.Open(opts.configFile)
		if err != nil {
			return arena.Config{}, err
		}
		defer f.Close()
		if cfg, err = arena.LoadConfig(f); err != nil {
			return arena.Config{}, err
		}
	}
	cfg.CapacityBytes = uint64(opts.capacity)
	cfg.Guard = arena.GuardKind(opts.guard)
	return cfg, cfg.Validate()
}

func runHandle(cfg arena.Config, pushes int, logger log.Logger) error {
	a, err := arena.NewFixedArenaFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	h := arena.HandleOf(a)
	defer h.Release()

	v, err := arena.NewVec[uint8](h, 1)
	if err != nil {
		return err
	}
	for i := 0; i < pushes; i++ {
		before := a.Len()
		if err := v.Push(uint8(i % 255)); err != nil {
			return err
		}
		if a.Len() != before {
			level.Debug(logger).Log("msg", "vector grew", "cap", v.Cap(), "from", before, "to", a.Len())
		}
	}
	fmt.Println(v.Slice())
	logStats(logger, a)
	return nil
}

func runGlobal(cfg arena.Config, logger log.Logger) error {
	if err := arena.InitGlobal(cfg); err != nil {
		return err
	}
	g := arena.Global()

	v := arena.Allocate[[10]int](g)
	if v == nil {
		return arena.ErrOutOfMemory
	}
	for i := range v {
		v[i] = i + 1
	}
	fmt.Println(*v)
	logStats(logger, g)
	return nil
}

func logStats(logger log.Logger, a *arena.FixedArena) {
	s := a.Stats()
	level.Info(logger).Log(
		"msg", "arena usage",
		"used", humanize.IBytes(s.Used),
		"capacity", humanize.IBytes(s.Capacity),
		"allocations", s.Allocations,
		"failures", s.Failures,
	)
}
