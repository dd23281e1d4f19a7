// Package logger holds the process-wide zerolog logger shared by the API
// server and the desk CLI. Call Init once from main; library code takes a
// zerolog.Logger argument and main hands it Component loggers.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values log at info.
	Level string
	// Pretty switches to zerolog's console writer, used in development and
	// by the CLI.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is stamped on every line when set.
	Service string
}

var (
	mu    sync.RWMutex
	base  *zerolog.Logger
	setup sync.Once
)

// Init builds the shared logger from opts. Only the first call configures
// anything; later calls return the logger built by the first one.
func Init(opts Options) zerolog.Logger {
	setup.Do(func() {
		l := build(opts)
		mu.Lock()
		base = &l
		mu.Unlock()
	})
	return Get()
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	c := zerolog.New(w).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		c = c.Str("service", opts.Service)
	}
	if lvl <= zerolog.DebugLevel {
		c = c.Caller()
	}
	return c.Logger()
}

// Get returns the shared logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		panic("logger: Get() called before Init()")
	}
	return *base
}

// Component tags the shared logger with a component field, e.g. "reminder".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the shared logger. Tests only.
func Reset() {
	mu.Lock()
	base = nil
	setup = sync.Once{}
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl > zerolog.ErrorLevel || lvl < zerolog.TraceLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
