// Package logger builds the zerolog loggers used across the service.
//
// main calls Init once; packages that do not receive a logger explicitly
// use Named to get a component-tagged child of it. New builds a standalone
// logger and never touches the process-wide one.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how a logger is built.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every entry as "service" when set.
	Service string
}

var (
	mu       sync.RWMutex
	once     sync.Once
	instance = zerolog.Nop()
)

// New builds a logger from opts.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Caller().Logger()
}

// Init installs the process-wide logger. Later calls return the logger built
// by the first one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(parseLevel(opts.Level))

		mu.Lock()
		instance = New(opts)
		mu.Unlock()
	})
	return Get()
}

// Get returns the process-wide logger, or a disabled one before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Named tags the process-wide logger with a component name.
func Named(component string) zerolog.Logger {
	return WithComponent(Get(), component)
}

// WithComponent returns a child of l carrying the "component" field.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
