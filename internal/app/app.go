// Package app carries the process-wide ambient state (default timeouts,
// a console logger, per-process dedup for repeated warnings) as explicit
// fields on a value created once at each entry point, instead of package
// globals.
package app

import (
	"os"
	"sync"
	"time"

	"github.com/mcporter/mcporter/internal/mcplog"
)

// Clock is the time source the runtime depends on, so tests can fake it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock is the production Clock.
var RealClock Clock = realClock{}

// Env is the environment-variable lookup the runtime depends on, so tests
// never have to mutate process-global environment.
type Env interface {
	Getenv(key string) string
	LookupEnv(key string) (string, bool)
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }
func (osEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// OSEnv is the production Env, reading directly from the process environment.
var OSEnv Env = osEnv{}

// Context bundles the ambient dependencies every subsystem takes instead of
// reaching for package-level state.
type Context struct {
	Logger *mcplog.Logger
	Env    Env
	Clock  Clock

	warnedOnce sync.Map // path -> struct{}
}

// New builds a Context with the given logger, defaulting Env/Clock to the
// real process environment and wall clock.
func New(logger *mcplog.Logger) *Context {
	if logger == nil {
		logger = mcplog.New(mcplog.LevelInfo)
	}
	return &Context{Logger: logger, Env: OSEnv, Clock: RealClock}
}

// WarnOnce logs msg at most once per distinct key for the lifetime of this
// Context.
func (c *Context) WarnOnce(key, msg string, args ...any) {
	if _, loaded := c.warnedOnce.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	c.Logger.Warnf(msg, args...)
}

// DurationEnv reads an integer-millisecond duration from the environment,
// falling back to def when unset or unparsable.
func (c *Context) DurationEnv(key string, def time.Duration) time.Duration {
	raw, ok := c.Env.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	ms, err := parsePositiveInt(raw)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func parsePositiveInt(s string) (int64, error) {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotInt
		}
		n = n*10 + int64(r-'0')
	}
	if len(s) == 0 {
		return 0, errNotInt
	}
	return n, nil
}

var errNotInt = errNotIntError("not an integer")

type errNotIntError string

func (e errNotIntError) Error() string { return string(e) }
