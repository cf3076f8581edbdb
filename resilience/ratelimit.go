// Package resilience provides rate limiting for gateway invocations.
//
// The limiter protects the cluster API server from agent retry storms: an
// automated caller that loops on a failing command gets throttled here
// before a child process is ever spawned.
package resilience

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter controls execution rate per kubectl subcommand.
type Limiter interface {
	// Allow reports whether an invocation of the subcommand may proceed.
	Allow(subcommand string) bool
}

// Config configures the rate limiter.
type Config struct {
	// Enabled turns rate limiting on. Off by default.
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the refill rate shared by all subcommands
	// without a specific limit.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the token bucket size for the shared limit.
	Burst int `yaml:"burst"`

	// PerSubcommand assigns dedicated limits to individual subcommands
	// (e.g. a tighter budget for "delete" than for "get").
	PerSubcommand map[string]SubcommandLimit `yaml:"per_subcommand"`
}

// SubcommandLimit is a dedicated limit for one subcommand.
type SubcommandLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

type limiter struct {
	global *rate.Limiter

	mu     sync.RWMutex
	perCmd map[string]*rate.Limiter
}

// NewLimiter creates a limiter from the configuration. A disabled config
// yields a limiter that always allows.
func NewLimiter(cfg Config) Limiter {
	if !cfg.Enabled {
		return allowAll{}
	}

	l := &limiter{
		global: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		perCmd: make(map[string]*rate.Limiter, len(cfg.PerSubcommand)),
	}
	for cmd, lim := range cfg.PerSubcommand {
		l.perCmd[cmd] = rate.NewLimiter(rate.Limit(lim.RequestsPerSecond), lim.Burst)
	}
	return l
}

// Allow implements Limiter.
func (l *limiter) Allow(subcommand string) bool {
	l.mu.RLock()
	dedicated, ok := l.perCmd[subcommand]
	l.mu.RUnlock()

	if ok {
		return dedicated.Allow()
	}
	return l.global.Allow()
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }
