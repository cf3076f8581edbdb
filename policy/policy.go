// Package policy holds the immutable security rules governing what the
// gateway will execute: the kubectl subcommand allowlist, the dangerous
// flag blocklist, the container image allowlist and the per-invocation
// timeout.
//
// A Policy is constructed once at process start and is never mutated
// afterwards, so it is safe for unsynchronized concurrent reads. Tests
// that need different rules construct a different Policy instead of
// mutating shared state.
package policy

import (
	"sort"
	"time"
)

// Default configuration values. They mirror the rules the gateway ships
// with when nothing is configured.
var (
	// DefaultAllowedCommands are the kubectl subcommands permitted by
	// default. The set covers day-to-day remediation work while keeping
	// cluster-admin operations (apply, create, exec, ...) out of reach.
	DefaultAllowedCommands = []string{
		"get", "describe", "logs", "edit", "patch", "delete", "scale",
		"rollout", "cordon", "uncordon", "drain", "taint", "label",
		"annotate",
	}

	// DefaultDangerousFlags are flags that change execution context or
	// identity and are therefore always rejected.
	DefaultDangerousFlags = []string{
		"--kubeconfig", "--context", "--cluster", "--user", "--token",
		"--as", "--as-group", "--as-uid",
	}
)

// DefaultTimeout is the default wall-clock bound for one invocation.
const DefaultTimeout = 60 * time.Second

// Config is the raw, loadable form of a policy. Nil slices fall back to
// the defaults above; AllowedImages has no default because an empty image
// allowlist means the run-image operation is disabled.
type Config struct {
	AllowedCommands []string      `yaml:"allowed_commands"`
	DangerousFlags  []string      `yaml:"dangerous_flags"`
	AllowedImages   []string      `yaml:"allowed_images"`
	Timeout         time.Duration `yaml:"-"`
}

// Policy is the compiled, read-only rule set.
type Policy struct {
	allowedCommands map[string]struct{}
	dangerousFlags  map[string]struct{}
	allowedImages   map[string]struct{}
	timeout         time.Duration
}

// New compiles a Config into a Policy. Missing fields take defaults.
func New(cfg Config) *Policy {
	commands := cfg.AllowedCommands
	if commands == nil {
		commands = DefaultAllowedCommands
	}
	flags := cfg.DangerousFlags
	if flags == nil {
		flags = DefaultDangerousFlags
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Policy{
		allowedCommands: toSet(commands),
		dangerousFlags:  toSet(flags),
		allowedImages:   toSet(cfg.AllowedImages),
		timeout:         timeout,
	}
}

// Default returns the policy used when no configuration is provided.
func Default() *Policy {
	return New(Config{})
}

// CommandAllowed reports whether the subcommand is in the allowlist.
func (p *Policy) CommandAllowed(command string) bool {
	_, ok := p.allowedCommands[command]
	return ok
}

// FlagBlocked reports whether the flag name is in the blocklist.
// The caller is expected to pass the flag name with any =value suffix
// already stripped.
func (p *Policy) FlagBlocked(flag string) bool {
	_, ok := p.dangerousFlags[flag]
	return ok
}

// ImageAllowed reports whether the image is an exact member of the image
// allowlist. It returns false for every image when the allowlist is empty;
// use RunImageEnabled to distinguish that case.
func (p *Policy) ImageAllowed(image string) bool {
	_, ok := p.allowedImages[image]
	return ok
}

// RunImageEnabled reports whether the run-image operation is enabled at
// all. An empty image allowlist disables it rather than allowing
// everything.
func (p *Policy) RunImageEnabled() bool {
	return len(p.allowedImages) > 0
}

// Timeout returns the wall-clock bound for one invocation.
func (p *Policy) Timeout() time.Duration {
	return p.timeout
}

// AllowedCommands returns a sorted copy of the subcommand allowlist.
func (p *Policy) AllowedCommands() []string {
	return sortedKeys(p.allowedCommands)
}

// DangerousFlags returns a sorted copy of the flag blocklist.
func (p *Policy) DangerousFlags() []string {
	return sortedKeys(p.dangerousFlags)
}

// AllowedImages returns a sorted copy of the image allowlist.
func (p *Policy) AllowedImages() []string {
	return sortedKeys(p.allowedImages)
}

// Snapshot is a read-only summary of the active policy, intended for
// operational debugging. All slices are copies; mutating them does not
// affect the policy.
type Snapshot struct {
	AllowedCommands []string `json:"allowed_commands"`
	DangerousFlags  []string `json:"dangerous_flags"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
	AllowedImages   []string `json:"allowed_images"`
	RunImageEnabled bool     `json:"run_image_enabled"`
}

// Snapshot returns the current policy summary.
func (p *Policy) Snapshot() Snapshot {
	return Snapshot{
		AllowedCommands: p.AllowedCommands(),
		DangerousFlags:  p.DangerousFlags(),
		TimeoutSeconds:  int(p.timeout / time.Second),
		AllowedImages:   p.AllowedImages(),
		RunImageEnabled: p.RunImageEnabled(),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
