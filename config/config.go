// Package config loads gateway configuration: defaults, then an optional
// YAML file, then environment overrides.
//
// The KUBECTL_* variables carry the security policy and keep the
// environment contract of the deployment manifests; KUBEGATE_* variables
// configure the process itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/victoralfred/gowritter/safepath"
	"gopkg.in/yaml.v3"

	"github.com/victoralfred/kubegate/observability"
	"github.com/victoralfred/kubegate/policy"
	"github.com/victoralfred/kubegate/resilience"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the full gateway configuration.
type Config struct {
	Policy        PolicyConfig              `yaml:"policy"`
	Transport     string                    `yaml:"transport"`
	Addr          string                    `yaml:"addr"`
	LogLevel      string                    `yaml:"log_level"`
	LogFormat     string                    `yaml:"log_format"`
	MaxConcurrent int                       `yaml:"max_concurrent"`
	Audit         observability.AuditConfig `yaml:"audit"`
	RateLimit     resilience.Config         `yaml:"rate_limit"`
}

// PolicyConfig is the loadable form of the security policy.
type PolicyConfig struct {
	AllowedCommands []string `yaml:"allowed_commands"`
	DangerousFlags  []string `yaml:"dangerous_flags"`
	AllowedImages   []string `yaml:"allowed_images"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
}

// ToPolicy compiles the policy section.
func (pc PolicyConfig) ToPolicy() *policy.Policy {
	return policy.New(policy.Config{
		AllowedCommands: pc.AllowedCommands,
		DangerousFlags:  pc.DangerousFlags,
		AllowedImages:   pc.AllowedImages,
		Timeout:         time.Duration(pc.TimeoutSeconds) * time.Second,
	})
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Transport:     TransportStdio,
		Addr:          "0.0.0.0:8000",
		LogLevel:      "info",
		LogFormat:     "json",
		MaxConcurrent: 16,
		Audit:         observability.DefaultAuditConfig(),
		RateLimit:     resilience.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// one is given, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		sp, err := safepath.New(filepath.Dir(path))
		if err != nil {
			return cfg, fmt.Errorf("opening config directory: %w", err)
		}
		data, err := sp.ReadFile(filepath.Base(path))
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return cfg, fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("KUBECTL_ALLOWED_COMMANDS"); v != "" {
		cfg.Policy.AllowedCommands = splitList(v)
	}
	if v := os.Getenv("KUBECTL_DANGEROUS_FLAGS"); v != "" {
		cfg.Policy.DangerousFlags = splitList(v)
	}
	if v := os.Getenv("KUBECTL_ALLOWED_IMAGES"); v != "" {
		cfg.Policy.AllowedImages = splitList(v)
	}
	if v := os.Getenv("KUBECTL_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KUBECTL_TIMEOUT: %w", err)
		}
		cfg.Policy.TimeoutSeconds = seconds
	}
	if v := os.Getenv("KUBEGATE_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("KUBEGATE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("KUBEGATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("KUBEGATE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// splitList parses a comma-separated list, dropping blank entries so an
// accidental trailing comma does not widen or narrow a policy set.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
