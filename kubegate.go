// Package kubegate provides a mediated kubectl execution gateway.
//
// Kubegate lets a semi-trusted caller invoke a restricted subset of
// kubectl. Every request is normalized to an argument vector, validated
// against a layered security policy (subcommand allow-list, dangerous
// flag block-list, shell metacharacter rejection) and executed as a
// direct child process, never through a shell.
//
// # Quick Start
//
// The simplest way to use kubegate:
//
//	// Build a gateway with the default policy
//	gw, err := kubegate.New(kubegate.DefaultPolicy())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run a command
//	outcome := gw.RunCommand(ctx, []string{"get", "pods", "-n", "default"})
//	fmt.Println(outcome.Stdout)
//
// # With Policy Configuration
//
// For production use, load the policy from configuration:
//
//	cfg, err := kubegate.LoadConfig("/etc/kubegate/kubegate.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gw, err := kubegate.New(cfg.Policy.ToPolicy())
//
// # Security Model
//
// Kubegate implements defense-in-depth validation:
//
//   - Subcommand Allowlisting: Only explicitly allowed kubectl subcommands run
//   - Flag Blocklisting: Identity and cluster-targeting flags are rejected
//   - Metacharacter Rejection: Shell metacharacters never reach the child
//   - Direct Invocation: Commands execute via argv, never a shell
//   - Timeouts: Every invocation runs under the policy's wall-clock limit
//
// # Architecture
//
// The module is organized into focused packages:
//
//   - kubegate (this package): Main entry point and convenience functions
//   - gateway: Tool-call orchestration across validation and execution
//   - policy: Immutable compiled security policy
//   - validation: Normalization and the validation pipeline
//   - executor: Child-process execution with timeouts and concurrency bounds
//   - resilience: Per-subcommand rate limiting
//   - observability: OpenTelemetry metrics and the audit trail
//   - server: MCP transport (stdio and HTTP/SSE)
//
// # Thread Safety
//
// The Gateway and Executor are safe for concurrent use by multiple
// goroutines without additional synchronization.
package kubegate

import (
	"github.com/victoralfred/kubegate/config"
	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/gateway"
	"github.com/victoralfred/kubegate/policy"
	"github.com/victoralfred/kubegate/validation"
)

// =============================================================================
// Core Types
// =============================================================================

// Gateway orchestrates validation, execution and observability for one
// configured policy. Create gateways with New.
type Gateway = gateway.Gateway

// RunImageRequest describes a request to run an allow-listed image as a
// one-off pod.
type RunImageRequest = gateway.RunImageRequest

// Outcome is the structured result of an invocation, whether it was
// rejected, timed out or ran to completion.
type Outcome = executor.Outcome

// Policy is the immutable compiled security policy.
type Policy = policy.Policy

// PolicyConfig configures a policy before compilation.
type PolicyConfig = policy.Config

// PolicySnapshot is a read-only summary of an active policy.
type PolicySnapshot = policy.Snapshot

// Config is the full gateway configuration.
type Config = config.Config

// ValidationError is a structured validation rejection carrying a stable
// machine-readable code.
type ValidationError = validation.Error

// =============================================================================
// Error Variables
// =============================================================================

// ErrRejected is the sentinel all validation rejections unwrap to.
var ErrRejected = validation.ErrRejected

// Validation rejection codes.
const (
	CodeCommandNotAllowed   = validation.CodeCommandNotAllowed
	CodeFlagNotPermitted    = validation.CodeFlagNotPermitted
	CodeInvalidCharacters   = validation.CodeInvalidCharacters
	CodeInvalidInput        = validation.CodeInvalidInput
	CodeEmptyCommand        = validation.CodeEmptyCommand
	CodeInvalidResourceName = validation.CodeInvalidResourceName
	CodeFeatureDisabled     = validation.CodeFeatureDisabled
	CodeImageNotAllowed     = validation.CodeImageNotAllowed
)

// =============================================================================
// Status Constants
// =============================================================================

// Invocation status values.
const (
	StatusSuccess      = executor.StatusSuccess
	StatusError        = executor.StatusError
	StatusTimeout      = executor.StatusTimeout
	StatusSpawnFailure = executor.StatusSpawnFailure
	StatusRateLimited  = executor.StatusRateLimited
	StatusRejected     = executor.StatusRejected
)

// =============================================================================
// Convenience Functions
// =============================================================================

// New creates a gateway with the given policy and a default executor.
func New(p *Policy, opts ...gateway.Option) (*Gateway, error) {
	exec, err := executor.NewBuilder().WithPolicy(p).Build()
	if err != nil {
		return nil, err
	}
	return gateway.New(p, exec, opts...), nil
}

// DefaultPolicy returns the built-in read-mostly policy.
func DefaultPolicy() *Policy {
	return policy.Default()
}

// NewPolicy compiles a policy from its configuration.
func NewPolicy(cfg PolicyConfig) *Policy {
	return policy.New(cfg)
}

// LoadConfig loads configuration from defaults, the YAML file at path if
// one is given, and environment overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Version reports the module version.
func Version() string {
	return "1.0.0"
}
