// Package validation decides whether a requested kubectl invocation is
// permitted to run. It normalizes caller-supplied argument data into a
// canonical token vector and applies a layered pipeline: subcommand
// allowlist, dangerous-flag blocklist, reserved-metacharacter rejection,
// plus standalone resource-name and image checks.
//
// Rejection at any step is terminal and produces a structured Error;
// no process is ever spawned before validation completes.
package validation

import (
	"strings"

	"github.com/victoralfred/kubegate/policy"
)

// ToolName is the literal name of the mediated binary. A redundant
// leading token equal to it is tolerated and stripped.
const ToolName = "kubectl"

// overridesFlag enables arbitrary field overrides on created objects and
// is a privilege-escalation path, so it is blocked unconditionally,
// independent of the configured blocklist.
const overridesFlag = "--overrides"

// reservedMetachars are rejected anywhere in a raw token, as defense in
// depth even though execution never passes through a shell. The double
// quote is deliberately absent: patch bodies and JSONPath expressions
// need it, and it is harmless under direct-argv execution. That is an
// intentional policy choice, not an oversight.
const reservedMetachars = ";|&$`\\'\r\n"

// CommandValidator applies the command pipeline against one policy.
type CommandValidator struct {
	policy *policy.Policy
}

// NewCommandValidator creates a validator bound to the given policy.
func NewCommandValidator(p *policy.Policy) *CommandValidator {
	return &CommandValidator{policy: p}
}

// Validate checks a canonical token vector and returns it with any
// leading tool-name token stripped, or a structured rejection.
func (v *CommandValidator) Validate(args []string) ([]string, error) {
	// Tolerate a redundant "kubectl" prefix.
	if len(args) > 0 && args[0] == ToolName {
		args = args[1:]
	}

	if len(args) == 0 {
		return nil, reject(CodeEmptyCommand, "no command provided")
	}

	subcommand := args[0]
	if !v.policy.CommandAllowed(subcommand) {
		return nil, reject(CodeCommandNotAllowed,
			"command %q not allowed; allowed commands: %s",
			subcommand, strings.Join(v.policy.AllowedCommands(), ", "))
	}

	for _, arg := range args {
		// --flag=value and --flag value are checked identically.
		flag := arg
		if idx := strings.IndexByte(arg, '='); idx >= 0 {
			flag = arg[:idx]
		}

		if v.policy.FlagBlocked(flag) || flag == overridesFlag {
			return nil, reject(CodeFlagNotPermitted, "flag %q is not permitted", flag)
		}

		if strings.ContainsAny(arg, reservedMetachars) {
			return nil, reject(CodeInvalidCharacters, "invalid characters in argument: %s", arg)
		}
	}

	return args, nil
}

// CheckTokens rejects any token containing a reserved metacharacter.
// It is used for values that are not part of the subcommand pipeline,
// such as the run-image namespace and trailing container command.
func CheckTokens(tokens []string) error {
	for _, tok := range tokens {
		if strings.ContainsAny(tok, reservedMetachars) {
			return reject(CodeInvalidCharacters, "invalid characters in argument: %s", tok)
		}
	}
	return nil
}

// ValidateImage checks the image against the policy allowlist. An empty
// allowlist disables the run-image operation entirely rather than
// allowing all images; matching is exact string equality only.
func (v *CommandValidator) ValidateImage(image string) error {
	if !v.policy.RunImageEnabled() {
		return reject(CodeFeatureDisabled,
			"run_image is disabled: no allowed images configured")
	}
	if !v.policy.ImageAllowed(image) {
		return reject(CodeImageNotAllowed,
			"image %q not allowed; allowed images: %s",
			image, strings.Join(v.policy.AllowedImages(), ", "))
	}
	return nil
}
