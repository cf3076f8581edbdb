package gateway

import (
	"context"

	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/validation"
)

// RunImageRequest are the structured fields of the run-image operation.
type RunImageRequest struct {
	// Name is the pod name. Validated against platform naming rules,
	// which also prevents a flag-like token smuggled through the name.
	Name string `json:"name"`

	// Image must be an exact member of the policy image allowlist.
	Image string `json:"image"`

	// Namespace is optional. It is a value, not a flag, so it is checked
	// against the reserved-metacharacter set only.
	Namespace string `json:"namespace,omitempty"`

	// Command is an optional trailing container command: a list of
	// strings or a JSON-encoded string standing in for one.
	Command interface{} `json:"command,omitempty"`

	// Remove controls whether auto-cleanup flags are appended. Nil
	// defaults to true.
	Remove *bool `json:"rm,omitempty"`
}

// RunImage runs a single pod from a pre-approved image. The assembled
// vector goes through the executor exactly like any other validated
// command; nothing is spawned before every field has been validated.
func (g *Gateway) RunImage(ctx context.Context, req RunImageRequest) *executor.Outcome {
	ctx, end := g.telemetry.StartSpan(ctx, "gateway.run_image")
	defer end()

	if err := validation.ValidateResourceName(req.Name); err != nil {
		return g.rejected(ctx, ToolRunImage, nil, err)
	}
	if err := g.validator.ValidateImage(req.Image); err != nil {
		return g.rejected(ctx, ToolRunImage, nil, err)
	}

	if req.Namespace != "" {
		if err := validation.CheckTokens([]string{req.Namespace}); err != nil {
			return g.rejected(ctx, ToolRunImage, nil, err)
		}
	}

	var command []string
	if req.Command != nil {
		tokens, err := validation.Normalize(req.Command)
		if err != nil {
			return g.rejected(ctx, ToolRunImage, nil, err)
		}
		if err := validation.CheckTokens(tokens); err != nil {
			return g.rejected(ctx, ToolRunImage, tokens, err)
		}
		command = tokens
	}

	args := []string{"run", req.Name, "--image=" + req.Image, "--restart=Never"}
	if req.Namespace != "" {
		args = append(args, "-n", req.Namespace)
	}
	if req.Remove == nil || *req.Remove {
		args = append(args, "--rm", "-i")
	}
	if len(command) > 0 {
		args = append(args, "--")
		args = append(args, command...)
	}

	outcome := g.exec.Run(ctx, args)
	g.finish(ctx, ToolRunImage, args, outcome)
	return outcome
}
