// Package kubegate provides a mediated kubectl execution gateway.
//
// Kubegate centralizes every kubectl invocation behind a single validated
// path: requests are normalized to argument vectors, checked against a
// layered security policy and executed as direct child processes with
// mandatory timeouts.
//
// # Key Features
//
//   - Subcommand allow-list and dangerous-flag block-list, configurable
//     via YAML or environment variables
//   - Shell metacharacter rejection on every token; execution never
//     touches a shell
//   - Structured outcomes for every request, including rejections
//   - One-off pod execution from an image allow-list
//   - MCP transport over stdio or HTTP with SSE
//   - OpenTelemetry metrics and tracing, append-only audit trail
//   - Per-subcommand rate limiting and bounded concurrency
//
// # Basic Usage
//
//	gw, err := kubegate.New(kubegate.DefaultPolicy())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcome := gw.RunCommand(ctx, []string{"get", "pods"})
//	if !outcome.Success {
//	    log.Printf("rejected or failed: %s", outcome.Error)
//	}
//
// # With Security Policy
//
//	pol := kubegate.NewPolicy(kubegate.PolicyConfig{
//	    AllowedCommands: []string{"get", "describe", "logs"},
//	    AllowedImages:   []string{"busybox:1.36"},
//	})
//	gw, _ := kubegate.New(pol)
//
// # Serving MCP Clients
//
// The kubegate command serves the gateway as MCP tools:
//
//	kubegate serve --transport stdio
//	kubegate serve --transport http --addr 0.0.0.0:8000
//
// See the server package for embedding the transport directly.
package kubegate
