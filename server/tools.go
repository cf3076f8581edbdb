package server

import "github.com/victoralfred/kubegate/gateway"

// Tool describes one MCP tool for tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func toolDescriptors() []Tool {
	return []Tool{
		{
			Name:        gateway.ToolKubectl,
			Description: "Run a kubectl command restricted to the allowed subcommands. Accepts the command as an argument vector or a JSON-encoded string; a leading \"kubectl\" token is ignored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"args": map[string]interface{}{
						"description": "kubectl arguments, e.g. [\"get\", \"pods\", \"-n\", \"default\"]",
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"args"},
			},
		},
		{
			Name:        gateway.ToolRunImage,
			Description: "Run an allow-listed container image as a one-off pod (kubectl run --restart=Never). Disabled unless images are allow-listed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "pod name",
					},
					"image": map[string]interface{}{
						"type":        "string",
						"description": "container image, must exactly match an allow-listed image",
					},
					"namespace": map[string]interface{}{
						"type":        "string",
						"description": "target namespace (optional)",
					},
					"command": map[string]interface{}{
						"description": "command to run in the container (optional)",
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
					},
					"rm": map[string]interface{}{
						"type":        "boolean",
						"description": "delete the pod after it exits (default true)",
					},
				},
				"required": []string{"name", "image"},
			},
		},
		{
			Name:        gateway.ToolGetConfig,
			Description: "Return the effective security policy: allowed subcommands, blocked flags, timeout and image allow-list.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
