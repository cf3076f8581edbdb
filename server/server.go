// Package server exposes the gateway operations as MCP tools over a
// JSON-RPC 2.0 transport: newline-delimited frames on stdio, or HTTP
// with SSE notifications.
//
// The transport never decides anything about commands; it decodes
// parameters, hands them to the gateway and marshals the structured
// outcome back. Validation rejections travel inside the tool result, not
// as JSON-RPC errors, so callers always receive a well-formed outcome
// object.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/gateway"
	"github.com/victoralfred/kubegate/policy"
)

const (
	serverName      = "kubegate"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// ToolHandler is the gateway surface the transport dispatches to.
type ToolHandler interface {
	RunCommand(ctx context.Context, args interface{}) *executor.Outcome
	RunImage(ctx context.Context, req gateway.RunImageRequest) *executor.Outcome
	PolicySnapshot() policy.Snapshot
}

// Server dispatches MCP requests to a ToolHandler.
type Server struct {
	handler ToolHandler
	logger  *slog.Logger
}

// NewServer creates an MCP server for the given handler.
func NewServer(handler ToolHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{handler: handler, logger: logger}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type runCommandParams struct {
	Args json.RawMessage `json:"args"`
}

// handle dispatches one request and returns the response, or nil for a
// notification (a request without an id).
func (s *Server) handle(ctx context.Context, req *rpcRequest) *rpcResponse {
	resp := &rpcResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "ping":
		resp.Result = map[string]string{}
	case "initialize":
		resp.Result = map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]string{
				"name":    serverName,
				"version": serverVersion,
			},
		}
	case "notifications/initialized":
		return nil
	case "tools/list":
		resp.Result = map[string]interface{}{"tools": toolDescriptors()}
	case "tools/call":
		result, rpcErr := s.handleToolCall(ctx, req.Params)
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			resp.Result = result
		}
	default:
		resp.Error = &rpcError{
			Code:    codeMethodNotFound,
			Message: "method not found",
			Data:    req.Method,
		}
	}

	if req.ID == nil && resp.Error == nil {
		return nil
	}
	return resp
}

func (s *Server) handleToolCall(ctx context.Context, params json.RawMessage) (interface{}, *rpcError) {
	var call toolCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params", Data: err.Error()}
	}

	switch call.Name {
	case gateway.ToolKubectl:
		var p runCommandParams
		if len(call.Arguments) > 0 {
			if err := json.Unmarshal(call.Arguments, &p); err != nil {
				return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params", Data: err.Error()}
			}
		}
		var args interface{}
		if len(p.Args) > 0 {
			args = p.Args
		}
		return toolResult(s.handler.RunCommand(ctx, args))

	case gateway.ToolRunImage:
		var req gateway.RunImageRequest
		if len(call.Arguments) > 0 {
			if err := json.Unmarshal(call.Arguments, &req); err != nil {
				return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params", Data: err.Error()}
			}
		}
		return toolResult(s.handler.RunImage(ctx, req))

	case gateway.ToolGetConfig:
		return textResult(s.handler.PolicySnapshot())

	default:
		return nil, &rpcError{Code: codeInvalidParams, Message: "unknown tool", Data: call.Name}
	}
}

// toolResult wraps an outcome as MCP tool-call content.
func toolResult(outcome *executor.Outcome) (interface{}, *rpcError) {
	result, rpcErr := textResult(outcome)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result.(map[string]interface{})["isError"] = !outcome.Success
	return result, nil
}

func textResult(v interface{}) (interface{}, *rpcError) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &rpcError{Code: codeInvalidRequest, Message: "encoding result", Data: err.Error()}
	}
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(data)},
		},
	}, nil
}

// Serve reads newline-delimited JSON-RPC frames from r and writes
// responses to w until EOF.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		payload, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var req rpcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.logger.Warn("unparseable frame", "error", err)
			writeResponse(writer, &rpcResponse{
				JSONRPC: "2.0",
				Error:   &rpcError{Code: codeParseError, Message: "parse error", Data: err.Error()},
			})
			continue
		}
		if req.Method == "" {
			writeResponse(writer, &rpcResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &rpcError{Code: codeInvalidRequest, Message: "invalid request", Data: "missing method"},
			})
			continue
		}

		if resp := s.handle(ctx, &req); resp != nil {
			writeResponse(writer, resp)
		}
	}
}

// ServeStdio serves on standard input/output. Stdout carries only
// JSON-RPC frames; the logger must write elsewhere.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// readFrame returns the next JSON frame, skipping blank lines.
func readFrame(r *bufio.Reader) ([]byte, error) {
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" {
			return []byte(trimmed), nil
		}
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

func writeResponse(w *bufio.Writer, resp *rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%s\n", data)
	w.Flush()
}
