package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"anamnesis/internal/anaerr"
	"anamnesis/internal/logging"
	"anamnesis/internal/resilience"
)

// Server is the line-delimited JSON-RPC 2.0 stdio server (spec §6.1).
// Each tools/call is run through a shared CircuitBreaker so a backend
// outage degrades into tool-level errors rather than hanging the whole
// transport loop (spec §7's "tool-server wrapper additionally captures
// circuit-breaker rejections").
type Server struct {
	registry *Registry
	breaker  *resilience.CircuitBreaker

	out   io.Writer
	outMu sync.Mutex
}

// NewServer wires a server over registry, guarding every tool call with
// a breaker configured per spec §4.8's defaults.
func NewServer(registry *Registry, out io.Writer) *Server {
	return &Server{
		registry: registry,
		breaker:  resilience.NewCircuitBreaker("mcp-tools", resilience.DefaultBreakerConfig()),
		out:      out,
	}
}

// Serve reads newline-delimited JSON-RPC requests from in until EOF or
// ctx is canceled, writing one response per request (none for
// notifications) to the server's configured writer.
func (s *Server) Serve(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handleLine(ctx, append([]byte(nil), line...))
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(response{JSONRPC: "2.0", Error: &rpcError{Code: errCodeParse, Message: "invalid JSON"}})
		return
	}

	isNotification := len(req.ID) == 0
	resp := s.dispatch(ctx, req)
	if isNotification {
		return
	}
	resp.ID = req.ID
	resp.JSONRPC = "2.0"
	s.writeResponse(resp)
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize()
	case "notifications/initialized":
		return response{} // no response for notifications
	case "ping":
		return response{Result: map[string]any{}}
	case "tools/list":
		return s.handleToolsList()
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	default:
		return response{Error: &rpcError{Code: errCodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)}}
	}
}

func (s *Server) handleInitialize() response {
	return response{Result: map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": "1.0.0",
		},
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
	}}
}

func (s *Server) handleToolsList() response {
	tools := s.registry.List()
	listing := make([]toolListing, 0, len(tools))
	for _, t := range tools {
		listing = append(listing, toolListing{Name: t.Name, Description: t.Description, InputSchema: t.Schema})
	}
	return response{Result: map[string]any{"tools": listing}}
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, raw json.RawMessage) response {
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return response{Error: &rpcError{Code: errCodeInvalidParams, Message: "malformed tools/call params"}}
	}

	tool := s.registry.Get(params.Name)
	if tool == nil {
		return response{Error: &rpcError{Code: errCodeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", params.Name)}}
	}

	result, err := s.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return tool.Handler(ctx, params.Arguments)
	}, nil)

	if err != nil {
		logging.Get(logging.CategoryMCP).Error("tool %s failed: %v", params.Name, err)
		return response{Result: errorCallResult(err)}
	}

	payload, ok := result.(map[string]any)
	if !ok {
		payload = map[string]any{"success": true, "result": result}
	}
	return response{Result: toCallResult(payload)}
}

// errorCallResult wraps a protocol-boundary or breaker-rejection error
// into a tool-level error envelope (spec §7: tool calls never fail at
// the JSON-RPC layer for backend/breaker errors, only for unknown
// methods/tools).
func errorCallResult(err error) callResult {
	ae := anaerr.Wrap(err, "the tool failed to complete")
	body, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   ae.UserMessage,
		"details": ae.Message,
	})
	return callResult{Content: []contentBlock{{Type: "text", Text: string(body)}}, IsError: true}
}

func toCallResult(payload map[string]any) callResult {
	body, err := json.Marshal(payload)
	if err != nil {
		body, _ = json.Marshal(map[string]any{"success": false, "error": "failed to marshal tool result"})
		return callResult{Content: []contentBlock{{Type: "text", Text: string(body)}}, IsError: true}
	}
	isError := false
	if success, ok := payload["success"].(bool); ok {
		isError = !success
	}
	return callResult{Content: []contentBlock{{Type: "text", Text: string(body)}}, IsError: isError}
}

func (s *Server) writeResponse(resp response) {
	if resp.JSONRPC == "" {
		resp.JSONRPC = "2.0"
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, _ = s.out.Write(data)
	_, _ = s.out.Write([]byte("\n"))
}
