// Package mcp serves the tool service over the Model Context Protocol:
// newline-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"picky/internal/app"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "picky"
	maxLineBytes    = 4 << 20
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	svc     *app.Service
	version string
}

func NewServer(svc *app.Service, version string) *Server {
	return &Server{svc: svc, version: version, stdin: os.Stdin, stdout: os.Stdout}
}

// WithIO swaps the transport streams, mainly for tests.
func (s *Server) WithIO(in io.Reader, out io.Writer) *Server {
	s.stdin, s.stdout = in, out
	return s
}

// Request represents a JSON-RPC request. Notifications carry no ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	JSONRPC string `json:"jsonrpc"`
}

type Error struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type ResourceReadParams struct {
	URI string `json:"uri"`
}

// Run serves requests until stdin closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}
		if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
			log.Debug().Str("method", req.Method).Msg("notification received")
			continue
		}

		s.sendResponse(s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.result(req, s.initializeResult())
	case "ping":
		return s.result(req, map[string]any{})
	case "tools/list":
		return s.result(req, map[string]any{"tools": toolDefs})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "resources/list":
		return s.result(req, map[string]any{"resources": resourceDefs})
	case "resources/read":
		return s.handleResourcesRead(ctx, req)
	default:
		return s.fail(req, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) initializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": s.version,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.fail(req, codeInvalidParams, "Invalid params", err.Error())
	}
	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	out, err := s.callTool(ctx, params.Name, args)
	if err != nil {
		return s.fail(req, codeToolError, "Tool error", err.Error())
	}
	text, err := json.MarshalIndent(out.body, "", "  ")
	if err != nil {
		return s.fail(req, codeToolError, "Tool error", err.Error())
	}
	return s.result(req, map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(text)}},
		"isError": out.failed,
	})
}

func (s *Server) handleResourcesRead(ctx context.Context, req *Request) *Response {
	var params ResourceReadParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return s.fail(req, codeInvalidParams, "Invalid params", "uri is required")
	}
	mime, text, err := s.readResource(ctx, params.URI)
	if err != nil {
		return s.fail(req, codeInvalidParams, "Resource error", err.Error())
	}
	return s.result(req, map[string]any{
		"contents": []map[string]any{{"uri": params.URI, "mimeType": mime, "text": text}},
	})
}

func (s *Server) result(req *Request, v any) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: v}
}

func (s *Server) fail(req *Request, code int, msg string, data any) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: code, Message: msg, Data: data}}
}

func (s *Server) sendResponse(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		return
	}
	if _, err := fmt.Fprintln(s.stdout, string(data)); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) sendError(id any, code int, message string, data any) {
	s.sendResponse(&Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message, Data: data}})
}
