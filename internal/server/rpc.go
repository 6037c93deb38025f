package server

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/contract"
)

// handleMessage serves both message bodies the SSE endpoint advertises:
// JSON-RPC 2.0 requests from MCP clients, and the plain tool bridge
// {tool, input, request_id}. The jsonrpc field decides which.
func (s *Server) handleMessage(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	var probe struct {
		JSONRPC *string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
	}
	if probe.JSONRPC != nil {
		return s.handleRPC(c, body)
	}
	return s.handleBridge(c, body)
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	hasID   bool
}

func (s *Server) handleRPC(c echo.Context, body []byte) error {
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"detail": "invalid JSON-RPC body"})
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err == nil {
		_, req.hasID = keys["id"]
	}

	switch req.Method {
	case "initialize":
		return c.JSON(http.StatusOK, rpcResult(req, s.initializeResult(req.Params)))
	case "notifications/initialized":
		return c.JSON(http.StatusOK, rpcResult(req, nil))
	case "tools/list":
		return c.JSON(http.StatusOK, rpcResult(req, map[string]any{"tools": listTools()}))
	case "tools/call":
		result, rpcErr := callTool(req.Params)
		if rpcErr != nil {
			return c.JSON(http.StatusOK, rpcError(req, rpcErr.code, rpcErr.message))
		}
		return c.JSON(http.StatusOK, rpcResult(req, result))
	}
	return c.JSON(http.StatusOK, rpcError(req, -32601, "Method not found"))
}

// rpcResult builds a response object; the id key appears only when the
// request carried one.
func rpcResult(req rpcRequest, result any) map[string]any {
	out := map[string]any{"jsonrpc": "2.0", "result": result}
	if req.hasID {
		out["id"] = req.ID
	}
	return out
}

func rpcError(req rpcRequest, code int, message string) map[string]any {
	out := map[string]any{
		"jsonrpc": "2.0",
		"error":   map[string]any{"code": code, "message": message},
	}
	if req.hasID {
		out["id"] = req.ID
	}
	return out
}

func (s *Server) initializeResult(params json.RawMessage) map[string]any {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	_ = json.Unmarshal(params, &p)
	version := p.ProtocolVersion
	if version == "" {
		version = DefaultProtocolVersion
	}
	return map[string]any{
		"protocolVersion": version,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo":      map[string]any{"name": ServerName, "version": ServerVersion},
	}
}

type toolListing struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func listTools() []toolListing {
	names := contract.Names()
	out := make([]toolListing, 0, len(names))
	for _, name := range names {
		out = append(out, toolListing{
			Name:        name,
			Description: contract.Description(name),
			InputSchema: contract.InputSchema(name),
		})
	}
	return out
}

type rpcCallError struct {
	code    int
	message string
}

// callTool invokes one tool for a JSON-RPC tools/call request. The tool's
// envelope travels verbatim as the text content item.
func callTool(params json.RawMessage) (map[string]any, *rpcCallError) {
	var p struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, &rpcCallError{code: -32602, message: "Invalid params"}
	}
	arguments := p.Arguments
	if len(arguments) == 0 {
		arguments = json.RawMessage("{}")
	}
	env, _, ok := Invoke(p.Name, arguments)
	if !ok {
		return nil, &rpcCallError{code: -32602, message: "Unknown tool: " + p.Name}
	}
	text, err := json.Marshal(env)
	if err != nil {
		return nil, &rpcCallError{code: -32603, message: "Internal error"}
	}
	return map[string]any{
		"content": []any{map[string]any{"type": "text", "text": string(text)}},
		"isError": !env.OK,
	}, nil
}

type bridgeRequest struct {
	Tool      string          `json:"tool"`
	Input     json.RawMessage `json:"input"`
	RequestID string          `json:"request_id"`
}

// handleBridge serves the plain message form. The tool envelope rides in
// the output field; unknown tools come back as a not-found envelope so the
// bridge response shape stays uniform.
func (s *Server) handleBridge(c echo.Context, body []byte) error {
	var req bridgeRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Tool == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"detail": "message must carry a tool name"})
	}
	input := req.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	env, _, ok := Invoke(req.Tool, input)
	if !ok {
		serr := multitools.NewErrorAt(req.Tool, "lookup", "tool", multitools.ClassNotFound,
			multitools.CodeCapabilityUnknown, "Tool not found.", 404)
		env = multitools.Fail(req.Tool, serr)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":         env.OK,
		"request_id": req.RequestID,
		"tool":       req.Tool,
		"output":     env,
	})
}
