// Package server is the HTTP transport: one POST route per tool, the
// discovery manifest, and the SSE/JSON-RPC bridge used by MCP clients.
package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/YanKe1816/multi-tools-server/contract"
	"github.com/YanKe1816/multi-tools-server/internal/config"
)

// ServerName and ServerVersion identify this server to MCP clients.
const (
	ServerName    = "multi-tools-server"
	ServerVersion = "1.0.0"
)

// DefaultProtocolVersion is assumed when an initialize request does not
// state one.
const DefaultProtocolVersion = "2025-03-26"

// ssePadding is the size of the leading comment frame. Some proxies
// buffer the first kilobytes of a stream; the padding flushes through.
const ssePadding = 2048

// Server wires the tool engines to echo.
type Server struct {
	echo      *echo.Echo
	keepAlive time.Duration
}

// New builds the server with all routes registered.
func New(cfg config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goJSONSerializer{}
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		keepAlive: time.Duration(cfg.SSE.KeepAliveSeconds) * time.Second,
	}

	e.GET("/", s.handleHome)
	e.GET("/mcp", s.handleManifest)
	e.GET("/connect", s.handleConnect)
	e.GET("/sse", s.handleSSE)
	e.POST("/sse/", s.handleMessage)
	e.POST("/message", s.handleMessage)
	e.POST("/tools/:name", s.handleTool)

	return s
}

// Start listens on addr until the listener fails.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// ServeHTTP lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// goJSONSerializer swaps echo's encoding/json for goccy. Responses keep
// non-ASCII characters unescaped the way the engines produced them.
type goJSONSerializer struct{}

func (goJSONSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	enc.SetIndent("", indent)
	return enc.Encode(i)
}

func (goJSONSerializer) Deserialize(c echo.Context, i any) error {
	return json.NewDecoder(c.Request().Body).Decode(i)
}

func (s *Server) handleHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "ok",
		"message":       "server is running",
		"docs":          "/docs",
		"openapi":       "/openapi.json",
		"tool_manifest": "/mcp",
	})
}

type manifestEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

func (s *Server) handleManifest(c echo.Context) error {
	summaries := contract.Summaries()
	tools := make([]manifestEntry, 0, len(summaries))
	for _, summary := range summaries {
		tools = append(tools, manifestEntry{
			Name:        summary.Name,
			Path:        summary.Path,
			Description: summary.Description,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleConnect(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"server_name":    ServerName,
		"server_version": ServerVersion,
		"sse_url":        "/sse",
		"tools_url":      "/mcp",
	})
}

func (s *Server) handleTool(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	env, status, ok := Invoke(c.Param("name"), body)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
	return c.JSON(status, env)
}

func (s *Server) handleSSE(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	fmt.Fprintf(res, ":%s\n\n", strings.Repeat(" ", ssePadding))
	fmt.Fprintf(res, "event: endpoint\ndata: %s://%s/message\n\n", c.Scheme(), c.Request().Host)
	res.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			fmt.Fprint(res, ": keep-alive\n\n")
			res.Flush()
		}
	}
}
