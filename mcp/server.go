package mcp

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "mcp")

const (
	// DefaultServerName is the implementation name of the tool host
	DefaultServerName = "server"
	// DefaultVersion is the implementation version reported on handshake
	DefaultVersion = "v0.1.0"
)

// ServerConfig describes the tool host implementation.
type ServerConfig struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Server serves the registered tools.
type Server struct {
	name     string
	server   *mcpsdk.Server
	registry *tools.Registry
}

// NewServer returns a server for the registry.
func NewServer(cfg ServerConfig, registry *tools.Registry) (*Server, error) {
	if registry == nil {
		return nil, errors.New("tools registry is required")
	}

	name := values.StringsCoalesce(cfg.Name, DefaultServerName)
	s := &Server{
		name:     name,
		registry: registry,
		server: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    name,
			Version: values.StringsCoalesce(cfg.Version, DefaultVersion),
		}, &mcpsdk.ServerOptions{
			Logger: slogger(),
		}),
	}

	for _, t := range registry.Tools() {
		if err := s.addTool(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the implementation name.
func (s *Server) Name() string {
	return s.name
}

// RegisterTool adds the tool to the registry and advertises it.
func (s *Server) RegisterTool(t tools.ITool) error {
	if err := s.registry.Register(t); err != nil {
		return err
	}
	return s.addTool(t)
}

func (s *Server) addTool(t tools.ITool) error {
	params := t.Parameters()
	if err := checkObjectSchema(params); err != nil {
		return errors.WithMessagef(err, "tool %s", t.Name())
	}

	s.server.AddTool(&mcpsdk.Tool{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: params,
	}, s.handler(t.Name()))

	logger.KV(xlog.DEBUG, "status", "registered", "tool", t.Name())
	return nil
}

// handler returns tool errors as error results, not as protocol errors.
func (s *Server) handler(name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		input := "{}"
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			input = string(req.Params.Arguments)
		}

		out, err := s.registry.Call(ctx, name, input)
		if err != nil {
			if errors.Is(err, tools.ErrUnknownTool) {
				return nil, err
			}
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
			}, nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: out}},
		}, nil
	}
}

// Run serves a single session on the transport until the client disconnects
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context, t mcpsdk.Transport) error {
	logger.ContextKV(ctx, xlog.INFO, "status", "serving", "name", s.name)
	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.WithMessage(err, "mcp server failed")
	}
	return nil
}

// RunStdio serves over stdin and stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect starts a session on the transport, it is used to serve in-process clients.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	ss, err := s.server.Connect(ctx, t, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to connect server")
	}
	return ss, nil
}

// Close releases the tools resources.
func (s *Server) Close() error {
	return s.registry.Close()
}

func checkObjectSchema(params any) error {
	if params == nil {
		return errors.New("input schema is required")
	}
	js, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "failed to marshal input schema")
	}
	var m map[string]any
	if err = json.Unmarshal(js, &m); err != nil {
		return errors.Wrap(err, "input schema must be a JSON object")
	}
	if typ, _ := m["type"].(string); typ != "object" {
		return errors.Errorf(`input schema must have type "object", got %q`, typ)
	}
	return nil
}
