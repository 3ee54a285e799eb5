package mcp

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientName is the implementation name reported by sessions
const ClientName = "mcpvolume-client"

// Session is an open client session to a tool host.
type Session struct {
	name    string
	session *mcpsdk.ClientSession

	lock   sync.Mutex
	closed bool
}

// Connect runs the handshake with the tool host on the transport.
func Connect(ctx context.Context, name string, t mcpsdk.Transport) (*Session, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    ClientName,
		Version: DefaultVersion,
	}, &mcpsdk.ClientOptions{
		Logger: slogger(),
	})

	cs, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to connect to %s", name)
	}

	var server string
	if ir := cs.InitializeResult(); ir != nil && ir.ServerInfo != nil {
		server = ir.ServerInfo.Name
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"session", name,
		"server", server,
	)

	return &Session{
		name:    name,
		session: cs,
	}, nil
}

// Spawn starts the command as a child process and connects to it over its stdio.
// The process lives until the session is closed or ctx is cancelled.
func Spawn(ctx context.Context, name string, command string, args ...string) (*Session, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = os.Stderr

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "spawn",
		"command", command,
		"args", strings.Join(args, " "),
	)
	return Connect(ctx, name, &mcpsdk.CommandTransport{Command: cmd})
}

// Name returns the name of the session, the script path for spawned hosts.
func (s *Session) Name() string {
	return s.name
}

// ListTools returns all tools advertised by the host.
func (s *Session) ListTools(ctx context.Context) ([]*mcpsdk.Tool, error) {
	var list []*mcpsdk.Tool
	for t, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to list tools of %s", s.name)
		}
		list = append(list, t)
	}
	return list, nil
}

// CallTool invokes the tool and returns its text content.
// A result flagged as error is returned as text, only protocol and
// transport failures are errors.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", errors.WithMessagef(err, "failed to call %s on %s", name, s.name)
	}

	text := ResultText(res)
	if res.IsError {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_error_result",
			"session", s.name,
			"tool", name,
			"result", text,
		)
	}
	return text, nil
}

// Close ends the session and stops the host process.
func (s *Session) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	logger.KV(xlog.DEBUG, "status", "closing", "session", s.name)
	if err := s.session.Close(); err != nil {
		return errors.WithMessagef(err, "failed to close %s", s.name)
	}
	return nil
}

// ResultText joins the text content of the result.
func ResultText(res *mcpsdk.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
