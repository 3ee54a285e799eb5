package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/mcp"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/mcpvolume/utils"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:generate mockgen -destination=../mocks/mockorchestrator/orchestrator_mock.gen.go -package mockorchestrator github.com/effective-security/mcpvolume/orchestrator ToolSession,Callback

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "orchestrator")

// ErrUnsupportedScript is returned when no interpreter is configured for the script extension.
var ErrUnsupportedScript = errors.New("unsupported server script")

const (
	// DefaultModel is the model used when none is configured
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens is the max output size of a model call
	DefaultMaxTokens = 1000
)

// DefaultInterpreters maps the script extension to the interpreter command.
var DefaultInterpreters = map[string]string{
	".py": "python",
	".js": "node",
}

// ToolSession is an open session to a tool host.
type ToolSession interface {
	// Name returns the name of the session, the script path for spawned hosts.
	Name() string
	// ListTools returns the tools advertised by the host.
	ListTools(ctx context.Context) ([]*mcpsdk.Tool, error)
	// CallTool invokes the tool and returns the result text.
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)

	io.Closer
}

// SpawnFunc starts the tool host command and returns the session to it.
type SpawnFunc func(ctx context.Context, name string, command string, args ...string) (ToolSession, error)

// Spawn starts the tool host as a child process with the MCP command transport.
func Spawn(ctx context.Context, name string, command string, args ...string) (ToolSession, error) {
	s, err := mcp.Spawn(ctx, name, command, args...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Config for the orchestrator
type Config struct {
	// Model is the chat-completion model id
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// MaxTokens is the max output size of each model call
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"gte=0"`
	// Interpreters maps the script extension to the interpreter command
	Interpreters map[string]string `json:"interpreters,omitempty" yaml:"interpreters,omitempty"`
}

// Option configures the orchestrator
type Option func(*Orchestrator)

// WithCallback sets the callback handler
func WithCallback(cb Callback) Option {
	return func(o *Orchestrator) {
		o.callback = cb
	}
}

// WithSpawner sets the function to start the tool hosts
func WithSpawner(spawn SpawnFunc) Option {
	return func(o *Orchestrator) {
		o.spawn = spawn
	}
}

// WithOutput sets the writer for the console output
func WithOutput(out io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = out
	}
}

// Orchestrator connects the model to the tool hosts.
// It is not safe for concurrent use.
type Orchestrator struct {
	llm          llms.Model
	model        string
	maxTokens    int
	interpreters map[string]string

	sessions []ToolSession
	callback Callback
	spawn    SpawnFunc
	out      io.Writer
}

// New returns the orchestrator for the model.
func New(llm llms.Model, cfg Config, opts ...Option) (*Orchestrator, error) {
	if llm == nil {
		return nil, errors.New("llm is required")
	}
	if cfg.MaxTokens < 0 {
		return nil, errors.Newf("invalid max tokens: %d", cfg.MaxTokens)
	}

	interpreters := cfg.Interpreters
	if len(interpreters) == 0 {
		interpreters = DefaultInterpreters
	}

	o := &Orchestrator{
		llm:          llm,
		model:        values.StringsCoalesce(cfg.Model, DefaultModel),
		maxTokens:    values.NumbersCoalesce(cfg.MaxTokens, DefaultMaxTokens),
		interpreters: make(map[string]string, len(interpreters)),
		spawn:        Spawn,
		out:          os.Stdout,
	}
	for ext, cmd := range interpreters {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.interpreters[ext] = cmd
	}

	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Model returns the model id.
func (o *Orchestrator) Model() string {
	return o.model
}

// Sessions returns the open sessions in connection order.
func (o *Orchestrator) Sessions() []ToolSession {
	return slices.Clone(o.sessions)
}

// Command returns the interpreter command for the script,
// the interpreter may include arguments, as in `go run`.
func (o *Orchestrator) Command(scriptPath string) (string, []string, error) {
	ext := strings.ToLower(filepath.Ext(scriptPath))
	fields := strings.Fields(o.interpreters[ext])
	if len(fields) == 0 {
		exts := make([]string, 0, len(o.interpreters))
		for k := range o.interpreters {
			exts = append(exts, k)
		}
		slices.Sort(exts)
		return "", nil, errors.Wrapf(ErrUnsupportedScript, "server script must be a %s file: %q",
			strings.Join(exts, " or "), scriptPath)
	}
	return fields[0], append(fields[1:], scriptPath), nil
}

// ConnectToServer spawns the tool host for the script, runs the handshake
// and lists its tools.
func (o *Orchestrator) ConnectToServer(ctx context.Context, scriptPath string) error {
	command, args, err := o.Command(scriptPath)
	if err != nil {
		return err
	}

	s, err := o.spawn(ctx, scriptPath, command, args...)
	if err != nil {
		return errors.WithMessagef(err, "failed to start server %s", scriptPath)
	}

	return o.AddSession(ctx, s)
}

// ConnectToServers connects to every script, the first failure is returned.
func (o *Orchestrator) ConnectToServers(ctx context.Context, scriptPaths ...string) error {
	for _, p := range scriptPaths {
		if err := o.ConnectToServer(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// AddSession lists the tools of the connected session and keeps it open.
// The session is closed if its tools can not be listed.
func (o *Orchestrator) AddSession(ctx context.Context, s ToolSession) error {
	list, err := s.ListTools(ctx)
	if err != nil {
		_ = s.Close()
		return errors.WithMessagef(err, "failed to list tools of %s", s.Name())
	}

	fmt.Fprintf(o.out, "\nConnected to server %s with tools: %s\n", s.Name(), describeTools(list))

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"session", s.Name(),
		"tools", len(list),
	)
	if o.callback != nil {
		o.callback.OnConnected(ctx, s.Name(), list)
	}

	o.sessions = append(o.sessions, s)
	return nil
}

// ToolCatalog concatenates the tools of every session, in connection order.
// Tools with the same name on different hosts are all included.
func (o *Orchestrator) ToolCatalog(ctx context.Context) ([]llms.Tool, error) {
	var catalog []llms.Tool
	for _, s := range o.sessions {
		list, err := s.ListTools(ctx)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to list tools of %s", s.Name())
		}
		for _, t := range list {
			catalog = append(catalog, llms.FunctionTool(t.Name, t.Description, inputSchema(t)))
		}
	}
	return catalog, nil
}

// Close closes the sessions in reverse order of connection.
func (o *Orchestrator) Close() error {
	var errs []error
	for i := len(o.sessions) - 1; i >= 0; i-- {
		s := o.sessions[i]
		if err := s.Close(); err != nil {
			logger.KV(xlog.ERROR, "status", "close_failed", "session", s.Name(), "err", err.Error())
			errs = append(errs, err)
		}
	}
	o.sessions = nil
	return errors.Join(errs...)
}

func (o *Orchestrator) generate(ctx context.Context, messages []llms.Message, opts ...llms.CallOption) (*llms.ContentChoice, error) {
	started := time.Now()
	defer metricskey.PerfLLMCall.MeasureSince(started, o.model)

	if o.callback != nil {
		o.callback.OnLLMCallStart(ctx, o.llm, messages)
	}

	metricskey.StatsLLMCalls.IncrCounter(1, o.model)
	metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(messages)), o.model)

	callOpts := append([]llms.CallOption{
		llms.WithModel(o.model),
		llms.WithMaxTokens(o.maxTokens),
	}, opts...)

	resp, err := o.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("LLM returned empty response")
	}

	if o.callback != nil {
		o.callback.OnLLMCallEnd(ctx, o.llm, resp)
	}

	choice := resp.Choices[0]
	if total, ok := choice.GenerationInfo["TotalTokens"].(int64); ok {
		metricskey.StatsLLMTotalTokens.IncrCounter(float64(total), o.model)
	}
	return choice, nil
}

func (o *Orchestrator) appendMessage(ctx context.Context, messages []llms.Message, msg llms.Message) []llms.Message {
	if o.callback != nil {
		o.callback.OnMessage(ctx, msg)
	}
	return append(messages, msg)
}

func inputSchema(t *mcpsdk.Tool) any {
	if t.InputSchema == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		}
	}
	return t.InputSchema
}

func describeTools(list []*mcpsdk.Tool) string {
	var buf strings.Builder
	buf.WriteString("[")
	for i, t := range list {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "[%s, %s, %s]", t.Name, t.Description, utils.ToJSON(inputSchema(t)))
	}
	buf.WriteString("]")
	return buf.String()
}
