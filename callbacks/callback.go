package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/mcpvolume/orchestrator"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/fatih/color"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ orchestrator.Callback = (*Noop)(nil)
	_ tools.Callback        = (*Noop)(nil)
	_ orchestrator.Callback = (*Printer)(nil)
	_ tools.Callback        = (*Printer)(nil)
	_ orchestrator.Callback = (*PackageLogger)(nil)
	_ tools.Callback        = (*PackageLogger)(nil)
	_ orchestrator.Callback = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []orchestrator.Callback
}

func NewFanout(callbacks ...orchestrator.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback orchestrator.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnConnected(ctx context.Context, session string, list []*mcpsdk.Tool) {
	for _, callback := range l.callbacks {
		callback.OnConnected(ctx, session, list)
	}
}

func (l *Fanout) OnQueryStart(ctx context.Context, query string) {
	for _, callback := range l.callbacks {
		callback.OnQueryStart(ctx, query)
	}
}

func (l *Fanout) OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnQueryEnd(ctx, query, answer, messages)
	}
}

func (l *Fanout) OnQueryError(ctx context.Context, query string, err error, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnQueryError(ctx, query, err, messages)
	}
}

func (l *Fanout) OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallStart(ctx, llm, messages)
	}
}

func (l *Fanout) OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallEnd(ctx, llm, resp)
	}
}

func (l *Fanout) OnMessage(ctx context.Context, msg llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnMessage(ctx, msg)
	}
}

func (l *Fanout) OnDispatch(ctx context.Context, result *orchestrator.DispatchResult) {
	for _, callback := range l.callbacks {
		callback.OnDispatch(ctx, result)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnConnected(ctx context.Context, session string, list []*mcpsdk.Tool) {}
func (l *Noop) OnQueryStart(ctx context.Context, query string)                      {}
func (l *Noop) OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message) {
}
func (l *Noop) OnQueryError(ctx context.Context, query string, err error, messages []llms.Message) {
}
func (l *Noop) OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message) {}
func (l *Noop) OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse) {
}
func (l *Noop) OnMessage(ctx context.Context, msg llms.Message)                           {}
func (l *Noop) OnDispatch(ctx context.Context, result *orchestrator.DispatchResult)       {}
func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, input string)           {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {}

var (
	colorFaint = color.New(color.Faint)
	colorBold  = color.New(color.Bold)
)

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnConnected(ctx context.Context, session string, list []*mcpsdk.Tool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Connected: %s, %d tools\n", session, len(list))
	if l.Mode == ModeVerbose {
		for _, t := range list {
			fmt.Fprintf(l.Out, "  - %s: %s\n", t.Name, t.Description)
		}
	}
}

func (l *Printer) OnQueryStart(ctx context.Context, query string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Query Start: %s\n", query)
}

func (l *Printer) OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Query End: %d messages\n", len(messages))
}

func (l *Printer) OnQueryError(ctx context.Context, query string, err error, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Query Error: %s\n", err.Error())
}

func (l *Printer) OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Call: %s provider, %d messages\n", llm.GetProviderType(), len(messages))
}

func (l *Printer) OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Call End: %s provider, %d choices\n", llm.GetProviderType(), len(resp.Choices))
}

// OnMessage prints every message appended to the conversation.
func (l *Printer) OnMessage(ctx context.Context, msg llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	content := msg.GetContent()
	if l.Mode != ModeVerbose {
		content = slices.StringUpto(content, 256)
	}
	fmt.Fprintf(l.Out, "%s %s\n", colorBold.Sprintf("[%s]", msg.Role), colorFaint.Sprint(content))
}

func (l *Printer) OnDispatch(ctx context.Context, result *orchestrator.DispatchResult) {
	l.lock.Lock()
	defer l.lock.Unlock()
	name := result.Call.FunctionCall.Name
	accepted, ok := result.Accepted()
	if !ok {
		fmt.Fprintf(l.Out, "Tool Dropped: %s, %d attempts\n", name, len(result.Attempts))
	} else {
		fmt.Fprintf(l.Out, "[Calling tool %s with args %s on %s]\n", name, result.Call.FunctionCall.Arguments, accepted.Session)
	}
	if l.Mode == ModeVerbose {
		for _, a := range result.Attempts {
			if a.OK() {
				fmt.Fprintf(l.Out, "  - %s: %s\n", a.Session, a.Result)
			} else {
				fmt.Fprintf(l.Out, "  - %s: error: %s\n", a.Session, a.Err.Error())
			}
		}
	}
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", output)
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnConnected(ctx context.Context, session string, list []*mcpsdk.Tool) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "connected",
		"session", session,
		"tools", len(list),
	)
}

func (l *PackageLogger) OnQueryStart(ctx context.Context, query string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "query_start",
		"query", query,
	)
}

func (l *PackageLogger) OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "query_end",
		"messages", len(messages),
		"answer", slices.StringUpto(answer, 64),
	)
}

func (l *PackageLogger) OnQueryError(ctx context.Context, query string, err error, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "query_error",
		"messages", len(messages),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_start",
		"provider", llm.GetProviderType(),
		"messages", len(messages),
	)
}

func (l *PackageLogger) OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_end",
		"provider", llm.GetProviderType(),
		"choices", len(resp.Choices),
	)
}

func (l *PackageLogger) OnMessage(ctx context.Context, msg llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "message",
		"role", msg.Role,
		"content", slices.StringUpto(msg.GetContent(), 256),
	)
}

func (l *PackageLogger) OnDispatch(ctx context.Context, result *orchestrator.DispatchResult) {
	accepted, ok := result.Accepted()
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "dispatch",
		"tool", result.Call.FunctionCall.Name,
		"call_id", result.Call.ID,
		"attempts", len(result.Attempts),
		"accepted", ok,
		"session", accepted.Session,
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"input", input,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
		"output", output,
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool.Name(),
		"err", err.Error(),
	)
}
