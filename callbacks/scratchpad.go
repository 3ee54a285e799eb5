package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/effective-security/mcpvolume/orchestrator"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/llmutils"
	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ensure Scratchpad implements orchestrator.Callback
var _ orchestrator.Callback = (*Scratchpad)(nil)

var TimeNowFn = time.Now

// RunStats are the counters of one query, or the totals of the session.
type RunStats struct {
	RunID string

	Duration               time.Duration
	Queries                uint32
	QueriesFailed          uint32
	TotalMessages          uint32
	LLMCalls               uint32
	LLMBytesOut            uint64
	LLMBytesIn             uint64
	LLMInputTokens         uint64
	LLMOutputTokens        uint64
	LLMTotalTokens         uint64
	Dispatches             uint32
	DispatchesDropped      uint32
	DispatchAttempts       uint32
	DispatchAttemptsFailed uint32
}

func (s *RunStats) add(o *RunStats) {
	s.Duration += o.Duration
	s.Queries += o.Queries
	s.QueriesFailed += o.QueriesFailed
	s.TotalMessages += o.TotalMessages
	s.LLMCalls += o.LLMCalls
	s.LLMBytesOut += o.LLMBytesOut
	s.LLMBytesIn += o.LLMBytesIn
	s.LLMInputTokens += o.LLMInputTokens
	s.LLMOutputTokens += o.LLMOutputTokens
	s.LLMTotalTokens += o.LLMTotalTokens
	s.Dispatches += o.Dispatches
	s.DispatchesDropped += o.DispatchesDropped
	s.DispatchAttempts += o.DispatchAttempts
	s.DispatchAttemptsFailed += o.DispatchAttemptsFailed
}

// Scratchpad keeps the transcript and the stats of the chat session.
// Each query is a run, numbered from 1.
type Scratchpad struct {
	sessionID string
	mode      Mode
	runs  int
	run   *run
	total RunStats
	w     bytes.Buffer
	lock  sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		sessionID: uuid.NewString(),
		mode:      mode,
		total:     RunStats{RunID: "total"},
	}
}

// SessionID returns the ID of the chat session.
func (l *Scratchpad) SessionID() string {
	return l.sessionID
}

// Stats returns the totals of the completed runs.
func (l *Scratchpad) Stats() RunStats {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.total
}

// Bytes returns the transcript.
func (l *Scratchpad) Bytes() []byte {
	l.lock.Lock()
	defer l.lock.Unlock()
	return bytes.Clone(l.w.Bytes())
}

func (l *Scratchpad) OnConnected(ctx context.Context, session string, list []*mcpsdk.Tool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name)
	}
	l.print("session", "*** Connected ***", session, strings.Join(names, ","))
}

func (l *Scratchpad) OnQueryStart(ctx context.Context, query string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.runs++
	l.run = &run{
		started: time.Now(),
		stats: RunStats{
			RunID:   strconv.Itoa(l.runs),
			Queries: 1,
		},
	}
	l.print(l.run.stats.RunID, "*** Run Started ***")
	l.print(l.run.stats.RunID, "Query:", query)
}

func (l *Scratchpad) OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}
	if l.mode == ModeVerbose {
		l.print(l.run.stats.RunID, "Answer:", answer)
	}
	l.endRun()
}

func (l *Scratchpad) OnQueryError(ctx context.Context, query string, err error, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}
	l.run.stats.QueriesFailed++
	l.print(l.run.stats.RunID, "*** Error ***", err.Error())
	l.print(l.run.stats.RunID, printMessages(messages))
	l.endRun()
}

func (l *Scratchpad) OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}

	count := uint32(len(messages))
	l.run.stats.LLMCalls++
	l.run.stats.TotalMessages += count
	l.run.stats.LLMBytesOut += llmutils.CountMessagesContentSize(messages)

	l.print(l.run.stats.RunID, "*** LLM Call ***", fmt.Sprintf("%s provider, %d messages", llm.GetProviderType(), count))
	if l.mode == ModeVerbose {
		l.print(l.run.stats.RunID, printMessages(messages))
	}
}

func (l *Scratchpad) OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}

	tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(resp)
	l.run.stats.LLMBytesIn += llmutils.CountResponseContentSize(resp)
	l.run.stats.LLMInputTokens += uint64(tokensIn)
	l.run.stats.LLMOutputTokens += uint64(tokensOut)
	l.run.stats.LLMTotalTokens += uint64(tokensTotal)

	l.print(l.run.stats.RunID, "*** LLM Call End ***",
		fmt.Sprintf("%s provider, %d input tokens, %d output tokens, %d total tokens", llm.GetProviderType(), tokensIn, tokensOut, tokensTotal))
}

func (l *Scratchpad) OnMessage(ctx context.Context, msg llms.Message) {
	if l.mode != ModeVerbose {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}
	l.print(l.run.stats.RunID, "Message:", string(msg.Role), msg.GetContent())
}

func (l *Scratchpad) OnDispatch(ctx context.Context, result *orchestrator.DispatchResult) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.run == nil {
		return
	}

	name := result.Call.FunctionCall.Name
	l.run.stats.Dispatches++
	for _, a := range result.Attempts {
		l.run.stats.DispatchAttempts++
		if a.OK() {
			l.print(l.run.stats.RunID, name, "*** Accepted ***", a.Session)
		} else {
			l.run.stats.DispatchAttemptsFailed++
			l.print(l.run.stats.RunID, name, "*** Attempt Failed ***", a.Session, a.Err.Error())
		}
	}
	if _, ok := result.Accepted(); !ok {
		l.run.stats.DispatchesDropped++
		l.print(l.run.stats.RunID, name, "*** Dropped ***")
	}
}

// endRun must be called with the lock held.
func (l *Scratchpad) endRun() {
	stats := &l.run.stats
	stats.Duration = time.Since(l.run.started)

	l.print(stats.RunID, fmt.Sprintf("Dispatches: %d, Dropped: %d, Attempts: %d, Failed: %d",
		stats.Dispatches,
		stats.DispatchesDropped,
		stats.DispatchAttempts,
		stats.DispatchAttemptsFailed,
	))
	l.print(stats.RunID, fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Input Tokens: %d, Output Tokens: %d, Total Tokens: %d",
		stats.LLMCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMBytesIn,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
		stats.LLMTotalTokens,
	))
	l.print(stats.RunID, fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.total.add(stats)
	l.run = nil
}

type run struct {
	started time.Time
	stats   RunStats
}

// print writes the entries to the transcript in the following format:
// [timestamp sessionID.runID] entry entry\n
func (l *Scratchpad) print(runID string, entries ...string) {
	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = l.w.WriteString(ts)
	_, _ = l.w.WriteString(" ")
	_, _ = l.w.WriteString(l.sessionID)
	_, _ = l.w.WriteString(".")
	_, _ = l.w.WriteString(runID)
	_, _ = l.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = l.w.WriteString(" ")
		}
		_, _ = l.w.WriteString(entry)
	}
	_, _ = l.w.WriteString("\n")
}

func printMessages(messages []llms.Message) string {
	var buf strings.Builder
	buf.WriteString("Messages:\n")
	for idx, msg := range messages {
		fmt.Fprintf(&buf, "[%d] %s:\n", idx, msg.Role)
		textParts := 0
		toolParts := 0
		toolResponseParts := 0
		for _, part := range msg.Parts {
			switch typ := part.(type) {
			case llms.TextContent:
				textParts++
			case llms.ToolCall:
				toolParts++
				buf.WriteString("  - ")
				buf.WriteString(typ.String())
				buf.WriteString("\n")
			case llms.ToolCallResponse:
				toolResponseParts++
				buf.WriteString("  - ")
				buf.WriteString(typ.String())
				buf.WriteString("\n")
			}
		}
		fmt.Fprintf(&buf, "  - %d texts, %d tool calls, %d tool responses\n", textParts, toolParts, toolResponseParts)
	}
	return buf.String()
}
