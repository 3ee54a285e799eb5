package callbacks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/effective-security/mcpvolume/callbacks"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchpad(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	callbacks.TimeNowFn = func() time.Time { return ts }
	defer func() { callbacks.TimeNowFn = time.Now }()

	ctx := context.Background()
	llm := newLLM(t)

	sp := callbacks.NewScratchpad(callbacks.ModeVerbose)
	_, err := uuid.Parse(sp.SessionID())
	require.NoError(t, err)
	assert.NotEqual(t, sp.SessionID(), callbacks.NewScratchpad(callbacks.ModeDefault).SessionID())

	sp.OnConnected(ctx, "a.py", []*mcpsdk.Tool{{Name: "set_volume"}, {Name: "get_volume"}})

	// events outside of a run are not counted
	sp.OnLLMCallStart(ctx, llm, nil)
	sp.OnDispatch(ctx, acceptedDispatch())
	assert.Equal(t, callbacks.RunStats{RunID: "total"}, sp.Stats())

	human := llms.MessageFromTextParts(llms.RoleHuman, "louder")
	ai := llms.MessageFromToolCalls(llms.RoleAI, toolCall())
	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				ToolCalls: []llms.ToolCall{toolCall()},
				GenerationInfo: map[string]any{
					"PromptTokens":     int64(10),
					"CompletionTokens": int64(5),
					"TotalTokens":      int64(15),
				},
			},
		},
	}

	sp.OnQueryStart(ctx, "louder")
	sp.OnMessage(ctx, human)
	sp.OnLLMCallStart(ctx, llm, []llms.Message{human})
	sp.OnLLMCallEnd(ctx, llm, resp)
	sp.OnMessage(ctx, ai)
	sp.OnDispatch(ctx, acceptedDispatch())
	sp.OnLLMCallStart(ctx, llm, []llms.Message{human, ai})
	sp.OnLLMCallEnd(ctx, llm, &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "done"}}})
	sp.OnQueryEnd(ctx, "louder", "done", nil)

	sp.OnQueryStart(ctx, "again")
	sp.OnDispatch(ctx, droppedDispatch())
	sp.OnQueryError(ctx, "again", errors.New("LLM returned empty response"), []llms.Message{human})

	stats := sp.Stats()
	assert.Equal(t, "total", stats.RunID)
	assert.Equal(t, uint32(2), stats.Queries)
	assert.Equal(t, uint32(1), stats.QueriesFailed)
	assert.Equal(t, uint32(2), stats.LLMCalls)
	assert.Equal(t, uint32(3), stats.TotalMessages)
	assert.Equal(t, uint64(10), stats.LLMInputTokens)
	assert.Equal(t, uint64(5), stats.LLMOutputTokens)
	assert.Equal(t, uint64(15), stats.LLMTotalTokens)
	assert.Equal(t, uint32(2), stats.Dispatches)
	assert.Equal(t, uint32(1), stats.DispatchesDropped)
	assert.Equal(t, uint32(3), stats.DispatchAttempts)
	assert.Equal(t, uint32(2), stats.DispatchAttemptsFailed)
	assert.Greater(t, stats.LLMBytesOut, uint64(0))
	assert.Greater(t, stats.LLMBytesIn, uint64(0))

	out := string(sp.Bytes())
	prefix := "2025-01-02 03:04:05 " + sp.SessionID() + "."
	assert.Contains(t, out, prefix+"session *** Connected *** a.py set_volume,get_volume\n")
	assert.Contains(t, out, prefix+"1 *** Run Started ***\n")
	assert.Contains(t, out, prefix+"1 Query: louder\n")
	assert.Contains(t, out, prefix+"1 *** LLM Call *** OPENAI provider, 1 messages\n")
	assert.Contains(t, out, prefix+"1 *** LLM Call End *** OPENAI provider, 10 input tokens, 5 output tokens, 15 total tokens\n")
	assert.Contains(t, out, prefix+"1 set_volume *** Attempt Failed *** a.py boom\n")
	assert.Contains(t, out, prefix+"1 set_volume *** Accepted *** b.py\n")
	assert.Contains(t, out, prefix+"1 Answer: done\n")
	assert.Contains(t, out, prefix+"1 Dispatches: 1, Dropped: 0, Attempts: 2, Failed: 1\n")
	assert.Contains(t, out, prefix+"2 *** Run Started ***\n")
	assert.Contains(t, out, prefix+"2 set_volume *** Dropped ***\n")
	assert.Contains(t, out, prefix+"2 *** Error *** LLM returned empty response\n")
	assert.Contains(t, out, "[0] human:\n  - 1 texts, 0 tool calls, 0 tool responses\n")
	assert.Contains(t, out, "*** Run Ended. Duration: ")

	// end without start is ignored
	sp.OnQueryEnd(ctx, "x", "y", nil)
	sp.OnQueryError(ctx, "x", errors.New("z"), nil)
	assert.Equal(t, stats, sp.Stats())
}

func TestScratchpad_Default(t *testing.T) {
	ctx := context.Background()
	sp := callbacks.NewScratchpad(callbacks.ModeDefault)

	sp.OnQueryStart(ctx, "louder")
	sp.OnMessage(ctx, llms.MessageFromTextParts(llms.RoleHuman, "louder"))
	sp.OnQueryEnd(ctx, "louder", "secret answer", nil)

	out := string(sp.Bytes())
	assert.NotContains(t, out, "Message:")
	assert.NotContains(t, out, "secret answer")
	assert.Equal(t, uint32(1), sp.Stats().Queries)
}
