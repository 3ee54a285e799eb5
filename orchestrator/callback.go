package orchestrator

import (
	"context"

	"github.com/effective-security/mcpvolume/pkg/llms"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Callback receives the orchestrator events.
type Callback interface {
	OnConnected(ctx context.Context, session string, tools []*mcpsdk.Tool)
	OnQueryStart(ctx context.Context, query string)
	OnQueryEnd(ctx context.Context, query string, answer string, messages []llms.Message)
	OnQueryError(ctx context.Context, query string, err error, messages []llms.Message)
	OnLLMCallStart(ctx context.Context, llm llms.Model, messages []llms.Message)
	OnLLMCallEnd(ctx context.Context, llm llms.Model, resp *llms.ContentResponse)
	OnMessage(ctx context.Context, msg llms.Message)
	OnDispatch(ctx context.Context, result *DispatchResult)
}
