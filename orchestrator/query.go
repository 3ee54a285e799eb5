package orchestrator

import (
	"context"
	"time"

	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

// QueryResult is the outcome of a query.
type QueryResult struct {
	// Answer is the text content of the last model reply
	Answer string
	// Messages is the conversation of the query
	Messages []llms.Message
	// Dispatch is set when the model requested a tool call
	Dispatch *DispatchResult
	// LLMCalls is the number of model calls made
	LLMCalls int
}

// ProcessQuery returns the answer of the model to the query.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) (string, error) {
	res, err := o.Query(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Query runs the query:
// the model is called with the tool catalog, the first tool call of its reply
// is dispatched, and the model is called again without tools.
// Only the first tool call is executed, the rest are ignored.
func (o *Orchestrator) Query(ctx context.Context, query string) (*QueryResult, error) {
	started := time.Now()
	defer metricskey.PerfQuery.MeasureSince(started, o.model)

	if o.callback != nil {
		o.callback.OnQueryStart(ctx, query)
	}

	res, err := o.query(ctx, query)
	if err != nil {
		metricskey.StatsQueriesFailed.IncrCounter(1, o.model)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "query_failed",
			"query", slices.StringUpto(query, 64),
			"err", err.Error(),
		)
		if o.callback != nil {
			o.callback.OnQueryError(ctx, query, err, res.Messages)
		}
		return nil, err
	}

	metricskey.StatsQueriesSucceeded.IncrCounter(1, o.model)
	if o.callback != nil {
		o.callback.OnQueryEnd(ctx, query, res.Answer, res.Messages)
	}
	return res, nil
}

// query always returns the result with the messages so far.
func (o *Orchestrator) query(ctx context.Context, query string) (*QueryResult, error) {
	res := &QueryResult{}
	res.Messages = o.appendMessage(ctx, res.Messages, llms.MessageFromTextParts(llms.RoleHuman, query))

	catalog, err := o.ToolCatalog(ctx)
	if err != nil {
		return res, err
	}

	choice, err := o.generate(ctx, res.Messages, llms.WithTools(catalog))
	if err != nil {
		return res, err
	}
	res.LLMCalls++
	res.Messages = o.appendMessage(ctx, res.Messages, choice.Message())

	if len(choice.ToolCalls) == 0 {
		res.Answer = choice.Content
		return res, nil
	}

	call := choice.ToolCalls[0]
	args, err := call.DecodeArguments()
	if err != nil {
		return res, err
	}
	if len(choice.ToolCalls) > 1 {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_calls_ignored",
			"tool", call.FunctionCall.Name,
			"ignored", len(choice.ToolCalls)-1,
		)
	}

	res.Dispatch = o.dispatch(ctx, call, args)
	if accepted, ok := res.Dispatch.Accepted(); ok {
		res.Messages = o.appendMessage(ctx, res.Messages, llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: call.ID,
			Name:       call.FunctionCall.Name,
			Content:    accepted.Result,
		}))
	}

	choice, err = o.generate(ctx, res.Messages)
	if err != nil {
		return res, err
	}
	res.LLMCalls++
	res.Messages = o.appendMessage(ctx, res.Messages, choice.Message())
	res.Answer = choice.Content
	return res, nil
}
