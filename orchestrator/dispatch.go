package orchestrator

import (
	"context"
	"time"

	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

// Attempt is the outcome of a tool call on one session.
type Attempt struct {
	Session string
	Result  string
	Err     error
}

// OK reports whether the session accepted the call.
func (a Attempt) OK() bool {
	return a.Err == nil
}

// DispatchResult is the outcome of a tool call across the sessions.
type DispatchResult struct {
	Call     llms.ToolCall
	Args     map[string]any
	Attempts []Attempt
}

// Accepted returns the successful attempt, if any.
func (d *DispatchResult) Accepted() (Attempt, bool) {
	for _, a := range d.Attempts {
		if a.OK() {
			return a, true
		}
	}
	return Attempt{}, false
}

// dispatch tries the sessions in connection order and stops at the first
// that accepts the call, failed attempts are logged and skipped.
func (o *Orchestrator) dispatch(ctx context.Context, call llms.ToolCall, args map[string]any) *DispatchResult {
	name := call.FunctionCall.Name
	res := &DispatchResult{
		Call: call,
		Args: args,
	}

	for _, s := range o.sessions {
		started := time.Now()
		out, err := s.CallTool(ctx, name, args)
		metricskey.PerfToolCall.MeasureSince(started, name)

		attempt := Attempt{
			Session: s.Name(),
			Result:  out,
			Err:     err,
		}
		res.Attempts = append(res.Attempts, attempt)

		if err == nil {
			metricskey.StatsDispatchSucceeded.IncrCounter(1, s.Name(), name)
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "dispatched",
				"session", s.Name(),
				"tool", name,
				"call_id", call.ID,
				"result", slices.StringUpto(out, 64),
			)
			break
		}

		metricskey.StatsDispatchFailed.IncrCounter(1, s.Name(), name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "dispatch_failed",
			"session", s.Name(),
			"tool", name,
			"call_id", call.ID,
			"err", err.Error(),
		)
	}

	if _, ok := res.Accepted(); !ok {
		metricskey.StatsDispatchDropped.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "dispatch_dropped",
			"tool", name,
			"call_id", call.ID,
			"attempts", len(res.Attempts),
		)
	}

	if o.callback != nil {
		o.callback.OnDispatch(ctx, res)
	}
	return res
}
