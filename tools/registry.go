package tools

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "tools")

// Registry maps tool names to tools, in registration order.
type Registry struct {
	lock     sync.RWMutex
	byName   map[string]ITool
	list     []ITool
	callback Callback
}

// NewRegistry returns a registry with the tools.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]ITool),
	}
	if err := r.Register(list...); err != nil {
		return nil, err
	}
	return r, nil
}

// WithCallback sets the callback invoked around each call.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.callback = cb
	return r
}

// Register adds the tools, names must be unique.
func (r *Registry) Register(list ...ITool) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, t := range list {
		name := t.Name()
		if name == "" {
			return errors.New("tool name is required")
		}
		if _, ok := r.byName[name]; ok {
			return errors.Errorf("tool already registered: %s", name)
		}
		r.byName[name] = t
		r.list = append(r.list, t)
	}
	return nil
}

// Tools returns the registered tools.
func (r *Registry) Tools() []ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]ITool(nil), r.list...)
}

// Lookup returns the tool by name, or ErrUnknownTool.
func (r *Registry) Lookup(name string) (ITool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTool, "%q", name)
	}
	return t, nil
}

// Call invokes the named tool with the input.
func (r *Registry) Call(ctx context.Context, name string, input string) (string, error) {
	t, err := r.Lookup(name)
	if err != nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_not_found",
			"tool", name,
		)
		return "", err
	}

	r.lock.RLock()
	cb := r.callback
	r.lock.RUnlock()

	if cb != nil {
		cb.OnToolStart(ctx, t, input)
	}

	started := time.Now()
	output, err := t.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolError(ctx, t, input, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if cb != nil {
		cb.OnToolEnd(ctx, t, input, output)
	}
	return output, nil
}

// Close releases the resources held by the tools.
func (r *Registry) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	var errs []error
	for i := len(r.list) - 1; i >= 0; i-- {
		if c, ok := r.list[i].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, errors.WithMessagef(err, "close %s", r.list[i].Name()))
			}
		}
	}
	return errors.Join(errs...)
}
