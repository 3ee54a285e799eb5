package tools_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/mocks/mocktools"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type echoTool struct {
	name   string
	err    error
	closed int
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echo " + e.name }
func (e *echoTool) Parameters() any {
	return map[string]any{"type": "object"}
}

func (e *echoTool) Call(_ context.Context, input string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.name + ":" + input, nil
}

func (e *echoTool) Close() error {
	e.closed++
	return nil
}

type recorder struct {
	events []string
}

func (r *recorder) OnToolStart(_ context.Context, t tools.ITool, input string) {
	r.events = append(r.events, "start "+t.Name()+" "+input)
}

func (r *recorder) OnToolEnd(_ context.Context, t tools.ITool, _ string, output string) {
	r.events = append(r.events, "end "+t.Name()+" "+output)
}

func (r *recorder) OnToolError(_ context.Context, t tools.ITool, _ string, err error) {
	r.events = append(r.events, "error "+t.Name()+" "+err.Error())
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	a := &echoTool{name: "a"}
	b := &echoTool{name: "b", err: errors.New("boom")}

	r, err := tools.NewRegistry(a, b)
	require.NoError(t, err)

	rec := &recorder{}
	r.WithCallback(rec)

	list := r.Tools()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name())
	assert.Equal(t, "b", list[1].Name())

	err = r.Register(&echoTool{name: "a"})
	assert.EqualError(t, err, "tool already registered: a")
	err = r.Register(&echoTool{})
	assert.EqualError(t, err, "tool name is required")

	_, err = tools.NewRegistry(a, a)
	assert.EqualError(t, err, "tool already registered: a")

	out, err := r.Call(ctx, "a", "{}")
	require.NoError(t, err)
	assert.Equal(t, "a:{}", out)

	_, err = r.Call(ctx, "b", "{}")
	assert.EqualError(t, err, "boom")

	_, err = r.Call(ctx, "c", "{}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrUnknownTool))
	assert.Equal(t, `"c": unknown tool`, err.Error())

	_, err = r.Lookup("c")
	assert.True(t, errors.Is(err, tools.ErrUnknownTool))

	assert.Equal(t, []string{
		"start a {}",
		"end a a:{}",
		"start b {}",
		"error b boom",
	}, rec.events)

	require.NoError(t, r.Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}

func TestRegistry_Mocks(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	mockTool := mocktools.NewMockITool(ctrl)
	mockTool.EXPECT().Name().Return("mock").AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), `{"volume_level":1}`).Return("ok", nil)
	mockTool.EXPECT().Call(gomock.Any(), `{}`).Return("", tools.ErrFailedUnmarshalInput)

	cb := mocktools.NewMockCallback(ctrl)
	gomock.InOrder(
		cb.EXPECT().OnToolStart(gomock.Any(), mockTool, `{"volume_level":1}`),
		cb.EXPECT().OnToolEnd(gomock.Any(), mockTool, `{"volume_level":1}`, "ok"),
		cb.EXPECT().OnToolStart(gomock.Any(), mockTool, `{}`),
		cb.EXPECT().OnToolError(gomock.Any(), mockTool, `{}`, tools.ErrFailedUnmarshalInput),
	)

	r, err := tools.NewRegistry(mockTool)
	require.NoError(t, err)
	r.WithCallback(cb)

	out, err := r.Call(ctx, "mock", `{"volume_level":1}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = r.Call(ctx, "mock", `{}`)
	assert.ErrorIs(t, err, tools.ErrFailedUnmarshalInput)

	// mock tool is not a Closer
	require.NoError(t, r.Close())
}
