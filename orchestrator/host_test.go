package orchestrator_test

import (
	"context"
	"testing"

	"github.com/effective-security/mcpvolume/mcp"
	"github.com/effective-security/mcpvolume/mocks/mockllms"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/mixer"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/mcpvolume/tools/volume"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startVolumeHost(t *testing.T, name string, ep mixer.Endpoint) *mcp.Session {
	ctx := context.Background()

	tool, err := volume.New(ep)
	require.NoError(t, err)
	reg, err := tools.NewRegistry(tool)
	require.NoError(t, err)
	srv, err := mcp.NewServer(mcp.ServerConfig{}, reg)
	require.NoError(t, err)

	st, ct := mcpsdk.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, st)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ss.Close()
		_ = srv.Close()
	})

	s, err := mcp.Connect(ctx, name, ct)
	require.NoError(t, err)
	return s
}

func TestQuery_VolumeHost(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	ep1 := mixer.NewMemory(mixer.DefaultMemoryRange)
	ep2 := mixer.NewMemory(mixer.Range{Min: 0, Max: 100})
	s1 := startVolumeHost(t, "server.py", ep1)
	s2 := startVolumeHost(t, "server2.py", ep2)

	var calls int
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			calls++
			if calls == 1 {
				opts := llms.NewCallOptions(options...)
				assert.Equal(t, []string{"set_volume", "set_volume"}, toolNames(opts.Tools))
				return toolCallResponse(setVolumeCall("call_1", `{"volume_level": 50}`)), nil
			}
			require.Len(t, messages, 3)
			resp := messages[2].Parts[0].(llms.ToolCallResponse)
			return textResponse("Done: " + resp.Content), nil
		}).Times(2)

	o, out := newOrchestrator(t, mockLLM, s1, s2)
	assert.Contains(t, out.String(), "Connected to server server.py with tools: [[set_volume, ")
	assert.Contains(t, out.String(), "Connected to server server2.py with tools: [[set_volume, ")

	answer, err := o.ProcessQuery(ctx, "set the volume to half")
	require.NoError(t, err)
	assert.Equal(t, "Done: Volume set to 50.0%", answer)

	// the first host accepted the call
	assert.InDelta(t, -32.625, ep1.Level(), 0.000001)
	assert.Empty(t, ep2.Writes())

	require.NoError(t, o.Close())
}
