package volume_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/pkg/mixer"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/mcpvolume/tools/volume"
	"github.com/effective-security/mcpvolume/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEndpoint struct {
	*mixer.Memory
}

func (f failingEndpoint) SetMasterVolumeLevel(_ context.Context, _ float64) error {
	return errors.New("device is gone")
}

func TestNew(t *testing.T) {
	_, err := volume.New(nil)
	assert.EqualError(t, err, "mixer endpoint is required")

	tool, err := volume.New(mixer.NewMemory(mixer.DefaultMemoryRange))
	require.NoError(t, err)
	assert.Equal(t, volume.ToolName, tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.Equal(t, `{"properties":{"volume_level":{"type":"number","title":"Volume Level","description":"The master volume in percent from 0.0 to 100.0."}},"type":"object","required":["volume_level"]}`,
		utils.ToJSON(tool.Parameters()))
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	ep := mixer.NewMemory(mixer.DefaultMemoryRange)
	tool, err := volume.New(ep)
	require.NoError(t, err)

	tcases := []struct {
		input  string
		exp    string
		target float64
	}{
		{`{"volume_level": 50}`, "Volume set to 50.0%", -32.625},
		{`{"volume_level": 0}`, "Volume set to 0.0%", -65.25},
		{`{"volume_level": 100.0}`, "Volume set to 100.0%", 0},
		{"```json\n{\"volume_level\": 20}\n```", "Volume set to 20.0%", -52.2},
		{`{"volume_level": "50"}`, "Volume set to 50.0%", -32.625},
		{`{"volume_level": " 75.5 "}`, "Volume set to 75.5%", -15.98625},
		{`{"volume_level": 0.00001}`, "Volume set to 1e-05%", -65.249993475},
	}
	for _, tc := range tcases {
		t.Run(tc.input, func(t *testing.T) {
			res, err := tool.Call(ctx, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, res)
			assert.InDelta(t, tc.target, ep.Level(), 0.000001)
		})
	}
	assert.Len(t, ep.Writes(), len(tcases))
}

func TestCall_OutOfRange(t *testing.T) {
	ctx := context.Background()
	ep := mixer.NewMemory(mixer.DefaultMemoryRange)
	tool, err := volume.New(ep)
	require.NoError(t, err)

	for _, input := range []string{
		`{"volume_level": -0.5}`,
		`{"volume_level": 100.01}`,
		`{"volume_level": 150}`,
		`{"volume_level": "150"}`,
		`{"volume_level": "NaN"}`,
		`{"volume_level": "inf"}`,
	} {
		res, err := tool.Call(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, volume.InvalidLevelMessage, res)
	}

	faker := gofakeit.New(0)
	for range 20 {
		level := faker.Float64Range(100.001, 1000)
		if faker.Bool() {
			level = -level
		}
		res, err := tool.Call(ctx, fmt.Sprintf(`{"volume_level": %v}`, level))
		require.NoError(t, err)
		assert.Equal(t, "Invalid volume level. Please provide a value between 0.0 and 100.0.", res)
	}
	assert.Empty(t, ep.Writes())
	assert.Equal(t, mixer.DefaultMemoryRange.Max, ep.Level())
}

func TestRun_Linear(t *testing.T) {
	ctx := context.Background()
	rng := mixer.Range{Min: -96, Max: 0}
	ep := mixer.NewMemory(rng)
	tool, err := volume.New(ep)
	require.NoError(t, err)

	faker := gofakeit.New(0)
	for range 50 {
		level := faker.Float64Range(0, 100)
		res, err := tool.Run(ctx, &volume.SetVolumeRequest{VolumeLevel: &level})
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.InDelta(t, rng.Min+(level/100)*(rng.Max-rng.Min), res.Target, 0.000001)
		assert.Equal(t, res.Target, ep.Level())
		assert.Contains(t, res.String(), utils.FormatDecimal(level))
	}
}

func TestCall_InvalidInput(t *testing.T) {
	ctx := context.Background()
	ep := mixer.NewMemory(mixer.DefaultMemoryRange)
	tool, err := volume.New(ep)
	require.NoError(t, err)

	_, err = tool.Call(ctx, `{}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))
	assert.Contains(t, err.Error(), "volume_level is required")

	_, err = tool.Call(ctx, `{"volume_level": "loud"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	_, err = tool.Call(ctx, `{"volume_level": null}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume_level is required")

	for _, input := range []string{
		`{"volume_level": true}`,
		`{"volume_level": [50]}`,
		`{"volume_level": "0x10"}`,
		`{"volume_level": ""}`,
	} {
		_, err = tool.Call(ctx, input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput), input)
	}

	_, err = tool.Call(ctx, `not json`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	assert.Empty(t, ep.Writes())
}

func TestCall_MixerErrors(t *testing.T) {
	ctx := context.Background()

	tool, err := volume.New(failingEndpoint{Memory: mixer.NewMemory(mixer.DefaultMemoryRange)})
	require.NoError(t, err)
	_, err = tool.Call(ctx, `{"volume_level": 10}`)
	assert.EqualError(t, err, "failed to set volume: device is gone")

	ep := mixer.NewMemory(mixer.DefaultMemoryRange)
	tool, err = volume.New(ep)
	require.NoError(t, err)
	require.NoError(t, tool.Close())
	assert.True(t, ep.Closed())

	_, err = tool.Call(ctx, `{"volume_level": 10}`)
	assert.EqualError(t, err, "failed to get volume range: mixer endpoint is closed")
}
