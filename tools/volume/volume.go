// Package volume provides the set_volume tool of the tool host.
package volume

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/mcpvolume/pkg/mixer"
	"github.com/effective-security/mcpvolume/pkg/schema"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/mcpvolume/utils"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume/tools", "volume")

const (
	// ToolName is the name of the tool
	ToolName = "set_volume"

	// MinLevel and MaxLevel are the accepted percentages
	MinLevel = 0.0
	MaxLevel = 100.0

	// InvalidLevelMessage is returned for a level out of range
	InvalidLevelMessage = "Invalid volume level. Please provide a value between 0.0 and 100.0."
)

// SetVolumeRequest represents the tool input.
type SetVolumeRequest struct {
	VolumeLevel *float64 `json:"volume_level" yaml:"volume_level" jsonschema:"title=Volume Level,description=The master volume in percent from 0.0 to 100.0."`
}

// SetVolumeResult represents the tool output.
type SetVolumeResult struct {
	// Applied is false when the level was rejected
	Applied bool
	// Level is the requested percentage
	Level float64
	// Target is the level written to the device, in native units
	Target float64
}

func (r *SetVolumeResult) String() string {
	if !r.Applied {
		return InvalidLevelMessage
	}
	return "Volume set to " + utils.FormatDecimal(r.Level) + "%"
}

// Tool sets the master volume of the default output device.
type Tool struct {
	name        string
	description string
	funcParams  any

	endpoint mixer.Endpoint
}

var _ tools.Tool[SetVolumeRequest, SetVolumeResult] = (*Tool)(nil)

// New returns the tool that owns the endpoint, the endpoint is released on Close.
func New(endpoint mixer.Endpoint) (*Tool, error) {
	if endpoint == nil {
		return nil, errors.New("mixer endpoint is required")
	}
	sc, err := schema.New(reflect.TypeOf(SetVolumeRequest{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Set the master output volume of the default audio device, in percent from 0.0 to 100.0.",
		funcParams:  sc.Parameters,
		endpoint:    endpoint,
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *SetVolumeRequest) (*SetVolumeResult, error) {
	if req.VolumeLevel == nil {
		return nil, errors.Wrap(tools.ErrFailedUnmarshalInput, "volume_level is required")
	}

	level := *req.VolumeLevel
	res := &SetVolumeResult{Level: level}
	if !(level >= MinLevel && level <= MaxLevel) {
		metricskey.StatsVolumeSet.IncrCounter(1, "out_of_range")
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "out_of_range",
			"level", level,
		)
		return res, nil
	}

	rng, err := t.endpoint.VolumeRange(ctx)
	if err != nil {
		metricskey.StatsVolumeSet.IncrCounter(1, "failed")
		return nil, errors.WithMessage(err, "failed to get volume range")
	}

	res.Target = rng.Level(level)
	if err = t.endpoint.SetMasterVolumeLevel(ctx, res.Target); err != nil {
		metricskey.StatsVolumeSet.IncrCounter(1, "failed")
		return nil, errors.WithMessage(err, "failed to set volume")
	}
	res.Applied = true

	metricskey.StatsVolumeSet.IncrCounter(1, "applied")
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "applied",
		"level", level,
		"target", res.Target,
		"min", rng.Min,
		"max", rng.Max,
	)
	return res, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	req, err := decodeRequest(input)
	if err != nil {
		metricskey.StatsVolumeSet.IncrCounter(1, "invalid")
		return "", errors.Wrap(tools.ErrFailedUnmarshalInput, err.Error())
	}
	out, err := t.Run(ctx, req)
	if err != nil {
		if errors.Is(err, tools.ErrFailedUnmarshalInput) {
			metricskey.StatsVolumeSet.IncrCounter(1, "invalid")
		}
		return "", err
	}
	return out.String(), nil
}

// decodeRequest accepts the level as a JSON number or a numeric string, "50" or " 37.5 ".
func decodeRequest(input string) (*SetVolumeRequest, error) {
	var in struct {
		VolumeLevel json.RawMessage `json:"volume_level"`
	}
	if err := json.Unmarshal(utils.CleanJSON([]byte(input)), &in); err != nil {
		return nil, err
	}

	req := &SetVolumeRequest{}
	if len(in.VolumeLevel) == 0 || string(in.VolumeLevel) == "null" {
		return req, nil
	}

	var level float64
	if err := json.Unmarshal(in.VolumeLevel, &level); err != nil {
		var str string
		if json.Unmarshal(in.VolumeLevel, &str) != nil {
			return nil, errors.Errorf("volume_level must be a number: %s", in.VolumeLevel)
		}
		level, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil || strings.ContainsAny(str, "xX_") {
			return nil, errors.Errorf("volume_level must be a number: %q", str)
		}
	}
	req.VolumeLevel = &level
	return req, nil
}

// Close releases the mixer endpoint.
func (t *Tool) Close() error {
	return t.endpoint.Close()
}
