//go:build linux

package mixer

import (
	"context"
	"math"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// ControlName is the ALSA simple mixer control of the master output.
var ControlName = "Master"

// runCommand is replaced in tests.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

var limitsRegex = regexp.MustCompile(`Limits:(?:\s+Playback)?\s+(-?\d+)\s+-\s+(-?\d+)`)

// alsaEndpoint drives the ALSA control with amixer, in raw units.
type alsaEndpoint struct {
	control string
}

func openSystem() (Endpoint, error) {
	if _, err := exec.LookPath("amixer"); err != nil {
		return nil, errors.WithMessage(ErrUnsupported, "amixer not found")
	}
	return &alsaEndpoint{control: ControlName}, nil
}

func (e *alsaEndpoint) VolumeRange(ctx context.Context) (Range, error) {
	out, err := runCommand(ctx, "amixer", "sget", e.control)
	if err != nil {
		return Range{}, errors.Wrapf(err, "amixer sget %s: %s", e.control, out)
	}
	return parseLimits(string(out))
}

func (e *alsaEndpoint) SetMasterVolumeLevel(ctx context.Context, level float64) error {
	raw := strconv.FormatInt(int64(math.Round(level)), 10)
	out, err := runCommand(ctx, "amixer", "-q", "sset", e.control, raw)
	if err != nil {
		return errors.Wrapf(err, "amixer sset %s %s: %s", e.control, raw, out)
	}
	logger.ContextKV(ctx, xlog.DEBUG, "control", e.control, "raw", raw)
	return nil
}

func (e *alsaEndpoint) Close() error {
	return nil
}

func parseLimits(out string) (Range, error) {
	m := limitsRegex.FindStringSubmatch(out)
	if m == nil {
		return Range{}, errors.Newf("unable to find volume limits in amixer output")
	}
	lo, _ := strconv.ParseFloat(m[1], 64)
	hi, _ := strconv.ParseFloat(m[2], 64)
	return Range{Min: lo, Max: hi, Step: 1}, nil
}
