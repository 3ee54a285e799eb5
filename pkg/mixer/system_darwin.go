//go:build darwin

package mixer

import (
	"context"
	"math"
	"os/exec"
	"strconv"

	"github.com/cockroachdb/errors"
)

// osascriptEndpoint sets the output volume, which AppleScript exposes as 0..100.
type osascriptEndpoint struct{}

func openSystem() (Endpoint, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, errors.WithMessage(ErrUnsupported, "osascript not found")
	}
	return osascriptEndpoint{}, nil
}

func (osascriptEndpoint) VolumeRange(_ context.Context) (Range, error) {
	return Range{Min: 0, Max: 100, Step: 1}, nil
}

func (osascriptEndpoint) SetMasterVolumeLevel(ctx context.Context, level float64) error {
	script := "set volume output volume " + strconv.Itoa(int(math.Round(level)))
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "osascript: %s", out)
	}
	return nil
}

func (osascriptEndpoint) Close() error {
	return nil
}
