// Package mixer provides access to the master output volume of the default audio device.
//
// An Endpoint is a single owned handle: it is opened once when the tool host starts,
// used by the volume tool, and closed when the host shuts down.
package mixer

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "mixer")

// ErrUnsupported is returned when the platform has no system mixer backend.
var ErrUnsupported = errors.New("system mixer is not supported on this platform")

// ErrClosed is returned when the endpoint is used after Close.
var ErrClosed = errors.New("mixer endpoint is closed")

const (
	// KindSystem opens the OS mixer of the default output device.
	KindSystem = "system"
	// KindMemory opens an in-memory endpoint.
	KindMemory = "memory"
)

// Range is the native volume range of the device,
// on Windows it is in decibels and usually negative.
type Range struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

// Level maps a percentage in [0, 100] linearly onto the range.
func (r Range) Level(percent float64) float64 {
	return r.Min + (percent/100.0)*(r.Max-r.Min)
}

// Endpoint is the master volume of an output device.
type Endpoint interface {
	// VolumeRange returns the native volume range of the device.
	VolumeRange(ctx context.Context) (Range, error)
	// SetMasterVolumeLevel sets the master volume, in native units.
	SetMasterVolumeLevel(ctx context.Context, level float64) error

	io.Closer
}

// Config specifies the endpoint to open.
type Config struct {
	// Kind is system or memory, system is the default.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=system memory"`
	// Range is used by the memory endpoint.
	Range Range `json:"range,omitempty" yaml:"range,omitempty"`
}

// Open returns the endpoint for the config.
func Open(cfg Config) (Endpoint, error) {
	kind := strings.ToLower(cfg.Kind)
	switch kind {
	case "", KindSystem:
		ep, err := openSystem()
		if err != nil {
			return nil, errors.WithMessage(err, "failed to open system mixer")
		}
		logger.KV(xlog.DEBUG, "status", "opened", "kind", KindSystem)
		return ep, nil
	case KindMemory:
		r := cfg.Range
		if r.Min == 0 && r.Max == 0 {
			r = DefaultMemoryRange
		}
		logger.KV(xlog.DEBUG, "status", "opened", "kind", KindMemory, "min", r.Min, "max", r.Max)
		return NewMemory(r), nil
	}
	return nil, errors.Errorf("unsupported mixer kind: %s", cfg.Kind)
}
