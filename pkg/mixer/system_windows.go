//go:build windows

package mixer

import (
	"context"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

// wcaEndpoint owns IAudioEndpointVolume of the default render device.
// COM objects are bound to the thread that created them,
// so every call is executed on one locked OS thread.
type wcaEndpoint struct {
	calls chan func(*wca.IAudioEndpointVolume)
	done  chan struct{}

	lock   sync.Mutex
	closed bool
}

func openSystem() (Endpoint, error) {
	e := &wcaEndpoint{
		calls: make(chan func(*wca.IAudioEndpointVolume)),
		done:  make(chan struct{}),
	}
	ready := make(chan error, 1)
	go e.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return e, nil
}

func (e *wcaEndpoint) run(ready chan<- error) {
	defer close(e.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		ready <- errors.Wrap(err, "CoInitializeEx")
		return
	}
	defer ole.CoUninitialize()

	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		ready <- errors.Wrap(err, "failed to create device enumerator")
		return
	}
	defer mmde.Release()

	var mmd *wca.IMMDevice
	if err := mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EConsole, &mmd); err != nil {
		ready <- errors.Wrap(err, "failed to get default audio endpoint")
		return
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		ready <- errors.Wrap(err, "failed to activate endpoint volume")
		return
	}
	defer aev.Release()

	ready <- nil
	for fn := range e.calls {
		fn(aev)
	}
}

func (e *wcaEndpoint) do(ctx context.Context, fn func(*wca.IAudioEndpointVolume) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return ErrClosed
	}

	res := make(chan error, 1)
	select {
	case e.calls <- func(aev *wca.IAudioEndpointVolume) { res <- fn(aev) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-res
}

func (e *wcaEndpoint) VolumeRange(ctx context.Context) (Range, error) {
	var r Range
	err := e.do(ctx, func(aev *wca.IAudioEndpointVolume) error {
		var minDB, maxDB, stepDB float32
		if err := aev.GetVolumeRange(&minDB, &maxDB, &stepDB); err != nil {
			return errors.Wrap(err, "GetVolumeRange")
		}
		r = Range{Min: float64(minDB), Max: float64(maxDB), Step: float64(stepDB)}
		return nil
	})
	return r, err
}

func (e *wcaEndpoint) SetMasterVolumeLevel(ctx context.Context, level float64) error {
	return e.do(ctx, func(aev *wca.IAudioEndpointVolume) error {
		return errors.Wrap(aev.SetMasterVolumeLevel(float32(level), nil), "SetMasterVolumeLevel")
	})
}

func (e *wcaEndpoint) Close() error {
	e.lock.Lock()
	if e.closed {
		e.lock.Unlock()
		return nil
	}
	e.closed = true
	close(e.calls)
	e.lock.Unlock()

	<-e.done
	return nil
}
