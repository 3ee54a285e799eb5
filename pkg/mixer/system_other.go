//go:build !windows && !linux && !darwin

package mixer

func openSystem() (Endpoint, error) {
	return nil, ErrUnsupported
}
