package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData means the backend answered but has no sample yet.
	ErrNoData = errors.New("gateway: no data")
	// ErrBadResponse means the backend answered 2xx with a body we cannot use.
	ErrBadResponse = errors.New("gateway: unexpected response")
)

// NetworkError is a failed call to the process backend. It is transient:
// the poller logs it and tries again on the next tick.
type NetworkError struct {
	Op     string
	Status int // 0 when no HTTP response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err came from a failed backend call.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
