package device

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by enumeration on platforms without a
// device backend.
var ErrUnsupported = errors.New("device enumeration is not supported on this platform")

// Enumerator returns the current set of attached devices. One call is one
// full scan; implementations keep no state between calls, and any native
// setup happens inside the call so handles are never shared across
// invocations.
type Enumerator interface {
	Enumerate(ctx context.Context) (Snapshot, error)
}

// Ejector prepares a storage device for safe removal.
type Ejector interface {
	Eject(ctx context.Context, info StorageInfo) error
}
