//go:build !linux

package device

import "context"

type unsupportedEnumerator struct{}

func NewEnumerator() Enumerator {
	return unsupportedEnumerator{}
}

func (unsupportedEnumerator) Enumerate(ctx context.Context) (Snapshot, error) {
	return Snapshot{}, ErrUnsupported
}

type unsupportedEjector struct{}

func NewEjector() Ejector {
	return unsupportedEjector{}
}

func (unsupportedEjector) Eject(ctx context.Context, info StorageInfo) error {
	return ErrUnsupported
}

func Fingerprint() (string, error) {
	return "", ErrUnsupported
}
