// Package capture owns the scanner-device lifecycle: enumeration, exclusive
// open, a throttled stream of decoded payloads, and guaranteed release of
// the device handle. Frame decoding itself lives in the device; this package
// only ever sees decoded payload strings.
package capture

import (
	"context"
	"errors"
)

var (
	ErrNoDevice     = errors.New("no capture device available")
	ErrDeviceClosed = errors.New("capture device closed unexpectedly")
)

// FacingEnvironment marks rear-facing devices, which are preferred when
// more than one device is enumerated.
const FacingEnvironment = "environment"

// DeviceInfo describes one enumerated capture device.
type DeviceInfo struct {
	ID     string
	Label  string
	Facing string
}

// Device is the contract consumed from the external scanning library:
// enumerate available devices and open exactly one of them.
type Device interface {
	Enumerate(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, id string) (Handle, error)
}

// Handle is an open, exclusive binding to one physical device. Lines yields
// decoded payloads and is closed when the handle closes, whether by Close or
// by the device going away.
type Handle interface {
	Lines() <-chan string
	Close() error
}
