// Package transport defines the capability interface the connection layer
// requires from a BLE stack. The real binding lives in transport/goble; tests
// substitute simulated implementations.
package transport

import (
	"context"
	"strings"
	"time"
)

// Advertisement is one observed BLE advertisement.
type Advertisement struct {
	Address string
	Name    string
	RSSI    int
}

// Service is a read-only view of a GATT service on a connected peripheral.
type Service struct {
	UUID            string           `json:"uuid"`
	Description     string           `json:"description"`
	Characteristics []Characteristic `json:"characteristics"`
}

// Characteristic is a read-only view of a GATT characteristic.
type Characteristic struct {
	UUID        string `json:"uuid"`
	Properties  string `json:"properties"`
	Description string `json:"description"`
}

// Notifiable reports whether the characteristic supports notifications or
// indications.
func (c Characteristic) Notifiable() bool {
	for _, p := range strings.Split(c.Properties, "|") {
		if p == "Notify" || p == "Indicate" {
			return true
		}
	}
	return false
}

// NotifyFunc receives raw notification payloads from the transport's
// delivery goroutine. Implementations must not block.
type NotifyFunc func(data []byte)

// Session is a live connection to one peripheral.
type Session interface {
	// Address returns the peer's stable identifier.
	Address() string

	// Alive reports whether the transport still considers the session
	// usable. Some stacks hand back a session object before the link is
	// actually up; callers check this right after Connect.
	Alive() bool

	// Services returns the discovered GATT hierarchy.
	Services(ctx context.Context) ([]Service, error)

	// StartNotify registers f for notifications on the characteristic.
	StartNotify(charUUID string, f NotifyFunc) error

	// StopNotify unregisters the notification callback.
	StopNotify(charUUID string) error

	// Disconnected is closed when the transport loses the link.
	Disconnected() <-chan struct{}

	// Close tears the session down.
	Close() error
}

// Transport is the narrow surface of a BLE stack the connection layer uses.
type Transport interface {
	// Scan invokes onAdv for every advertisement observed within duration.
	// It returns once the window elapses or ctx is cancelled.
	Scan(ctx context.Context, duration time.Duration, onAdv func(Advertisement)) error

	// Connect dials the peripheral at address, bounded by timeout.
	Connect(ctx context.Context, address string, timeout time.Duration) (Session, error)
}
