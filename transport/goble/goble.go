// Package goble binds the transport capability interface to the go-ble
// stack.
package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/wizpr/ringctl/internal/gattnames"
	"github.com/wizpr/ringctl/transport"
)

// Transport implements transport.Transport over go-ble. One HCI/CoreBluetooth
// device handle is created lazily and shared by scan and connect.
type Transport struct {
	logger *logrus.Logger

	initOnce sync.Once
	initErr  error
}

// New creates the go-ble transport binding.
func New(logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{logger: logger}
}

func (t *Transport) ensureDevice() error {
	t.initOnce.Do(func() {
		dev, err := DeviceFactory()
		if err != nil {
			t.initErr = fmt.Errorf("failed to create BLE device: %w", err)
			return
		}
		ble.SetDefaultDevice(dev)
	})
	return t.initErr
}

// Scan observes advertisements for duration and forwards each to onAdv.
// Expiry of the scan window is a normal return, not an error.
func (t *Transport) Scan(ctx context.Context, duration time.Duration, onAdv func(transport.Advertisement)) error {
	if err := t.ensureDevice(); err != nil {
		return err
	}

	scanCtx := ctx
	if duration > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	handler := func(adv ble.Advertisement) {
		onAdv(transport.Advertisement{
			Address: adv.Addr().String(),
			Name:    adv.LocalName(),
			RSSI:    adv.RSSI(),
		})
	}

	err := ble.Scan(scanCtx, true, handler, nil)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// Connect dials address and discovers the peripheral's GATT profile.
func (t *Transport) Connect(ctx context.Context, address string, timeout time.Duration) (transport.Session, error) {
	if err := t.ensureDevice(); err != nil {
		return nil, err
	}

	connectCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.logger.WithField("address", address).Info("Dialing BLE device...")

	client, err := ble.Dial(connectCtx, ble.NewAddr(address))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		_ = client.CancelConnection()
		return nil, fmt.Errorf("failed to discover profile of %s: %w", address, err)
	}

	t.logger.WithFields(logrus.Fields{
		"address":  address,
		"services": len(profile.Services),
	}).Info("BLE device connected")

	return &session{
		client:  client,
		profile: profile,
		address: address,
		logger:  t.logger,
	}, nil
}

// session wraps a live go-ble client plus its discovered profile.
type session struct {
	client  ble.Client
	profile *ble.Profile
	address string
	logger  *logrus.Logger
}

func (s *session) Address() string {
	return s.address
}

// Alive checks the disconnect channel without blocking. go-ble can hand back
// a client whose link already dropped; this is the post-connect guard.
func (s *session) Alive() bool {
	select {
	case <-s.client.Disconnected():
		return false
	default:
		return true
	}
}

func (s *session) Services(ctx context.Context) ([]transport.Service, error) {
	out := make([]transport.Service, 0, len(s.profile.Services))
	for _, svc := range s.profile.Services {
		entry := transport.Service{
			UUID:        svc.UUID.String(),
			Description: gattnames.LookupService(svc.UUID.String()),
		}
		for _, char := range svc.Characteristics {
			entry.Characteristics = append(entry.Characteristics, transport.Characteristic{
				UUID:        char.UUID.String(),
				Properties:  propsToString(char.Property),
				Description: gattnames.LookupCharacteristic(char.UUID.String()),
			})
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *session) StartNotify(charUUID string, f transport.NotifyFunc) error {
	char := s.findCharacteristic(charUUID)
	if char == nil {
		return fmt.Errorf("characteristic %s not found", charUUID)
	}

	// Prefer notifications; fall back to indications when that is all the
	// characteristic offers.
	indicate := char.Property&ble.CharNotify == 0 && char.Property&ble.CharIndicate != 0

	if err := s.client.Subscribe(char, indicate, func(data []byte) {
		f(data)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", charUUID, err)
	}
	return nil
}

func (s *session) StopNotify(charUUID string) error {
	char := s.findCharacteristic(charUUID)
	if char == nil {
		return fmt.Errorf("characteristic %s not found", charUUID)
	}

	indicate := char.Property&ble.CharNotify == 0 && char.Property&ble.CharIndicate != 0

	if err := s.client.Unsubscribe(char, indicate); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", charUUID, err)
	}
	return nil
}

func (s *session) Disconnected() <-chan struct{} {
	return s.client.Disconnected()
}

func (s *session) Close() error {
	return s.client.CancelConnection()
}

func (s *session) findCharacteristic(uuid string) *ble.Characteristic {
	want := gattnames.Normalize(uuid)
	for _, svc := range s.profile.Services {
		for _, char := range svc.Characteristics {
			if gattnames.Normalize(char.UUID.String()) == want {
				return char
			}
		}
	}
	return nil
}

func propsToString(p ble.Property) string {
	var s []string
	if p&ble.CharRead != 0 {
		s = append(s, "Read")
	}
	if p&ble.CharWriteNR != 0 {
		s = append(s, "WriteWithoutResponse")
	}
	if p&ble.CharWrite != 0 {
		s = append(s, "Write")
	}
	if p&ble.CharNotify != 0 {
		s = append(s, "Notify")
	}
	if p&ble.CharIndicate != 0 {
		s = append(s, "Indicate")
	}
	return strings.Join(s, "|")
}
