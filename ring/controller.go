// Package ring owns the BLE session with the wearable: discovery,
// connect-with-retry, notification subscriptions, and the classification of
// incoming notifications into bus events.
package ring

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/wizpr/ringctl/eventbus"
	"github.com/wizpr/ringctl/gesture"
	"github.com/wizpr/ringctl/transport"
)

// DefaultRetryBackoff is the fixed wait between the two connect attempts.
const DefaultRetryBackoff = 500 * time.Millisecond

// Device is one discovery result. It lives only as long as the scan response
// list that produced it.
type Device struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	RSSI    int    `json:"rssi"`
}

// Controller drives exactly one BLE session at a time. All state transitions
// happen inside its methods; the only spontaneous transition is the reset to
// Disconnected when the transport reports a link drop.
type Controller struct {
	tr     transport.Transport
	bus    *eventbus.Bus
	vocab  gesture.Vocabulary
	logger *logrus.Logger

	// retryBackoff is the wait before the single connect retry. Tests
	// shorten it.
	retryBackoff time.Duration

	mu      sync.RWMutex
	state   ConnState
	session transport.Session
	subs    map[string]struct{}
	gen     uint64 // session generation; stale drop watchers compare against it
}

// NewController creates a controller publishing classified notifications
// onto bus. A nil vocab falls back to the built-in token table.
func NewController(tr transport.Transport, bus *eventbus.Bus, vocab gesture.Vocabulary, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	if vocab == nil {
		vocab = gesture.DefaultVocabulary()
	}

	return &Controller{
		tr:           tr,
		bus:          bus,
		vocab:        vocab,
		logger:       logger,
		retryBackoff: DefaultRetryBackoff,
		state:        Disconnected,
		subs:         make(map[string]struct{}),
	}
}

// State returns the current connection state.
func (c *Controller) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscriptions returns the characteristic UUIDs with active notification
// subscriptions. Empty whenever the controller is not connected.
func (c *Controller) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.subs))
	for uuid := range c.subs {
		out = append(out, uuid)
	}
	sort.Strings(out)
	return out
}

// Scan collects every advertisement seen within duration, deduplicated by
// address with the last-seen advertisement winning, sorted by descending
// RSSI. Zero results is an empty list, not an error. The controller always
// returns to Disconnected when the scan window closes.
func (c *Controller) Scan(ctx context.Context, duration time.Duration) ([]Device, error) {
	c.mu.Lock()
	if c.state != Disconnected {
		state := c.state
		c.mu.Unlock()
		return nil, &ConnError{Kind: Busy, Msg: "scan requires disconnected state, currently " + state.String()}
	}
	c.state = Scanning
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.state == Scanning {
			c.state = Disconnected
		}
		c.mu.Unlock()
	}()

	c.logger.WithField("duration", duration).Info("Starting BLE scan...")

	seen := hashmap.New[string, transport.Advertisement]()
	err := c.tr.Scan(ctx, duration, func(adv transport.Advertisement) {
		seen.Set(adv.Address, adv)
	})
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, seen.Len())
	seen.Range(func(addr string, adv transport.Advertisement) bool {
		devices = append(devices, Device{Address: adv.Address, Name: adv.Name, RSSI: adv.RSSI})
		return true
	})
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].RSSI != devices[j].RSSI {
			return devices[i].RSSI > devices[j].RSSI
		}
		return devices[i].Address < devices[j].Address
	})

	c.logger.WithField("device_count", len(devices)).Info("BLE scan completed")
	return devices, nil
}

// Connect establishes a session with the peripheral at address. On a first
// failure it waits a short fixed backoff and retries exactly once; if the
// retry also fails, the error reported is the first attempt's, which is
// usually the more diagnostic one. A session the transport hands back in a
// dead state fails with ErrNotConnected.
func (c *Controller) Connect(ctx context.Context, address string, timeout time.Duration) error {
	c.mu.Lock()
	if c.state != Disconnected {
		state := c.state
		c.mu.Unlock()
		return &ConnError{Kind: Busy, Msg: "connect requires disconnected state, currently " + state.String()}
	}
	c.state = Connecting
	c.mu.Unlock()

	fail := func(err error) error {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return err
	}

	c.logger.WithField("address", address).Info("Connecting to ring...")

	sess, firstErr := c.tr.Connect(ctx, address, timeout)
	if firstErr != nil {
		c.logger.WithError(firstErr).Warn("Connect attempt failed, retrying once")

		select {
		case <-time.After(c.retryBackoff):
		case <-ctx.Done():
			return fail(&ConnError{Kind: ConnectFailed, Msg: address, Err: firstErr})
		}

		var retryErr error
		sess, retryErr = c.tr.Connect(ctx, address, timeout)
		if retryErr != nil {
			c.logger.WithError(retryErr).Error("Connect retry failed")
			return fail(&ConnError{Kind: ConnectFailed, Msg: address, Err: firstErr})
		}
	}

	if !sess.Alive() {
		_ = sess.Close()
		return fail(&ConnError{Kind: NotConnected, Msg: address})
	}

	c.mu.Lock()
	c.session = sess
	c.state = Connected
	c.subs = make(map[string]struct{})
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.watchDrop(sess, gen)

	c.logger.WithField("address", address).Info("Ring connected")
	return nil
}

// watchDrop resets the controller when the transport loses the link. Active
// subscriptions are void at that point; there is no auto-reconnect.
func (c *Controller) watchDrop(sess transport.Session, gen uint64) {
	<-sess.Disconnected()

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer session or an explicit disconnect already superseded this one.
	if c.gen != gen || c.state != Connected {
		return
	}

	c.session = nil
	c.subs = make(map[string]struct{})
	c.state = Disconnected
	c.logger.Warn("Ring connection dropped by transport")
}

// Disconnect tears the session down. Disconnecting while already
// disconnected is a no-op. All subscription state is cleared.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return nil
	}
	sess := c.session
	c.state = Disconnecting
	c.mu.Unlock()

	if err := sess.Close(); err != nil {
		c.logger.WithError(err).Warn("Error while disconnecting from ring")
	}

	c.mu.Lock()
	c.session = nil
	c.subs = make(map[string]struct{})
	c.state = Disconnected
	c.mu.Unlock()

	c.logger.Info("Ring disconnected")
	return nil
}

// ListCharacteristics returns the connected peripheral's GATT hierarchy.
// When not connected, or when introspection fails, it degrades to an empty
// list rather than an error.
func (c *Controller) ListCharacteristics(ctx context.Context) []transport.Service {
	c.mu.RLock()
	sess := c.session
	connected := c.state == Connected
	c.mu.RUnlock()

	if !connected || sess == nil {
		return []transport.Service{}
	}

	services, err := sess.Services(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to list GATT services")
		return []transport.Service{}
	}
	return services
}

// SubscribeNotify starts notifications on the characteristic. Each incoming
// payload is classified synchronously and every resulting event is published
// fire-and-forget, so the transport's delivery goroutine never waits on bus
// handlers.
func (c *Controller) SubscribeNotify(charUUID string) error {
	c.mu.RLock()
	sess := c.session
	connected := c.state == Connected
	gen := c.gen
	c.mu.RUnlock()

	if !connected || sess == nil {
		return &ConnError{Kind: NotConnected, Msg: "subscribe requires a connected ring"}
	}

	callback := func(data []byte) {
		for _, ev := range c.vocab.Classify(charUUID, data) {
			go c.bus.Publish(context.Background(), ev.Topic, ev.Payload)
		}
	}

	if err := sess.StartNotify(charUUID, callback); err != nil {
		return err
	}

	c.mu.Lock()
	if c.gen == gen && c.state == Connected {
		c.subs[charUUID] = struct{}{}
	}
	c.mu.Unlock()

	c.logger.WithField("uuid", charUUID).Info("Subscribed to notifications")
	return nil
}

// UnsubscribeNotify stops notifications on the characteristic. Best-effort:
// a transport failure is logged and swallowed, since the user-visible goal
// is reached either way. Unsubscribing while disconnected is a no-op.
func (c *Controller) UnsubscribeNotify(charUUID string) {
	c.mu.Lock()
	sess := c.session
	connected := c.state == Connected
	delete(c.subs, charUUID)
	c.mu.Unlock()

	if !connected || sess == nil {
		return
	}

	if err := sess.StopNotify(charUUID); err != nil {
		c.logger.WithField("uuid", charUUID).WithError(err).Warn("Failed to stop notifications")
		return
	}

	c.logger.WithField("uuid", charUUID).Info("Unsubscribed from notifications")
}
