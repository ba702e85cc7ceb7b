package capture

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// defaultMinInterval bounds payload emission to 10/s so one code held in
// frame does not trigger a burst of redundant validation calls.
const defaultMinInterval = 100 * time.Millisecond

// Controller runs at most one capture session at a time. Start while a
// session is active stops the previous session before opening a new handle,
// so two concurrent device handles can never exist.
type Controller struct {
	device      Device
	minInterval time.Duration

	// startMu serializes Start/Stop; mu guards the fields below.
	startMu sync.Mutex
	mu      sync.Mutex
	state   State
	lastErr error
	handle  Handle
}

type ControllerOption func(*Controller)

// WithMinInterval overrides the payload throttle interval. Zero disables
// throttling.
func WithMinInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.minInterval = d
	}
}

func NewController(device Device, opts ...ControllerOption) *Controller {
	c := &Controller{
		device:      device,
		minInterval: defaultMinInterval,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the cause of the most recent failure, if any. It is reset on
// the next successful Start.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Start opens the preferred device and returns the stream of decoded
// payloads for this session. The channel is closed when the session stops.
// Any failure releases the device handle before the state returns to idle.
func (c *Controller) Start(ctx context.Context) (<-chan string, error) {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.stopLocked()

	c.setState(StateStarting, nil)

	devices, err := c.device.Enumerate(ctx)
	if err != nil {
		err = fmt.Errorf("enumerate capture devices: %w", err)
		c.setState(StateIdle, err)
		return nil, err
	}
	if len(devices) == 0 {
		c.setState(StateIdle, ErrNoDevice)
		return nil, ErrNoDevice
	}

	handle, err := c.device.Open(ctx, preferred(devices))
	if err != nil {
		err = fmt.Errorf("open capture device: %w", err)
		c.setState(StateIdle, err)
		return nil, err
	}

	out := make(chan string, 8)

	c.mu.Lock()
	c.state = StateActive
	c.lastErr = nil
	c.handle = handle
	c.mu.Unlock()

	go c.pump(handle, out)
	return out, nil
}

// Stop ends the current session, releasing the device handle. It is safe to
// call from any state and calling it twice is a no-op.
func (c *Controller) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	handle := c.handle
	c.handle = nil
	c.mu.Unlock()

	if handle != nil {
		_ = handle.Close()
	}
	c.setState(StateIdle, nil)
}

// pump forwards decoded payloads until the handle's stream closes, dropping
// payloads that arrive faster than the throttle interval or that the
// consumer is too slow to take.
func (c *Controller) pump(handle Handle, out chan<- string) {
	defer close(out)

	var last time.Time
	for line := range handle.Lines() {
		now := time.Now()
		if c.minInterval > 0 && !last.IsZero() && now.Sub(last) < c.minInterval {
			continue
		}
		last = now
		select {
		case out <- line:
		default:
		}
	}

	// The stream closing while we are still active means the device went
	// away underneath us, not that Stop ran.
	c.mu.Lock()
	if c.state == StateActive && c.handle == handle {
		c.state = StateError
		c.lastErr = ErrDeviceClosed
		c.handle = nil
		_ = handle.Close()
	}
	c.mu.Unlock()
}

func (c *Controller) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	if err != nil {
		c.lastErr = err
	}
	c.mu.Unlock()
}

func preferred(devices []DeviceInfo) string {
	for _, d := range devices {
		if d.Facing == FacingEnvironment {
			return d.ID
		}
	}
	return devices[0].ID
}
