package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

// State is the externally visible phase of the controller
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// ErrNotIdle is returned by Start while a run is already being observed
var ErrNotIdle = errors.New("pipeline run already in progress")

// ErrClosed is returned by Start after the controller has been closed
var ErrClosed = errors.New("pipeline controller closed")

// StatusClient is the slice of the backend API the controller needs
type StatusClient interface {
	TriggerRun(ctx context.Context) (string, error)
	RunStatus(ctx context.Context) (*models.PipelineStatus, error)
}

// Snapshot is the controller state handed to the presentation layer
type Snapshot struct {
	State    State
	ItemsNew int
	Err      error
}

// Options tune the controller. Zero values fall back to the defaults.
type Options struct {
	// PollInterval is the cadence of status requests while a run is active
	PollInterval time.Duration
	// Dwell is how long the completed state is displayed before the
	// controller reverts to idle
	Dwell time.Duration
	// OnComplete fires exactly once per observed run, with the run's
	// new-item count. It is invoked from a controller goroutine and must
	// not call back into the Controller.
	OnComplete func(itemsNew int)
	// OnChange fires on every state transition with the new snapshot.
	// Same calling constraints as OnComplete.
	OnChange func(Snapshot)
}

const (
	// DefaultPollInterval matches the backend's status update granularity
	DefaultPollInterval = 2 * time.Second
	// DefaultDwell keeps the success affirmation visible before reverting
	DefaultDwell = 5 * time.Second
)

// Controller drives one pipeline run at a time: it issues the trigger
// call, polls the status endpoint until the run is no longer active, fires
// the completion callback once, and reverts to idle after a dwell period.
// At most one poll loop and one dwell timer exist per controller.
type Controller struct {
	client       StatusClient
	logger       *logging.Logger
	pollInterval time.Duration
	dwell        time.Duration
	onComplete   func(int)
	onChange     func(Snapshot)

	mu         sync.Mutex
	state      State
	itemsNew   int
	lastErr    error
	pollStop   chan struct{}
	dwellTimer *time.Timer
	closed     bool
}

// New creates an idle controller. Call Sync afterwards to join a run that
// is already active on the backend.
func New(client StatusClient, logger *logging.Logger, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Dwell <= 0 {
		opts.Dwell = DefaultDwell
	}
	return &Controller{
		client:       client,
		logger:       logger,
		pollInterval: opts.PollInterval,
		dwell:        opts.Dwell,
		onComplete:   opts.OnComplete,
		onChange:     opts.OnChange,
		state:        StateIdle,
	}
}

// Snapshot returns the current controller state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, ItemsNew: c.itemsNew, Err: c.lastErr}
}

// Sync checks the backend once and, if a run is already active, enters the
// running state and begins polling without issuing a redundant trigger.
func (c *Controller) Sync(ctx context.Context) error {
	status, err := c.client.RunStatus(ctx)
	if err != nil {
		return fmt.Errorf("pipeline status: %w", err)
	}
	if !status.IsRunning {
		return nil
	}

	c.mu.Lock()
	if c.closed || c.state != StateIdle {
		c.mu.Unlock()
		return nil
	}
	c.state = StateRunning
	c.notifyLocked()
	c.mu.Unlock()

	c.startPolling(ctx)
	return nil
}

// Start triggers a new run and begins polling for its completion. Valid
// only while idle or dwelling on a completed run; calling it mid-run
// returns ErrNotIdle without touching the backend. A trigger failure
// reverts the controller to idle and is returned to the caller. A backend
// answer of "already_running" is not a failure: the concurrently started
// run is joined and observed like any other.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateRunning {
		c.mu.Unlock()
		return ErrNotIdle
	}
	if c.state == StateCompleted {
		// A fresh run preempts the dwell period; the stale timer must not
		// fire after the new run has begun.
		c.stopDwellLocked()
	}
	c.state = StateRunning
	c.lastErr = nil
	c.itemsNew = 0
	c.notifyLocked()
	c.mu.Unlock()

	status, err := c.client.TriggerRun(ctx)
	if err != nil {
		c.mu.Lock()
		if !c.closed && c.state == StateRunning {
			c.state = StateIdle
			c.lastErr = err
			c.notifyLocked()
		}
		c.mu.Unlock()
		return fmt.Errorf("trigger pipeline run: %w", err)
	}

	c.logger.Info("Pipeline run triggered", logging.WithField("status", status))
	c.startPolling(ctx)
	return nil
}

// Close cancels the poll loop and dwell timer. No state change or callback
// occurs after Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopPollingLocked()
	c.stopDwellLocked()
}

func (c *Controller) startPolling(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopPollingLocked()
	stop := make(chan struct{})
	c.pollStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.tick(ctx, stop)
			}
		}
	}()
}

// tick performs one status request. Errors are transient: the loop keeps
// going until the run is observed inactive or the controller is closed.
func (c *Controller) tick(ctx context.Context, stop chan struct{}) {
	status, err := c.client.RunStatus(ctx)
	if err != nil {
		c.logger.Warn("Pipeline status poll failed", logging.WithField("error", err.Error()))
		return
	}
	if status.IsRunning {
		return
	}

	c.mu.Lock()
	if c.closed || c.pollStop != stop || c.state != StateRunning {
		// Torn down or superseded while the request was in flight.
		c.mu.Unlock()
		return
	}
	c.stopPollingLocked()
	itemsNew := 0
	if status.LastRunItemsNew != nil {
		itemsNew = *status.LastRunItemsNew
	}
	c.itemsNew = itemsNew
	c.state = StateCompleted
	c.dwellTimer = time.AfterFunc(c.dwell, c.dwellExpired)
	if c.onComplete != nil {
		c.onComplete(itemsNew)
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Info("Pipeline run completed", logging.WithField("items_new", itemsNew))
}

func (c *Controller) dwellExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateCompleted {
		return
	}
	c.dwellTimer = nil
	c.state = StateIdle
	c.notifyLocked()
}

func (c *Controller) stopPollingLocked() {
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}

func (c *Controller) stopDwellLocked() {
	if c.dwellTimer != nil {
		c.dwellTimer.Stop()
		c.dwellTimer = nil
	}
}

func (c *Controller) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}
