package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signaldigest/internal/models"
	"signaldigest/internal/testutil"
)

type statusResp struct {
	running  bool
	itemsNew int
	err      error
}

// stubClient scripts a sequence of status responses; the last one repeats
type stubClient struct {
	mu           sync.Mutex
	triggerResp  string
	triggerErr   error
	triggerCalls int
	statusSeq    []statusResp
	statusCalls  int
}

func (s *stubClient) TriggerRun(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerCalls++
	if s.triggerErr != nil {
		return "", s.triggerErr
	}
	if s.triggerResp == "" {
		return "started", nil
	}
	return s.triggerResp, nil
}

func (s *stubClient) RunStatus(ctx context.Context) (*models.PipelineStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.statusCalls
	s.statusCalls++
	if idx >= len(s.statusSeq) {
		idx = len(s.statusSeq) - 1
	}
	r := s.statusSeq[idx]
	if r.err != nil {
		return nil, r.err
	}
	itemsNew := r.itemsNew
	return &models.PipelineStatus{IsRunning: r.running, LastRunItemsNew: &itemsNew}, nil
}

func (s *stubClient) counts() (trigger, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggerCalls, s.statusCalls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func newTestController(client *stubClient, opts Options) *Controller {
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	if opts.Dwell == 0 {
		opts.Dwell = 25 * time.Millisecond
	}
	return New(client, testutil.NullLogger(), opts)
}

func TestStart_TriggerFailure(t *testing.T) {
	client := &stubClient{
		triggerErr: errors.New("boom"),
		statusSeq:  []statusResp{{running: true}},
	}
	c := newTestController(client, Options{})
	defer c.Close()

	err := c.Start(context.Background())
	if err == nil {
		t.Fatal("Start() should return the trigger error")
	}

	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("state after trigger failure = %v, want %v", snap.State, StateIdle)
	}
	if snap.Err == nil {
		t.Error("snapshot should surface the trigger error")
	}

	// Failed triggers must not start polling.
	time.Sleep(30 * time.Millisecond)
	if _, status := client.counts(); status != 0 {
		t.Errorf("poll requests after trigger failure = %d, want 0", status)
	}
}

func TestStart_RejectedWhileRunning(t *testing.T) {
	client := &stubClient{statusSeq: []statusResp{{running: true}}}
	c := newTestController(client, Options{PollInterval: time.Hour})
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("second Start() error = %v, want ErrNotIdle", err)
	}

	if trigger, _ := client.counts(); trigger != 1 {
		t.Errorf("trigger calls = %d, want 1 (no double-trigger)", trigger)
	}
}

func TestRun_PollsToCompletion(t *testing.T) {
	client := &stubClient{
		statusSeq: []statusResp{
			{running: true},
			{running: true},
			{running: true},
			{running: false, itemsNew: 12},
		},
	}

	var mu sync.Mutex
	completions := []int{}
	c := newTestController(client, Options{
		OnComplete: func(itemsNew int) {
			mu.Lock()
			completions = append(completions, itemsNew)
			mu.Unlock()
		},
	})
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateCompleted
	})

	snap := c.Snapshot()
	if snap.ItemsNew != 12 {
		t.Errorf("ItemsNew = %d, want 12", snap.ItemsNew)
	}

	// Dwell period elapses, controller reverts to idle.
	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateIdle
	})

	mu.Lock()
	defer mu.Unlock()
	if len(completions) != 1 || completions[0] != 12 {
		t.Errorf("completion callbacks = %v, want exactly [12]", completions)
	}
}

func TestRun_PollFailureIsTransient(t *testing.T) {
	client := &stubClient{
		statusSeq: []statusResp{
			{err: errors.New("network down")},
			{err: errors.New("network down")},
			{running: false, itemsNew: 3},
		},
	}
	c := newTestController(client, Options{})
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateCompleted
	})
	if snap := c.Snapshot(); snap.ItemsNew != 3 {
		t.Errorf("ItemsNew = %d, want 3", snap.ItemsNew)
	}
}

func TestStart_JoinsAlreadyRunning(t *testing.T) {
	client := &stubClient{
		triggerResp: "already_running",
		statusSeq:   []statusResp{{running: false, itemsNew: 7}},
	}
	c := newTestController(client, Options{})
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() with already_running backend = %v, want nil", err)
	}
	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateCompleted
	})
}

func TestSync_JoinsActiveRunWithoutTrigger(t *testing.T) {
	client := &stubClient{
		statusSeq: []statusResp{
			{running: true},
			{running: false, itemsNew: 4},
		},
	}
	c := newTestController(client, Options{})
	defer c.Close()

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if state := c.Snapshot().State; state != StateRunning {
		t.Fatalf("state after Sync with active run = %v, want %v", state, StateRunning)
	}

	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateCompleted
	})
	if trigger, _ := client.counts(); trigger != 0 {
		t.Errorf("trigger calls after Sync = %d, want 0", trigger)
	}
}

func TestSync_IdleBackendStaysIdle(t *testing.T) {
	client := &stubClient{statusSeq: []statusResp{{running: false}}}
	c := newTestController(client, Options{})
	defer c.Close()

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if state := c.Snapshot().State; state != StateIdle {
		t.Errorf("state = %v, want %v", state, StateIdle)
	}
}

func TestClose_StopsPollingMidRun(t *testing.T) {
	client := &stubClient{statusSeq: []statusResp{{running: true}}}
	c := newTestController(client, Options{PollInterval: 5 * time.Millisecond})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		_, status := client.counts()
		return status >= 2
	})

	c.Close()
	_, before := client.counts()
	time.Sleep(40 * time.Millisecond)
	_, after := client.counts()

	// A request already in flight at Close may land, but the loop must not
	// schedule further ticks.
	if after > before+1 {
		t.Errorf("poll requests kept arriving after Close: %d -> %d", before, after)
	}
	if state := c.Snapshot().State; state != StateRunning {
		t.Errorf("Close must not change state, got %v", state)
	}
}

func TestStart_DuringDwellCancelsReset(t *testing.T) {
	client := &stubClient{
		statusSeq: []statusResp{{running: false, itemsNew: 2}},
	}
	c := newTestController(client, Options{
		PollInterval: 5 * time.Millisecond,
		Dwell:        50 * time.Millisecond,
	})
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		return c.Snapshot().State == StateCompleted
	})

	// Restart while dwelling: the pending reset must not fire afterwards.
	client.mu.Lock()
	client.statusSeq = []statusResp{{running: true}}
	client.statusCalls = 0
	client.mu.Unlock()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart during dwell error: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	if state := c.Snapshot().State; state != StateRunning {
		t.Errorf("stale dwell timer reset a fresh run: state = %v, want %v", state, StateRunning)
	}
}
