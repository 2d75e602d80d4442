package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signaldigest/internal/models"
	"signaldigest/internal/testutil"
)

type mockClient struct {
	mu           sync.Mutex
	refreshCalls int
	block        chan struct{}
	refreshErr   error
	acceptedID   string
	dismissedID  string
	listErr      error
}

func (m *mockClient) ListSuggestions(ctx context.Context) ([]models.ChannelSuggestion, error) {
	return nil, m.listErr
}

func (m *mockClient) AcceptSuggestion(ctx context.Context, id string) error {
	m.acceptedID = id
	return nil
}

func (m *mockClient) DismissSuggestion(ctx context.Context, id string) error {
	m.dismissedID = id
	return nil
}

func (m *mockClient) RefreshDiscovery(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.refreshCalls++
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if m.refreshErr != nil {
		return 0, m.refreshErr
	}
	return 4, nil
}

func TestRefresh_SingleInFlight(t *testing.T) {
	client := &mockClient{block: make(chan struct{})}
	svc := NewService(client, testutil.NullLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()

	for !svc.Refreshing() {
		time.Sleep(time.Millisecond)
	}
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrRefreshing) {
		t.Errorf("concurrent Refresh() error = %v, want ErrRefreshing", err)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if client.refreshCalls != 1 {
		t.Errorf("backend refresh calls = %d, want 1", client.refreshCalls)
	}
}

func TestRefresh_ReturnsUpdatedCount(t *testing.T) {
	svc := NewService(&mockClient{}, testutil.NullLogger())

	updated, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if updated != 4 {
		t.Errorf("updated = %d, want 4", updated)
	}
	if svc.Refreshing() {
		t.Error("Refreshing() should be false after completion")
	}
}

func TestAcceptAndDismiss(t *testing.T) {
	client := &mockClient{}
	svc := NewService(client, testutil.NullLogger())

	if err := svc.Accept(context.Background(), "sug-1"); err != nil {
		t.Fatalf("Accept() error: %v", err)
	}
	if client.acceptedID != "sug-1" {
		t.Errorf("accepted id = %s, want sug-1", client.acceptedID)
	}

	if err := svc.Dismiss(context.Background(), "sug-2"); err != nil {
		t.Fatalf("Dismiss() error: %v", err)
	}
	if client.dismissedID != "sug-2" {
		t.Errorf("dismissed id = %s, want sug-2", client.dismissedID)
	}
}
