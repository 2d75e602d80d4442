package digest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signaldigest/internal/models"
	"signaldigest/internal/testutil"
)

type itemResult struct {
	data *models.PaginatedItems
	err  error
}

// itemRequest captures one ListItems call; the test decides when and how
// it resolves, which makes response reordering deterministic.
type itemRequest struct {
	filter models.ItemFilter
	resp   chan itemResult
}

func (r *itemRequest) resolve(data *models.PaginatedItems) {
	r.resp <- itemResult{data: data}
}

func (r *itemRequest) fail(err error) {
	r.resp <- itemResult{err: err}
}

type stubClient struct {
	mu            sync.Mutex
	itemRequests  chan *itemRequest
	statsRequests []string
	statsResp     models.ItemStats
	categories    []models.Category
	updateErr     error
	updated       *models.DigestItem
}

func newStubClient() *stubClient {
	return &stubClient{
		itemRequests: make(chan *itemRequest, 16),
	}
}

func (s *stubClient) ListItems(ctx context.Context, filter models.ItemFilter) (*models.PaginatedItems, error) {
	req := &itemRequest{filter: filter, resp: make(chan itemResult, 1)}
	s.itemRequests <- req
	res := <-req.resp
	return res.data, res.err
}

func (s *stubClient) ItemStats(ctx context.Context, date string) (*models.ItemStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsRequests = append(s.statsRequests, date)
	stats := s.statsResp
	return &stats, nil
}

func (s *stubClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories, nil
}

func (s *stubClient) UpdateItem(ctx context.Context, id string, update models.ItemUpdate) (*models.DigestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.updated != nil {
		return s.updated, nil
	}
	item := &models.DigestItem{ID: id}
	if update.IsRead != nil {
		item.IsRead = *update.IsRead
	}
	if update.IsStarred != nil {
		item.IsStarred = *update.IsStarred
	}
	return item, nil
}

func (s *stubClient) statsDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.statsRequests))
	copy(out, s.statsRequests)
	return out
}

func nextRequest(t *testing.T, s *stubClient) *itemRequest {
	t.Helper()
	select {
	case req := <-s.itemRequests:
		return req
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an item request")
		return nil
	}
}

func noRequest(t *testing.T, s *stubClient) {
	t.Helper()
	select {
	case req := <-s.itemRequests:
		t.Fatalf("unexpected item request with filter %+v", req.filter)
	case <-time.After(30 * time.Millisecond):
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func page(titles ...string) *models.PaginatedItems {
	items := make([]models.DigestItem, len(titles))
	for i, title := range titles {
		items[i] = models.DigestItem{ID: title, Title: title}
	}
	return &models.PaginatedItems{
		Items:        items,
		TotalItems:   len(items),
		Page:         1,
		ItemsPerPage: 50,
		TotalPages:   1,
	}
}

func newTestVM(client *stubClient) *ViewModel {
	return NewViewModel(client, nil, testutil.NullLogger(), Options{Date: "2026-02-26"})
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.SetSearch(context.Background(), "first")
	reqA := nextRequest(t, client)

	vm.SetSearch(context.Background(), "second")
	reqB := nextRequest(t, client)

	// Responses arrive out of order: B first, then the stale A.
	reqB.resolve(page("result-for-second"))
	waitFor(t, func() bool { return vm.Snapshot().Data != nil })

	reqA.resolve(page("result-for-first"))
	time.Sleep(30 * time.Millisecond)

	snap := vm.Snapshot()
	if snap.Data.Items[0].Title != "result-for-second" {
		t.Errorf("displayed data = %q, want the newer request's result", snap.Data.Items[0].Title)
	}
	if snap.Loading {
		t.Error("loading flag should be cleared by the newer response")
	}
}

func TestFacetChangeResetsPage(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.SetPage(context.Background(), 3)
	req := nextRequest(t, client)
	if req.filter.Page != 3 {
		t.Fatalf("page = %d, want 3", req.filter.Page)
	}
	req.resolve(page())

	tests := []struct {
		name   string
		change func()
		check  func(models.ItemFilter) bool
	}{
		{"category", func() { vm.ToggleCategory(context.Background(), "tools") },
			func(f models.ItemFilter) bool { return f.Category == "tools" }},
		{"starred", func() { vm.SetStarredOnly(context.Background(), true) },
			func(f models.ItemFilter) bool { return f.StarredOnly }},
		{"unread", func() { vm.SetUnreadOnly(context.Background(), true) },
			func(f models.ItemFilter) bool { return f.UnreadOnly }},
		{"search", func() { vm.SetSearch(context.Background(), "llm") },
			func(f models.ItemFilter) bool { return f.Search == "llm" }},
		{"source scope", func() { vm.SetSourceScope(context.Background(), "src-1") },
			func(f models.ItemFilter) bool { return f.SourceID == "src-1" }},
		{"date", func() { vm.SetDate(context.Background(), "2026-02-25") },
			func(f models.ItemFilter) bool { return f.Date == "2026-02-25" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm.SetPage(context.Background(), 3)
			nextRequest(t, client).resolve(page())

			tt.change()
			req := nextRequest(t, client)
			if req.filter.Page != 1 {
				t.Errorf("page after %s change = %d, want 1", tt.name, req.filter.Page)
			}
			if !tt.check(req.filter) {
				t.Errorf("facet %s not applied in request filter %+v", tt.name, req.filter)
			}
			req.resolve(page())
		})
	}
}

func TestSetPageKeepsOtherFacets(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.ToggleCategory(context.Background(), "tools")
	nextRequest(t, client).resolve(page())
	vm.SetStarredOnly(context.Background(), true)
	nextRequest(t, client).resolve(page())

	vm.SetPage(context.Background(), 2)
	req := nextRequest(t, client)
	if req.filter.Page != 2 {
		t.Errorf("page = %d, want 2", req.filter.Page)
	}
	if req.filter.Category != "tools" || !req.filter.StarredOnly {
		t.Errorf("page change dropped facets: %+v", req.filter)
	}
	req.resolve(page())
}

func TestToggleCategoryOffOnReselect(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.ToggleCategory(context.Background(), "tools")
	req := nextRequest(t, client)
	if req.filter.Category != "tools" {
		t.Fatalf("category = %q, want tools", req.filter.Category)
	}
	req.resolve(page())

	vm.ToggleCategory(context.Background(), "tools")
	req = nextRequest(t, client)
	if req.filter.Category != "" {
		t.Errorf("reselecting the active category should clear it, got %q", req.filter.Category)
	}
	req.resolve(page())
}

func TestQueryFailureKeepsPreviousData(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.Refresh(context.Background())
	nextRequest(t, client).resolve(page("good"))
	waitFor(t, func() bool { return vm.Snapshot().Data != nil })

	vm.SetSearch(context.Background(), "doomed")
	nextRequest(t, client).fail(errors.New("backend unavailable"))
	waitFor(t, func() bool { return vm.Snapshot().Err != nil })

	snap := vm.Snapshot()
	if snap.Data == nil || len(snap.Data.Items) != 1 || snap.Data.Items[0].Title != "good" {
		t.Error("failed request must leave the previous result set visible")
	}
	if snap.Loading {
		t.Error("loading flag should clear on failure")
	}

	// No auto-retry: the next request only happens on an explicit action.
	noRequest(t, client)
	vm.Refresh(context.Background())
	req := nextRequest(t, client)
	req.resolve(page("recovered"))
	waitFor(t, func() bool { return vm.Snapshot().Err == nil })
}

func TestEmptyResultDistinctFromLoadingAndError(t *testing.T) {
	client := newStubClient()
	vm := NewViewModel(client, nil, testutil.NullLogger(), Options{Date: "2026-02-26"})
	defer vm.Close()

	vm.SetStarredOnly(context.Background(), true)
	vm.ToggleCategory(context.Background(), "tools")

	// Two requests are pending; only the second is current.
	nextRequest(t, client).resolve(page("stale"))
	req := nextRequest(t, client)

	if snap := vm.Snapshot(); !snap.Loading || snap.Empty() {
		t.Error("pending request should read as loading, not empty")
	}

	req.resolve(page())
	waitFor(t, func() bool { return !vm.Snapshot().Loading })

	snap := vm.Snapshot()
	if !snap.Empty() {
		t.Errorf("zero-item success should read as empty, snapshot %+v", snap)
	}
	if snap.Err != nil {
		t.Error("empty result is not an error state")
	}
}

func TestStatsFollowDateOnly(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.SetDate(context.Background(), "2026-02-25")
	nextRequest(t, client).resolve(page())
	waitFor(t, func() bool { return len(client.statsDates()) == 1 })

	// Category, starred, unread and page changes must not refetch stats.
	vm.ToggleCategory(context.Background(), "tools")
	nextRequest(t, client).resolve(page())
	vm.SetStarredOnly(context.Background(), true)
	nextRequest(t, client).resolve(page())
	vm.SetPage(context.Background(), 2)
	nextRequest(t, client).resolve(page())

	time.Sleep(30 * time.Millisecond)
	if dates := client.statsDates(); len(dates) != 1 || dates[0] != "2026-02-25" {
		t.Errorf("stats requests = %v, want exactly one for 2026-02-25", dates)
	}
}

func TestMutationAppliedOnlyAfterAck(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)
	defer vm.Close()

	vm.Refresh(context.Background())
	nextRequest(t, client).resolve(page("item-1"))
	waitFor(t, func() bool { return vm.Snapshot().Data != nil })

	client.mu.Lock()
	client.updateErr = errors.New("update rejected")
	client.mu.Unlock()

	if err := vm.SetRead(context.Background(), "item-1", true); err == nil {
		t.Fatal("SetRead should propagate the backend error")
	}
	if vm.Snapshot().Data.Items[0].IsRead {
		t.Error("rejected update must not change local state")
	}

	client.mu.Lock()
	client.updateErr = nil
	client.updated = &models.DigestItem{ID: "item-1", Title: "item-1", IsRead: true}
	client.mu.Unlock()

	if err := vm.SetRead(context.Background(), "item-1", true); err != nil {
		t.Fatalf("SetRead error: %v", err)
	}
	if !vm.Snapshot().Data.Items[0].IsRead {
		t.Error("acknowledged update should be reflected locally")
	}
}

func TestCloseDiscardsInFlightResponse(t *testing.T) {
	client := newStubClient()
	vm := newTestVM(client)

	vm.SetSearch(context.Background(), "anything")
	req := nextRequest(t, client)

	vm.Close()
	req.resolve(page("late"))
	time.Sleep(30 * time.Millisecond)

	if snap := vm.Snapshot(); snap.Data != nil {
		t.Error("response arriving after Close must be discarded")
	}
}
