package digest

import (
	"context"
	"encoding/json"
	"sync"

	"signaldigest/internal/cache"
	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

const (
	categoriesCacheKey = "categories"
	defaultPageSize    = 50
)

// Client is the slice of the backend API the view model needs
type Client interface {
	ListItems(ctx context.Context, filter models.ItemFilter) (*models.PaginatedItems, error)
	ItemStats(ctx context.Context, date string) (*models.ItemStats, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateItem(ctx context.Context, id string, update models.ItemUpdate) (*models.DigestItem, error)
}

// Snapshot is the view model state handed to the presentation layer
type Snapshot struct {
	Filter     models.ItemFilter
	Data       *models.PaginatedItems
	Stats      *models.ItemStats
	Categories []models.Category
	Loading    bool
	Err        error
}

// Empty reports a successfully loaded result with zero items, which the
// interface must render differently from loading and from error.
func (s Snapshot) Empty() bool {
	return !s.Loading && s.Err == nil && s.Data != nil && len(s.Data.Items) == 0
}

// Options tune the view model
type Options struct {
	// Date is the initial date facet (YYYY-MM-DD)
	Date string
	// ItemsPerPage is the requested page size; 0 means the default
	ItemsPerPage int
	// OnChange fires after every state change with the new snapshot. It is
	// invoked from view model goroutines and must not call back into the
	// ViewModel.
	OnChange func(Snapshot)
}

// ViewModel owns the composed item filter and reconciles overlapping
// responses so the view always reflects the most recently issued request.
// Facet changes and responses may interleave arbitrarily; every outgoing
// request carries a sequence number and a response is applied only while
// its number is still current.
type ViewModel struct {
	client   Client
	catalog  cache.Cache
	logger   *logging.Logger
	onChange func(Snapshot)

	mu         sync.Mutex
	filter     models.ItemFilter
	data       *models.PaginatedItems
	stats      *models.ItemStats
	categories []models.Category
	loading    bool
	err        error
	seq        uint64
	statsSeq   uint64
	closed     bool
}

// NewViewModel creates a view model with the given initial date facet.
// Call Refresh to issue the first load.
func NewViewModel(client Client, catalog cache.Cache, logger *logging.Logger, opts Options) *ViewModel {
	perPage := opts.ItemsPerPage
	if perPage <= 0 {
		perPage = defaultPageSize
	}
	return &ViewModel{
		client:   client,
		catalog:  catalog,
		logger:   logger,
		onChange: opts.OnChange,
		filter: models.ItemFilter{
			Date:         opts.Date,
			Page:         1,
			ItemsPerPage: perPage,
		},
	}
}

// Snapshot returns a copy of the current view state
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshotLocked()
}

func (vm *ViewModel) snapshotLocked() Snapshot {
	return Snapshot{
		Filter:     vm.filter,
		Data:       vm.data,
		Stats:      vm.stats,
		Categories: vm.categories,
		Loading:    vm.loading,
		Err:        vm.err,
	}
}

// Close discards any in-flight responses and detaches callbacks
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.closed = true
}

// SetDate changes the date facet, resets pagination and refreshes both the
// item list and the per-day stats.
func (vm *ViewModel) SetDate(ctx context.Context, date string) {
	vm.mu.Lock()
	vm.filter.Date = date
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
	vm.requestStats(ctx)
}

// ToggleCategory selects the category slug, or clears the facet when the
// already-active slug is selected again.
func (vm *ViewModel) ToggleCategory(ctx context.Context, slug string) {
	vm.mu.Lock()
	if vm.filter.Category == slug {
		vm.filter.Category = ""
	} else {
		vm.filter.Category = slug
	}
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// SetStarredOnly flips the starred-only facet
func (vm *ViewModel) SetStarredOnly(ctx context.Context, on bool) {
	vm.mu.Lock()
	vm.filter.StarredOnly = on
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// SetUnreadOnly flips the unread-only facet
func (vm *ViewModel) SetUnreadOnly(ctx context.Context, on bool) {
	vm.mu.Lock()
	vm.filter.UnreadOnly = on
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// SetSearch changes the free-text search facet
func (vm *ViewModel) SetSearch(ctx context.Context, query string) {
	vm.mu.Lock()
	vm.filter.Search = query
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// SetSourceScope restricts the view to one source, or clears the scope
// when id is empty.
func (vm *ViewModel) SetSourceScope(ctx context.Context, id string) {
	vm.mu.Lock()
	vm.filter.SourceID = id
	vm.filter.Page = 1
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// SetPage moves the page pointer without touching any other facet
func (vm *ViewModel) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	vm.mu.Lock()
	vm.filter.Page = page
	vm.mu.Unlock()
	vm.requestItems(ctx)
}

// Refresh re-issues the item, stats and category requests with the current
// filter. This is the retry path after a failed load and the hook the run
// controller's completion callback is wired to.
func (vm *ViewModel) Refresh(ctx context.Context) {
	vm.requestItems(ctx)
	vm.requestStats(ctx)
	go vm.loadCategories(ctx)
}

// requestItems issues one item query for the currently composed filter.
// The sequence number taken here decides whether the response still gets
// applied: a response that arrives after a newer request was issued is
// discarded, never merged.
func (vm *ViewModel) requestItems(ctx context.Context) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.seq++
	seq := vm.seq
	filter := vm.filter
	vm.loading = true
	vm.notifyLocked()
	vm.mu.Unlock()

	go func() {
		data, err := vm.client.ListItems(ctx, filter)

		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.closed || seq != vm.seq {
			// Superseded by a newer request; the newer one owns the
			// loading flag and the result slot.
			return
		}
		vm.loading = false
		if err != nil {
			// Keep the previous result set visible alongside the error.
			vm.err = err
			vm.logger.Warn("Item query failed", logging.WithField("error", err.Error()))
		} else {
			vm.err = nil
			vm.data = data
		}
		vm.notifyLocked()
	}()
}

// requestStats refreshes the per-day summary. Stats are keyed by the date
// facet alone, so pagination and the other facets never touch them.
func (vm *ViewModel) requestStats(ctx context.Context) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.statsSeq++
	seq := vm.statsSeq
	date := vm.filter.Date
	vm.mu.Unlock()

	go func() {
		stats, err := vm.client.ItemStats(ctx, date)
		if err != nil {
			vm.logger.Warn("Stats query failed", logging.WithField("error", err.Error()))
			return
		}

		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.closed || seq != vm.statsSeq {
			return
		}
		vm.stats = stats
		vm.notifyLocked()
	}()
}

func (vm *ViewModel) loadCategories(ctx context.Context) {
	if cats, ok := vm.cachedCategories(); ok {
		vm.mu.Lock()
		if !vm.closed {
			vm.categories = cats
			vm.notifyLocked()
		}
		vm.mu.Unlock()
		return
	}

	cats, err := vm.client.ListCategories(ctx)
	if err != nil {
		vm.logger.Warn("Category load failed", logging.WithField("error", err.Error()))
		return
	}
	if vm.catalog != nil {
		vm.catalog.Set(categoriesCacheKey, cats)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	vm.categories = cats
	vm.notifyLocked()
}

// cachedCategories reads the catalog cache. A redis-backed cache returns
// generic JSON values, so a remarshal round trip recovers the typed slice.
func (vm *ViewModel) cachedCategories() ([]models.Category, bool) {
	if vm.catalog == nil {
		return nil, false
	}
	cached, ok := vm.catalog.Get(categoriesCacheKey)
	if !ok || cached == nil {
		return nil, false
	}
	if cats, ok := cached.([]models.Category); ok {
		return cats, true
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return nil, false
	}
	var decoded []models.Category
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded) == 0 {
		return nil, false
	}
	return decoded, true
}

// SetRead marks an item read or unread. The local copy changes only after
// the backend acknowledges the update.
func (vm *ViewModel) SetRead(ctx context.Context, id string, read bool) error {
	return vm.mutate(ctx, id, models.ItemUpdate{IsRead: &read})
}

// SetStarred stars or unstars an item, optionally attaching a note
func (vm *ViewModel) SetStarred(ctx context.Context, id string, starred bool, note *string) error {
	update := models.ItemUpdate{IsStarred: &starred}
	if note != nil {
		update.StarNote = note
	}
	return vm.mutate(ctx, id, update)
}

// AssignCategories replaces an item's category set
func (vm *ViewModel) AssignCategories(ctx context.Context, id string, categoryIDs []string) error {
	return vm.mutate(ctx, id, models.ItemUpdate{CategoryIDs: categoryIDs})
}

func (vm *ViewModel) mutate(ctx context.Context, id string, update models.ItemUpdate) error {
	updated, err := vm.client.UpdateItem(ctx, id, update)
	if err != nil {
		vm.logger.Warn("Item update failed", logging.WithFields(map[string]interface{}{
			"item_id": id,
			"error":   err.Error(),
		}))
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed || vm.data == nil {
		return nil
	}
	for i := range vm.data.Items {
		if vm.data.Items[i].ID == updated.ID {
			vm.data.Items[i] = *updated
			break
		}
	}
	vm.notifyLocked()
	return nil
}

func (vm *ViewModel) notifyLocked() {
	if vm.onChange != nil {
		vm.onChange(vm.snapshotLocked())
	}
}
