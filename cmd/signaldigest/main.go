package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"signaldigest/internal/app"
	"signaldigest/internal/config"
	"signaldigest/internal/digest"
	"signaldigest/internal/models"
	"signaldigest/internal/pipeline"
	"signaldigest/internal/sources"
)

func main() {
	runMode := flag.Bool("run", false, "Trigger a pipeline run and watch it to completion")
	runsMode := flag.Bool("runs", false, "Show pipeline run history")
	sourcesMode := flag.Bool("sources", false, "List sources with health")
	reviewsMode := flag.Bool("reviews", false, "List weekly reviews")
	discoverMode := flag.Bool("discover", false, "List channel suggestions")

	date := flag.String("date", "", "Digest date (YYYY-MM-DD, default today)")
	sourceID := flag.String("source", "", "Limit the digest to one source")
	category := flag.String("category", "", "Limit the digest to one category slug")
	starred := flag.Bool("starred", false, "Only starred items")
	unread := flag.Bool("unread", false, "Only unread items")
	search := flag.String("search", "", "Search items")
	page := flag.Int("page", 1, "Digest page")

	sourceType := flag.String("type", "", "Filter sources by type")
	healthFilter := flag.String("health", "", "Filter sources by health (healthy, warning, error, stale)")

	// config.Load calls flag.Parse and picks up the flags above too
	cfg := config.Load()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.Logger.Info("Shutting down...")
		cancel()
	}()

	switch {
	case *runMode:
		err = watchRun(ctx, a)
	case *runsMode:
		err = showRuns(ctx, a)
	case *sourcesMode:
		err = showSources(ctx, a, sources.ListFilter{
			SourceType: *sourceType,
			Health:     *healthFilter,
		})
	case *reviewsMode:
		err = showReviews(ctx, a)
	case *discoverMode:
		err = showSuggestions(ctx, a)
	default:
		err = showDigest(ctx, a, digestFacets{
			date:     *date,
			sourceID: *sourceID,
			category: *category,
			starred:  *starred,
			unread:   *unread,
			search:   *search,
			page:     *page,
		})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = a.Shutdown(shutdownCtx)

	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type digestFacets struct {
	date     string
	sourceID string
	category string
	starred  bool
	unread   bool
	search   string
	page     int
}

// showDigest applies the requested facets, waits for the view model to
// settle, and prints the resulting page
func showDigest(ctx context.Context, a *app.App, f digestFacets) error {
	vm := a.Digest

	if f.date != "" {
		date, ok := models.NormalizeDateFilter(f.date)
		if !ok {
			return fmt.Errorf("unrecognized date %q", f.date)
		}
		vm.SetDate(ctx, date)
	}
	if f.sourceID != "" {
		vm.SetSourceScope(ctx, f.sourceID)
	}
	if f.category != "" {
		vm.ToggleCategory(ctx, f.category)
	}
	if f.starred {
		vm.SetStarredOnly(ctx, true)
	}
	if f.unread {
		vm.SetUnreadOnly(ctx, true)
	}
	if f.search != "" {
		vm.SetSearch(ctx, f.search)
	}
	if f.page > 1 {
		vm.SetPage(ctx, f.page)
	}
	vm.Refresh(ctx)

	snap, err := waitForDigest(ctx, vm)
	if err != nil {
		return err
	}
	if snap.Err != nil {
		return fmt.Errorf("loading digest: %w", snap.Err)
	}

	if snap.Stats != nil {
		fmt.Printf("%d items, %d unread, %d starred, sources %d/%d healthy\n\n",
			snap.Stats.TodayCount, snap.Stats.UnreadCount, snap.Stats.StarredCount,
			snap.Stats.SourcesHealthy, snap.Stats.SourcesTotal)
	}

	if snap.Empty() {
		fmt.Println("No items match the current filters.")
		return nil
	}

	for _, item := range snap.Data.Items {
		marks := ""
		if !item.IsRead {
			marks += "*"
		}
		if item.IsStarred {
			marks += "★"
		}
		var slugs []string
		for _, c := range item.Categories {
			slugs = append(slugs, c.Slug)
		}
		line := fmt.Sprintf("%-2s %s  [%s]", marks, item.Title, item.SourceName)
		if len(slugs) > 0 {
			line += "  (" + strings.Join(slugs, ", ") + ")"
		}
		fmt.Println(line)
		fmt.Printf("   %s  %s\n", item.PublishedAt.Local().Format("15:04"), item.URL)
	}
	fmt.Printf("\npage %d/%d (%d items)\n", snap.Data.Page, snap.Data.TotalPages, snap.Data.TotalItems)
	return nil
}

// waitForDigest polls until the in-flight request settles
func waitForDigest(ctx context.Context, vm *digest.ViewModel) (digest.Snapshot, error) {
	deadline := time.Now().Add(time.Minute)
	for {
		snap := vm.Snapshot()
		if !snap.Loading {
			return snap, nil
		}
		if time.Now().After(deadline) {
			return snap, fmt.Errorf("timed out waiting for the digest to load")
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// watchRun triggers a pipeline run and follows it until the completed
// result has been shown
func watchRun(ctx context.Context, a *app.App) error {
	if err := a.Pipeline.Start(ctx); err != nil {
		return fmt.Errorf("starting run: %w", err)
	}
	fmt.Println("Pipeline run started...")

	reported := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}

		snap := a.Pipeline.Snapshot()
		switch snap.State {
		case pipeline.StateCompleted:
			if !reported {
				fmt.Printf("Run completed: %d new items\n", snap.ItemsNew)
				reported = true
			}
		case pipeline.StateIdle:
			if reported {
				return nil
			}
			if snap.Err != nil {
				return fmt.Errorf("run failed: %w", snap.Err)
			}
		}
	}
}

func showRuns(ctx context.Context, a *app.App) error {
	runs, err := a.Client.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No pipeline runs yet.")
		return nil
	}
	for _, run := range runs {
		dur := "-"
		if run.CompletedAt != nil {
			dur = run.CompletedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		fmt.Printf("%s  %-9s  %-9s  new=%-3d fetched=%-3d errors=%-2d %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status, run.Trigger, run.ItemsNew, run.ItemsFetched, run.Errors, dur)
	}
	return nil
}

func showSources(ctx context.Context, a *app.App, filter sources.ListFilter) error {
	rows, err := a.SourcesSvc.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	rows = sources.Filter(rows, filter)
	if len(rows) == 0 {
		fmt.Println("No sources match.")
		return nil
	}
	for _, row := range rows {
		enabled := "enabled"
		if !row.Enabled {
			enabled = "disabled"
		}
		last := "never"
		if row.LastFetchedAt != nil {
			last = row.LastFetchedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%-8s %-16s %-32s %-8s last fetch %s", row.Health, row.SourceType, row.Name, enabled, last)
		if row.LastError != nil {
			fmt.Printf("  (%s)", *row.LastError)
		}
		fmt.Println()
	}
	return nil
}

func showReviews(ctx context.Context, a *app.App) error {
	reviews, err := a.ReviewSvc.List(ctx)
	if err != nil {
		return fmt.Errorf("listing reviews: %w", err)
	}
	if len(reviews) == 0 {
		fmt.Println("No weekly reviews yet.")
		return nil
	}
	for _, r := range reviews {
		title := r.WeekStart + " to " + r.WeekEnd
		if r.Title != nil {
			title = *r.Title
		}
		fmt.Printf("%s  %-40s %d items\n", r.GeneratedAt.Local().Format("2006-01-02"), title, r.ItemCount)
	}
	return nil
}

func showSuggestions(ctx context.Context, a *app.App) error {
	suggestions, err := a.DiscoverySvc.List(ctx)
	if err != nil {
		return fmt.Errorf("listing suggestions: %w", err)
	}
	pending := 0
	for _, s := range suggestions {
		if s.Status != models.SuggestionPending {
			continue
		}
		pending++
		subs := "?"
		if s.SubscriberCount != nil {
			subs = fmt.Sprintf("%d", *s.SubscriberCount)
		}
		fmt.Printf("%-40s %s subscribers, seen %d times\n", s.ChannelName, subs, s.AppearanceCount)
		for _, v := range s.SampleVideos {
			fmt.Printf("    %s (%s views)\n", v.Title, v.Views)
		}
	}
	if pending == 0 {
		fmt.Println("No pending channel suggestions.")
	}
	return nil
}
