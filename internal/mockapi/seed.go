package mockapi

import (
	"time"

	"signaldigest/internal/models"
)

func strPtr(s string) *string  { return &s }
func intPtr(n int) *int        { return &n }
func timePtr(t time.Time) *time.Time {
	return &t
}

// seed loads a representative dataset relative to now so date filters
// behave sensibly in the demo
func (s *Server) seed(now time.Time) {
	s.categories = []models.Category{
		{ID: "cat-tools", Name: "Tools & Releases", Slug: "tools", Color: "#3B82F6", SortOrder: 1},
		{ID: "cat-research", Name: "Research", Slug: "research", Color: "#8B5CF6", SortOrder: 2},
		{ID: "cat-tutorials", Name: "Tutorials", Slug: "tutorials", Color: "#10B981", SortOrder: 3},
		{ID: "cat-opinion", Name: "Opinion", Slug: "opinion", Color: "#F59E0B", SortOrder: 4},
		{ID: "cat-news", Name: "Industry News", Slug: "news", Color: "#EF4444", SortOrder: 5},
	}

	s.sources = []models.Source{
		{
			ID: "src-hn", Name: "Hacker News Front Page", SourceType: models.SourceTypeHackerNews,
			Config: map[string]interface{}{"min_points": 100}, Enabled: true,
			FetchInterval: "6 hours", LastFetchedAt: timePtr(now.Add(-2 * time.Hour)),
			ItemsToday: 4, TotalItems: 412,
		},
		{
			ID: "src-golang-blog", Name: "The Go Blog", SourceType: models.SourceTypeRSS,
			Config: map[string]interface{}{"url": "https://go.dev/blog/feed.atom"}, Enabled: true,
			FetchInterval: "12 hours", LastFetchedAt: timePtr(now.Add(-3 * time.Hour)),
			ItemsToday: 1, TotalItems: 58,
		},
		{
			ID: "src-arxiv-cs", Name: "arXiv cs.DC", SourceType: models.SourceTypeArxiv,
			Config: map[string]interface{}{"category": "cs.DC"}, Enabled: true,
			FetchInterval: "24 hours", LastFetchedAt: timePtr(now.Add(-8 * time.Hour)),
			ItemsToday: 2, TotalItems: 230,
		},
		{
			ID: "src-reddit-selfhosted", Name: "r/selfhosted", SourceType: models.SourceTypeReddit,
			Config: map[string]interface{}{"subreddit": "selfhosted", "min_score": 50}, Enabled: true,
			FetchInterval: "6 hours", LastFetchedAt: timePtr(now.Add(-90 * time.Minute)),
			LastError: strPtr("rate limited"), ErrorCount: 1,
			ItemsToday: 3, TotalItems: 189,
		},
		{
			ID: "src-gh-kubernetes", Name: "kubernetes releases", SourceType: models.SourceTypeGithubReleases,
			Config: map[string]interface{}{"repo": "kubernetes/kubernetes"}, Enabled: true,
			FetchInterval: "24 hours", LastFetchedAt: timePtr(now.Add(-60 * time.Hour)),
			ItemsToday: 0, TotalItems: 34,
		},
		{
			ID: "src-yt-infra", Name: "Infra Talks Channel", SourceType: models.SourceTypeYouTubeChannel,
			Config: map[string]interface{}{"channel_id": "UCinfra01"}, Enabled: true,
			FetchInterval: "24 hours", LastFetchedAt: timePtr(now.Add(-5 * time.Hour)),
			ItemsToday: 1, TotalItems: 77,
		},
		{
			ID: "src-yt-search", Name: "database internals search", SourceType: models.SourceTypeYouTubeSearch,
			Config: map[string]interface{}{"query": "database internals"}, Enabled: true,
			FetchInterval: "24 hours", LastFetchedAt: timePtr(now.Add(-5 * time.Hour)),
			ItemsToday: 1, TotalItems: 41,
		},
		{
			ID: "src-broken-feed", Name: "Defunct Engineering Blog", SourceType: models.SourceTypeRSS,
			Config: map[string]interface{}{"url": "https://defunct.example.com/feed.xml"}, Enabled: true,
			FetchInterval: "12 hours", LastFetchedAt: timePtr(now.Add(-6 * 24 * time.Hour)),
			LastError: strPtr("connection refused"), ErrorCount: 7,
			ItemsToday: 0, TotalItems: 12,
		},
	}

	// anchor seed items at midday so hour offsets stay within their day
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	yesterday := today.Add(-24 * time.Hour)

	cat := func(id string) models.Category {
		for _, c := range s.categories {
			if c.ID == id {
				return c
			}
		}
		return models.Category{}
	}

	s.items = []models.DigestItem{
		{
			ID: "item-1", SourceID: "src-hn", SourceName: "Hacker News Front Page", SourceType: models.SourceTypeHackerNews,
			Title: "Show HN: A single-binary log aggregator in Go", URL: "https://example.com/hn/log-aggregator",
			Author:  strPtr("logsmith"),
			Summary: strPtr("A self-contained log collection daemon with no external dependencies, built for small fleets."),
			PublishedAt: today.Add(-1 * time.Hour), FetchedAt: today.Add(-30 * time.Minute),
			Categories: []models.Category{cat("cat-tools")},
			Extra:      map[string]interface{}{"points": 245, "comments": 89},
		},
		{
			ID: "item-2", SourceID: "src-golang-blog", SourceName: "The Go Blog", SourceType: models.SourceTypeRSS,
			Title: "Profile-guided optimization in practice", URL: "https://example.com/go/pgo",
			Summary: strPtr("How PGO reshapes inlining decisions, with benchmarks from real services."),
			PublishedAt: today.Add(-3 * time.Hour), FetchedAt: today.Add(-2 * time.Hour),
			IsStarred: true, StarNote: strPtr("try on the ingest service"),
			Categories: []models.Category{cat("cat-tutorials")},
			Extra:      map[string]interface{}{},
		},
		{
			ID: "item-3", SourceID: "src-arxiv-cs", SourceName: "arXiv cs.DC", SourceType: models.SourceTypeArxiv,
			Title: "Consensus protocols under partial synchrony: a survey", URL: "https://example.com/arxiv/2501.00001",
			Author:  strPtr("M. Ortega et al."),
			Summary: strPtr("Surveys thirty years of consensus literature and classifies protocols by their synchrony assumptions."),
			PublishedAt: today.Add(-6 * time.Hour), FetchedAt: today.Add(-5 * time.Hour),
			IsRead:     true,
			Categories: []models.Category{cat("cat-research")},
			Extra:      map[string]interface{}{},
		},
		{
			ID: "item-4", SourceID: "src-reddit-selfhosted", SourceName: "r/selfhosted", SourceType: models.SourceTypeReddit,
			Title: "Migrated my homelab from Docker Compose to Nomad, notes inside", URL: "https://example.com/reddit/nomad-migration",
			Author:  strPtr("rackmounted"),
			Summary: strPtr("A writeup of the migration path, including the rough edges around service discovery."),
			PublishedAt: today.Add(-4 * time.Hour), FetchedAt: today.Add(-90 * time.Minute),
			Categories: []models.Category{cat("cat-tutorials"), cat("cat-opinion")},
			Extra:      map[string]interface{}{"score": 312},
		},
		{
			ID: "item-5", SourceID: "src-yt-infra", SourceName: "Infra Talks Channel", SourceType: models.SourceTypeYouTubeChannel,
			Title: "Inside a petabyte-scale object store", URL: "https://example.com/yt/object-store",
			Summary: strPtr("Conference talk walking through erasure coding tradeoffs at scale."),
			ThumbnailURL: strPtr("https://example.com/thumbs/object-store.jpg"),
			PublishedAt: today.Add(-7 * time.Hour), FetchedAt: today.Add(-5 * time.Hour),
			Categories: []models.Category{cat("cat-research")},
			Extra:      map[string]interface{}{"duration": "41:20"},
		},
		{
			ID: "item-6", SourceID: "src-yt-search", SourceName: "database internals search", SourceType: models.SourceTypeYouTubeSearch,
			Title: "B-trees vs LSM-trees, benchmarked honestly", URL: "https://example.com/yt/btree-lsm",
			Summary: strPtr("A methodical comparison across write-heavy and scan-heavy workloads."),
			ThumbnailURL: strPtr("https://example.com/thumbs/btree-lsm.jpg"),
			PublishedAt: today.Add(-2 * time.Hour), FetchedAt: today.Add(-1 * time.Hour),
			Categories: []models.Category{},
			Extra:      map[string]interface{}{"duration": "28:05"},
		},
		{
			ID: "item-7", SourceID: "src-hn", SourceName: "Hacker News Front Page", SourceType: models.SourceTypeHackerNews,
			Title: "Postgres 18 release notes, annotated", URL: "https://example.com/hn/pg18",
			Author:  strPtr("dbwatcher"),
			Summary: strPtr("Annotated walkthrough of the headline features and the sleeper changes."),
			PublishedAt: yesterday.Add(-2 * time.Hour), FetchedAt: yesterday.Add(-1 * time.Hour),
			IsRead: true, IsStarred: true,
			Categories: []models.Category{cat("cat-news")},
			Extra:      map[string]interface{}{"points": 512, "comments": 203},
		},
		{
			ID: "item-8", SourceID: "src-golang-blog", SourceName: "The Go Blog", SourceType: models.SourceTypeRSS,
			Title: "Iterators in the standard library", URL: "https://example.com/go/iterators",
			Summary: strPtr("Where range-over-func landed and how the stdlib is adopting it."),
			PublishedAt: yesterday.Add(-5 * time.Hour), FetchedAt: yesterday.Add(-4 * time.Hour),
			IsRead:     true,
			Categories: []models.Category{cat("cat-news")},
			Extra:      map[string]interface{}{},
		},
		{
			ID: "item-9", SourceID: "src-arxiv-cs", SourceName: "arXiv cs.DC", SourceType: models.SourceTypeArxiv,
			Title: "Débordement: overload control for replicated queues", URL: "https://example.com/arxiv/2501.00042",
			Author:  strPtr("C. Lefèvre"),
			Summary: strPtr("Proposes an admission controller that sheds load before replication amplifies it."),
			PublishedAt: yesterday.Add(-8 * time.Hour), FetchedAt: yesterday.Add(-7 * time.Hour),
			Categories: []models.Category{cat("cat-research")},
			Extra:      map[string]interface{}{},
		},
		{
			ID: "item-10", SourceID: "src-gh-kubernetes", SourceName: "kubernetes releases", SourceType: models.SourceTypeGithubReleases,
			Title: "kubernetes v1.34.0", URL: "https://example.com/gh/k8s-1.34",
			Summary: strPtr("Release with in-place pod resize graduating to stable."),
			PublishedAt: yesterday.Add(-10 * time.Hour), FetchedAt: yesterday.Add(-9 * time.Hour),
			Categories: []models.Category{cat("cat-tools"), cat("cat-news")},
			Extra:      map[string]interface{}{"tag": "v1.34.0"},
		},
	}

	completed := now.Add(-3 * time.Hour)
	completedEnd := completed.Add(4 * time.Minute)
	earlier := now.Add(-15 * time.Hour)
	earlierEnd := earlier.Add(6 * time.Minute)
	s.runs = []models.PipelineRun{
		{
			ID: "run-1", StartedAt: completed, CompletedAt: &completedEnd,
			Status: models.RunStatusCompleted, ItemsFetched: 38, ItemsNew: 9,
			ItemsSummarized: 9, Trigger: models.RunTriggerScheduled,
		},
		{
			ID: "run-2", StartedAt: earlier, CompletedAt: &earlierEnd,
			Status: models.RunStatusWarning, ItemsFetched: 31, ItemsNew: 6,
			ItemsSummarized: 6, Errors: 1, Trigger: models.RunTriggerScheduled,
		},
	}

	weekStart := now.AddDate(0, 0, -int(now.Weekday())-6)
	s.reviews = []models.WeeklyReview{
		{
			ID:        "review-1",
			WeekStart: weekStart.Format("2006-01-02"),
			WeekEnd:   weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
			Title:     strPtr("Storage engines week"),
			Markdown:  "# Storage engines week\n\nThe standout threads this week were LSM compaction tuning and the Postgres 18 release.\n",
			ItemCount: 14,
			GeneratedAt: now.Add(-4 * 24 * time.Hour),
		},
	}

	s.suggestions = []models.ChannelSuggestion{
		{
			ID: "sug-1", ChannelID: "UCdistsys99", ChannelName: "Distributed Systems Reading Group",
			ChannelURL:      "https://youtube.com/channel/UCdistsys99",
			SubscriberCount: intPtr(48000), VideoCount: intPtr(120), AppearanceCount: 5,
			SampleVideos: []models.SampleVideo{
				{Title: "Paper review: calvin revisited", Views: "12K"},
				{Title: "Why vector clocks are not enough", Views: "31K"},
			},
			Status: models.SuggestionPending,
		},
		{
			ID: "sug-2", ChannelID: "UCperfeng42", ChannelName: "Performance Engineering Weekly",
			ChannelURL:      "https://youtube.com/channel/UCperfeng42",
			SubscriberCount: intPtr(112000), VideoCount: intPtr(340), AppearanceCount: 3,
			SampleVideos: []models.SampleVideo{
				{Title: "Flame graphs beyond the basics", Views: "58K"},
			},
			Status: models.SuggestionPending,
		},
	}

	s.settings = models.AppSettings{
		PipelineCron:    "0 6 * * *",
		YouTubeKeywords: []string{"database internals", "distributed systems"},
	}
}
