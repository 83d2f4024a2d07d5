package devserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/yueh722/Web3-news-app/internal/classify"
	"github.com/yueh722/Web3-news-app/internal/feed"
	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/signal"
)

// DefaultSeedLimit caps how many feed entries become rows.
const DefaultSeedLimit = 20

type SeedOptions struct {
	Feeds   []string
	DateKey string
	Limit   int
	// Window is how far before the day entries may be published.
	Window time.Duration
	// Weights favours some feeds (by feed title) when scoring.
	Weights signal.SourceWeights
}

// Seed imports feed entries as a new day's sheet, highest score first. The
// rationale column holds the entry summary; the topic is the entry's first
// category, or a keyword classification when it has none. It fails with
// ErrSheetExists when the day is already present.
func Seed(ctx context.Context, wb *Workbook, f *feed.Fetcher, opts SeedOptions) (int, error) {
	if len(opts.Feeds) == 0 {
		return 0, errors.New("no feeds to seed from")
	}
	if _, err := SheetName(opts.DateKey); err != nil {
		return 0, err
	}
	day, _ := time.Parse(news.DateLayout, opts.DateKey)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSeedLimit
	}
	window := opts.Window
	if window <= 0 {
		window = 48 * time.Hour
	}

	res := f.FetchAll(ctx, opts.Feeds, day.Add(-window))
	if len(res.Entries) == 0 {
		if len(res.Errors) > 0 {
			return 0, fmt.Errorf("seeding %s: %w", opts.DateKey, errors.Join(res.Errors...))
		}
		return 0, fmt.Errorf("seeding %s: feeds had no entries", opts.DateKey)
	}

	// Scored as of the end of the day being seeded.
	asOf := day.Add(24 * time.Hour)
	scored := make([]scoredEntry, len(res.Entries))
	for i, e := range res.Entries {
		scored[i] = scoredEntry{
			Entry: e,
			score: signal.Score(signal.Input{
				Title:       e.Title,
				Description: e.Summary,
				Source:      e.Source,
				Published:   e.Published,
			}, opts.Weights, asOf),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > limit {
		scored = scored[:limit]
	}

	items := make([]news.NewsItem, len(scored))
	for i, e := range scored {
		topic := e.Category
		if topic == "" {
			topic = string(classify.Classify(e.Title, e.Summary))
		}
		items[i] = news.NewsItem{
			SerialNo:  strconv.Itoa(i + 1),
			Title:     e.Title,
			URL:       e.Link,
			Rationale: e.Summary,
			Score:     strconv.FormatFloat(e.score, 'f', -1, 64),
			Topic:     topic,
		}
	}

	if err := wb.AddDay(opts.DateKey, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

type scoredEntry struct {
	feed.Entry
	score float64
}
