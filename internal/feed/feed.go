// Package feed reads RSS/Atom feeds into plain entries used to seed a day
// of news in the development workbook.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

// SummaryLimit caps Entry.Summary in runes.
const SummaryLimit = 300

type Entry struct {
	ID        string
	Source    string
	Title     string
	Link      string
	Summary   string
	Category  string
	Published time.Time
}

type Fetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

func NewFetcher() *Fetcher {
	return &Fetcher{parser: gofeed.NewParser(), now: time.Now}
}

// Fetch parses one feed. Entries published before since are skipped; a
// zero since keeps everything.
func (f *Fetcher) Fetch(ctx context.Context, url string, since time.Time) ([]Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	now := f.now()
	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}
		if !since.IsZero() && pub.Before(since) {
			continue
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		var category string
		if len(item.Categories) > 0 {
			category = strings.TrimSpace(item.Categories[0])
		}

		entries = append(entries, Entry{
			ID:        entryID(item.Link),
			Source:    parsed.Title,
			Title:     strings.TrimSpace(item.Title),
			Link:      item.Link,
			Summary:   truncate(stripHTML(desc), SummaryLimit),
			Category:  category,
			Published: pub,
		})
	}
	return entries, nil
}

func entryID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type Result struct {
	Entries []Entry
	Errors  []error
}

// FetchAll reads every url concurrently. Entries sharing a link are kept
// once; the result is ordered newest first.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, since time.Time) Result {
	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	for _, u := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			entries, err := f.Fetch(ctx, url, since)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Entries = append(result.Entries, entries...)
		}(u)
	}
	wg.Wait()

	seen := make(map[string]bool, len(result.Entries))
	unique := result.Entries[:0]
	for _, e := range result.Entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		unique = append(unique, e)
	}
	result.Entries = unique
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].Published.After(result.Entries[j].Published)
	})
	return result
}
