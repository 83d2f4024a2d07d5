// Package view is the dashboard's state machine. State is a value; every
// transition returns a new State and never blocks. The blocking
// compositions (Refresh, AutoFetchOnFirstView, SubmitComment) are for
// callers that run one event at a time.
package view

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yueh722/Web3-news-app/internal/news"
)

// Banner texts owned by the view, not the backend.
const (
	MsgNoNews     = "no news for this date, 0 items"
	MsgFutureDate = "no data for this date, pick another."
)

type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerInfo
	BannerWarning
	BannerError
)

func (k BannerKind) String() string {
	switch k {
	case BannerInfo:
		return "info"
	case BannerWarning:
		return "warning"
	case BannerError:
		return "error"
	default:
		return "none"
	}
}

type Banner struct {
	Kind    BannerKind
	Message string
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a one-shot message. It is delivered once by DrainNotices.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Mode is the regime the renderer is in.
type Mode int

const (
	ModeEmpty    Mode = iota // nothing loaded, no banner: prompt to refresh
	ModeBanner               // banner set, no items
	ModeBrowsing             // showing Items[Index]
)

// Fetcher is the cached read side of the news client.
type Fetcher interface {
	FetchNewsCached(ctx context.Context, dateKey string) news.FetchResult
	Invalidate(ctx context.Context, dateKey string)
}

type Commenter interface {
	PostComment(ctx context.Context, dateKey, rowID, text string) news.CommentResult
}

// Request describes one fetch issued by BeginRefresh. Gen ties the reply
// back to the state that asked for it.
type Request struct {
	Key      string
	Force    bool
	Gen      uint64
	Selected time.Time
}

type State struct {
	// Selected is the user's chosen day (midnight, local).
	Selected time.Time
	// CurrentDate is the partition key Items were loaded from.
	CurrentDate string
	Items       []news.NewsItem
	Index       int
	Banner      Banner
	Busy        bool
	AutoFetched bool

	notices []Notice
	gen     uint64
}

func New(today time.Time) State {
	return State{Selected: dateOnly(today)}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey is the partition key for the selected day.
func (s State) DateKey() string {
	return s.Selected.Format(news.DateLayout)
}

// DateChanged selects d. It does not fetch or touch Items. A fetch still in
// flight is orphaned: its reply will be dropped by ApplyFetch.
func (s State) DateChanged(d time.Time) State {
	d = dateOnly(d)
	if s.Busy && !d.Equal(s.Selected) {
		s.gen++
		s.Busy = false
	}
	s.Selected = d
	return s
}

// ShiftDate moves the selection by days; see DateChanged.
func (s State) ShiftDate(days int) State {
	return s.DateChanged(s.Selected.AddDate(0, 0, days))
}

// BeginRefresh marks the state busy and returns the fetch to perform.
func (s State) BeginRefresh(force bool) (State, Request) {
	s.gen++
	s.Busy = true
	return s, Request{Key: s.DateKey(), Force: force, Gen: s.gen, Selected: s.Selected}
}

// Stale reports whether a reply to req would be discarded.
func (s State) Stale(req Request) bool {
	return req.Gen != s.gen
}

// ApplyFetch folds a fetch reply into the state. Replies to superseded
// requests are ignored.
func (s State) ApplyFetch(req Request, res news.FetchResult, today time.Time) State {
	if s.Stale(req) {
		return s
	}
	s.Busy = false

	if res.Kind == news.FetchData && len(res.Items) == 0 {
		res = news.EmptyResult()
	}

	switch res.Kind {
	case news.FetchData:
		s.Items = res.Items
		s.Index = 0
		s.CurrentDate = req.Key
		s.Banner = Banner{}
	case news.FetchEmpty:
		s = s.clearItems()
		s.Banner = Banner{Kind: BannerWarning, Message: EmptyMessage(req.Selected, today)}
	case news.FetchWarning:
		s = s.clearItems()
		s.Banner = Banner{Kind: BannerWarning, Message: res.Message}
	default:
		s = s.clearItems()
		msg := res.Message
		if msg == "" {
			msg = "fetch failed"
		}
		s.Banner = Banner{Kind: BannerError, Message: msg}
	}
	return s
}

func (s State) clearItems() State {
	s.Items = nil
	s.Index = 0
	return s
}

// EmptyMessage picks the empty-day banner: days after today have no data
// yet, anything else simply had no news.
func EmptyMessage(selected, today time.Time) string {
	if selected.Format("20060102") > today.Format("20060102") {
		return MsgFutureDate
	}
	return MsgNoNews
}

// Load performs req against f, invalidating first when forced.
func Load(ctx context.Context, f Fetcher, req Request) news.FetchResult {
	if req.Force {
		f.Invalidate(ctx, req.Key)
	}
	return f.FetchNewsCached(ctx, req.Key)
}

// Refresh loads the selected date and applies the result.
func Refresh(ctx context.Context, s State, f Fetcher, force bool, today time.Time) State {
	s, req := s.BeginRefresh(force)
	return s.ApplyFetch(req, Load(ctx, f, req), today)
}

// MarkVisible flips the one-shot auto-fetch flag. It reports true only the
// first time; the flag is set before any fetch is issued.
func (s State) MarkVisible() (State, bool) {
	if s.AutoFetched {
		return s, false
	}
	s.AutoFetched = true
	return s, true
}

func AutoFetchOnFirstView(ctx context.Context, s State, f Fetcher, today time.Time) State {
	s, ok := s.MarkVisible()
	if !ok {
		return s
	}
	return Refresh(ctx, s, f, false, today)
}

// GoPrev and GoNext move within the current Items; at either end they do
// nothing. Bounds come from len(Items) on every call.
func (s State) GoPrev() State {
	s.Index = max(0, min(s.Index-1, len(s.Items)-1))
	return s
}

func (s State) GoNext() State {
	s.Index = max(0, min(s.Index+1, len(s.Items)-1))
	return s
}

func (s State) HasPrev() bool {
	return len(s.Items) > 0 && s.Index > 0
}

func (s State) HasNext() bool {
	return s.Index < len(s.Items)-1
}

func (s State) Total() int {
	return len(s.Items)
}

func (s State) Current() (news.NewsItem, bool) {
	if s.Index < 0 || s.Index >= len(s.Items) {
		return news.NewsItem{}, false
	}
	return s.Items[s.Index], true
}

// Item finds an item by row identifier.
func (s State) Item(rowID string) (news.NewsItem, bool) {
	for _, it := range s.Items {
		if it.RowID == rowID {
			return it, true
		}
	}
	return news.NewsItem{}, false
}

func (s State) Mode() Mode {
	switch {
	case len(s.Items) > 0:
		return ModeBrowsing
	case s.Banner.Kind != BannerNone:
		return ModeBanner
	default:
		return ModeEmpty
	}
}

// CommentDateKey is the partition comments are written to: the one the
// items came from, not whatever day is selected now.
func (s State) CommentDateKey() string {
	if s.CurrentDate != "" {
		return s.CurrentDate
	}
	return s.DateKey()
}

// ApplyComment records a write-back reply for the loaded partition. On
// success the matching item's comment is replaced in a fresh copy of Items;
// on failure Items is left alone. Either way one notice is queued.
func (s State) ApplyComment(rowID, text string, res news.CommentResult) State {
	return s.ApplyCommentFor(s.CommentDateKey(), rowID, text, res)
}

// ApplyCommentFor is ApplyComment for a reply to a write against dateKey.
// Row ids only mean something within one partition, so when other items
// have been loaded since, only the notice is queued.
func (s State) ApplyCommentFor(dateKey, rowID, text string, res news.CommentResult) State {
	if !res.OK {
		msg := res.Message
		if msg == "" {
			msg = "comment failed"
		}
		return s.pushNotice(Notice{Kind: NoticeError, Message: msg})
	}

	if dateKey == s.CommentDateKey() {
		if i := slices.IndexFunc(s.Items, func(it news.NewsItem) bool { return it.RowID == rowID }); i >= 0 {
			items := slices.Clone(s.Items)
			items[i].Comment = text
			s.Items = items
		}
	}
	return s.pushNotice(Notice{Kind: NoticeSuccess, Message: res.Message})
}

func SubmitComment(ctx context.Context, s State, c Commenter, rowID, text string) State {
	res := c.PostComment(ctx, s.CommentDateKey(), rowID, text)
	return s.ApplyComment(rowID, text, res)
}

func (s State) pushNotice(n Notice) State {
	s.notices = append(slices.Clip(s.notices), n)
	return s
}

// DrainNotices returns the queued notices and a state without them.
func (s State) DrainNotices() (State, []Notice) {
	out := s.notices
	s.notices = nil
	return s, out
}

// Position is "i / n" for the current item, or "" when nothing is shown.
func (s State) Position() string {
	if len(s.Items) == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", s.Index+1, len(s.Items))
}

var dateLayouts = []string{news.DateLayout, "2006-01-02", "20060102"}

// ParseDate accepts YYYY/MM/DD, YYYY-MM-DD or YYYYMMDD in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY/MM/DD)", s)
}
