package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yueh722/Web3-news-app/internal/classify"
	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/view"
)

func TestParseAge(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAge(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseAge(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAge(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "30m"},
		{5 * time.Hour, "5h"},
		{72 * time.Hour, "3d"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		b    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.b); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("")
	if err != nil || !d.IsZero() {
		t.Errorf("parseDateFlag(\"\") = %v, %v; want zero, nil", d, err)
	}
	d, err = parseDateFlag("2024/03/10")
	if err != nil {
		t.Fatalf("parseDateFlag: %v", err)
	}
	if got := d.Format(news.DateLayout); got != "2024/03/10" {
		t.Errorf("parseDateFlag = %q, want 2024/03/10", got)
	}
	if _, err := parseDateFlag("tomorrow"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func loadedState() view.State {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	s, req := view.New(today).BeginRefresh(false)
	return s.ApplyFetch(req, news.DataResult([]news.NewsItem{
		{RowID: "2", SerialNo: "1", Title: "ETH upgrade", Score: "8", Topic: "L1"},
	}), today)
}

func TestWriteFetchJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFetchJSON(&buf, loadedState()); err != nil {
		t.Fatalf("writeFetchJSON: %v", err)
	}
	var out fetchOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if out.Date != "2024/03/10" || len(out.Items) != 1 || out.Banner != nil {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestWriteFetchJSONBanner(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	s, req := view.New(today).BeginRefresh(false)
	s = s.ApplyFetch(req, news.EmptyResult(), today)

	var buf bytes.Buffer
	if err := writeFetchJSON(&buf, s); err != nil {
		t.Fatalf("writeFetchJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"items": []`) {
		t.Errorf("expected empty items array, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), view.MsgNoNews) {
		t.Errorf("expected no-news banner, got %s", buf.String())
	}
}

func TestWriteFetchTable(t *testing.T) {
	var buf bytes.Buffer
	writeFetchTable(&buf, loadedState())
	out := buf.String()
	for _, want := range []string{"[ 1 items ]", "ETH upgrade", "TITLE"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestFilterTopic(t *testing.T) {
	items := []news.NewsItem{
		{RowID: "2", Topic: "DeFi"},
		{RowID: "3", Topic: "markets"},
		{RowID: "4", Topic: "Markets "},
	}
	got := filterTopic(items, classify.Markets)
	if len(got) != 2 || got[0].RowID != "3" || got[1].RowID != "4" {
		t.Errorf("filterTopic = %+v", got)
	}
	if got := filterTopic(items, classify.Security); len(got) != 0 {
		t.Errorf("expected no security items, got %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("this is a long string", 10); got != "this is..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("短い", 10); got != "短い" {
		t.Errorf("truncate = %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "fetch", "comment", "cache", "config", "devserver"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("expected %q subcommand", name)
		}
	}
}
