package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
	}
	for _, tt := range tests {
		got := truncateStr(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateStrUTF8(t *testing.T) {
	got := truncateStr("以太坊升級完成", 5)
	want := "以太..."
	if got != want {
		t.Errorf("truncateStr(Chinese, 5) = %q, want %q", got, want)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-48 * time.Hour), "Dec 31 12:00"},
	}
	for _, tt := range tests {
		got := relativeTime(tt.t, now)
		if got != tt.want {
			t.Errorf("relativeTime(%v ago) = %q, want %q", now.Sub(tt.t), got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"the quick brown fox", 10, "the quick\nbrown fox"},
		{"short", 10, "short"},
		{"", 10, ""},
		{"a\nb", 10, "a\nb"},
		{"abcdefghij", 4, "abcd\nefgh\nij"},
	}
	for _, tt := range tests {
		if got := wrapText(tt.in, tt.width); got != tt.want {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWrapTextCJKWidth(t *testing.T) {
	got := wrapText("比特幣現貨ETF資金持續流入", 8)
	for _, line := range strings.Split(got, "\n") {
		if w := lipgloss.Width(line); w > 8 {
			t.Errorf("line %q is %d cells wide, limit 8", line, w)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != "比特幣現貨ETF資金持續流入" {
		t.Errorf("wrap lost text: %q", got)
	}
}
