package news

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseNewsRecords(t *testing.T) {
	body := `[
		{"json": {"列號": 2, "sno": 1, "標題": "ETH upgrade ships", "url": "https://a.example/eth", "ai評選原因": "major protocol change", "分數": 9.5, "主題": "Ethereum", "評論": ""}},
		{"列號": "3", "sno": "2", "url": "https://a.example/btc", "分數": "8"}
	]`
	got, err := parseNews([]byte(body), "2025/01/02")
	if err != nil {
		t.Fatalf("parseNews: %v", err)
	}
	want := []NewsItem{
		{RowID: "2", SerialNo: "1", Title: "ETH upgrade ships", URL: "https://a.example/eth", Rationale: "major protocol change", Score: "9.5", Topic: "Ethereum", Date: "2025/01/02"},
		{RowID: "3", SerialNo: "2", Title: TitlePlaceholder, URL: "https://a.example/btc", Score: "8", Date: "2025/01/02"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseNews mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNewsRowNumberAlias(t *testing.T) {
	got, err := parseNews([]byte(`[{"row_number": 7, "標題": "x", "date": "2025/01/01"}]`), "2025/01/02")
	if err != nil {
		t.Fatalf("parseNews: %v", err)
	}
	if got[0].RowID != "7" || got[0].Date != "2025/01/01" {
		t.Errorf("got %+v", got[0])
	}
}

func TestParseNewsOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantNoData bool
		wantNotice string
		wantBad    bool
	}{
		{name: "empty body", body: "", wantNoData: true},
		{name: "empty list", body: "[]", wantNoData: true},
		{name: "all empty records", body: "[{}, {}]", wantNoData: true},
		{name: "message notice", body: `[{"message": "already up to date"}]`, wantNotice: "already up to date"},
		{name: "wrapped message notice", body: `[{"json": {"message": "sheet not found"}}]`, wantNotice: "sheet not found"},
		{name: "bare object notice", body: `{"message": "Workflow was started"}`, wantNotice: "Workflow was started"},
		{name: "message plus fields is data", body: `[{"message": "hi", "列號": 2}]`},
		{name: "invalid json", body: `[{"列號": `, wantBad: true},
		{name: "object not list", body: `{"列號": 2}`, wantBad: true},
		{name: "scalar", body: `42`, wantBad: true},
		{name: "record not object", body: `["a"]`, wantBad: true},
		{name: "missing row id", body: `[{"標題": "x"}]`, wantBad: true},
		{name: "duplicate row id", body: `[{"列號": 2}, {"列號": "2"}]`, wantBad: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := parseNews([]byte(tt.body), "2025/01/02")
			var (
				notice *noticeError
				bad    *MalformedResponseError
			)
			switch {
			case tt.wantNoData:
				if !errors.Is(err, ErrNoData) {
					t.Errorf("expected ErrNoData, got %v", err)
				}
			case tt.wantNotice != "":
				if !errors.As(err, &notice) || notice.Message != tt.wantNotice {
					t.Errorf("expected notice %q, got %v", tt.wantNotice, err)
				}
			case tt.wantBad:
				if !errors.As(err, &bad) {
					t.Errorf("expected malformed, got %v", err)
				}
			default:
				if err != nil || len(items) == 0 {
					t.Errorf("expected data, got %v (%d items)", err, len(items))
				}
			}
		})
	}
}

func TestText(t *testing.T) {
	got, err := parseNews([]byte(`[{"列號": 1, "分數": 8.50, "主題": null, "評論": "  nice  ", "sno": true}]`), "d")
	if err != nil {
		t.Fatalf("parseNews: %v", err)
	}
	it := got[0]
	if it.Score != "8.50" {
		t.Errorf("score = %q, want %q", it.Score, "8.50")
	}
	if it.Topic != "" {
		t.Errorf("null topic = %q, want empty", it.Topic)
	}
	if it.Comment != "nice" {
		t.Errorf("comment = %q, want %q", it.Comment, "nice")
	}
	if it.SerialNo != "true" {
		t.Errorf("sno = %q, want %q", it.SerialNo, "true")
	}
}

func TestCommentMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message": "updated"}`, "updated"},
		{`[{"message": "row 5 updated"}]`, "row 5 updated"},
		{`[{"json": {"message": "ok"}}]`, "ok"},
		{`{}`, ""},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := commentMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("commentMessage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
