package update

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		current string
		want    string
	}{
		{"newer release", 200, `{"tag_name": "v1.2.0"}`, "v1.1.0", "1.2.0"},
		{"same release", 200, `{"tag_name": "v1.1.0"}`, "1.1.0", ""},
		{"dev build skips", 200, `{"tag_name": "v1.2.0"}`, "dev", ""},
		{"rate limited", 403, `{}`, "1.0.0", ""},
		{"bad json", 200, `{`, "1.0.0", ""},
		{"older release", 200, `{"tag_name": "v1.0.9"}`, "v1.1.0", ""},
		{"minor beats patch", 200, `{"tag_name": "v1.10.0"}`, "1.9.3", "1.10.0"},
		{"missing tag", 200, `{"name": "x"}`, "1.0.0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res := check(context.Background(), srv.Client(), srv.URL, tt.current)
			got := ""
			if res != nil {
				got = res.LatestVersion
			}
			if got != tt.want {
				t.Errorf("check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.2", "1.2.0", false},
		{"1.2.1", "1.2", true},
		{"2.0.0-rc1", "1.9.0", true},
		{"1.0.0", "1.0.0-beta", false},
		{"nightly", "1.0.0", true},
	}
	for _, tt := range tests {
		if got := newer(tt.latest, tt.current); got != tt.want {
			t.Errorf("newer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}
