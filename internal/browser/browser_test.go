package browser

import (
	"reflect"
	"testing"
)

func TestOpenRejectsNonHTTP(t *testing.T) {
	var launched []string
	orig := start
	start = func(name string, args ...string) error {
		launched = append(launched, args[len(args)-1])
		return nil
	}
	t.Cleanup(func() { start = orig })

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/eth", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error %v", tt.url, err)
		}
	}
	want := []string{"https://example.com/eth", "http://example.com"}
	if !reflect.DeepEqual(launched, want) {
		t.Errorf("launched %v, want %v", launched, want)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		if got, _ := command(tt.goos, "https://x"); got != tt.want {
			t.Errorf("command(%q) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}
