package update

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ReleasesURL is the GitHub endpoint for the latest published release.
var ReleasesURL = "https://api.github.com/repos/yueh722/Web3-news-app/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

// Check asks GitHub whether a release newer than currentVersion exists.
// Any failure returns nil; the check is best-effort.
func Check(ctx context.Context, currentVersion string) *Result {
	return check(ctx, http.DefaultClient, ReleasesURL, currentVersion)
}

func check(ctx context.Context, client *http.Client, endpoint, currentVersion string) *Result {
	current := strings.TrimPrefix(currentVersion, "v")
	if current == "" || current == "dev" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || !gjson.ValidBytes(body) {
		return nil
	}
	latest := strings.TrimPrefix(gjson.GetBytes(body, "tag_name").String(), "v")
	if latest == "" || !newer(latest, current) {
		return nil
	}
	return &Result{LatestVersion: latest}
}

// newer compares dotted numeric versions. Pre-release suffixes are ignored;
// a part that does not parse makes the versions compare as different
// strings.
func newer(latest, current string) bool {
	lp, lok := parseVersion(latest)
	cp, cok := parseVersion(current)
	if !lok || !cok {
		return latest != current
	}
	for i := 0; i < len(lp) || i < len(cp); i++ {
		var l, c int
		if i < len(lp) {
			l = lp[i]
		}
		if i < len(cp) {
			c = cp[i]
		}
		if l != c {
			return l > c
		}
	}
	return false
}

func parseVersion(v string) ([]int, bool) {
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	var parts []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}
