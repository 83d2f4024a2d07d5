package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yueh722/Web3-news-app/internal/classify"
	"github.com/yueh722/Web3-news-app/internal/logging"
	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/view"
)

var (
	flagFetchDate  string
	flagFetchForce bool
	flagFetchJSON  bool
	flagFetchTopic string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load one day's news and print it",
	Long: `Fetch the news items for a date (default today) through the same cache
the dashboard uses, and print them as a table or JSON. The banner the
dashboard would show for an empty or failed day is printed as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		selected, err := parseDateFlag(flagFetchDate)
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		rec, _ := newRecorder(cfg)
		svc, closeStore, err := newService(cmd.Context(), cfg, logger, rec)
		if err != nil {
			return err
		}
		defer closeStore()

		now := time.Now()
		state := view.New(now)
		if !selected.IsZero() {
			state = state.DateChanged(selected)
		}
		state = view.Refresh(cmd.Context(), state, svc, flagFetchForce, now)

		if flagFetchTopic != "" {
			cat, err := classify.ResolveAlias(flagFetchTopic)
			if err != nil {
				return err
			}
			state.Items = filterTopic(state.Items, cat)
		}

		if flagFetchJSON {
			return writeFetchJSON(cmd.OutOrStdout(), state)
		}
		writeFetchTable(cmd.OutOrStdout(), state)
		if state.Banner.Kind == view.BannerError {
			return errors.New(state.Banner.Message)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchDate, "date", "", "date to fetch (YYYY/MM/DD), default today")
	fetchCmd.Flags().BoolVar(&flagFetchForce, "force", false, "bypass the cache")
	fetchCmd.Flags().BoolVar(&flagFetchJSON, "json", false, "print JSON instead of a table")
	fetchCmd.Flags().StringVar(&flagFetchTopic, "topic", "", "only items of this topic (defi, infra, stables, reg, security, nft, markets)")
}

func filterTopic(items []news.NewsItem, cat classify.Category) []news.NewsItem {
	var out []news.NewsItem
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Topic), string(cat)) {
			out = append(out, it)
		}
	}
	return out
}

type fetchOutput struct {
	Date   string          `json:"date"`
	Banner *bannerOutput   `json:"banner,omitempty"`
	Items  []news.NewsItem `json:"items"`
}

type bannerOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeFetchJSON(w io.Writer, s view.State) error {
	out := fetchOutput{Date: s.DateKey(), Items: s.Items}
	if out.Items == nil {
		out.Items = []news.NewsItem{}
	}
	if s.Banner.Kind != view.BannerNone {
		out.Banner = &bannerOutput{Kind: s.Banner.Kind.String(), Message: s.Banner.Message}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writeFetchTable(w io.Writer, s view.State) {
	if s.Banner.Kind != view.BannerNone {
		fmt.Fprintf(w, "%s: %s\n", s.DateKey(), s.Banner.Message)
		return
	}

	rows := make([][]string, 0, len(s.Items))
	for _, it := range s.Items {
		rows = append(rows, []string{
			it.RowID,
			it.SerialNo,
			truncate(it.Title, 48),
			it.Score,
			it.Topic,
			truncate(it.Comment, 24),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ROW", "NO.", "TITLE", "SCORE", "TOPIC", "COMMENT").
		Rows(rows...)

	fmt.Fprintf(w, "%s  [ %s items ]\n", s.CurrentDate, strconv.Itoa(s.Total()))
	fmt.Fprintln(w, t.String())
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
