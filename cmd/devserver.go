package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yueh722/Web3-news-app/internal/devserver"
	"github.com/yueh722/Web3-news-app/internal/feed"
	"github.com/yueh722/Web3-news-app/internal/logging"
	"github.com/yueh722/Web3-news-app/internal/metrics"
	"github.com/yueh722/Web3-news-app/internal/news"
)

var (
	flagDevAddr     string
	flagDevWorkbook string
	flagSeedFeeds   []string
	flagSeedDate    string
	flagSeedLimit   int
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Serve a local stand-in for the news webhook",
	Long: `Serve the news and comment webhooks from a local .xlsx workbook, one sheet
per day (sheet name YYYY-MM-DD). Point webhook.read_url at
http://<addr>/webhook/news and webhook.write_url at
http://<addr>/webhook/comment.

--seed-feed imports RSS/Atom entries as a new day before serving.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		addr := cfg.DevServer.Addr
		if flagDevAddr != "" {
			addr = flagDevAddr
		}
		path := cfg.WorkbookPath()
		if flagDevWorkbook != "" {
			path = flagDevWorkbook
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating workbook dir: %w", err)
		}

		wb, err := devserver.OpenWorkbook(path)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if len(flagSeedFeeds) > 0 {
			dateKey := flagSeedDate
			if dateKey == "" {
				dateKey = time.Now().Format(news.DateLayout)
			}
			n, err := devserver.Seed(ctx, wb, feed.NewFetcher(), devserver.SeedOptions{
				Feeds:   flagSeedFeeds,
				DateKey: dateKey,
				Limit:   flagSeedLimit,
			})
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d item(s) into %s.\n", n, dateKey)
		}

		reg := prometheus.NewRegistry()
		srv := devserver.New(wb,
			devserver.WithLogger(logger),
			devserver.WithMetrics(metrics.NewPrometheus(reg), reg),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s%s\n", path, addr, devserver.NewsPath)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	devserverCmd.Flags().StringVar(&flagDevAddr, "addr", "", "listen address (default from config)")
	devserverCmd.Flags().StringVar(&flagDevWorkbook, "workbook", "", "path to the .xlsx workbook")
	devserverCmd.Flags().StringSliceVar(&flagSeedFeeds, "seed-feed", nil, "RSS/Atom feed URL to import before serving (repeatable)")
	devserverCmd.Flags().StringVar(&flagSeedDate, "seed-date", "", "day to seed (YYYY/MM/DD), default today")
	devserverCmd.Flags().IntVar(&flagSeedLimit, "seed-limit", devserver.DefaultSeedLimit, "maximum items to seed")
}
