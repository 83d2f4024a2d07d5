package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/yueh722/Web3-news-app/internal/logging"
	"github.com/yueh722/Web3-news-app/internal/tui"
	"github.com/yueh722/Web3-news-app/internal/view"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := parseDateFlag(flagDate)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rec, reg := newRecorder(cfg)
	if reg != nil {
		serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	svc, closeStore, err := newService(ctx, cfg, logger, rec)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("starting dashboard",
		slog.String("version", version),
		slog.String("cache", cfg.Cache.Backend),
		slog.Bool("auto_fetch", cfg.AutoFetch && !flagNoAutoFetch),
	)

	return tui.Run(tui.RunOpts{
		Service:   svc,
		AutoFetch: cfg.AutoFetch && !flagNoAutoFetch,
		Date:      selected,
		Logger:    logger,
	})
}

// parseDateFlag parses a --date value in the local zone. Empty means today.
func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := view.ParseDate(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return d, nil
}
