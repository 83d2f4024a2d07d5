package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yueh722/Web3-news-app/internal/logging"
	"github.com/yueh722/Web3-news-app/internal/metrics"
	"github.com/yueh722/Web3-news-app/internal/view"
)

var flagCommentDate string

var commentCmd = &cobra.Command{
	Use:   "comment <row> <text>...",
	Short: "Write a comment back to one news row",
	Long: `Post a comment for the row identified by <row> in the given day's sheet
(default today). Remaining arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		selected, err := parseDateFlag(flagCommentDate)
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		svc, closeStore, err := newService(cmd.Context(), cfg, logger, metrics.Noop{})
		if err != nil {
			return err
		}
		defer closeStore()

		state := view.New(time.Now())
		if !selected.IsZero() {
			state = state.DateChanged(selected)
		}

		row := args[0]
		text := strings.Join(args[1:], " ")
		res := svc.PostComment(cmd.Context(), state.DateKey(), row, text)
		if !res.OK {
			return errors.New(res.Message)
		}
		// The cached copy of the day no longer matches the sheet.
		svc.Invalidate(cmd.Context(), state.DateKey())

		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	commentCmd.Flags().StringVar(&flagCommentDate, "date", "", "date of the row's sheet (YYYY/MM/DD), default today")
}
