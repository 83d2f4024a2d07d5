package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/yueh722/Web3-news-app/internal/view"
)

const promptText = "press r to load news for the selected date"

// renderStatus is the area between the controls and the card: progress,
// one-shot notices, then the state's banner or the load prompt.
func renderStatus(a *App) []string {
	var lines []string

	switch {
	case a.state.Busy:
		lines = append(lines, busyStyle.Render(
			fmt.Sprintf("%s updating %s...", a.spinner.View(), a.pendingKey)))
	case a.saving:
		lines = append(lines, busyStyle.Render(a.spinner.View()+" saving comment..."))
	}

	for _, n := range a.flash {
		if n.Kind == view.NoticeSuccess {
			lines = append(lines, successStyle.Render("✓ "+n.Message))
		} else {
			lines = append(lines, errorStyle.Render("✗ "+n.Message))
		}
	}
	if a.inputErr != "" {
		lines = append(lines, errorStyle.Render(a.inputErr))
	}
	if a.err != nil {
		lines = append(lines, errorStyle.Render(a.err.Error()))
	}

	switch a.state.Mode() {
	case view.ModeEmpty:
		if !a.state.Busy {
			lines = append(lines, promptStyle.Render(promptText))
		}
	case view.ModeBanner:
		lines = append(lines, renderBanner(a.state.Banner))
	}
	return lines
}

func renderBanner(b view.Banner) string {
	switch b.Kind {
	case view.BannerError:
		return errorStyle.Render("✗ " + b.Message)
	case view.BannerWarning:
		return warningStyle.Render("! " + b.Message)
	case view.BannerInfo:
		return promptStyle.Render(b.Message)
	default:
		return ""
	}
}

func renderBottomBar(left, hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
