package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yueh722/Web3-news-app/internal/view"
)

// renderCard draws the current item of s. The caller only calls it in
// ModeBrowsing.
func renderCard(s view.State, width int) string {
	item, ok := s.Current()
	if !ok {
		return ""
	}

	cardWidth := width - 6
	if cardWidth < 30 {
		cardWidth = 30
	}
	inner := cardWidth - 2

	var body []string

	body = append(body,
		cardDateStyle.Render(s.CurrentDate)+
			cardCountStyle.Render(fmt.Sprintf("   [ %d items ]", s.Total())))
	body = append(body, cardDateStyle.Render(fmt.Sprintf("No. %d", s.Index+1)))
	body = append(body, "")

	body = append(body, cardTitleStyle.Render(wrapText(item.Title, inner)))
	if item.URL != "" {
		body = append(body, cardLinkStyle.Render(truncateStr(item.URL, inner)))
	}
	body = append(body, cardCountStyle.Render(strings.Repeat("─", inner)))

	body = append(body, cardLabelStyle.Render("AI rationale:"))
	rationale := item.Rationale
	if rationale == "" {
		rationale = "-"
	}
	body = append(body, cardBodyStyle.Render(wrapText(rationale, inner)))
	body = append(body, "")

	body = append(body,
		cardLabelStyle.Render("Score: ")+cardBodyStyle.Render(orDash(item.Score))+
			cardCountStyle.Render("  |  ")+
			cardLabelStyle.Render("Topic: ")+cardBodyStyle.Render(orDash(item.Topic)))
	body = append(body, "")

	body = append(body, cardLabelStyle.Render("Comment:"))
	if item.Comment == "" {
		body = append(body, cardCountStyle.Render("(none, press c to write one)"))
	} else {
		body = append(body, cardBodyStyle.Render(wrapText(item.Comment, inner)))
	}

	box := cardStyle.Width(cardWidth).Render(strings.Join(body, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, box, renderNav(s, cardWidth))
}

func renderNav(s view.State, width int) string {
	prev := navDisabledStyle.Render("◀ prev")
	if s.HasPrev() {
		prev = navEnabledStyle.Render("◀ prev")
	}
	next := navDisabledStyle.Render("next ▶")
	if s.HasNext() {
		next = navEnabledStyle.Render("next ▶")
	}
	pos := cardCountStyle.Render(s.Position())

	gap := width - lipgloss.Width(prev) - lipgloss.Width(next) - lipgloss.Width(pos)
	if gap < 2 {
		gap = 2
	}
	left := gap / 2
	return " " + prev + strings.Repeat(" ", left) + pos + strings.Repeat(" ", gap-left) + next
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
