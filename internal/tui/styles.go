package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0B5394", Dark: "#4FACFE"}
	colorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FFFFFF"}
	colorBody    = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#E0E0E0"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#8A8A8A"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#7FA7D9", Dark: "#004080"}
	colorCardBg  = lipgloss.AdaptiveColor{Light: "#F2F7FC", Dark: "#003366"}
	colorBarBg   = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#001F3F"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#E69138", Dark: "#FF9800"}
	colorError   = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5C5C"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			PaddingLeft(1)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Background(colorCardBg).
			Padding(0, 1)

	cardDateStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	cardCountStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	cardLinkStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	cardBodyStyle = lipgloss.NewStyle().
			Foreground(colorBody)

	navEnabledStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	navDisabledStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Faint(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			PaddingLeft(1)

	busyStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true).
			PaddingLeft(1)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			PaddingLeft(1)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true).
			PaddingLeft(1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorBarBg).
			Foreground(colorBody).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
