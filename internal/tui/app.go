package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yueh722/Web3-news-app/internal/browser"
	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/view"
)

type mode int

const (
	modeBrowse mode = iota
	modeDateInput
	modeComment
	modeHelp
)

// Service is what the dashboard needs from the news client.
type Service interface {
	view.Fetcher
	view.Commenter
}

type App struct {
	svc   Service
	state view.State
	mode  mode

	width  int
	height int

	// Sub-components
	spinner   spinner.Model
	dateInput textinput.Model
	comment   textarea.Model

	autoFetch  bool
	cancel     context.CancelFunc
	pendingKey string
	saving     bool
	// The row and the partition it belongs to, fixed when the editor opens.
	commentRow  string
	commentDate string
	loadedAt   time.Time

	// Shown until the next keypress.
	flash    []view.Notice
	inputErr string
	err      error

	now     func() time.Time
	openURL func(string) error
	log     *slog.Logger
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Service   Service
	AutoFetch bool
	// Date is the initially selected day; zero means today.
	Date    time.Time
	Logger  *slog.Logger
	Now     func() time.Time
	OpenURL func(string) error
}

func NewApp(opts RunOpts) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}

	ti := textinput.New()
	ti.Placeholder = "YYYY/MM/DD"
	ti.Prompt = inputPromptStyle.Render("date: ")
	ti.CharLimit = 10

	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	state := view.New(now())
	if !opts.Date.IsZero() {
		state = state.DateChanged(opts.Date)
	}

	return &App{
		svc:       opts.Service,
		state:     state,
		spinner:   sp,
		dateInput: ti,
		comment:   ta,
		autoFetch: opts.AutoFetch,
		now:       now,
		openURL:   openURL,
		log:       logger,
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

// State exposes the view state, for tests and the fetch command.
func (a *App) State() view.State {
	return a.state
}

// fetchCmd starts a fetch for the selected date. Any fetch already in
// flight is cancelled; its reply would be stale anyway.
func (a *App) fetchCmd(force bool) tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	s, req := a.state.BeginRefresh(force)
	a.state = s
	a.pendingKey = req.Key

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	svc := a.svc
	a.log.Debug("fetch started", slog.String("date", req.Key), slog.Bool("force", force))

	fetch := func() tea.Msg {
		defer cancel()
		return fetchDoneMsg{req: req, res: view.Load(ctx, svc, req)}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

// visible runs the one-shot auto-fetch the first time the dashboard is
// actually on screen.
func (a *App) visible() tea.Cmd {
	if !a.autoFetch {
		return nil
	}
	s, fire := a.state.MarkVisible()
	a.state = s
	if !fire {
		return nil
	}
	return a.fetchCmd(false)
}

func (a *App) changeDate(d time.Time) {
	a.setState(a.state.DateChanged(d))
}

func (a *App) shiftDate(days int) {
	a.setState(a.state.ShiftDate(days))
}

// setState applies a date transition, cancelling the fetch it orphaned.
func (a *App) setState(next view.State) {
	wasBusy := a.state.Busy
	a.state = next
	if wasBusy && !a.state.Busy && a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// commentCmd posts the comment and, on success, drops the cached copy of
// that day so other readers of a shared store see the new comment.
func (a *App) commentCmd(dateKey, rowID, text string) tea.Cmd {
	svc := a.svc
	a.saving = true
	post := func() tea.Msg {
		ctx := context.Background()
		res := svc.PostComment(ctx, dateKey, rowID, text)
		if res.OK {
			svc.Invalidate(ctx, dateKey)
		}
		return commentDoneMsg{dateKey: dateKey, rowID: rowID, text: text, res: res}
	}
	return tea.Batch(post, a.spinner.Tick)
}

func openBrowserCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return browserErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := a.width == 0
		a.width = msg.Width
		a.height = msg.Height
		a.comment.SetWidth(max(20, msg.Width-8))
		if first {
			return a, a.visible()
		}
		return a, nil

	case tea.FocusMsg:
		return a, a.visible()

	case tea.KeyMsg:
		// One-shot messages last until the next keypress.
		a.flash = nil
		a.err = nil
		return a.handleKey(msg)

	case fetchDoneMsg:
		if a.state.Stale(msg.req) {
			a.log.Debug("dropping stale fetch", slog.String("date", msg.req.Key))
			return a, nil
		}
		a.cancel = nil
		a.state = a.state.ApplyFetch(msg.req, msg.res, a.now())
		if msg.res.Kind == news.FetchData {
			a.loadedAt = a.now()
		}
		return a, nil

	case commentDoneMsg:
		a.saving = false
		a.state = a.state.ApplyCommentFor(msg.dateKey, msg.rowID, msg.text, msg.res)
		var notices []view.Notice
		a.state, notices = a.state.DrainNotices()
		a.flash = append(a.flash, notices...)
		return a, nil

	case browserErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.state.Busy || a.saving {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.mode == modeComment {
		var cmd tea.Cmd
		a.comment, cmd = a.comment.Update(msg)
		return a, cmd
	}
	if a.mode == modeDateInput {
		var cmd tea.Cmd
		a.dateInput, cmd = a.dateInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	return a, tea.Quit
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	switch a.mode {
	case modeDateInput:
		return a.handleDateKey(msg)
	case modeComment:
		return a.handleCommentKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeBrowse
		}
		return a, nil
	}

	a.inputErr = ""
	switch msg.String() {
	case "q":
		return a.quit()
	case "n", "j", "l", "right":
		a.state = a.state.GoNext()
		return a, nil
	case "p", "k", "h", "left":
		a.state = a.state.GoPrev()
		return a, nil
	case "[":
		a.shiftDate(-1)
		return a, nil
	case "]":
		a.shiftDate(1)
		return a, nil
	case "t":
		a.changeDate(a.now())
		return a, nil
	case "d":
		a.mode = modeDateInput
		a.dateInput.SetValue(a.state.DateKey())
		a.dateInput.CursorEnd()
		a.dateInput.Focus()
		return a, textinput.Blink
	case "r":
		if a.state.Busy {
			return a, nil
		}
		return a, a.fetchCmd(true)
	case "c":
		// Items may be replaced by a fetch in flight; the editor waits.
		item, ok := a.state.Current()
		if !ok || a.saving || a.state.Busy {
			return a, nil
		}
		a.mode = modeComment
		a.commentRow = item.RowID
		a.commentDate = a.state.CommentDateKey()
		a.comment.SetValue(item.Comment)
		a.comment.Focus()
		return a, textarea.Blink
	case "o", "enter":
		if item, ok := a.state.Current(); ok && item.URL != "" {
			return a, openBrowserCmd(a.openURL, item.URL)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

func (a *App) handleDateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.inputErr = ""
		a.dateInput.Blur()
		return a, nil
	case "enter":
		d, err := view.ParseDate(a.dateInput.Value(), a.now().Location())
		if err != nil {
			a.inputErr = err.Error()
			return a, nil
		}
		a.inputErr = ""
		a.mode = modeBrowse
		a.dateInput.Blur()
		a.changeDate(d)
		return a, nil
	}

	var cmd tea.Cmd
	a.dateInput, cmd = a.dateInput.Update(msg)
	return a, cmd
}

func (a *App) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.comment.Blur()
		return a, nil
	case "ctrl+s":
		text := a.comment.Value()
		a.mode = modeBrowse
		a.comment.Blur()
		return a, a.commentCmd(a.commentDate, a.commentRow, text)
	}

	var cmd tea.Cmd
	a.comment, cmd = a.comment.Update(msg)
	return a, cmd
}

func (a *App) withBottomBar(content string, hints string) string {
	left := ""
	if !a.loadedAt.IsZero() {
		left = " loaded " + relativeTime(a.loadedAt, a.now())
	}
	bar := renderBottomBar(left, hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  web3news")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	headerLeft := headerStyle.Render("Web3 News")
	headerRight := headerDateStyle.Render(a.state.Selected.Format("2006/01/02 Mon")) + " "
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	sections := []string{header, ""}
	if a.mode == modeDateInput {
		sections = append(sections, " "+a.dateInput.View())
	}
	sections = append(sections, renderStatus(a)...)
	sections = append(sections, "")

	if a.state.Mode() == view.ModeBrowsing {
		sections = append(sections, renderCard(a.state, a.width))
	}
	if a.mode == modeComment {
		sections = append(sections, "", cardLabelStyle.Render(" Edit comment"), a.comment.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	hints := "[ ] day  t today  d date  r refresh  ←/→ item  c comment  o open  ? help  q quit"
	switch a.mode {
	case modeDateInput:
		hints = "enter select  esc cancel"
	case modeComment:
		hints = "ctrl+s send  esc cancel"
	}
	return a.withBottomBar(content, hints)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("web3news")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Date") + "\n" +
		"  [ / ]         Previous / next day\n" +
		"  t             Today\n" +
		"  d             Type a date (YYYY/MM/DD)\n" +
		"  r             Refresh from the webhook\n\n" +
		dim.Render("Items") + "\n" +
		"  ←/→, p/n      Previous / next item\n" +
		"  o, enter      Open article in browser\n" +
		"  c             Edit comment (ctrl+s send, esc cancel)\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application. Focus reporting lets a terminal that
// regains focus count as the dashboard becoming visible.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}
