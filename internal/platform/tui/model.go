package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inputecho/internal/core"
	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/router"
)

const title = "inputecho: click and drag to move the box, type anything"

// Options configures the tester model.
type Options struct {
	Router *router.Router
	Device input.DeviceID
	Logger *log.Logger

	RectWidth    int
	RectHeight   int
	LogLines     int           // Records kept in the log pane
	ReleaseDelay time.Duration // Silence after which a held key counts as released
	StartX       int           // Initial cursor, used when Router is nil
	StartY       int

	// Initial terminal size, replaced by the first WindowSizeMsg.
	Width  int
	Height int
}

// Model is the Bubble Tea model of the interactive tester. Every input
// message is translated to device events and routed; the view shows the
// resulting state and the most recent records.
type Model struct {
	opts       Options
	router     *router.Router
	translator *Translator
	held       *HeldKeys
	keys       KeyMap
	help       help.Model
	logView    viewport.Model
	canvas     *core.Canvas
	lines      []string
	width      int
	height     int
	focused    bool
	err        error
	quitting   bool
}

// NewModel creates the tester model. Zero option values take defaults.
func NewModel(opts Options) Model {
	if opts.RectWidth <= 0 {
		opts.RectWidth = 16
	}
	if opts.RectHeight <= 0 {
		opts.RectHeight = 5
	}
	if opts.LogLines <= 0 {
		opts.LogLines = 200
	}
	if opts.ReleaseDelay <= 0 {
		opts.ReleaseDelay = 600 * time.Millisecond
	}
	if opts.Device == "" {
		opts.Device = "tty"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Router == nil {
		opts.Router = router.New(input.NewStore(startState(opts)), nil, router.WithLogger(opts.Logger))
	}

	m := Model{
		opts:       opts,
		router:     opts.Router,
		translator: NewTranslator(opts.Device),
		held:       NewHeldKeys(),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		logView:    viewport.New(0, 0),
		canvas:     core.NewCanvas(0, 0),
		focused:    true,
	}
	m.resize(opts.Width, opts.Height)
	return m
}

// Init sets the window title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("inputecho")
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case releaseMsg:
		if k, ok := m.held.Release(msg.code, msg.gen); ok {
			return m.route(input.KeyUp{Meta: m.translator.meta(), Key: k})
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.routeAll(m.translator.Translate(msg))

	case tea.FocusMsg:
		m.focused = true
		return m.routeAll(m.translator.Translate(msg))

	case tea.BlurMsg:
		m.focused = false
		events := m.translator.Translate(msg)
		// Keys held while focus leaves will never see another press
		for _, k := range m.held.ReleaseAll() {
			events = append(events, input.KeyUp{Meta: m.translator.meta(), Key: k})
		}
		return m.routeAll(events)
	}

	return m, nil
}

// handleKey routes a key message, then applies the tester's own bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	events := m.translator.Translate(msg)
	for i, ev := range events {
		down, ok := ev.(input.KeyDown)
		if !ok {
			continue
		}
		repeat, gen := m.held.Press(down.Key)
		down.Repeat = repeat
		events[i] = down
		cmds = append(cmds, releaseCmd(m.opts.ReleaseDelay, down.Key.Code, gen))
	}

	next, cmd := m.routeAll(events)
	m = next.(Model)
	cmds = append(cmds, cmd)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.ClearLog):
		m.lines = nil
		m.refreshLog()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) routeAll(events []input.Event) (tea.Model, tea.Cmd) {
	for _, ev := range events {
		next, cmd := m.route(ev)
		m = next.(Model)
		if cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

// route dispatches one event. Only a recorder failure stops the tester.
func (m Model) route(ev input.Event) (tea.Model, tea.Cmd) {
	rec, err := m.router.Route(ev)
	if err != nil {
		m.opts.Logger.Error("routing failed", "err", err)
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}

	m.lines = append(m.lines, rec.String())
	if extra := len(m.lines) - m.opts.LogLines; extra > 0 {
		m.lines = m.lines[extra:]
	}
	m.refreshLog()
	return m, nil
}

func (m *Model) refreshLog() {
	m.logView.SetContent(logStyle.Render(strings.Join(m.lines, "\n")))
	m.logView.GotoBottom()
}

// resize lays out the canvas above a status line, the log pane and the
// help footer.
func (m *Model) resize(width, height int) {
	m.width, m.height = core.Max(width, 0), core.Max(height, 0)

	logHeight := core.Clamp(m.height/3, 3, 12)
	canvasHeight := core.Max(m.height-logHeight-2, 1)

	m.canvas.Resize(m.width, canvasHeight)
	m.logView.Width = m.width
	m.logView.Height = logHeight
	m.help.Width = m.width
	m.refreshLog()
}

// Err returns the error that stopped the tester, if any.
func (m Model) Err() error {
	return m.err
}

// Status renders the status line text.
func (m Model) Status() string {
	st := m.router.State()
	button := "up"
	if st.MouseDown {
		button = "down"
	}
	focus := "yes"
	if !m.focused {
		focus = "no"
	}
	return fmt.Sprintf(" cursor %v,%v  button %s  focus %s  held %s  mods %s  events %d",
		st.CursorX, st.CursorY, button, focus, m.held, m.held.Mods(), m.router.Count())
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.router.State()
	m.canvas.Clear()
	titleColor := core.ColorCyan
	if !m.focused {
		m.canvas.DrawBox(m.canvas.Bounds(), core.ColorRed)
		titleColor = core.ColorGray
	}
	m.canvas.DrawText(1, 0, title, titleColor)

	rectColor := core.ColorWhite
	if st.MouseDown {
		rectColor = core.ColorYellow
	}
	rect := core.NewRect(int(st.CursorX), int(st.CursorY), m.opts.RectWidth, m.opts.RectHeight)
	m.canvas.DrawRect(rect, '█', rectColor)

	status := statusStyle.Width(m.width).Render(truncate(m.Status(), m.width))

	return strings.Join([]string{
		RenderCanvas(m.canvas),
		status,
		m.logView.View(),
		m.help.View(m.keys),
	}, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width])
}

// ProgramOptions returns the Bubble Tea options the tester needs: the
// alternate screen, all mouse motion and focus reports.
func ProgramOptions(extra ...tea.ProgramOption) []tea.ProgramOption {
	return append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}, extra...)
}

// Run starts the tester on the current terminal and blocks until it quits
// or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(model, ProgramOptions(tea.WithContext(ctx))...)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
