package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/player"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 30

// frameMsg is one frame of the preview loop.
type frameMsg time.Time

// Model is the bubbletea model of the preview.
type Model struct {
	player   *player.Player
	emitters *emitter.Registry
	names    []string

	cursor   int
	interval time.Duration
	last     time.Time
	err      error
	width    int
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithFPS sets the frame rate. Non-positive values keep DefaultFPS.
func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithCursor preselects a playable name. Unknown names are ignored.
func WithCursor(name string) Option {
	return func(m *Model) {
		for i, n := range m.names {
			if n == name {
				m.cursor = i
				return
			}
		}
	}
}

// New creates a preview of p. emitters is rendered in registration order.
func New(p *player.Player, emitters *emitter.Registry, opts ...Option) Model {
	m := Model{
		player:   p,
		emitters: emitters,
		names:    p.Table().Names(),
		interval: time.Second / DefaultFPS,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles frames, keys and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.advance(time.Time(msg))
		return m, m.frame()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

// advance feeds one frame to whichever time source the mode selects.
func (m *Model) advance(now time.Time) {
	var dt time.Duration
	if !m.last.IsZero() {
		dt = now.Sub(m.last)
	}
	m.last = now

	if m.player.Mode() == player.ModeEditing {
		m.player.PreviewTick()
		return
	}
	m.player.Tick(dt)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.player.Close()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) > 0 {
			m.err = m.player.Play(m.names[m.cursor])
		}
	case "a":
		m.err = m.player.Activate()
	case "s":
		m.err = nil
		m.player.Stop()
	case "e":
		if m.player.Mode() == player.ModeEditing {
			m.player.SetMode(player.ModeRunning)
		} else {
			m.player.SetMode(player.ModeEditing)
		}
	}
	return m, nil
}

// Selected returns the name under the cursor, or "" for an empty table.
func (m Model) Selected() string {
	if len(m.names) == 0 {
		return ""
	}
	return m.names[m.cursor]
}

// Err returns the error of the last play or activate.
func (m Model) Err() error { return m.err }

// View renders the preview.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.player.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("phaseplay preview"))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus(st))
	b.WriteString("\n\n")

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.renderNames(st)),
		" ",
		panelStyle.Render(m.renderEmitters()),
	)
	b.WriteString(panels)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select · enter play · a activate · s stop · e edit mode · q quit"))
	return b.String()
}

func (m Model) renderStatus(st player.State) string {
	phase := st.Phase
	if phase == "" {
		phase = "-"
	}
	state := "stopped"
	if st.Running {
		state = "running"
	}
	field := func(label, value string) string {
		return labelStyle.Render(label) + " " + valueStyle.Render(value)
	}
	return strings.Join([]string{
		field("phase", phase),
		field("elapsed", fmt.Sprintf("%.2fs", st.Elapsed.Seconds())),
		field("state", state),
		field("mode", st.Mode.String()),
	}, "   ")
}

func (m Model) renderNames(st player.State) string {
	lines := []string{labelStyle.Render("phases")}
	for i, name := range m.names {
		prefix := "  "
		style := valueStyle
		if name == st.Phase {
			style = currentStyle
		}
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		lines = append(lines, prefix+style.Render(name))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEmitters() string {
	lines := []string{labelStyle.Render("emitters")}
	for _, id := range m.emitters.IDs() {
		status := "bound"
		style := valueStyle
		local := ""
		if rec := m.emitters.Recorder(id); rec != nil {
			status = rec.Status().String()
			local = fmt.Sprintf(" %.2fs", rec.Local().Seconds())
			switch rec.Status() {
			case emitter.StatusPlaying:
				style = playingStyle
			case emitter.StatusStopping:
				style = stoppingStyle
			default:
				style = idleStyle
			}
		}
		marker := "  "
		if m.player.IsActive(id) {
			marker = currentStyle.Render("● ")
		}
		lines = append(lines, fmt.Sprintf("%s%-12s %s%s", marker, id, style.Render(status), dimStyle.Render(local)))
	}
	return strings.Join(lines, "\n")
}
