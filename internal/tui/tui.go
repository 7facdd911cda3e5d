// Package tui renders a live unreads dashboard on top of a running
// session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arch0125/zulip-mobile/internal/unread"
)

const defaultRefreshInterval = 500 * time.Millisecond

// Source provides the current unread aggregate. *session.Session
// implements it.
type Source interface {
	Snapshot() *unread.State
	StreamName(streamID int64) string
}

// Marker issues read-state changes back to the server. *api.Client
// implements it.
type Marker interface {
	MarkRead(ctx context.Context, messageIDs []int64) error
	MarkAllRead(ctx context.Context) error
}

// Config tunes the dashboard.
type Config struct {
	RefreshInterval time.Duration
}

type tickMsg time.Time

type markDoneMsg struct {
	err error
}

// Model is the bubbletea model of the unreads dashboard.
type Model struct {
	source  Source
	marker  Marker
	refresh time.Duration
	styles  styleSet

	width  int
	height int

	seen   *unread.State
	rows   []row
	cursor int
	status string
	errMsg string
}

// NewModel creates the dashboard model. marker may be nil for a
// read-only view.
func NewModel(source Source, marker Marker, cfg Config) Model {
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}

	m := Model{
		source:  source,
		marker:  marker,
		refresh: refresh,
		styles:  defaultStyles(),
		cursor:  -1,
	}
	m.refreshRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshRows rebuilds the list only when the aggregate pointer moved;
// an unchanged pointer means nothing happened since the last tick.
func (m *Model) refreshRows() {
	state := m.source.Snapshot()
	if state == m.seen && m.rows != nil {
		return
	}
	m.seen = state
	m.rows = buildRows(state, m.source.StreamName)
	m.cursor = nearestSelectable(m.rows, m.cursor)
	if m.cursor < 0 {
		m.cursor = firstSelectable(m.rows)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refreshRows()
		return m, m.tick()

	case markDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.status = "marked read"
			m.errMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g":
		m.cursor = firstSelectable(m.rows)
	case "G":
		m.cursor = nearestSelectable(m.rows, len(m.rows)-1)

	case "r":
		m.seen = nil
		m.refreshRows()

	case "m", "enter":
		return m, m.markSelected()
	case "A":
		return m, m.markAll()
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.cursor < 0 {
		m.cursor = firstSelectable(m.rows)
		return
	}
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
}

// markSelected asks the server to mark the selected conversation read.
// The unread list itself only changes when the resulting flag event
// comes back on the stream.
func (m Model) markSelected() tea.Cmd {
	if m.marker == nil || m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	ids := m.rows[m.cursor].ids
	if len(ids) == 0 {
		return nil
	}

	marker := m.marker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return markDoneMsg{err: marker.MarkRead(ctx, ids)}
	}
}

func (m Model) markAll() tea.Cmd {
	if m.marker == nil {
		return nil
	}
	marker := m.marker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return markDoneMsg{err: marker.MarkAllRead(ctx)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	state := m.seen
	if state == nil {
		state = m.source.Snapshot()
	}

	header := fmt.Sprintf("Unreads  %d total", state.Total())
	if n := state.MentionsCount(); n > 0 {
		header += m.styles.mention.Render(fmt.Sprintf("  @%d", n))
	}
	b.WriteString(m.styles.header.Render(header))
	b.WriteString("\n\n")

	for i, r := range m.rows {
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(m.styles.errText.Render("error: " + m.errMsg))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.styles.muted.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.footer.Render("j/k move · m mark read · A mark all read · r refresh · q quit"))
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	switch r.kind {
	case rowSectionHeader:
		return m.styles.section.Render(fmt.Sprintf("%s (%d)", r.label, r.count))
	case rowEmpty:
		return m.styles.muted.Render(r.label)
	}

	label := r.label
	if r.mention {
		label = m.styles.mention.Render("@") + " " + label
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		"  ",
		m.styles.rowLabel.Render(label),
		"  ",
		m.styles.count.Render(fmt.Sprintf("%d", r.count)),
	)
	if selected {
		return m.styles.selected.Render("> ") + line
	}
	return "  " + line
}

// Run starts the dashboard in the alternate screen and blocks until the
// user quits.
func Run(source Source, marker Marker, cfg Config) error {
	program := tea.NewProgram(NewModel(source, marker, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
