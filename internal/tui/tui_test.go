package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arch0125/zulip-mobile/internal/models"
	"github.com/Arch0125/zulip-mobile/internal/unread"
)

type stubSource struct {
	state *unread.State
	names map[int64]string
}

func (s *stubSource) Snapshot() *unread.State { return s.state }

func (s *stubSource) StreamName(streamID int64) string { return s.names[streamID] }

type stubMarker struct {
	marked    [][]int64
	markedAll int
	err       error
}

func (s *stubMarker) MarkRead(_ context.Context, ids []int64) error {
	s.marked = append(s.marked, ids)
	return s.err
}

func (s *stubMarker) MarkAllRead(context.Context) error {
	s.markedAll++
	return s.err
}

func demoState() *unread.State {
	return unread.FromSnapshot(models.UnreadSnapshot{
		Streams: []models.UnreadStreamSnapshot{
			{StreamID: 7, Topic: "deploys", UnreadMessageIDs: []int64{100, 101}},
			{StreamID: 7, Topic: "alerts", UnreadMessageIDs: []int64{102}},
			{StreamID: 3, Topic: "lunch", UnreadMessageIDs: []int64{90}},
		},
		Pms: []models.UnreadPmSnapshot{
			{SenderID: 42, UnreadMessageIDs: []int64{110}},
		},
		Huddles: []models.UnreadHuddleSnapshot{
			{UserIDs: "10,42,77", UnreadMessageIDs: []int64{120, 121}},
		},
		Mentions: []int64{102},
	})
}

func demoSource() *stubSource {
	return &stubSource{
		state: demoState(),
		names: map[int64]string{7: "engineering", 3: "social"},
	}
}

func TestBuildRowsOrdering(t *testing.T) {
	rows := buildRows(demoState(), func(id int64) string {
		return map[int64]string{7: "engineering", 3: "social"}[id]
	})

	var labels []string
	for _, r := range rows {
		labels = append(labels, r.label)
	}
	assert.Equal(t, []string{
		"engineering", "alerts", "deploys",
		"social", "lunch",
		"Direct messages", "user 42",
		"Group messages", "users 10, 42, 77",
	}, labels)

	// The alerts topic carries the mention.
	assert.True(t, rows[1].mention)
	assert.False(t, rows[2].mention)
}

func TestBuildRowsUnknownStreamAndEmptyState(t *testing.T) {
	state := unread.FromSnapshot(models.UnreadSnapshot{
		Streams: []models.UnreadStreamSnapshot{
			{StreamID: 99, Topic: "x", UnreadMessageIDs: []int64{1}},
		},
	})
	rows := buildRows(state, func(int64) string { return "" })
	require.NotEmpty(t, rows)
	assert.Equal(t, "stream 99", rows[0].label)

	rows = buildRows(unread.NewState(), func(int64) string { return "" })
	require.Len(t, rows, 1)
	assert.Equal(t, rowEmpty, rows[0].kind)
}

func TestCursorSkipsSectionHeaders(t *testing.T) {
	m := NewModel(demoSource(), nil, Config{})

	require.True(t, m.rows[m.cursor].selectable())
	assert.Equal(t, "alerts", m.rows[m.cursor].label)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(Model)
	assert.Equal(t, "deploys", m.rows[m.cursor].label)

	// Moving down over the "social" header lands on its topic.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(Model)
	assert.Equal(t, "lunch", m.rows[m.cursor].label)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = next.(Model)
	assert.Equal(t, "deploys", m.rows[m.cursor].label)
}

func TestViewRendersCountsAndMentions(t *testing.T) {
	m := NewModel(demoSource(), nil, Config{})
	view := m.View()

	assert.Contains(t, view, "Unreads  7 total")
	assert.Contains(t, view, "engineering (3)")
	assert.Contains(t, view, "deploys")
	assert.Contains(t, view, "Direct messages (1)")
	assert.Contains(t, view, "users 10, 42, 77")
	assert.Contains(t, view, "@1")
}

func TestTickOnlyRebuildsOnNewState(t *testing.T) {
	source := demoSource()
	m := NewModel(source, nil, Config{})
	before := m.rows

	next, _ := m.Update(tickMsg{})
	m = next.(Model)
	assert.Equal(t, &before[0], &m.rows[0], "unchanged state should keep rows")

	// A fresh state pointer forces a rebuild.
	source.state = unread.NewState()
	next, _ = m.Update(tickMsg{})
	m = next.(Model)
	require.Len(t, m.rows, 1)
	assert.Equal(t, rowEmpty, m.rows[0].kind)
}

func TestMarkSelectedSendsMessageIDs(t *testing.T) {
	marker := &stubMarker{}
	m := NewModel(demoSource(), marker, Config{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, markDoneMsg{}, msg)
	assert.NoError(t, msg.(markDoneMsg).err)
	require.Len(t, marker.marked, 1)
	assert.Equal(t, []int64{102}, marker.marked[0])
}

func TestMarkAllRead(t *testing.T) {
	marker := &stubMarker{}
	m := NewModel(demoSource(), marker, Config{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("A")})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, marker.markedAll)
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(demoSource(), nil, Config{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsMarkError(t *testing.T) {
	m := NewModel(demoSource(), nil, Config{})
	next, _ := m.Update(markDoneMsg{err: assert.AnError})
	m = next.(Model)
	assert.True(t, strings.Contains(m.View(), "error:"))
}
