package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"resizer/internal/processor"
)

// Model renders batch progress from a stream of item events.
type Model struct {
	events      <-chan processor.ItemEvent
	started     time.Time
	width       int
	total       int
	processed   int
	failed      int
	bytesOut    int64
	last        string
	quitting    bool
	interrupted bool
}

type doneMsg struct{}

type eventMsg processor.ItemEvent

// NewModel tracks a batch of total items. The model quits when events is
// closed.
func NewModel(events <-chan processor.ItemEvent, total int) Model {
	return Model{events: events, total: total, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.processed++
		if msg.Outcome == processor.OutcomeFailed {
			m.failed++
		} else {
			m.bytesOut += int64(msg.ByteSize)
		}
		m.last = msg.Name
		return m, listenForEvents(m.events)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

// Interrupted reports whether the user asked to stop the batch.
func (m Model) Interrupted() bool {
	return m.interrupted
}

// Processed is the number of items seen so far.
func (m Model) Processed() int {
	return m.processed
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.processed) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("resizer"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.processed, m.total)) + dimStyle.Render(fmt.Sprintf("  failed:%d", m.failed)),
		labelStyle.Render(fmt.Sprintf("Output: %s", FormatSize(m.bytesOut))),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}
	if m.last != "" {
		lines = append(lines, dimStyle.Render(m.last))
	}

	return strings.Join(lines, "\n")
}

func listenForEvents(events <-chan processor.ItemEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
