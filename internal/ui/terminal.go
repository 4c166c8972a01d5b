// Package ui renders the assistant's terminal surface: the welcome panel,
// session state indicators, transcripts, responses and error notices.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const panelWidth = 72

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(panelWidth)

	responsePanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("35"))

	errorPanelStyle = panelStyle.
			BorderForeground(lipgloss.Color("160"))

	stateStyle = lipgloss.NewStyle().
			Faint(true)

	transcriptStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("245"))

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// Terminal writes styled panels to a single output stream. It is not safe
// for concurrent use; the orchestrator invokes callbacks sequentially.
type Terminal struct {
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Welcome(capabilities string) {
	body := titleStyle.Render("Course Assistant") + "\n\n" + wrap(capabilities)
	fmt.Fprintln(t.out, panelStyle.Render(body))
}

// State prints a one-line indicator for the current session state.
func (t *Terminal) State(state string) {
	var line string
	switch state {
	case "recording":
		line = "● Recording... release the trigger when done"
	case "processing":
		line = "◌ Transcribing..."
	case "thinking":
		line = "◌ Thinking..."
	case "speaking":
		line = "♪ Speaking..."
	case "idle":
		line = "Ready."
	default:
		line = state
	}
	fmt.Fprintln(t.out, stateStyle.Render(line))
}

// Level renders a coarse input meter while recording.
func (t *Terminal) Level(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	bars := int(level * 20)
	fmt.Fprintf(t.out, "\r%s", meterStyle.Render("["+strings.Repeat("|", bars)+strings.Repeat(" ", 20-bars)+"]"))
}

func (t *Terminal) Transcript(transcript string) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, transcriptStyle.Render(wrap("You said: "+transcript)))
}

func (t *Terminal) Response(text string) {
	fmt.Fprintln(t.out, responsePanelStyle.Render(wrap(text)))
}

func (t *Terminal) Notice(notice string) {
	fmt.Fprintln(t.out, errorPanelStyle.Render(wrap(notice)))
}

func (t *Terminal) Metrics(summary string) {
	fmt.Fprintln(t.out, stateStyle.Render(wrap(summary)))
}

func wrap(text string) string {
	return wordwrap.String(text, panelWidth-4)
}
