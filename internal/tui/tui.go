// Package tui is the terminal viewer. It shows where the viewer is
// pointed and how the last poll went, and can hand the target to the
// system browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/unklstewy/flightwatch/pkg/watcher"
)

// historyLength is how many past navigations the view keeps.
const historyLength = 8

// NavigateMsg tells the model the viewer moved to URL.
type NavigateMsg struct {
	URL string
	At  time.Time
}

// PollMsg carries one poll outcome.
type PollMsg struct {
	Result watcher.Result
	Err    error
}

type openedMsg struct {
	err error
}

// Sender is the part of *tea.Program the adapters need.
type Sender interface {
	Send(msg tea.Msg)
}

// Viewer implements viewer.Viewer on top of a running program.
type Viewer struct {
	program Sender
}

// NewViewer returns a Viewer that forwards navigations to p.
func NewViewer(p Sender) *Viewer {
	return &Viewer{program: p}
}

// Navigate forwards url to the program.
func (v *Viewer) Navigate(url string) {
	v.program.Send(NavigateMsg{URL: url, At: time.Now()})
}

// Recorder returns a watcher.OnResult callback that forwards outcomes to p.
func Recorder(p Sender) func(watcher.Result, error) {
	return func(res watcher.Result, err error) {
		p.Send(PollMsg{Result: res, Err: err})
	}
}

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// Model is the bubbletea model for the terminal viewer.
type Model struct {
	provider string
	interval time.Duration

	url      string
	history  []NavigateMsg
	last     *watcher.Result
	lastErr  error
	polls    int
	failures int
	notice   string
}

// NewModel creates a model whose viewer starts on initialURL.
func NewModel(initialURL, provider string, interval time.Duration) Model {
	return Model{
		provider: provider,
		interval: interval,
		url:      initialURL,
	}
}

// URL returns the current viewer target.
func (m Model) URL() string {
	return m.url
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "o":
			url := m.url
			return m, func() tea.Msg {
				return openedMsg{err: openURL(url)}
			}
		}

	case NavigateMsg:
		m.url = msg.URL
		m.history = append(m.history, msg)
		if len(m.history) > historyLength {
			m.history = m.history[len(m.history)-historyLength:]
		}

	case PollMsg:
		m.polls++
		if msg.Err != nil {
			m.failures++
			m.lastErr = msg.Err
			break
		}
		res := msg.Result
		m.last = &res
		m.lastErr = nil

	case openedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("could not open browser: %v", msg.err)
		} else {
			m.notice = "opened in browser"
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	urlStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	s.WriteString(titleStyle.Render("FLIGHTWATCH"))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Viewer:  "))
	s.WriteString(urlStyle.Render(m.url))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render(fmt.Sprintf("Source:  %s, every %s", m.provider, m.interval)))
	s.WriteString("\n\n")

	s.WriteString(m.renderFlight())
	s.WriteString("\n")

	s.WriteString(labelStyle.Render(fmt.Sprintf("Polls: %d  Failures: %d", m.polls, m.failures)))
	s.WriteString("\n")
	if m.lastErr != nil {
		s.WriteString(errStyle.Render(fmt.Sprintf("Last error: %v", m.lastErr)))
		s.WriteString("\n")
	}

	if len(m.history) > 0 {
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Recent:"))
		s.WriteString("\n")
		for i := len(m.history) - 1; i >= 0; i-- {
			h := m.history[i]
			s.WriteString(fmt.Sprintf("  %s  %s\n", h.At.Format("15:04:05"), h.URL))
		}
	}

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("o: open in browser  q: quit"))
	return s.String()
}

// renderFlight describes the last selected flight.
func (m Model) renderFlight() string {
	if m.last == nil {
		return "Waiting for first poll...\n"
	}
	sel := m.last.Selected
	if sel == nil {
		return fmt.Sprintf("No flight of interest (%d state vectors)\n", m.last.Vectors)
	}

	flightStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  (%s, %s)\n", m.last.Identifier, sel.ICAO24, sel.OriginCountry)
	if sel.Altitude != nil {
		fmt.Fprintf(&b, "Alt %.0f m", *sel.Altitude)
	} else {
		b.WriteString("Alt n/a")
	}
	if sel.Velocity != nil {
		fmt.Fprintf(&b, "  Spd %.0f m/s", *sel.Velocity)
	}
	if sel.Heading != nil {
		fmt.Fprintf(&b, "  Hdg %03.0f", *sel.Heading)
	}
	if m.last.DistanceNM > 0 {
		fmt.Fprintf(&b, "\n%.1f NM at %03.0f", m.last.DistanceNM, m.last.Bearing)
	}
	return flightStyle.Render(b.String()) + "\n"
}
