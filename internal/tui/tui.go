// Package tui provides a Bubble Tea terminal browser for the catalog
// adapter: page through the home feed or a search, open book details and
// inspect the resolved audio sources of each chapter.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/pager"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/service"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateLoading
	StateList
	StateDetail
	StateError
)

type pageMsg struct {
	items   []domain.CatalogEntry
	hasMore bool
}

type detailMsg struct {
	detail  domain.BookDetail
	sources [][]domain.AudioSource
}

type errMsg struct{ err error }

// Model is the Bubble Tea model for the catalog browser.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	service   *service.Service
	allowHLS  bool

	pager   *pager.Pager[domain.CatalogEntry]
	entries []domain.CatalogEntry
	cursor  int
	hasMore bool

	detail  *domain.BookDetail
	sources [][]domain.AudioSource

	err error
}

// NewModel creates a browser over the given service.
func NewModel(svc *service.Service, allowHLS bool) Model {
	ti := textinput.New()
	ti.Placeholder = "search query, or empty for the home feed"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8B500"))

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		service:   svc,
		allowHLS:  allowHLS,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) nextPageCmd() tea.Cmd {
	p := m.pager
	return func() tea.Msg {
		items := p.NextPage(context.Background())
		return pageMsg{items: items, hasMore: p.HasMore()}
	}
}

func (m Model) detailCmd(entry domain.CatalogEntry) tea.Cmd {
	svc := m.service
	allowHLS := m.allowHLS
	return func() tea.Msg {
		detail, err := svc.GetBookDetail(context.Background(), entry.URL)
		if err != nil {
			return errMsg{err}
		}
		sources := make([][]domain.AudioSource, len(detail.Chapters))
		for i, ch := range detail.Chapters {
			// Chapters without playable candidates still render, just unmarked.
			resolved, err := librivox.ResolveAudioSources(ch, svc.StreamBase(), allowHLS)
			if err == nil {
				sources[i] = resolved
			}
		}
		return detailMsg{detail: detail, sources: sources}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageMsg:
		m.state = StateList
		m.entries = append(m.entries, msg.items...)
		m.hasMore = msg.hasMore
		return m, nil

	case detailMsg:
		m.state = StateDetail
		detail := msg.detail
		m.detail = &detail
		m.sources = msg.sources
		return m, nil

	case errMsg:
		m.state = StateError
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.state != StateInput || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case "enter":
		switch m.state {
		case StateInput:
			query := strings.TrimSpace(m.textInput.Value())
			if query == "" {
				m.pager = m.service.GetHome()
			} else {
				m.pager = m.service.Search(query)
			}
			m.entries = nil
			m.cursor = 0
			m.state = StateLoading
			return m, tea.Batch(m.spinner.Tick, m.nextPageCmd())
		case StateList:
			if m.cursor < len(m.entries) {
				m.state = StateLoading
				return m, tea.Batch(m.spinner.Tick, m.detailCmd(m.entries[m.cursor]))
			}
		}

	case "esc":
		switch m.state {
		case StateDetail:
			m.state = StateList
		case StateList, StateError:
			m.state = StateInput
			m.textInput.Focus()
			return m, textinput.Blink
		}

	case "up", "k":
		if m.state == StateList && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.state == StateList && m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case "n":
		if m.state == StateList && m.hasMore {
			m.state = StateLoading
			return m, tea.Batch(m.spinner.Tick, m.nextPageCmd())
		}
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LibriVox catalog browser") + "\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.textInput.View() + "\n\n")
		b.WriteString(dimStyle.Render("enter: browse · ctrl+c: quit") + "\n")

	case StateLoading:
		b.WriteString(m.spinner.View() + " loading...\n")

	case StateList:
		for i, entry := range m.entries {
			line := fmt.Sprintf("%s — %s", entry.Title, entry.Author.Name)
			if entry.ChapterCount != domain.ChapterCountUnknown {
				line += dimStyle.Render(fmt.Sprintf("  (%d chapters)", entry.ChapterCount))
			}
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		if len(m.entries) == 0 {
			b.WriteString(dimStyle.Render("no results") + "\n")
		}
		b.WriteString("\n")
		hints := "enter: open · esc: back · q: quit"
		if m.hasMore {
			hints = "n: more · " + hints
		}
		b.WriteString(dimStyle.Render(hints) + "\n")

	case StateDetail:
		b.WriteString(selectedStyle.Render(m.detail.Title) + "\n")
		b.WriteString(dimStyle.Render("by "+m.detail.Author.Name) + "\n\n")
		for i, ch := range m.detail.Chapters {
			mark := dimStyle.Render("·")
			if i < len(m.sources) && len(m.sources[i]) > 0 {
				mark = selectedStyle.Render("▶")
			}
			b.WriteString(fmt.Sprintf("  %s %2d. %s %s\n",
				mark, ch.Index+1, ch.Title, dimStyle.Render(formatDuration(ch.DurationSec))))
		}
		b.WriteString("\n" + dimStyle.Render("esc: back · q: quit") + "\n")

	case StateError:
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n\n")
		b.WriteString(dimStyle.Render("esc: back · q: quit") + "\n")
	}

	return b.String()
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
