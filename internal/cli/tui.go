package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/contriblens/contriblens/pkg/github"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoListModel - Interactive repository selection
// =============================================================================

// RepoListModel is the bubbletea model for picking a repository from search
// results.
type RepoListModel struct {
	Repos    []github.Repo
	Cursor   int
	Selected *github.Repo
	Height   int
	Offset   int
}

// NewRepoListModel creates a new repo list model.
func NewRepoListModel(repos []github.Repo) RepoListModel {
	return RepoListModel{
		Repos:  repos,
		Height: 15,
	}
}

func (m RepoListModel) Init() tea.Cmd {
	return nil
}

func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Repos)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			repo := m.Repos[m.Cursor]
			m.Selected = &repo
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m RepoListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Repository"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Repos))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Repos[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		lang := r.Language
		if lang == "" {
			lang = "—"
		}

		rows = append(rows, []string{
			cursor,
			r.FullName,
			fmt.Sprintf("%d", r.Stars),
			lang,
			formatRelativeTime(r.UpdatedAt),
			truncate(r.Description, 40),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "Stars", "Lang", "Updated", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Repos))))

	return b.String()
}

// =============================================================================
// EnrichModel - Live enrichment progress with pause/resume
// =============================================================================

// enrichProgressMsg carries a progress tick from the pipeline.
type enrichProgressMsg struct {
	done      int
	total     int
	remaining int
}

// enrichDoneMsg signals pipeline completion.
type enrichDoneMsg struct {
	result []github.Contributor
	err    error
}

// EnrichModel renders live enrichment progress. "p" toggles the cooperative
// pause; "q" abandons the run by cancelling its context.
type EnrichModel struct {
	ctrl   *github.Control
	cancel context.CancelFunc

	done      int
	total     int
	remaining int
	finished  bool

	Result []github.Contributor
	Err    error
	Quit   bool
}

// NewEnrichModel creates the progress model. cancel aborts the pipeline when
// the user quits mid-run.
func NewEnrichModel(total int, ctrl *github.Control, cancel context.CancelFunc) EnrichModel {
	return EnrichModel{ctrl: ctrl, cancel: cancel, total: total, remaining: -1}
}

func (m EnrichModel) Init() tea.Cmd {
	return nil
}

func (m EnrichModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			if !m.finished {
				m.ctrl.SetPaused(!m.ctrl.Paused())
			}
		case "q", "ctrl+c":
			if !m.finished {
				m.Quit = true
				m.cancel()
				// Unblock a paused pipeline so it can observe cancellation
				m.ctrl.SetPaused(false)
			}
			return m, tea.Quit
		}
	case enrichProgressMsg:
		m.done = msg.done
		m.total = msg.total
		m.remaining = msg.remaining
	case enrichDoneMsg:
		m.finished = true
		m.Result = msg.result
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m EnrichModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Enriching contributors"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("p pause/resume  q abandon"))
	b.WriteString("\n\n")

	b.WriteString("  " + renderBar(m.done, m.total, 40))
	b.WriteString(fmt.Sprintf(" %d/%d", m.done, m.total))
	if m.ctrl.Paused() {
		b.WriteString("  " + StyleWarning.Render("paused"))
	}
	b.WriteString("\n")

	if m.remaining >= 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  quota remaining: %d", m.remaining)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := min(done*width/total, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return StyleNumber.Render(bar)
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return s[:n-1] + "…"
}
