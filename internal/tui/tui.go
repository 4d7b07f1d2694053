// Package tui provides an interactive viewer for optimization results:
// the rendered report in a scrollable viewport with a status footer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/promptops/ctxpack/internal/core/budget"
	"github.com/promptops/ctxpack/pkg/render"
)

type model struct {
	result *budget.ValidatedContext

	vp     viewport.Model
	ready  bool
	width  int
	height int

	titleStyle  lipgloss.Style
	footerStyle lipgloss.Style
}

func newModel(result *budget.ValidatedContext) *model {
	return &model{
		result: result,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("129")).
			PaddingLeft(1).
			PaddingRight(1),
		footerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := m.renderReport(msg.Width)
		if !m.ready {
			m.vp = viewport.Model{Width: msg.Width, Height: msg.Height - 2}
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 2
		}
		m.vp.SetContent(body)
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	if !m.ready {
		return "loading report…"
	}
	title := m.titleStyle.Render("ctxpack report")
	footer := m.footerStyle.Render(fmt.Sprintf(
		"%d/%d tokens · %d log entries · q to quit",
		m.result.Metadata.TotalTokens,
		m.result.Metadata.AvailableTokens,
		len(m.result.CompressionLog),
	))
	return strings.Join([]string{title, m.vp.View(), footer}, "\n")
}

// renderReport runs the markdown report through glamour, falling back to
// the plain text when the terminal cannot render styled output.
func (m *model) renderReport(width int) string {
	report := render.Report(m.result)
	if width <= 0 {
		width = 80
	}

	options := []glam.TermRendererOption{glam.WithWordWrap(width)}
	if termenv.EnvColorProfile() == termenv.Ascii {
		options = append(options, glam.WithStandardStyle("notty"))
	} else {
		options = append(options, glam.WithAutoStyle())
	}

	renderer, err := glam.NewTermRenderer(options...)
	if err != nil {
		return report
	}
	rendered, err := renderer.Render(report)
	if err != nil {
		return report
	}
	return rendered
}

// Run opens the interactive viewer and blocks until the user quits.
func Run(result *budget.ValidatedContext) error {
	program := tea.NewProgram(newModel(result), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
