package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// Stepper styles
var (
	stepHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	stepChainStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stepNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	stepDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// stepCommand creates the interactive step command.
func (c *CLI) stepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "step [script]",
		Short: "Walk through a script edit by edit",
		Long: `Step replays a script and opens an interactive view of the actions
each edit produced. Selecting an action highlights the chain of actions
that caused it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStep(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runStep(ctx context.Context, path string) error {
	s, err := c.loadScript(path)
	if err != nil {
		return err
	}
	_, steps, err := pipeline.Replay(ctx, s, c.pipelineOptions())
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		printInfo("Script has no edits")
		return nil
	}

	_, err = tea.NewProgram(newStepModel(steps), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// StepModel - Interactive edit stepper
// =============================================================================

// StepModel is the bubbletea model for browsing the actions of each edit.
type StepModel struct {
	Steps  []pipeline.Step
	Step   int // current edit
	Cursor int // selected action within the edit
	Height int
	Offset int
}

func newStepModel(steps []pipeline.Step) StepModel {
	return StepModel{Steps: steps, Height: 15}
}

func (m StepModel) actions() []layout.Action { return m.Steps[m.Step].Actions }

func (m StepModel) Init() tea.Cmd {
	return nil
}

func (m StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			if m.Step < len(m.Steps)-1 {
				m.Step++
				m.Cursor, m.Offset = 0, 0
			}
		case "left", "h", "p":
			if m.Step > 0 {
				m.Step--
				m.Cursor, m.Offset = 0, 0
			}
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.actions())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m StepModel) View() string {
	var b strings.Builder
	st := m.Steps[m.Step]

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Edit %d/%d", m.Step+1, len(m.Steps))))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(st.Edit.String()))
	b.WriteString("\n")
	b.WriteString(stepDimStyle.Render("←/→ edit  ↑/↓ action  q quit"))
	b.WriteString("\n\n")

	if len(st.Actions) == 0 {
		b.WriteString(stepDimStyle.Render("  no actions"))
		return b.String()
	}

	chain := make(map[int]bool)
	for _, i := range layout.Chain(st.Actions, m.Cursor) {
		chain[i] = true
	}

	end := min(m.Offset+m.Height, len(st.Actions))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		a := st.Actions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		cause := "—"
		if a.Cause != layout.NoCause {
			cause = fmt.Sprint(a.Cause)
		}
		subject := a.Vertex
		if a.Kind == layout.PathRerouted {
			subject = a.Connector
		}
		rows = append(rows, []string{cursor, fmt.Sprint(i), a.Kind.String(), subject, a.Center.String(), cause})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Action", "Subject", "Center", "Cause").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return stepHeaderStyle
			}
			if chain[m.Offset+row] {
				return stepChainStyle
			}
			return stepNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(stepDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(st.Actions))))

	return b.String()
}
