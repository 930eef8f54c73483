package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/optimize"
)

// viewCommand creates the `view` command, an interactive browser for a plan
// file produced by `plan`.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [plan.json]",
		Short: "Browse a plan file interactively",
		Long: `View opens a plan JSON file in an interactive terminal browser. Windows are
listed with their index ranges, spans and match errors; arrow keys move the
selection and q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "plan.json"
			if len(args) == 1 {
				path = args[0]
			}

			plan, err := loadPlan(path)
			if err != nil {
				return err
			}

			prog := tea.NewProgram(newViewModel(plan, path), tea.WithAltScreen())
			if _, err := prog.Run(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run viewer")
			}
			return nil
		},
	}
	return cmd
}

// loadPlan reads and decodes a plan file.
func loadPlan(path string) (*optimize.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "plan file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read plan file %s", path)
	}
	var plan optimize.Result
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode plan file %s", path)
	}
	return &plan, nil
}

// Viewer styles, on top of the shared palette.
var (
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan)
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).PaddingBottom(1)
	styleHelp     = lipgloss.NewStyle().Foreground(colorDim).PaddingTop(1)
)

// chromeRows is the number of non-list rows (header, stats, help).
const chromeRows = 7

// viewModel is the bubbletea model for the plan viewer. It keeps a cursor
// into the window list and a scroll offset so long plans stay navigable on
// short terminals.
type viewModel struct {
	plan   *optimize.Result
	path   string
	cursor int
	offset int
	height int
}

func newViewModel(plan *optimize.Result, path string) viewModel {
	return viewModel{plan: plan, path: path, height: 24}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.plan.Windows)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.plan.Windows) - 1
		case "pgup":
			m.cursor -= m.listHeight()
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "pgdown":
			m.cursor += m.listHeight()
			if m.cursor > len(m.plan.Windows)-1 {
				m.cursor = len(m.plan.Windows) - 1
			}
		}
	}
	m.clampScroll()
	return m, nil
}

// listHeight is the number of window rows that fit on screen.
func (m viewModel) listHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return h
}

// clampScroll keeps the cursor inside the visible slice of the list.
func (m *viewModel) clampScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m viewModel) View() string {
	var b strings.Builder

	status := styleWarn.Render("not converged")
	if m.plan.Converged {
		status = styleConverged.Render("converged")
	}
	b.WriteString(styleHeader.Render(fmt.Sprintf("%s · %s mode · cost %.4f · %s",
		m.path, m.plan.Mode, m.plan.Cost, status)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n",
		styleDim.Render(fmt.Sprintf("mean span %.2f · mean step %.2f · total span %.2f",
			m.plan.Stats.MeanSpan, m.plan.Stats.MeanStep, m.plan.Stats.TotalSpan)))
	b.WriteString("\n")

	if len(m.plan.Windows) == 0 {
		b.WriteString(styleWarn.Render("no windows in this plan") + "\n")
		b.WriteString(styleHelp.Render("q quit"))
		return b.String()
	}

	h := m.listHeight()
	end := m.offset + h
	if end > len(m.plan.Windows) {
		end = len(m.plan.Windows)
	}
	for i := m.offset; i < end; i++ {
		w := m.plan.Windows[i]
		row := fmt.Sprintf(" %3d  [%3d..%3d]  span %7.2f  err %.4f", i+1, w.Start, w.End, w.Span, w.MatchErr)
		if i < len(m.plan.Steps) {
			row += fmt.Sprintf("  step %7.2f", m.plan.Steps[i].Distance)
		}
		if i == m.cursor {
			b.WriteString(styleSelected.Render(row))
		} else {
			b.WriteString(styleValue.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString(styleHelp.Render(fmt.Sprintf("%d/%d · ↑/↓ move · g/G ends · q quit",
		m.cursor+1, len(m.plan.Windows))))
	return b.String()
}
