package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sliceplan/sliceplan/pkg/pipeline"
)

// Color palette.
var (
	colorCyan   = lipgloss.Color("36")  // primary values
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorWhite  = lipgloss.Color("255") // bright values
	colorDim    = lipgloss.Color("240") // muted text
)

// Shared styles.
var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	styleConverged = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleWarn      = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
	styleBar       = lipgloss.NewStyle().Foreground(colorCyan)
)

// barWidth is the character width of the terminal bar strip.
const barWidth = 60

// renderSummary formats a human-readable result summary for stderr.
func renderSummary(res *pipeline.Result) string {
	var b strings.Builder
	plan := res.Plan

	b.WriteString(styleTitle.Render("Plan summary"))
	b.WriteString("\n")

	if len(plan.Windows) == 0 {
		b.WriteString(styleWarn.Render("no layout found") +
			styleDim.Render(" (no window fits the span target within tolerance)") + "\n")
		return b.String()
	}

	status := styleWarn.Render("not converged")
	if plan.Converged {
		status = styleConverged.Render("converged")
	}
	fmt.Fprintf(&b, "  windows    %s\n", styleValue.Render(fmt.Sprintf("%d", len(plan.Windows))))
	fmt.Fprintf(&b, "  mean span  %s\n", styleValue.Render(fmt.Sprintf("%.2f", plan.Stats.MeanSpan)))
	fmt.Fprintf(&b, "  mean step  %s\n", styleValue.Render(fmt.Sprintf("%.2f", plan.Stats.MeanStep)))
	fmt.Fprintf(&b, "  coverage   %s\n", styleValue.Render(fmt.Sprintf("%.2f", plan.Stats.TotalSpan)))
	fmt.Fprintf(&b, "  cost       %s  %s\n", styleValue.Render(fmt.Sprintf("%.4f", plan.Cost)), status)

	if len(plan.Report.Errors) > 0 {
		b.WriteString(styleDim.Render("  relative errors:") + "\n")
		criteria := make([]string, 0, len(plan.Report.Errors))
		for c := range plan.Report.Errors {
			criteria = append(criteria, c)
		}
		sort.Strings(criteria)
		for _, c := range criteria {
			fmt.Fprintf(&b, "    %-16s %.4f\n", c, plan.Report.Errors[c])
		}
	}

	b.WriteString("\n")
	b.WriteString(renderBars(res))
	return b.String()
}

// renderBars draws each window as a bar positioned over the physical axis,
// scaled into barWidth terminal cells.
func renderBars(res *pipeline.Result) string {
	plan := res.Plan
	total := res.Series.TotalLength()
	if total <= 0 || len(plan.Windows) == 0 {
		return ""
	}

	var b strings.Builder
	for i, w := range plan.Windows {
		startPos := res.Series.At(w.Start).Center
		from := int(startPos / total * barWidth)
		width := int(w.Span / total * barWidth)
		if width < 1 {
			width = 1
		}
		if from+width > barWidth {
			width = barWidth - from
		}
		line := strings.Repeat(" ", from) + styleBar.Render(strings.Repeat("█", width))
		fmt.Fprintf(&b, "  %3d %s %s\n", i+1, line,
			styleDim.Render(fmt.Sprintf("[%d..%d]", w.Start, w.End)))
	}
	return b.String()
}
