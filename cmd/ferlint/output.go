package main

import (
	"fmt"
	"strings"

	"ferlint/internal/analyzer"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	approveStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	disapproveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	mentorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))

	commentStyle = lipgloss.NewStyle().PaddingLeft(2)
	hintStyle    = lipgloss.NewStyle().Faint(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6366F1")).
			Padding(0, 1)
)

func statusStyle(s analyzer.Status) lipgloss.Style {
	switch s {
	case analyzer.StatusApproveAsOptimal:
		return approveStyle
	case analyzer.StatusDisapproveWithComment:
		return disapproveStyle
	default:
		return mentorStyle
	}
}

// renderSummary formats one result for the terminal.
func renderSummary(path string, r analyzer.Result, artifact string) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("two-fer review: " + path))
	sb.WriteString("\n")
	sb.WriteString("Status: " + statusStyle(r.Status).Render(string(r.Status)))
	sb.WriteString("\n")

	if len(r.Comments) == 0 {
		sb.WriteString(hintStyle.Render("No comments."))
		sb.WriteString("\n")
	} else {
		sb.WriteString("Comments:\n")
		for _, c := range r.Comments {
			sb.WriteString(commentStyle.Render("- " + c))
			sb.WriteString("\n")
		}
	}

	if n := styleLines(r.StyleOutput); n > 0 {
		sb.WriteString(fmt.Sprintf("pylint: %d line(s) of output\n", n))
	}
	sb.WriteString(hintStyle.Render("Wrote " + artifact))
	sb.WriteString("\n")

	return boxStyle.Render(strings.TrimRight(sb.String(), "\n")) + "\n"
}

// styleLines counts the lines across all style checker outputs.
func styleLines(outputs []string) int {
	n := 0
	for _, out := range outputs {
		n += strings.Count(out, "\n")
		if out != "" && !strings.HasSuffix(out, "\n") {
			n++
		}
	}
	return n
}
