package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	issueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func formatReport(d *deck.Deck, issues []deck.Issue) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d slides", d.ProjectName, len(d.Slides))))
	b.WriteString("\n")

	summary := d.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-20s %d", k, summary[k])))
		b.WriteString("\n")
	}

	if len(issues) == 0 {
		b.WriteString(okStyle.Render("no issues"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(issueStyle.Render(fmt.Sprintf("%d issues", len(issues))))
	b.WriteString("\n")
	for _, is := range issues {
		id := is.SlideID
		if id == "" {
			id = "-"
		}
		b.WriteString(fmt.Sprintf("  #%d %s [%s] %s\n", is.SlideIndex+1, id, is.Kind, is.Message))
	}
	return b.String()
}
