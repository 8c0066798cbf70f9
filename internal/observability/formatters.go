// Package observability provides formatted output utilities for the CLI's
// human-readable mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-guidance/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for human-readable mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, truncate(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, inner)
		pad := inner - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecommendation outputs the suggested careers, the missing skills by
// priority and the learning path.
func (p *Printer) PrintRecommendation(rec *types.Recommendation) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	for i, c := range rec.SuggestedCareers {
		sb.WriteString(fmt.Sprintf("#%d  %s  (%d/100)\n", i+1, c.CareerName, c.MatchScore))
		sb.WriteString(fmt.Sprintf("    %s\n", c.Reason))
	}
	p.printBox("SUGGESTED CAREERS", strings.TrimSuffix(sb.String(), "\n"))

	if len(rec.MissingSkills) > 0 {
		sb.Reset()
		count := min(len(rec.MissingSkills), maxItemsToShow*2)
		for _, m := range rec.MissingSkills[:count] {
			sb.WriteString(fmt.Sprintf("[%-6s] %s", m.Priority, m.Skill))
			if len(m.RelatedCareers) > 1 {
				sb.WriteString(fmt.Sprintf("  (%d careers)", len(m.RelatedCareers)))
			}
			sb.WriteString("\n")
		}
		if len(rec.MissingSkills) > count {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(rec.MissingSkills)-count))
		}
		p.printBox("SKILLS TO LEARN", strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(rec.LearningPath) > 0 {
		sb.Reset()
		for i, item := range rec.LearningPath {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Skill))
			for _, r := range item.Resources {
				sb.WriteString(fmt.Sprintf("   • %s [%s, %s]\n", r.Title, r.Type, r.EstimatedTime))
				sb.WriteString(fmt.Sprintf("     %s\n", r.URL))
			}
		}
		p.printBox("LEARNING PATH", strings.TrimSuffix(sb.String(), "\n"))
	}
}

// PrintSkillGap outputs the match percentage and the held and missing skills
// for one career.
func (p *Printer) PrintSkillGap(report *types.SkillGapReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %d%% (%d of %d required skills)\n",
		report.MatchPercentage, len(report.MatchingSkills), report.TotalRequired))
	sb.WriteString(progressBar(report.MatchPercentage, boxWidth-6))
	sb.WriteString("\n\n")

	if len(report.MatchingSkills) > 0 {
		sb.WriteString("You have:\n")
		for _, s := range report.MatchingSkills {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", s))
		}
	}
	if len(report.MissingSkills) > 0 {
		sb.WriteString("Missing:\n")
		for _, s := range report.MissingSkills {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", s))
		}
	}
	if len(report.Resources) > 0 {
		sb.WriteString("Resources:\n")
		for _, r := range report.Resources {
			sb.WriteString(fmt.Sprintf("  • %s [%s]\n", r.Title, r.Type))
		}
	}

	p.printBox("SKILL GAP: "+report.Career, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCatalog outputs the catalog in order with each career's skill count.
func (p *Printer) PrintCatalog(careers []types.Career) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d careers\n\n", len(careers)))
	for i, c := range careers {
		sb.WriteString(fmt.Sprintf("%2d. %-28s %-20s %2d skills\n",
			i+1, truncate(c.Name, 28), truncate(c.Category, 20), len(c.RequiredSkills)))
	}
	p.printBox("CAREER CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}

func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}
