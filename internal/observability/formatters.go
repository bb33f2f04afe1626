// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-sourcer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of one merged profile.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Identity:    %s\n", profile.IdentityID))
	sb.WriteString(fmt.Sprintf("Name:        %s\n", profile.DisplayName))
	if types.Known(profile.Affiliation) {
		sb.WriteString(fmt.Sprintf("Affiliation: %s\n", profile.Affiliation))
	}
	sb.WriteString(fmt.Sprintf("Sources:     %s\n", strings.Join(profile.Sources, ", ")))
	sb.WriteString(fmt.Sprintf("Confidence:  %.2f\n", profile.Confidence))
	if profile.NeedsReview {
		sb.WriteString("Needs review: conflicting field values\n")
	}

	if len(profile.Contacts) > 0 {
		sb.WriteString("\nContacts:\n")
		count := min(len(profile.Contacts), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := profile.Contacts[i]
			sb.WriteString(fmt.Sprintf("  • %s: %s (from %s)\n", c.Kind, c.Value, c.Provenance))
		}
		if len(profile.Contacts) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Contacts)-maxItemsToShow))
		}
	}

	p.printBox("MERGED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs the top ranked matches with scores and shared terms.
func (p *Printer) PrintMatches(results []types.MatchResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("%d. [%.3f] %s (%s)\n", i+1, r.Score, r.DisplayName, r.ProfileID))
		if len(r.MatchedTerms) > 0 {
			terms := r.MatchedTerms
			if len(terms) > maxItemsToShow {
				terms = terms[:maxItemsToShow]
			}
			sb.WriteString(fmt.Sprintf("   matched: %s\n", strings.Join(terms, ", ")))
		}
	}
	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(results)-maxItemsToShow))
	}

	p.printBox("RANKED MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiagnostics outputs pipeline diagnostics grouped by stage.
func (p *Printer) PrintDiagnostics(diags []types.Diagnostic) {
	if len(diags) == 0 {
		return
	}

	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", d.Stage, d.Subject, d.Message))
	}

	p.printBox("DIAGNOSTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSplits outputs identities that came apart since the previous pass.
func (p *Printer) PrintSplits(previousIDs []string) {
	if len(previousIDs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("Previously merged identities that split:\n")
	for _, id := range previousIDs {
		sb.WriteString(fmt.Sprintf("  • %s\n", id))
	}

	p.printBox("IDENTITY SPLITS", strings.TrimSuffix(sb.String(), "\n"))
}
