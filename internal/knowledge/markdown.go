// Package knowledge renders learning entries to markdown and persists them
// as session log files on the local filesystem. The file layout is the
// durable, human-readable record; the document store and the search index
// are both derived from it.
package knowledge

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

// EntrySections lists the H3 sections of a rendered entry, in order.
var EntrySections = []string{
	"Situation",
	"Debug Journey",
	"Resolution",
	"Knowledge Synthesis",
	"Quick Reference Synopsis",
}

// Render produces the complete session learning log as markdown.
// Rendering is deterministic: same record and entries, same bytes.
func Render(rec *session.Record, entries []learning.Entry) string {
	var b strings.Builder

	b.WriteString("# Session Learning Log\n")
	fmt.Fprintf(&b, "**Session ID**: %s\n", rec.SessionID)
	fmt.Fprintf(&b, "**Project**: %s\n", rec.ProjectContext)
	fmt.Fprintf(&b, "**Start Time**: %s\n", rec.Timestamp.Format(time.RFC3339))
	b.WriteString("\n")

	for i, entry := range entries {
		renderEntry(&b, entry, i+1, rec.Timestamp)
		if i < len(entries)-1 {
			b.WriteString("---\n\n")
		}
	}

	return b.String()
}

func renderEntry(b *strings.Builder, e learning.Entry, number int, ts time.Time) {
	fmt.Fprintf(b, "## Learning Entry %d\n", number)
	fmt.Fprintf(b, "**ID**: %s\n", e.ID)
	fmt.Fprintf(b, "**Timestamp**: %s\n", ts.Format(time.RFC3339))
	fmt.Fprintf(b, "**Trigger**: %s\n\n", e.Trigger)

	b.WriteString("### Situation\n")
	fmt.Fprintf(b, "**Goal**: %s\n", e.Situation.Goal)
	fmt.Fprintf(b, "**Action Taken**: %s\n", e.Situation.ActionTaken)
	fmt.Fprintf(b, "**Expected Result**: %s\n", e.Situation.ExpectedResult)
	fmt.Fprintf(b, "**Actual Result**: %s\n\n", e.Situation.ActualResult)

	b.WriteString("### Debug Journey\n")
	fmt.Fprintf(b, "**Initial Hypothesis**: %s\n", e.DebugJourney.InitialHypothesis)
	b.WriteString("**Investigation Path**:\n")
	if len(e.DebugJourney.InvestigationPath) > 0 {
		for i, step := range e.DebugJourney.InvestigationPath {
			fmt.Fprintf(b, "%d. %s\n", i+1, step)
		}
	} else {
		b.WriteString("1. Investigation steps not documented\n")
	}
	b.WriteString("\n")

	b.WriteString("**Dead Ends**:\n")
	if len(e.DebugJourney.DeadEnds) > 0 {
		for _, de := range e.DebugJourney.DeadEnds {
			fmt.Fprintf(b, "- %s\n", de)
		}
	} else {
		b.WriteString("- No dead ends documented\n")
	}
	b.WriteString("\n")

	b.WriteString("### Resolution\n")
	fmt.Fprintf(b, "**Root Cause**: %s\n", e.Resolution.RootCause)
	fmt.Fprintf(b, "**Solution**: %s\n", e.Resolution.Solution)
	fmt.Fprintf(b, "**Verification**: %s\n\n", e.Resolution.Verification)

	b.WriteString("### Knowledge Synthesis\n")
	fmt.Fprintf(b, "**Domain Principle**: %s\n", e.KnowledgeSynthesis.DomainPrinciple)
	fmt.Fprintf(b, "**Universal Principle**: %s\n", e.KnowledgeSynthesis.UniversalPrinciple)
	fmt.Fprintf(b, "**Pattern Recognition**: %s\n", e.KnowledgeSynthesis.PatternRecognition)
	fmt.Fprintf(b, "**Mental Model**: %s\n\n", e.KnowledgeSynthesis.MentalModel)

	b.WriteString("### Quick Reference Synopsis\n")
	fmt.Fprintf(b, "- **Symptoms**: %s\n", e.Synopsis.Bullets.Symptoms)
	fmt.Fprintf(b, "- **Context**: %s\n", e.Synopsis.Bullets.Context)
	fmt.Fprintf(b, "- **Root Cause**: %s\n", e.Synopsis.Bullets.RootCause)
	fmt.Fprintf(b, "- **Fix**: %s\n", e.Synopsis.Bullets.Fix)
	fmt.Fprintf(b, "- **Applies When**: %s\n\n", e.Synopsis.Bullets.AppliesWhen)
}

// RenderEntryDocument formats a single entry as a standalone searchable
// document for the external store. Returns the document title and body.
func RenderEntryDocument(e learning.Entry, sessionID string, ts time.Time) (string, string) {
	title := e.Synopsis.Title
	if title == "" {
		title = "Debug: " + e.Situation.Goal
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "**Session**: %s\n", sessionID)
	fmt.Fprintf(&b, "**Entry ID**: %s\n", e.ID)
	fmt.Fprintf(&b, "**Timestamp**: %s\n", ts.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Trigger**: %s\n\n", e.Trigger)

	b.WriteString("## Problem Context\n")
	fmt.Fprintf(&b, "**Goal**: %s\n", e.Situation.Goal)
	fmt.Fprintf(&b, "**Action Taken**: %s\n", e.Situation.ActionTaken)
	fmt.Fprintf(&b, "**Expected Result**: %s\n", e.Situation.ExpectedResult)
	fmt.Fprintf(&b, "**Actual Result**: %s\n\n", e.Situation.ActualResult)

	b.WriteString("## Investigation Process\n")
	fmt.Fprintf(&b, "**Initial Hypothesis**: %s\n\n", e.DebugJourney.InitialHypothesis)
	b.WriteString("**Investigation Steps**:\n")
	for _, step := range e.DebugJourney.InvestigationPath {
		fmt.Fprintf(&b, "- %s\n", step)
	}
	b.WriteString("\n**Dead Ends Encountered**:\n")
	for _, de := range e.DebugJourney.DeadEnds {
		fmt.Fprintf(&b, "- %s\n", de)
	}

	b.WriteString("\n## Resolution\n")
	fmt.Fprintf(&b, "**Root Cause**: %s\n", e.Resolution.RootCause)
	fmt.Fprintf(&b, "**Solution**: %s\n", e.Resolution.Solution)
	fmt.Fprintf(&b, "**Verification**: %s\n\n", e.Resolution.Verification)

	b.WriteString("## Key Learnings\n")
	fmt.Fprintf(&b, "**Domain Principle**: %s\n", e.KnowledgeSynthesis.DomainPrinciple)
	fmt.Fprintf(&b, "**Universal Principle**: %s\n", e.KnowledgeSynthesis.UniversalPrinciple)
	fmt.Fprintf(&b, "**Pattern Recognition**: %s\n", e.KnowledgeSynthesis.PatternRecognition)
	fmt.Fprintf(&b, "**Mental Model**: %s\n\n", e.KnowledgeSynthesis.MentalModel)

	b.WriteString("## Quick Reference\n")
	fmt.Fprintf(&b, "- **Symptoms**: %s\n", e.Synopsis.Bullets.Symptoms)
	fmt.Fprintf(&b, "- **Context**: %s\n", e.Synopsis.Bullets.Context)
	fmt.Fprintf(&b, "- **Root Cause**: %s\n", e.Synopsis.Bullets.RootCause)
	fmt.Fprintf(&b, "- **Fix**: %s\n", e.Synopsis.Bullets.Fix)
	fmt.Fprintf(&b, "- **Applies When**: %s\n\n", e.Synopsis.Bullets.AppliesWhen)

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Tags: debugging, %s, learning\n", e.Trigger)

	return title, b.String()
}

// Heading is one markdown heading found in a rendered log.
type Heading struct {
	Level int
	Text  string
}

// ParseHeadings extracts the ordered heading structure of a markdown
// document. Used to verify rendered logs round-trip with the expected
// section layout.
func ParseHeadings(source []byte) ([]Heading, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, Heading{
				Level: h.Level,
				Text:  string(headingText(h, source)),
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return headings, nil
}

func headingText(h *ast.Heading, source []byte) []byte {
	var out []byte
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
		}
	}
	return out
}

// SessionHeader is the metadata block at the top of a learning log.
type SessionHeader struct {
	SessionID string
	Project   string
	StartTime string
}

// ParseSessionHeader reads the **field**: value lines from a rendered log.
func ParseSessionHeader(content string) SessionHeader {
	return SessionHeader{
		SessionID: fieldValue(content, "Session ID"),
		Project:   fieldValue(content, "Project"),
		StartTime: fieldValue(content, "Start Time"),
	}
}

func fieldValue(content, field string) string {
	prefix := "**" + field + "**:"
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
