package session

import (
	"regexp"
	"strings"
	"time"

	"github.com/hpungsan/hindsight/internal/errors"
)

// Prefix distinguishes how a capture arrived.
type Prefix string

const (
	// PrefixExternal marks a single-experience capture from an external caller.
	PrefixExternal Prefix = "external"

	// PrefixSession marks a capture extracted from a session transcript.
	PrefixSession Prefix = "session"
)

// RawExperience is one caller-supplied problem/investigation/resolution unit.
// Nothing here is parsed or inferred; AdditionalContext is pass-through
// metadata only.
type RawExperience struct {
	ProblemDescription string
	InvestigationSteps []string
	SolutionApplied    string
	Outcome            string
	AdditionalContext  map[string]any
}

// Record identifies one capture request. Created per request, never mutated,
// never persisted directly — only derived learning entries are persisted.
type Record struct {
	// SessionID has the form {external|session}-{project-slug}-{YYYYMMDD-HHMMSS}
	SessionID string

	// Timestamp is the capture time (UTC)
	Timestamp time.Time

	// ProjectContext is the caller-supplied project label
	ProjectContext string

	// Experiences is the ordered input: one for direct capture, 0..N for
	// session extraction
	Experiences []RawExperience
}

// IDPattern matches every generated session ID.
var IDPattern = regexp.MustCompile(`^(external|session)-[a-z0-9-]+-\d{8}-\d{6}$`)

// nonSlugRuns matches runs of characters that are not allowed in a slug.
var nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// NewRecord builds a Record with a generated session ID.
// The now parameter is injected so callers (and tests) control the stamp.
func NewRecord(prefix Prefix, project string, now time.Time, experiences []RawExperience) *Record {
	now = now.UTC()
	return &Record{
		SessionID:      string(prefix) + "-" + Slugify(project) + "-" + FormatStamp(now),
		Timestamp:      now,
		ProjectContext: project,
		Experiences:    experiences,
	}
}

// Slugify lowercases a project name and collapses non-alphanumeric runs to a
// single hyphen. An empty or fully non-alphanumeric name becomes "unknown"
// so the session ID always satisfies IDPattern.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unknown"
	}
	return s
}

// FormatStamp renders a time as the YYYYMMDD-HHMMSS stamp used in session
// IDs and learning file names.
func FormatStamp(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}

// ValidateExperience checks the required field of a direct capture before
// any side effect occurs.
func ValidateExperience(exp RawExperience) error {
	if strings.TrimSpace(exp.ProblemDescription) == "" {
		return errors.NewMissingField("problem_description")
	}
	return nil
}
