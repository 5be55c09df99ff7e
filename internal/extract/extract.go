// Package extract segments a free-form session transcript into discrete
// debugging experiences. Segmentation is an explicit finite-state scan over
// speaker turns (idle → in-problem → in-resolution), not a grammar: it is a
// best-effort precision/recall tradeoff, and extraction never drops data —
// a window with no detected resolution is still emitted, marked unresolved.
package extract

import (
	"strings"

	"github.com/hpungsan/hindsight/internal/session"
)

// OutcomeUnresolved marks an experience whose window closed without a
// resolution turn.
const OutcomeUnresolved = "unresolved"

// problemKeywords open an experience window when present in a turn.
var problemKeywords = []string{
	"error", "exception", "failed", "failure", "crash", "panic",
	"bug", "issue", "problem", "broken", "not working",
}

// resolutionKeywords close an experience window.
var resolutionKeywords = []string{
	"fixed", "resolved", "solved", "worked", "works now", "working now",
	"that did it", "success",
}

// Turn is one speaker-labelled segment of a transcript.
type Turn struct {
	Speaker string // label without the trailing colon, e.g. "User"
	Text    string
}

// scanState tracks where the segmenter is within the transcript.
type scanState int

const (
	stateIdle scanState = iota
	stateInProblem
	stateInResolution
)

// SplitTurns splits a transcript into speaker turns using the given labels
// (e.g. "User:", "Assistant:"). A label only delimits a turn at the start of
// a line. Text before the first label is ignored; a transcript with no labels
// at all yields a single unattributed turn so keyword scanning still runs.
func SplitTurns(content string, labels []string) []Turn {
	lines := strings.Split(content, "\n")

	var turns []Turn
	var current *Turn
	var preamble []string

	for _, line := range lines {
		matched := false
		for _, label := range labels {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, label) {
				if current != nil {
					turns = append(turns, *current)
				}
				current = &Turn{
					Speaker: strings.TrimSuffix(label, ":"),
					Text:    strings.TrimSpace(strings.TrimPrefix(trimmed, label)),
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != nil {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				if current.Text != "" {
					current.Text += " "
				}
				current.Text += trimmed
			}
		} else if trimmed := strings.TrimSpace(line); trimmed != "" {
			preamble = append(preamble, trimmed)
		}
	}
	if current != nil {
		turns = append(turns, *current)
	}

	if len(turns) == 0 && len(preamble) > 0 {
		return []Turn{{Text: strings.Join(preamble, " ")}}
	}
	return turns
}

// Experiences scans a transcript and returns the debugging experiences it
// contains, in transcript order. May return an empty slice.
func Experiences(content string, labels []string) []session.RawExperience {
	turns := SplitTurns(content, labels)

	var experiences []session.RawExperience
	var current session.RawExperience
	state := stateIdle

	flush := func() {
		if state == stateIdle {
			return
		}
		if current.SolutionApplied == "" {
			current.Outcome = OutcomeUnresolved
		}
		experiences = append(experiences, current)
		current = session.RawExperience{}
		state = stateIdle
	}

	for _, turn := range turns {
		lower := strings.ToLower(turn.Text)

		switch state {
		case stateIdle:
			if containsAny(lower, problemKeywords) {
				current.ProblemDescription = turn.Text
				state = stateInProblem
			}

		case stateInProblem:
			if containsAny(lower, resolutionKeywords) {
				current.SolutionApplied = turn.Text
				current.Outcome = "Issue resolved"
				state = stateInResolution
			} else if containsAny(lower, problemKeywords) && turn.Speaker == userSpeaker(labels) {
				// A fresh user-reported problem abandons the open window.
				flush()
				current.ProblemDescription = turn.Text
				state = stateInProblem
			} else {
				current.InvestigationSteps = append(current.InvestigationSteps, turn.Text)
			}

		case stateInResolution:
			if containsAny(lower, problemKeywords) {
				flush()
				current.ProblemDescription = turn.Text
				state = stateInProblem
			} else {
				// Trailing confirmation refines the outcome.
				current.Outcome = turn.Text
			}
		}
	}
	flush()

	return experiences
}

// userSpeaker returns the speaker name of the first label, conventionally the
// human side of the transcript.
func userSpeaker(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return strings.TrimSuffix(labels[0], ":")
}

// containsAny reports whether s contains any of the given keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
