// Package learning transforms raw debugging experiences into structured
// learning entries. Every inference here is rule-based and table-driven:
// trigger classification, dead-end detection, and root-cause templates are
// keyword tables, so rule additions are data changes, not code changes.
package learning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/hindsight/internal/session"
)

// triggerRule pairs a trigger category with the keywords that select it.
type triggerRule struct {
	trigger  string
	keywords []string
}

// triggerTable is scanned in order; the first matching rule wins, which
// encodes the precedence error > performance > investigation.
var triggerTable = []triggerRule{
	{TriggerError, []string{"error", "exception", "failed", "crash", "bug", "panic", "traceback"}},
	{TriggerPerformance, []string{"slow", "performance", "timeout", "lag", "latency"}},
	{TriggerInvestigation, []string{"unexpected", "weird", "strange", "odd"}},
}

// deadEndMarkers flag an investigation step as a candidate dead end.
var deadEndMarkers = []string{"tried", "attempted", "checked", "tested"}

// negationMarkers confirm a candidate step did not pan out.
var negationMarkers = []string{
	"didn't", "did not", "wasn't", "was not", "no luck", "not the",
	"nothing", "without success", "but", "still",
}

// rootCauseRule maps a solution keyword to a cause template.
type rootCauseRule struct {
	keyword string
	cause   string
}

// rootCauseTable is scanned against the lowercased solution text.
var rootCauseTable = []rootCauseRule{
	{"virtual environment", "Missing or incorrectly configured virtual environment"},
	{"install", "Missing dependencies or incorrect installation"},
	{"path", "Incorrect working directory or path configuration"},
	{"directory", "Incorrect working directory or path configuration"},
	{"permission", "File or directory permission issues"},
	{"config", "Incorrect or missing configuration"},
}

// goalRule maps a problem keyword to an inferred goal.
type goalRule struct {
	keyword string
	goal    string
}

var goalTable = []goalRule{
	{"import", "Import and use modules correctly in the application"},
	{"module", "Import and use modules correctly in the application"},
	{"install", "Install and manage project dependencies correctly"},
	{"dependenc", "Install and manage project dependencies correctly"},
	{"project", "Set up and configure project environment properly"},
}

const defaultGoal = "Resolve the identified issue and restore expected functionality"

// stepPrefix strips list scaffolding from caller-supplied steps.
var stepPrefix = regexp.MustCompile(`(?i)^(step \d+:?|then|next)\s*`)

// Format maps one raw experience to a structured learning entry.
// It is a pure function of its arguments: identical (experience, index,
// project) always yields a byte-identical entry.
func Format(exp session.RawExperience, index int, project string) Entry {
	problem := strings.TrimSpace(exp.ProblemDescription)
	steps := cleanSteps(exp.InvestigationSteps)
	solution := strings.TrimSpace(exp.SolutionApplied)
	outcome := strings.TrimSpace(exp.Outcome)

	entry := Entry{
		ID:                 fmt.Sprintf("L%03d", index+1),
		Trigger:            classifyTrigger(problem),
		Situation:          buildSituation(problem, steps),
		DebugJourney:       buildDebugJourney(steps, solution),
		Resolution:         buildResolution(problem, solution, outcome),
		KnowledgeSynthesis: buildSynthesis(problem, solution, steps),
	}
	entry.Synopsis = buildSynopsis(entry, problem, solution, project)
	return entry
}

// classifyTrigger inspects the problem description against the trigger
// table. Unmatched descriptions default to investigation.
func classifyTrigger(problem string) string {
	lower := strings.ToLower(problem)
	for _, rule := range triggerTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.trigger
			}
		}
	}
	return TriggerInvestigation
}

func buildSituation(problem string, steps []string) Situation {
	actual := problem
	if actual == "" {
		actual = NotSpecified
	}
	return Situation{
		Goal:           inferGoal(problem),
		ActionTaken:    inferActionTaken(steps),
		ExpectedResult: inferExpected(problem),
		ActualResult:   actual,
	}
}

func inferGoal(problem string) string {
	lower := strings.ToLower(problem)
	for _, rule := range goalTable {
		if strings.Contains(lower, rule.keyword) {
			return rule.goal
		}
	}
	return defaultGoal
}

func inferActionTaken(steps []string) string {
	if len(steps) == 0 {
		return "Initiated systematic debugging process"
	}
	first := steps[0]
	if strings.Contains(strings.ToLower(first), "check") {
		return "Investigated the issue by " + lowerFirst(first)
	}
	return "Began debugging by " + lowerFirst(first)
}

func inferExpected(problem string) string {
	lower := strings.ToLower(problem)
	switch {
	case strings.Contains(lower, "missing"), strings.Contains(lower, "not found"):
		return "Required files and modules should be accessible and functional"
	case strings.Contains(lower, "dependenc"):
		return "All dependencies should be installed and available"
	default:
		return "System should function as intended without errors"
	}
}

func buildDebugJourney(steps []string, solution string) DebugJourney {
	return DebugJourney{
		InitialHypothesis: inferHypothesis(steps),
		InvestigationPath: steps,
		DeadEnds:          findDeadEnds(steps, solution),
	}
}

func inferHypothesis(steps []string) string {
	if len(steps) == 0 {
		return "Initial hypothesis based on error symptoms and common patterns"
	}
	first := steps[0]
	if strings.Contains(strings.ToLower(first), "check") {
		return "Initial assumption was related to " + lowerFirst(first)
	}
	return "First hypothesis: " + first
}

// findDeadEnds flags steps textually marked as unsuccessful: a step must
// carry a dead-end marker (tried/checked/...) and either a negation marker
// or no lexical overlap with the eventual solution. The final step is never
// a dead end — it presumably led to the fix.
func findDeadEnds(steps []string, solution string) []string {
	if len(steps) < 2 {
		return nil
	}

	solutionWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(solution)) {
		if len(w) > 3 {
			solutionWords[w] = true
		}
	}

	var deadEnds []string
	for _, step := range steps[:len(steps)-1] {
		lower := strings.ToLower(step)
		if !containsAny(lower, deadEndMarkers) {
			continue
		}
		if containsAny(lower, negationMarkers) || !sharesWord(lower, solutionWords) {
			deadEnds = append(deadEnds, "Investigated "+lowerFirst(step)+" but this wasn't the root cause")
		}
	}
	return deadEnds
}

func buildResolution(problem, solution, outcome string) Resolution {
	res := Resolution{
		RootCause:    inferRootCause(solution),
		Solution:     solution,
		Verification: inferVerification(outcome),
	}
	if res.Solution == "" {
		// Never a silently empty field: an absent solution is explicitly
		// marked unresolved.
		res.Solution = Unresolved
	}
	return res
}

func inferRootCause(solution string) string {
	lower := strings.ToLower(solution)
	for _, rule := range rootCauseTable {
		if strings.Contains(lower, rule.keyword) {
			return rule.cause
		}
	}
	if solution == "" {
		return Unspecified
	}
	return "Root cause addressed by: " + solution
}

func inferVerification(outcome string) string {
	lower := strings.ToLower(outcome)
	switch {
	case outcome == "" || lower == Unresolved:
		return NotSpecified
	case strings.Contains(lower, "success"):
		return "Confirmed resolution by testing the previously failing scenario"
	case strings.Contains(lower, "resolved"):
		return "Verified fix by reproducing original conditions"
	default:
		return "Validation method: " + outcome
	}
}

func buildSynthesis(problem, solution string, steps []string) KnowledgeSynthesis {
	return KnowledgeSynthesis{
		DomainPrinciple:    inferDomainPrinciple(problem, solution),
		UniversalPrinciple: inferUniversalPrinciple(steps),
		PatternRecognition: inferPattern(problem),
		MentalModel:        inferMentalModel(solution),
	}
}

func inferDomainPrinciple(problem, solution string) string {
	combined := strings.ToLower(problem + " " + solution)
	switch {
	case containsAny(combined, []string{"python", "pip", "venv", "import", "module", ".py"}):
		return "Python import system requires proper working directory and module path configuration"
	case containsAny(combined, []string{"javascript", "node", "npm", "yarn"}):
		return "JavaScript projects require proper dependency installation via npm or yarn"
	case strings.Contains(combined, "git"):
		return "Version control operations require understanding of the Git workflow"
	case containsAny(combined, []string{"sql", "database", "db "}):
		return "Database access depends on correct connection and schema configuration"
	default:
		return "Technology-specific configuration and setup patterns are crucial for success"
	}
}

func inferUniversalPrinciple(steps []string) string {
	text := strings.ToLower(strings.Join(steps, " "))
	switch {
	case containsAny(text, []string{"working directory", "context", "path"}):
		return "Understanding the execution context is essential when resolving path-related issues"
	case len(steps) > 3:
		return "Systematic investigation yields better debugging outcomes than ad hoc troubleshooting"
	case strings.Contains(text, "check"):
		return "Verify assumptions before proceeding with complex solutions"
	default:
		return "Understanding the problem context is essential before applying solutions"
	}
}

func inferPattern(problem string) string {
	lower := strings.ToLower(problem)
	switch {
	case strings.Contains(lower, "not found"):
		return "'Not found' errors often indicate path, environment, or dependency issues"
	case strings.Contains(lower, "missing"):
		return "Missing component errors suggest setup or configuration problems"
	default:
		return "Error patterns provide clues about the category and likely solutions"
	}
}

func inferMentalModel(solution string) string {
	lower := strings.ToLower(solution)
	switch {
	case strings.Contains(lower, "environment"):
		return "Development environments are isolated contexts with their own dependencies"
	case strings.Contains(lower, "path"), strings.Contains(lower, "directory"):
		return "File system navigation and context matter for resource accessibility"
	default:
		return "Debugging is a systematic process of hypothesis testing and validation"
	}
}

// cleanSteps strips list scaffolding ("step 1:", "then", "next") and drops
// blank steps, preserving order and the caller's wording.
func cleanSteps(steps []string) []string {
	cleaned := make([]string, 0, len(steps))
	for _, step := range steps {
		s := strings.TrimSpace(stepPrefix.ReplaceAllString(strings.TrimSpace(step), ""))
		if s != "" {
			cleaned = append(cleaned, upperFirst(s))
		}
	}
	return cleaned
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func sharesWord(s string, words map[string]bool) bool {
	for _, w := range strings.Fields(s) {
		if words[w] {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
