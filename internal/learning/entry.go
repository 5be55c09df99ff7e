package learning

// Trigger categories, in classification precedence order.
const (
	TriggerError         = "error"
	TriggerPerformance   = "performance"
	TriggerInvestigation = "investigation"
)

// Sentinels used when source text is too sparse to infer a field.
// Sparse input degrades to these explicit values, never to empty strings,
// so rendered markdown is always well-formed.
const (
	NotSpecified = "not specified"
	Unspecified  = "unspecified"
	Unresolved   = "unresolved"
)

// Entry is the canonical structured learning entry, one per RawExperience.
// Entries are a pure function of their input experience and position index:
// no wall-clock time, no randomness.
type Entry struct {
	// ID is the sequence label unique within a session: L001, L002, ...
	ID string `json:"id"`

	// Trigger is one of error, performance, investigation
	Trigger string `json:"trigger"`

	Situation          Situation          `json:"situation"`
	DebugJourney       DebugJourney       `json:"debug_journey"`
	Resolution         Resolution         `json:"resolution"`
	KnowledgeSynthesis KnowledgeSynthesis `json:"knowledge_synthesis"`
	Synopsis           Synopsis           `json:"synopsis"`
}

// Situation captures what the caller was doing when the problem appeared.
// ActualResult mirrors the problem description verbatim.
type Situation struct {
	Goal           string `json:"goal"`
	ActionTaken    string `json:"action_taken"`
	ExpectedResult string `json:"expected_result"`
	ActualResult   string `json:"actual_result"`
}

// DebugJourney records how the investigation unfolded. InvestigationPath
// holds the caller's steps verbatim; DeadEnds are steps textually flagged
// as unsuccessful.
type DebugJourney struct {
	InitialHypothesis string   `json:"initial_hypothesis"`
	InvestigationPath []string `json:"investigation_path"`
	DeadEnds          []string `json:"dead_ends"`
}

// Resolution records the outcome. Solution is the verbatim solution_applied,
// or the Unresolved sentinel when none was supplied — never a silently empty
// field presented as a real value. RootCause is inferred from fixed pattern
// templates only; when nothing matches and no solution exists it is the
// Unspecified sentinel rather than invented content.
type Resolution struct {
	RootCause    string `json:"root_cause"`
	Solution     string `json:"solution"`
	Verification string `json:"verification"`
}

// KnowledgeSynthesis holds the template-filled generalizations. Values may
// be generic when the source text is sparse.
type KnowledgeSynthesis struct {
	DomainPrinciple    string `json:"domain_principle"`
	UniversalPrinciple string `json:"universal_principle"`
	PatternRecognition string `json:"pattern_recognition"`
	MentalModel        string `json:"mental_model"`
}

// Synopsis is the compressed quick-reference summary of an entry.
type Synopsis struct {
	// Title is at most 120 characters; longer titles are truncated so the
	// final three characters are "..."
	Title   string  `json:"title"`
	Bullets Bullets `json:"bullets"`
}

// Bullets are rendered in this fixed field order.
type Bullets struct {
	Symptoms    string `json:"symptoms"`
	Context     string `json:"context"`
	RootCause   string `json:"root_cause"`
	Fix         string `json:"fix"`
	AppliesWhen string `json:"applies_when"`
}
