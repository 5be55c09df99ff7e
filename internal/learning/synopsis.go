package learning

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxTitleRunes caps synopsis titles; over-long titles are truncated so the
// final three characters are the literal "...".
const maxTitleRunes = 120

// synopsisWordMin and synopsisWordMax bound the total word count across all
// synopsis bullets. Inside the band the text is left untouched.
const (
	synopsisWordMin = 120
	synopsisWordMax = 200
)

// minBulletWords is the floor below which compression never trims a bullet.
const minBulletWords = 5

// titleJunk matches characters stripped from titles: everything except
// letters, digits, underscores, whitespace, and hyphens.
var titleJunk = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// fixVerbs are accepted leading words for the fix bullet; anything else gets
// an "Applied fix:" prefix so the bullet always reads as an action.
var fixVerbs = []string{
	"apply", "applied", "run", "ran", "install", "installed", "activate",
	"activated", "check", "checked", "set", "update", "updated", "fix",
	"fixed", "use", "used", "change", "changed", "restart", "restarted",
	"create", "created", "remove", "removed", "add", "added", "configure",
	"configured", "switch", "switched",
}

// expansion suffixes, appended in this fixed order while the synopsis is
// under the word minimum. Order and wording are fixed so synopsis generation
// stays deterministic.
var expansions = []struct {
	bullet func(*Bullets) *string
	text   string
}{
	{func(b *Bullets) *string { return &b.Context },
		"This situation commonly arises during iterative development and environment changes."},
	{func(b *Bullets) *string { return &b.AppliesWhen },
		"The same diagnostic approach transfers directly to related tooling and configurations."},
	{func(b *Bullets) *string { return &b.RootCause },
		"Recognizing this category of cause early shortens future investigations considerably."},
	{func(b *Bullets) *string { return &b.Symptoms },
		"Similar symptoms may present with slightly different wording in other tools and runtimes."},
	{func(b *Bullets) *string { return &b.Fix },
		"Re-run the original failing operation afterwards to confirm the change took effect."},
}

// buildSynopsis compresses an entry into its quick-reference form.
func buildSynopsis(entry Entry, problem, solution, project string) Synopsis {
	syn := Synopsis{
		Title: synopsisTitle(problem),
		Bullets: Bullets{
			Symptoms:    symptomsBullet(problem),
			Context:     contextBullet(project),
			RootCause:   entry.Resolution.RootCause,
			Fix:         fixBullet(solution),
			AppliesWhen: appliesWhenBullet(entry.Trigger),
		},
	}
	adjustWordCount(&syn.Bullets)
	return syn
}

// synopsisTitle derives a title from the problem description: punctuation
// stripped, whitespace collapsed, truncated to exactly maxTitleRunes with a
// trailing "..." when over.
func synopsisTitle(problem string) string {
	title := titleJunk.ReplaceAllString(problem, "")
	title = strings.TrimSpace(whitespaceRuns.ReplaceAllString(title, " "))
	if title == "" {
		title = "Debugging session learning"
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		runes := []rune(title)
		title = string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}

func symptomsBullet(problem string) string {
	if problem == "" {
		return "Symptoms " + NotSpecified
	}
	return problem
}

func contextBullet(project string) string {
	if project == "" || project == "unknown" {
		return "Encountered during general development work."
	}
	return "Encountered while working on " + project + "."
}

func fixBullet(solution string) string {
	if solution == "" {
		return "No fix applied; the issue remains " + Unresolved + "."
	}
	first := strings.ToLower(strings.Trim(strings.Fields(solution)[0], ".,:;"))
	for _, v := range fixVerbs {
		if first == v {
			return solution
		}
	}
	return "Applied fix: " + solution
}

func appliesWhenBullet(trigger string) string {
	switch trigger {
	case TriggerError:
		return "When encountering similar error conditions in comparable environments."
	case TriggerPerformance:
		return "When diagnosing performance degradation with similar characteristics."
	default:
		return "When investigating unexpected behavior in similar contexts."
	}
}

// adjustWordCount nudges the combined bullet length into the target band.
// Under-length synopses gain fixed suffixes; over-length ones lose trailing
// words from the longest bullet, never below the per-bullet floor.
func adjustWordCount(b *Bullets) {
	if totalWords(b) < synopsisWordMin {
		for _, exp := range expansions {
			field := exp.bullet(b)
			*field = strings.TrimSpace(*field + " " + exp.text)
			if totalWords(b) >= synopsisWordMin {
				break
			}
		}
		return
	}

	for totalWords(b) > synopsisWordMax {
		longest := longestBullet(b)
		words := strings.Fields(*longest)
		if len(words) <= minBulletWords {
			return
		}
		*longest = strings.Join(words[:len(words)-1], " ")
	}
}

func totalWords(b *Bullets) int {
	n := 0
	for _, s := range []string{b.Symptoms, b.Context, b.RootCause, b.Fix, b.AppliesWhen} {
		n += len(strings.Fields(s))
	}
	return n
}

// longestBullet returns the bullet with the most words; ties resolve in
// field order so compression is deterministic.
func longestBullet(b *Bullets) *string {
	fields := []*string{&b.Symptoms, &b.Context, &b.RootCause, &b.Fix, &b.AppliesWhen}
	longest := fields[0]
	for _, f := range fields[1:] {
		if len(strings.Fields(*f)) > len(strings.Fields(*longest)) {
			longest = f
		}
	}
	return longest
}
