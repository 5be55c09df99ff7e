package knowledge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/hindsight/internal/errors"
	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

// Write renders a session's entries and persists them as a learning log in
// dir, named learning-{YYYYMMDD-HHMMSS}.md from the record timestamp.
// Creation is exclusive: if two captures land on the same second, the loser
// of the O_EXCL race retries once with a ULID suffix instead of overwriting.
// Returns the absolute path of the created file.
func Write(dir string, rec *session.Record, entries []learning.Entry) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.NewIO(err)
	}

	content := Render(rec, entries)
	stamp := session.FormatStamp(rec.Timestamp)

	path := filepath.Join(dir, "learning-"+stamp+".md")
	err := writeExclusive(path, content)
	if os.IsExist(err) {
		suffix := strings.ToLower(ulid.Make().String())
		path = filepath.Join(dir, "learning-"+stamp+"-"+suffix+".md")
		err = writeExclusive(path, content)
	}
	if err != nil {
		return "", errors.NewIO(err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewIO(err)
	}
	return abs, nil
}

func writeExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the learning log files in dir, sorted by name. The timestamp
// in the filename makes name order chronological.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "learning-*.md"))
	if err != nil {
		return nil, errors.NewIO(err)
	}
	return matches, nil
}

// Verification outcomes for a written learning log.
const (
	LogOK        = "ok"
	LogMissing   = "missing"
	LogMalformed = "malformed"
)

// VerifyLog checks that the log at path still carries every entry's five
// sections in order. The H3 headings of a well-formed log are exact
// repetitions of EntrySections.
func VerifyLog(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return LogMissing
	}

	headings, err := ParseHeadings(data)
	if err != nil {
		return LogMalformed
	}

	var sections []string
	for _, h := range headings {
		if h.Level == 3 {
			sections = append(sections, h.Text)
		}
	}
	if len(sections) == 0 || len(sections)%len(EntrySections) != 0 {
		return LogMalformed
	}
	for i, text := range sections {
		if text != EntrySections[i%len(EntrySections)] {
			return LogMalformed
		}
	}
	return LogOK
}
