package knowledge

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/hpungsan/hindsight/internal/errors"
)

func TestWrite_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	rec, entries := testRecord(t, 1)

	path, err := Write(dir, rec, entries)
	if err != nil {
		t.Fatal(err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}
	if want := "learning-20250314-092653.md"; filepath.Base(path) != want {
		t.Errorf("filename = %q, want %q", filepath.Base(path), want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Session Learning Log") {
		t.Error("written file does not start with the log header")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestWrite_SameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	rec, entries := testRecord(t, 1)

	first, err := Write(dir, rec, entries)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Write(dir, rec, entries)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("colliding timestamps must yield distinct files")
	}
	if !strings.HasPrefix(filepath.Base(second), "learning-20250314-092653-") {
		t.Errorf("collision filename = %q, want stamp plus suffix", filepath.Base(second))
	}
}

func TestWrite_ConcurrentSameSecond(t *testing.T) {
	dir := t.TempDir()
	rec, entries := testRecord(t, 1)

	const writers = 8
	paths := make([]string, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := range writers {
		go func() {
			defer wg.Done()
			paths[i], errs[i] = Write(dir, rec, entries)
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, writers)
	for i := range writers {
		if errs[i] != nil {
			t.Fatalf("writer %d failed: %v", i, errs[i])
		}
		if seen[paths[i]] {
			t.Fatalf("writers produced the same path %q", paths[i])
		}
		seen[paths[i]] = true
	}

	files, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != writers {
		t.Errorf("got %d files, want one per writer (%d)", len(files), writers)
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced here")
	}

	parent := t.TempDir()
	dir := filepath.Join(parent, "locked")
	if err := os.Mkdir(dir, 0500); err != nil {
		t.Fatal(err)
	}

	rec, entries := testRecord(t, 1)
	_, err := Write(dir, rec, entries)
	if err == nil {
		t.Fatal("expected an error writing to an unwritable directory")
	}
	if !errors.Is(err, errors.ErrIO) {
		t.Errorf("error code = %v, want IO", err)
	}
}

func TestWrite_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "knowledge", "nested")
	rec, entries := testRecord(t, 1)

	if _, err := Write(dir, rec, entries); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0700 {
		t.Errorf("dir mode = %v, want 0700", info.Mode().Perm())
	}
}

func TestVerifyLog(t *testing.T) {
	dir := t.TempDir()
	rec, entries := testRecord(t, 2)

	path, err := Write(dir, rec, entries)
	if err != nil {
		t.Fatal(err)
	}
	if got := VerifyLog(path); got != LogOK {
		t.Errorf("VerifyLog(intact) = %q, want %q", got, LogOK)
	}

	if got := VerifyLog(filepath.Join(dir, "learning-gone.md")); got != LogMissing {
		t.Errorf("VerifyLog(absent) = %q, want %q", got, LogMissing)
	}

	// Truncating a section heading breaks the layout.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	broken := strings.Replace(string(data), "### Resolution\n", "", 1)
	if err := os.WriteFile(path, []byte(broken), 0600); err != nil {
		t.Fatal(err)
	}
	if got := VerifyLog(path); got != LogMalformed {
		t.Errorf("VerifyLog(broken) = %q, want %q", got, LogMalformed)
	}
}

func TestList_SortedByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"learning-20250314-110000.md", "learning-20250314-090000.md", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 learning logs", len(files))
	}
	if filepath.Base(files[0]) != "learning-20250314-090000.md" {
		t.Errorf("files not in chronological order: %v", files)
	}
}
