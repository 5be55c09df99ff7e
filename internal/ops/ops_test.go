package ops

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/db"
)

// fakeStore implements archon.Store for tests.
type fakeStore struct {
	mu          sync.Mutex
	storeCalls  int
	searchCalls int
	failStore   bool
	failSearch  bool
	docs        []archon.Document
	metas       []archon.Metadata
	results     []archon.SearchResult
	lastFilters archon.SearchFilters
}

func (f *fakeStore) StoreDocument(ctx context.Context, doc archon.Document, meta archon.Metadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls++
	if f.failStore {
		return "", errors.New("store unavailable")
	}
	f.docs = append(f.docs, doc)
	f.metas = append(f.metas, meta)
	return "doc-123", nil
}

func (f *fakeStore) Search(ctx context.Context, query string, filters archon.SearchFilters) ([]archon.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastFilters = filters
	if f.failSearch {
		return nil, errors.New("search unavailable")
	}
	return f.results, nil
}

func testEnv(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()
	base := t.TempDir()
	database, err := db.Init(base)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	cfg := config.DefaultConfig()
	return database, cfg, cfg.ResolveKnowledgeDir(base)
}
