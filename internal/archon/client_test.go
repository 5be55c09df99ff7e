package archon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStoreDocument(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]string{"document_id": "doc-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	id, err := c.StoreDocument(context.Background(), Document{
		Title:      "ImportError fix",
		Content:    "# ImportError fix",
		SourceType: SourceLearningCapture,
	}, Metadata{"session_id": "external-my-app-20250314-092653", "entry_id": "L001"})
	if err != nil {
		t.Fatal(err)
	}

	if id != "doc-123" {
		t.Errorf("document id = %q, want doc-123", id)
	}
	if gotPath != "/api/documents" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["source_type"] != SourceLearningCapture {
		t.Errorf("source_type = %v", gotBody["source_type"])
	}
	meta, _ := gotBody["metadata"].(map[string]any)
	if meta["entry_id"] != "L001" {
		t.Errorf("metadata = %v", gotBody["metadata"])
	}
}

func TestStoreDocument_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.StoreDocument(context.Background(), Document{Title: "t"}, nil); err == nil {
		t.Fatal("expected error for response without document_id")
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["query"] != "import error" {
			t.Errorf("query = %v", req["query"])
		}
		if req["max_results"] != float64(5) {
			t.Errorf("max_results = %v", req["max_results"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"content": "body", "title": "ImportError fix", "score": 0.91,
					"metadata": map[string]any{"entry_id": "L001"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	results, err := c.Search(context.Background(), "import error", SearchFilters{
		SourceTypes: LearningSourceTypes,
		MaxResults:  5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "ImportError fix" || results[0].Score != 0.91 {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	results, err := c.Search(context.Background(), "nothing", SearchFilters{MaxResults: 5})
	if err != nil {
		t.Fatalf("empty results are a success, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v", results)
	}
}

func TestPost_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Search(context.Background(), "q", SearchFilters{MaxResults: 1})
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond)
	if _, err := c.Search(context.Background(), "q", SearchFilters{MaxResults: 1}); err == nil {
		t.Fatal("expected timeout error")
	}
}
