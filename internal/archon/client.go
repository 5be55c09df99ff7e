// Package archon is the HTTP client for the Archon knowledge service, the
// external document store behind learning capture. Only the two endpoints
// the pipeline needs are wrapped: document storage and knowledge search.
package archon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Source types attached to stored documents and used to scope searches.
const (
	SourceLearningCapture = "learning_capture"
	SourceSessionCapture  = "session_capture"
	SourceMetacognition   = "metacognition"
)

// LearningSourceTypes scopes a search to documents this pipeline produced.
var LearningSourceTypes = []string{
	SourceLearningCapture, SourceSessionCapture, SourceMetacognition,
}

// Document is one stored knowledge document.
type Document struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}

// Metadata is free-form document metadata; keys the pipeline always sets
// include session_id, entry_id, trigger, and markdown_file.
type Metadata map[string]any

// SearchFilters narrow a knowledge search.
type SearchFilters struct {
	Project     string   `json:"project,omitempty"`
	SourceTypes []string `json:"source_types,omitempty"`
	MaxResults  int      `json:"max_results"`
}

// SearchResult is one hit from the knowledge base.
type SearchResult struct {
	Content  string         `json:"content"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Store is the document-store surface the pipeline depends on. The HTTP
// client implements it; tests substitute fakes.
type Store interface {
	// StoreDocument persists one document and returns its document ID.
	StoreDocument(ctx context.Context, doc Document, meta Metadata) (string, error)

	// Search queries the knowledge base.
	Search(ctx context.Context, query string, filters SearchFilters) ([]SearchResult, error)
}

// Client talks to an Archon server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL. The timeout bounds each
// request end to end; forwarding never blocks a capture indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// StoreDocument implements Store.
func (c *Client) StoreDocument(ctx context.Context, doc Document, meta Metadata) (string, error) {
	payload := struct {
		Document
		Metadata Metadata `json:"metadata,omitempty"`
	}{doc, meta}

	var resp struct {
		DocumentID string `json:"document_id"`
	}
	if err := c.post(ctx, "/api/documents", payload, &resp); err != nil {
		return "", err
	}
	if resp.DocumentID == "" {
		return "", fmt.Errorf("archon: store response missing document_id")
	}
	return resp.DocumentID, nil
}

// Search implements Store.
func (c *Client) Search(ctx context.Context, query string, filters SearchFilters) ([]SearchResult, error) {
	payload := struct {
		Query string `json:"query"`
		SearchFilters
	}{query, filters}

	var resp struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.post(ctx, "/api/search", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("archon: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("archon: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("archon: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("archon: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("archon: decode response: %w", err)
	}
	return nil
}
