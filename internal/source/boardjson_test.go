package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const boardFixture = `{
  "jobs": [
    {
      "id": "101",
      "title": "Graduate Analyst",
      "location": {"name": "London, UK"},
      "absolute_url": "https://boards.example.com/jobs/101",
      "updated_at": "2025-03-08"
    },
    {
      "id": "102",
      "title": "Backend Developer",
      "location": {"name": "Remote"},
      "absolute_url": "https://boards.example.com/jobs/102",
      "updated_at": "2025-03-09"
    }
  ]
}`

func boardConfig(url string) BoardConfig {
	return BoardConfig{
		Name:         "acme-board",
		URL:          url,
		Company:      "Acme",
		ItemsPath:    "jobs",
		IDPath:       "id",
		TitlePath:    "title",
		LocationPath: "location.name",
		URLPath:      "absolute_url",
		PostedPath:   "updated_at",
	}
}

func TestJSONBoardFetchPage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(boardFixture))
	}))
	defer srv.Close()

	board, err := NewJSONBoard(boardConfig(srv.URL + "/postings?q={query}&loc={location}&page={page}"))
	if err != nil {
		t.Fatalf("NewJSONBoard failed: %v", err)
	}

	postings, err := board.FetchPage(context.Background(), "analyst", "london", 1)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if gotPath != "/postings?q=analyst&loc=london&page=1" {
		t.Fatalf("placeholders not substituted, got %s", gotPath)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	first := postings[0]
	if first.ExternalID != "101" || first.Title != "Graduate Analyst" {
		t.Fatalf("unexpected first posting: %+v", first)
	}
	if first.Company != "Acme" {
		t.Fatalf("the configured company should fill the missing field, got %q", first.Company)
	}
	if first.Location != "London, UK" || first.PostedAt != "2025-03-08" {
		t.Fatalf("path-mapped fields wrong: %+v", first)
	}
}

func TestJSONBoardRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	board, err := NewJSONBoard(boardConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewJSONBoard failed: %v", err)
	}

	if _, err := board.FetchPage(context.Background(), "analyst", "london", 1); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestJSONBoardServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	board, err := NewJSONBoard(boardConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewJSONBoard failed: %v", err)
	}

	if _, err := board.FetchPage(context.Background(), "analyst", "london", 1); err == nil {
		t.Fatalf("expected an error on HTTP 500")
	}
}

func TestJSONBoardUnpagedSecondPageIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(boardFixture))
	}))
	defer srv.Close()

	cfg := boardConfig(srv.URL + "/postings") // no {page} placeholder
	board, err := NewJSONBoard(cfg)
	if err != nil {
		t.Fatalf("NewJSONBoard failed: %v", err)
	}

	postings, err := board.FetchPage(context.Background(), "analyst", "london", 2)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("an unpaged board must be empty past page 1, got %d", len(postings))
	}
}

func TestNewJSONBoardValidation(t *testing.T) {
	if _, err := NewJSONBoard(BoardConfig{URL: "https://x", ItemsPath: "jobs"}); err == nil {
		t.Fatalf("expected an error for a missing name")
	}
	if _, err := NewJSONBoard(BoardConfig{Name: "x", ItemsPath: "jobs"}); err == nil {
		t.Fatalf("expected an error for a missing url")
	}
	if _, err := NewJSONBoard(BoardConfig{Name: "x", URL: "https://x"}); err == nil {
		t.Fatalf("expected an error for a missing items-path")
	}
}
