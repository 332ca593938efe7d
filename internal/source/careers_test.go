package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const careersFixture = `<!DOCTYPE html>
<html><body>
  <ul class="openings">
    <li class="opening">
      <h3 class="role">Junior Data Engineer</h3>
      <span class="office">Berlin, Germany</span>
      <a href="/careers/123">Apply</a>
    </li>
    <li class="opening">
      <h3 class="role">Software Engineer Intern</h3>
      <span class="office">Remote</span>
      <a href="https://jobs.example.com/456">Apply</a>
    </li>
    <li class="opening">
      <h3 class="role"></h3>
      <span class="office">Paris</span>
      <a href="/careers/789">Apply</a>
    </li>
  </ul>
</body></html>`

func careersConfig(url string) CareersConfig {
	return CareersConfig{
		Name:        "acme-careers",
		URL:         url,
		Company:     "Acme",
		ItemSel:     "li.opening",
		TitleSel:    "h3.role",
		LocationSel: "span.office",
	}
}

func TestCareersPageFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(careersFixture))
	}))
	defer srv.Close()

	page, err := NewCareersPage(careersConfig(srv.URL + "/careers"))
	if err != nil {
		t.Fatalf("NewCareersPage failed: %v", err)
	}

	postings, err := page.FetchPage(context.Background(), "", "", 1)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	// The titleless listing is dropped.
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	first := postings[0]
	if first.Title != "Junior Data Engineer" || first.Company != "Acme" {
		t.Fatalf("unexpected first posting: %+v", first)
	}
	if first.Location != "Berlin, Germany" {
		t.Fatalf("unexpected location: %q", first.Location)
	}
	if first.URL != srv.URL+"/careers/123" {
		t.Fatalf("relative links must resolve against the page url, got %q", first.URL)
	}
	if postings[1].URL != "https://jobs.example.com/456" {
		t.Fatalf("absolute links must pass through, got %q", postings[1].URL)
	}
}

func TestCareersPageSecondPageIsEmpty(t *testing.T) {
	page, err := NewCareersPage(careersConfig("https://example.com/careers"))
	if err != nil {
		t.Fatalf("NewCareersPage failed: %v", err)
	}

	postings, err := page.FetchPage(context.Background(), "", "", 2)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("careers pages are single-page listings, got %d", len(postings))
	}
}

func TestCareersPageRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	page, err := NewCareersPage(careersConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewCareersPage failed: %v", err)
	}

	if _, err := page.FetchPage(context.Background(), "", "", 1); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNewCareersPageValidation(t *testing.T) {
	if _, err := NewCareersPage(CareersConfig{URL: "https://x", ItemSel: "li"}); err == nil {
		t.Fatalf("expected an error for a missing name")
	}
	if _, err := NewCareersPage(CareersConfig{Name: "x", URL: "https://x"}); err == nil {
		t.Fatalf("expected an error for a missing item-selector")
	}
}
