package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/retry"
)

const openLibraryFixture = `{
	"numFound": 1,
	"docs": [
		{
			"key": "/works/OL468431W",
			"title": "The Great Gatsby",
			"author_name": ["F. Scott Fitzgerald"],
			"isbn": ["9780743273565", "0743273567"],
			"publisher": ["Scribner", "Penguin"],
			"first_publish_year": 1925,
			"publish_date": ["April 10, 1925"],
			"language": ["eng"],
			"subject": ["American fiction", "Classics"],
			"number_of_pages_median": 180,
			"cover_i": 8432047
		}
	]
}`

func newOpenLibraryServer(t *testing.T, handler http.HandlerFunc) (*OpenLibrary, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewOpenLibrary()
	provider.BaseURL = server.URL
	return provider, server
}

func TestOpenLibrarySearchByTitle(t *testing.T) {
	var gotPath, gotTitle string
	provider, _ := newOpenLibraryServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.URL.Query().Get("title")
		w.Write([]byte(openLibraryFixture))
	})

	records, err := provider.SearchByTitle(context.Background(), "The Great Gatsby")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}

	if gotPath != "/search.json" {
		t.Errorf("path = %q, want /search.json", gotPath)
	}
	if gotTitle != "The Great Gatsby" {
		t.Errorf("title param = %q", gotTitle)
	}

	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	if r.Source != "openlibrary" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.ID == "" {
		t.Error("records need generated IDs")
	}
	if r.Title != "The Great Gatsby" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Publisher != "Scribner" {
		t.Errorf("Publisher = %q, want the first listed", r.Publisher)
	}
	if r.PublicationDate != "April 10, 1925" {
		t.Errorf("PublicationDate = %q, want the publish_date over first_publish_year", r.PublicationDate)
	}
	if r.PageCount != 180 {
		t.Errorf("PageCount = %d", r.PageCount)
	}
	if r.CoverImage == nil || r.CoverImage.URL != "https://covers.openlibrary.org/b/id/8432047-L.jpg" {
		t.Errorf("CoverImage = %+v", r.CoverImage)
	}
	if r.Confidence <= 0.5 || r.Confidence > 0.95 {
		t.Errorf("Confidence = %v, want the completeness range", r.Confidence)
	}
}

func TestOpenLibrarySearchByISBN(t *testing.T) {
	var gotISBN string
	provider, _ := newOpenLibraryServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotISBN = r.URL.Query().Get("isbn")
		w.Write([]byte(`{"numFound": 0, "docs": []}`))
	})

	records, err := provider.SearchByISBN(context.Background(), "9780743273565")
	if err != nil {
		t.Fatalf("SearchByISBN: %v", err)
	}
	if gotISBN != "9780743273565" {
		t.Errorf("isbn param = %q", gotISBN)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestOpenLibraryMultiCriteriaParams(t *testing.T) {
	var got map[string]string
	provider, _ := newOpenLibraryServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"title":   r.URL.Query().Get("title"),
			"author":  r.URL.Query().Get("author"),
			"subject": r.URL.Query().Get("subject"),
		}
		w.Write([]byte(`{"numFound": 0, "docs": []}`))
	})

	query := metadata.SearchQuery{
		Title:    "Dune",
		Authors:  []string{"Frank Herbert"},
		Subjects: []string{"science fiction"},
	}
	if _, err := provider.SearchByMultiCriteria(context.Background(), query); err != nil {
		t.Fatal(err)
	}
	if got["title"] != "Dune" || got["author"] != "Frank Herbert" || got["subject"] != "science fiction" {
		t.Errorf("params = %v", got)
	}
}

func TestOpenLibraryErrorCarriesStatusAndRetryAfter(t *testing.T) {
	provider, _ := newOpenLibraryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	})

	_, err := provider.SearchByTitle(context.Background(), "Dune")
	if err == nil {
		t.Fatal("expected an error for 429")
	}

	var pe *retry.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *retry.ProviderError", err)
	}
	if pe.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", pe.StatusCode)
	}
	if pe.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", pe.RetryAfter)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "45", 45 * time.Second},
		{"negative", "-3", 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestRecordCompleteness(t *testing.T) {
	empty := recordCompleteness(metadata.Record{})
	if empty != 0.5 {
		t.Errorf("empty record = %v, want the 0.5 floor", empty)
	}

	var full metadata.Record
	full.Title = "Dune"
	full.Authors = []string{"Frank Herbert"}
	full.ISBN = []string{"9780441013593"}
	full.Publisher = "Ace"
	full.PublicationDate = "1965"
	full.Subjects = []string{"science fiction"}
	full.Language = "en"
	if got := recordCompleteness(full); got != 0.95 {
		t.Errorf("full record = %v, want 0.95", got)
	}

	if recordCompleteness(full) <= empty {
		t.Error("completeness must grow with filled fields")
	}
}
