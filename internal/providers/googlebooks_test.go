package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openshelf/enricher/internal/metadata"
)

const googleBooksFixture = `{
	"totalItems": 1,
	"items": [
		{
			"id": "iXn5U2IzVH0C",
			"volumeInfo": {
				"title": "The Great Gatsby",
				"authors": ["F. Scott Fitzgerald"],
				"publisher": "Scribner",
				"publishedDate": "1925-04-10",
				"description": "Jay Gatsby pursues a dream across the bay.",
				"categories": ["Fiction"],
				"pageCount": 180,
				"language": "en",
				"averageRating": 3.9,
				"ratingsCount": 4200,
				"industryIdentifiers": [
					{"type": "ISBN_13", "identifier": "9780743273565"},
					{"type": "ISBN_10", "identifier": "0743273567"},
					{"type": "OTHER", "identifier": "OCLC:1234"}
				],
				"imageLinks": {"thumbnail": "http://books.google.com/thumb.jpg"}
			}
		}
	]
}`

func newGoogleBooksServer(t *testing.T, handler http.HandlerFunc) *GoogleBooks {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewGoogleBooks()
	provider.BaseURL = server.URL
	return provider
}

func TestGoogleBooksSearchByISBN(t *testing.T) {
	var gotQuery string
	provider := newGoogleBooksServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(googleBooksFixture))
	})

	records, err := provider.SearchByISBN(context.Background(), "9780743273565")
	if err != nil {
		t.Fatalf("SearchByISBN: %v", err)
	}
	if gotQuery != "isbn:9780743273565" {
		t.Errorf("q = %q", gotQuery)
	}

	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	if r.Source != "googlebooks" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.Title != "The Great Gatsby" {
		t.Errorf("Title = %q", r.Title)
	}
	// Only ISBN-typed identifiers carry over.
	if len(r.ISBN) != 2 {
		t.Errorf("ISBN = %v, want the two ISBN identifiers", r.ISBN)
	}
	if r.Rating == nil || r.Rating.Average != 3.9 || r.Rating.Count != 4200 {
		t.Errorf("Rating = %+v", r.Rating)
	}
	if r.CoverImage == nil || !r.CoverImage.Verified {
		t.Errorf("CoverImage = %+v, want a verified thumbnail", r.CoverImage)
	}
	if r.ProviderData["volume_id"] != "iXn5U2IzVH0C" {
		t.Errorf("ProviderData = %v", r.ProviderData)
	}
}

func TestGoogleBooksSubtitleJoined(t *testing.T) {
	provider := newGoogleBooksServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"id": "x", "volumeInfo": {"title": "Annihilation", "subtitle": "A Novel"}}]
		}`))
	})

	records, err := provider.SearchByTitle(context.Background(), "Annihilation")
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Title != "Annihilation: A Novel" {
		t.Errorf("Title = %q", records[0].Title)
	}
}

func TestGoogleBooksMultiCriteriaQuery(t *testing.T) {
	var gotQuery string
	provider := newGoogleBooksServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"totalItems": 0}`))
	})

	query := metadata.SearchQuery{Title: "Dune", Authors: []string{"Frank Herbert"}}
	if _, err := provider.SearchByMultiCriteria(context.Background(), query); err != nil {
		t.Fatal(err)
	}
	want := `intitle:"Dune" inauthor:"Frank Herbert"`
	if gotQuery != want {
		t.Errorf("q = %q, want %q", gotQuery, want)
	}
}

func TestGoogleBooksEmptyResult(t *testing.T) {
	provider := newGoogleBooksServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	})

	records, err := provider.SearchByTitle(context.Background(), "unheard of")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}
