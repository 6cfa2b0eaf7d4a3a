package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/ratelimit"
	"github.com/openshelf/enricher/internal/retry"
)

// OpenLibrary queries the Open Library search API.
type OpenLibrary struct {
	BaseURL    string
	priority   int
	httpClient *http.Client
}

// NewOpenLibrary returns an Open Library provider with default settings.
func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{
		BaseURL:  "https://openlibrary.org",
		priority: 80,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenLibrary) Name() string  { return "openlibrary" }
func (o *OpenLibrary) Priority() int { return o.priority }

var openLibraryReliability = map[metadata.DataType]float64{
	metadata.DataTypeTitle:           0.9,
	metadata.DataTypeAuthors:         0.85,
	metadata.DataTypeISBN:            0.9,
	metadata.DataTypePublisher:       0.75,
	metadata.DataTypePublicationDate: 0.8,
	metadata.DataTypeSubjects:        0.7,
	metadata.DataTypeLanguage:        0.8,
	metadata.DataTypePageCount:       0.7,
	metadata.DataTypeCover:           0.75,
}

func (o *OpenLibrary) SupportsDataType(t metadata.DataType) bool {
	_, ok := openLibraryReliability[t]
	return ok
}

func (o *OpenLibrary) ReliabilityScore(t metadata.DataType) float64 {
	return openLibraryReliability[t]
}

func (o *OpenLibrary) SupportedLanguages() []string {
	return []string{"en", "fr", "de", "es", "it", "ru", "ja", "zh"}
}

func (o *OpenLibrary) RateLimit() ratelimit.Config {
	return ratelimit.Config{Window: time.Minute, MaxRequests: 60, RequestDelay: 100 * time.Millisecond}
}

func (o *OpenLibrary) Timeout() time.Duration { return 30 * time.Second }

func (o *OpenLibrary) SearchByTitle(ctx context.Context, title string) ([]metadata.Record, error) {
	return o.search(ctx, url.Values{"title": {title}})
}

func (o *OpenLibrary) SearchByISBN(ctx context.Context, isbn string) ([]metadata.Record, error) {
	return o.search(ctx, url.Values{"isbn": {isbn}})
}

func (o *OpenLibrary) SearchByCreator(ctx context.Context, creator string) ([]metadata.Record, error) {
	return o.search(ctx, url.Values{"author": {creator}})
}

func (o *OpenLibrary) SearchByMultiCriteria(ctx context.Context, query metadata.SearchQuery) ([]metadata.Record, error) {
	params := url.Values{}
	if query.Title != "" {
		params.Set("title", query.Title)
	}
	if len(query.Authors) > 0 {
		params.Set("author", strings.Join(query.Authors, " "))
	}
	if query.ISBN != "" {
		params.Set("isbn", query.ISBN)
	}
	if query.Publisher != "" {
		params.Set("publisher", query.Publisher)
	}
	if query.Language != "" {
		params.Set("lang", query.Language)
	}
	if len(query.Subjects) > 0 {
		params.Set("subject", strings.Join(query.Subjects, " "))
	}
	return o.search(ctx, params)
}

// openLibraryDoc mirrors the fields we read from a search result document.
type openLibraryDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	PublishDate      []string `json:"publish_date"`
	Language         []string `json:"language"`
	Subject          []string `json:"subject"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	CoverID          int64    `json:"cover_i"`
	Key              string   `json:"key"`
}

func (o *OpenLibrary) search(ctx context.Context, params url.Values) ([]metadata.Record, error) {
	params.Set("limit", "10")
	searchURL := fmt.Sprintf("%s/search.json?%s", o.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query openlibrary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.ProviderError{
			Op:         "openlibrary.search",
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var result struct {
		NumFound int              `json:"numFound"`
		Docs     []openLibraryDoc `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode openlibrary response: %w", err)
	}

	records := make([]metadata.Record, 0, len(result.Docs))
	for _, doc := range result.Docs {
		records = append(records, o.toRecord(doc))
	}
	return records, nil
}

func (o *OpenLibrary) toRecord(doc openLibraryDoc) metadata.Record {
	record := metadata.Record{
		ID:        uuid.NewString(),
		Source:    o.Name(),
		Timestamp: time.Now(),
		Title:     doc.Title,
		Authors:   doc.AuthorName,
		ISBN:      doc.ISBN,
		Subjects:  doc.Subject,
		PageCount: doc.NumberOfPages,
		ProviderData: map[string]any{
			"key": doc.Key,
		},
	}

	if len(doc.Publisher) > 0 {
		record.Publisher = doc.Publisher[0]
	}
	if len(doc.PublishDate) > 0 {
		record.PublicationDate = doc.PublishDate[0]
	} else if doc.FirstPublishYear > 0 {
		record.PublicationDate = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.Language) > 0 {
		record.Language = doc.Language[0]
	}
	if doc.CoverID > 0 {
		record.CoverImage = &metadata.CoverImage{
			URL:    fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID),
			Width:  500,
			Height: 750,
		}
	}

	record.Confidence = recordCompleteness(record)
	return record
}

// recordCompleteness scores a record by how many core fields it fills,
// scaled into a usable provider-confidence range.
func recordCompleteness(r metadata.Record) float64 {
	fields := 0
	filled := 0
	for _, present := range []bool{
		r.Title != "",
		len(r.Authors) > 0,
		len(r.ISBN) > 0,
		r.Publisher != "",
		r.PublicationDate != "",
		len(r.Subjects) > 0,
		r.Language != "",
	} {
		fields++
		if present {
			filled++
		}
	}
	return 0.5 + 0.45*float64(filled)/float64(fields)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
