package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/ratelimit"
	"github.com/openshelf/enricher/internal/retry"
)

// GoogleBooks queries the Google Books volumes API. An API key is optional
// for search but raises quota; it is read from GOOGLE_BOOKS_API_KEY.
type GoogleBooks struct {
	BaseURL    string
	priority   int
	httpClient *http.Client
}

// NewGoogleBooks returns a Google Books provider with default settings.
func NewGoogleBooks() *GoogleBooks {
	return &GoogleBooks{
		BaseURL:  "https://www.googleapis.com/books/v1",
		priority: 90,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (g *GoogleBooks) Name() string  { return "googlebooks" }
func (g *GoogleBooks) Priority() int { return g.priority }

var googleBooksReliability = map[metadata.DataType]float64{
	metadata.DataTypeTitle:           0.95,
	metadata.DataTypeAuthors:         0.9,
	metadata.DataTypeISBN:            0.95,
	metadata.DataTypePublisher:       0.85,
	metadata.DataTypePublicationDate: 0.85,
	metadata.DataTypeDescription:     0.85,
	metadata.DataTypeSubjects:        0.65,
	metadata.DataTypeLanguage:        0.9,
	metadata.DataTypePageCount:       0.85,
	metadata.DataTypeCover:           0.8,
	metadata.DataTypeRating:          0.7,
}

func (g *GoogleBooks) SupportsDataType(t metadata.DataType) bool {
	_, ok := googleBooksReliability[t]
	return ok
}

func (g *GoogleBooks) ReliabilityScore(t metadata.DataType) float64 {
	return googleBooksReliability[t]
}

func (g *GoogleBooks) SupportedLanguages() []string {
	return []string{"en", "fr", "de", "es", "it", "pt", "nl", "ja", "zh", "ko"}
}

func (g *GoogleBooks) RateLimit() ratelimit.Config {
	return ratelimit.Config{Window: time.Minute, MaxRequests: 100}
}

func (g *GoogleBooks) Timeout() time.Duration { return 20 * time.Second }

func (g *GoogleBooks) SearchByTitle(ctx context.Context, title string) ([]metadata.Record, error) {
	return g.search(ctx, fmt.Sprintf("intitle:%q", title))
}

func (g *GoogleBooks) SearchByISBN(ctx context.Context, isbn string) ([]metadata.Record, error) {
	return g.search(ctx, "isbn:"+isbn)
}

func (g *GoogleBooks) SearchByCreator(ctx context.Context, creator string) ([]metadata.Record, error) {
	return g.search(ctx, fmt.Sprintf("inauthor:%q", creator))
}

func (g *GoogleBooks) SearchByMultiCriteria(ctx context.Context, query metadata.SearchQuery) ([]metadata.Record, error) {
	var terms []string
	if query.Title != "" {
		terms = append(terms, fmt.Sprintf("intitle:%q", query.Title))
	}
	for _, author := range query.Authors {
		terms = append(terms, fmt.Sprintf("inauthor:%q", author))
	}
	if query.ISBN != "" {
		terms = append(terms, "isbn:"+query.ISBN)
	}
	if query.Publisher != "" {
		terms = append(terms, fmt.Sprintf("inpublisher:%q", query.Publisher))
	}
	for _, subject := range query.Subjects {
		terms = append(terms, fmt.Sprintf("subject:%q", subject))
	}
	return g.search(ctx, strings.Join(terms, " "))
}

type googleVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Subtitle            string   `json:"subtitle"`
		Authors             []string `json:"authors"`
		Publisher           string   `json:"publisher"`
		PublishedDate       string   `json:"publishedDate"`
		Description         string   `json:"description"`
		Categories          []string `json:"categories"`
		PageCount           int      `json:"pageCount"`
		Language            string   `json:"language"`
		AverageRating       float64  `json:"averageRating"`
		RatingsCount        int      `json:"ratingsCount"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail string `json:"thumbnail"`
			Large     string `json:"large"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (g *GoogleBooks) search(ctx context.Context, query string) ([]metadata.Record, error) {
	params := url.Values{"q": {query}, "maxResults": {"10"}}
	if key := os.Getenv("GOOGLE_BOOKS_API_KEY"); key != "" {
		params.Set("key", key)
	}
	searchURL := fmt.Sprintf("%s/volumes?%s", g.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query google books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.ProviderError{
			Op:         "googlebooks.search",
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var result struct {
		TotalItems int            `json:"totalItems"`
		Items      []googleVolume `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode google books response: %w", err)
	}

	records := make([]metadata.Record, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, g.toRecord(item))
	}
	return records, nil
}

func (g *GoogleBooks) toRecord(item googleVolume) metadata.Record {
	info := item.VolumeInfo

	title := info.Title
	if info.Subtitle != "" {
		title = title + ": " + info.Subtitle
	}

	record := metadata.Record{
		ID:              uuid.NewString(),
		Source:          g.Name(),
		Timestamp:       time.Now(),
		Title:           title,
		Authors:         info.Authors,
		Publisher:       info.Publisher,
		PublicationDate: info.PublishedDate,
		Description:     info.Description,
		Subjects:        info.Categories,
		PageCount:       info.PageCount,
		Language:        info.Language,
		ProviderData: map[string]any{
			"volume_id": item.ID,
		},
	}

	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10", "ISBN_13":
			record.ISBN = append(record.ISBN, id.Identifier)
		}
	}

	if info.AverageRating > 0 {
		record.Rating = &metadata.Rating{Average: info.AverageRating, Count: info.RatingsCount}
	}

	if info.ImageLinks.Large != "" {
		record.CoverImage = &metadata.CoverImage{URL: info.ImageLinks.Large, Width: 800, Height: 1200, Verified: true}
	} else if info.ImageLinks.Thumbnail != "" {
		record.CoverImage = &metadata.CoverImage{URL: info.ImageLinks.Thumbnail, Width: 128, Height: 192, Verified: true}
	}

	record.Confidence = recordCompleteness(record)
	return record
}
