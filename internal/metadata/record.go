package metadata

import "time"

// DataType identifies a semantic metadata field that a provider may support.
type DataType string

const (
	DataTypeTitle           DataType = "title"
	DataTypeAuthors         DataType = "authors"
	DataTypeISBN            DataType = "isbn"
	DataTypePublisher       DataType = "publisher"
	DataTypePublicationDate DataType = "publication_date"
	DataTypeDescription     DataType = "description"
	DataTypeSubjects        DataType = "subjects"
	DataTypeSeries          DataType = "series"
	DataTypeLanguage        DataType = "language"
	DataTypePageCount       DataType = "page_count"
	DataTypeCover           DataType = "cover"
	DataTypeRating          DataType = "rating"
)

// Record is one provider's answer to a query. Records are immutable once
// produced and live only for the duration of a single query.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`

	Title           string         `json:"title,omitempty" yaml:"title,omitempty"`
	Authors         []string       `json:"authors,omitempty" yaml:"authors,omitempty"`
	ISBN            []string       `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Publisher       string         `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	PublicationDate string         `json:"publication_date,omitempty" yaml:"publicationdate,omitempty"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	Subjects        []string       `json:"subjects,omitempty" yaml:"subjects,omitempty"`
	Series          string         `json:"series,omitempty" yaml:"series,omitempty"`
	PageCount       int            `json:"page_count,omitempty" yaml:"pagecount,omitempty"`
	Language        string         `json:"language,omitempty" yaml:"language,omitempty"`
	CoverImage      *CoverImage    `json:"cover_image,omitempty" yaml:"coverimage,omitempty"`
	Rating          *Rating        `json:"rating,omitempty" yaml:"rating,omitempty"`
	ProviderData    map[string]any `json:"provider_data,omitempty" yaml:"-"`
}

// CoverImage describes a cover image candidate from one source.
type CoverImage struct {
	URL      string `json:"url" yaml:"url"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int    `json:"height,omitempty" yaml:"height,omitempty"`
	Verified bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// Rating is an aggregate reader rating reported by one source.
type Rating struct {
	Average float64 `json:"average" yaml:"average"`
	Count   int     `json:"count" yaml:"count"`
}

// Review is a single reader review reported by one source.
type Review struct {
	Reviewer     string  `json:"reviewer,omitempty"`
	Text         string  `json:"text"`
	Rating       float64 `json:"rating,omitempty"`
	Verified     bool    `json:"verified,omitempty"`
	HelpfulVotes int     `json:"helpful_votes,omitempty"`
}

// Source identifies where a reconciled value came from. Many fields may
// share one source.
type Source struct {
	Name        string    `json:"name" yaml:"name"`
	Reliability float64   `json:"reliability" yaml:"reliability"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// SearchQuery is a multi-criteria search request. Empty fields are ignored.
type SearchQuery struct {
	Title           string   `json:"title,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Language        string   `json:"language,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
}

// IsEmpty reports whether no criteria are set.
func (q SearchQuery) IsEmpty() bool {
	return q.Title == "" && len(q.Authors) == 0 && q.ISBN == "" &&
		q.Publisher == "" && q.PublicationDate == "" && q.Language == "" &&
		len(q.Subjects) == 0
}

// RelevantTypes infers which field types matter for this query from which
// criteria are populated. An empty query assumes the core bibliographic set.
func (q SearchQuery) RelevantTypes() []DataType {
	if q.IsEmpty() {
		return []DataType{
			DataTypeTitle, DataTypeAuthors, DataTypeISBN,
			DataTypePublicationDate, DataTypeDescription,
		}
	}

	var types []DataType
	if q.Title != "" {
		types = append(types, DataTypeTitle)
	}
	if len(q.Authors) > 0 {
		types = append(types, DataTypeAuthors)
	}
	if q.ISBN != "" {
		types = append(types, DataTypeISBN)
	}
	if q.Language != "" {
		types = append(types, DataTypeLanguage)
	}
	if len(q.Subjects) > 0 {
		types = append(types, DataTypeSubjects)
	}
	if q.Publisher != "" {
		types = append(types, DataTypePublisher)
	}
	if q.PublicationDate != "" {
		types = append(types, DataTypePublicationDate)
	}
	return types
}
