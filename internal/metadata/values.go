package metadata

// DatePrecision describes how specific a publication date is.
type DatePrecision int

const (
	PrecisionNone DatePrecision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

func (p DatePrecision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	default:
		return "none"
	}
}

// PublicationDate carries both the raw string a source reported and the
// parsed components. Precision records how much of the date was present.
type PublicationDate struct {
	Raw       string        `json:"raw" yaml:"raw"`
	Year      int           `json:"year,omitempty" yaml:"year,omitempty"`
	Month     int           `json:"month,omitempty" yaml:"month,omitempty"`
	Day       int           `json:"day,omitempty" yaml:"day,omitempty"`
	Precision DatePrecision `json:"precision" yaml:"precision"`
}

// Canonical returns the normalized ISO-style form at the date's precision.
func (d PublicationDate) Canonical() string {
	switch d.Precision {
	case PrecisionDay:
		return itoa4(d.Year) + "-" + itoa2(d.Month) + "-" + itoa2(d.Day)
	case PrecisionMonth:
		return itoa4(d.Year) + "-" + itoa2(d.Month)
	case PrecisionYear:
		return itoa4(d.Year)
	default:
		return ""
	}
}

// SameMoment reports whether two dates agree on every component they both
// specify. A year-only date and a full date in the same year agree.
func (d PublicationDate) SameMoment(other PublicationDate) bool {
	if d.Precision == PrecisionNone || other.Precision == PrecisionNone {
		return false
	}
	if d.Year != other.Year {
		return false
	}
	if d.Precision >= PrecisionMonth && other.Precision >= PrecisionMonth && d.Month != other.Month {
		return false
	}
	if d.Precision >= PrecisionDay && other.Precision >= PrecisionDay && d.Day != other.Day {
		return false
	}
	return true
}

func itoa4(n int) string {
	return pad(n, 4)
}

func itoa2(n int) string {
	return pad(n, 2)
}

func pad(n, width int) string {
	digits := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}

// SubjectKind orders subject entries in reconciled output.
type SubjectKind string

const (
	SubjectKindSubject SubjectKind = "subject"
	SubjectKindGenre   SubjectKind = "genre"
	SubjectKindKeyword SubjectKind = "keyword"
	SubjectKindTag     SubjectKind = "tag"
)

// Rank returns the output ordering rank for a subject kind (lower first).
func (k SubjectKind) Rank() int {
	switch k {
	case SubjectKindSubject:
		return 0
	case SubjectKindGenre:
		return 1
	case SubjectKindKeyword:
		return 2
	default:
		return 3
	}
}

// Subject is one subject heading, genre, keyword, or tag with both the raw
// form a source supplied and the normalized canonical form.
type Subject struct {
	Raw        string      `json:"raw" yaml:"raw"`
	Normalized string      `json:"normalized" yaml:"normalized"`
	Kind       SubjectKind `json:"kind" yaml:"kind"`
	Code       string      `json:"code,omitempty" yaml:"code,omitempty"`
	Scheme     string      `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// IdentifierType enumerates the identifier schemes the engine understands.
type IdentifierType string

const (
	IdentifierISBN10 IdentifierType = "isbn10"
	IdentifierISBN13 IdentifierType = "isbn13"
	IdentifierDOI    IdentifierType = "doi"
	IdentifierOCLC   IdentifierType = "oclc"
	IdentifierLCCN   IdentifierType = "lccn"
	IdentifierASIN   IdentifierType = "asin"
)

// Identifier is one bibliographic identifier in raw and normalized form.
type Identifier struct {
	Type       IdentifierType `json:"type" yaml:"type"`
	Raw        string         `json:"raw" yaml:"raw"`
	Normalized string         `json:"normalized" yaml:"normalized"`
	Valid      bool           `json:"valid" yaml:"valid"`
}

// Publisher is a publisher name in raw and normalized form.
type Publisher struct {
	Raw        string `json:"raw" yaml:"raw"`
	Normalized string `json:"normalized" yaml:"normalized"`
}

// Series is a series membership claim in raw and normalized form.
type Series struct {
	Raw        string  `json:"raw" yaml:"raw"`
	Normalized string  `json:"normalized" yaml:"normalized"`
	Position   float64 `json:"position,omitempty" yaml:"position,omitempty"`
}
