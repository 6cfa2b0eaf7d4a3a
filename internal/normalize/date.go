package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openshelf/enricher/internal/metadata"
)

var (
	yearOnly  = regexp.MustCompile(`^\(?(?:c|©)?\s*(\d{4})\)?\.?$`)
	yearMonth = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	fullDate  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	usDate    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	looseYear = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)
)

// Month-name layouts in descending precision, tried in order.
var namedLayouts = []struct {
	layout    string
	precision metadata.DatePrecision
}{
	{"January 2, 2006", metadata.PrecisionDay},
	{"Jan 2, 2006", metadata.PrecisionDay},
	{"2 January 2006", metadata.PrecisionDay},
	{"January 2006", metadata.PrecisionMonth},
	{"Jan 2006", metadata.PrecisionMonth},
}

// Date parses the publication date strings providers emit (ISO dates,
// year-only, US slash dates, month names, copyright years) into a
// PublicationDate with explicit precision. Unparseable input yields
// PrecisionNone with the raw string preserved.
func Date(raw string) metadata.PublicationDate {
	d := metadata.PublicationDate{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return d
	}

	if m := fullDate.FindStringSubmatch(s); m != nil {
		d.Year = atoi(m[1])
		d.Month = atoi(m[2])
		d.Day = atoi(m[3])
		d.Precision = metadata.PrecisionDay
		return clamp(d)
	}
	if m := usDate.FindStringSubmatch(s); m != nil {
		d.Month = atoi(m[1])
		d.Day = atoi(m[2])
		d.Year = atoi(m[3])
		d.Precision = metadata.PrecisionDay
		return clamp(d)
	}
	if m := yearMonth.FindStringSubmatch(s); m != nil {
		d.Year = atoi(m[1])
		d.Month = atoi(m[2])
		d.Precision = metadata.PrecisionMonth
		return clamp(d)
	}
	if m := yearOnly.FindStringSubmatch(s); m != nil {
		d.Year = atoi(m[1])
		d.Precision = metadata.PrecisionYear
		return d
	}

	for _, nl := range namedLayouts {
		if t, err := time.Parse(nl.layout, s); err == nil {
			d.Year = t.Year()
			d.Month = int(t.Month())
			if nl.precision == metadata.PrecisionDay {
				d.Day = t.Day()
			}
			d.Precision = nl.precision
			return d
		}
	}

	// Last resort: a four-digit year anywhere in the string ("New York, 1925").
	if m := looseYear.FindStringSubmatch(s); m != nil {
		d.Year = atoi(m[1])
		d.Precision = metadata.PrecisionYear
	}
	return d
}

func clamp(d metadata.PublicationDate) metadata.PublicationDate {
	if d.Month < 1 || d.Month > 12 {
		d.Month = 0
		d.Day = 0
		d.Precision = metadata.PrecisionYear
		return d
	}
	if d.Precision == metadata.PrecisionDay && (d.Day < 1 || d.Day > 31) {
		d.Day = 0
		d.Precision = metadata.PrecisionMonth
	}
	return d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimLeft(s, "0"))
	return n
}
