// Package catalog reads existing catalog entries for duplicate screening.
// The engine never writes the catalog; entries come from an export file
// (Parquet or JSONL) produced by the catalog system.
package catalog

// Entry is one existing catalog record, limited to the fields duplicate
// detection compares.
type Entry struct {
	ID              string   `json:"id" parquet:"id" yaml:"id"`
	Title           string   `json:"title" parquet:"title" yaml:"title"`
	Authors         []string `json:"authors" parquet:"authors,list" yaml:"authors"`
	ISBN            []string `json:"isbn" parquet:"isbn,list" yaml:"isbn"`
	PublicationDate string   `json:"publication_date" parquet:"publication_date" yaml:"publicationdate"`
	Publisher       string   `json:"publisher" parquet:"publisher" yaml:"publisher"`
	Series          string   `json:"series" parquet:"series" yaml:"series"`
}
