package reconcile

import (
	"strconv"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/normalize"
)

// Reconciler merges the raw records of one query into a single preview
// record. It is pure and stateless: safe to share across goroutines.
type Reconciler struct {
	detector *Detector
}

// New builds a reconciler around a conflict detector.
func New(detector *Detector) *Reconciler {
	return &Reconciler{detector: detector}
}

// Result is the reconciled preview for one work plus the conflict summary.
type Result struct {
	Title           metadata.ReconciledField[string]                    `json:"title" yaml:"title"`
	Authors         metadata.ReconciledField[[]string]                  `json:"authors" yaml:"authors"`
	PublicationDate metadata.ReconciledField[metadata.PublicationDate]  `json:"publication_date" yaml:"publicationdate"`
	Publisher       metadata.ReconciledField[string]                    `json:"publisher" yaml:"publisher"`
	Identifiers     metadata.ReconciledField[[]metadata.Identifier]     `json:"identifiers" yaml:"identifiers"`
	Subjects        metadata.ReconciledField[[]metadata.Subject]        `json:"subjects" yaml:"subjects"`
	Description     metadata.ReconciledField[string]                    `json:"description" yaml:"description"`
	Language        metadata.ReconciledField[string]                    `json:"language" yaml:"language"`
	Series          metadata.ReconciledField[string]                    `json:"series" yaml:"series"`
	PageCount       metadata.ReconciledField[int]                       `json:"page_count" yaml:"pagecount"`
	Rating          metadata.ReconciledField[metadata.Rating]           `json:"rating" yaml:"rating"`
	Cover           metadata.ReconciledField[metadata.CoverImage]       `json:"cover" yaml:"cover"`
	Summary         Summary                                             `json:"conflict_summary" yaml:"conflictsummary"`
}

// Reconcile merges raw provider records field by field. reliability maps a
// source name to its reliability for attribution; nil falls back to each
// record's own confidence.
func (r *Reconciler) Reconcile(records []metadata.Record, reliability func(source string) float64) Result {
	sourceFor := func(rec metadata.Record) metadata.Source {
		score := rec.Confidence
		if reliability != nil {
			if s := reliability(rec.Source); s > 0 {
				score = s
			}
		}
		return metadata.Source{Name: rec.Source, Reliability: score, Timestamp: rec.Timestamp}
	}

	var (
		titles      []Input[string]
		authors     []Input[[]string]
		dates       []Input[metadata.PublicationDate]
		publishers  []Input[string]
		identifiers []Input[metadata.Identifier]
		subjects    []Input[metadata.Subject]
		languages   []Input[string]
		series      []Input[string]
		pageCounts  []Input[float64]
		content     []Input[ContentInput]
	)

	for _, rec := range records {
		src := sourceFor(rec)

		titles = append(titles, Input[string]{Value: rec.Title, Source: src})
		languages = append(languages, Input[string]{Value: rec.Language, Source: src})
		series = append(series, Input[string]{Value: rec.Series, Source: src})
		if len(rec.Authors) > 0 {
			authors = append(authors, Input[[]string]{Value: rec.Authors, Source: src})
		}
		if rec.PublicationDate != "" {
			dates = append(dates, Input[metadata.PublicationDate]{Value: normalize.Date(rec.PublicationDate), Source: src})
		}
		if rec.Publisher != "" {
			publishers = append(publishers, Input[string]{Value: rec.Publisher, Source: src})
		}
		for _, raw := range rec.ISBN {
			identifiers = append(identifiers, Input[metadata.Identifier]{Value: normalize.ClassifyISBN(raw), Source: src})
		}
		for _, raw := range rec.Subjects {
			subjects = append(subjects, Input[metadata.Subject]{Value: normalize.Subject(raw, metadata.SubjectKindSubject), Source: src})
		}
		if rec.PageCount > 0 {
			pageCounts = append(pageCounts, Input[float64]{Value: float64(rec.PageCount), Source: src})
		}

		ci := ContentInput{Description: rec.Description, Cover: rec.CoverImage, Rating: rec.Rating}
		if ci.Description != "" || ci.Cover != nil || ci.Rating != nil {
			content = append(content, Input[ContentInput]{Value: ci, Source: src})
		}
	}

	result := Result{
		Title:           r.reconcileString("title", titles, nil),
		Authors:         r.reconcileStringArray("authors", authors),
		PublicationDate: r.ReconcileDate(dates),
		Publisher:       r.ReconcilePublisher(publishers),
		Identifiers:     r.ReconcileIdentifiers(identifiers),
		Subjects:        r.ReconcileSubjects(subjects),
		Language:        r.reconcileString("language", languages, nil),
		Series:          r.reconcileString("series", series, nil),
		PageCount:       r.reconcilePageCount(pageCounts),
	}

	contentResult := r.ReconcileContent(content)
	result.Description = contentResult.Description
	result.Rating = contentResult.Rating
	result.Cover = contentResult.Cover

	result.Summary = r.detector.AnalyzeAllConflicts(result.conflictsByField())

	return result
}

// conflictsByField collects every reconciled field's conflicts so the
// summary never lags behind a field gaining a detector.
func (r Result) conflictsByField() map[string][]metadata.Conflict {
	return map[string][]metadata.Conflict{
		"title":            r.Title.Conflicts,
		"authors":          r.Authors.Conflicts,
		"publication_date": r.PublicationDate.Conflicts,
		"publisher":        r.Publisher.Conflicts,
		"identifiers":      r.Identifiers.Conflicts,
		"subjects":         r.Subjects.Conflicts,
		"description":      r.Description.Conflicts,
		"language":         r.Language.Conflicts,
		"series":           r.Series.Conflicts,
		"page_count":       r.PageCount.Conflicts,
		"rating":           r.Rating.Conflicts,
		"cover":            r.Cover.Conflicts,
	}
}

// reconcilePageCount picks the most reliable source's page count and flags
// numeric disagreement beyond the tolerance.
func (r *Reconciler) reconcilePageCount(inputs []Input[float64]) metadata.ReconciledField[int] {
	if len(inputs) == 0 {
		return metadata.ReconciledField[int]{Reasoning: "no source supplied a page count"}
	}

	chosen := mostReliable(inputs)
	conflicts := r.detector.DetectNumeric("page_count", chosen.Value, inputs)

	agreeing := len(inputs) - len(conflicts)
	if agreeing < 1 {
		agreeing = 1
	}
	confidence := consensusConfidence(chosen.Source.Reliability, agreeing)
	confidence = clamp01(confidence - disagreementPenalty*float64(len(conflicts)))

	return metadata.ReconciledField[int]{
		Value:      int(chosen.Value),
		Confidence: confidence,
		Sources:    sourcesOf(inputs),
		Reasoning: "page count " + strconv.Itoa(int(chosen.Value)) + " from " + chosen.Source.Name +
			" (most reliable of " + strconv.Itoa(len(inputs)) + " sources)",
		Conflicts: conflicts,
	}
}
