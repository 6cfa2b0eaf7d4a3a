package reconcile

import (
	"fmt"
	"sort"

	"github.com/openshelf/enricher/internal/metadata"
)

// ContentInput is one source's content-related claims. Zero-valued fields
// mean the source made no claim.
type ContentInput struct {
	Description        string
	DescriptionQuality float64 // explicit quality score in [0,1]; 0 = unscored
	TableOfContents    []string
	Reviews            []metadata.Review
	Rating             *metadata.Rating
	Cover              *metadata.CoverImage
	Excerpt            string
}

// ContentResult carries the reconciled content fields.
type ContentResult struct {
	Description     metadata.ReconciledField[string]
	TableOfContents metadata.ReconciledField[[]string]
	Reviews         metadata.ReconciledField[[]metadata.Review]
	Rating          metadata.ReconciledField[metadata.Rating]
	Cover           metadata.ReconciledField[metadata.CoverImage]
	Excerpt         metadata.ReconciledField[string]
}

// ReconcileContent merges descriptions, tables of contents, reviews,
// ratings, covers, and excerpts per source.
func (r *Reconciler) ReconcileContent(inputs []Input[ContentInput]) ContentResult {
	return ContentResult{
		Description:     r.reconcileDescription(inputs),
		TableOfContents: r.reconcileTOC(inputs),
		Reviews:         r.reconcileReviews(inputs),
		Rating:          r.reconcileRating(inputs),
		Cover:           r.reconcileCover(inputs),
		Excerpt:         r.reconcileExcerpt(inputs),
	}
}

// reconcileDescription picks the highest-quality description: an explicit
// quality score when present, otherwise a length and source-reliability
// heuristic.
func (r *Reconciler) reconcileDescription(inputs []Input[ContentInput]) metadata.ReconciledField[string] {
	type candidate struct {
		input Input[ContentInput]
		score float64
	}
	var candidates []candidate
	for _, in := range inputs {
		if in.Value.Description == "" {
			continue
		}
		score := in.Value.DescriptionQuality
		if score == 0 {
			length := float64(len(in.Value.Description))
			if length > 2000 {
				length = 2000
			}
			score = (length / 2000) * 0.6 * in.Source.Reliability
		}
		candidates = append(candidates, candidate{input: in, score: score})
	}
	if len(candidates) == 0 {
		return metadata.ReconciledField[string]{Reasoning: "no source supplied a description"}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}

	return metadata.ReconciledField[string]{
		Value:      best.input.Value.Description,
		Confidence: consensusConfidence(best.input.Source.Reliability, len(candidates)),
		Sources:    []metadata.Source{best.input.Source},
		Reasoning: fmt.Sprintf("highest-quality description of %d candidates, from %s",
			len(candidates), best.input.Source.Name),
	}
}

// reconcileTOC picks the most complete table of contents.
func (r *Reconciler) reconcileTOC(inputs []Input[ContentInput]) metadata.ReconciledField[[]string] {
	var best Input[ContentInput]
	count := 0
	for _, in := range inputs {
		if len(in.Value.TableOfContents) == 0 {
			continue
		}
		count++
		if len(in.Value.TableOfContents) > len(best.Value.TableOfContents) {
			best = in
		}
	}
	if count == 0 {
		return metadata.ReconciledField[[]string]{Reasoning: "no source supplied a table of contents"}
	}
	return metadata.ReconciledField[[]string]{
		Value:      best.Value.TableOfContents,
		Confidence: consensusConfidence(best.Source.Reliability, count),
		Sources:    []metadata.Source{best.Source},
		Reasoning: fmt.Sprintf("most complete table of contents (%d entries) from %s",
			len(best.Value.TableOfContents), best.Source.Name),
	}
}

// reconcileReviews keeps all reviews, verified purchases first, then by
// helpful votes.
func (r *Reconciler) reconcileReviews(inputs []Input[ContentInput]) metadata.ReconciledField[[]metadata.Review] {
	var reviews []metadata.Review
	var contributing []Input[ContentInput]
	for _, in := range inputs {
		if len(in.Value.Reviews) == 0 {
			continue
		}
		reviews = append(reviews, in.Value.Reviews...)
		contributing = append(contributing, in)
	}
	if len(reviews) == 0 {
		return metadata.ReconciledField[[]metadata.Review]{Reasoning: "no source supplied reviews"}
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].Verified != reviews[j].Verified {
			return reviews[i].Verified
		}
		return reviews[i].HelpfulVotes > reviews[j].HelpfulVotes
	})

	return metadata.ReconciledField[[]metadata.Review]{
		Value:      reviews,
		Confidence: consensusConfidence(0.7, len(contributing)),
		Sources:    sourcesOf(contributing),
		Reasoning: fmt.Sprintf("collected %d reviews from %d sources, verified first",
			len(reviews), len(contributing)),
	}
}

// reconcileRating averages ratings weighted by source reliability and sums
// sample counts.
func (r *Reconciler) reconcileRating(inputs []Input[ContentInput]) metadata.ReconciledField[metadata.Rating] {
	var weightedSum, weightTotal float64
	totalCount := 0
	var contributing []Input[ContentInput]

	for _, in := range inputs {
		if in.Value.Rating == nil || in.Value.Rating.Average <= 0 {
			continue
		}
		weight := in.Source.Reliability
		if weight <= 0 {
			weight = 0.1
		}
		weightedSum += in.Value.Rating.Average * weight
		weightTotal += weight
		totalCount += in.Value.Rating.Count
		contributing = append(contributing, in)
	}
	if weightTotal == 0 {
		return metadata.ReconciledField[metadata.Rating]{Reasoning: "no source supplied a rating"}
	}

	return metadata.ReconciledField[metadata.Rating]{
		Value:      metadata.Rating{Average: weightedSum / weightTotal, Count: totalCount},
		Confidence: consensusConfidence(0.6+0.1*float64(len(contributing)), len(contributing)),
		Sources:    sourcesOf(contributing),
		Reasoning: fmt.Sprintf("reliability-weighted average across %d sources, %d total ratings",
			len(contributing), totalCount),
	}
}

// reconcileCover picks the highest-resolution cover, preferring verified
// images over larger unverified ones.
func (r *Reconciler) reconcileCover(inputs []Input[ContentInput]) metadata.ReconciledField[metadata.CoverImage] {
	var best Input[ContentInput]
	count := 0
	for _, in := range inputs {
		if in.Value.Cover == nil || in.Value.Cover.URL == "" {
			continue
		}
		count++
		if best.Value.Cover == nil {
			best = in
			continue
		}
		current, candidate := best.Value.Cover, in.Value.Cover
		if candidate.Verified != current.Verified {
			if candidate.Verified {
				best = in
			}
			continue
		}
		if candidate.Width*candidate.Height > current.Width*current.Height {
			best = in
		}
	}
	if count == 0 {
		return metadata.ReconciledField[metadata.CoverImage]{Reasoning: "no source supplied a cover image"}
	}
	return metadata.ReconciledField[metadata.CoverImage]{
		Value:      *best.Value.Cover,
		Confidence: consensusConfidence(best.Source.Reliability, count),
		Sources:    []metadata.Source{best.Source},
		Reasoning: fmt.Sprintf("highest-resolution cover (%dx%d, verified=%t) from %s",
			best.Value.Cover.Width, best.Value.Cover.Height, best.Value.Cover.Verified, best.Source.Name),
	}
}

// reconcileExcerpt picks the longest excerpt.
func (r *Reconciler) reconcileExcerpt(inputs []Input[ContentInput]) metadata.ReconciledField[string] {
	var best Input[ContentInput]
	count := 0
	for _, in := range inputs {
		if in.Value.Excerpt == "" {
			continue
		}
		count++
		if len(in.Value.Excerpt) > len(best.Value.Excerpt) {
			best = in
		}
	}
	if count == 0 {
		return metadata.ReconciledField[string]{Reasoning: "no source supplied an excerpt"}
	}
	return metadata.ReconciledField[string]{
		Value:      best.Value.Excerpt,
		Confidence: consensusConfidence(best.Source.Reliability, count),
		Sources:    []metadata.Source{best.Source},
		Reasoning:  fmt.Sprintf("longest excerpt (%d chars) from %s", len(best.Value.Excerpt), best.Source.Name),
	}
}
