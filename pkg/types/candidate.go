// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-engine pipeline.
package types

// Candidate is one externally authored publication record loaded from a
// per-author corpus CSV and scored against the query abstract.
type Candidate struct {
	// Title is the publication title as recorded by the collector.
	Title string `json:"title" yaml:"title"`

	// Abstract is the publication abstract. Records with an empty
	// abstract never leave the corpus loader.
	Abstract string `json:"abstract" yaml:"abstract"`

	// SourceCSV is the base name of the per-author table the record came
	// from. Provenance only; it plays no role in scoring or dedup.
	SourceCSV string `json:"source_csv" yaml:"source_csv"`

	// Year is the publication year, zero when the collector had none.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the citation count reported by the collector.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// ConferenceLink is the landing page or DOI URL for the publication.
	ConferenceLink string `json:"conference_link,omitempty" yaml:"conference_link,omitempty"`

	// PDFLink is an open-access PDF URL when one is known.
	PDFLink string `json:"pdf_link,omitempty" yaml:"pdf_link,omitempty"`
}

// RankedCandidate is a Candidate with its similarity score against the
// query abstract and its dense 1-based rank.
type RankedCandidate struct {
	Candidate `yaml:",inline"`

	// Similarity is the cosine similarity to the query abstract.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Rank is assigned by position after the stable descending sort:
	// 1-based, gap-free, never shared even for equal scores.
	Rank int `json:"rank" yaml:"rank"`
}
