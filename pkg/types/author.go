// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CommitteeMember is one row of the program-committee roster CSV produced
// by the upstream scraper (Name, Role, Affiliation, Country).
type CommitteeMember struct {
	Name        string `json:"name" yaml:"name"`
	Role        string `json:"role" yaml:"role"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Country     string `json:"country" yaml:"country"`
}

// AuthorProfile is a committee member resolved to an OpenAlex author record.
type AuthorProfile struct {
	// InputName is the roster name the profile was resolved from.
	InputName string `json:"input_name" yaml:"input_name"`

	// AuthorID is the bare OpenAlex author ID (e.g. "A5023888391").
	AuthorID string `json:"author_id" yaml:"author_id"`

	// DisplayName is the name OpenAlex records for the author.
	DisplayName string `json:"name" yaml:"name"`

	// URL is the canonical OpenAlex author URL.
	URL string `json:"url" yaml:"url"`

	// Homepage is the author's homepage when OpenAlex has one.
	Homepage string `json:"homepage,omitempty" yaml:"homepage,omitempty"`

	// HIndex is the author's h-index from OpenAlex summary stats.
	HIndex int `json:"hindex" yaml:"hindex"`

	// Affiliations lists institution display names, most recent first.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`

	// Confidence is the name-match confidence in [0,1]. Profiles below
	// the configured threshold are reported and dropped.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
