// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call the
// OpenAlex API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Mailto is the email sent as the mailto parameter for OpenAlex
	// polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// ResolveConfig holds settings for the author-resolution stage.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxCandidates caps the author candidates fetched per roster name
	// (default 25).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// MinConfidence is the name-match confidence below which a profile
	// is dropped (default 0.52).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// RequestDelay is the pause between consecutive API calls (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// CollectConfig holds settings for the works-collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory receiving one CSV per author.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PerPage is the OpenAlex page size (max and default 200).
	PerPage int `json:"per_page" yaml:"per_page"`

	// YearMin drops works published before this year. Zero keeps all years.
	YearMin int `json:"year_min,omitempty" yaml:"year_min,omitempty"`

	// RequestsPerSecond bounds the client-side request rate (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Force re-collects authors whose output CSV already exists.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// EmbedConfig holds settings for the text-embedding stage. When ModelPath
// or TokenizerPath is empty or fails to load, the embedder falls back to
// the TF-IDF mode for the whole run.
type EmbedConfig struct {
	// ModelPath is the ONNX sentence-embedding model file.
	ModelPath string `json:"model_path,omitempty" yaml:"model_path,omitempty"`

	// TokenizerPath is the HuggingFace tokenizer.json for the model.
	TokenizerPath string `json:"tokenizer_path,omitempty" yaml:"tokenizer_path,omitempty"`

	// OrtLibrary is an explicit path to the onnxruntime shared library.
	OrtLibrary string `json:"ort_library,omitempty" yaml:"ort_library,omitempty"`

	// MaxSeqLen is the token truncation length (default 256).
	MaxSeqLen int `json:"max_seq_len" yaml:"max_seq_len"`
}

// RankConfig holds settings for the similarity-ranking stage. It is passed
// explicitly into rank.Run so the core stays testable with synthetic
// corpora.
type RankConfig struct {
	// QueryTitle is the title of the paper citations are sought for.
	QueryTitle string `json:"query_title" yaml:"query_title"`

	// QueryAbstract is the fixed target abstract. Must be non-empty
	// before the pipeline runs; this is the one fatal config check.
	QueryAbstract string `json:"query_abstract" yaml:"query_abstract"`

	// InputDir is the corpus directory of per-author CSVs.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputCSV is the ranked-candidates output path, overwritten each run.
	OutputCSV string `json:"output_csv" yaml:"output_csv"`

	// TopK bounds the number of rows written. Zero means keep all;
	// negative is a configuration error.
	TopK int `json:"top_k" yaml:"top_k"`
}

// CatalogConfig holds settings for the candidate-catalog stage.
type CatalogConfig struct {
	// IndexDir is the directory containing papers.db.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Collect CollectConfig `json:"collect" yaml:"collect"`
	Embed   EmbedConfig   `json:"embed" yaml:"embed"`
	Rank    RankConfig    `json:"rank" yaml:"rank"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}
