// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed converts the query abstract and candidate abstracts into
// vectors in one shared space. Two modes exist: a pretrained ONNX
// sentence-embedding model, and a TF-IDF fallback fitted jointly over the
// query plus all candidates. The mode is chosen exactly once per run,
// before any vector is computed, so vector spaces are never mixed.
package embed

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Embedder embeds the query and all candidate abstracts into one shared
// vector space. Returned vectors are L2-normalized and positionally
// aligned with the input abstracts.
type Embedder interface {
	// Name identifies the mode ("onnx" or "tfidf") for status output.
	Name() string

	// EmbedCorpus embeds the query and the candidate abstracts. An empty
	// abstracts slice yields a nil candidate matrix and no error; the
	// caller short-circuits to an empty result.
	EmbedCorpus(ctx context.Context, query string, abstracts []string) (Vector, []Vector, error)

	// Close releases model resources. A no-op for the fallback mode.
	Close() error
}

// Select performs the one-time capability check and returns the embedder
// for this run. The semantic model is preferred; if it is not configured
// or fails to load, Select reports a degraded-mode notice on w and returns
// the TF-IDF fallback. Select never fails.
func Select(cfg types.EmbedConfig, w io.Writer) Embedder {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		fmt.Fprintln(w, "embedding backend: tfidf (no semantic model configured)")
		return NewTFIDF()
	}

	onnx, err := NewONNX(cfg)
	if err != nil {
		fmt.Fprintf(w, "warning: semantic model unavailable (%v), falling back to tfidf\n", err)
		return NewTFIDF()
	}

	fmt.Fprintln(w, "embedding backend: onnx")
	return onnx
}
