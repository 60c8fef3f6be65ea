// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citation-engine/internal/corpus"
	"github.com/pdiddy/citation-engine/internal/embed"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// ValidateConfig checks the settings the pipeline cannot run without.
// This is the single fatal path: it runs before any corpus I/O.
func ValidateConfig(cfg types.RankConfig) error {
	if strings.TrimSpace(cfg.QueryAbstract) == "" {
		return fmt.Errorf("query abstract is empty: set rank.query_abstract or provide a query file")
	}
	if cfg.TopK < 0 {
		return fmt.Errorf("top_k must be >= 0, got %d", cfg.TopK)
	}
	if cfg.InputDir == "" {
		return fmt.Errorf("input directory is not configured")
	}
	if cfg.OutputCSV == "" {
		return fmt.Errorf("output path is not configured")
	}
	return nil
}

// Run executes one pass of the pipeline: load the corpus, embed query and
// candidates in one shared space, rank by cosine similarity, and write the
// truncated table. Status lines go to w.
//
// Everything after config validation recovers rather than fails: a missing
// or empty corpus, or a corpus with no usable text, produces a well-formed
// header-only output table.
func Run(ctx context.Context, cfg types.RankConfig, embedder embed.Embedder, w io.Writer) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	cands, _, err := corpus.Load(cfg.InputDir, w)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Fprintln(w, "no candidates to rank; writing empty output")
		return WriteCSV(cfg.OutputCSV, nil)
	}

	abstracts := make([]string, len(cands))
	for i, c := range cands {
		abstracts[i] = c.Abstract
	}

	queryVec, vecs, err := embedder.EmbedCorpus(ctx, cfg.QueryAbstract, abstracts)
	if err != nil {
		return fmt.Errorf("embedding corpus: %w", err)
	}
	if len(vecs) != len(cands) {
		fmt.Fprintln(w, "embedder produced no vectors; writing empty output")
		return WriteCSV(cfg.OutputCSV, nil)
	}

	ranked := Rank(queryVec, cands, vecs, cfg.TopK)

	if err := WriteCSV(cfg.OutputCSV, ranked); err != nil {
		return err
	}
	fmt.Fprintf(w, "ranked %d candidates (%s), wrote top %d to %s\n",
		len(cands), embedder.Name(), len(ranked), cfg.OutputCSV)
	return nil
}
