// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// outputHeader is the ranked-candidates CSV header, fixed so identical
// inputs diff byte-identically across runs.
var outputHeader = []string{"candidate_title", "candidate_abstract", "source_csv", "similarity", "rank"}

// WriteCSV writes the ranked candidates to path in rank order, header
// included. Any existing file at path is overwritten. A nil or empty
// result list produces a header-only table, never an error.
func WriteCSV(path string, results []types.RankedCandidate) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	cw := csv.NewWriter(f)
	writeErr := cw.Write(outputHeader)
	for _, r := range results {
		if writeErr != nil {
			break
		}
		writeErr = cw.Write([]string{
			r.Title,
			r.Abstract,
			r.SourceCSV,
			formatSimilarity(r.Similarity),
			strconv.Itoa(r.Rank),
		})
	}
	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}

	if err := f.Close(); writeErr == nil && err != nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	return nil
}

// formatSimilarity renders a score with 6 significant digits for
// reproducible diffs.
func formatSimilarity(s float64) string {
	return strconv.FormatFloat(s, 'g', 6, 64)
}
