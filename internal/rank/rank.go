// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores candidate abstracts against the query abstract,
// orders them, and writes the ranked table. This is the core of the
// citation-candidate pipeline: loader, embedder, ranker, and writer run
// once per invocation with no state carried across runs.
package rank

import (
	"sort"

	"github.com/pdiddy/citation-engine/internal/embed"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Rank scores every candidate against the query vector, sorts descending,
// truncates to topK, and assigns dense 1-based ranks.
//
// Scoring is the dot product of L2-normalized vectors (cosine), the same
// formula in both embedding modes. The sort is stable, so candidates with
// equal scores keep corpus order, and rank is determined by position, not
// score: equal scores never share a rank. topK <= 0 keeps all candidates;
// fewer candidates than topK are never padded.
func Rank(queryVec embed.Vector, cands []types.Candidate, vecs []embed.Vector, topK int) []types.RankedCandidate {
	n := len(cands)
	if n == 0 || len(vecs) != n {
		return nil
	}

	scores := make([]float64, n)
	for i, v := range vecs {
		scores[i] = embed.Dot(queryVec, v)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > 0 && topK < n {
		order = order[:topK]
	}

	ranked := make([]types.RankedCandidate, len(order))
	for pos, idx := range order {
		ranked[pos] = types.RankedCandidate{
			Candidate:  cands[idx],
			Similarity: scores[idx],
			Rank:       pos + 1,
		}
	}
	return ranked
}
