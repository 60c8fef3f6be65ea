// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"math"
	"slices"
)

// TFIDF is the fallback embedder: a term-frequency-inverse-document-
// frequency vectorizer fitted jointly over the query plus all candidate
// abstracts. One vocabulary is built per call, so the query and every
// candidate share a vector space by construction.
type TFIDF struct {
	// MinDF drops terms appearing in fewer documents (default 2).
	MinDF int

	// MaxDF drops terms appearing in more than this fraction of
	// documents (default 0.9).
	MaxDF float64
}

// NewTFIDF returns a vectorizer with the reference parameters: unigrams
// and bigrams, min_df 2, max_df 0.9.
func NewTFIDF() *TFIDF {
	return &TFIDF{MinDF: 2, MaxDF: 0.9}
}

// Name identifies the fallback mode.
func (t *TFIDF) Name() string { return "tfidf" }

// Close is a no-op; the vectorizer holds no external resources.
func (t *TFIDF) Close() error { return nil }

// EmbedCorpus fits the vectorizer over query + abstracts and transforms
// every document through the single fitted vocabulary. Row order matches
// input order; all rows are L2-normalized.
func (t *TFIDF) EmbedCorpus(_ context.Context, query string, abstracts []string) (Vector, []Vector, error) {
	if len(abstracts) == 0 {
		return Vector{}, nil, nil
	}

	docs := make([][]string, 0, 1+len(abstracts))
	docs = append(docs, terms(query))
	for _, a := range abstracts {
		docs = append(docs, terms(a))
	}

	df := documentFrequencies(docs)
	vocab := t.buildVocabulary(df, len(docs))
	if len(vocab) == 0 {
		// Tiny corpora can prune every term; refit without df bounds
		// rather than scoring everything zero.
		vocab = (&TFIDF{MinDF: 1, MaxDF: 1.0}).buildVocabulary(df, len(docs))
	}

	idf := make([]float64, len(vocab))
	n := float64(len(docs))
	for term, dim := range vocab {
		idf[dim] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vecs := make([]Vector, len(docs))
	for i, doc := range docs {
		weights := make(map[int32]float64)
		for _, term := range doc {
			if dim, ok := vocab[term]; ok {
				weights[int32(dim)] += idf[dim]
			}
		}
		vecs[i] = sparse(weights)
	}

	return vecs[0], vecs[1:], nil
}

// documentFrequencies counts, per term, the number of documents containing it.
func documentFrequencies(docs [][]string) map[string]int {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	return df
}

// buildVocabulary assigns a dimension to every term within the df bounds.
// Dimensions are allocated in sorted term order so fitted spaces are
// deterministic across runs.
func (t *TFIDF) buildVocabulary(df map[string]int, numDocs int) map[string]int {
	maxCount := int(t.MaxDF * float64(numDocs))

	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count < t.MinDF || count > maxCount {
			continue
		}
		kept = append(kept, term)
	}
	slices.Sort(kept)

	vocab := make(map[string]int, len(kept))
	for dim, term := range kept {
		vocab[term] = dim
	}
	return vocab
}
