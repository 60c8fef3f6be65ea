// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder decomposes characters and strips combining marks, so
// "Café" and "Cafe" tokenize identically.
var accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and trims text before embedding. Both modes apply
// it, so identical abstracts always produce identical vectors.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldAccents removes diacritics. Used by the TF-IDF tokenizer only; the
// semantic tokenizer handles Unicode itself.
func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// tokenize splits normalized text into lowercase word tokens, stripping
// punctuation. Tokens of length one are kept; the df bounds prune noise.
func tokenize(s string) []string {
	s = foldAccents(Normalize(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// terms returns the unigrams plus adjacent-pair bigrams of the text, the
// same n-gram range the reference vectorizer used.
func terms(s string) []string {
	tokens := tokenize(s)
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
