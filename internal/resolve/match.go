// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolder decomposes accented characters and drops everything outside
// ASCII, so "José Núñez" and "Jose Nunez" compare equal.
var asciiFolder = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// normalizeName lowercases, folds accents to ASCII, and collapses
// whitespace runs to single spaces.
func normalizeName(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// similarity scores two strings in [0,1] using Dice's coefficient over
// character bigrams of the normalized forms. Empty strings score 0.
func similarity(a, b string) float64 {
	an := normalizeName(a)
	bn := normalizeName(b)
	if an == "" || bn == "" {
		return 0
	}
	if an == bn {
		return 1
	}

	ab := bigrams(an)
	bb := bigrams(bn)
	if len(ab) == 0 || len(bb) == 0 {
		return 0
	}

	var overlap int
	for g, n := range ab {
		if m, ok := bb[g]; ok {
			overlap += min(n, m)
		}
	}

	var aTotal, bTotal int
	for _, n := range ab {
		aTotal += n
	}
	for _, n := range bb {
		bTotal += n
	}
	return 2 * float64(overlap) / float64(aTotal+bTotal)
}

func bigrams(s string) map[string]int {
	grams := make(map[string]int)
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// countryNames maps common roster country spellings to ISO 3166-1 alpha-2
// codes. Two-letter inputs pass through uppercased without lookup.
var countryNames = map[string]string{
	"united states":  "US",
	"usa":            "US",
	"united kingdom": "GB",
	"uk":             "GB",
	"germany":        "DE",
	"deutschland":    "DE",
	"switzerland":    "CH",
	"canada":         "CA",
	"italy":          "IT",
	"spain":          "ES",
	"france":         "FR",
	"netherlands":    "NL",
	"austria":        "AT",
	"belgium":        "BE",
	"sweden":         "SE",
	"norway":         "NO",
	"denmark":        "DK",
	"finland":        "FI",
	"ireland":        "IE",
	"turkey":         "TR",
	"china":          "CN",
	"hong kong":      "HK",
	"taiwan":         "TW",
	"japan":          "JP",
	"korea":          "KR",
	"india":          "IN",
}

// countryToISO2 maps a roster country value to an ISO2 code, or returns ""
// when the country is unknown.
func countryToISO2(nameOrCode string) string {
	s := normalizeName(nameOrCode)
	if s == "" {
		return ""
	}
	if len(nameOrCode) == 2 && isAlpha(nameOrCode) {
		return strings.ToUpper(nameOrCode)
	}
	return countryNames[s]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// scoreInstitution rates an institution candidate against the roster
// affiliation: name or alias similarity dominates, a matching country code
// and the API relevance score nudge the total upward.
func scoreInstitution(inst institutionRecord, affiliation, countryISO2 string) float64 {
	score := 0.70 * similarity(inst.DisplayName, affiliation)
	for _, alias := range inst.DisplayNameAlternatives {
		if s := 0.70 * similarity(alias, affiliation); s > score {
			score = s
		}
	}
	for _, acr := range inst.DisplayNameAcronyms {
		if s := 0.70 * similarity(acr, affiliation); s > score {
			score = s
		}
	}

	if countryISO2 != "" && strings.EqualFold(inst.CountryCode, countryISO2) {
		score += 0.12
	}
	if inst.RelevanceScore > 0 {
		score += math.Min(0.12, 0.03*inst.RelevanceScore)
	}

	if score > 1 {
		score = 1
	}
	return score
}

// scoreAuthor rates an author candidate against the roster row. An exact
// normalized name match dominates; otherwise name similarity, alias hits,
// affiliation similarity, and a country nudge accumulate.
func scoreAuthor(cand authorRecord, name, affiliation, country string) float64 {
	var score float64

	if normalizeName(cand.DisplayName) == normalizeName(name) {
		score += 0.62
	} else {
		score += 0.40 * similarity(cand.DisplayName, name)
	}

	for _, alias := range cand.DisplayNameAlternatives {
		if normalizeName(alias) == normalizeName(name) {
			score += 0.30
			break
		}
	}

	affText := cand.affiliationText()
	if affiliation != "" {
		score += 0.38 * similarity(affText, affiliation)
	}

	if country != "" {
		if iso := countryToISO2(country); iso != "" && cand.hasCountry(iso) {
			score += 0.06
		} else if strings.Contains(normalizeName(affText), normalizeName(country)) {
			score += 0.04
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}
