// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"José Núñez", "jose nunez"},
		{"  Alice   SMITH ", "alice smith"},
		{"Łukasz Kowalski", "ukasz kowalski"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("Alice Smith", "alice smith"); got != 1 {
		t.Errorf("case-insensitive identity = %v, want 1", got)
	}
	if got := similarity("", "anything"); got != 0 {
		t.Errorf("empty string similarity = %v, want 0", got)
	}
	close := similarity("University of Toronto", "Univ. of Toronto")
	far := similarity("University of Toronto", "Tsinghua University")
	if close <= far {
		t.Errorf("close match (%v) should beat far match (%v)", close, far)
	}
}

func TestCountryToISO2(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"United States", "US"},
		{"usa", "US"},
		{"UK", "GB"},
		{"de", "DE"},
		{"Germany", "DE"},
		{"Hong Kong", "HK"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := countryToISO2(tt.in); got != tt.want {
			t.Errorf("countryToISO2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScoreAuthorExactNameDominates(t *testing.T) {
	exact := authorRecord{DisplayName: "Alice Smith"}
	fuzzy := authorRecord{DisplayName: "Alicia Smythe"}

	se := scoreAuthor(exact, "Alice Smith", "", "")
	sf := scoreAuthor(fuzzy, "Alice Smith", "", "")
	if se <= sf {
		t.Errorf("exact name score (%v) should beat fuzzy (%v)", se, sf)
	}
	if se < 0.62 {
		t.Errorf("exact name score = %v, want >= 0.62", se)
	}
}

func TestScoreAuthorAffiliationAndCountry(t *testing.T) {
	cand := authorRecord{
		DisplayName: "Alice Smith",
		LastKnownInstitutions: []institutionRef{
			{DisplayName: "University of Toronto", CountryCode: "CA"},
		},
	}

	bare := scoreAuthor(cand, "Alice Smith", "", "")
	withAff := scoreAuthor(cand, "Alice Smith", "University of Toronto", "")
	withBoth := scoreAuthor(cand, "Alice Smith", "University of Toronto", "Canada")

	if withAff <= bare {
		t.Errorf("affiliation match should raise score: %v vs %v", withAff, bare)
	}
	if withBoth <= withAff {
		t.Errorf("country match should raise score: %v vs %v", withBoth, withAff)
	}
	if withBoth > 1 {
		t.Errorf("score = %v, must be capped at 1", withBoth)
	}
}

func TestInstitutionFilterValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://openalex.org/I204722609", "i204722609"},
		{"I204722609", "i204722609"},
		{"https://openalex.org/A5023888391", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := institutionFilterValue(tt.in); got != tt.want {
			t.Errorf("institutionFilterValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAffiliationText(t *testing.T) {
	cand := authorRecord{
		LastKnownInstitutions: []institutionRef{
			{DisplayName: "MIT"},
			{DisplayName: "MIT"},
			{DisplayName: "Harvard University"},
		},
	}
	if got := cand.affiliationText(); got != "MIT ; Harvard University" {
		t.Errorf("affiliationText = %q", got)
	}

	// Falls back to the historical affiliation list.
	hist := authorRecord{
		Affiliations: []affiliationEntry{
			{Institution: institutionRef{DisplayName: "ETH Zurich"}},
		},
	}
	if got := hist.affiliationText(); got != "ETH Zurich" {
		t.Errorf("affiliationText fallback = %q", got)
	}
}
