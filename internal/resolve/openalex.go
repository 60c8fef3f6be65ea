// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// OpenAlex endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	authorsAPIBase      = "https://api.openalex.org/authors"
	institutionsAPIBase = "https://api.openalex.org/institutions"
)

// selectAuthorFields trims author responses to the fields scoring needs.
const selectAuthorFields = "id,display_name,display_name_alternatives,homepage_url,summary_stats,affiliations,last_known_institutions,relevance_score,works_count,cited_by_count"

// selectInstitutionFields trims institution responses likewise.
const selectInstitutionFields = "id,display_name,country_code,display_name_acronyms,display_name_alternatives,ror,relevance_score"

// institutionScoreFloor is the minimum institution-match score accepted
// when resolving an affiliation to an OpenAlex institution ID.
const institutionScoreFloor = 0.45

type institutionRecord struct {
	ID                      string   `json:"id"`
	DisplayName             string   `json:"display_name"`
	CountryCode             string   `json:"country_code"`
	DisplayNameAcronyms     []string `json:"display_name_acronyms"`
	DisplayNameAlternatives []string `json:"display_name_alternatives"`
	RelevanceScore          float64  `json:"relevance_score"`
}

type authorRecord struct {
	ID                      string             `json:"id"`
	DisplayName             string             `json:"display_name"`
	DisplayNameAlternatives []string           `json:"display_name_alternatives"`
	HomepageURL             string             `json:"homepage_url"`
	SummaryStats            authorSummaryStats `json:"summary_stats"`
	Affiliations            []affiliationEntry `json:"affiliations"`
	LastKnownInstitutions   []institutionRef   `json:"last_known_institutions"`
	RelevanceScore          float64            `json:"relevance_score"`
}

type authorSummaryStats struct {
	HIndex int `json:"h_index"`
}

type affiliationEntry struct {
	Institution institutionRef `json:"institution"`
}

type institutionRef struct {
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}

type listResponse[T any] struct {
	Results []T `json:"results"`
}

// affiliationText joins the candidate's institution display names into a
// single "a ; b" string for affiliation similarity scoring. Last-known
// institutions take precedence over the historical affiliation list.
func (a authorRecord) affiliationText() string {
	var texts []string
	for _, inst := range a.LastKnownInstitutions {
		if inst.DisplayName != "" {
			texts = append(texts, inst.DisplayName)
		}
	}
	if len(texts) == 0 {
		for _, aff := range a.Affiliations {
			if aff.Institution.DisplayName != "" {
				texts = append(texts, aff.Institution.DisplayName)
			}
		}
	}

	seen := make(map[string]bool)
	uniq := texts[:0]
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}
	return strings.Join(uniq, " ; ")
}

// hasCountry reports whether any last-known institution is in the given
// ISO2 country.
func (a authorRecord) hasCountry(iso2 string) bool {
	for _, inst := range a.LastKnownInstitutions {
		if strings.EqualFold(inst.CountryCode, iso2) {
			return true
		}
	}
	return false
}

// affiliationList returns the candidate's institution display names for
// the output profile.
func (a authorRecord) affiliationList() []string {
	text := a.affiliationText()
	if text == "" {
		return nil
	}
	return strings.Split(text, " ; ")
}

// shortID strips the OpenAlex URL prefix: "https://openalex.org/A5023888391"
// becomes "A5023888391".
func shortID(openalexID string) string {
	if i := strings.LastIndex(openalexID, "/"); i >= 0 {
		return openalexID[i+1:]
	}
	return openalexID
}

// institutionFilterValue converts a canonical institution ID into the
// lowercase form the authors filter expects: "https://openalex.org/I204722609"
// becomes "i204722609".
func institutionFilterValue(instID string) string {
	short := shortID(instID)
	if len(short) < 2 || (short[0] != 'I' && short[0] != 'i') {
		return ""
	}
	for _, r := range short[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return "i" + short[1:]
}

// getJSON performs one API call through the shared retry helper and decodes
// the response into out.
func getJSON(ctx context.Context, client *http.Client, base string, params url.Values, cfg types.ResolveConfig, out any) error {
	if cfg.Mailto != "" {
		params.Set("mailto", cfg.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// resolveInstitutionID maps a roster affiliation to a canonical OpenAlex
// institution ID, or "" when nothing scores above the floor. A country
// constraint disambiguates multi-country organizations; when the
// constrained search comes back empty the search is retried unfiltered.
func resolveInstitutionID(ctx context.Context, client *http.Client, affiliation, country string, cfg types.ResolveConfig) (string, error) {
	if strings.TrimSpace(affiliation) == "" {
		return "", nil
	}
	iso := countryToISO2(country)

	var attempts []url.Values
	if iso != "" {
		withCountry := url.Values{}
		withCountry.Set("search", affiliation)
		withCountry.Set("per_page", "25")
		withCountry.Set("select", selectInstitutionFields)
		withCountry.Set("filter", "country_code:"+iso)
		attempts = append(attempts, withCountry)
	}
	unfiltered := url.Values{}
	unfiltered.Set("search", affiliation)
	unfiltered.Set("per_page", "25")
	unfiltered.Set("select", selectInstitutionFields)
	attempts = append(attempts, unfiltered)

	for _, params := range attempts {
		var list listResponse[institutionRecord]
		if err := getJSON(ctx, client, institutionsAPIBase, params, cfg, &list); err != nil {
			return "", err
		}
		if len(list.Results) == 0 {
			continue
		}

		bestID := ""
		bestScore := -1.0
		for _, inst := range list.Results {
			if sc := scoreInstitution(inst, affiliation, iso); sc > bestScore {
				bestScore = sc
				bestID = inst.ID
			}
		}
		if bestID != "" && bestScore >= institutionScoreFloor {
			return bestID, nil
		}
	}
	return "", nil
}

// searchAuthors fetches author candidates for a roster name. With an
// institution filter the search is constrained to that institution and
// sorted by relevance; without one it falls back to "name affiliation"
// and then plain name searches.
func searchAuthors(ctx context.Context, client *http.Client, name, affiliation, instFilter string, cfg types.ResolveConfig) ([]authorRecord, error) {
	perPage := cfg.MaxCandidates
	if perPage <= 0 {
		perPage = 25
	}

	if instFilter != "" {
		params := url.Values{}
		params.Set("filter", fmt.Sprintf("default.search:%s,last_known_institutions.id:%s", name, instFilter))
		params.Set("sort", "relevance_score:desc")
		params.Set("per_page", fmt.Sprint(perPage))
		params.Set("select", selectAuthorFields)

		var list listResponse[authorRecord]
		if err := getJSON(ctx, client, authorsAPIBase, params, cfg, &list); err != nil {
			return nil, err
		}
		return list.Results, nil
	}

	searches := []string{strings.TrimSpace(name + " " + affiliation), name}
	for _, q := range searches {
		params := url.Values{}
		params.Set("search", q)
		params.Set("per_page", fmt.Sprint(perPage))
		params.Set("select", selectAuthorFields)

		var list listResponse[authorRecord]
		if err := getJSON(ctx, client, authorsAPIBase, params, cfg, &list); err != nil {
			return nil, err
		}
		if len(list.Results) > 0 {
			return list.Results, nil
		}
	}
	return nil, nil
}
