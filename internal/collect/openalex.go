// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// worksAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var worksAPIBase = "https://api.openalex.org/works"

// workRecord captures the fields we need from an OpenAlex work.
type workRecord struct {
	Title                 string           `json:"title"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	DOI                   string           `json:"doi"`
	PrimaryLocation       *workLocation    `json:"primary_location"`
	BestOALocation        *workLocation    `json:"best_oa_location"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

type workLocation struct {
	LandingPageURL string `json:"landing_page_url"`
	PDFURL         string `json:"pdf_url"`
}

type worksPage struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []workRecord `json:"results"`
}

var spaceRuns = regexp.MustCompile(`\s+`)

// reconstructAbstract rebuilds readable text from the inverted index
// OpenAlex ships instead of plain abstracts: {word: [positions...]}.
func reconstructAbstract(invIdx map[string][]int) string {
	if len(invIdx) == 0 {
		return ""
	}

	maxPos := -1
	for _, positions := range invIdx {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}
	if maxPos < 0 {
		return ""
	}

	words := make([]string, maxPos+1)
	for word, positions := range invIdx {
		for _, p := range positions {
			if p >= 0 {
				words[p] = word
			}
		}
	}
	return strings.TrimSpace(spaceRuns.ReplaceAllString(strings.Join(words, " "), " "))
}

// pickLinks derives (conference link, pdf link) from a work record. The
// conference link prefers the primary landing page, then the DOI resolver;
// the pdf link prefers the best open-access location.
func pickLinks(w workRecord) (string, string) {
	doiURL := ""
	if w.DOI != "" {
		if strings.HasPrefix(w.DOI, "http") {
			doiURL = w.DOI
		} else {
			doiURL = "https://doi.org/" + w.DOI
		}
	}

	conference := doiURL
	if w.PrimaryLocation != nil && w.PrimaryLocation.LandingPageURL != "" {
		conference = w.PrimaryLocation.LandingPageURL
	}

	pdf := ""
	if w.BestOALocation != nil && w.BestOALocation.PDFURL != "" {
		pdf = w.BestOALocation.PDFURL
	} else if w.PrimaryLocation != nil && w.PrimaryLocation.PDFURL != "" {
		pdf = w.PrimaryLocation.PDFURL
	}
	return conference, pdf
}

// worksFilter builds the filter parameter for one author, including the
// optional publication-year floor.
func worksFilter(authorID string, cfg types.CollectConfig) string {
	filter := "author.id:" + authorID
	if cfg.YearMin > 0 {
		filter += fmt.Sprintf(",from_publication_date:%d-01-01", cfg.YearMin)
	}
	return filter
}

// fetchWorks walks the author's works with cursor pagination, calling emit
// for each record. The limiter throttles every request including cursor
// follow-ups.
func fetchWorks(ctx context.Context, client *http.Client, limiter *rate.Limiter, authorID string, cfg types.CollectConfig, emit func(workRecord) error) error {
	perPage := cfg.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 200
	}

	cursor := "*"
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("filter", worksFilter(authorID, cfg))
		params.Set("per_page", fmt.Sprint(perPage))
		params.Set("cursor", cursor)
		params.Set("sort", "publication_year:desc")
		if cfg.Mailto != "" {
			params.Set("mailto", cfg.Mailto)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, worksAPIBase+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", cfg.UserAgent)

		resp, err := httputil.DoWithRetry(ctx, client, req, 0)
		if err != nil {
			return fmt.Errorf("works request: %w", err)
		}

		var page worksPage
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("works API returned HTTP %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return fmt.Errorf("parsing works response: %w", decodeErr)
		}

		for _, work := range page.Results {
			if err := emit(work); err != nil {
				return err
			}
		}

		if page.Meta.NextCursor == "" || len(page.Results) == 0 {
			return nil
		}
		cursor = page.Meta.NextCursor
	}
}
