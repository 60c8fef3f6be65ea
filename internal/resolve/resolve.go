// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve matches a program-committee roster against OpenAlex
// author profiles. Each roster row carries a name, an affiliation, and a
// country; the affiliation is resolved to an institution first so the
// author search can be constrained to it, which keeps common names from
// matching the wrong person.
package resolve

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Summary holds the outcome of a roster resolution run.
type Summary struct {
	Rows      int
	Matched   int
	NoMatch   int
	Failed    int
	SkippedNA int
}

// Total returns the number of roster rows processed.
func (s Summary) Total() int { return s.Rows }

// ReadRoster loads the committee roster CSV (Name, Role, Affiliation,
// Country headers, matched case-insensitively).
func ReadRoster(path string) ([]types.CommitteeMember, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := col["name"]
	if !ok {
		return nil, fmt.Errorf("roster %s has no name column", path)
	}

	field := func(rec []string, idx int, ok bool) string {
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}
	roleIdx, roleOK := col["role"]
	affIdx, affOK := col["affiliation"]
	countryIdx, countryOK := col["country"]

	var members []types.CommitteeMember
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster: %w", err)
		}
		members = append(members, types.CommitteeMember{
			Name:        field(rec, nameIdx, true),
			Role:        field(rec, roleIdx, roleOK),
			Affiliation: field(rec, affIdx, affOK),
			Country:     field(rec, countryIdx, countryOK),
		})
	}
	return members, nil
}

// ResolveMember resolves one roster row to an OpenAlex profile. It returns
// nil (no error) when no candidate clears the confidence threshold.
func ResolveMember(ctx context.Context, client *http.Client, m types.CommitteeMember, cfg types.ResolveConfig, w io.Writer) (*types.AuthorProfile, error) {
	instFilter := ""
	if m.Affiliation != "" {
		instID, err := resolveInstitutionID(ctx, client, m.Affiliation, m.Country, cfg)
		if err != nil {
			fmt.Fprintf(w, "  warning: institution lookup failed for %q: %v\n", m.Affiliation, err)
		} else if instID != "" {
			instFilter = institutionFilterValue(instID)
		}
	}

	candidates, err := searchAuthors(ctx, client, m.Name, m.Affiliation, instFilter, cfg)
	if err != nil {
		return nil, fmt.Errorf("author search for %q: %w", m.Name, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = 0.52
	}

	var best *authorRecord
	bestScore := -1.0
	for i := range candidates {
		if sc := scoreAuthor(candidates[i], m.Name, m.Affiliation, m.Country); sc > bestScore {
			bestScore = sc
			best = &candidates[i]
		}
	}
	if best == nil || bestScore < minConfidence {
		return nil, nil
	}

	return &types.AuthorProfile{
		InputName:    m.Name,
		AuthorID:     shortID(best.ID),
		DisplayName:  best.DisplayName,
		URL:          best.ID,
		Homepage:     best.HomepageURL,
		HIndex:       best.SummaryStats.HIndex,
		Affiliations: best.affiliationList(),
		Confidence:   math.Round(bestScore*1000) / 1000,
	}, nil
}

// ResolveBatch processes every roster row, printing per-row status and
// returning the matched profiles with a summary. Individual failures are
// reported and skipped; the roster always runs to the end.
func ResolveBatch(ctx context.Context, client *http.Client, members []types.CommitteeMember, cfg types.ResolveConfig, w io.Writer) ([]types.AuthorProfile, Summary) {
	summary := Summary{Rows: len(members)}
	var profiles []types.AuthorProfile

	for i, m := range members {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return profiles, summary
			case <-time.After(cfg.RequestDelay):
			}
		}

		if m.Name == "" {
			fmt.Fprintf(w, "warning: row %d has no name, skipping\n", i+1)
			summary.SkippedNA++
			continue
		}

		fmt.Fprintf(w, "[%d/%d] resolving %s (%s)\n", i+1, len(members), m.Name, orDash(m.Affiliation))
		profile, err := ResolveMember(ctx, client, m, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "  failed: %v\n", err)
			summary.Failed++
			continue
		}
		if profile == nil {
			fmt.Fprintln(w, "  no confident match")
			summary.NoMatch++
			continue
		}

		fmt.Fprintf(w, "  matched %s (confidence %.3f)\n", profile.AuthorID, profile.Confidence)
		profiles = append(profiles, *profile)
		summary.Matched++
	}

	fmt.Fprintf(w, "\nResolution summary: %d matched, %d unmatched, %d failed (total: %d)\n",
		summary.Matched, summary.NoMatch+summary.SkippedNA, summary.Failed, summary.Total())
	return profiles, summary
}

// profileHeader is the authors.csv header.
var profileHeader = []string{"input_name", "author_id", "name", "url", "homepage", "hindex", "affiliations", "confidence"}

// WriteProfiles writes the matched profiles to path as authors.csv,
// overwriting any existing file. Affiliations are joined with " ; ".
func WriteProfiles(path string, profiles []types.AuthorProfile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	writeErr := cw.Write(profileHeader)
	for _, p := range profiles {
		if writeErr != nil {
			break
		}
		writeErr = cw.Write([]string{
			p.InputName,
			p.AuthorID,
			p.DisplayName,
			p.URL,
			p.Homepage,
			strconv.Itoa(p.HIndex),
			strings.Join(p.Affiliations, " ; "),
			strconv.FormatFloat(p.Confidence, 'g', -1, 64),
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

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
