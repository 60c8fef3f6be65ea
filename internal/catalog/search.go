// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// SearchOptions holds parameters for catalog queries.
type SearchOptions struct {
	// Query is the FTS5 full-text search string over title and abstract.
	Query string

	// SourceCSV filters by originating per-author file.
	SourceCSV string

	// YearMin drops papers published before this year.
	YearMin int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is a catalog row with its full-text relevance rank.
type SearchResult struct {
	types.Candidate
	Relevance float64
}

// Search queries the catalog with optional full-text search and structured
// filters. Full-text results come back in relevance order; structured-only
// queries are sorted by citation count descending.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.title, p.abstract, p.source_csv, p.year, p.citation_count,
				p.conference_link, p.pdf_link, papers_fts.rank
			FROM papers_fts
			JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.title, p.abstract, p.source_csv, p.year, p.citation_count,
				p.conference_link, p.pdf_link, 0 AS rank
			FROM papers p
			WHERE 1=1`)
	}

	if opts.SourceCSV != "" {
		qb.WriteString(` AND p.source_csv = ?`)
		args = append(args, opts.SourceCSV)
	}
	if opts.YearMin > 0 {
		qb.WriteString(` AND p.year >= ?`)
		args = append(args, opts.YearMin)
	}

	if useFTS {
		qb.WriteString(` ORDER BY papers_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.citation_count DESC, p.title`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.Title, &r.Abstract, &r.SourceCSV, &r.Year, &r.CitationCount,
			&r.ConferenceLink, &r.PDFLink, &r.Relevance,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Stats summarizes the catalog contents per source file.
type Stats struct {
	Files  int
	Papers int
}

// Stats returns row counts for status output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT count(DISTINCT source_csv), count(*) FROM papers`,
	).Scan(&st.Files, &st.Papers)
	if err != nil {
		return Stats{}, fmt.Errorf("counting papers: %w", err)
	}
	return st, nil
}
