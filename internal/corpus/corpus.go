// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads per-author publication CSVs into one ordered
// candidate list for the ranking pipeline.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// LoadSummary holds counts from a corpus load.
type LoadSummary struct {
	Files        int
	Loaded       int
	DroppedEmpty int
	Malformed    int
	Duplicates   int
}

// Total returns the number of data rows examined.
func (s LoadSummary) Total() int {
	return s.Loaded + s.DroppedEmpty + s.Malformed + s.Duplicates
}

// Load reads every CSV in dir and merges the rows into one candidate list,
// tagging each record with its source file. Order is deterministic: files
// in name order, rows in file order.
//
// Recovery rules: a missing or empty directory yields an empty list, not an
// error. Files without title and abstract columns, and rows that cannot be
// parsed, are counted and skipped. Rows with an empty abstract are dropped
// before embedding ever sees them. Repeated titles (case-insensitive,
// punctuation-stripped) keep the first occurrence only.
func Load(dir string, w io.Writer) ([]types.Candidate, LoadSummary, error) {
	var summary LoadSummary

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "warning: corpus directory %s does not exist\n", dir)
			return nil, summary, nil
		}
		return nil, summary, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	var candidates []types.Candidate
	seenTitles := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		summary.Files++

		path := filepath.Join(dir, entry.Name())
		if err := loadFile(path, entry.Name(), seenTitles, &candidates, &summary, w); err != nil {
			fmt.Fprintf(w, "warning: %s: %v\n", entry.Name(), err)
		}
	}

	fmt.Fprintf(w, "corpus: %d files, %d candidates (%d empty abstracts, %d malformed, %d duplicate titles dropped)\n",
		summary.Files, summary.Loaded, summary.DroppedEmpty, summary.Malformed, summary.Duplicates)

	return candidates, summary, nil
}

// LoadFile reads a single per-author CSV. Dedup applies within the file
// only; callers merging several files should use Load instead.
func LoadFile(path string, w io.Writer) ([]types.Candidate, LoadSummary, error) {
	var (
		summary    LoadSummary
		candidates []types.Candidate
	)
	summary.Files = 1
	err := loadFile(path, filepath.Base(path), make(map[string]struct{}), &candidates, &summary, w)
	if err != nil {
		return nil, summary, err
	}
	return candidates, summary, nil
}

// corpusColumns maps lowercased header names to row indexes.
type corpusColumns struct {
	title, abstract                    int
	year, citations, confLink, pdfLink int
}

func loadFile(path, sourceCSV string, seenTitles map[string]struct{}, out *[]types.Candidate, summary *LoadSummary, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return err
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Malformed++
			continue
		}
		if cols.title >= len(row) || cols.abstract >= len(row) {
			summary.Malformed++
			continue
		}

		abstract := strings.TrimSpace(row[cols.abstract])
		if abstract == "" {
			summary.DroppedEmpty++
			continue
		}

		title := strings.TrimSpace(row[cols.title])
		key := normalizeTitle(title)
		if key != "" {
			if _, ok := seenTitles[key]; ok {
				summary.Duplicates++
				continue
			}
			seenTitles[key] = struct{}{}
		}

		c := types.Candidate{
			Title:     title,
			Abstract:  abstract,
			SourceCSV: sourceCSV,
		}
		if cols.year >= 0 && cols.year < len(row) {
			c.Year, _ = strconv.Atoi(strings.TrimSpace(row[cols.year]))
		}
		if cols.citations >= 0 && cols.citations < len(row) {
			c.CitationCount, _ = strconv.Atoi(strings.TrimSpace(row[cols.citations]))
		}
		if cols.confLink >= 0 && cols.confLink < len(row) {
			c.ConferenceLink = strings.TrimSpace(row[cols.confLink])
		}
		if cols.pdfLink >= 0 && cols.pdfLink < len(row) {
			c.PDFLink = strings.TrimSpace(row[cols.pdfLink])
		}

		*out = append(*out, c)
		summary.Loaded++
	}
	return nil
}

// resolveColumns locates columns by header name. Title and abstract are
// required; the passthrough columns are optional (-1 when absent).
func resolveColumns(header []string) (corpusColumns, error) {
	cols := corpusColumns{title: -1, abstract: -1, year: -1, citations: -1, confLink: -1, pdfLink: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "abstract":
			cols.abstract = i
		case "year":
			cols.year = i
		case "citation_count":
			cols.citations = i
		case "conference_link":
			cols.confLink = i
		case "pdf_link":
			cols.pdfLink = i
		}
	}
	if cols.title < 0 || cols.abstract < 0 {
		return cols, fmt.Errorf("missing title/abstract columns")
	}
	return cols, nil
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title used as the dedup key.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
