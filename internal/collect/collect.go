// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect downloads each resolved author's publication list from
// the OpenAlex works API and streams it into one CSV per author. The
// per-author files are the corpus the ranking stage later loads.
package collect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// paperHeader is the per-author CSV header the corpus loader expects.
var paperHeader = []string{"title", "year", "citation_count", "conference_link", "pdf_link", "abstract"}

// Summary holds the outcome of a collection run.
type Summary struct {
	Authors   int
	Collected int
	Skipped   int
	Failed    int
	Papers    int
}

// Total returns the number of authors processed.
func (s Summary) Total() int { return s.Authors }

var (
	slugDropPattern     = regexp.MustCompile(`[^\w\s-]`)
	slugSpacePattern    = regexp.MustCompile(`\s+`)
	slugCollapsePattern = regexp.MustCompile(`-+`)
)

// Slugify converts an author name into a safe kebab-case filename stem.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugDropPattern.ReplaceAllString(s, "")
	s = slugSpacePattern.ReplaceAllString(s, "-")
	s = slugCollapsePattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "author"
	}
	return s
}

// ReadAuthors loads (name, author_id) pairs from the authors.csv produced
// by the resolution stage, skipping rows with either field missing.
func ReadAuthors(path string) ([]types.AuthorProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening authors file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading authors header: %w", err)
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, nameOK := col["name"]
	idIdx, idOK := col["author_id"]
	if !nameOK || !idOK {
		return nil, fmt.Errorf("authors file %s must have name and author_id columns", path)
	}

	var authors []types.AuthorProfile
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading authors file: %w", err)
		}
		if nameIdx >= len(rec) || idIdx >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameIdx])
		id := strings.TrimSpace(rec[idIdx])
		if name == "" || id == "" {
			continue
		}
		authors = append(authors, types.AuthorProfile{DisplayName: name, AuthorID: id})
	}
	return authors, nil
}

// CollectAuthor streams one author's works into OutputDir/<slug>.csv.
// Rows are written as pages arrive, so a partial file exists if the run
// is interrupted; the file is recreated from scratch on the next run.
// It returns the number of papers written.
func CollectAuthor(ctx context.Context, client *http.Client, limiter *rate.Limiter, author types.AuthorProfile, cfg types.CollectConfig) (int, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(cfg.OutputDir, Slugify(author.DisplayName)+".csv")

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", outPath, err)
	}

	cw := csv.NewWriter(f)
	writeErr := cw.Write(paperHeader)

	var papers int
	fetchErr := fetchWorks(ctx, client, limiter, author.AuthorID, cfg, func(w workRecord) error {
		if writeErr != nil {
			return writeErr
		}
		title := strings.TrimSpace(strings.ReplaceAll(w.Title, "\n", " "))
		year := ""
		if w.PublicationYear > 0 {
			year = strconv.Itoa(w.PublicationYear)
		}
		conference, pdf := pickLinks(w)
		abstract := reconstructAbstract(w.AbstractInvertedIndex)

		writeErr = cw.Write([]string{title, year, strconv.Itoa(w.CitedByCount), conference, pdf, abstract})
		if writeErr == nil {
			papers++
		}
		return writeErr
	})

	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}
	if err := f.Close(); writeErr == nil && err != nil {
		writeErr = err
	}

	if fetchErr != nil {
		return papers, fetchErr
	}
	if writeErr != nil {
		return papers, fmt.Errorf("writing %s: %w", outPath, writeErr)
	}
	return papers, nil
}

// CollectBatch processes every author, printing per-author status and
// returning a summary. Authors whose output CSV already exists are skipped
// unless cfg.Force is set; individual failures are reported and the batch
// continues.
func CollectBatch(ctx context.Context, client *http.Client, authors []types.AuthorProfile, cfg types.CollectConfig, w io.Writer) Summary {
	summary := Summary{Authors: len(authors)}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	for i, author := range authors {
		outPath := filepath.Join(cfg.OutputDir, Slugify(author.DisplayName)+".csv")
		if !cfg.Force {
			if _, err := os.Stat(outPath); err == nil {
				fmt.Fprintf(w, "[%d/%d] skipped %s (already collected)\n", i+1, len(authors), author.DisplayName)
				summary.Skipped++
				continue
			}
		}

		fmt.Fprintf(w, "[%d/%d] collecting %s (%s)\n", i+1, len(authors), author.DisplayName, author.AuthorID)
		papers, err := CollectAuthor(ctx, client, limiter, author, cfg)
		if err != nil {
			fmt.Fprintf(w, "  failed: %v\n", err)
			summary.Failed++
			if ctx.Err() != nil {
				break
			}
			continue
		}
		fmt.Fprintf(w, "  wrote %d papers to %s\n", papers, outPath)
		summary.Collected++
		summary.Papers += papers
	}

	fmt.Fprintf(w, "\nCollection summary: %d collected, %d skipped, %d failed, %d papers (authors: %d)\n",
		summary.Collected, summary.Skipped, summary.Failed, summary.Papers, summary.Total())
	return summary
}
