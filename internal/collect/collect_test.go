// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice Smith", "alice-smith"},
		{"  Dr. Bob   Jones Jr. ", "dr-bob-jones-jr"},
		{"Jean-Pierre Dupont", "jean-pierre-dupont"},
		{"!!!", "author"},
		{"", "author"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name string
		in   map[string][]int
		want string
	}{
		{
			name: "simple",
			in:   map[string][]int{"deep": {0}, "learning": {1}, "works": {2}},
			want: "deep learning works",
		},
		{
			name: "repeated word",
			in:   map[string][]int{"the": {0, 2}, "more": {1}, "merrier": {3}},
			want: "the more the merrier",
		},
		{
			name: "gap in positions",
			in:   map[string][]int{"start": {0}, "end": {3}},
			want: "start end",
		},
		{
			name: "empty",
			in:   nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconstructAbstract(tt.in); got != tt.want {
				t.Errorf("reconstructAbstract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickLinks(t *testing.T) {
	tests := []struct {
		name     string
		work     workRecord
		wantConf string
		wantPDF  string
	}{
		{
			name: "landing page and OA pdf",
			work: workRecord{
				DOI:             "10.1145/123",
				PrimaryLocation: &workLocation{LandingPageURL: "https://conf.example/paper", PDFURL: "https://conf.example/p.pdf"},
				BestOALocation:  &workLocation{PDFURL: "https://oa.example/p.pdf"},
			},
			wantConf: "https://conf.example/paper",
			wantPDF:  "https://oa.example/p.pdf",
		},
		{
			name:     "doi fallback",
			work:     workRecord{DOI: "10.1145/456"},
			wantConf: "https://doi.org/10.1145/456",
			wantPDF:  "",
		},
		{
			name: "primary pdf fallback",
			work: workRecord{
				PrimaryLocation: &workLocation{PDFURL: "https://conf.example/only.pdf"},
			},
			wantConf: "",
			wantPDF:  "https://conf.example/only.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, pdf := pickLinks(tt.work)
			if conf != tt.wantConf || pdf != tt.wantPDF {
				t.Errorf("pickLinks = (%q, %q), want (%q, %q)", conf, pdf, tt.wantConf, tt.wantPDF)
			}
		})
	}
}

// pagedWorksServer serves two pages of works joined by a cursor.
func pagedWorksServer(t *testing.T) {
	t.Helper()
	page1 := `{
		"meta": {"count": 3, "next_cursor": "page2"},
		"results": [
			{"title": "Paper One", "publication_year": 2023, "cited_by_count": 10,
			 "abstract_inverted_index": {"first": [0], "abstract": [1]}},
			{"title": "Paper Two", "publication_year": 2022, "cited_by_count": 5,
			 "abstract_inverted_index": {"second": [0], "abstract": [1]}}
		]
	}`
	page2 := `{
		"meta": {"count": 3, "next_cursor": ""},
		"results": [
			{"title": "Paper Three", "publication_year": 2021, "cited_by_count": 1,
			 "abstract_inverted_index": {"third": [0], "abstract": [1]}}
		]
	}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "page2" {
			fmt.Fprint(w, page2)
			return
		}
		fmt.Fprint(w, page1)
	}))
	t.Cleanup(ts.Close)

	old := worksAPIBase
	worksAPIBase = ts.URL
	t.Cleanup(func() { worksAPIBase = old })
}

func testCollectConfig(outputDir string) types.CollectConfig {
	return types.CollectConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "citation-engine-test/0.1",
		},
		OutputDir:         outputDir,
		RequestsPerSecond: 1000,
	}
}

func TestCollectAuthorPaginates(t *testing.T) {
	pagedWorksServer(t)
	dir := t.TempDir()
	cfg := testCollectConfig(dir)

	author := types.AuthorProfile{DisplayName: "Alice Smith", AuthorID: "A123"}
	limiter := rate.NewLimiter(rate.Limit(1000), 1)

	papers, err := CollectAuthor(context.Background(), http.DefaultClient, limiter, author, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if papers != 3 {
		t.Errorf("papers = %d, want 3 across both pages", papers)
	}

	f, err := os.Open(filepath.Join(dir, "alice-smith.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	wantHeader := "title,year,citation_count,conference_link,pdf_link,abstract"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Errorf("header = %q", got)
	}
	if rows[1][0] != "Paper One" || rows[1][5] != "first abstract" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[3][0] != "Paper Three" {
		t.Errorf("row 3 = %v", rows[3])
	}
}

func TestCollectBatchSkipsExisting(t *testing.T) {
	pagedWorksServer(t)
	dir := t.TempDir()
	cfg := testCollectConfig(dir)

	// Pre-create Alice's output so the batch skips her.
	if err := os.WriteFile(filepath.Join(dir, "alice-smith.csv"), []byte("title,abstract\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	authors := []types.AuthorProfile{
		{DisplayName: "Alice Smith", AuthorID: "A123"},
		{DisplayName: "Bob Jones", AuthorID: "A456"},
	}

	var status strings.Builder
	summary := CollectBatch(context.Background(), http.DefaultClient, authors, cfg, &status)

	if summary.Skipped != 1 || summary.Collected != 1 {
		t.Errorf("summary = %+v, want 1 skipped, 1 collected", summary)
	}
	if !strings.Contains(status.String(), "already collected") {
		t.Errorf("status = %q", status.String())
	}

	// Force re-collects everyone.
	cfg.Force = true
	summary = CollectBatch(context.Background(), http.DefaultClient, authors, cfg, io.Discard)
	if summary.Collected != 2 || summary.Skipped != 0 {
		t.Errorf("forced summary = %+v, want 2 collected", summary)
	}
}

func TestReadAuthors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	content := "input_name,author_id,name,url,homepage,hindex,affiliations,confidence\n" +
		"Alice Smith,A123,Alice Smith,https://openalex.org/A123,,42,MIT,0.9\n" +
		"No ID,,Someone,,,0,,0.6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	authors, err := ReadAuthors(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(authors) != 1 {
		t.Fatalf("got %d authors, want 1 (missing author_id skipped)", len(authors))
	}
	if authors[0].DisplayName != "Alice Smith" || authors[0].AuthorID != "A123" {
		t.Errorf("authors[0] = %+v", authors[0])
	}
}

func TestReadAuthorsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("person,id\nX,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAuthors(path); err == nil {
		t.Error("expected an error for missing name/author_id columns")
	}
}

func TestWorksFilter(t *testing.T) {
	cfg := types.CollectConfig{}
	if got := worksFilter("A123", cfg); got != "author.id:A123" {
		t.Errorf("worksFilter = %q", got)
	}
	cfg.YearMin = 2015
	if got := worksFilter("A123", cfg); got != "author.id:A123,from_publication_date:2015-01-01" {
		t.Errorf("worksFilter with year = %q", got)
	}
}
