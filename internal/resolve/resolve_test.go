// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

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

	"github.com/pdiddy/citation-engine/pkg/types"
)

const sampleInstitutions = `{
  "results": [
    {
      "id": "https://openalex.org/I185261750",
      "display_name": "University of Toronto",
      "country_code": "CA",
      "relevance_score": 3.5
    },
    {
      "id": "https://openalex.org/I99999999",
      "display_name": "Toronto Metropolitan University",
      "country_code": "CA",
      "relevance_score": 1.0
    }
  ]
}`

const sampleAuthors = `{
  "results": [
    {
      "id": "https://openalex.org/A5023888391",
      "display_name": "Alice Smith",
      "summary_stats": {"h_index": 42},
      "last_known_institutions": [
        {"display_name": "University of Toronto", "country_code": "CA"}
      ]
    },
    {
      "id": "https://openalex.org/A5000000001",
      "display_name": "A. Smithers",
      "summary_stats": {"h_index": 3},
      "last_known_institutions": [
        {"display_name": "Somewhere Else", "country_code": "US"}
      ]
    }
  ]
}`

// testServer routes /institutions and /authors to canned responses and
// repoints the package base URLs for the duration of the test.
func testServer(t *testing.T, institutions, authors string) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/institutions"):
			fmt.Fprint(w, institutions)
		case strings.HasPrefix(r.URL.Path, "/authors"):
			fmt.Fprint(w, authors)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	oldAuthors, oldInstitutions := authorsAPIBase, institutionsAPIBase
	authorsAPIBase = ts.URL + "/authors"
	institutionsAPIBase = ts.URL + "/institutions"
	t.Cleanup(func() {
		authorsAPIBase = oldAuthors
		institutionsAPIBase = oldInstitutions
	})
}

func testConfig() types.ResolveConfig {
	return types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "citation-engine-test/0.1",
		},
	}
}

func TestResolveMemberMatches(t *testing.T) {
	testServer(t, sampleInstitutions, sampleAuthors)

	m := types.CommitteeMember{
		Name:        "Alice Smith",
		Affiliation: "University of Toronto",
		Country:     "Canada",
	}
	profile, err := ResolveMember(context.Background(), http.DefaultClient, m, testConfig(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if profile == nil {
		t.Fatal("expected a confident match")
	}
	if profile.AuthorID != "A5023888391" {
		t.Errorf("AuthorID = %q, want A5023888391", profile.AuthorID)
	}
	if profile.URL != "https://openalex.org/A5023888391" {
		t.Errorf("URL = %q", profile.URL)
	}
	if profile.HIndex != 42 {
		t.Errorf("HIndex = %d, want 42", profile.HIndex)
	}
	if profile.Confidence < 0.52 || profile.Confidence > 1 {
		t.Errorf("Confidence = %v, want in [0.52, 1]", profile.Confidence)
	}
	if len(profile.Affiliations) != 1 || profile.Affiliations[0] != "University of Toronto" {
		t.Errorf("Affiliations = %v", profile.Affiliations)
	}
}

func TestResolveMemberNoConfidentMatch(t *testing.T) {
	testServer(t, sampleInstitutions, sampleAuthors)

	m := types.CommitteeMember{Name: "Zebulon Xylophone", Affiliation: "", Country: ""}
	profile, err := ResolveMember(context.Background(), http.DefaultClient, m, testConfig(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if profile != nil {
		t.Errorf("expected no match, got %+v", profile)
	}
}

func TestResolveMemberNoCandidates(t *testing.T) {
	testServer(t, `{"results": []}`, `{"results": []}`)

	m := types.CommitteeMember{Name: "Alice Smith"}
	profile, err := ResolveMember(context.Background(), http.DefaultClient, m, testConfig(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if profile != nil {
		t.Errorf("expected no match for empty results, got %+v", profile)
	}
}

func TestResolveBatchContinuesAfterSkips(t *testing.T) {
	testServer(t, sampleInstitutions, sampleAuthors)

	members := []types.CommitteeMember{
		{Name: ""},
		{Name: "Alice Smith", Affiliation: "University of Toronto", Country: "CA"},
		{Name: "Zebulon Xylophone"},
	}

	var status strings.Builder
	profiles, summary := ResolveBatch(context.Background(), http.DefaultClient, members, testConfig(), &status)

	if summary.Matched != 1 || summary.SkippedNA != 1 || summary.NoMatch != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}
	if !strings.Contains(status.String(), "Resolution summary") {
		t.Errorf("missing summary line in %q", status.String())
	}
}

func TestReadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pc_members.csv")
	content := "Name,Role,Affiliation,Country\nAlice Smith,TPC,University of Toronto,Canada\nBob Jones,Chair,MIT,USA\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	members, err := ReadRoster(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Name != "Alice Smith" || members[0].Country != "Canada" {
		t.Errorf("members[0] = %+v", members[0])
	}
}

func TestReadRosterMissingNameColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Person,Where\nX,Y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRoster(path); err == nil {
		t.Error("expected an error for a roster without a name column")
	}
}

func TestWriteProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	profiles := []types.AuthorProfile{
		{
			InputName:    "Alice Smith",
			AuthorID:     "A5023888391",
			DisplayName:  "Alice Smith",
			URL:          "https://openalex.org/A5023888391",
			HIndex:       42,
			Affiliations: []string{"University of Toronto", "Vector Institute"},
			Confidence:   0.873,
		},
	}
	if err := WriteProfiles(path, profiles); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	wantHeader := "input_name,author_id,name,url,homepage,hindex,affiliations,confidence"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Errorf("header = %q", got)
	}
	if rows[1][5] != "42" || rows[1][7] != "0.873" {
		t.Errorf("row = %v", rows[1])
	}
	if rows[1][6] != "University of Toronto ; Vector Institute" {
		t.Errorf("affiliations cell = %q", rows[1][6])
	}
}
