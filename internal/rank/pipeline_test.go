// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/citation-engine/internal/embed"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := types.RankConfig{
		QueryAbstract: "some abstract",
		InputDir:      "in",
		OutputCSV:     "out.csv",
		TopK:          10,
	}

	tests := []struct {
		name    string
		mutate  func(*types.RankConfig)
		wantErr bool
	}{
		{"valid", func(c *types.RankConfig) {}, false},
		{"empty abstract", func(c *types.RankConfig) { c.QueryAbstract = "" }, true},
		{"whitespace abstract", func(c *types.RankConfig) { c.QueryAbstract = "   " }, true},
		{"negative topK", func(c *types.RankConfig) { c.TopK = -1 }, true},
		{"zero topK", func(c *types.RankConfig) { c.TopK = 0 }, false},
		{"no input dir", func(c *types.RankConfig) { c.InputDir = "" }, true},
		{"no output", func(c *types.RankConfig) { c.OutputCSV = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "author.csv",
		"title,abstract\n"+
			"Exact,graph neural networks for molecular property prediction\n"+
			"Near,neural networks for molecular graphs\n"+
			"Far,economic policy in the nineteenth century\n"+
			"Other,molecular property prediction with graph models\n")

	out := filepath.Join(t.TempDir(), "ranked.csv")
	cfg := types.RankConfig{
		QueryAbstract: "graph neural networks for molecular property prediction",
		InputDir:      dir,
		OutputCSV:     out,
		TopK:          2,
	}

	var status strings.Builder
	if err := Run(context.Background(), cfg, embed.NewTFIDF(), &status); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, out)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][0] != "Exact" {
		t.Errorf("top candidate = %q, want Exact", rows[1][0])
	}
	if rows[1][4] != "1" || rows[2][4] != "2" {
		t.Errorf("ranks = %q, %q; want 1, 2", rows[1][4], rows[2][4])
	}
	if !strings.Contains(status.String(), "ranked 4 candidates") {
		t.Errorf("status = %q", status.String())
	}
}

func TestRunEmptyCorpusWritesHeaderOnly(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ranked.csv")
	cfg := types.RankConfig{
		QueryAbstract: "anything",
		InputDir:      filepath.Join(t.TempDir(), "missing"),
		OutputCSV:     out,
	}

	if err := Run(context.Background(), cfg, embed.NewTFIDF(), io.Discard); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, out)
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

func TestRunDeterministicOutput(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.csv", "title,abstract\nP1,alpha beta gamma\nP2,alpha beta\n")
	writeCorpusFile(t, dir, "b.csv", "title,abstract\nP3,beta gamma delta\nP4,unrelated words here\n")

	outDir := t.TempDir()
	run := func(name string) []byte {
		out := filepath.Join(outDir, name)
		cfg := types.RankConfig{
			QueryAbstract: "alpha beta gamma",
			InputDir:      dir,
			OutputCSV:     out,
		}
		if err := Run(context.Background(), cfg, embed.NewTFIDF(), io.Discard); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := run("first.csv")
	second := run("second.csv")
	if string(first) != string(second) {
		t.Error("identical inputs must produce byte-identical output")
	}
}

func TestReadQueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	content := "title: My Paper\nabstract: |\n  Multi-line\n  abstract text.\ntop_k: 40\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if qf.Title != "My Paper" || qf.TopK != 40 {
		t.Errorf("parsed = %+v", qf)
	}
	if !strings.Contains(qf.Abstract, "Multi-line") {
		t.Errorf("abstract = %q", qf.Abstract)
	}

	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
}
