package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/embed"
	"github.com/pdiddy/citation-engine/internal/rank"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank collected abstracts against the query abstract",
	Long: `Rank loads every per-author CSV from the corpus directory, embeds the
query abstract and all candidate abstracts in one shared space, scores
them by cosine similarity, and writes the ranked table as CSV.

With a configured ONNX sentence-embedding model, texts are embedded
semantically; otherwise a TF-IDF model is fitted jointly over the query
and corpus. The query comes from --abstract, a --query-file YAML, or the
rank section of the config file.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("abstract", "", "query abstract text")
	rankCmd.Flags().String("query-file", "", "YAML file with title, abstract, and top_k")
	rankCmd.Flags().String("input-dir", "files/alex_papers", "corpus directory of per-author CSVs")
	rankCmd.Flags().String("output", "files/citation_candidates.csv", "ranked output CSV")
	rankCmd.Flags().Int("top-k", 0, "rows to keep (0 = all)")
	rankCmd.Flags().String("model", "", "ONNX sentence-embedding model path")
	rankCmd.Flags().String("tokenizer", "", "tokenizer.json path for the model")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := types.RankConfig{
		QueryTitle:    viper.GetString("rank.query_title"),
		QueryAbstract: viper.GetString("rank.query_abstract"),
		TopK:          viper.GetInt("rank.top_k"),
	}

	if queryFile, _ := cmd.Flags().GetString("query-file"); queryFile != "" {
		qf, err := rank.ReadQueryFile(queryFile)
		if err != nil {
			return err
		}
		cfg.QueryTitle = qf.Title
		cfg.QueryAbstract = qf.Abstract
		if qf.TopK > 0 {
			cfg.TopK = qf.TopK
		}
	}
	if abstract, _ := cmd.Flags().GetString("abstract"); abstract != "" {
		cfg.QueryAbstract = abstract
	}
	if topK, _ := cmd.Flags().GetInt("top-k"); topK != 0 {
		cfg.TopK = topK
	}
	cfg.InputDir, _ = cmd.Flags().GetString("input-dir")
	cfg.OutputCSV, _ = cmd.Flags().GetString("output")

	embedCfg := types.EmbedConfig{
		ModelPath:     viper.GetString("embed.model_path"),
		TokenizerPath: viper.GetString("embed.tokenizer_path"),
		OrtLibrary:    viper.GetString("embed.ort_library"),
		MaxSeqLen:     viper.GetInt("embed.max_seq_len"),
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		embedCfg.ModelPath = model
	}
	if tokenizer, _ := cmd.Flags().GetString("tokenizer"); tokenizer != "" {
		embedCfg.TokenizerPath = tokenizer
	}

	embedder := embed.Select(embedCfg, os.Stderr)
	defer embedder.Close()

	return rank.Run(context.Background(), cfg, embedder, os.Stdout)
}
