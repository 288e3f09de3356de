package cli

import (
	"context"
	"fmt"
	"log"

	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/ingest"
	"github.com/spf13/cobra"
)

// NewIngestCmd loads a question corpus into the configured question store.
// Any per-file decoding failure aborts the run with a non-zero exit: skipping
// a file silently would shift every id after it.
func NewIngestCmd(configPath *string) *cobra.Command {
	var (
		corpusDir string
		limit     int
		encoding  string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a question corpus into the question store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), *configPath, corpusDir, limit, encoding)
		},
	}
	cmd.Flags().StringVar(&corpusDir, "corpus", "", "corpus directory (defaults to quiz.corpus_dir)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max corpus files to scan, 0 = quiz.files_limit")
	cmd.Flags().StringVar(&encoding, "encoding", "", "corpus encoding, koi8-r or utf-8 (defaults to quiz.encoding)")
	return cmd
}

func runIngest(ctx context.Context, configPath, corpusDir string, limit int, encoding string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if corpusDir == "" {
		corpusDir = cfg.Quiz.CorpusDir
	}
	if corpusDir == "" {
		return fmt.Errorf("no corpus directory configured")
	}
	if limit == 0 {
		limit = cfg.Quiz.FilesLimit
	}
	if encoding == "" {
		encoding = cfg.Quiz.Encoding
	}

	store, _, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	total, err := ingest.LoadDir(ctx, store, corpusDir, limit, encoding)
	if err != nil {
		return err
	}
	log.Printf("ingested %d questions from %s", total, corpusDir)
	return nil
}
