package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nexo/internal/model"
	"nexo/internal/report"
	"nexo/internal/review"
	"nexo/internal/store"
	"nexo/internal/worker"
)

var (
	reviewProvider string
	reviewModel    string
	reviewWorkers  int
	reviewRunID    int64
	reviewDB       string
	reviewOutDir   string
	reviewTimeout  time.Duration
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Obtain advisory LLM verdicts for correlated pairs",
	Long: `Review sends the narratives of each correlated pair to an LLM provider
and records whether the model finds the link corroborated, refuted or
inconclusive.

Verdicts are advisory annotations. They never change the matches,
confidence labels or correlation strengths the engine produced.

Already-reviewed pairs are skipped, so an interrupted review resumes
where it left off.

Example:
  nexo review --provider ollama --model llama3.1:8b
  nexo review --provider openai --model gpt-4o-mini --workers 8`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewProvider, "provider", "", "LLM provider (openai, ollama)")
	reviewCmd.Flags().StringVar(&reviewModel, "model", "", "model name (provider-specific)")
	reviewCmd.Flags().IntVar(&reviewWorkers, "workers", 0, "concurrent review workers (0 = configured value)")
	reviewCmd.Flags().Int64Var(&reviewRunID, "run", 0, "run id to review (0 = latest run)")
	reviewCmd.Flags().StringVar(&reviewDB, "db", "", "result database path override")
	reviewCmd.Flags().StringVar(&reviewOutDir, "out-dir", "", "output directory override")
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 30*time.Minute, "total review timeout")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reviewProvider != "" {
		cfg.Review.Provider = reviewProvider
	}
	if reviewModel != "" {
		cfg.Review.Model = reviewModel
	}
	if reviewWorkers > 0 {
		cfg.Review.Workers = reviewWorkers
	}
	if reviewDB != "" {
		cfg.Store.Path = reviewDB
	}
	if reviewOutDir != "" {
		cfg.Output.Dir = reviewOutDir
	}
	if cfg.Review.Provider == "" {
		return fmt.Errorf("no review provider configured (use --provider or set review.provider)")
	}

	// API keys come from the environment only.
	switch cfg.Review.Provider {
	case "openai":
		cfg.Review.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Review.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Review.BaseURL = baseURL
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() { _ = st.Close() }()

	runID := reviewRunID
	if runID == 0 {
		run, err := st.LatestRun(ctx)
		if err != nil {
			return fmt.Errorf("find latest run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("no runs recorded; execute 'nexo run' first")
		}
		runID = run.ID
	}

	pairs, err := st.UnreviewedPairs(ctx, runID)
	if err != nil {
		return fmt.Errorf("load unreviewed pairs: %w", err)
	}
	if len(pairs) == 0 {
		fmt.Println("All pairs of this run are already reviewed.")
		return nil
	}

	reviewer, err := review.NewReviewer(cfg.Review)
	if err != nil {
		return fmt.Errorf("initialize reviewer: %w", err)
	}
	if !reviewer.Provider().IsAvailable(ctx) {
		return fmt.Errorf("review provider %q is not reachable", reviewer.Provider().Name())
	}

	fmt.Fprintf(os.Stderr, "Reviewing %d pairs with %d workers (%s/%s)...\n",
		len(pairs), cfg.Review.Workers, cfg.Review.Provider, cfg.Review.Model)

	processor := worker.NewBatchProcessor(reviewer, cfg.Review.Workers)
	results := processor.ProcessPairs(ctx, pairs)

	var (
		reviews  []model.Review
		verdicts = make(map[model.Verdict]int)
		failures int
	)
	for _, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s/%s: %v\n", res.Pair.Source.RecordID, res.Pair.Death.RecordID, res.Error)
			continue
		}
		if err := st.SaveReview(ctx, *res.Review); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s/%s: %v\n", res.Pair.Source.RecordID, res.Pair.Death.RecordID, err)
			continue
		}
		reviews = append(reviews, *res.Review)
		verdicts[res.Review.Verdict]++
	}

	if len(reviews) > 0 {
		writer, err := report.NewWriter(cfg.Output.Dir)
		if err != nil {
			return err
		}
		if _, err := writer.WriteReviews(reviews); err != nil {
			return fmt.Errorf("write reviews: %w", err)
		}
	}

	fmt.Printf("\nReviewed %d pairs: corroborated %d, refuted %d, inconclusive %d",
		len(reviews),
		verdicts[model.VerdictCorroborated], verdicts[model.VerdictRefuted],
		verdicts[model.VerdictInconclusive])
	if failures > 0 {
		fmt.Printf(" (%d failed)", failures)
	}
	fmt.Println()

	return nil
}
