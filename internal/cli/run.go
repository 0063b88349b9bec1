package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nexo/internal/model"
	"nexo/internal/pipeline"
	"nexo/internal/report"
	"nexo/internal/store"
)

var (
	missingPath   string
	corpsesPath   string
	homicidesPath string
	threshold     float64
	maxAgeDiff    int
	dbPath        string
	outDir        string
	bestOnly      bool
	runTimeout    time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Link missing-person reports against death records",
	Long: `Run executes the full linkage sequence:
- Ingest and normalize the dataset exports
- Match records in three passes (name+birth date, name+birth year, name only)
- Resolve matched records into persons and build case timelines
- Correlate each disappearance with later deaths and label the pairs
- Persist results for later review and export CSV/JSON reports

Example:
  nexo run --missing missing.csv --corpses corpses.csv
  nexo run --missing missing.csv --corpses corpses.csv --homicides homicides.csv
  nexo run --missing missing.csv --homicides homicides.csv --threshold 0.9 --best-only`,
	RunE: runLinkage,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&missingPath, "missing", "", "missing-person dataset CSV (required)")
	runCmd.Flags().StringVar(&corpsesPath, "corpses", "", "corpse-discovery dataset CSV")
	runCmd.Flags().StringVar(&homicidesPath, "homicides", "", "homicide dataset CSV")
	runCmd.Flags().Float64Var(&threshold, "threshold", 0, "similarity threshold override (0 = configured value)")
	runCmd.Flags().IntVar(&maxAgeDiff, "max-age-diff", 0, "weak-pass age tolerance override in years (0 = configured value)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "result database path override")
	runCmd.Flags().StringVar(&outDir, "out-dir", "", "output directory override")
	runCmd.Flags().BoolVar(&bestOnly, "best-only", false, "keep only the most plausible pair per person")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout")

	_ = runCmd.MarkFlagRequired("missing")
}

func runLinkage(cmd *cobra.Command, args []string) error {
	if corpsesPath == "" && homicidesPath == "" {
		return fmt.Errorf("at least one death dataset is required (--corpses or --homicides)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if threshold > 0 {
		cfg.Matching.Threshold = threshold
	}
	if maxAgeDiff > 0 {
		cfg.Matching.MaxAgeDiffYears = maxAgeDiff
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	cfg.Output.Verbose = verbose

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() { _ = st.Close() }()

	targets := []struct {
		path string
		kind model.DatasetKind
	}{
		{corpsesPath, model.DatasetCorpse},
		{homicidesPath, model.DatasetHomicide},
	}

	for _, target := range targets {
		if target.path == "" {
			continue
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Linking %s against %s...\n", missingPath, target.path)
		}

		runCfg := *cfg
		runCfg.Output.Dir = filepath.Join(cfg.Output.Dir, string(target.kind))
		p := pipeline.NewPipeline(&runCfg, st)

		result, err := p.Run(ctx, pipeline.RunInput{
			SourcePath: missingPath,
			SourceKind: model.DatasetDisappearance,
			TargetPath: target.path,
			TargetKind: target.kind,
			BestOnly:   bestOnly,
		})
		if err != nil {
			return fmt.Errorf("link against %s: %w", target.kind, err)
		}

		writer, err := p.Export(result)
		if err != nil {
			return fmt.Errorf("export %s results: %w", target.kind, err)
		}

		report.RenderSummary(os.Stdout, report.RunSummary{
			SourceDataset: model.DatasetDisappearance,
			TargetDataset: target.kind,
			SourceCount:   result.SourceCount,
			TargetCount:   result.TargetCount,
			Matches:       result.Matches,
			Pairs:         result.Pairs,
			Persons:       result.Persons,
			OutputDir:     writer.Dir(),
		})
	}

	return nil
}
