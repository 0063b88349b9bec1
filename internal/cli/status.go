package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nexo/internal/report"
	"nexo/internal/store"
)

var (
	statusDB       string
	statusWatch    bool
	statusInterval time.Duration
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the latest linkage run",
	Long: `Status reads the result database and prints match, correlation and
review counts for the most recent run. With --watch it polls while a run
is in progress.

Example:
  nexo status
  nexo status --watch --interval 5s`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusDB, "db", "", "result database path override")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "poll until the run completes")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 10*time.Second, "poll interval with --watch")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if statusDB != "" {
		cfg.Store.Path = statusDB
	}

	if _, err := os.Stat(cfg.Store.Path); err != nil {
		return fmt.Errorf("no result database at %s; execute 'nexo run' first", cfg.Store.Path)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	for {
		sum, err := st.Summarize(ctx)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		report.RenderStatus(os.Stdout, sum)

		if !statusWatch || sum.Run == nil || sum.Run.Status != store.RunRunning {
			return nil
		}
		fmt.Println()
		time.Sleep(statusInterval)
	}
}
