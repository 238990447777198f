// cmd/launchpad/run.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rovshanmuradov/candy-launchpad/internal/app"
	"github.com/rovshanmuradov/candy-launchpad/internal/config"
	"github.com/rovshanmuradov/candy-launchpad/internal/export"
	"github.com/rovshanmuradov/candy-launchpad/internal/launch"
	"github.com/rovshanmuradov/candy-launchpad/internal/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportDir    string
	exportFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the ledger and execute the configured launches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LoggerConfig())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() {
			if err := log.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info("Starting launchpad", zap.String("config", configPath), zap.String("storage", cfg.Ledger.Storage))

		a := app.New(cfg, log)
		defer func() {
			if err := a.Close(); err != nil {
				log.LogError("Shutdown failed", err)
			}
		}()

		if err := a.Initialize(ctx); err != nil {
			return err
		}

		summary, err := a.RunLaunches(ctx)
		if err != nil {
			return err
		}
		printSummary(summary)

		if ctx.Err() != nil {
			log.Info("Interrupted before all launches finished")
		} else if cfg.MetricsAddr != "" {
			log.Info("Launches finished, serving metrics until interrupted", zap.String("addr", cfg.MetricsAddr))
			<-ctx.Done()
		}

		// drains the bus so the watcher has seen every candy store; the
		// deferred Close reports the error
		_ = a.Close()
		if exportDir == "" {
			return nil
		}
		path, err := export.NewLaunchExporter(log.Logger).ExportLaunches(
			export.Records(summary, a.CandyStores()),
			export.ExportOptions{Format: export.ExportFormat(exportFormat), OutputDir: exportDir},
		)
		if err != nil {
			return err
		}
		fmt.Printf("report written to %s\n", path)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&exportDir, "export-dir", "", "write a launch report into this directory")
	runCmd.Flags().StringVar(&exportFormat, "export-format", string(export.FormatCSV), "report format: csv|json")
}

func printSummary(summary *launch.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tWALLET\tCOLLECTION\tCANDY STORE\tFEE\tRESULT")
	for _, res := range summary.Results {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		collection, store := "-", "-"
		if !res.Collection.IsZero() {
			collection = res.Collection.String()
		}
		if !res.CandyStore.IsZero() {
			store = res.CandyStore.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", res.TaskName, res.WalletName, collection, store, res.FeePaid, status)
	}
	_ = w.Flush()
	fmt.Printf("\n%d launches: %d succeeded, %d failed, %d lamports in fees\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.FeesPaid)
}
