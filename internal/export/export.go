// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/launch"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	WalletFilter string // only launches of this wallet
	OnlySuccess  bool
	OutputDir    string
}

// LaunchRecord is one exported launch.
type LaunchRecord struct {
	TaskID     int      `json:"task_id"`
	TaskName   string   `json:"task_name"`
	Wallet     string   `json:"wallet"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Collection string   `json:"collection,omitempty"`
	CandyStore string   `json:"candy_store,omitempty"`
	FeePaid    uint64   `json:"fee_paid"`
	Signatures []string `json:"signatures,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	// Filled from the observed CreateCandyStoreEvent, when there is one.
	StoreName     string `json:"store_name,omitempty"`
	ManifestID    string `json:"manifest_id,omitempty"`
	NumberOfItems uint64 `json:"number_of_items,omitempty"`
	Slot          uint64 `json:"slot,omitempty"`
}

func csvHeaders() []string {
	return []string{
		"task_id", "task_name", "wallet", "success", "error", "collection", "candy_store",
		"fee_paid", "signatures", "duration_ms", "store_name", "manifest_id", "number_of_items", "slot",
	}
}

func (r LaunchRecord) toCSV() []string {
	return []string{
		strconv.Itoa(r.TaskID),
		r.TaskName,
		r.Wallet,
		strconv.FormatBool(r.Success),
		r.Error,
		r.Collection,
		r.CandyStore,
		strconv.FormatUint(r.FeePaid, 10),
		strings.Join(r.Signatures, " "),
		strconv.FormatInt(r.DurationMs, 10),
		r.StoreName,
		r.ManifestID,
		strconv.FormatUint(r.NumberOfItems, 10),
		strconv.FormatUint(r.Slot, 10),
	}
}

// ExportSummary contains summary statistics for exported launches
type ExportSummary struct {
	TotalLaunches      int    `json:"total_launches"`
	SuccessfulLaunches int    `json:"successful_launches"`
	FailedLaunches     int    `json:"failed_launches"`
	UniqueWallets      int    `json:"unique_wallets"`
	TotalFees          uint64 `json:"total_fees"`
	WaivedLaunches     int    `json:"waived_launches"`
	TotalItems         uint64 `json:"total_items"`
	AvgDurationMs      int64  `json:"avg_duration_ms"`
}

// LaunchExporter writes launch results to disk.
type LaunchExporter struct {
	logger *zap.Logger
}

func NewLaunchExporter(logger *zap.Logger) *LaunchExporter {
	return &LaunchExporter{logger: logger.Named("export")}
}

// Records joins launch results with the candy store events observed on the
// ledger, keyed by candy store address.
func Records(summary *launch.Summary, stores []*events.CandyStoreCreatedEvent) []LaunchRecord {
	byStore := make(map[string]*events.CandyStoreCreatedEvent, len(stores))
	for _, s := range stores {
		byStore[s.CandyStore] = s
	}

	records := make([]LaunchRecord, 0, len(summary.Results))
	for _, res := range summary.Results {
		rec := LaunchRecord{
			TaskID:     res.TaskID,
			TaskName:   res.TaskName,
			Wallet:     res.WalletName,
			Success:    res.Err == nil,
			FeePaid:    res.FeePaid,
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		if !res.Collection.IsZero() {
			rec.Collection = res.Collection.String()
		}
		if !res.CandyStore.IsZero() {
			rec.CandyStore = res.CandyStore.String()
		}
		for _, sig := range res.Signatures {
			rec.Signatures = append(rec.Signatures, sig.String())
		}
		if ev, ok := byStore[rec.CandyStore]; ok && rec.CandyStore != "" {
			rec.StoreName = ev.Name
			rec.ManifestID = ev.ManifestID
			rec.NumberOfItems = ev.NumberOfItems
			rec.Slot = ev.Slot
		}
		records = append(records, rec)
	}
	return records
}

// ExportLaunches writes the records matching options and returns the file path.
func (le *LaunchExporter) ExportLaunches(records []LaunchRecord, options ExportOptions) (string, error) {
	filtered := le.filterRecords(records, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no launches match the export criteria")
	}

	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, le.generateFilename(options))

	var err error
	switch options.Format {
	case FormatCSV:
		err = le.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = le.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	le.logger.Info("Launches exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))
	return outputPath, nil
}

func (le *LaunchExporter) filterRecords(records []LaunchRecord, options ExportOptions) []LaunchRecord {
	var filtered []LaunchRecord
	for _, rec := range records {
		if options.WalletFilter != "" && rec.Wallet != options.WalletFilter {
			continue
		}
		if options.OnlySuccess && !rec.Success {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

func (le *LaunchExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")
	prefix := "launches_all"
	if options.WalletFilter != "" {
		prefix = "launches_" + options.WalletFilter
	}
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func (le *LaunchExporter) exportToCSV(records []LaunchRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(rec.toCSV()); err != nil {
			return fmt.Errorf("failed to write launch: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (le *LaunchExporter) exportToJSON(records []LaunchRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime  time.Time      `json:"export_time"`
		LaunchCount int            `json:"launch_count"`
		Launches    []LaunchRecord `json:"launches"`
		Summary     ExportSummary  `json:"summary"`
	}{
		ExportTime:  time.Now(),
		LaunchCount: len(records),
		Launches:    records,
		Summary:     calculateSummary(records),
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func calculateSummary(records []LaunchRecord) ExportSummary {
	summary := ExportSummary{TotalLaunches: len(records)}
	if len(records) == 0 {
		return summary
	}

	wallets := make(map[string]bool)
	var totalMs int64
	for _, rec := range records {
		wallets[rec.Wallet] = true
		totalMs += rec.DurationMs
		if !rec.Success {
			summary.FailedLaunches++
			continue
		}
		summary.SuccessfulLaunches++
		summary.TotalFees += rec.FeePaid
		summary.TotalItems += rec.NumberOfItems
		if rec.FeePaid == 0 {
			summary.WaivedLaunches++
		}
	}
	summary.UniqueWallets = len(wallets)
	summary.AvgDurationMs = totalMs / int64(len(records))
	return summary
}
