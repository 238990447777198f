package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/launch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSummary() (*launch.Summary, []*events.CandyStoreCreatedEvent) {
	paidStore := solana.NewWallet().PublicKey()
	freeStore := solana.NewWallet().PublicKey()
	summary := &launch.Summary{
		Total: 3, Succeeded: 2, Failed: 1, FeesPaid: 1_000_000,
		Results: []launch.Result{
			{
				TaskID: 0, TaskName: "paid", WalletName: "bob",
				Collection: solana.NewWallet().PublicKey(), CandyStore: paidStore,
				FeePaid: 1_000_000, Signatures: []solana.Signature{{1}, {2}}, Duration: 40 * time.Millisecond,
			},
			{
				TaskID: 1, TaskName: "free", WalletName: "alice",
				Collection: solana.NewWallet().PublicKey(), CandyStore: freeStore,
				Signatures: []solana.Signature{{3}}, Duration: 20 * time.Millisecond,
			},
			{
				TaskID: 2, TaskName: "broken", WalletName: "carol",
				Err: errors.New("wallet not found: carol"),
			},
		},
	}
	stores := []*events.CandyStoreCreatedEvent{
		{CandyStore: paidStore.String(), Name: "Paid Store", ManifestID: "m-1", NumberOfItems: 100, Slot: 7},
		{CandyStore: freeStore.String(), Name: "Free Store", ManifestID: "m-2", NumberOfItems: 50, Slot: 8},
	}
	return summary, stores
}

func TestRecords(t *testing.T) {
	summary, stores := testSummary()
	records := Records(summary, stores)
	require.Len(t, records, 3)

	assert.True(t, records[0].Success)
	assert.Equal(t, "Paid Store", records[0].StoreName)
	assert.Equal(t, uint64(7), records[0].Slot)
	assert.Len(t, records[0].Signatures, 2)
	assert.Equal(t, int64(40), records[0].DurationMs)

	assert.False(t, records[2].Success)
	assert.Equal(t, "wallet not found: carol", records[2].Error)
	assert.Empty(t, records[2].Collection)
	assert.Empty(t, records[2].StoreName)
}

func TestExportLaunchesCSV(t *testing.T) {
	exporter := NewLaunchExporter(zap.NewNop())
	summary, stores := testSummary()

	path, err := exporter.ExportLaunches(Records(summary, stores), ExportOptions{Format: FormatCSV, OutputDir: t.TempDir()})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeaders(), rows[0])
	assert.Equal(t, "paid", rows[1][1])
	assert.Equal(t, "1000000", rows[1][7])
	assert.Equal(t, "false", rows[3][3])
}

func TestExportLaunchesJSON(t *testing.T) {
	exporter := NewLaunchExporter(zap.NewNop())
	summary, stores := testSummary()

	path, err := exporter.ExportLaunches(Records(summary, stores), ExportOptions{
		Format:      FormatJSON,
		OutputDir:   t.TempDir(),
		OnlySuccess: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		LaunchCount int            `json:"launch_count"`
		Launches    []LaunchRecord `json:"launches"`
		Summary     ExportSummary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))

	assert.Equal(t, 2, decoded.LaunchCount)
	assert.Equal(t, 2, decoded.Summary.SuccessfulLaunches)
	assert.Equal(t, 1, decoded.Summary.WaivedLaunches)
	assert.Equal(t, uint64(1_000_000), decoded.Summary.TotalFees)
	assert.Equal(t, uint64(150), decoded.Summary.TotalItems)
	assert.Equal(t, int64(30), decoded.Summary.AvgDurationMs)
}

func TestExportLaunchesFilters(t *testing.T) {
	exporter := NewLaunchExporter(zap.NewNop())
	summary, stores := testSummary()
	records := Records(summary, stores)

	_, err := exporter.ExportLaunches(records, ExportOptions{Format: FormatJSON, OutputDir: t.TempDir(), WalletFilter: "dave"})
	assert.ErrorContains(t, err, "no launches match")

	_, err = exporter.ExportLaunches(records, ExportOptions{Format: "xml", OutputDir: t.TempDir()})
	assert.ErrorContains(t, err, "unsupported format")

	filtered := exporter.filterRecords(records, ExportOptions{WalletFilter: "alice"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "free", filtered[0].TaskName)
}
