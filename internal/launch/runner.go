// internal/launch/runner.go
package launch

import (
	"context"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/client"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/wallet"
	"go.uber.org/zap"
)

type Runner struct {
	logger   *zap.Logger
	client   *client.Client
	wallets  wallet.Set
	passes   map[solana.PublicKey]solana.PublicKey
	eventBus *events.Bus
	recorder Recorder
	workers  int
}

// NewRunner builds a runner; bus and recorder may be nil.
func NewRunner(
	logger *zap.Logger,
	c *client.Client,
	wallets wallet.Set,
	passes map[solana.PublicKey]solana.PublicKey,
	bus *events.Bus,
	recorder Recorder,
	workers int,
) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		logger:   logger.Named("launch"),
		client:   c,
		wallets:  wallets,
		passes:   passes,
		eventBus: bus,
		recorder: recorder,
		workers:  workers,
	}
}

// Run executes tasks on the worker pool. Tasks not started before ctx is
// cancelled have no result.
func (r *Runner) Run(ctx context.Context, tasks []*Task) Summary {
	taskCh := make(chan *Task, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	workers := min(r.workers, max(len(tasks), 1))
	r.logger.Info("Starting launches", zap.Int("tasks", len(tasks)), zap.Int("workers", workers))

	pool := NewWorkerPool(ctx, r.logger, r.client, r.wallets, r.passes, taskCh, r.eventBus, r.recorder)
	pool.Start(workers)
	results := pool.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].TaskID < results[j].TaskID })
	summary := Summary{Total: len(tasks), Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.FeesPaid += res.FeePaid
	}

	r.logger.Info("All workers finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Uint64("fees_paid", summary.FeesPaid))
	return summary
}
