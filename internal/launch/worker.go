// internal/launch/worker.go
package launch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/client"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/wallet"
	"go.uber.org/zap"
)

var ErrNoPass = errors.New("wallet holds no platform pass")

// Recorder receives launch metrics; *metrics.Collector satisfies it.
type Recorder interface {
	RecordFee(lamports uint64)
	RecordLaunch(success bool)
}

type WorkerPool struct {
	wg       sync.WaitGroup
	ctx      context.Context
	tasks    <-chan *Task
	logger   *zap.Logger
	client   *client.Client
	wallets  wallet.Set
	passes   map[solana.PublicKey]solana.PublicKey
	eventBus *events.Bus
	recorder Recorder

	mu      sync.Mutex
	results []Result
}

func NewWorkerPool(
	ctx context.Context,
	logger *zap.Logger,
	c *client.Client,
	wallets wallet.Set,
	passes map[solana.PublicKey]solana.PublicKey,
	tasks <-chan *Task,
	eventBus *events.Bus,
	recorder Recorder,
) *WorkerPool {
	return &WorkerPool{
		ctx:      ctx,
		logger:   logger,
		tasks:    tasks,
		client:   c,
		wallets:  wallets,
		passes:   passes,
		eventBus: eventBus,
		recorder: recorder,
	}
}

func (wp *WorkerPool) Start(n int) {
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

// Wait blocks until every worker has exited and returns the results in
// completion order.
func (wp *WorkerPool) Wait() []Result {
	wp.wg.Wait()
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return append([]Result(nil), wp.results...)
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for {
		select {
		case <-wp.ctx.Done():
			logger.Info("Worker shutting down due to context cancellation")
			return
		case t, ok := <-wp.tasks:
			if !ok {
				logger.Debug("Task channel closed")
				return
			}
			wp.handleTask(wp.ctx, t, logger)
		}
	}
}

func (wp *WorkerPool) publish(event events.Event) {
	if wp.eventBus == nil {
		return
	}
	if err := wp.eventBus.Publish(event); err != nil {
		wp.logger.Debug("Launch event dropped", zap.String("event_type", string(event.Type())), zap.Error(err))
	}
}

func (wp *WorkerPool) handleTask(ctx context.Context, t *Task, logger *zap.Logger) {
	logger = logger.With(zap.String("task", t.TaskName), zap.String("wallet", t.WalletName))
	start := time.Now()

	wp.publish(&events.LaunchStartedEvent{
		BaseEvent:  events.NewBase(events.LaunchStarted),
		TaskID:     t.ID,
		TaskName:   t.TaskName,
		WalletName: t.WalletName,
	})

	result := Result{TaskID: t.ID, TaskName: t.TaskName, WalletName: t.WalletName}
	err := wp.execute(ctx, t, &result)
	result.Duration = time.Since(start)
	result.Err = err

	if wp.recorder != nil {
		wp.recorder.RecordLaunch(err == nil)
	}

	if err != nil {
		logger.Error("Launch failed", zap.Error(err))
		wp.publish(&events.LaunchFailedEvent{
			BaseEvent:  events.NewBase(events.LaunchFailed),
			TaskID:     t.ID,
			TaskName:   t.TaskName,
			WalletName: t.WalletName,
			Error:      err,
		})
	} else {
		if wp.recorder != nil {
			wp.recorder.RecordFee(result.FeePaid)
		}
		logger.Info("Launch completed",
			zap.String("collection", result.Collection.String()),
			zap.String("candy_store", result.CandyStore.String()),
			zap.Uint64("fee", result.FeePaid),
			zap.Duration("duration", result.Duration))

		signatures := make([]string, 0, len(result.Signatures))
		for _, sig := range result.Signatures {
			signatures = append(signatures, sig.String())
		}
		wp.publish(&events.LaunchCompletedEvent{
			BaseEvent:  events.NewBase(events.LaunchCompleted),
			TaskID:     t.ID,
			TaskName:   t.TaskName,
			WalletName: t.WalletName,
			Collection: result.Collection.String(),
			CandyStore: result.CandyStore.String(),
			FeePaid:    result.FeePaid,
			Signatures: signatures,
		})
	}

	wp.mu.Lock()
	wp.results = append(wp.results, result)
	wp.mu.Unlock()
}

func (wp *WorkerPool) execute(ctx context.Context, t *Task, result *Result) error {
	w, err := wp.wallets.Get(t.WalletName)
	if err != nil {
		return err
	}

	store := client.StoreRequest{
		Name:          t.Store.Name,
		URL:           t.Store.URL,
		ManifestID:    t.Store.ManifestID,
		NumberOfItems: t.Store.NumberOfItems,
	}
	if t.UsePass {
		pass, ok := wp.passes[w.PublicKey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoPass, t.WalletName)
		}
		store.Pass = pass
	}

	coll := client.CollectionRequest{
		Collection:      solana.NewWallet().PrivateKey,
		UpdateAuthority: t.Collection.UpdateAuthority,
		Name:            t.Collection.Name,
		URI:             t.Collection.URI,
	}
	result.Collection = coll.Collection.PublicKey()

	if t.SingleTransaction {
		receipt, err := wp.client.LaunchInOneTransaction(ctx, w.PrivateKey, coll, store)
		if err != nil {
			return err
		}
		result.CandyStore = receipt.CandyStore
		result.FeePaid = receipt.FeePaid
		result.Signatures = []solana.Signature{receipt.Signature}
		return nil
	}

	res, err := wp.client.CreateCollection(ctx, w.PrivateKey, coll)
	if err != nil {
		return err
	}
	result.Signatures = append(result.Signatures, res.Signature)

	store.Collection = result.Collection
	receipt, err := wp.client.InitializeCandyStore(ctx, w.PrivateKey, store)
	if err != nil {
		return err
	}
	result.CandyStore = receipt.CandyStore
	result.FeePaid = receipt.FeePaid
	result.Signatures = append(result.Signatures, receipt.Signature)
	return nil
}
