// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/client"
	"github.com/rovshanmuradov/candy-launchpad/internal/config"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/events/watcher"
	"github.com/rovshanmuradov/candy-launchpad/internal/genesis"
	"github.com/rovshanmuradov/candy-launchpad/internal/launch"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/computebudget"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/badgerstore"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/memory"
	"github.com/rovshanmuradov/candy-launchpad/internal/utils/logger"
	"github.com/rovshanmuradov/candy-launchpad/internal/utils/metrics"
	"github.com/rovshanmuradov/candy-launchpad/internal/wallet"
	"go.uber.org/zap"
)

const eventBufferSize = 1024

// App wires the ledger, the programs and the launch runner from a config.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	logger  *zap.Logger
	store   storage.Storage
	ledger  *ledger.Ledger
	bus     *events.Bus
	watcher *watcher.Watcher
	metrics *metrics.Collector
	client  *client.Client
	wallets wallet.Set
	genesis *genesis.Result

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func New(cfg *config.Config, log *logger.Logger) *App {
	return &App{
		cfg:    cfg,
		log:    log,
		logger: log.WithComponent("app"),
	}
}

func (a *App) openStorage() (storage.Storage, error) {
	switch a.cfg.Ledger.Storage {
	case config.StorageBadger:
		return badgerstore.Open(a.cfg.Ledger.BadgerPath, a.cfg.Ledger.SyncWrites, a.log.Logger)
	case config.StorageMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Ledger.Storage)
	}
}

// Initialize opens storage, loads wallets and applies genesis. Background
// services stop when ctx is cancelled or Close is called.
func (a *App) Initialize(ctx context.Context) error {
	end := a.log.TrackPerformance("initialize")
	defer end()

	wallets, err := wallet.LoadWallets(a.cfg.WalletsPath)
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}
	a.wallets = wallets
	a.logger.Info("Loaded wallets", zap.Strings("names", wallets.Names()))

	store, err := a.openStorage()
	if err != nil {
		return err
	}
	a.store = store

	ctx, a.cancel = context.WithCancel(ctx)

	a.bus = events.NewBus(a.log.Logger, eventBufferSize)
	a.metrics = metrics.NewCollector()
	for _, p := range []struct {
		id   solana.PublicKey
		name string
	}{
		{solana.SystemProgramID, "system"},
		{computebudget.ProgramID, "compute_budget"},
		{mplcore.ProgramID, "mpl_core"},
		{launchpad.ProgramID, "launchpad"},
	} {
		a.metrics.NameProgram(p.id, p.name)
		a.log.WithProgram(p.name, p.id.String()).Debug("Program enabled")
	}

	a.ledger = ledger.New(store,
		ledger.WithLogger(a.log.Logger),
		ledger.WithRecorder(a.metrics),
		ledger.WithPublisher(a.bus),
		ledger.WithComputeUnitLimit(a.cfg.Ledger.ComputeUnitLimit),
		ledger.WithMaxInvokeDepth(a.cfg.Ledger.MaxInvokeDepth),
		ledger.WithParallelism(a.cfg.Ledger.Parallelism),
	)

	a.watcher = watcher.New(a.bus, a.log.Logger)
	a.watcher.Start()

	a.client = client.New(a.ledger, a.log.Logger, client.Config{
		MaxTries:        uint(a.cfg.Retries),
		InitialInterval: a.cfg.RetryInterval,
		MaxElapsed:      a.cfg.RetryMaxElapsed,
	})

	params, err := a.genesisParams()
	if err != nil {
		return err
	}
	res, err := genesis.Apply(ctx, a.ledger, a.client, params, a.log.Logger)
	if err != nil {
		return fmt.Errorf("genesis failed: %w", err)
	}
	a.genesis = res

	if a.cfg.Ledger.SlotInterval > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.ledger.RunSlotClock(ctx, a.cfg.Ledger.SlotInterval)
		}()
	}

	if a.cfg.MetricsAddr != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.metrics.Serve(ctx, a.cfg.MetricsAddr, a.logger); err != nil {
				a.log.LogError("Metrics server stopped", err)
			}
		}()
	}

	a.logger.Info("Launchpad ready",
		zap.String("settings", res.SettingsAddress.String()),
		zap.String("platform_collection", res.Settings.Collection.String()),
		zap.Uint64("transaction_fee", res.Settings.TransactionFee),
		zap.Bool("genesis_applied", res.Applied))
	return nil
}

// resolveKey accepts a wallet name or a base58 public key.
func (a *App) resolveKey(ref string) (solana.PublicKey, error) {
	if w, err := a.wallets.Get(ref); err == nil {
		return w.PublicKey, nil
	}
	key, err := solana.PublicKeyFromBase58(ref)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%q is neither a wallet nor a public key", ref)
	}
	return key, nil
}

func (a *App) genesisParams() (genesis.Params, error) {
	admin, err := a.wallets.Get(a.cfg.Settings.Admin)
	if err != nil {
		return genesis.Params{}, fmt.Errorf("admin wallet: %w", err)
	}

	params := genesis.Params{
		Admin:          admin.PrivateKey,
		Treasury:       a.cfg.Settings.TreasuryKey,
		TransactionFee: a.cfg.Settings.TransactionFee,
		CollectionName: a.cfg.Settings.CollectionName,
		CollectionURI:  a.cfg.Settings.CollectionURI,
	}

	for _, ref := range a.cfg.Settings.PassHolders {
		holder, err := a.resolveKey(ref)
		if err != nil {
			return genesis.Params{}, fmt.Errorf("pass holder: %w", err)
		}
		params.PassHolders = append(params.PassHolders, holder)
	}

	explicit := make(map[string]bool, len(a.cfg.Genesis.Airdrops))
	for _, airdrop := range a.cfg.Genesis.Airdrops {
		key, err := a.resolveKey(airdrop.Wallet)
		if err != nil {
			return genesis.Params{}, fmt.Errorf("airdrop: %w", err)
		}
		explicit[airdrop.Wallet] = true
		params.Airdrops = append(params.Airdrops, genesis.Airdrop{Account: key, Lamports: airdrop.Lamports})
	}
	if a.cfg.Genesis.DefaultAirdrop > 0 {
		for _, name := range a.wallets.Names() {
			if explicit[name] {
				continue
			}
			params.Airdrops = append(params.Airdrops, genesis.Airdrop{
				Account:  a.wallets[name].PublicKey,
				Lamports: a.cfg.Genesis.DefaultAirdrop,
			})
		}
	}
	return params, nil
}

// RunLaunches loads the launch file and executes every task.
func (a *App) RunLaunches(ctx context.Context) (*launch.Summary, error) {
	if a.ledger == nil {
		return nil, errors.New("app is not initialized")
	}

	tasks, err := launch.NewManager(a.log.Logger).LoadTasks(a.cfg.LaunchesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load launches: %w", err)
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	runner := launch.NewRunner(a.log.Logger, a.client, a.wallets, a.genesis.Passes, a.bus, a.metrics, workers)
	summary := runner.Run(ctx, tasks)

	for _, res := range summary.Results {
		launchLogger := a.log.WithLaunch(res.TaskName, res.WalletName)
		if res.Err != nil {
			launchLogger.Warn("Launch did not complete", zap.Error(res.Err))
			continue
		}
		for _, sig := range res.Signatures {
			a.log.WithTransaction(sig.String()).Debug("Launch transaction",
				zap.String("task", res.TaskName),
				zap.String("wallet", res.WalletName))
		}
	}
	return &summary, nil
}

func (a *App) Client() *client.Client      { return a.client }
func (a *App) Ledger() *ledger.Ledger      { return a.ledger }
func (a *App) Bus() *events.Bus            { return a.bus }
func (a *App) Metrics() *metrics.Collector { return a.metrics }
func (a *App) Genesis() *genesis.Result    { return a.genesis }

// CandyStores returns the stores the watcher has seen. Call Close first to
// include events still queued on the bus.
func (a *App) CandyStores() []*events.CandyStoreCreatedEvent {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Stores()
}

// Close stops background services, drains the bus and closes storage. It is
// safe to call after a failed Initialize and more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()

		var errs []error
		if a.bus != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			errs = append(errs, a.bus.Shutdown(ctx))
			cancel()
		}
		if a.watcher != nil {
			a.watcher.Stop()
		}
		if a.store != nil {
			errs = append(errs, a.store.Close())
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
