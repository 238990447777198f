package watcher_test

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/client"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/events/watcher"
	"github.com/rovshanmuradov/candy-launchpad/internal/genesis"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func eventLog(t *testing.T, event *launchpad.CreateCandyStoreEvent) string {
	t.Helper()
	data, err := anchor.Serialize(anchor.EventDiscriminator("CreateCandyStoreEvent"), event)
	require.NoError(t, err)
	return "Program data: " + base64.StdEncoding.EncodeToString(data)
}

func TestWatcherDecodesProcessedTransactions(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 16)
	w := watcher.New(bus, zap.NewNop())
	w.Start()
	w.Start()

	var mu sync.Mutex
	var published []*events.CandyStoreCreatedEvent
	bus.Subscribe(events.CandyStoreCreated, events.Typed(func(_ context.Context, e *events.CandyStoreCreatedEvent) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e)
		return nil
	}))

	created := &launchpad.CreateCandyStoreEvent{
		CandyStore:    solana.NewWallet().PublicKey(),
		Owner:         solana.NewWallet().PublicKey(),
		Collection:    solana.NewWallet().PublicKey(),
		Name:          "Store",
		URL:           "https://example.com",
		ManifestID:    "m-1",
		NumberOfItems: 3,
	}
	ctx := context.Background()
	require.NoError(t, bus.PublishSync(ctx, &events.TransactionProcessedEvent{
		BaseEvent: events.NewBase(events.TransactionProcessed),
		Signature: "sig-1",
		Slot:      7,
		Logs:      []string{"Program log: Instruction: InitializeCandyStore", eventLog(t, created)},
	}))
	require.NoError(t, bus.PublishSync(ctx, &events.TransactionProcessedEvent{
		BaseEvent: events.NewBase(events.TransactionProcessed),
		Signature: "sig-2",
		Logs:      []string{eventLog(t, created)},
		Err:       ledger.ErrInvalidArgument,
	}))
	require.NoError(t, bus.Shutdown(ctx))

	stores := w.Stores()
	require.Len(t, stores, 1, "failed transactions are skipped")
	assert.Equal(t, "sig-1", stores[0].Signature)
	assert.Equal(t, uint64(7), stores[0].Slot)
	assert.Equal(t, created.CandyStore.String(), stores[0].CandyStore)
	assert.Equal(t, created.Collection.String(), stores[0].Collection)
	assert.Equal(t, "m-1", stores[0].ManifestID)
	assert.Equal(t, uint64(3), stores[0].NumberOfItems)

	assert.Equal(t, stores, published)
}

func TestWatcherStop(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())
	w := watcher.New(bus, zap.NewNop())
	w.Start()
	w.Stop()
	w.Stop()

	require.NoError(t, bus.PublishSync(context.Background(), &events.TransactionProcessedEvent{
		BaseEvent: events.NewBase(events.TransactionProcessed),
		Logs:      []string{eventLog(t, &launchpad.CreateCandyStoreEvent{Name: "x"})},
	}))
	assert.Empty(t, w.Stores())
}

func TestWatcherFollowsLedger(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(zap.NewNop(), 64)
	w := watcher.New(bus, zap.NewNop())
	w.Start()

	l := ledger.New(memory.New(), ledger.WithPublisher(bus))
	c := client.New(l, zap.NewNop(), client.DefaultConfig())
	owner := solana.NewWallet().PrivateKey
	admin := solana.NewWallet().PrivateKey
	_, err := genesis.Apply(ctx, l, c, genesis.Params{
		Admin:          admin,
		Treasury:       solana.NewWallet().PublicKey(),
		TransactionFee: 1_000,
		Airdrops: []genesis.Airdrop{
			{Account: admin.PublicKey(), Lamports: 1_000_000_000},
			{Account: owner.PublicKey(), Lamports: 1_000_000_000},
		},
	}, zap.NewNop())
	require.NoError(t, err)

	receipt, err := c.LaunchInOneTransaction(ctx, owner, client.CollectionRequest{
		Collection: solana.NewWallet().PrivateKey,
		Name:       "Watched",
	}, client.StoreRequest{Name: "Watched Store", NumberOfItems: 1})
	require.NoError(t, err)
	require.NoError(t, bus.Shutdown(ctx))

	stores := w.Stores()
	require.Len(t, stores, 1)
	assert.Equal(t, receipt.CandyStore.String(), stores[0].CandyStore)
	assert.Equal(t, receipt.Signature.String(), stores[0].Signature)
	assert.Equal(t, owner.PublicKey().String(), stores[0].Owner)
}
