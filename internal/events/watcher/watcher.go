// internal/events/watcher/watcher.go
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"go.uber.org/zap"
)

// Watcher turns the logs of processed transactions into
// CandyStoreCreatedEvents and keeps every one it has seen.
type Watcher struct {
	bus    *events.Bus
	logger *zap.Logger

	mu     sync.RWMutex
	stores []*events.CandyStoreCreatedEvent
	sub    events.Subscription
}

func New(bus *events.Bus, logger *zap.Logger) *Watcher {
	return &Watcher{
		bus:    bus,
		logger: logger.Named("watcher"),
	}
}

// Start subscribes to processed transactions. Calling it twice is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		return
	}
	w.sub = w.bus.Subscribe(events.TransactionProcessed, events.Typed(w.handle))
}

// Stop unsubscribes; already collected stores are kept.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		w.sub.Unsubscribe()
		w.sub = nil
	}
}

// Stores returns the candy stores seen so far in delivery order.
func (w *Watcher) Stores() []*events.CandyStoreCreatedEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*events.CandyStoreCreatedEvent(nil), w.stores...)
}

func (w *Watcher) handle(_ context.Context, tx *events.TransactionProcessedEvent) error {
	if tx.Err != nil {
		return nil
	}
	created, err := launchpad.ParseCreateCandyStoreEvents(tx.Logs)
	if err != nil {
		w.logger.Warn("Undecodable launchpad event",
			zap.String("signature", tx.Signature),
			zap.Error(err))
		return err
	}

	for _, c := range created {
		event := &events.CandyStoreCreatedEvent{
			BaseEvent: events.BaseEvent{
				EventType: events.CandyStoreCreated,
				EventTime: time.Now(),
			},
			Signature:     tx.Signature,
			Slot:          tx.Slot,
			CandyStore:    c.CandyStore.String(),
			Owner:         c.Owner.String(),
			Collection:    c.Collection.String(),
			Name:          c.Name,
			URL:           c.URL,
			ManifestID:    c.ManifestID,
			NumberOfItems: c.NumberOfItems,
		}

		w.mu.Lock()
		w.stores = append(w.stores, event)
		w.mu.Unlock()

		w.logger.Info("Candy store created",
			zap.String("candy_store", event.CandyStore),
			zap.String("collection", event.Collection),
			zap.String("owner", event.Owner),
			zap.String("signature", event.Signature))

		if err := w.bus.Publish(event); err != nil {
			w.logger.Warn("Failed to publish candy store event", zap.Error(err))
		}
	}
	return nil
}
