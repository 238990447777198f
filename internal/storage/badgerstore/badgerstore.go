// internal/storage/badgerstore/badgerstore.go
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
	"go.uber.org/zap"
)

const (
	accountPrefix     = "acct/"
	transactionPrefix = "tx/"

	gcInterval = 5 * time.Minute
	// value log GC starts once the LSM or the value log outgrows these
	gcLSMThreshold  = 8 << 20
	gcVlogThreshold = 32 << 20
)

// badgerLogger реализует интерфейс badger.Logger поверх zap
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newBadgerLogger(zapLogger *zap.Logger) badgerdb.Logger {
	return &badgerLogger{sugar: zapLogger.Sugar()}
}

func (l *badgerLogger) Errorf(msg string, args ...interface{})   { l.sugar.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...interface{}) { l.sugar.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...interface{})    { l.sugar.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...interface{})   { l.sugar.Debugf(msg, args...) }

// Store persists ledger state in BadgerDB.
type Store struct {
	db     *badgerdb.DB
	logger *zap.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ storage.Storage = (*Store)(nil)

// Open opens (or creates) a Badger database under dir. An empty dir opens an
// in-memory database.
func Open(dir string, syncWrites bool, logger *zap.Logger) (*Store, error) {
	logger = logger.Named("badger")

	var opts badgerdb.Options
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		opts = badgerdb.DefaultOptions(dir).WithSyncWrites(syncWrites)
	}
	opts = opts.WithLogger(newBadgerLogger(logger))

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	logger.Info("Badger store opened",
		zap.String("dir", dir),
		zap.Bool("in_memory", dir == ""))

	s := &Store{db: db, logger: logger, done: make(chan struct{})}
	if dir != "" {
		s.wg.Add(1)
		go s.gcLoop(gcInterval)
	}
	return s, nil
}

func (s *Store) gcLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			lsm, vlog := s.db.Size()
			s.logger.Debug("Badger size", zap.Int64("lsm", lsm), zap.Int64("vlog", vlog))
			if lsm > gcLSMThreshold || vlog > gcVlogThreshold {
				err := s.db.RunValueLogGC(0.5)
				if err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
					s.logger.Warn("Badger value log GC failed", zap.Error(err))
				}
			}
		}
	}
}

func accountKey(key solana.PublicKey) []byte {
	return append([]byte(accountPrefix), key.Bytes()...)
}

func transactionKey(signature string) []byte {
	return []byte(transactionPrefix + signature)
}

func (s *Store) GetAccount(_ context.Context, key solana.PublicKey) (*models.Account, error) {
	var acc models.Account
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(accountKey(key))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return acc.UnmarshalBinary(value)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account %s: %w", key, err)
	}
	return &acc, nil
}

func (s *Store) Commit(ctx context.Context, changes map[solana.PublicKey]*models.Account, record *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		for key, acc := range changes {
			if acc == nil {
				if err := txn.Delete(accountKey(key)); err != nil {
					return err
				}
				continue
			}
			value, err := acc.MarshalBinary()
			if err != nil {
				return err
			}
			if err := txn.Set(accountKey(key), value); err != nil {
				return err
			}
		}
		if record == nil {
			return nil
		}
		value, err := record.MarshalBinary()
		if err != nil {
			return err
		}
		return txn.Set(transactionKey(record.Signature), value)
	})
	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(_ context.Context, signature string) (*models.Transaction, error) {
	var rec models.Transaction
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(transactionKey(signature))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return rec.UnmarshalBinary(value)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction %s: %w", signature, err)
	}
	return &rec, nil
}

func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing badger store")
		close(s.done)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
