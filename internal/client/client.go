// internal/client/client.go
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"go.uber.org/zap"
)

// Ledger is the part of the ledger a client submits to and reads from.
type Ledger interface {
	LatestBlockhash() solana.Hash
	ProcessTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.TransactionResult, error)
	GetAccount(ctx context.Context, key solana.PublicKey) (*ledger.Account, error)
	GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error)
}

var _ Ledger = (*ledger.Ledger)(nil)

type Config struct {
	// MaxTries bounds submission attempts; zero means no limit besides MaxElapsed.
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultConfig returns the retry policy used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxTries:        5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsed:      10 * time.Second,
	}
}

// Client builds, signs and submits launchpad transactions.
type Client struct {
	ledger Ledger
	logger *zap.Logger
	config Config
}

func New(l Ledger, logger *zap.Logger, config Config) *Client {
	defaults := DefaultConfig()
	if config.InitialInterval <= 0 {
		config.InitialInterval = defaults.InitialInterval
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = defaults.MaxInterval
	}
	if config.MaxElapsed <= 0 {
		config.MaxElapsed = defaults.MaxElapsed
	}
	return &Client{
		ledger: l,
		logger: logger.Named("client"),
		config: config,
	}
}

// IsRetryable reports whether a rejected transaction may succeed when resent.
// Execution failures are final: the transaction ran and was rolled back.
func IsRetryable(err error) bool {
	return errors.Is(err, ledger.ErrAccountInUse) || errors.Is(err, ledger.ErrBlockhashNotFound)
}

func (c *Client) retryOptions() []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialInterval
	b.MaxInterval = c.config.MaxInterval

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(c.config.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("Retrying transaction", zap.Error(err), zap.Duration("backoff", next))
		}),
	}
	if c.config.MaxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(c.config.MaxTries))
	}
	return opts
}

// Send signs ixs with payer and signers and submits them, re-signing
// against a fresh blockhash on every attempt. The result is non-nil
// whenever the transaction executed, including when it failed.
func (c *Client) Send(ctx context.Context, payer solana.PrivateKey, ixs []solana.Instruction, signers ...solana.PrivateKey) (*ledger.TransactionResult, error) {
	keys := append([]solana.PrivateKey{payer}, signers...)

	var (
		last    *ledger.TransactionResult
		lastErr error
		attempt int
	)
	operation := func() (*ledger.TransactionResult, error) {
		attempt++
		tx, err := ledger.NewTransaction(ixs, c.ledger.LatestBlockhash(), payer.PublicKey())
		if err != nil {
			lastErr = fmt.Errorf("failed to build transaction: %w", err)
			return nil, backoff.Permanent(lastErr)
		}
		if err := tx.Sign(keys...); err != nil {
			lastErr = fmt.Errorf("failed to sign transaction: %w", err)
			return nil, backoff.Permanent(lastErr)
		}

		last, lastErr = c.ledger.ProcessTransaction(ctx, tx)
		if lastErr == nil {
			return last, nil
		}
		if IsRetryable(lastErr) {
			return last, lastErr
		}
		return last, backoff.Permanent(lastErr)
	}

	if _, err := backoff.Retry(ctx, operation, c.retryOptions()...); err != nil {
		// отмена контекста важнее повторяемой ошибки последней попытки
		if lastErr == nil || (IsRetryable(lastErr) && ctx.Err() != nil) {
			lastErr = err
		}
		c.logger.Debug("Transaction not confirmed",
			zap.Int("attempts", attempt),
			zap.Error(lastErr))
		return last, lastErr
	}

	c.logger.Debug("Transaction confirmed",
		zap.String("signature", last.Signature.String()),
		zap.Uint64("slot", last.Slot),
		zap.Uint64("compute_units", last.ComputeUnitsConsumed),
		zap.Int("attempts", attempt))
	return last, nil
}
