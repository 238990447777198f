// internal/ledger/ledger.go
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/events"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxInvokeDepth is the deepest allowed invocation stack, top level included.
	MaxInvokeDepth = 4
	// RecentBlockhashes is how many slots a blockhash stays valid for.
	RecentBlockhashes = 150
)

var ErrAccountNotFound = errors.New("account not found")

// Recorder receives execution metrics.
type Recorder interface {
	ObserveTransaction(status string, computeUnits uint64, duration time.Duration)
	ObserveInstruction(programID solana.PublicKey)
}

// Publisher receives processed-transaction events.
type Publisher interface {
	Publish(event events.Event) error
}

// TransactionRecord is the stored status of a processed transaction.
type TransactionRecord = models.Transaction

// TransactionResult describes one executed transaction. Err is nil on success.
type TransactionResult struct {
	Signature            solana.Signature
	Slot                 uint64
	Logs                 []string
	ComputeUnitsConsumed uint64
	Err                  error
}

// Ledger executes transactions against account state held in a storage backend.
type Ledger struct {
	store     storage.Storage
	logger    *zap.Logger
	recorder  Recorder
	publisher Publisher
	locks     *lockTable

	rent         Rent
	computeLimit uint64
	maxDepth     int
	parallelism  int

	programsMu sync.RWMutex
	programs   map[solana.PublicKey]Program

	slotMu      sync.RWMutex
	slot        uint64
	blockhashes []solana.Hash
}

type Option func(*Ledger)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithRent(r Rent) Option {
	return func(l *Ledger) { l.rent = r }
}

// WithComputeUnitLimit sets the budget of transactions that do not request one.
func WithComputeUnitLimit(units uint64) Option {
	return func(l *Ledger) {
		if units > 0 && units <= MaxComputeUnitLimit {
			l.computeLimit = units
		}
	}
}

func WithMaxInvokeDepth(depth int) Option {
	return func(l *Ledger) {
		if depth > 0 {
			l.maxDepth = depth
		}
	}
}

// WithParallelism bounds the number of transactions ProcessBatch runs at once.
func WithParallelism(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

func New(store storage.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		store:        store,
		logger:       zap.NewNop(),
		locks:        newLockTable(),
		rent:         DefaultRent(),
		computeLimit: DefaultComputeUnitLimit,
		maxDepth:     MaxInvokeDepth,
		parallelism:  runtime.GOMAXPROCS(0),
		programs:     make(map[solana.PublicKey]Program),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("ledger")

	genesis := solana.Hash(sha256.Sum256([]byte("candy-launchpad genesis")))
	l.blockhashes = []solana.Hash{genesis}
	return l
}

// Register makes programs callable and creates their executable accounts.
func (l *Ledger) Register(ctx context.Context, programs ...Program) error {
	for _, p := range programs {
		id := p.ProgramID()

		l.programsMu.Lock()
		l.programs[id] = p
		l.programsMu.Unlock()

		if _, err := l.store.GetAccount(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to read program account %s: %w", id, err)
		}
		acc := &Account{Lamports: 1, Owner: NativeLoaderID, Executable: true}
		if err := l.store.Commit(ctx, map[solana.PublicKey]*Account{id: acc}, nil); err != nil {
			return fmt.Errorf("failed to create program account %s: %w", id, err)
		}
		l.logger.Debug("Program registered", zap.String("program_id", id.String()))
	}
	return nil
}

func (l *Ledger) program(id solana.PublicKey) (Program, bool) {
	l.programsMu.RLock()
	defer l.programsMu.RUnlock()
	p, ok := l.programs[id]
	return p, ok
}

// Slot returns the current slot.
func (l *Ledger) Slot() uint64 {
	l.slotMu.RLock()
	defer l.slotMu.RUnlock()
	return l.slot
}

// LatestBlockhash returns the blockhash new transactions should reference.
func (l *Ledger) LatestBlockhash() solana.Hash {
	l.slotMu.RLock()
	defer l.slotMu.RUnlock()
	return l.blockhashes[len(l.blockhashes)-1]
}

// AdvanceSlot moves to the next slot and produces a fresh blockhash. Hashes
// older than RecentBlockhashes slots stop being accepted.
func (l *Ledger) AdvanceSlot() uint64 {
	l.slotMu.Lock()
	defer l.slotMu.Unlock()

	l.slot++
	prev := l.blockhashes[len(l.blockhashes)-1]
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], l.slot)
	next := solana.Hash(sha256.Sum256(append(prev[:], slotBytes[:]...)))

	l.blockhashes = append(l.blockhashes, next)
	if len(l.blockhashes) > RecentBlockhashes {
		l.blockhashes = l.blockhashes[len(l.blockhashes)-RecentBlockhashes:]
	}
	return l.slot
}

// RunSlotClock advances the slot every interval until ctx is done.
func (l *Ledger) RunSlotClock(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.AdvanceSlot()
		}
	}
}

func (l *Ledger) isRecentBlockhash(hash solana.Hash) bool {
	l.slotMu.RLock()
	defer l.slotMu.RUnlock()
	for _, h := range l.blockhashes {
		if h == hash {
			return true
		}
	}
	return false
}

// GetAccount returns a copy of the stored account.
func (l *Ledger) GetAccount(ctx context.Context, key solana.PublicKey) (*Account, error) {
	acc, err := l.store.GetAccount(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", key, err)
	}
	return acc, nil
}

// GetBalance returns the lamports of key, zero for unknown accounts.
func (l *Ledger) GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	acc, err := l.GetAccount(ctx, key)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acc.Lamports, nil
}

// GetTransaction returns the stored status of a processed transaction.
func (l *Ledger) GetTransaction(ctx context.Context, signature solana.Signature) (*TransactionRecord, error) {
	rec, err := l.store.GetTransaction(ctx, signature.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	return rec, nil
}

// SetAccount overwrites an account outside of any transaction. Used for genesis.
func (l *Ledger) SetAccount(ctx context.Context, key solana.PublicKey, acc *Account) error {
	keys := []solana.PublicKey{key}
	if !l.locks.lock(keys, nil) {
		return ErrAccountInUse
	}
	defer l.locks.unlock(keys, nil)

	if err := l.store.Commit(ctx, map[solana.PublicKey]*Account{key: acc.Clone()}, nil); err != nil {
		return fmt.Errorf("failed to set account %s: %w", key, err)
	}
	return nil
}

// Airdrop credits lamports to key, creating a system account if needed.
func (l *Ledger) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) error {
	keys := []solana.PublicKey{key}
	if !l.locks.lock(keys, nil) {
		return ErrAccountInUse
	}
	defer l.locks.unlock(keys, nil)

	acc, err := l.store.GetAccount(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		acc = &Account{Owner: solana.SystemProgramID}
	} else if err != nil {
		return fmt.Errorf("failed to get account %s: %w", key, err)
	}
	if acc.Lamports+lamports < acc.Lamports {
		return ErrArithmeticOverflow
	}
	acc.Lamports += lamports

	if err := l.store.Commit(ctx, map[solana.PublicKey]*Account{key: acc}, nil); err != nil {
		return fmt.Errorf("failed to airdrop to %s: %w", key, err)
	}
	l.logger.Debug("Airdrop", zap.String("account", key.String()), zap.Uint64("lamports", lamports))
	return nil
}

// ProcessTransaction verifies, executes and commits tx atomically.
//
// Rejections (bad signature, stale blockhash, duplicate, lock conflict)
// return a nil result. Execution failures return the result, whose Err is
// also returned, and leave no state behind.
func (l *Ledger) ProcessTransaction(ctx context.Context, tx *Transaction) (*TransactionResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tx.Instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	if err := tx.VerifySignatures(); err != nil {
		return nil, err
	}
	if !l.isRecentBlockhash(tx.RecentBlockhash) {
		return nil, ErrBlockhashNotFound
	}

	keys := collectKeys(tx)
	if !l.locks.lock(keys.writable, keys.readonly) {
		return nil, ErrAccountInUse
	}
	defer l.locks.unlock(keys.writable, keys.readonly)

	signature := tx.Signature()
	if _, err := l.store.GetTransaction(ctx, signature.String()); err == nil {
		return nil, ErrAlreadyProcessed
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check transaction status: %w", err)
	}

	txc, err := l.load(ctx, keys)
	if err != nil {
		return nil, err
	}

	execErr := l.execute(txc, tx, keys)
	var changes map[solana.PublicKey]*Account
	if execErr == nil {
		changes, execErr = txc.changes(keys)
	}
	if execErr != nil {
		changes = nil
	}

	result := &TransactionResult{
		Signature:            signature,
		Slot:                 l.Slot(),
		Logs:                 txc.logs.lines,
		ComputeUnitsConsumed: txc.meter.used,
		Err:                  execErr,
	}
	if err := l.store.Commit(ctx, changes, result.record()); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.finish(result, time.Since(start))
	return result, result.Err
}

// BatchResult pairs a transaction outcome with its rejection error.
type BatchResult struct {
	Result *TransactionResult
	Err    error
}

// ProcessBatch runs transactions concurrently. Conflicting transactions are
// rejected with ErrAccountInUse rather than serialized; results keep the
// input order.
func (l *Ledger) ProcessBatch(ctx context.Context, txs []*Transaction) []BatchResult {
	results := make([]BatchResult, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, tx := range txs {
		g.Go(func() error {
			res, err := l.ProcessTransaction(gctx, tx)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type txKeys struct {
	writable []solana.PublicKey
	readonly []solana.PublicKey
	signers  map[solana.PublicKey]struct{}
	isWrite  map[solana.PublicKey]struct{}
}

func collectKeys(tx *Transaction) txKeys {
	keys := txKeys{
		signers: make(map[solana.PublicKey]struct{}),
		isWrite: map[solana.PublicKey]struct{}{tx.FeePayer: {}},
	}
	for _, signer := range tx.Signers() {
		keys.signers[signer] = struct{}{}
	}

	ordered := []solana.PublicKey{tx.FeePayer}
	seen := map[solana.PublicKey]struct{}{tx.FeePayer: {}}
	add := func(key solana.PublicKey) {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			ordered = append(ordered, key)
		}
	}
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts() {
			add(meta.PublicKey)
			if meta.IsWritable {
				keys.isWrite[meta.PublicKey] = struct{}{}
			}
		}
		add(ix.ProgramID())
	}

	for _, key := range ordered {
		if _, ok := keys.isWrite[key]; ok {
			keys.writable = append(keys.writable, key)
		} else {
			keys.readonly = append(keys.readonly, key)
		}
	}
	return keys
}

type loadedState struct {
	*txContext
	originals map[solana.PublicKey]*Account
}

func (l *Ledger) load(ctx context.Context, keys txKeys) (*loadedState, error) {
	st := &loadedState{
		txContext: &txContext{
			ctx:      ctx,
			ledger:   l,
			accounts: make(map[solana.PublicKey]*Account),
			meter:    newComputeMeter(l.computeLimit),
		},
		originals: make(map[solana.PublicKey]*Account),
	}
	for _, group := range [][]solana.PublicKey{keys.writable, keys.readonly} {
		for _, key := range group {
			acc, err := l.store.GetAccount(ctx, key)
			switch {
			case err == nil:
				st.originals[key] = acc.Clone()
			case errors.Is(err, storage.ErrNotFound):
				acc = &Account{Owner: solana.SystemProgramID}
			default:
				return nil, fmt.Errorf("failed to load account %s: %w", key, err)
			}
			st.accounts[key] = acc
		}
	}
	return st, nil
}

func (l *Ledger) execute(st *loadedState, tx *Transaction, keys txKeys) error {
	limit := l.computeLimit
	requested := false
	for i, ix := range tx.Instructions {
		p, ok := l.program(ix.ProgramID())
		if !ok {
			continue
		}
		budget, ok := p.(BudgetProgram)
		if !ok {
			continue
		}
		data, err := ix.Data()
		if err != nil {
			return &InstructionError{Index: i, Err: ErrInvalidInstructionData}
		}
		units, set, err := budget.ComputeUnitLimit(data)
		if err != nil {
			return &InstructionError{Index: i, Err: err}
		}
		if !set {
			continue
		}
		if requested {
			return &InstructionError{Index: i, Err: ErrDuplicateInstruction}
		}
		requested = true
		limit = min(units, MaxComputeUnitLimit)
	}
	st.meter = newComputeMeter(limit)

	for i, ix := range tx.Instructions {
		data, err := ix.Data()
		if err != nil {
			return &InstructionError{Index: i, Err: ErrInvalidInstructionData}
		}
		metas := ix.Accounts()
		infos := make([]*AccountInfo, 0, len(metas))
		for _, meta := range metas {
			_, signer := keys.signers[meta.PublicKey]
			_, writable := keys.isWrite[meta.PublicKey]
			infos = append(infos, &AccountInfo{
				Key:        meta.PublicKey,
				IsSigner:   signer,
				IsWritable: writable,
				account:    st.accounts[meta.PublicKey],
			})
		}
		if l.recorder != nil {
			l.recorder.ObserveInstruction(ix.ProgramID())
		}
		if err := st.invoke(ix.ProgramID(), infos, data, 1); err != nil {
			return &InstructionError{Index: i, Err: err}
		}
	}
	return nil
}

// changes collects the writable accounts that differ from their stored
// state. Emptied accounts are deleted; data accounts must stay rent exempt.
func (st *loadedState) changes(keys txKeys) (map[solana.PublicKey]*Account, error) {
	rent := st.ledger.rent
	changes := make(map[solana.PublicKey]*Account)
	for _, key := range keys.writable {
		acc := st.accounts[key]
		orig := st.originals[key]

		if orig == nil && acc.Lamports == 0 && len(acc.Data) == 0 {
			continue
		}
		if orig != nil && acc.Equal(orig) {
			continue
		}
		if acc.Lamports == 0 {
			changes[key] = nil
			continue
		}
		if len(acc.Data) > 0 && !rent.IsExempt(acc.Lamports, len(acc.Data)) {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientFundsForRent, key)
		}
		changes[key] = acc.Clone()
	}
	return changes, nil
}

func (r *TransactionResult) record() *models.Transaction {
	rec := &models.Transaction{
		Signature:    r.Signature.String(),
		Slot:         r.Slot,
		Status:       models.StatusSuccess,
		Logs:         r.Logs,
		ComputeUnits: r.ComputeUnitsConsumed,
		ProcessedAt:  time.Now().UnixMilli(),
	}
	if r.Err != nil {
		rec.Status = models.StatusFailed
		rec.ErrorMessage = r.Err.Error()
	}
	return rec
}

func (l *Ledger) finish(result *TransactionResult, elapsed time.Duration) {
	status := models.StatusSuccess
	if result.Err != nil {
		status = models.StatusFailed
	}

	logger := l.logger.With(
		zap.String("signature", result.Signature.String()),
		zap.Uint64("slot", result.Slot),
		zap.Uint64("compute_units", result.ComputeUnitsConsumed),
		zap.Duration("elapsed", elapsed))
	if result.Err != nil {
		logger.Debug("Transaction failed", zap.Error(result.Err))
	} else {
		logger.Debug("Transaction processed")
	}

	if l.recorder != nil {
		l.recorder.ObserveTransaction(status, result.ComputeUnitsConsumed, elapsed)
	}
	if l.publisher != nil {
		event := &events.TransactionProcessedEvent{
			BaseEvent: events.BaseEvent{
				EventType: events.TransactionProcessed,
				EventTime: time.Now(),
			},
			Signature:    result.Signature.String(),
			Slot:         result.Slot,
			Logs:         result.Logs,
			ComputeUnits: result.ComputeUnitsConsumed,
			Err:          result.Err,
		}
		if err := l.publisher.Publish(event); err != nil {
			logger.Warn("Failed to publish transaction event", zap.Error(err))
		}
	}
}
