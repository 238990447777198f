// internal/ledger/invoke.go
package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

// Program is native code the ledger can dispatch instructions to.
type Program interface {
	ProgramID() solana.PublicKey
	Process(ic *InvokeContext, data []byte) error
}

// BudgetProgram is a program whose instructions configure the transaction
// instead of executing. The ledger reads them before any instruction runs.
type BudgetProgram interface {
	Program
	ComputeUnitLimit(data []byte) (limit uint64, ok bool, err error)
}

// txContext is the execution state of one transaction: the account overlay,
// compute meter and log buffer shared by every frame.
type txContext struct {
	ctx      context.Context
	ledger   *Ledger
	accounts map[solana.PublicKey]*Account
	meter    *computeMeter
	logs     logCollector
}

func (t *txContext) invoke(programID solana.PublicKey, infos []*AccountInfo, data []byte, depth int) error {
	if depth > t.ledger.maxDepth {
		return ErrCallDepth
	}
	program, ok := t.ledger.program(programID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedProgramID, programID)
	}

	t.logs.invoke(programID, depth)
	before := t.meter.used
	budget := t.meter.remaining()

	frame := &InvokeContext{
		tx:        t,
		programID: programID,
		accounts:  infos,
		depth:     depth,
	}
	frame.snapshot()

	err := program.Process(frame, data)
	if err == nil {
		err = frame.verify()
	}
	t.logs.consumed(programID, t.meter.used-before, budget)
	if err != nil {
		t.logs.failed(programID, err)
		return err
	}
	t.logs.success(programID)
	return nil
}

type preState struct {
	key        solana.PublicKey
	lamports   uint64
	data       []byte
	owner      solana.PublicKey
	executable bool
}

// InvokeContext is handed to a program for one invocation frame.
type InvokeContext struct {
	tx        *txContext
	programID solana.PublicKey
	accounts  []*AccountInfo
	depth     int
	pre       []preState
}

func (ic *InvokeContext) Context() context.Context {
	return ic.tx.ctx
}

// ProgramID returns the id of the executing program.
func (ic *InvokeContext) ProgramID() solana.PublicKey {
	return ic.programID
}

// Accounts returns the instruction accounts in the order they were passed.
func (ic *InvokeContext) Accounts() []*AccountInfo {
	return ic.accounts
}

// Account finds an instruction account by key.
func (ic *InvokeContext) Account(key solana.PublicKey) (*AccountInfo, bool) {
	for _, info := range ic.accounts {
		if info.Key.Equals(key) {
			return info, true
		}
	}
	return nil, false
}

func (ic *InvokeContext) Depth() int {
	return ic.depth
}

func (ic *InvokeContext) Rent() Rent {
	return ic.tx.ledger.rent
}

// Consume charges compute units against the transaction budget.
func (ic *InvokeContext) Consume(units uint64) error {
	return ic.tx.meter.consume(units)
}

func (ic *InvokeContext) RemainingUnits() uint64 {
	return ic.tx.meter.remaining()
}

// Log writes a "Program log:" line.
func (ic *InvokeContext) Log(format string, args ...any) error {
	if err := ic.Consume(LogUnits); err != nil {
		return err
	}
	ic.tx.logs.message(fmt.Sprintf(format, args...))
	return nil
}

// LogData writes a "Program data:" line with each chunk base64 encoded.
func (ic *InvokeContext) LogData(chunks ...[]byte) error {
	units := LogUnits
	for _, chunk := range chunks {
		units += uint64(len(chunk))
	}
	if err := ic.Consume(units); err != nil {
		return err
	}
	ic.tx.logs.data(chunks)
	return nil
}

// CreateProgramAddress derives an address of the executing program.
func (ic *InvokeContext) CreateProgramAddress(seeds [][]byte) (solana.PublicKey, error) {
	if err := validateSeeds(seeds); err != nil {
		return solana.PublicKey{}, err
	}
	if err := ic.Consume(CreateProgramAddressUnits); err != nil {
		return solana.PublicKey{}, err
	}
	addr, err := solana.CreateProgramAddress(seeds, ic.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down, charging every attempt.
func (ic *InvokeContext) FindProgramAddress(seeds [][]byte) (solana.PublicKey, uint8, error) {
	if len(seeds) >= maxSeeds {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: too many seeds", ErrInvalidSeeds)
	}
	if err := validateSeeds(seeds); err != nil {
		return solana.PublicKey{}, 0, err
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		if err := ic.Consume(CreateProgramAddressUnits); err != nil {
			return solana.PublicKey{}, 0, err
		}
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := solana.CreateProgramAddress(withBump, ic.programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, ErrInvalidSeeds
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > maxSeeds {
		return fmt.Errorf("%w: too many seeds", ErrInvalidSeeds)
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return fmt.Errorf("%w: seed longer than %d bytes", ErrInvalidSeeds, maxSeedLength)
		}
	}
	return nil
}

// Invoke calls another program with the caller's privileges.
func (ic *InvokeContext) Invoke(ix solana.Instruction) error {
	return ic.InvokeSigned(ix)
}

// InvokeSigned calls another program. Each entry of signerSeeds derives an
// address of the caller that signs the call.
func (ic *InvokeContext) InvokeSigned(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if err := ic.tx.ctx.Err(); err != nil {
		return err
	}
	if err := ic.Consume(InvokeUnits); err != nil {
		return err
	}

	pdaSigners := make(map[solana.PublicKey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := ic.CreateProgramAddress(seeds)
		if err != nil {
			return err
		}
		pdaSigners[addr] = struct{}{}
	}

	programID := ix.ProgramID()
	if _, ok := ic.Account(programID); !ok {
		return fmt.Errorf("%w: program %s", ErrMissingAccount, programID)
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}

	metas := ix.Accounts()
	infos := make([]*AccountInfo, 0, len(metas))
	for _, meta := range metas {
		caller, ok := ic.Account(meta.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.PublicKey)
		}
		if meta.IsSigner && !ic.isSigner(meta.PublicKey) {
			if _, ok := pdaSigners[meta.PublicKey]; !ok {
				return fmt.Errorf("%w: %s signer privilege escalated", ErrPrivilegeEscalation, meta.PublicKey)
			}
		}
		if meta.IsWritable && !ic.isWritable(meta.PublicKey) {
			return fmt.Errorf("%w: %s writable privilege escalated", ErrPrivilegeEscalation, meta.PublicKey)
		}
		infos = append(infos, &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			account:    caller.account,
		})
	}

	// The caller's own changes are checked before the callee can build on them.
	if err := ic.verify(); err != nil {
		return err
	}
	if err := ic.tx.invoke(programID, infos, data, ic.depth+1); err != nil {
		return err
	}
	ic.snapshot()
	return nil
}

func (ic *InvokeContext) isSigner(key solana.PublicKey) bool {
	for _, info := range ic.accounts {
		if info.IsSigner && info.Key.Equals(key) {
			return true
		}
	}
	return false
}

func (ic *InvokeContext) isWritable(key solana.PublicKey) bool {
	for _, info := range ic.accounts {
		if info.IsWritable && info.Key.Equals(key) {
			return true
		}
	}
	return false
}

func (ic *InvokeContext) snapshot() {
	ic.pre = ic.pre[:0]
	seen := make(map[solana.PublicKey]struct{}, len(ic.accounts))
	for _, info := range ic.accounts {
		if _, ok := seen[info.Key]; ok {
			continue
		}
		seen[info.Key] = struct{}{}
		ic.pre = append(ic.pre, preState{
			key:        info.Key,
			lamports:   info.account.Lamports,
			data:       bytes.Clone(info.account.Data),
			owner:      info.account.Owner,
			executable: info.account.Executable,
		})
	}
}

// verify enforces the account rules on everything changed since the last
// snapshot: only the owner may debit lamports or change data, ownership moves
// only from the current owner onto zeroed data, read-only accounts stay
// untouched and lamports are conserved.
func (ic *InvokeContext) verify() error {
	var preTotal, postTotal uint64
	for _, pre := range ic.pre {
		info, _ := ic.Account(pre.key)
		acc := info.account
		writable := ic.isWritable(pre.key)
		owned := pre.owner.Equals(ic.programID)

		if !acc.Owner.Equals(pre.owner) {
			if !writable || !owned || !isZeroed(acc.Data) {
				return fmt.Errorf("%w: %s", ErrModifiedProgramID, pre.key)
			}
		}
		if acc.Lamports != pre.lamports {
			if !writable {
				return fmt.Errorf("%w: %s", ErrReadonlyLamportChange, pre.key)
			}
			if acc.Lamports < pre.lamports && !owned {
				return fmt.Errorf("%w: %s", ErrExternalAccountLamportSpend, pre.key)
			}
		}
		if !bytes.Equal(acc.Data, pre.data) {
			if !writable {
				return fmt.Errorf("%w: %s", ErrReadonlyDataModified, pre.key)
			}
			if !owned {
				return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, pre.key)
			}
		}
		if acc.Executable != pre.executable {
			return fmt.Errorf("%w: %s", ErrExecutableModified, pre.key)
		}

		preTotal += pre.lamports
		postTotal += acc.Lamports
	}
	if preTotal != postTotal {
		return ErrUnbalancedInstruction
	}
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
