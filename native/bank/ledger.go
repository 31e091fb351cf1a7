package bank

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"veilswap/core/state"
)

var (
	// ErrInsufficientBalance indicates the source account cannot cover the
	// requested transfer.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")
	// ErrZeroAddress indicates a transfer endpoint was the zero address.
	ErrZeroAddress = errors.New("bank: zero address")
	// ErrBalanceOverflow indicates a credit would exceed 256 bits.
	ErrBalanceOverflow = errors.New("bank: balance overflow")
)

var balancePrefix = []byte("bank/balance/")

// Ledger tracks per-token account balances inside the journaled state manager.
// It stands in for the external token contracts the pool core interacts with:
// because balances live in the same overlay as pool state, a revert undoes
// token movement and pool mutation together, matching the execution host's
// transaction semantics.
type Ledger struct {
	state *state.Manager
}

// NewLedger constructs a ledger bound to the supplied state manager.
func NewLedger(manager *state.Manager) *Ledger {
	return &Ledger{state: manager}
}

// BalanceOf returns the balance held by account for the given token. Absent
// accounts hold zero.
func (l *Ledger) BalanceOf(token, account [20]byte) (*uint256.Int, error) {
	if l == nil || l.state == nil {
		return nil, fmt.Errorf("bank: ledger not initialised")
	}
	var stored [32]byte
	ok, err := l.state.KVGet(balanceKey(token, account), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).SetBytes32(stored[:]), nil
}

// Transfer moves amount of token from one account to another. A zero amount is
// a no-op; shortfalls and overflow are reported as errors, never clamped. A
// covered self-transfer moves nothing: debiting and crediting the same slot
// from one stale read would otherwise conjure balance out of thin air.
func (l *Ledger) Transfer(token, from, to [20]byte, amount *uint256.Int) error {
	if l == nil || l.state == nil {
		return fmt.Errorf("bank: ledger not initialised")
	}
	if from == ([20]byte{}) || to == ([20]byte{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	fromBalance, err := l.BalanceOf(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, shortAddr(from), fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance, err := l.BalanceOf(token, to)
	if err != nil {
		return err
	}
	newTo, overflow := new(uint256.Int).AddOverflow(toBalance, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	newFrom := new(uint256.Int).Sub(fromBalance, amount)
	if err := l.setBalance(token, from, newFrom); err != nil {
		return err
	}
	return l.setBalance(token, to, newTo)
}

// Mint credits amount of token to account. Used by genesis tooling and tests
// to seed balances.
func (l *Ledger) Mint(token, account [20]byte, amount *uint256.Int) error {
	if l == nil || l.state == nil {
		return fmt.Errorf("bank: ledger not initialised")
	}
	if account == ([20]byte{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	balance, err := l.BalanceOf(token, account)
	if err != nil {
		return err
	}
	updated, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	return l.setBalance(token, account, updated)
}

func (l *Ledger) setBalance(token, account [20]byte, amount *uint256.Int) error {
	stored := amount.Bytes32()
	return l.state.KVPut(balanceKey(token, account), &stored)
}

func balanceKey(token, account [20]byte) []byte {
	buf := make([]byte, 0, len(balancePrefix)+40)
	buf = append(buf, balancePrefix...)
	buf = append(buf, token[:]...)
	buf = append(buf, account[:]...)
	return buf
}

func shortAddr(addr [20]byte) string {
	return hex.EncodeToString(addr[:4])
}
