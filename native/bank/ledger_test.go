package bank

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"veilswap/core/state"
	"veilswap/storage"
)

var (
	testToken = [20]byte{0x01}
	alice     = [20]byte{0xaa}
	bob       = [20]byte{0xbb}
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(state.NewManager(storage.NewMemDB()))
}

func TestMintAndBalance(t *testing.T) {
	l := newLedger(t)
	if err := l.Mint(testToken, alice, uint256.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	bal, err := l.BalanceOf(testToken, alice)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Uint64() != 500 {
		t.Fatalf("expected 500, got %s", bal)
	}
	// Unknown accounts hold zero.
	bal, err = l.BalanceOf(testToken, bob)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.IsZero() {
		t.Fatalf("expected zero, got %s", bal)
	}
}

func TestTransfer(t *testing.T) {
	l := newLedger(t)
	if err := l.Mint(testToken, alice, uint256.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(testToken, alice, bob, uint256.NewInt(200)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceBal, _ := l.BalanceOf(testToken, alice)
	bobBal, _ := l.BalanceOf(testToken, bob)
	if aliceBal.Uint64() != 300 || bobBal.Uint64() != 200 {
		t.Fatalf("balances after transfer: %s / %s", aliceBal, bobBal)
	}
}

func TestTransferInsufficient(t *testing.T) {
	l := newLedger(t)
	if err := l.Mint(testToken, alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	err := l.Transfer(testToken, alice, bob, uint256.NewInt(101))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestTransferZeroAddress(t *testing.T) {
	l := newLedger(t)
	if err := l.Transfer(testToken, [20]byte{}, bob, uint256.NewInt(1)); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
	if err := l.Transfer(testToken, alice, [20]byte{}, uint256.NewInt(1)); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
}

func TestTransferZeroAmountNoop(t *testing.T) {
	l := newLedger(t)
	if err := l.Transfer(testToken, alice, bob, uint256.NewInt(0)); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	if err := l.Transfer(testToken, alice, bob, nil); err != nil {
		t.Fatalf("nil transfer: %v", err)
	}
}

func TestTransferSelfLeavesBalance(t *testing.T) {
	l := newLedger(t)
	if err := l.Mint(testToken, alice, uint256.NewInt(1_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(testToken, alice, alice, uint256.NewInt(400)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	bal, _ := l.BalanceOf(testToken, alice)
	if bal.Uint64() != 1_000 {
		t.Fatalf("self-transfer changed balance: expected 1000, got %s", bal)
	}
	// A self-transfer still has to be covered.
	err := l.Transfer(testToken, alice, alice, uint256.NewInt(1_001))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestMintOverflow(t *testing.T) {
	l := newLedger(t)
	max := new(uint256.Int).Not(uint256.NewInt(0))
	if err := l.Mint(testToken, alice, max); err != nil {
		t.Fatalf("mint max: %v", err)
	}
	if err := l.Mint(testToken, alice, uint256.NewInt(1)); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
}

func TestVaultSpendsOnlyItsAccount(t *testing.T) {
	l := newLedger(t)
	module := [20]byte{0x0f}
	if err := l.Mint(testToken, module, uint256.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	v := NewVault(l, module)
	if err := v.Transfer(testToken, bob, uint256.NewInt(40)); err != nil {
		t.Fatalf("vault transfer: %v", err)
	}
	moduleBal, _ := v.BalanceOf(testToken, module)
	if moduleBal.Uint64() != 60 {
		t.Fatalf("module balance: expected 60, got %s", moduleBal)
	}
	if err := l.Mint(testToken, alice, uint256.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := v.TransferFrom(testToken, alice, module, uint256.NewInt(10)); err != nil {
		t.Fatalf("vault transfer-from: %v", err)
	}
	moduleBal, _ = v.BalanceOf(testToken, module)
	if moduleBal.Uint64() != 70 {
		t.Fatalf("module balance: expected 70, got %s", moduleBal)
	}
}
