package bank

import "github.com/holiman/uint256"

// Vault is a ledger view bound to a single module account. Plain transfers
// spend from that account; TransferFrom moves third-party funds the module
// was authorised to pull. Engines hold a Vault rather than the raw ledger so
// they can only ever debit their own account directly.
type Vault struct {
	ledger *Ledger
	owner  [20]byte
}

// NewVault binds the ledger to the module account that outbound transfers
// debit.
func NewVault(ledger *Ledger, owner [20]byte) *Vault {
	return &Vault{ledger: ledger, owner: owner}
}

// Transfer sends amount of token from the bound module account to the
// recipient.
func (v *Vault) Transfer(token, to [20]byte, amount *uint256.Int) error {
	return v.ledger.Transfer(token, v.owner, to, amount)
}

// TransferFrom moves amount of token between arbitrary accounts.
func (v *Vault) TransferFrom(token, from, to [20]byte, amount *uint256.Int) error {
	return v.ledger.Transfer(token, from, to, amount)
}

// BalanceOf reports the balance held by account for the given token.
func (v *Vault) BalanceOf(token, account [20]byte) (*uint256.Int, error) {
	return v.ledger.BalanceOf(token, account)
}
