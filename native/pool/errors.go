package pool

import "errors"

// State errors: precondition violations, always fatal to the current call.
var (
	ErrAlreadyInitialized = errors.New("pool: already initialized")
	ErrNotInitialized     = errors.New("pool: not initialized")
	ErrNotOwner           = errors.New("pool: caller is not the owner")
	ErrPaused             = errors.New("pool: paused")
	ErrReentrantCall      = errors.New("pool: reentrant call")
	ErrNoCommitment       = errors.New("pool: no active commitment")
)

// Validation errors: caller misuse, fully reverted with no retry by the pool.
var (
	ErrInvalidAddress    = errors.New("pool: invalid address")
	ErrZeroAmount        = errors.New("pool: amount must be positive")
	ErrZeroHash          = errors.New("pool: commitment hash must be non-zero")
	ErrHashMismatch      = errors.New("pool: revealed data does not match commitment")
	ErrTooEarly          = errors.New("pool: reveal window not yet open")
	ErrExpired           = errors.New("pool: deadline passed")
	ErrCommitmentExpired = errors.New("pool: commitment exceeded maximum age")
	ErrSlippageExceeded  = errors.New("pool: output below minimum")
	ErrFeeTooHigh        = errors.New("pool: fee exceeds protocol maximum")
	ErrNothingToWithdraw = errors.New("pool: no treasury fees accrued")
)

// Arithmetic errors: conditions that would corrupt invariants, never clamped.
var (
	ErrOverflow              = errors.New("pool: arithmetic overflow")
	ErrDivisionByZero        = errors.New("pool: division by zero")
	ErrInsufficientLiquidity = errors.New("pool: insufficient liquidity")
	ErrInvariantViolation    = errors.New("pool: constant-product invariant violated")
	ErrFeeSplitInvariant     = errors.New("pool: fee split exceeds total fee")
)

var (
	errNilState    = errors.New("pool: state not configured")
	errNilTokens   = errors.New("pool: token ledger not configured")
	errNilBorrower = errors.New("pool: flash borrower not supplied")
)
