package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Error represents a ledger-level failure detected while applying an
// operation. The whole transaction is rolled back when one is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Account is the affected account, when relevant.
	Account string

	// Spender is the allowance spender, for allowance errors.
	Spender string

	// Needed and Available carry the amounts involved, as decimal strings.
	Needed    string
	Available string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// ErrCodeInsufficientBalance indicates a debit exceeds the account balance.
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"

	// ErrCodeInsufficientAllowance indicates a delegated spend exceeds the
	// approved allowance.
	ErrCodeInsufficientAllowance ErrorCode = "INSUFFICIENT_ALLOWANCE"

	// ErrCodeAmountOverflow indicates a balance or supply addition would
	// exceed 2^256-1.
	ErrCodeAmountOverflow ErrorCode = "AMOUNT_OVERFLOW"

	// ErrCodeNotDeployed indicates the database has no deployed token.
	ErrCodeNotDeployed ErrorCode = "NOT_DEPLOYED"

	// ErrCodeAlreadyDeployed indicates the database already holds a token.
	ErrCodeAlreadyDeployed ErrorCode = "ALREADY_DEPLOYED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Account != "" && e.Needed != "" {
		return fmt.Sprintf("%s: %s (account=%s, needed=%s, available=%s)",
			e.Code, e.Message, e.Account, e.Needed, e.Available)
	}
	if e.Account != "" {
		return fmt.Sprintf("%s: %s (account=%s)", e.Code, e.Message, e.Account)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInsufficientBalance returns true for insufficient-balance errors.
// Uses errors.As to handle wrapped errors.
func IsInsufficientBalance(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == ErrCodeInsufficientBalance
}

// IsInsufficientAllowance returns true for insufficient-allowance errors.
// Uses errors.As to handle wrapped errors.
func IsInsufficientAllowance(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == ErrCodeInsufficientAllowance
}

// IsNotDeployed returns true when the database holds no deployed token.
func IsNotDeployed(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == ErrCodeNotDeployed
}

// IsAlreadyDeployed returns true when a deploy targets an occupied database.
func IsAlreadyDeployed(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == ErrCodeAlreadyDeployed
}

func newInsufficientBalance(account string, needed, available *uint256.Int) *Error {
	return &Error{
		Code:      ErrCodeInsufficientBalance,
		Message:   "debit exceeds balance",
		Account:   account,
		Needed:    needed.Dec(),
		Available: available.Dec(),
	}
}

func newInsufficientAllowance(owner, spender string, needed, available *uint256.Int) *Error {
	return &Error{
		Code:      ErrCodeInsufficientAllowance,
		Message:   "spend exceeds allowance",
		Account:   owner,
		Spender:   spender,
		Needed:    needed.Dec(),
		Available: available.Dec(),
	}
}

func newAmountOverflow(account string) *Error {
	return &Error{
		Code:    ErrCodeAmountOverflow,
		Message: "credit overflows 256-bit amount",
		Account: account,
	}
}
