package token

import (
	"errors"
	"fmt"
)

// Error represents a failure detected by the overlay before any ledger
// mutation commits.
//
// Overlay errors fall into four groups:
//   - Construction/config validation: invalid decimals, cap, bps, address
//   - Capability disabled: an operation's gating flag is false
//   - Invariant violation: cap exceeded, cap not raised
//   - Authorization: caller is not the owner
//
// Every group is fatal to the call; there is no partial-success state.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Address is the account involved, when relevant (caller, recipient,
	// or tax sink).
	Address Address

	// Amount carries the offending amount as a decimal string.
	Amount string

	// BPS carries the offending basis-points value.
	BPS uint64
}

// ErrorCode categorizes overlay errors.
type ErrorCode string

const (
	// ErrCodeInvalidDecimals indicates decimals > 18.
	ErrCodeInvalidDecimals ErrorCode = "INVALID_DECIMALS"

	// ErrCodeInvalidMaxTokenAmount indicates the cap flag is set but the
	// supplied cap is zero.
	ErrCodeInvalidMaxTokenAmount ErrorCode = "INVALID_MAX_TOKEN_AMOUNT"

	// ErrCodeInvalidTaxBPS indicates taxBPS > 5000.
	ErrCodeInvalidTaxBPS ErrorCode = "INVALID_TAX_BPS"

	// ErrCodeInvalidTaxAddress indicates a zero or malformed tax address.
	ErrCodeInvalidTaxAddress ErrorCode = "INVALID_TAX_ADDRESS"

	// ErrCodeInvalidDeflationBPS indicates deflationBPS > 5000.
	ErrCodeInvalidDeflationBPS ErrorCode = "INVALID_DEFLATION_BPS"

	// ErrCodeInvalidAddress indicates a zero or malformed address argument.
	ErrCodeInvalidAddress ErrorCode = "INVALID_ADDRESS"

	// ErrCodeInvalidAmount indicates an amount that cannot be represented,
	// e.g. the scaled initial supply overflows 256 bits.
	ErrCodeInvalidAmount ErrorCode = "INVALID_AMOUNT"

	// ErrCodeMintingNotEnabled indicates mint with the mintable flag off.
	ErrCodeMintingNotEnabled ErrorCode = "MINTING_NOT_ENABLED"

	// ErrCodeBurningNotEnabled indicates burn with the burnable flag off.
	ErrCodeBurningNotEnabled ErrorCode = "BURNING_NOT_ENABLED"

	// ErrCodeDocURINotAllowed indicates a document URI update with the
	// document URI flag off.
	ErrCodeDocURINotAllowed ErrorCode = "DOC_URI_NOT_ALLOWED"

	// ErrCodeMaxTokenAmountNotAllowed indicates a cap raise with the cap
	// flag off.
	ErrCodeMaxTokenAmountNotAllowed ErrorCode = "MAX_TOKEN_AMOUNT_NOT_ALLOWED"

	// ErrCodeTaxNotEnabled indicates a tax config update with the taxable
	// flag off.
	ErrCodeTaxNotEnabled ErrorCode = "TAX_NOT_ENABLED"

	// ErrCodeDeflationNotEnabled indicates a deflation config update with
	// the deflationary flag off.
	ErrCodeDeflationNotEnabled ErrorCode = "DEFLATION_NOT_ENABLED"

	// ErrCodeDestBalanceExceedsMax indicates the destination's resulting
	// balance would exceed the per-holder cap.
	ErrCodeDestBalanceExceedsMax ErrorCode = "DEST_BALANCE_EXCEEDS_MAX"

	// ErrCodeCapNotGreater indicates a cap raise that is not strictly
	// greater than the current cap.
	ErrCodeCapNotGreater ErrorCode = "CAP_NOT_GT_PREVIOUS"

	// ErrCodeNotOwner indicates a privileged call from a non-owner.
	ErrCodeNotOwner ErrorCode = "NOT_OWNER"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Address != "" && e.Amount != "":
		return fmt.Sprintf("%s: %s (address=%s, amount=%s)", e.Code, e.Message, e.Address, e.Amount)
	case e.Address != "":
		return fmt.Sprintf("%s: %s (address=%s)", e.Code, e.Message, e.Address)
	case e.Amount != "":
		return fmt.Sprintf("%s: %s (amount=%s)", e.Code, e.Message, e.Amount)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCode returns true if err is an overlay Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == code
}

// CodeOf extracts the overlay error code from err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Code, true
	}
	return "", false
}

// IsNotOwner returns true for authorization failures.
func IsNotOwner(err error) bool {
	return IsCode(err, ErrCodeNotOwner)
}

// IsCapExceeded returns true for destination-cap violations.
func IsCapExceeded(err error) bool {
	return IsCode(err, ErrCodeDestBalanceExceedsMax)
}

func newNotOwner(caller Address) *Error {
	return &Error{
		Code:    ErrCodeNotOwner,
		Message: "caller is not the owner",
		Address: caller,
	}
}

func newDisabled(code ErrorCode, capability string) *Error {
	return &Error{
		Code:    code,
		Message: capability + " capability is disabled",
	}
}
