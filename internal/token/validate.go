package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Validation bounds.
const (
	// MaxDecimals bounds the supply scaling exponent.
	MaxDecimals = 18

	// MaxBPS bounds taxBPS and deflationBPS at 50% each, so combined
	// deductions never exceed the transfer amount.
	MaxBPS = 5000

	// BPSDenominator converts basis points to a proportion (10000 = 100%).
	BPSDenominator = 10000
)

// ValidateParams checks all constructor inputs. Checks are independent and
// all run against the raw inputs; nothing is written before every check
// passes.
func ValidateParams(p Params) error {
	if err := validateDecimals(p.Decimals); err != nil {
		return err
	}
	if p.Owner.IsZero() || !p.Owner.Valid() {
		return &Error{
			Code:    ErrCodeInvalidAddress,
			Message: "owner address is zero or malformed",
			Address: p.Owner,
		}
	}
	if p.MaxAmountSet {
		if err := validateCap(p.MaxPerAddress); err != nil {
			return err
		}
	}
	if p.Taxable {
		if err := validateTaxConfig(p.TaxAddress, p.TaxBPS); err != nil {
			return err
		}
	}
	if p.Deflationary {
		if err := validateDeflationBPS(p.DeflationBPS); err != nil {
			return err
		}
	}
	return nil
}

func validateDecimals(decimals uint8) error {
	if decimals > MaxDecimals {
		return &Error{
			Code:    ErrCodeInvalidDecimals,
			Message: fmt.Sprintf("decimals %d exceeds maximum %d", decimals, MaxDecimals),
		}
	}
	return nil
}

func validateCap(cap *uint256.Int) error {
	if cap == nil || cap.IsZero() {
		return &Error{
			Code:    ErrCodeInvalidMaxTokenAmount,
			Message: "max token amount per address must be nonzero when the cap is enabled",
		}
	}
	return nil
}

// validateTaxConfig checks the tax sink and rate. Run at construction and
// again by SetTaxConfig.
func validateTaxConfig(addr Address, bps uint64) error {
	if bps > MaxBPS {
		return &Error{
			Code:    ErrCodeInvalidTaxBPS,
			Message: fmt.Sprintf("tax bps %d exceeds maximum %d", bps, MaxBPS),
			BPS:     bps,
		}
	}
	if addr.IsZero() || !addr.Valid() {
		return &Error{
			Code:    ErrCodeInvalidTaxAddress,
			Message: "tax address is zero or malformed",
			Address: addr,
		}
	}
	return nil
}

func validateDeflationBPS(bps uint64) error {
	if bps > MaxBPS {
		return &Error{
			Code:    ErrCodeInvalidDeflationBPS,
			Message: fmt.Sprintf("deflation bps %d exceeds maximum %d", bps, MaxBPS),
			BPS:     bps,
		}
	}
	return nil
}

// scaledSupply computes initialSupply × 10^decimals.
func scaledSupply(initial *uint256.Int, decimals uint8) (*uint256.Int, error) {
	if initial == nil {
		return uint256.NewInt(0), nil
	}
	factor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	scaled, overflow := new(uint256.Int).MulOverflow(initial, factor)
	if overflow {
		return nil, &Error{
			Code:    ErrCodeInvalidAmount,
			Message: fmt.Sprintf("initial supply scaled by 10^%d overflows 256 bits", decimals),
			Amount:  initial.Dec(),
		}
	}
	return scaled, nil
}
