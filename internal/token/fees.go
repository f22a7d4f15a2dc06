package token

import "github.com/holiman/uint256"

// FeeEngine computes the tax and deflation deductions for a transfer.
// It is a snapshot of the current fee configuration: both methods are pure
// functions of the snapshot and their arguments.
type FeeEngine struct {
	Taxable    bool
	TaxAddress Address
	TaxBPS     uint64

	Deflationary bool
	DeflationBPS uint64
}

// ComputeTax returns the tax deduction for a transfer of amount sent by
// sender. Returns zero unless the token is taxable, the rate is nonzero,
// and the sender is not the tax sink itself. Transfers out of the sink
// are never taxed, which prevents a degenerate fee loop.
func (f FeeEngine) ComputeTax(sender Address, amount *uint256.Int) *uint256.Int {
	if !f.Taxable || f.TaxBPS == 0 || sender == f.TaxAddress {
		return uint256.NewInt(0)
	}
	return bpsShare(amount, f.TaxBPS)
}

// ComputeDeflation returns the burn deduction for a transfer of amount.
// Returns zero unless the token is deflationary and the rate is nonzero.
func (f FeeEngine) ComputeDeflation(amount *uint256.Int) *uint256.Int {
	if !f.Deflationary || f.DeflationBPS == 0 {
		return uint256.NewInt(0)
	}
	return bpsShare(amount, f.DeflationBPS)
}

// bpsShare computes floor(amount × bps / 10000) without the product ever
// exceeding 256 bits. With amount = q·10000 + r:
//
//	floor(amount·bps/10000) = q·bps + floor(r·bps/10000)
//
// q·bps ≤ (2^256-1)/10000 · 5000 and r·bps < 10000·5000, so neither term
// overflows.
func bpsShare(amount *uint256.Int, bps uint64) *uint256.Int {
	denom := uint256.NewInt(BPSDenominator)
	rate := uint256.NewInt(bps)

	q := new(uint256.Int)
	r := new(uint256.Int)
	q.DivMod(amount, denom, r)

	q.Mul(q, rate)
	r.Mul(r, rate)
	r.Div(r, denom)

	return q.Add(q, r)
}
