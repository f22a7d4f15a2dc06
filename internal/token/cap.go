package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
	"github.com/baydroid/StarSeeds-Contracts/internal/ledger"
)

// checkCap rejects a credit that would push the destination balance above
// the per-holder cap. The cap applies to the amount actually credited: the
// net amount on transfers, the raw amount on mints. Tax credits to the tax
// sink are also capped. Callers hold t.mu.
func (t *Token) checkCap(ctx context.Context, to Address, credit *uint256.Int) error {
	if !t.cfg.MaxAmountSet() {
		return nil
	}

	balance, err := t.ledger.BalanceOf(ctx, to.String())
	if err != nil {
		return err
	}

	next, overflow := new(uint256.Int).AddOverflow(balance, credit)
	if overflow || next.Gt(t.maxPerAddress) {
		return &Error{
			Code: ErrCodeDestBalanceExceedsMax,
			Message: fmt.Sprintf("resulting balance would exceed the per-address maximum %s",
				t.maxPerAddress.Dec()),
			Address: to,
			Amount:  credit.Dec(),
		}
	}
	return nil
}

// RaiseCap increases the per-holder balance cap. Owner-only; requires the
// cap capability; the new cap must be strictly greater than the current
// one, so the cap only ever loosens.
func (t *Token) RaiseCap(ctx context.Context, caller Address, newCap *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.MaxAmountSet() {
		return newDisabled(ErrCodeMaxTokenAmountNotAllowed, "max token amount")
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if newCap == nil || !newCap.Gt(t.maxPerAddress) {
		amount := "0"
		if newCap != nil {
			amount = newCap.Dec()
		}
		return &Error{
			Code: ErrCodeCapNotGreater,
			Message: fmt.Sprintf("new cap must be strictly greater than current cap %s",
				t.maxPerAddress.Dec()),
			Amount: amount,
		}
	}

	err := t.ledger.ApplyMetaUpdate(ctx, map[string]string{
		ledger.MetaMaxPerAddr: newCap.Dec(),
	}, journal.NewEvent(journal.KindCapRaised, t.ids.Generate(), map[string]any{
		"previous_cap": t.maxPerAddress.Dec(),
		"new_cap":      newCap.Dec(),
	}))
	if err != nil {
		return err
	}

	t.maxPerAddress = new(uint256.Int).Set(newCap)
	return nil
}
