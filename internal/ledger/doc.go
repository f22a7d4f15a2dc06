// Package ledger implements the base balance/allowance ledger on SQLite.
//
// The ledger owns the primitive token state: per-account balances, owner →
// spender allowances, total supply, token metadata, and the append-only
// journal. It knows nothing about taxes, caps, or capability flags; those
// belong to the overlay in package token, which composes ledger primitives.
//
// ATOMICITY:
//
// Every Apply* method executes as a single SQLite transaction: all balance
// movements, supply adjustments, allowance spends, metadata updates, and the
// journal event either commit together or not at all. The overlay relies on
// this to make a taxed, deflationary transfer (tax move + burn + net move)
// one indivisible unit.
//
// Journal sequence numbers are assigned inside the transaction from the
// current journal maximum, so a rolled-back operation leaves no gap and
// replaying a scenario yields an identical journal.
package ledger
