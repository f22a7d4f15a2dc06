// Package token implements the fee/cap overlay for a configurable
// fungible token.
//
// A Token wraps the base ledger (package ledger) with per-deployment-fixed
// capabilities: mintability, burnability, a document URI, a maximum
// per-holder balance cap, a proportional transfer tax, and a proportional
// transfer deflation (burn-on-transfer). The six capability flags are set
// once at deployment and never change; configuration values behind enabled
// flags can be tuned later through owner-gated setters that re-run the
// deployment bounds.
//
// Every value-moving operation runs the same overlay sequence: compute the
// tax and deflation deductions, cap-check the recipient's net credit, then
// apply all ledger effects as one transaction. All preconditions are
// evaluated before any mutation (check-then-act); a failing check aborts
// the whole call with a typed error and no state change.
//
// INVARIANTS:
//   - Capability flags are write-once (unexported Config fields, no setters)
//   - taxBPS and deflationBPS never exceed 5000 (≤50% each, ≤100% combined),
//     so net = amount - tax - deflation never underflows
//   - maxTokenAmountPerAddress only ever increases
//   - Mutating operations are serialized behind a single mutex, preserving
//     the sequential state-machine model on a concurrent host
package token
