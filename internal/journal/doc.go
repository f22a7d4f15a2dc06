// Package journal defines the append-only event journal for a token ledger.
//
// Every successful mutating operation commits exactly one journal event in
// the same transaction that commits its state changes. Events are stamped
// with a monotonic logical sequence number and an operation ID, and are
// serialized as RFC 8785 canonical JSON so that replaying the same scenario
// produces a byte-identical journal.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Events are ordered by a monotonic seq counter from Clock.Next().
// NEVER use wall-clock timestamps for ordering.
//
// Canonical JSON:
// MarshalCanonical is the ONLY serialization used for journal payloads and
// golden snapshots. Object keys are sorted by UTF-16 code units, strings are
// NFC normalized, and floats are forbidden.
package journal
