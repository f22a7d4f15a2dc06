package journal

import "fmt"

// Kind identifies the type of a journal event.
type Kind string

const (
	// KindDeployed records the initial deployment, including the scaled
	// initial supply minted to the owner.
	KindDeployed Kind = "deployed"

	// KindTransfer records a value transfer with its tax/deflation/net
	// breakdown.
	KindTransfer Kind = "transfer"

	// KindMint records an owner mint.
	KindMint Kind = "mint"

	// KindBurn records an owner burn.
	KindBurn Kind = "burn"

	// KindApprove records an allowance approval.
	KindApprove Kind = "approve"

	// KindCapRaised records a max-balance cap increase.
	KindCapRaised Kind = "cap-raised"

	// KindTaxConfigChanged records a tax address/bps update.
	KindTaxConfigChanged Kind = "tax-config-changed"

	// KindDeflationConfigChanged records a deflation bps update.
	KindDeflationConfigChanged Kind = "deflation-config-changed"

	// KindDocumentURIChanged records a document URI update.
	KindDocumentURIChanged Kind = "document-uri-changed"

	// KindOwnershipTransferred records an ownership handoff, including
	// renouncement (new owner is the zero address).
	KindOwnershipTransferred Kind = "ownership-transferred"
)

// Event is a single journal entry.
//
// Fields values are restricted to the canonical JSON value set: string,
// int64/int, and bool. Amounts are decimal strings so that 256-bit values
// survive serialization unchanged.
type Event struct {
	// Seq is the logical clock position, assigned at write time.
	Seq int64

	// OpID correlates the event with the operation that produced it.
	// UUIDv7 in production, fixed tokens in tests.
	OpID string

	// Kind identifies the event type.
	Kind Kind

	// Fields carries the event payload.
	Fields map[string]any
}

// NewEvent creates an event with the given kind, op ID, and payload.
// Seq is zero until the ledger assigns it at commit time.
func NewEvent(kind Kind, opID string, fields map[string]any) Event {
	if fields == nil {
		fields = map[string]any{}
	}
	return Event{OpID: opID, Kind: kind, Fields: fields}
}

// MarshalPayload serializes the event's fields as canonical JSON.
func (e Event) MarshalPayload() ([]byte, error) {
	data, err := MarshalCanonical(e.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Kind, err)
	}
	return data, nil
}

// MarshalEvent serializes the full event (seq, op ID, kind, fields) as
// canonical JSON. Used by golden snapshot tests.
func MarshalEvent(e Event) ([]byte, error) {
	return MarshalCanonical(map[string]any{
		"seq":    e.Seq,
		"op_id":  e.OpID,
		"kind":   string(e.Kind),
		"fields": e.Fields,
	})
}
