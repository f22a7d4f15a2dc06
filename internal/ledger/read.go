package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
)

// Metadata keys. The meta table is a flat key/value store; the overlay in
// package token interprets the values.
const (
	MetaName         = "name"
	MetaSymbol       = "symbol"
	MetaDecimals     = "decimals"
	MetaOwner        = "owner"
	MetaTotalSupply  = "total_supply"
	MetaMaxPerAddr   = "max_per_address"
	MetaTaxAddress   = "tax_address"
	MetaTaxBPS       = "tax_bps"
	MetaDeflationBPS = "deflation_bps"
	MetaDocumentURI  = "document_uri"

	MetaFlagMintable     = "flag_mintable"
	MetaFlagBurnable     = "flag_burnable"
	MetaFlagDocumentURI  = "flag_document_uri"
	MetaFlagMaxAmountSet = "flag_max_amount_set"
	MetaFlagTaxable      = "flag_taxable"
	MetaFlagDeflationary = "flag_deflationary"
)

// Meta returns the value for a metadata key. The second return is false
// when the key is absent.
func (l *Ledger) Meta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := l.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read meta %q: %w", key, err)
	}
	return value, true, nil
}

// MetaMap returns all metadata as a map.
func (l *Ledger) MetaMap(ctx context.Context) (map[string]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta row: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meta rows: %w", err)
	}
	return meta, nil
}

// Deployed reports whether the database holds a deployed token.
func (l *Ledger) Deployed(ctx context.Context) (bool, error) {
	_, ok, err := l.Meta(ctx, MetaName)
	return ok, err
}

// BalanceOf returns the balance of an account. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(ctx context.Context, account string) (*uint256.Int, error) {
	var amount string
	err := l.db.QueryRowContext(ctx,
		"SELECT amount FROM balances WHERE account = ?", account).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read balance of %s: %w", account, err)
	}
	return parseAmount(amount)
}

// Balances returns every account with a recorded balance.
// Used by conservation checks and final-state assertions.
func (l *Ledger) Balances(ctx context.Context) (map[string]*uint256.Int, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT account, amount FROM balances ORDER BY account")
	if err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]*uint256.Int)
	for rows.Next() {
		var account, amount string
		if err := rows.Scan(&account, &amount); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		v, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		balances[account] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return balances, nil
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(ctx context.Context, owner, spender string) (*uint256.Int, error) {
	var amount string
	err := l.db.QueryRowContext(ctx,
		"SELECT amount FROM allowances WHERE owner = ? AND spender = ?",
		owner, spender).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read allowance %s->%s: %w", owner, spender, err)
	}
	return parseAmount(amount)
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	supply, ok, err := l.Meta(ctx, MetaTotalSupply)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	return parseAmount(supply)
}

// Journal returns all journal events in sequence order.
func (l *Ledger) Journal(ctx context.Context) ([]journal.Event, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT seq, op_id, kind, payload FROM journal ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var ev journal.Event
		var kind, payload string
		if err := rows.Scan(&ev.Seq, &ev.OpID, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		ev.Kind = journal.Kind(kind)
		fields, err := decodePayload([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode journal payload seq=%d: %w", ev.Seq, err)
		}
		ev.Fields = fields
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return events, nil
}

// decodePayload parses a stored canonical JSON payload back into the
// journal value set. Numbers decode as int64 (payloads never hold floats).
func decodePayload(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	fields, err := normalizeValue(raw)
	if err != nil {
		return nil, err
	}
	return fields.(map[string]any), nil
}

func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q in payload", val)
		}
		return n, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			norm, err := normalizeValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			norm, err := normalizeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	default:
		return v, nil
	}
}

// parseAmount parses a stored decimal amount.
func parseAmount(s string) (*uint256.Int, error) {
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return v, nil
}
