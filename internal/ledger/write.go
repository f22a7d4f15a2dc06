package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
)

// AllowanceSpend describes the allowance decrement of a delegated transfer.
// The allowance is reduced by the FULL requested amount, not the net.
type AllowanceSpend struct {
	Owner   string
	Spender string
	Amount  *uint256.Int
}

// TransferApply is the atomic unit of one overlay transfer: the sender is
// debited Amount in total; Tax goes to TaxTo, Deflation is burned from
// supply, and Net reaches the recipient. Zero-valued parts are skipped.
type TransferApply struct {
	From string
	To   string

	// Net is the amount credited to To.
	Net *uint256.Int

	// Tax is the amount credited to TaxTo; both zero when untaxed.
	TaxTo string
	Tax   *uint256.Int

	// Deflation is burned from From and removed from total supply.
	Deflation *uint256.Int

	// Spend is non-nil for delegated (on-behalf-of) transfers.
	Spend *AllowanceSpend
}

// ApplyTransfer executes a transfer unit and its journal event in one
// transaction. Any failing step rolls back every effect.
func (l *Ledger) ApplyTransfer(ctx context.Context, ap TransferApply, ev journal.Event) error {
	total := new(uint256.Int).Add(ap.Net, ap.Tax)
	total.Add(total, ap.Deflation)

	err := l.inTx(ctx, func(tx *sql.Tx) error {
		if ap.Spend != nil {
			if err := spendAllowanceTx(ctx, tx, *ap.Spend); err != nil {
				return err
			}
		}
		if err := subBalanceTx(ctx, tx, ap.From, total); err != nil {
			return err
		}
		if !ap.Tax.IsZero() {
			if err := addBalanceTx(ctx, tx, ap.TaxTo, ap.Tax); err != nil {
				return err
			}
		}
		if !ap.Deflation.IsZero() {
			if err := subSupplyTx(ctx, tx, ap.Deflation); err != nil {
				return err
			}
		}
		if !ap.Net.IsZero() {
			if err := addBalanceTx(ctx, tx, ap.To, ap.Net); err != nil {
				return err
			}
		}
		return writeEventTx(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("apply transfer: %w", err)
	}

	l.clock.Next()
	slog.Info("transfer applied",
		"from", ap.From,
		"to", ap.To,
		"net", ap.Net.Dec(),
		"tax", ap.Tax.Dec(),
		"deflation", ap.Deflation.Dec(),
		"op_id", ev.OpID,
	)
	return nil
}

// ApplyMint credits an account, grows total supply, and journals the event
// in one transaction.
func (l *Ledger) ApplyMint(ctx context.Context, to string, amount *uint256.Int, ev journal.Event) error {
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		if err := addBalanceTx(ctx, tx, to, amount); err != nil {
			return err
		}
		if err := addSupplyTx(ctx, tx, amount); err != nil {
			return err
		}
		return writeEventTx(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("apply mint: %w", err)
	}

	l.clock.Next()
	slog.Info("mint applied", "to", to, "amount", amount.Dec(), "op_id", ev.OpID)
	return nil
}

// ApplyBurn debits an account, shrinks total supply, and journals the event
// in one transaction.
func (l *Ledger) ApplyBurn(ctx context.Context, from string, amount *uint256.Int, ev journal.Event) error {
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		if err := subBalanceTx(ctx, tx, from, amount); err != nil {
			return err
		}
		if err := subSupplyTx(ctx, tx, amount); err != nil {
			return err
		}
		return writeEventTx(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("apply burn: %w", err)
	}

	l.clock.Next()
	slog.Info("burn applied", "from", from, "amount", amount.Dec(), "op_id", ev.OpID)
	return nil
}

// ApplyApprove sets an allowance and journals the event in one transaction.
// Approvals overwrite; they do not accumulate.
func (l *Ledger) ApplyApprove(ctx context.Context, owner, spender string, amount *uint256.Int, ev journal.Event) error {
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		if err := setAllowanceTx(ctx, tx, owner, spender, amount); err != nil {
			return err
		}
		return writeEventTx(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("apply approve: %w", err)
	}

	l.clock.Next()
	return nil
}

// ApplyMetaUpdate writes metadata changes and journals the event in one
// transaction. Used by the overlay's configuration setters and ownership
// handoffs.
func (l *Ledger) ApplyMetaUpdate(ctx context.Context, updates map[string]string, ev journal.Event) error {
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		for key, value := range updates {
			if err := setMetaTx(ctx, tx, key, value); err != nil {
				return err
			}
		}
		return writeEventTx(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("apply meta update: %w", err)
	}

	l.clock.Next()
	return nil
}

// ApplyDeploy initializes an empty database: all metadata, the initial
// supply credited to the owner, and the deployment events, atomically.
// Fails when the database already holds a token.
func (l *Ledger) ApplyDeploy(ctx context.Context, meta map[string]string, owner string, supply *uint256.Int, events []journal.Event) error {
	deployed, err := l.Deployed(ctx)
	if err != nil {
		return err
	}
	if deployed {
		return &Error{Code: ErrCodeAlreadyDeployed, Message: "database already holds a deployed token"}
	}

	err = l.inTx(ctx, func(tx *sql.Tx) error {
		for key, value := range meta {
			if err := setMetaTx(ctx, tx, key, value); err != nil {
				return err
			}
		}
		if !supply.IsZero() {
			if err := addBalanceTx(ctx, tx, owner, supply); err != nil {
				return err
			}
		}
		if err := setMetaTx(ctx, tx, MetaTotalSupply, supply.Dec()); err != nil {
			return err
		}
		for _, ev := range events {
			if err := writeEventTx(ctx, tx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply deploy: %w", err)
	}

	for range events {
		l.clock.Next()
	}
	slog.Info("token deployed", "owner", owner, "supply", supply.Dec())
	return nil
}

// inTx runs fn inside a transaction, committing on success.
func (l *Ledger) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func getBalanceTx(ctx context.Context, tx *sql.Tx, account string) (*uint256.Int, error) {
	var amount string
	err := tx.QueryRowContext(ctx,
		"SELECT amount FROM balances WHERE account = ?", account).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read balance of %s: %w", account, err)
	}
	return parseAmount(amount)
}

func setBalanceTx(ctx context.Context, tx *sql.Tx, account string, amount *uint256.Int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO balances (account, amount) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET amount = excluded.amount
	`, account, amount.Dec())
	if err != nil {
		return fmt.Errorf("write balance of %s: %w", account, err)
	}
	return nil
}

func addBalanceTx(ctx context.Context, tx *sql.Tx, account string, amount *uint256.Int) error {
	current, err := getBalanceTx(ctx, tx, account)
	if err != nil {
		return err
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return newAmountOverflow(account)
	}
	return setBalanceTx(ctx, tx, account, next)
}

func subBalanceTx(ctx context.Context, tx *sql.Tx, account string, amount *uint256.Int) error {
	current, err := getBalanceTx(ctx, tx, account)
	if err != nil {
		return err
	}
	if current.Lt(amount) {
		return newInsufficientBalance(account, amount, current)
	}
	next := new(uint256.Int).Sub(current, amount)
	return setBalanceTx(ctx, tx, account, next)
}

func getSupplyTx(ctx context.Context, tx *sql.Tx) (*uint256.Int, error) {
	var amount string
	err := tx.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", MetaTotalSupply).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read total supply: %w", err)
	}
	return parseAmount(amount)
}

func addSupplyTx(ctx context.Context, tx *sql.Tx, amount *uint256.Int) error {
	current, err := getSupplyTx(ctx, tx)
	if err != nil {
		return err
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return newAmountOverflow("total_supply")
	}
	return setMetaTx(ctx, tx, MetaTotalSupply, next.Dec())
}

func subSupplyTx(ctx context.Context, tx *sql.Tx, amount *uint256.Int) error {
	current, err := getSupplyTx(ctx, tx)
	if err != nil {
		return err
	}
	if current.Lt(amount) {
		return newInsufficientBalance("total_supply", amount, current)
	}
	next := new(uint256.Int).Sub(current, amount)
	return setMetaTx(ctx, tx, MetaTotalSupply, next.Dec())
}

func setMetaTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write meta %q: %w", key, err)
	}
	return nil
}

func getAllowanceTx(ctx context.Context, tx *sql.Tx, owner, spender string) (*uint256.Int, error) {
	var amount string
	err := tx.QueryRowContext(ctx,
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

func setAllowanceTx(ctx context.Context, tx *sql.Tx, owner, spender string, amount *uint256.Int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO allowances (owner, spender, amount) VALUES (?, ?, ?)
		ON CONFLICT(owner, spender) DO UPDATE SET amount = excluded.amount
	`, owner, spender, amount.Dec())
	if err != nil {
		return fmt.Errorf("write allowance %s->%s: %w", owner, spender, err)
	}
	return nil
}

func spendAllowanceTx(ctx context.Context, tx *sql.Tx, spend AllowanceSpend) error {
	current, err := getAllowanceTx(ctx, tx, spend.Owner, spend.Spender)
	if err != nil {
		return err
	}
	if current.Lt(spend.Amount) {
		return newInsufficientAllowance(spend.Owner, spend.Spender, spend.Amount, current)
	}
	next := new(uint256.Int).Sub(current, spend.Amount)
	return setAllowanceTx(ctx, tx, spend.Owner, spend.Spender, next)
}

// writeEventTx appends a journal event. The sequence number is assigned
// from the journal's current maximum inside the transaction, so rolled-back
// operations leave no gaps.
func writeEventTx(ctx context.Context, tx *sql.Tx, ev journal.Event) error {
	payload, err := ev.MarshalPayload()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal (seq, op_id, kind, payload)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM journal), ?, ?, ?)
	`, ev.OpID, string(ev.Kind), string(payload))
	if err != nil {
		return fmt.Errorf("write journal event %s: %w", ev.Kind, err)
	}
	return nil
}
