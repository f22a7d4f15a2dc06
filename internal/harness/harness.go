// Package harness provides a conformance testing framework for the token
// overlay.
//
// Scenarios are YAML files that deploy a token from a CUE descriptor,
// execute a sequence of operations through the real overlay and ledger,
// and assert on the resulting balances, supply, allowances, and journal.
// Each scenario runs in a fresh in-memory database with deterministic
// operation IDs (op-1, op-2, ...), so journals are reproducible and can be
// compared against golden files.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/baydroid/StarSeeds-Contracts/internal/deploy"
	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
	"github.com/baydroid/StarSeeds-Contracts/internal/ledger"
	"github.com/baydroid/StarSeeds-Contracts/internal/token"
)

// Result holds the outcome of a scenario run.
type Result struct {
	// Passed is true when every step and assertion succeeded.
	Passed bool

	// Failures lists human-readable step and assertion failures.
	Failures []string

	// Events is the final journal, in sequence order.
	Events []journal.Event
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{Passed: true}
}

func (r *Result) fail(format string, args ...any) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// counterGenerator issues op-1, op-2, ... for deterministic journals.
type counterGenerator struct {
	n atomic.Int64
}

func (g *counterGenerator) Generate() string {
	return fmt.Sprintf("op-%d", g.n.Add(1))
}

// Run executes a scenario against a fresh in-memory database.
//
// Execution flow:
//  1. Compile the deployment descriptor
//  2. Deploy the token with deterministic op IDs
//  3. Execute steps in order, checking expect_error clauses
//  4. Evaluate assertions against final state and journal
//
// Step failures stop execution; assertion failures do not.
func Run(scenario *Scenario) (*Result, error) {
	l, err := ledger.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory ledger: %w", err)
	}
	defer l.Close()

	params, err := deploy.CompileFile(scenario.Deployment)
	if err != nil {
		return nil, fmt.Errorf("failed to compile deployment: %w", err)
	}

	deployer := params.Owner
	if scenario.Deployer != "" {
		deployer, err = token.ParseAddress(scenario.Deployer)
		if err != nil {
			return nil, fmt.Errorf("invalid deployer: %w", err)
		}
	}

	ctx := context.Background()
	result := NewResult()

	tok, err := token.Deploy(ctx, l, deployer, params, &counterGenerator{})
	if err != nil {
		return nil, fmt.Errorf("deployment failed: %w", err)
	}

	for i, step := range scenario.Steps {
		stepErr := executeStep(ctx, tok, step)
		if step.ExpectError != "" {
			if stepErr == nil {
				result.fail("steps[%d] %s: expected error %s, got success", i, step.Op, step.ExpectError)
				break
			}
			if code := errorCode(stepErr); code != step.ExpectError {
				result.fail("steps[%d] %s: expected error %s, got %s", i, step.Op, step.ExpectError, code)
				break
			}
			continue
		}
		if stepErr != nil {
			result.fail("steps[%d] %s: unexpected error: %v", i, step.Op, stepErr)
			break
		}
	}

	result.Events, err = tok.Journal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	if result.Passed {
		evaluateAssertions(ctx, tok, scenario.Assertions, result)
	}

	return result, nil
}

// executeStep dispatches one scenario step to the overlay.
func executeStep(ctx context.Context, tok *token.Token, step Step) error {
	caller, err := token.ParseAddress(step.Caller)
	if err != nil {
		return err
	}

	switch step.Op {
	case "transfer":
		to, amount, err := addressAmountArgs(step, "to")
		if err != nil {
			return err
		}
		return tok.Transfer(ctx, caller, to, amount)

	case "transfer_from":
		from, err := addressArg(step, "from")
		if err != nil {
			return err
		}
		to, amount, err := addressAmountArgs(step, "to")
		if err != nil {
			return err
		}
		return tok.TransferFrom(ctx, caller, from, to, amount)

	case "approve":
		spender, amount, err := addressAmountArgs(step, "spender")
		if err != nil {
			return err
		}
		return tok.Approve(ctx, caller, spender, amount)

	case "mint":
		to, amount, err := addressAmountArgs(step, "to")
		if err != nil {
			return err
		}
		return tok.Mint(ctx, caller, to, amount)

	case "burn":
		amount, err := amountArg(step, "amount")
		if err != nil {
			return err
		}
		return tok.Burn(ctx, caller, amount)

	case "set_tax":
		addr, err := addressArg(step, "address")
		if err != nil {
			return err
		}
		bps, err := bpsArg(step, "bps")
		if err != nil {
			return err
		}
		return tok.SetTaxConfig(ctx, caller, addr, bps)

	case "set_deflation":
		bps, err := bpsArg(step, "bps")
		if err != nil {
			return err
		}
		return tok.SetDeflationConfig(ctx, caller, bps)

	case "set_doc_uri":
		return tok.SetDocumentURI(ctx, caller, step.Args["uri"])

	case "raise_cap":
		amount, err := amountArg(step, "amount")
		if err != nil {
			return err
		}
		return tok.RaiseCap(ctx, caller, amount)

	case "transfer_ownership":
		newOwner, err := addressArg(step, "new_owner")
		if err != nil {
			return err
		}
		return tok.TransferOwnership(ctx, caller, newOwner)

	case "renounce_ownership":
		return tok.RenounceOwnership(ctx, caller)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func addressArg(step Step, key string) (token.Address, error) {
	raw, ok := step.Args[key]
	if !ok {
		return token.ZeroAddress, fmt.Errorf("%s: missing %q argument", step.Op, key)
	}
	return token.ParseAddress(raw)
}

func amountArg(step Step, key string) (*uint256.Int, error) {
	raw, ok := step.Args[key]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q argument", step.Op, key)
	}
	amount := new(uint256.Int)
	if err := amount.SetFromDecimal(raw); err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q: %w", step.Op, raw, err)
	}
	return amount, nil
}

func addressAmountArgs(step Step, addrKey string) (token.Address, *uint256.Int, error) {
	addr, err := addressArg(step, addrKey)
	if err != nil {
		return token.ZeroAddress, nil, err
	}
	amount, err := amountArg(step, "amount")
	if err != nil {
		return token.ZeroAddress, nil, err
	}
	return addr, amount, nil
}

func bpsArg(step Step, key string) (uint64, error) {
	amount, err := amountArg(step, key)
	if err != nil {
		return 0, err
	}
	if !amount.IsUint64() {
		return 0, fmt.Errorf("%s: bps value out of range", step.Op)
	}
	return amount.Uint64(), nil
}

// errorCode extracts the domain error code from a failure.
func errorCode(err error) string {
	var te *token.Error
	if errors.As(err, &te) {
		return string(te.Code)
	}
	var le *ledger.Error
	if errors.As(err, &le) {
		return string(le.Code)
	}
	return err.Error()
}
