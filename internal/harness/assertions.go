package harness

import (
	"context"
	"fmt"

	"github.com/baydroid/StarSeeds-Contracts/internal/token"
)

// evaluateAssertions checks every assertion against final state, recording
// failures in the result. All assertions run even when earlier ones fail.
func evaluateAssertions(ctx context.Context, tok *token.Token, assertions []Assertion, result *Result) {
	for i, a := range assertions {
		switch a.Type {
		case AssertBalance:
			assertBalance(ctx, tok, i, a, result)
		case AssertSupply:
			assertSupply(ctx, tok, i, a, result)
		case AssertAllowance:
			assertAllowance(ctx, tok, i, a, result)
		case AssertOwner:
			assertOwner(tok, i, a, result)
		case AssertJournalCount:
			if len(result.Events) != a.Count {
				result.fail("assertions[%d] journal_count: expected %d events, got %d",
					i, a.Count, len(result.Events))
			}
		case AssertJournalContains:
			assertJournalContains(i, a, result)
		}
	}
}

func assertBalance(ctx context.Context, tok *token.Token, i int, a Assertion, result *Result) {
	addr, err := token.ParseAddress(a.Address)
	if err != nil {
		result.fail("assertions[%d] balance: %v", i, err)
		return
	}
	balance, err := tok.BalanceOf(ctx, addr)
	if err != nil {
		result.fail("assertions[%d] balance: %v", i, err)
		return
	}
	if balance.Dec() != a.Amount {
		result.fail("assertions[%d] balance: %s holds %s, expected %s",
			i, a.Address, balance.Dec(), a.Amount)
	}
}

func assertSupply(ctx context.Context, tok *token.Token, i int, a Assertion, result *Result) {
	supply, err := tok.TotalSupply(ctx)
	if err != nil {
		result.fail("assertions[%d] supply: %v", i, err)
		return
	}
	if supply.Dec() != a.Amount {
		result.fail("assertions[%d] supply: got %s, expected %s", i, supply.Dec(), a.Amount)
	}
}

func assertAllowance(ctx context.Context, tok *token.Token, i int, a Assertion, result *Result) {
	owner, err := token.ParseAddress(a.Owner)
	if err != nil {
		result.fail("assertions[%d] allowance: %v", i, err)
		return
	}
	spender, err := token.ParseAddress(a.Spender)
	if err != nil {
		result.fail("assertions[%d] allowance: %v", i, err)
		return
	}
	allowance, err := tok.Allowance(ctx, owner, spender)
	if err != nil {
		result.fail("assertions[%d] allowance: %v", i, err)
		return
	}
	if allowance.Dec() != a.Amount {
		result.fail("assertions[%d] allowance: got %s, expected %s",
			i, allowance.Dec(), a.Amount)
	}
}

func assertOwner(tok *token.Token, i int, a Assertion, result *Result) {
	if tok.Owner().String() != a.Address {
		result.fail("assertions[%d] owner: got %s, expected %s", i, tok.Owner(), a.Address)
	}
}

func assertJournalContains(i int, a Assertion, result *Result) {
	for _, ev := range result.Events {
		if string(ev.Kind) != a.Kind {
			continue
		}
		if fieldsMatch(ev.Fields, a.Fields) {
			return
		}
	}
	result.fail("assertions[%d] journal_contains: no %s event matching %v",
		i, a.Kind, a.Fields)
}

// fieldsMatch performs a subset match of expected against actual fields.
// Values compare by their string rendering so YAML integers match the
// journal's int64 values.
func fieldsMatch(actual map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}
