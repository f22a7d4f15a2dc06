package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios deploy a token from a CUE descriptor, execute a sequence of
// operations, and assert on the resulting balances, supply, and journal.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Deployment is the path to the CUE deployment descriptor.
	// Relative paths resolve against the scenario file location.
	Deployment string `yaml:"deployment"`

	// Deployer is the address that performs the deployment. Defaults to
	// the descriptor's owner when empty.
	Deployer string `yaml:"deployer,omitempty"`

	// Steps contains the operations to execute, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and journal.
	Assertions []Assertion `yaml:"assertions"`
}

// Step represents a single operation invocation.
type Step struct {
	// Op names the operation: transfer, transfer_from, approve, mint,
	// burn, set_tax, set_deflation, set_doc_uri, raise_cap,
	// transfer_ownership, renounce_ownership.
	Op string `yaml:"op"`

	// Caller is the acting address.
	Caller string `yaml:"caller"`

	// Args contains operation arguments as strings (addresses, decimal
	// amounts, bps values, URIs).
	Args map[string]string `yaml:"args,omitempty"`

	// ExpectError names the error code this step must fail with. Empty
	// means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates final state or the journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "balance": an account holds exactly Amount
	// - "supply": total supply equals Amount
	// - "allowance": the (Owner, Spender) allowance equals Amount
	// - "owner": the token owner is Address
	// - "journal_count": the journal holds exactly Count events
	// - "journal_contains": an event of Kind exists with Fields (subset match)
	Type string `yaml:"type"`

	// Address is the account (balance, owner).
	Address string `yaml:"address,omitempty"`

	// Owner and Spender identify an allowance.
	Owner   string `yaml:"owner,omitempty"`
	Spender string `yaml:"spender,omitempty"`

	// Amount is the expected decimal amount.
	Amount string `yaml:"amount,omitempty"`

	// Count is the expected number of journal events.
	Count int `yaml:"count,omitempty"`

	// Kind is the expected event kind (journal_contains).
	Kind string `yaml:"kind,omitempty"`

	// Fields are expected event payload values, subset match
	// (journal_contains).
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertBalance         = "balance"
	AssertSupply          = "supply"
	AssertAllowance       = "allowance"
	AssertOwner           = "owner"
	AssertJournalCount    = "journal_count"
	AssertJournalContains = "journal_contains"
)

// LoadScenario reads and parses a scenario YAML file. The deployment path
// is resolved relative to the scenario file. Unknown YAML fields (typos)
// are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Deployment != "" && !filepath.IsAbs(scenario.Deployment) {
		scenario.Deployment = filepath.Join(filepath.Dir(path), scenario.Deployment)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Deployment == "" {
		return fmt.Errorf("deployment descriptor path is required")
	}
	if _, err := os.Stat(s.Deployment); os.IsNotExist(err) {
		return fmt.Errorf("deployment descriptor not found: %s", s.Deployment)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !knownOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Caller == "" {
			return fmt.Errorf("steps[%d]: caller is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

var knownOps = map[string]bool{
	"transfer":           true,
	"transfer_from":      true,
	"approve":            true,
	"mint":               true,
	"burn":               true,
	"set_tax":            true,
	"set_deflation":      true,
	"set_doc_uri":        true,
	"raise_cap":          true,
	"transfer_ownership": true,
	"renounce_ownership": true,
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertBalance:
		if a.Address == "" || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: balance requires address and amount", index)
		}
	case AssertSupply:
		if a.Amount == "" {
			return fmt.Errorf("assertions[%d]: supply requires amount", index)
		}
	case AssertAllowance:
		if a.Owner == "" || a.Spender == "" || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: allowance requires owner, spender, and amount", index)
		}
	case AssertOwner:
		if a.Address == "" {
			return fmt.Errorf("assertions[%d]: owner requires address", index)
		}
	case AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertJournalContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: journal_contains requires kind", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
