package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenarioFile(t *testing.T, name string) *Result {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_TaxedDeflationaryTransfer(t *testing.T) {
	result := runScenarioFile(t, "taxed-deflationary-transfer.yaml")

	assert.True(t, result.Passed, "failures: %v", result.Failures)
	assert.Len(t, result.Events, 2)
}

func TestRun_CapEnforcement(t *testing.T) {
	result := runScenarioFile(t, "cap-enforcement.yaml")

	assert.True(t, result.Passed, "failures: %v", result.Failures)
}

func TestRun_DelegatedTransfer(t *testing.T) {
	result := runScenarioFile(t, "delegated-transfer.yaml")

	assert.True(t, result.Passed, "failures: %v", result.Failures)
}

func TestRun_OwnershipHandoff(t *testing.T) {
	result := runScenarioFile(t, "ownership-handoff.yaml")

	assert.True(t, result.Passed, "failures: %v", result.Failures)
}

func TestRun_DeterministicOpIDs(t *testing.T) {
	result := runScenarioFile(t, "taxed-deflationary-transfer.yaml")

	require.Len(t, result.Events, 2)
	assert.Equal(t, "op-1", result.Events[0].OpID)
	assert.Equal(t, "op-2", result.Events[1].OpID)

	// A second run produces the identical journal.
	again := runScenarioFile(t, "taxed-deflationary-transfer.yaml")
	assert.Equal(t, result.Events, again.Events)
}

func TestRun_FailedExpectationStopsExecution(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "taxed-deflationary-transfer.yaml"))
	require.NoError(t, err)

	// Demand an error from a step that succeeds.
	s.Steps[0].ExpectError = "INSUFFICIENT_BALANCE"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.NotEmpty(t, result.Failures)
	assert.Contains(t, result.Failures[0], "expected error")
}

func TestRun_AssertionFailureReported(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "taxed-deflationary-transfer.yaml"))
	require.NoError(t, err)

	s.Assertions = append(s.Assertions, Assertion{
		Type:   AssertSupply,
		Amount: "123",
	})

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Failures[0], "supply")
}

func TestRunWithGolden_TaxedDeflationaryTransfer(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "taxed-deflationary-transfer.yaml"))
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, s))
}
