package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/baydroid/StarSeeds-Contracts/internal/journal"
)

// snapshotMap converts a scenario result into a canonical-JSON-safe map.
// The journal is the snapshot: balances and supply are derivable from it.
func snapshotMap(scenarioName string, events []journal.Event) map[string]any {
	list := make([]any, len(events))
	for i, ev := range events {
		list[i] = map[string]any{
			"seq":    ev.Seq,
			"op_id":  ev.OpID,
			"kind":   ev.Kind,
			"fields": ev.Fields,
		}
	}
	return map[string]any{
		"scenario_name": scenarioName,
		"journal":       list,
	}
}

// RunWithGolden executes a scenario and compares its journal against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario itself fails; a journal mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, failure := range result.Failures {
		t.Error(failure)
	}

	data, err := journal.MarshalCanonical(snapshotMap(scenario.Name, result.Events))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
