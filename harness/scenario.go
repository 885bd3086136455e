package harness

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/crytic/trapcheck/traps"
	"github.com/pkg/errors"
)

// Scenario describes a set of test cases to run, as read from a JSON scenario file:
//
//	{
//		"name": "timers",
//		"cases": [
//			{"name": "timer2 fires", "expected": "TIMER2", "observed": 11},
//			{"name": "table walk never fires", "expected": "TABLE_WALK"}
//		]
//	}
type Scenario struct {
	// Name describes the scenario.
	Name string `json:"name"`

	// Cases describes the test cases of the scenario, in the order they are reported.
	Cases []ScenarioCase `json:"cases"`
}

// ScenarioCase describes a single test expecting a trap code, along with the raw value the trap handler reported.
type ScenarioCase struct {
	// Name describes the test.
	Name string `json:"name"`

	// Expected is the trap code the test intends to provoke. It may be given by name, as a decimal string or as a
	// JSON number, and must be present in a scenario file.
	Expected traps.TrapCode `json:"expected"`

	// Observed is the raw value reported by the trap handler. A nil value indicates no trap was reported before the
	// harness deadline, in which case the configured timeout raw code is observed instead.
	Observed *int64 `json:"observed,omitempty"`
}

// UnmarshalJSON decodes a ScenarioCase. The expected trap code is required and unknown keys are rejected, so a
// misspelled key cannot leave the case silently expecting START.
func (c *ScenarioCase) UnmarshalJSON(b []byte) error {
	type scenarioCase ScenarioCase
	var decoded struct {
		scenarioCase
		Expected *traps.TrapCode `json:"expected"`
	}

	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&decoded); err != nil {
		return errors.WithStack(err)
	}
	if decoded.Expected == nil {
		return errors.Errorf("case %q has no expected trap code", decoded.Name)
	}

	*c = ScenarioCase(decoded.scenarioCase)
	c.Expected = *decoded.Expected
	return nil
}

// ReadScenarioFromFile reads a JSON-serialized Scenario from a provided file path.
// Returns the Scenario if it succeeds, or an error if one occurs.
func ReadScenarioFromFile(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var scenario Scenario
	if err = json.Unmarshal(b, &scenario); err != nil {
		return nil, errors.Wrapf(err, "could not parse scenario %s", path)
	}
	if err = scenario.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	return &scenario, nil
}

// Validate validates that the Scenario can be run.
func (s *Scenario) Validate() error {
	if len(s.Cases) == 0 {
		return errors.Errorf("scenario has no cases")
	}

	for i, c := range s.Cases {
		if !c.Expected.IsValid() {
			return errors.Errorf("case %d expects %s, which is not a defined trap code", i, c.Expected)
		}
	}
	return nil
}
