/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed expectations/default.yaml
	defaultExpectations []byte

	ErrUnknownScenario  = errors.New("no expectation for scenario")
	ErrEmptyExpectation = errors.New("expectation has no expected status codes")
)

// Deviation is a documented mismatch between the contract and what the
// service is observed to do.
type Deviation struct {
	ID       string `yaml:"id" json:"id"`
	Summary  string `yaml:"summary" json:"summary"`
	Observed []int  `yaml:"observed" json:"observed"`
}

// Expectation is the accepted status set for one scenario.
type Expectation struct {
	Expected  []int      `yaml:"expected"`
	Deviation *Deviation `yaml:"deviation,omitempty"`
}

// Outcome classifies an observed status against an expectation.
type Outcome int

const (
	// OutcomeFailed means neither the contract nor a known deviation matched.
	OutcomeFailed Outcome = iota
	// OutcomeMatched means the contract held.
	OutcomeMatched
	// OutcomeDeviated means the known deviation was observed.
	OutcomeDeviated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeDeviated:
		return "deviated"
	case OutcomeFailed:
		return "failed"
	}

	return "unknown"
}

// Classify compares a status against the expectation.  The contract wins
// when a status appears in both sets.
func (e Expectation) Classify(status int) Outcome {
	if slices.Contains(e.Expected, status) {
		return OutcomeMatched
	}

	if e.Deviation != nil && slices.Contains(e.Deviation.Observed, status) {
		return OutcomeDeviated
	}

	return OutcomeFailed
}

type expectationsFile struct {
	Deviations map[string]Deviation    `yaml:"deviations"`
	Scenarios  map[string]*Expectation `yaml:"scenarios"`
}

// Expectations is the table of scenario expectations.  It is read only after
// loading and safe to share between goroutines.
type Expectations struct {
	scenarios map[string]Expectation
}

// DefaultExpectations parses the embedded table.
func DefaultExpectations() (*Expectations, error) {
	e := &Expectations{
		scenarios: map[string]Expectation{},
	}

	if err := e.merge(defaultExpectations); err != nil {
		return nil, fmt.Errorf("parsing default expectations: %w", err)
	}

	return e, nil
}

// LoadExpectations returns the embedded table with any scenarios in path
// replacing their defaults.  An empty path returns the defaults.
func LoadExpectations(path string) (*Expectations, error) {
	e, err := DefaultExpectations()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expectations: %w", err)
	}

	if err := e.merge(data); err != nil {
		return nil, fmt.Errorf("parsing expectations %s: %w", path, err)
	}

	return e, nil
}

func (e *Expectations) merge(data []byte) error {
	var file expectationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for key, expectation := range file.Scenarios {
		if expectation == nil || len(expectation.Expected) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyExpectation, key)
		}

		e.scenarios[key] = *expectation
	}

	return nil
}

// Lookup returns the expectation for a scenario key.
func (e *Expectations) Lookup(key string) (Expectation, error) {
	expectation, ok := e.scenarios[key]
	if !ok {
		return Expectation{}, fmt.Errorf("%w: %s", ErrUnknownScenario, key)
	}

	return expectation, nil
}

// Keys lists every scenario in the table, sorted.
func (e *Expectations) Keys() []string {
	keys := make([]string, 0, len(e.scenarios))
	for key := range e.scenarios {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Check classifies resp against the scenario.  A failed outcome is returned
// with an *UnexpectedStatusError describing both sides.
func (e *Expectations) Check(key string, resp *Response) (Outcome, error) {
	expectation, err := e.Lookup(key)
	if err != nil {
		return OutcomeFailed, err
	}

	outcome := expectation.Classify(resp.StatusCode)
	if outcome == OutcomeFailed {
		return outcome, &UnexpectedStatusError{
			Scenario:  key,
			Method:    resp.Method,
			Path:      resp.Path,
			Expected:  expectation.Expected,
			Actual:    resp.StatusCode,
			Deviation: expectation.Deviation,
		}
	}

	return outcome, nil
}
