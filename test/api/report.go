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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/ginkgo/v2/types"
	. "github.com/onsi/gomega"
)

// Report entry names.
const (
	// DeviationReportEntry carries a DeviationRecord.
	DeviationReportEntry = "deviation"
	// IdentityReportEntry carries an IdentityRecord.
	IdentityReportEntry = "identity"
)

// Labels attached to scenarios.
const (
	LabelHappyPath      = "happy-path"
	LabelEdgeCase       = "edge-case"
	LabelIntegration    = "integration"
	LabelKnownDeviation = "known-deviation"
)

// DeviationRecord is what the suite summary reports for each deviation hit.
type DeviationRecord struct {
	Spec     string `json:"spec"`
	Scenario string `json:"scenario"`
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Expected []int  `json:"expected"`
	Observed int    `json:"observed"`
	TraceID  string `json:"traceId"`
}

// IdentityRecord captures which id a write answered with when the path and
// the body disagree.
type IdentityRecord struct {
	Scenario   string `json:"scenario"`
	PathID     int64  `json:"pathId"`
	BodyID     int64  `json:"bodyId"`
	ReturnedID int64  `json:"returnedId"`
	Status     int    `json:"status"`
}

// Echoed is the id the response body carried, named for the request id it
// matches.
func (r IdentityRecord) Echoed() string {
	switch r.ReturnedID {
	case r.PathID:
		return "path"
	case r.BodyID:
		return "body"
	default:
		return "neither"
	}
}

// RecordIdentity attaches the ids of a mismatched write to the spec report.
func RecordIdentity(scenario string, pathID, bodyID int64, result *Result[Book]) IdentityRecord {
	return recordIdentity(scenario, pathID, bodyID, result.Response.StatusCode, result.Data.ID)
}

// RecordAuthorIdentity is the author equivalent of RecordIdentity.
func RecordAuthorIdentity(scenario string, pathID, bodyID int64, result *Result[Author]) IdentityRecord {
	return recordIdentity(scenario, pathID, bodyID, result.Response.StatusCode, result.Data.ID)
}

func recordIdentity(scenario string, pathID, bodyID int64, status int, returnedID int64) IdentityRecord {
	record := IdentityRecord{
		Scenario:   scenario,
		PathID:     pathID,
		BodyID:     bodyID,
		ReturnedID: returnedID,
		Status:     status,
	}

	GinkgoWriter.Printf("IDENTITY %s: path id %d, body id %d, returned id %d (%s)\n",
		scenario, pathID, bodyID, returnedID, record.Echoed())

	AddReportEntry(IdentityReportEntry, record)

	return record
}

// ScenarioLabels marks specs that exercise the given scenario keys.  Any key
// with a documented deviation adds the known-deviation label and the
// deviation id, so `--label-filter=!known-deviation` selects strict specs.
func ScenarioLabels(e *Expectations, tier string, keys ...string) Labels {
	labels := Labels{tier}

	seen := map[string]bool{}

	for _, key := range keys {
		expectation, err := e.Lookup(key)
		if err != nil || expectation.Deviation == nil || seen[expectation.Deviation.ID] {
			continue
		}

		if len(seen) == 0 {
			labels = append(labels, LabelKnownDeviation)
		}

		seen[expectation.Deviation.ID] = true
		labels = append(labels, expectation.Deviation.ID)
	}

	return labels
}

// ExpectStatus asserts resp against the scenario.  A known deviation passes,
// but is logged and attached to the spec report.
func ExpectStatus(e *Expectations, key string, resp *Response) Outcome {
	GinkgoHelper()

	Expect(resp).NotTo(BeNil(), "scenario %s produced no response", key)

	outcome, err := e.Check(key, resp)
	Expect(err).NotTo(HaveOccurred())

	if outcome == OutcomeDeviated {
		expectation, _ := e.Lookup(key)

		record := DeviationRecord{
			Spec:     CurrentSpecReport().FullText(),
			Scenario: key,
			ID:       expectation.Deviation.ID,
			Summary:  expectation.Deviation.Summary,
			Method:   resp.Method,
			Path:     resp.Path,
			Expected: expectation.Expected,
			Observed: resp.StatusCode,
			TraceID:  resp.TraceID,
		}

		GinkgoWriter.Printf("KNOWN DEVIATION %s: %s %s expected one of %v, got %d (%s)\n",
			record.ID, record.Method, record.Path, record.Expected, record.Observed, record.Summary)

		AddReportEntry(DeviationReportEntry, record)
	}

	return outcome
}

// CollectDeviations extracts deviation records from a suite report.  Entries
// are decoded from their JSON form when the raw value did not survive,
// which is the case when specs ran in other parallel processes.
func CollectDeviations(report types.Report) []DeviationRecord {
	var records []DeviationRecord

	for _, spec := range report.SpecReports {
		for _, entry := range spec.ReportEntries {
			if entry.Name != DeviationReportEntry {
				continue
			}

			if record, ok := entry.Value.GetRawValue().(DeviationRecord); ok {
				records = append(records, record)
				continue
			}

			var record DeviationRecord
			if err := json.Unmarshal([]byte(entry.Value.AsJSON), &record); err == nil {
				records = append(records, record)
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ID != records[j].ID {
			return records[i].ID < records[j].ID
		}

		return records[i].Scenario < records[j].Scenario
	})

	return records
}

// WriteDeviationSummary prints records grouped by deviation id.
func WriteDeviationSummary(w io.Writer, records []DeviationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No known deviations were observed.")
		return
	}

	fmt.Fprintf(w, "Observed %d known deviation(s):\n", len(records))

	current := ""

	for _, record := range records {
		if record.ID != current {
			current = record.ID
			fmt.Fprintf(w, "  %s: %s\n", record.ID, record.Summary)
		}

		fmt.Fprintf(w, "    %s %s %s expected %v got %d\n", record.Scenario, record.Method, record.Path, record.Expected, record.Observed)
	}
}
