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

// Package report aggregates assertion outcomes across a run.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/nscaledev/uni-apitest/pkg/request"
)

// Aborted is a test that could not complete.
type Aborted struct {
	Description string
	Err         error
}

// Summary counts what happened during a run.
type Summary struct {
	// Tests is the number of distinct test descriptions seen.
	Tests int

	// Assertions is the number of assertions evaluated.
	Assertions int

	// Passed is the number of assertions that held.
	Passed int

	// Failed is the number of assertions that did not.
	Failed int

	// Aborted is the number of tests that could not complete.
	Aborted int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d tests, %d assertions, %d passed, %d failed, %d aborted", s.Tests, s.Assertions, s.Passed, s.Failed, s.Aborted)
}

// Collector records outcomes from any number of engines concurrently.
type Collector struct {
	lock     sync.Mutex
	outcomes []request.Outcome
	aborted  []Aborted
}

var _ request.Recorder = &Collector{}

// New returns an empty collector.
func New() *Collector {
	return &Collector{}
}

// Record implements request.Recorder.
func (c *Collector) Record(outcome request.Outcome) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.outcomes = append(c.outcomes, outcome)
}

// Abort implements request.Recorder.
func (c *Collector) Abort(description string, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.aborted = append(c.aborted, Aborted{Description: description, Err: err})
}

// Outcomes returns every outcome in the order recorded.
func (c *Collector) Outcomes() []request.Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]request.Outcome(nil), c.outcomes...)
}

// Aborted returns every aborted test in the order recorded.
func (c *Collector) Aborted() []Aborted {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]Aborted(nil), c.aborted...)
}

// Summary tallies the run so far.
func (c *Collector) Summary() Summary {
	c.lock.Lock()
	defer c.lock.Unlock()

	tests := map[string]struct{}{}

	summary := Summary{
		Assertions: len(c.outcomes),
		Aborted:    len(c.aborted),
	}

	for _, outcome := range c.outcomes {
		tests[outcome.Description] = struct{}{}

		if outcome.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	for _, aborted := range c.aborted {
		tests[aborted.Description] = struct{}{}
	}

	summary.Tests = len(tests)

	return summary
}

// Failed is true if any assertion failed or any test aborted.
func (c *Collector) Failed() bool {
	summary := c.Summary()

	return summary.Failed > 0 || summary.Aborted > 0
}

// Render writes a table of every outcome followed by the summary.  Passing
// assertions are omitted unless verbose is set.
func (c *Collector) Render(w io.Writer, verbose bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Assertion", "Result", "Message"})
	table.SetAutoWrapText(false)

	for _, outcome := range c.Outcomes() {
		if outcome.Passed && !verbose {
			continue
		}

		result := "PASS"
		if !outcome.Passed {
			result = "FAIL"
		}

		table.Append([]string{outcome.Description, outcome.Assertion, result, outcome.Message})
	}

	for _, aborted := range c.Aborted() {
		table.Append([]string{aborted.Description, "", "ABORT", aborted.Err.Error()})
	}

	table.Render()

	fmt.Fprintln(w, c.Summary())
}
