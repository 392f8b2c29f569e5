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

package request

// Outcome is the result of evaluating a single assertion.
type Outcome struct {
	// Description is the test the assertion belongs to.
	Description string

	// Assertion is a label for the assertion e.g. ToHaveStatus(200).
	Assertion string

	// Passed is true if the assertion held.
	Passed bool

	// Message explains a failure.
	Message string
}

// Recorder receives every assertion outcome and every aborted test.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// Record is called once per evaluated assertion.
	Record(outcome Outcome)

	// Abort is called when a test cannot complete.
	Abort(description string, err error)
}

type nopRecorder struct{}

func (nopRecorder) Record(Outcome) {}

func (nopRecorder) Abort(string, error) {}
