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

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// check evaluates an assertion against a result.  An error aborts the
// chain, a false result is an ordinary failure.
type check func(result *Result) (passed bool, message string, err error)

// Expects is the assertion surface of a chain.
type Expects struct {
	pending  *Pending
	previous Awaitable
}

// then appends a step to the chain.
func (e *Expects) then(assertion string, check check) *Step {
	step := &Step{
		pending:   e.pending,
		assertion: assertion,
		done:      make(chan struct{}),
	}

	e.pending.engine.inflight.add()

	go step.run(e.previous, check)

	return step
}

// ToHaveStatus asserts the response status code.
func (e *Expects) ToHaveStatus(status int) *Step {
	return e.then(fmt.Sprintf("ToHaveStatus(%d)", status), func(result *Result) (bool, string, error) {
		if result.Status == status {
			return true, "", nil
		}

		return false, fmt.Sprintf("expected status %d, got %d %s", status, result.Status, result.StatusText), nil
	})
}

// ToHaveData asserts the decoded body satisfies the predicate.  A panic in
// the predicate aborts the chain.
func (e *Expects) ToHaveData(predicate func(data any) bool) *Step {
	return e.then("ToHaveData(predicate)", func(result *Result) (bool, string, error) {
		if predicate(result.Data) {
			return true, "", nil
		}

		return false, "data did not satisfy predicate", nil
	})
}

// ToMatchData asserts the decoded body is structurally equal to expected.
// Expected may be any JSON serializable value.
func (e *Expects) ToMatchData(expected any) *Step {
	return e.then("ToMatchData("+label(expected)+")", func(result *Result) (bool, string, error) {
		normalized, err := Normalize(expected)
		if err != nil {
			return false, "", fmt.Errorf("%w: expected data: %w", ErrEncode, err)
		}

		if equal, _ := Equal(normalized, result.Data); equal {
			return true, "", nil
		}

		return false, "data mismatch: " + describeMismatch(normalized, result.Data), nil
	})
}

// ToHaveHeader asserts the header is present and, if given, that one of its
// values matches exactly.
func (e *Expects) ToHaveHeader(name string, value ...string) *Step {
	assertion := fmt.Sprintf("ToHaveHeader(%q)", name)
	if len(value) > 0 {
		assertion = fmt.Sprintf("ToHaveHeader(%q, %q)", name, value[0])
	}

	return e.then(assertion, func(result *Result) (bool, string, error) {
		values := result.Headers.Values(http.CanonicalHeaderKey(name))
		if len(values) == 0 {
			return false, fmt.Sprintf("header %s not present", name), nil
		}

		if len(value) == 0 || slices.Contains(values, value[0]) {
			return true, "", nil
		}

		return false, fmt.Sprintf("header %s is %q, expected %q", name, values, value[0]), nil
	})
}

// ToHaveProperty asserts a dot separated path resolves in the decoded body
// and, if given, that its value is structurally equal to expected.
func (e *Expects) ToHaveProperty(path string, value ...any) *Step {
	assertion := fmt.Sprintf("ToHaveProperty(%q)", path)
	if len(value) > 0 {
		assertion = fmt.Sprintf("ToHaveProperty(%q, %s)", path, label(value[0]))
	}

	return e.then(assertion, func(result *Result) (bool, string, error) {
		actual, ok := Resolve(result.Data, path)
		if !ok {
			return false, fmt.Sprintf("property %s not found", path), nil
		}

		if len(value) == 0 {
			return true, "", nil
		}

		expected, err := Normalize(value[0])
		if err != nil {
			return false, "", fmt.Errorf("%w: expected property: %w", ErrEncode, err)
		}

		if equal, _ := Equal(expected, actual); equal {
			return true, "", nil
		}

		return false, fmt.Sprintf("property %s mismatch: %s", path, describeMismatch(expected, actual)), nil
	})
}

// label renders a value for use in an assertion label.
func label(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}
