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
	"maps"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spjmurray/go-util/pkg/set"
)

// Normalize converts a Go value into the shape the JSON decoder produces, so
// structs, typed maps and integers compare equal to decoded responses.
func Normalize(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool, float64:
		return value, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var normalized any

	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}

// Equal compares two values structurally.  Object key order is irrelevant,
// array order is significant.
func Equal(expected, actual any) (bool, error) {
	e, err := Normalize(expected)
	if err != nil {
		return false, err
	}

	a, err := Normalize(actual)
	if err != nil {
		return false, err
	}

	return cmp.Equal(e, a), nil
}

// describeMismatch explains why two normalized values differ.
func describeMismatch(expected, actual any) string {
	var parts []string

	e, eok := expected.(map[string]any)
	a, aok := actual.(map[string]any)

	if eok && aok {
		expectedKeys := set.New[string](slices.Collect(maps.Keys(e))...)
		actualKeys := set.New[string](slices.Collect(maps.Keys(a))...)

		if missing := sortedMembers(expectedKeys.Difference(actualKeys)); len(missing) > 0 {
			parts = append(parts, fmt.Sprintf("missing keys %v", missing))
		}

		if unexpected := sortedMembers(actualKeys.Difference(expectedKeys)); len(unexpected) > 0 {
			parts = append(parts, fmt.Sprintf("unexpected keys %v", unexpected))
		}
	}

	parts = append(parts, "diff (-expected +actual):\n"+cmp.Diff(expected, actual))

	return strings.Join(parts, ", ")
}

func sortedMembers(s set.Set[string]) []string {
	var members []string

	for member := range s.All() {
		members = append(members, member)
	}

	slices.Sort(members)

	return members
}
