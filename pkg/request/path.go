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
	"strconv"
	"strings"
)

// Resolve walks a dot separated property path through decoded JSON.
// Numeric segments index arrays.  It reports false if any segment is missing,
// or traversal reaches null or a scalar before the path is exhausted.  The
// empty path resolves to the document itself.
func Resolve(data any, path string) (any, bool) {
	if path == "" {
		return data, true
	}

	current := data

	for _, segment := range strings.Split(path, ".") {
		switch t := current.(type) {
		case map[string]any:
			value, ok := t[segment]
			if !ok {
				return nil, false
			}

			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(t) {
				return nil, false
			}

			current = t[index]
		default:
			return nil, false
		}
	}

	return current, true
}
