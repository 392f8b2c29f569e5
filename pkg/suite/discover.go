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

package suite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// isSuite reports whether a file name looks like a suite.
func isSuite(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}

	return false
}

// Discover returns every suite file under root, recursively, in lexical
// order.  Root may also name a single suite file.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discovering suites: %w", err)
	}

	if !info.IsDir() {
		if !isSuite(root) {
			return nil, fmt.Errorf("%w: %s is not a YAML file", ErrInvalidSuite, root)
		}

		return []string{root}, nil
	}

	var paths []string

	walk := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !isSuite(entry.Name()) {
			return nil
		}

		paths = append(paths, path)

		return nil
	}

	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("discovering suites: %w", err)
	}

	slices.Sort(paths)

	return paths, nil
}
