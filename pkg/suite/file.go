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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"k8s.io/utils/ptr"

	"github.com/nscaledev/uni-apitest/pkg/request"
)

// File is a YAML suite.
type File struct {
	Name  string `yaml:"name"`
	Tests []Test `yaml:"tests"`
}

// Test is a single request and its ordered expectations.
type Test struct {
	Description string            `yaml:"description"`
	Method      string            `yaml:"method"`
	Endpoint    string            `yaml:"endpoint"`
	BearerAuth  *bool             `yaml:"bearerAuth"`
	Headers     map[string]string `yaml:"headers"`
	Query       []Query           `yaml:"query"`
	Body        *Body             `yaml:"body"`
	Timeout     *string           `yaml:"timeout"`
	Export      string            `yaml:"export"`
	Expect      []Expectation     `yaml:"expect"`
}

// Query is a query parameter, a list of these preserves order.
type Query struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Body is a request body and how to encode it.
type Body struct {
	Kind    string `yaml:"kind"`
	Payload any    `yaml:"payload"`
}

// Expectation is exactly one assertion.
type Expectation struct {
	Status   *int                 `yaml:"status"`
	Header   *HeaderExpectation   `yaml:"header"`
	Property *PropertyExpectation `yaml:"property"`

	// Match is a node so an explicit null can be told apart from absence.
	Match yaml.Node `yaml:"match"`
}

// HeaderExpectation asserts a response header.
type HeaderExpectation struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value"`
}

// PropertyExpectation asserts a body property.
type PropertyExpectation struct {
	Path  string    `yaml:"path"`
	Value yaml.Node `yaml:"value"`
}

// assertion appends one step to a chain.
type assertion func(expects *request.Expects) *request.Step

// compiledTest is a validated test ready to fire.
type compiledTest struct {
	description string
	export      string
	options     request.TestOptions
	assertions  []assertion
}

// FileModule is a module loaded from a suite file.
type FileModule struct {
	name  string
	tests []compiledTest
}

var _ Module = &FileModule{}

// Load reads and validates a suite file.
func Load(path string) (*FileModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}

	var file File

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidSuite, path, err)
	}

	name := file.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if len(file.Tests) == 0 {
		return nil, fmt.Errorf("%w: %s: at least one test is required", ErrInvalidSuite, path)
	}

	module := &FileModule{
		name:  name,
		tests: make([]compiledTest, len(file.Tests)),
	}

	for i := range file.Tests {
		test, err := compile(&file.Tests[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: test %d: %w", ErrInvalidSuite, path, i, err)
		}

		module.tests[i] = *test
	}

	return module, nil
}

// LoadAll discovers and loads every suite under root.
func LoadAll(root string) ([]Module, error) {
	paths, err := Discover(root)
	if err != nil {
		return nil, err
	}

	modules := make([]Module, len(paths))

	for i, path := range paths {
		module, err := Load(path)
		if err != nil {
			return nil, err
		}

		modules[i] = module
	}

	return modules, nil
}

func compile(test *Test) (*compiledTest, error) {
	if test.Description == "" {
		return nil, fmt.Errorf("description is required")
	}

	if test.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	options := request.TestOptions{
		Method:     strings.ToUpper(test.Method),
		Endpoint:   test.Endpoint,
		Headers:    test.Headers,
		BearerAuth: ptr.Deref(test.BearerAuth, false),
	}

	for _, query := range test.Query {
		options.Query = append(options.Query, request.QueryParam{Key: query.Key, Value: query.Value})
	}

	if test.Body != nil {
		options.BodyKind = request.BodyKind(test.Body.Kind)
		options.Body = test.Body.Payload

		if !options.BodyKind.Valid() {
			return nil, fmt.Errorf("unknown body kind %q", test.Body.Kind)
		}
	}

	if timeout := ptr.Deref(test.Timeout, ""); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}

		options.Timeout = duration
	}

	compiled := &compiledTest{
		description: test.Description,
		export:      test.Export,
		options:     options,
	}

	if compiled.export == "" {
		compiled.export = test.Description
	}

	for i := range test.Expect {
		a, err := compileExpectation(&test.Expect[i])
		if err != nil {
			return nil, fmt.Errorf("expectation %d: %w", i, err)
		}

		compiled.assertions = append(compiled.assertions, a)
	}

	return compiled, nil
}

//nolint:cyclop
func compileExpectation(e *Expectation) (assertion, error) {
	var assertions []assertion

	if e.Status != nil {
		status := *e.Status

		assertions = append(assertions, func(expects *request.Expects) *request.Step {
			return expects.ToHaveStatus(status)
		})
	}

	if e.Header != nil {
		header := *e.Header

		if header.Name == "" {
			return nil, fmt.Errorf("header name is required")
		}

		assertions = append(assertions, func(expects *request.Expects) *request.Step {
			if header.Value != nil {
				return expects.ToHaveHeader(header.Name, *header.Value)
			}

			return expects.ToHaveHeader(header.Name)
		})
	}

	if e.Property != nil {
		property := e.Property

		if property.Path == "" {
			return nil, fmt.Errorf("property path is required")
		}

		var value []any

		if !property.Value.IsZero() {
			var v any

			if err := property.Value.Decode(&v); err != nil {
				return nil, err
			}

			value = append(value, v)
		}

		path := property.Path

		assertions = append(assertions, func(expects *request.Expects) *request.Step {
			return expects.ToHaveProperty(path, value...)
		})
	}

	if !e.Match.IsZero() {
		var expected any

		if err := e.Match.Decode(&expected); err != nil {
			return nil, err
		}

		assertions = append(assertions, func(expects *request.Expects) *request.Step {
			return expects.ToMatchData(expected)
		})
	}

	if len(assertions) != 1 {
		return nil, fmt.Errorf("exactly one of status, header, property or match is required, got %d", len(assertions))
	}

	return assertions[0], nil
}

// Name implements Module.
func (m *FileModule) Name() string {
	return m.name
}

// Start implements Module.  Every test is exported so the runner waits for
// all of them.
func (m *FileModule) Start(ctx context.Context, engine *request.Engine) Exports {
	exports := make(Exports, len(m.tests))

	for i, test := range m.tests {
		pending := engine.Test(ctx, test.description, test.options)

		var tail request.Awaitable = pending

		expects := pending.Expects()

		for _, a := range test.assertions {
			step := a(expects)

			tail = step
			expects = step.Expects()
		}

		exports[i] = Export{
			Name:      test.export,
			Awaitable: tail,
		}
	}

	return exports
}
