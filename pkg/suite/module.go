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
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nscaledev/uni-apitest/pkg/request"
)

var (
	// ErrDuplicateModule is raised when a module name is registered twice.
	ErrDuplicateModule = errors.New("duplicate module")

	// ErrInvalidSuite is raised when a suite file is malformed.
	ErrInvalidSuite = errors.New("invalid suite")
)

// Export is a named assertion chain.
type Export struct {
	Name      string
	Awaitable request.Awaitable
}

// Exports are a module's chains in declaration order.
type Exports []Export

// Module is a unit of tests.
type Module interface {
	// Name identifies the module in logs.
	Name() string

	// Start fires the module's requests and returns without waiting for
	// them.
	Start(ctx context.Context, engine *request.Engine) Exports
}

// StartFunc adapts a function to a Module.
type StartFunc func(ctx context.Context, engine *request.Engine) Exports

type funcModule struct {
	name  string
	start StartFunc
}

func (m *funcModule) Name() string {
	return m.name
}

func (m *funcModule) Start(ctx context.Context, engine *request.Engine) Exports {
	return m.start(ctx, engine)
}

// NewModule returns a module backed by a function.
func NewModule(name string, start StartFunc) Module {
	return &funcModule{
		name:  name,
		start: start,
	}
}

// Registry holds modules defined in Go.
type Registry struct {
	lock    sync.Mutex
	modules map[string]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: map[string]Module{},
	}
}

// Register adds a module.
func (r *Registry) Register(module Module) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.modules[module.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, module.Name())
	}

	r.modules[module.Name()] = module

	return nil
}

// Modules returns every registered module ordered by name.
func (r *Registry) Modules() []Module {
	r.lock.Lock()
	defer r.lock.Unlock()

	modules := make([]Module, 0, len(r.modules))

	for _, name := range slices.Sorted(maps.Keys(r.modules)) {
		modules = append(modules, r.modules[name])
	}

	return modules
}
