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

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/nscaledev/uni-apitest/pkg/request"
)

// Runner starts modules and waits for everything they export.
type Runner struct {
	engine *request.Engine
	logger logr.Logger
}

// NewRunner returns a runner that fires requests through the engine.
func NewRunner(engine *request.Engine, logger logr.Logger) *Runner {
	return &Runner{
		engine: engine,
		logger: logger,
	}
}

// Run starts every module in order, then waits for all exports to settle
// followed by anything else the modules started.  All exports are waited on
// even if some fail, the first error is returned.
func (r *Runner) Run(ctx context.Context, modules ...Module) error {
	var group errgroup.Group

	for _, module := range modules {
		log := r.logger.WithValues("module", module.Name())

		exports := module.Start(ctx, r.engine)

		log.V(1).Info("module started", "exports", len(exports))

		for _, export := range exports {
			group.Go(func() error {
				if _, err := export.Awaitable.Await(ctx); err != nil {
					log.Error(err, "export aborted", "export", export.Name)

					return fmt.Errorf("module %s export %s: %w", module.Name(), export.Name, err)
				}

				log.V(1).Info("export settled", "export", export.Name)

				return nil
			})
		}
	}

	err := group.Wait()

	// Chains a module did not export still report their outcomes.
	if waitErr := r.engine.Wait(ctx); waitErr != nil && err == nil {
		err = fmt.Errorf("waiting for unexported assertions: %w", waitErr)
	}

	return err
}
