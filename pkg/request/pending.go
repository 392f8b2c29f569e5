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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Awaitable is anything that eventually yields a result.
type Awaitable interface {
	// Await blocks until the result is available or the context is done.
	Await(ctx context.Context) (*Result, error)
}

// Pending is an exchange that is in flight, or has settled.
type Pending struct {
	engine      *Engine
	description string
	done        chan struct{}
	result      *Result
	err         error
}

var _ Awaitable = &Pending{}

func newPending(engine *Engine, description string) *Pending {
	return &Pending{
		engine:      engine,
		description: description,
		done:        make(chan struct{}),
	}
}

// settle publishes the exchange's result to all waiters.
func (p *Pending) settle(result *Result, err error) {
	if result != nil {
		result.pending = p
	}

	p.result = result
	p.err = err

	close(p.done)
}

// Description returns the test description.
func (p *Pending) Description() string {
	return p.description
}

// Done is closed when the exchange settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Await waits for the exchange to settle.
func (p *Pending) Await(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Expects begins an assertion chain.
func (p *Pending) Expects() *Expects {
	return &Expects{
		pending:  p,
		previous: p,
	}
}

// Step is a single assertion in a chain.  It resolves to the same result as
// the exchange once it, and everything before it, has been evaluated.
type Step struct {
	pending   *Pending
	assertion string
	done      chan struct{}
	outcome   Outcome
	err       error
}

var _ Awaitable = &Step{}

// Assertion returns the assertion's label.
func (s *Step) Assertion() string {
	return s.assertion
}

// Await waits for the assertion to be evaluated.  An assertion that failed
// is not an error, see Outcome.
func (s *Step) Await(ctx context.Context) (*Result, error) {
	select {
	case <-s.done:
		if s.err != nil {
			return nil, s.err
		}

		return s.pending.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Outcome waits for the assertion to be evaluated and returns it.
func (s *Step) Outcome(ctx context.Context) (Outcome, error) {
	if _, err := s.Await(ctx); err != nil {
		return Outcome{}, err
	}

	return s.outcome, nil
}

// Expects continues the assertion chain after this step.
func (s *Step) Expects() *Expects {
	return &Expects{
		pending:  s.pending,
		previous: s,
	}
}

// run waits for the previous link then evaluates the check.  Errors from
// earlier in the chain are propagated without being reported again.
func (s *Step) run(previous Awaitable, check check) {
	engine := s.pending.engine

	defer engine.inflight.done()
	defer close(s.done)

	result, err := previous.Await(context.Background())
	if err != nil {
		s.err = err
		return
	}

	passed, message, err := evaluate(check, result)
	if err != nil {
		s.err = fmt.Errorf("%s: %w", s.assertion, err)

		engine.logger.Error(err, "assertion aborted", "test", s.pending.description, "assertion", s.assertion)
		engine.recorder.Abort(s.pending.description, s.err)

		return
	}

	s.outcome = Outcome{
		Description: s.pending.description,
		Assertion:   s.assertion,
		Passed:      passed,
		Message:     message,
	}

	engine.observe(s.outcome)
}

// evaluate runs a check, converting a panic into an error.
func evaluate(check check, result *Result) (passed bool, message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPredicatePanic, r)
		}
	}()

	return check(result)
}

// AwaitAll waits for every awaitable and returns the first error.
func AwaitAll(ctx context.Context, awaitables ...Awaitable) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, awaitable := range awaitables {
		group.Go(func() error {
			_, err := awaitable.Await(ctx)
			return err
		})
	}

	return group.Wait()
}
