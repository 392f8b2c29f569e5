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

// Package request issues HTTP requests against the game backend and
// provides chainable, asynchronous assertions over the responses.
//
// Engine.Test starts the exchange in the background and immediately returns
// a *Pending.  Assertions may be chained onto it straight away:
//
//	engine.Get(ctx, "service is up", request.TestOptions{
//		Endpoint:   "/lightswitch/api/service/Fortnite/status",
//		BearerAuth: true,
//	}).
//		Expects().ToHaveStatus(http.StatusOK).
//		Expects().ToHaveProperty("status", "UP")
//
// Every link in the chain waits for the same exchange, then for the link
// before it, so assertions evaluate in the order they were written and the
// request is only ever sent once.  Each link is itself awaitable.
//
// Assertion failures are observations, not errors: they are logged, handed
// to the Recorder and the chain carries on.  Only transport failures,
// undecodable responses and panicking predicates surface as errors from
// Await.
package request
