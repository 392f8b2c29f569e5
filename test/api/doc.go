/*
Copyright 2024-2025 the Unikorn Authors.
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


// Package api provides integration test utilities for the game backend.
//
// # Engine Based Client
//
// GameClient wraps the request engine rather than a generated client so that
// every call made by the integration suites goes through the same
// asynchronous assertion chains as the command line harness.  Features:
//   - W3C trace context propagation for request correlation
//   - Assertion outcomes collected per spec for failure reporting
//   - Token acquisition through any supported grant
//   - Direct access to status codes, headers and decoded bodies
//
// # Local Backend
//
// When API_BASE_URL is not set the suites start an in-process stub of the
// account and lightswitch services, so they run anywhere without
// credentials.  Suites that only make sense against the stub skip themselves
// when a real backend is configured.
package api
