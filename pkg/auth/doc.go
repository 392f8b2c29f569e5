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

// Package auth exchanges client credentials for bearer tokens against the
// account service token endpoint.
//
// A single entry point, Client.Token, accepts any Grant.  The structured
// grants (password, refresh token, exchange code and client credentials)
// are validated before any network traffic is generated, so a test run with
// bad credentials fails fast with ErrInvalidParameters.  ExtensionGrant is
// an escape hatch for grant types the backend supports but this package
// does not model; its parameters are forwarded as-is.
//
// Tokens are never renewed behind the caller's back.  Callers that run for
// longer than a token lifetime should check AuthResponse.Expired and call
// Client.Refresh themselves.
package auth
