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

package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidParameters is returned when a grant is missing required
	// parameters.  No request is made.
	ErrInvalidParameters = errors.New("invalid grant parameters")

	// ErrAuthenticationFailed is returned when the token endpoint responds
	// with a non-2xx status.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// InvalidParametersError names the grant fields that failed validation.
type InvalidParametersError struct {
	GrantType GrantType
	Missing   []string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("%s: grant %s requires %s", ErrInvalidParameters, e.GrantType, strings.Join(e.Missing, ", "))
}

func (e *InvalidParametersError) Is(target error) bool {
	return target == ErrInvalidParameters
}

// AuthenticationFailedError carries the token endpoint's response.
type AuthenticationFailedError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", ErrAuthenticationFailed, e.StatusCode, e.Body)
}

func (e *AuthenticationFailedError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}
