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
	"errors"
)

var (
	// ErrNetwork is returned when the exchange itself fails, e.g. the
	// connection is refused, the timeout elapses or the response is
	// malformed.
	ErrNetwork = errors.New("network failure")

	// ErrParse is returned when a response claims to be JSON but isn't.
	ErrParse = errors.New("response parse failure")

	// ErrEncode is returned when the request body cannot be encoded as the
	// requested kind.
	ErrEncode = errors.New("request body encode failure")

	// ErrPredicatePanic is returned by a step whose data predicate panicked.
	ErrPredicatePanic = errors.New("data predicate panicked")
)
