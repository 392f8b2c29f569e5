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
	"fmt"
	"net/http"
	"time"
)

// BodyKind selects how TestOptions.Body is encoded.
type BodyKind string

const (
	// BodyJSON serializes the body as JSON.  This is the default.
	BodyJSON BodyKind = "json"

	// BodyForm URL encodes a flat record.
	BodyForm BodyKind = "form"

	// BodyFormData builds a multipart/form-data payload.
	BodyFormData BodyKind = "formData"

	// BodyText sends the string form of the body.
	BodyText BodyKind = "text"
)

// Valid reports whether the kind is one the engine can encode.
func (k BodyKind) Valid() bool {
	switch k {
	case "", BodyJSON, BodyForm, BodyFormData, BodyText:
		return true
	}

	return false
}

// contentType is the header implied by the kind.  Multipart payloads carry
// their own boundary so have none here.
func (k BodyKind) contentType() string {
	switch k {
	case "", BodyJSON:
		return "application/json"
	case BodyForm:
		return "application/x-www-form-urlencoded"
	case BodyText:
		return "text/plain;charset=UTF-8"
	}

	return ""
}

// QueryParam is a single query string parameter.  Parameters are sent in
// the order they are given.
type QueryParam struct {
	Key   string
	Value any
}

// Query builds query parameters from alternating keys and values.
func Query(pairs ...any) []QueryParam {
	params := make([]QueryParam, 0, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		params = append(params, QueryParam{Key: stringify(pairs[i]), Value: pairs[i+1]})
	}

	return params
}

// FormFile is a multipart file part with an explicit file name and type.
// Plain []byte and io.Reader values are also sent as file parts.
type FormFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TestOptions describe a single request.
type TestOptions struct {
	// Method defaults to GET.
	Method string

	// Endpoint is appended to the engine's base URL.
	Endpoint string

	// BodyKind defaults to BodyJSON.
	BodyKind BodyKind

	// Body is only sent for POST, PUT and PATCH.
	Body any

	// Headers are merged over the engine defaults.
	Headers map[string]string

	// Query is appended to the URL in order.
	Query []QueryParam

	// BearerAuth attaches the engine's access token.
	BearerAuth bool

	// Timeout aborts the exchange, zero uses the engine default.
	Timeout time.Duration
}

// hasBody reports whether a body is sent for the method.
func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}

	return false
}

// stringify converts query, form and text values to their string form.
func stringify(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}

	return fmt.Sprint(value)
}
