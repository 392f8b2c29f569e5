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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Result is a settled exchange.
type Result struct {
	// Description is the human readable name the test was started with.
	Description string

	// Status is the HTTP status code.
	Status int

	// StatusText is the reason phrase.
	StatusText string

	// Data is the decoded JSON document for JSON responses, nil if the body
	// was empty, otherwise the body as a string.
	Data any

	// Headers are the response headers.
	Headers http.Header

	// Raw is the undecoded response body.
	Raw []byte

	// Elapsed is the wall clock time of the exchange.
	Elapsed time.Duration

	// TraceID identifies the request in the backend's logs.
	TraceID string

	pending *Pending
}

// ElapsedMilliseconds returns the exchange duration in milliseconds.
func (r *Result) ElapsedMilliseconds() int64 {
	return r.Elapsed.Milliseconds()
}

// Expects starts a new assertion chain on the settled exchange.
func (r *Result) Expects() *Expects {
	return r.pending.Expects()
}

// statusText strips the code from a status line, falling back to the
// standard phrase when the server sent none.
func statusText(response *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(response.Status, strconv.Itoa(response.StatusCode)))
	if text == "" {
		text = http.StatusText(response.StatusCode)
	}

	return text
}

// isJSON reports whether a content type denotes a JSON document.
func isJSON(contentType string) bool {
	// A malformed parameter still yields the media type.
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// decodeBody interprets the body based on the content type.
func decodeBody(contentType string, raw []byte) (any, error) {
	if !isJSON(contentType) {
		return string(raw), nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var data any

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return data, nil
}
