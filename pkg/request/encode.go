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
	"fmt"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"slices"
	"strings"
)

// encodedBody is a request body ready to send.  contentType is only set for
// encodings whose type is generated with the payload.
type encodedBody struct {
	reader      io.Reader
	contentType string
}

// encodeBody serializes the payload according to kind.
func encodeBody(kind BodyKind, payload any) (*encodedBody, error) {
	switch kind {
	case "", BodyJSON:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}

		return &encodedBody{reader: bytes.NewReader(data)}, nil
	case BodyForm:
		record, err := flatRecord(payload)
		if err != nil {
			return nil, err
		}

		values := url.Values{}

		for key, value := range record {
			values.Set(key, stringify(value))
		}

		return &encodedBody{reader: strings.NewReader(values.Encode())}, nil
	case BodyFormData:
		return encodeMultipart(payload)
	case BodyText:
		return &encodedBody{reader: strings.NewReader(stringify(payload))}, nil
	}

	return nil, fmt.Errorf("%w: unknown body kind %q", ErrEncode, kind)
}

// flatRecord accepts the map shapes callers commonly build form bodies from.
func flatRecord(payload any) (map[string]any, error) {
	switch t := payload.(type) {
	case map[string]any:
		return t, nil
	case map[string]string:
		record := make(map[string]any, len(t))

		for key, value := range t {
			record[key] = value
		}

		return record, nil
	case url.Values:
		record := make(map[string]any, len(t))

		for key := range t {
			record[key] = t.Get(key)
		}

		return record, nil
	}

	return nil, fmt.Errorf("%w: expected a flat record, got %T", ErrEncode, payload)
}

// encodeMultipart writes fields in key order.  Binary values become file
// parts, everything else is stringified.
func encodeMultipart(payload any) (*encodedBody, error) {
	record, err := flatRecord(payload)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)

	for _, key := range slices.Sorted(maps.Keys(record)) {
		if err := writePart(writer, key, record[key]); err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrEncode, key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return &encodedBody{reader: buffer, contentType: writer.FormDataContentType()}, nil
}

func writePart(writer *multipart.Writer, key string, value any) error {
	switch t := value.(type) {
	case FormFile:
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": key, "filename": t.Filename}))

		contentType := t.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return err
		}

		_, err = part.Write(t.Data)

		return err
	case []byte:
		part, err := writer.CreateFormFile(key, key)
		if err != nil {
			return err
		}

		_, err = part.Write(t)

		return err
	case io.Reader:
		part, err := writer.CreateFormFile(key, key)
		if err != nil {
			return err
		}

		_, err = io.Copy(part, t)

		return err
	}

	return writer.WriteField(key, stringify(value))
}
