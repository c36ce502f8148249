package connector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
)

// Content types set by BuildBody.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain; charset=utf-8"
)

// BuildBody encodes a request body and reports the content type it implies.
//
//   - nil: no body
//   - string: sent as is, text/plain
//   - []byte: sent as is, no implied content type
//   - io.Reader: read fully so the request can be replayed
//   - url.Values: form encoded
//   - json.RawMessage: sent as is, application/json
//   - anything else (maps, slices, structs, scalars): JSON encoded
func BuildBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(b), ContentTypeText, nil
	case json.RawMessage:
		return b, ContentTypeJSON, nil
	case []byte:
		return b, "", nil
	case url.Values:
		return []byte(b.Encode()), ContentTypeForm, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("reading request body: %w", err)
		}
		return data, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body as JSON: %w", err)
		}
		return data, ContentTypeJSON, nil
	}
}
