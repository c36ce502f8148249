package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

// RefireFunc re-issues the request that produced a response.
type RefireFunc func(ctx context.Context) (*Response, error)

// Response is a fully buffered transport response. Buffering lets the
// pipeline hand out copies and lets response middleware read the
// body without consuming it for the caller.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	// Method and URL describe the request as it was issued.
	Method string
	URL    *url.URL

	refire RefireFunc
}

// FromHTTP buffers and closes resp.Body and returns the equivalent Response.
func FromHTTP(resp *http.Response) (*Response, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	if resp.Request != nil {
		r.Method = resp.Request.Method
		if resp.Request.URL != nil {
			u := *resp.Request.URL
			r.URL = &u
		}
	}
	return r, nil
}

// SetRefire attaches the replay closure. Connectors call this once per send.
func (r *Response) SetRefire(fn RefireFunc) {
	r.refire = fn
}

// Refire re-issues the exact logical request that produced this response
// through the current middleware chain and returns the new response.
func (r *Response) Refire(ctx context.Context) (*Response, error) {
	if r.refire == nil {
		return nil, apierr.ErrNoRequest
	}
	return r.refire(ctx)
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Reader returns a fresh reader over the buffered body.
func (r *Response) Reader() io.Reader {
	return bytes.NewReader(r.Body)
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", r.Method, r.URL, err)
	}
	return nil
}

// Clone returns a copy that keeps the refire capability.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}

	c := *r
	c.Header = r.Header.Clone()
	c.Body = bytes.Clone(r.Body)
	if r.URL != nil {
		u := *r.URL
		c.URL = &u
	}
	return &c
}
