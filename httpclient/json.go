// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// ErrDecode is returned when a response body is not a JSON object
var ErrDecode = errors.New("response JSON cannot be decoded")

// StatusError is returned by JSONClient requests that are answered with a non-2xx status
type StatusError struct {
	Method     string
	URI        string
	StatusCode int
}

// Error satisfies the error interface for the StatusError type
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s [%s]: response status %d %s", e.Method, e.URI, e.StatusCode,
		http.StatusText(e.StatusCode))
}

// Code returns the HTTP status code of the response
func (e *StatusError) Code() int {
	return e.StatusCode
}

// JSONClient sends JSON requests and decodes JSON object responses. GET payloads are sent
// as query string, all other methods send the payload as JSON body.
type JSONClient struct {
	c *Client
}

// NewJSON returns a new JSONClient
func NewJSON(opts ...Option) *JSONClient {
	c := New(opts...)
	c.rc.SetJSONMarshaler(json.Marshal).SetJSONUnmarshaler(json.Unmarshal)
	return &JSONClient{c: c}
}

// Get sends a GET request with payload encoded into the query string of uri
func (j *JSONClient) Get(ctx context.Context, uri string, payload map[string]any, headers map[string]string) (map[string]any, error) {
	return j.Request(ctx, http.MethodGet, uri, payload, headers)
}

// Post sends payload as JSON body with POST
func (j *JSONClient) Post(ctx context.Context, uri string, payload map[string]any, headers map[string]string) (map[string]any, error) {
	return j.Request(ctx, http.MethodPost, uri, payload, headers)
}

// Put sends payload as JSON body with PUT
func (j *JSONClient) Put(ctx context.Context, uri string, payload map[string]any, headers map[string]string) (map[string]any, error) {
	return j.Request(ctx, http.MethodPut, uri, payload, headers)
}

// Delete sends payload as JSON body with DELETE
func (j *JSONClient) Delete(ctx context.Context, uri string, payload map[string]any, headers map[string]string) (map[string]any, error) {
	return j.Request(ctx, http.MethodDelete, uri, payload, headers)
}

// Request sends a JSON request. An empty payload is sent as "{}" for all methods but GET.
// A non-2xx response yields a *StatusError together with the decoded body, which is nil
// when the body is not a JSON object.
func (j *JSONClient) Request(ctx context.Context, method, uri string, payload map[string]any, headers map[string]string) (map[string]any, error) {
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	var body interface{}
	if strings.EqualFold(method, http.MethodGet) {
		uri = appendQuery(uri, payload)
	} else {
		if payload == nil {
			payload = map[string]any{}
		}
		body = payload
	}

	method = strings.ToUpper(method)
	resp, err := j.c.do(ctx, method, uri, body, h)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err = json.Unmarshal(resp.Body, &out); err != nil {
		out = nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Method: method, URI: uri, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil, fmt.Errorf("%w: [%s] %d byte response", ErrDecode, uri, len(resp.Body))
	}
	return out, nil
}

// ErrorResponse renders err in the shape {"error": {"code": ..., "message": ...}} for
// callers that forward failures as JSON
func ErrorResponse(err error) map[string]any {
	if err == nil {
		return nil
	}
	code := 0
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code = coder.Code()
	}
	return map[string]any{"error": map[string]any{"code": code, "message": err.Error()}}
}

// appendQuery adds payload as query string to uri, using "&" if uri already has a query
func appendQuery(uri string, payload map[string]any) string {
	if len(payload) == 0 {
		return uri
	}
	values := url.Values{}
	for k, val := range payload {
		switch v := val.(type) {
		case []any:
			for _, e := range v {
				values.Add(k+"[]", fmt.Sprint(e))
			}
		case []string:
			for _, e := range v {
				values.Add(k+"[]", e)
			}
		case bool:
			if v {
				values.Add(k, "1")
			} else {
				values.Add(k, "0")
			}
		case nil:
		default:
			values.Add(k, fmt.Sprint(v))
		}
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + values.Encode()
}
