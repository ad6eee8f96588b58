// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package httpclient provides the HTTP transport used to fetch remote attachments and a
// small JSON client on top of it. Both are built on go-resty.
package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/codesaur-php/HTTP-Client/log"
)

const (
	// DefaultTimeout is the default timeout of a single request
	DefaultTimeout = time.Second * 30

	// DefaultUserAgent is sent with every request unless WithUserAgent is used
	DefaultUserAgent = "codesaur HTTP Client"
)

// ErrRequest is returned when a request could not be sent or no response was received
var ErrRequest = errors.New("HTTP request failed")

// Response is the outcome of a request that reached the server, regardless of its status
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends HTTP requests. It is safe for concurrent use.
type Client struct {
	insecure  bool
	logger    log.Logger
	rc        *resty.Client
	timeout   time.Duration
	transport http.RoundTripper
	userAgent string
}

// Option returns a function that can be used for grouping Client options
type Option func(*Client)

// WithTimeout overrides DefaultTimeout
func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		if t > 0 {
			c.timeout = t
		}
	}
}

// WithInsecureSkipVerify disables the verification of server certificates. Only meant
// for development setups with self-signed certificates.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithUserAgent overrides DefaultUserAgent
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a logger for the Client
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTransport overrides the http.RoundTripper of the Client
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// New returns a new Client
func New(opts ...Option) *Client {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(c)
	}

	c.rc = resty.New().
		SetTimeout(c.timeout).
		SetHeader("User-Agent", c.userAgent).
		SetLogger(restyLogger{l: c.logger})
	if c.transport != nil {
		c.rc.SetTransport(c.transport)
	}
	if c.insecure {
		c.rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) // #nosec G402
	}
	return c
}

// Request sends a request with an optional raw body and extra headers. A response with any
// status code is returned as Response; only transport failures yield an error.
func (c *Client) Request(ctx context.Context, method, uri string, body []byte, headers map[string]string) (*Response, error) {
	var b interface{}
	if len(body) > 0 {
		b = body
	}
	return c.do(ctx, method, uri, b, headers)
}

// Fetch retrieves url with GET. ok reports whether the server answered with 200 OK.
func (c *Client) Fetch(ctx context.Context, url string) (bool, []byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return false, nil, err
	}
	return resp.StatusCode == http.StatusOK, resp.Body, nil
}

func (c *Client) do(ctx context.Context, method, uri string, body interface{}, headers map[string]string) (*Response, error) {
	req := c.rc.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, uri, err)
	}
	c.debugf("%s %s: %s (%d bytes)", method, uri, resp.Status(), len(resp.Body()))
	return &Response{StatusCode: resp.StatusCode(), Header: resp.Header(), Body: resp.Body()}, nil
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(log.Log{Component: log.ComponentHTTP, Format: format, Messages: args})
	}
}

// restyLogger hands the messages of resty to a log.Logger. Without a logger they are dropped.
type restyLogger struct {
	l log.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	if r.l != nil {
		r.l.Errorf(log.Log{Component: log.ComponentHTTP, Format: format, Messages: v})
	}
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	if r.l != nil {
		r.l.Warnf(log.Log{Component: log.ComponentHTTP, Format: format, Messages: v})
	}
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	if r.l != nil {
		r.l.Debugf(log.Log{Component: log.ComponentHTTP, Format: format, Messages: v})
	}
}
