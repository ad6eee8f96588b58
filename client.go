// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"github.com/codesaur-php/HTTP-Client/log"
)

// Defaults
const (
	// DefaultPort is the default connection port to the SMTP server
	DefaultPort = 25

	// DefaultPortSSL is the default connection port for SSL/TLS to the SMTP server
	DefaultPortSSL = 465

	// DefaultPortTLS is the default connection port for STARTTLS to the SMTP server
	DefaultPortTLS = 587

	// DefaultTimeout is the default connection timeout
	DefaultTimeout = time.Second * 15

	// DefaultTLSPolicy is the default STARTTLS policy
	DefaultTLSPolicy = TLSMandatory

	// DefaultTLSMinVersion is the minimum TLS version required for the connection
	DefaultTLSMinVersion = tls.VersionTLS12
)

// DialContextFunc is a type to define custom DialContext function.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client is a Sender that delivers Documents to a SMTP server. Every Send opens its own
// session: dial, EHLO, STARTTLS according to the TLSPolicy, AUTH, MAIL FROM, RCPT TO for
// all recipients, DATA and QUIT. The Bcc header is never transmitted.
type Client struct {
	// authType is the SMTP AUTH mechanism, empty for none
	authType SMTPAuthType

	// auth is a custom smtp.Auth that takes precedence over authType
	auth smtp.Auth

	// dialContextFunc is used to connect to the server
	dialContextFunc DialContextFunc

	// fallbackPort is tried if the connection on port fails
	fallbackPort int

	// helo is the name sent with EHLO/HELO
	helo string

	// host is the hostname of the SMTP server
	host string

	logger log.Logger
	pass   string
	port   int

	// ssl makes the Client connect with implicit TLS
	ssl bool

	timeout   time.Duration
	tlsPolicy TLSPolicy
	tlsConfig *tls.Config
	user      string
}

// Option returns a function that can be used for grouping Client options
type Option func(*Client) error

var (
	// ErrInvalidPort should be used if a port is specified that is not valid
	ErrInvalidPort = errors.New("invalid port number")

	// ErrInvalidTimeout should be used if a timeout is set that is zero or negative
	ErrInvalidTimeout = errors.New("timeout cannot be zero or negative")

	// ErrInvalidHELO should be used if an empty HELO sting is provided
	ErrInvalidHELO = errors.New("invalid HELO/EHLO value - must not be empty")

	// ErrInvalidTLSConfig should be used if an empty tls.Config is provided
	ErrInvalidTLSConfig = errors.New("invalid TLS config")

	// ErrNoHostname should be used if a Client has no hostname set
	ErrNoHostname = errors.New("hostname for client cannot be empty")

	// ErrNoSTARTTLS is returned when TLSMandatory is set but the server does not offer
	// STARTTLS
	ErrNoSTARTTLS = errors.New("target host does not support STARTTLS")
)

// NewClient returns a new SMTP Client for the server at host
func NewClient(host string, opts ...Option) (*Client, error) {
	c := &Client{
		host:      host,
		port:      DefaultPort,
		timeout:   DefaultTimeout,
		tlsConfig: &tls.Config{ServerName: host, MinVersion: DefaultTLSMinVersion},
		tlsPolicy: DefaultTLSPolicy,
	}

	hn, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to read local hostname: %w", err)
	}
	c.helo = hn

	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if c.host == "" {
		return nil, ErrNoHostname
	}
	return c, nil
}

// WithPort overrides the default connection port
func WithPort(p int) Option {
	return func(c *Client) error {
		if p < 1 || p > 65535 {
			return ErrInvalidPort
		}
		c.port = p
		return nil
	}
}

// WithTimeout overrides the default connection timeout
func WithTimeout(t time.Duration) Option {
	return func(c *Client) error {
		if t <= 0 {
			return ErrInvalidTimeout
		}
		c.timeout = t
		return nil
	}
}

// WithSSL tells the Client to connect with implicit TLS on DefaultPortSSL
func WithSSL() Option {
	return func(c *Client) error {
		c.ssl = true
		c.port = DefaultPortSSL
		return nil
	}
}

// WithSSLPort tells the Client to use implicit TLS. With fallback set, a failed connection
// on DefaultPortSSL is retried without SSL on DefaultPortTLS.
func WithSSLPort(fallback bool) Option {
	return func(c *Client) error {
		c.ssl = true
		c.port = DefaultPortSSL
		if fallback {
			c.fallbackPort = DefaultPortTLS
		}
		return nil
	}
}

// WithLogger sets a logger for the Client
func WithLogger(l log.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithHELO overrides the name sent with EHLO/HELO, which defaults to the local hostname
func WithHELO(h string) Option {
	return func(c *Client) error {
		if h == "" {
			return ErrInvalidHELO
		}
		c.helo = h
		return nil
	}
}

// WithTLSPolicy overrides the STARTTLS policy
func WithTLSPolicy(p TLSPolicy) Option {
	return func(c *Client) error {
		c.tlsPolicy = p
		return nil
	}
}

// WithTLSPortPolicy sets the STARTTLS policy and picks the matching port: DefaultPortTLS for
// TLSMandatory and TLSOpportunistic, DefaultPort for NoTLS. TLSOpportunistic additionally
// falls back to DefaultPort.
func WithTLSPortPolicy(p TLSPolicy) Option {
	return func(c *Client) error {
		c.tlsPolicy = p
		c.port = DefaultPortTLS
		switch p {
		case TLSOpportunistic:
			c.fallbackPort = DefaultPort
		case NoTLS:
			c.port = DefaultPort
		}
		return nil
	}
}

// WithTLSConfig overrides the tls.Config used for SSL and STARTTLS
func WithTLSConfig(co *tls.Config) Option {
	return func(c *Client) error {
		if co == nil {
			return ErrInvalidTLSConfig
		}
		c.tlsConfig = co
		return nil
	}
}

// WithSMTPAuth sets the SMTP AUTH mechanism
func WithSMTPAuth(t SMTPAuthType) Option {
	return func(c *Client) error {
		c.authType = t
		return nil
	}
}

// WithSMTPAuthCustom sets a custom smtp.Auth
func WithSMTPAuthCustom(a smtp.Auth) Option {
	return func(c *Client) error {
		c.auth = a
		return nil
	}
}

// WithUsername sets the SMTP AUTH username
func WithUsername(u string) Option {
	return func(c *Client) error {
		c.user = u
		return nil
	}
}

// WithPassword sets the SMTP AUTH password (or the OAuth2 token for XOAUTH2)
func WithPassword(p string) Option {
	return func(c *Client) error {
		c.pass = p
		return nil
	}
}

// WithDialContextFunc overrides the function used to connect to the server
func WithDialContextFunc(f DialContextFunc) Option {
	return func(c *Client) error {
		c.dialContextFunc = f
		return nil
	}
}

// TLSPolicy returns the currently set TLSPolicy as string
func (c *Client) TLSPolicy() string {
	return c.tlsPolicy.String()
}

// ServerAddr returns the currently set combination of hostname and port
func (c *Client) ServerAddr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Send delivers doc in a new SMTP session. Errors are returned as *SendError with the reason
// set to the SMTP stage that failed.
func (c *Client) Send(ctx context.Context, doc *Document) error {
	rcpts := doc.Recipients()
	sc, stop, err := c.dial(ctx)
	if err != nil {
		return NewSendError(ErrConnect, isTempError(err), rcpts, err)
	}
	defer func() {
		stop()
		_ = sc.Close()
	}()

	if err = sc.Mail(doc.EnvelopeFrom()); err != nil {
		c.reset(sc)
		return NewSendError(ErrSMTPMailFrom, isTempError(err), rcpts, err)
	}

	var (
		failed   []string
		rcptErrs []error
		temp     = true
	)
	for _, rcpt := range rcpts {
		if err = sc.Rcpt(rcpt); err != nil {
			failed = append(failed, rcpt)
			rcptErrs = append(rcptErrs, err)
			temp = temp && isTempError(err)
		}
	}
	if len(failed) > 0 {
		c.reset(sc)
		return NewSendError(ErrSMTPRcptTo, temp, failed, rcptErrs...)
	}

	w, err := sc.Data()
	if err != nil {
		c.reset(sc)
		return NewSendError(ErrSMTPData, isTempError(err), rcpts, err)
	}
	if _, err = doc.WriteToSkipBcc(w); err != nil {
		_ = w.Close()
		return NewSendError(ErrWriteContent, false, rcpts, err)
	}
	if err = w.Close(); err != nil {
		return NewSendError(ErrSMTPDataClose, isTempError(err), rcpts, err)
	}
	c.infof("message delivered to %d recipient(s) via %s", len(rcpts), c.ServerAddr())

	if err = sc.Quit(); err != nil {
		c.debugf("failed to close SMTP session: %s", err)
	}
	return nil
}

// dial connects to the server and performs EHLO, STARTTLS and AUTH. The session is bound to
// ctx: a cancelled context closes the connection.
func (c *Client) dial(ctx context.Context) (*smtp.Client, func() bool, error) {
	if c.host == "" {
		return nil, nil, ErrNoHostname
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dialFunc := c.dialContextFunc
	if dialFunc == nil {
		nd := &net.Dialer{}
		dialFunc = nd.DialContext
		if c.ssl {
			td := tls.Dialer{NetDialer: nd, Config: c.tlsConfig}
			dialFunc = td.DialContext
		}
	}
	implicitTLS := c.ssl
	conn, err := dialFunc(dialCtx, "tcp", c.ServerAddr())
	if err != nil && c.fallbackPort != 0 {
		c.debugf("connection to %s failed, trying fallback port %d: %s", c.ServerAddr(), c.fallbackPort, err)
		nd := &net.Dialer{}
		conn, err = nd.DialContext(dialCtx, "tcp", net.JoinHostPort(c.host, strconv.Itoa(c.fallbackPort)))
		implicitTLS = false
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", c.ServerAddr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	sc, err := smtp.NewClient(conn, c.host)
	if err != nil {
		stop()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}
	if err = c.handshake(sc, implicitTLS); err != nil {
		stop()
		_ = sc.Close()
		return nil, nil, err
	}
	c.debugf("SMTP session established with %s", c.ServerAddr())
	return sc, stop, nil
}

// handshake performs EHLO, STARTTLS according to the TLSPolicy and SMTP AUTH. The
// TLSPolicy applies to every connection that is not already wrapped in implicit TLS.
func (c *Client) handshake(sc *smtp.Client, implicitTLS bool) error {
	if err := sc.Hello(c.helo); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if !implicitTLS && c.tlsPolicy != NoTLS {
		hasTLS, _ := sc.Extension("STARTTLS")
		switch {
		case hasTLS:
			if err := sc.StartTLS(c.tlsConfig); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		case c.tlsPolicy == TLSMandatory:
			return fmt.Errorf("%w: STARTTLS mode set to %q", ErrNoSTARTTLS, c.tlsPolicy)
		default:
			c.warnf("server %s does not offer STARTTLS, continuing unencrypted", c.host)
		}
	}

	a := c.auth
	if a == nil && c.authType != SMTPAuthNoAuth {
		var err error
		if a, err = c.newSMTPAuth(sc); err != nil {
			return err
		}
	}
	if a != nil {
		if err := sc.Auth(a); err != nil {
			return fmt.Errorf("SMTP AUTH failed: %w", err)
		}
	}
	return nil
}

func (c *Client) reset(sc *smtp.Client) {
	if err := sc.Reset(); err != nil {
		c.debugf("failed to send RSET: %s", err)
	}
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(log.Log{Component: log.ComponentSMTP, Format: format, Messages: args})
	}
}

func (c *Client) infof(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Infof(log.Log{Component: log.ComponentSMTP, Format: format, Messages: args})
	}
}

func (c *Client) warnf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warnf(log.Log{Component: log.ComponentSMTP, Format: format, Messages: args})
	}
}
