// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"slices"
	"strings"

	"github.com/codesaur-php/HTTP-Client/auth"
)

// SMTPAuthType represents a string to any SMTP AUTH type
type SMTPAuthType string

// Supported SMTP AUTH types
const (
	// SMTPAuthCramMD5 is the "CRAM-MD5" SASL authentication mechanism as described in RFC 4954
	SMTPAuthCramMD5 SMTPAuthType = "CRAM-MD5"

	// SMTPAuthLogin is the "LOGIN" SASL authentication mechanism
	SMTPAuthLogin SMTPAuthType = "LOGIN"

	// SMTPAuthNoAuth performs no authentication at all
	SMTPAuthNoAuth SMTPAuthType = ""

	// SMTPAuthNTLM is the NTLMv2 authentication mechanism used by Microsoft Exchange
	SMTPAuthNTLM SMTPAuthType = "NTLM"

	// SMTPAuthPlain is the "PLAIN" authentication mechanism as described in RFC 4616
	SMTPAuthPlain SMTPAuthType = "PLAIN"

	// SMTPAuthXOAUTH2 is the "XOAUTH2" SASL authentication mechanism.
	// https://developers.google.com/gmail/imap/xoauth2-protocol
	SMTPAuthXOAUTH2 SMTPAuthType = "XOAUTH2"

	// SCRAM mechanisms of RFC 5802 and RFC 7677. The -PLUS variants bind the authentication
	// to the TLS connection.
	SMTPAuthSCRAMSHA1       SMTPAuthType = "SCRAM-SHA-1"
	SMTPAuthSCRAMSHA1PLUS   SMTPAuthType = "SCRAM-SHA-1-PLUS"
	SMTPAuthSCRAMSHA256     SMTPAuthType = "SCRAM-SHA-256"
	SMTPAuthSCRAMSHA256PLUS SMTPAuthType = "SCRAM-SHA-256-PLUS"

	// SMTPAuthAutoDiscover picks the strongest password based mechanism offered by the server
	SMTPAuthAutoDiscover SMTPAuthType = "AUTODISCOVER"
)

// autoDiscoverOrder lists the mechanisms SMTPAuthAutoDiscover chooses from, strongest first
var autoDiscoverOrder = []SMTPAuthType{
	SMTPAuthSCRAMSHA256PLUS, SMTPAuthSCRAMSHA1PLUS, SMTPAuthSCRAMSHA256, SMTPAuthSCRAMSHA1,
	SMTPAuthCramMD5, SMTPAuthLogin, SMTPAuthPlain,
}

var (
	// ErrSMTPAuthNotSupported is returned when the server does not offer SMTP AUTH at all
	ErrSMTPAuthNotSupported = errors.New("server does not support SMTP AUTH")

	// ErrAuthTypeNotSupported is returned when the server does not offer the requested
	// SMTP AUTH mechanism
	ErrAuthTypeNotSupported = errors.New("server does not support SMTP AUTH type")

	// ErrUnsupportedAuthType is returned for SMTPAuthType values the Client does not know
	ErrUnsupportedAuthType = errors.New("unsupported SMTP AUTH type")
)

// ParseSMTPAuthType returns the SMTPAuthType for a case-insensitive mechanism name
func ParseSMTPAuthType(s string) (SMTPAuthType, error) {
	t := SMTPAuthType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case SMTPAuthNoAuth, SMTPAuthCramMD5, SMTPAuthLogin, SMTPAuthNTLM, SMTPAuthPlain,
		SMTPAuthXOAUTH2, SMTPAuthSCRAMSHA1, SMTPAuthSCRAMSHA1PLUS, SMTPAuthSCRAMSHA256,
		SMTPAuthSCRAMSHA256PLUS, SMTPAuthAutoDiscover:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAuthType, s)
}

// authConn is the part of a SMTP session needed to pick an authentication mechanism
type authConn interface {
	Extension(ext string) (bool, string)
}

// newSMTPAuth returns the smtp.Auth for t after checking that the server advertises the
// mechanism. sc is the session state, needed by SCRAM-PLUS for channel binding.
func (c *Client) newSMTPAuth(sc *smtp.Client) (smtp.Auth, error) {
	return selectAuth(sc, c.authType, c.user, c.pass, c.host, c.helo, sc)
}

func selectAuth(conn authConn, t SMTPAuthType, user, pass, host, workstation string, sc *smtp.Client) (smtp.Auth, error) {
	ok, mechs := conn.Extension("AUTH")
	if !ok {
		return nil, ErrSMTPAuthNotSupported
	}
	offered := strings.Fields(strings.ToUpper(mechs))
	if t == SMTPAuthAutoDiscover {
		var err error
		if t, err = discoverAuthType(offered, hasTLS(sc)); err != nil {
			return nil, err
		}
	}
	if !slices.Contains(offered, string(t)) {
		return nil, fmt.Errorf("%w: %s", ErrAuthTypeNotSupported, t)
	}

	switch t {
	case SMTPAuthPlain:
		return auth.PlainAuth("", user, pass, host, false), nil
	case SMTPAuthLogin:
		return auth.LoginAuth(user, pass, host), nil
	case SMTPAuthCramMD5:
		return smtp.CRAMMD5Auth(user, pass), nil
	case SMTPAuthXOAUTH2:
		return auth.XOAuth2Auth(user, pass), nil
	case SMTPAuthNTLM:
		return auth.NTLMv2Auth(user, pass, workstation), nil
	case SMTPAuthSCRAMSHA1:
		return auth.ScramSHA1Auth(user, pass), nil
	case SMTPAuthSCRAMSHA256:
		return auth.ScramSHA256Auth(user, pass), nil
	case SMTPAuthSCRAMSHA1PLUS, SMTPAuthSCRAMSHA256PLUS:
		if sc == nil {
			return nil, fmt.Errorf("%w: %s requires a TLS session", ErrAuthTypeNotSupported, t)
		}
		cs, isTLS := sc.TLSConnectionState()
		if !isTLS {
			return nil, fmt.Errorf("%w: %s requires a TLS session", ErrAuthTypeNotSupported, t)
		}
		if t == SMTPAuthSCRAMSHA1PLUS {
			return auth.ScramSHA1PlusAuth(user, pass, &cs), nil
		}
		return auth.ScramSHA256PlusAuth(user, pass, &cs), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAuthType, t)
}

// discoverAuthType returns the first entry of autoDiscoverOrder that the server offers.
// Channel binding mechanisms are only considered on TLS sessions.
func discoverAuthType(offered []string, isTLS bool) (SMTPAuthType, error) {
	for _, t := range autoDiscoverOrder {
		if !isTLS && (t == SMTPAuthSCRAMSHA1PLUS || t == SMTPAuthSCRAMSHA256PLUS) {
			continue
		}
		if slices.Contains(offered, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: no suitable mechanism in %v", ErrAuthTypeNotSupported, offered)
}

func hasTLS(sc *smtp.Client) bool {
	if sc == nil {
		return false
	}
	_, ok := sc.TLSConnectionState()
	return ok
}
