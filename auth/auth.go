// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package auth implements SASL mechanisms for SMTP AUTH on top of the net/smtp Auth
// interface: PLAIN, LOGIN, XOAUTH2, SCRAM-SHA-1/-256 (with and without channel binding)
// and NTLMv2.
package auth

import (
	"errors"
	"net"
	"net/smtp"
)

var (
	// ErrUnencrypted is returned when credentials would be sent over a plaintext connection
	ErrUnencrypted = errors.New("unencrypted connection")

	// ErrWrongHostname is returned when the server name differs from the host the Auth was
	// created for
	ErrWrongHostname = errors.New("wrong host name")

	// ErrUnexpectedServerChallenge is returned when the server sends a challenge to a
	// mechanism that does not expect one
	ErrUnexpectedServerChallenge = errors.New("unexpected server challenge")

	// ErrUnexpectedServerResponse is returned for server responses a mechanism cannot process
	ErrUnexpectedServerResponse = errors.New("unexpected server response")
)

// checkServer makes sure credentials are only sent over TLS or to localhost and only to
// the expected host.
func checkServer(server *smtp.ServerInfo, host string, allowUnencrypted bool) error {
	if !allowUnencrypted && !server.TLS && !isLocalhost(server.Name) {
		return ErrUnencrypted
	}
	if server.Name != host {
		return ErrWrongHostname
	}
	return nil
}

func isLocalhost(name string) bool {
	if name == "localhost" {
		return true
	}
	ip := net.ParseIP(name)
	return ip != nil && ip.IsLoopback()
}
