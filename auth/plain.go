// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package auth

import "net/smtp"

type plainAuth struct {
	identity, username, password string
	host                         string
	allowUnencrypted             bool
}

// PlainAuth returns a smtp.Auth for the PLAIN mechanism of RFC 4616. Unlike smtp.PlainAuth
// it can be told to send the credentials over a plaintext connection.
func PlainAuth(identity, username, password, host string, allowUnencrypted bool) smtp.Auth {
	return &plainAuth{
		identity:         identity,
		username:         username,
		password:         password,
		host:             host,
		allowUnencrypted: allowUnencrypted,
	}
}

func (a *plainAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if err := checkServer(server, a.host, a.allowUnencrypted); err != nil {
		return "", nil, err
	}
	return "PLAIN", []byte(a.identity + "\x00" + a.username + "\x00" + a.password), nil
}

func (a *plainAuth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return nil, ErrUnexpectedServerChallenge
	}
	return nil, nil
}
