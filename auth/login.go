// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package auth

import (
	"fmt"
	"net/smtp"
)

// Challenges of the LOGIN mechanism. Exchange sends the "Username:" form, servers following
// the expired IETF draft send the NUL terminated one.
const (
	LoginUsernameChallenge      = "Username:"
	LoginPasswordChallenge      = "Password:"
	LoginDraftUsernameChallenge = "User Name\x00"
	LoginDraftPasswordChallenge = "Password\x00"
)

type loginAuth struct {
	username, password string
	host               string
}

// LoginAuth returns a smtp.Auth for the LOGIN mechanism. The username and the password are
// sent as answers to two separate server challenges, and only over TLS or to localhost.
func LoginAuth(username, password, host string) smtp.Auth {
	return &loginAuth{username: username, password: password, host: host}
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if err := checkServer(server, a.host, false); err != nil {
		return "", nil, err
	}
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch string(fromServer) {
	case LoginUsernameChallenge, LoginDraftUsernameChallenge:
		return []byte(a.username), nil
	case LoginPasswordChallenge, LoginDraftPasswordChallenge:
		return []byte(a.password), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnexpectedServerResponse, fromServer)
}
