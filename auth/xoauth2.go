// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package auth

import "net/smtp"

type xoauth2Auth struct {
	username, token string
}

// XOAuth2Auth returns a smtp.Auth for the XOAUTH2 mechanism used by Gmail and Microsoft 365.
// token is the OAuth2 access token.
func XOAuth2Auth(username, token string) smtp.Auth {
	return &xoauth2Auth{username: username, token: token}
}

func (a *xoauth2Auth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "XOAUTH2", []byte("user=" + a.username + "\x01auth=Bearer " + a.token + "\x01\x01"), nil
}

// Next answers an error challenge with an empty response so the server sends its final reply
func (a *xoauth2Auth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return []byte{}, nil
	}
	return nil, nil
}
