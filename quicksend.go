// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// AuthData holds the credentials QuickSend authenticates with
type AuthData struct {
	Auth     bool
	Username string
	Password string
}

// QuickSend builds a simple message and delivers it in one go.
//
// It connects to the server at addr (which must include a port, as in "mail.example.com:587"),
// uses STARTTLS if the server offers it and, if auth is not nil and AuthData.Auth is true,
// authenticates with the strongest mechanism the server supports. The message is sent from
// from to every address in rcpts. The content type of body is detected like for any other
// message built by a Builder.
func QuickSend(ctx context.Context, addr string, auth *AuthData, from string, rcpts []string, subject, body string,
	opts ...Option,
) (*Document, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to split host and port from address: %w", err)
	}
	portnum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("failed to convert port to int: %w", err)
	}

	clientOpts := []Option{WithPort(portnum), WithTLSPolicy(TLSOpportunistic)}
	if auth != nil && auth.Auth {
		clientOpts = append(clientOpts, WithSMTPAuth(SMTPAuthAutoDiscover), WithUsername(auth.Username),
			WithPassword(auth.Password))
	}
	client, err := NewClient(host, append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	message := NewMsg()
	if err = message.SetFrom(from, ""); err != nil {
		return nil, fmt.Errorf("failed to set MAIL FROM address: %w", err)
	}
	for _, rcpt := range rcpts {
		if err = message.AddTo(rcpt, ""); err != nil {
			return nil, fmt.Errorf("failed to set RCPT TO address: %w", err)
		}
	}
	message.SetSubject(subject)
	message.SetBody(body)

	doc, err := BuildAndSend(ctx, NewBuilder(), client, message)
	if err != nil {
		return nil, fmt.Errorf("failed to build and send message: %w", err)
	}
	return doc, nil
}

// NewAuthData returns an AuthData with authentication enabled for user and pass
func NewAuthData(user, pass string) *AuthData {
	return &AuthData{
		Auth:     true,
		Username: user,
		Password: pass,
	}
}
