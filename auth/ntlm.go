// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package auth

import (
	"errors"
	"net/smtp"

	"github.com/Azure/go-ntlmssp"
)

// ErrNTLMChallengeEmpty is returned when the server sends an empty NTLM challenge message
var ErrNTLMChallengeEmpty = errors.New("NTLMv2 challenge message is empty")

type ntlmAuth struct {
	domain, password, username, workstation string
	domainNeeded                            bool
}

// NTLMv2Auth returns a smtp.Auth for NTLMv2. username may be given as "DOMAIN\user" or
// "user@domain".
func NTLMv2Auth(username, password, workstation string) smtp.Auth {
	user, domain, domainNeeded := ntlmssp.GetDomain(username)
	return &ntlmAuth{
		domain:       domain,
		password:     password,
		username:     user,
		workstation:  workstation,
		domainNeeded: domainNeeded,
	}
}

func (a *ntlmAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	negotiate, err := ntlmssp.NewNegotiateMessage(a.domain, a.workstation)
	return "NTLM", negotiate, err
}

func (a *ntlmAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	if len(fromServer) == 0 {
		return nil, ErrNTLMChallengeEmpty
	}
	return ntlmssp.ProcessChallenge(fromServer, a.username, a.password, a.domainNeeded)
}
