// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"net/smtp"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/secure/precis"
)

// scramNonceLength is the number of random bytes in a client nonce
const scramNonceLength = 24

// ErrSCRAMChannelBinding is returned when a -PLUS mechanism has no TLS connection state to
// bind to
var ErrSCRAMChannelBinding = errors.New("SCRAM-PLUS requires the TLS connection state")

// scramAuth implements the SCRAM mechanisms of RFC 5802 and RFC 7677. The exchange is
// client-first, server-first, client-final, server-final; state is kept between the steps.
type scramAuth struct {
	mechanism          string
	username, password string
	newHash            func() hash.Hash
	connState          *tls.ConnectionState
	nonceFunc          func() (string, error)

	cbind           string
	clientFirstBare string
	nonce           string
	salted          []byte
	authMessage     string
}

// ScramSHA1Auth returns a smtp.Auth for SCRAM-SHA-1
func ScramSHA1Auth(username, password string) smtp.Auth {
	return newScram("SCRAM-SHA-1", username, password, sha1.New, nil)
}

// ScramSHA256Auth returns a smtp.Auth for SCRAM-SHA-256
func ScramSHA256Auth(username, password string) smtp.Auth {
	return newScram("SCRAM-SHA-256", username, password, sha256.New, nil)
}

// ScramSHA1PlusAuth returns a smtp.Auth for SCRAM-SHA-1-PLUS, binding the exchange to the
// given TLS connection.
func ScramSHA1PlusAuth(username, password string, cs *tls.ConnectionState) smtp.Auth {
	return newScram("SCRAM-SHA-1-PLUS", username, password, sha1.New, cs)
}

// ScramSHA256PlusAuth returns a smtp.Auth for SCRAM-SHA-256-PLUS, binding the exchange to
// the given TLS connection.
func ScramSHA256PlusAuth(username, password string, cs *tls.ConnectionState) smtp.Auth {
	return newScram("SCRAM-SHA-256-PLUS", username, password, sha256.New, cs)
}

func newScram(mech, username, password string, h func() hash.Hash, cs *tls.ConnectionState) *scramAuth {
	return &scramAuth{
		mechanism: mech,
		username:  username,
		password:  password,
		newHash:   h,
		connState: cs,
		nonceFunc: randomNonce,
	}
}

func (a *scramAuth) isPlus() bool {
	return strings.HasSuffix(a.mechanism, "-PLUS")
}

func (a *scramAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return a.mechanism, nil, nil
}

func (a *scramAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	var (
		resp []byte
		err  error
	)
	switch {
	case len(fromServer) == 0:
		resp, err = a.clientFirst()
	case bytes.HasPrefix(fromServer, []byte("r=")):
		resp, err = a.clientFinal(string(fromServer))
	case bytes.HasPrefix(fromServer, []byte("v=")):
		resp, err = a.verifyServer(string(fromServer))
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedServerResponse, fromServer)
	}
	if err != nil {
		a.reset()
		return nil, err
	}
	return resp, nil
}

func (a *scramAuth) reset() {
	a.cbind, a.clientFirstBare, a.nonce, a.authMessage = "", "", "", ""
	a.salted = nil
}

// clientFirst returns the client-first-message
func (a *scramAuth) clientFirst() ([]byte, error) {
	username, err := precis.OpaqueString.String(a.username)
	if err != nil {
		return nil, fmt.Errorf("unable to normalize username: %w", err)
	}
	username = strings.NewReplacer("=", "=3D", ",", "=2C").Replace(username)

	if a.nonce, err = a.nonceFunc(); err != nil {
		return nil, fmt.Errorf("unable to generate client nonce: %w", err)
	}

	gs2Header := "n,,"
	var bindData []byte
	if a.isPlus() {
		bindType, data, err := channelBinding(a.connState)
		if err != nil {
			return nil, err
		}
		gs2Header = "p=" + bindType + ",,"
		bindData = data
	}
	a.cbind = base64.StdEncoding.EncodeToString(append([]byte(gs2Header), bindData...))
	a.clientFirstBare = "n=" + username + ",r=" + a.nonce
	return []byte(gs2Header + a.clientFirstBare), nil
}

// clientFinal processes the server-first-message and returns the client-final-message
// carrying the proof.
func (a *scramAuth) clientFinal(serverFirst string) ([]byte, error) {
	attrs := strings.Split(serverFirst, ",")
	if len(attrs) < 3 || !strings.HasPrefix(attrs[1], "s=") || !strings.HasPrefix(attrs[2], "i=") {
		return nil, fmt.Errorf("%w: malformed server-first-message", ErrUnexpectedServerResponse)
	}
	combinedNonce := strings.TrimPrefix(attrs[0], "r=")
	if a.nonce == "" || !strings.HasPrefix(combinedNonce, a.nonce) {
		return nil, errors.New("server nonce does not start with the client nonce")
	}
	salt, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(attrs[1], "s="))
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	iterations, err := strconv.Atoi(strings.TrimPrefix(attrs[2], "i="))
	if err != nil || iterations < 1 {
		return nil, fmt.Errorf("invalid iteration count %q", attrs[2])
	}
	password, err := precis.OpaqueString.String(a.password)
	if err != nil {
		return nil, fmt.Errorf("unable to normalize password: %w", err)
	}

	a.nonce = combinedNonce
	a.salted = pbkdf2.Key([]byte(password), salt, iterations, a.newHash().Size(), a.newHash)
	withoutProof := "c=" + a.cbind + ",r=" + a.nonce
	a.authMessage = a.clientFirstBare + "," + serverFirst + "," + withoutProof

	clientKey := a.mac(a.salted, "Client Key")
	h := a.newHash()
	h.Write(clientKey)
	signature := a.mac(h.Sum(nil), a.authMessage)
	proof := make([]byte, len(clientKey))
	for i := range clientKey {
		proof[i] = clientKey[i] ^ signature[i]
	}
	return []byte(withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof)), nil
}

// verifyServer checks the server signature of the server-final-message
func (a *scramAuth) verifyServer(serverFinal string) ([]byte, error) {
	if a.salted == nil {
		return nil, fmt.Errorf("%w: server signature before proof", ErrUnexpectedServerResponse)
	}
	expected := base64.StdEncoding.EncodeToString(a.mac(a.mac(a.salted, "Server Key"), a.authMessage))
	if !hmac.Equal([]byte(strings.TrimPrefix(serverFinal, "v=")), []byte(expected)) {
		return nil, errors.New("invalid server signature")
	}
	return []byte{}, nil
}

func (a *scramAuth) mac(key []byte, msg string) []byte {
	m := hmac.New(a.newHash, key)
	m.Write([]byte(msg))
	return m.Sum(nil)
}

// channelBinding returns the binding type and data for cs. tls-unique is not defined for
// TLS 1.3 and not available on resumed sessions, tls-exporter is used then.
func channelBinding(cs *tls.ConnectionState) (string, []byte, error) {
	if cs == nil {
		return "", nil, ErrSCRAMChannelBinding
	}
	if cs.TLSUnique != nil && cs.Version < tls.VersionTLS13 {
		return "tls-unique", cs.TLSUnique, nil
	}
	data, err := cs.ExportKeyingMaterial("EXPORTER-Channel-Binding", nil, 32)
	if err != nil {
		return "", nil, fmt.Errorf("unable to export keying material: %w", err)
	}
	return "tls-exporter", data, nil
}

func randomNonce() (string, error) {
	buf := make([]byte, scramNonceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
