// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"net/smtp"
	"testing"
)

func TestParseSMTPAuthType(t *testing.T) {
	tests := []struct {
		name       string
		authString string
		expected   SMTPAuthType
	}{
		{"NONE: empty", "", SMTPAuthNoAuth},
		{"AUTODISCOVER", "autodiscover", SMTPAuthAutoDiscover},
		{"CRAM-MD5", "cram-md5", SMTPAuthCramMD5},
		{"LOGIN", "login", SMTPAuthLogin},
		{"LOGIN with spaces", "  LOGIN ", SMTPAuthLogin},
		{"NTLM", "ntlm", SMTPAuthNTLM},
		{"PLAIN", "Plain", SMTPAuthPlain},
		{"SCRAM-SHA-1", "scram-sha-1", SMTPAuthSCRAMSHA1},
		{"SCRAM-SHA-1-PLUS", "scram-sha-1-plus", SMTPAuthSCRAMSHA1PLUS},
		{"SCRAM-SHA-256", "scram-sha-256", SMTPAuthSCRAMSHA256},
		{"SCRAM-SHA-256-PLUS", "SCRAM-SHA-256-PLUS", SMTPAuthSCRAMSHA256PLUS},
		{"XOAUTH2", "xoauth2", SMTPAuthXOAUTH2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authType, err := ParseSMTPAuthType(tt.authString)
			if err != nil {
				t.Fatalf("ParseSMTPAuthType() for type %q failed: %s", tt.authString, err)
			}
			if authType != tt.expected {
				t.Errorf("ParseSMTPAuthType() for type %q failed: expected %s, got %s",
					tt.authString, tt.expected, authType)
			}
		})
	}
	t.Run("should fail", func(t *testing.T) {
		if _, err := ParseSMTPAuthType("invalid"); !errors.Is(err, ErrUnsupportedAuthType) {
			t.Errorf("ParseSMTPAuthType() should have failed with ErrUnsupportedAuthType, got: %s", err)
		}
	})
}

func TestSelectAuth(t *testing.T) {
	conn := fakeAuthConn{"AUTH": "PLAIN LOGIN CRAM-MD5 XOAUTH2 NTLM SCRAM-SHA-1 SCRAM-SHA-256 SCRAM-SHA-256-PLUS"}
	t.Run("offered mechanisms", func(t *testing.T) {
		tests := []struct {
			authType SMTPAuthType
			mech     string
		}{
			{SMTPAuthPlain, "PLAIN"},
			{SMTPAuthLogin, "LOGIN"},
			{SMTPAuthCramMD5, "CRAM-MD5"},
			{SMTPAuthXOAUTH2, "XOAUTH2"},
			{SMTPAuthNTLM, "NTLM"},
			{SMTPAuthSCRAMSHA1, "SCRAM-SHA-1"},
			{SMTPAuthSCRAMSHA256, "SCRAM-SHA-256"},
		}
		for _, tt := range tests {
			t.Run(string(tt.authType), func(t *testing.T) {
				a, err := selectAuth(conn, tt.authType, "toni", "secret", "localhost", "workstation", nil)
				if err != nil {
					t.Fatalf("selectAuth() failed: %s", err)
				}
				mech, _, err := a.Start(&smtp.ServerInfo{Name: "localhost", TLS: true, Auth: []string{tt.mech}})
				if err != nil {
					t.Fatalf("failed to start SMTP auth: %s", err)
				}
				if mech != tt.mech {
					t.Errorf("unexpected mechanism. Expected: %s, got: %s", tt.mech, mech)
				}
			})
		}
	})
	t.Run("server without AUTH extension", func(t *testing.T) {
		_, err := selectAuth(fakeAuthConn{}, SMTPAuthPlain, "toni", "secret", "localhost", "", nil)
		if !errors.Is(err, ErrSMTPAuthNotSupported) {
			t.Errorf("expected ErrSMTPAuthNotSupported, got: %s", err)
		}
	})
	t.Run("mechanism not offered", func(t *testing.T) {
		_, err := selectAuth(fakeAuthConn{"AUTH": "PLAIN"}, SMTPAuthLogin, "toni", "secret", "localhost", "", nil)
		if !errors.Is(err, ErrAuthTypeNotSupported) {
			t.Errorf("expected ErrAuthTypeNotSupported, got: %s", err)
		}
	})
	t.Run("channel binding without TLS session", func(t *testing.T) {
		_, err := selectAuth(conn, SMTPAuthSCRAMSHA256PLUS, "toni", "secret", "localhost", "", nil)
		if !errors.Is(err, ErrAuthTypeNotSupported) {
			t.Errorf("expected ErrAuthTypeNotSupported, got: %s", err)
		}
	})
	t.Run("unknown mechanism", func(t *testing.T) {
		_, err := selectAuth(fakeAuthConn{"AUTH": "GSSAPI"}, SMTPAuthType("GSSAPI"), "toni", "secret",
			"localhost", "", nil)
		if !errors.Is(err, ErrUnsupportedAuthType) {
			t.Errorf("expected ErrUnsupportedAuthType, got: %s", err)
		}
	})
	t.Run("autodiscover picks the strongest mechanism", func(t *testing.T) {
		a, err := selectAuth(conn, SMTPAuthAutoDiscover, "toni", "secret", "localhost", "", nil)
		if err != nil {
			t.Fatalf("selectAuth() failed: %s", err)
		}
		mech, _, err := a.Start(&smtp.ServerInfo{Name: "localhost", TLS: true})
		if err != nil {
			t.Fatalf("failed to start SMTP auth: %s", err)
		}
		if mech != "SCRAM-SHA-256" {
			t.Errorf("unexpected mechanism. Expected: %s, got: %s", "SCRAM-SHA-256", mech)
		}
	})
}

func TestDiscoverAuthType(t *testing.T) {
	tests := []struct {
		name    string
		offered []string
		isTLS   bool
		want    SMTPAuthType
	}{
		{"channel binding on TLS", []string{"PLAIN", "SCRAM-SHA-256-PLUS", "SCRAM-SHA-256"}, true, SMTPAuthSCRAMSHA256PLUS},
		{"no channel binding without TLS", []string{"PLAIN", "SCRAM-SHA-256-PLUS", "SCRAM-SHA-256"}, false, SMTPAuthSCRAMSHA256},
		{"SCRAM-SHA-1 over CRAM-MD5", []string{"CRAM-MD5", "SCRAM-SHA-1"}, false, SMTPAuthSCRAMSHA1},
		{"CRAM-MD5 over LOGIN", []string{"LOGIN", "CRAM-MD5"}, false, SMTPAuthCramMD5},
		{"LOGIN over PLAIN", []string{"PLAIN", "LOGIN"}, false, SMTPAuthLogin},
		{"PLAIN only", []string{"PLAIN"}, false, SMTPAuthPlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := discoverAuthType(tt.offered, tt.isTLS)
			if err != nil {
				t.Fatalf("discoverAuthType() failed: %s", err)
			}
			if got != tt.want {
				t.Errorf("discoverAuthType() = %s, want %s", got, tt.want)
			}
		})
	}
	t.Run("no suitable mechanism", func(t *testing.T) {
		if _, err := discoverAuthType([]string{"XOAUTH2", "GSSAPI"}, true); !errors.Is(err, ErrAuthTypeNotSupported) {
			t.Errorf("expected ErrAuthTypeNotSupported, got: %s", err)
		}
	})
}

// fakeAuthConn serves EHLO extensions from a map
type fakeAuthConn map[string]string

func (f fakeAuthConn) Extension(ext string) (bool, string) {
	v, ok := f[ext]
	return ok, v
}
