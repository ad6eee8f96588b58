// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAuthData(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
	}{
		{"AuthData with username and password", "username", "password"},
		{"AuthData with username and empty password", "username", ""},
		{"AuthData with empty username and set password", "", "password"},
		{"AuthData with empty data", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthData(tt.user, tt.pass)
			if !auth.Auth {
				t.Fatal("expected auth to be true")
			}
			if auth.Username != tt.user {
				t.Fatalf("expected username to be %s, got %s", tt.user, auth.Username)
			}
			if auth.Password != tt.pass {
				t.Fatalf("expected password to be %s, got %s", tt.pass, auth.Password)
			}
		})
	}
}

func TestQuickSend(t *testing.T) {
	subject := "This-is-a-test-subject"
	body := "This is a test body\r\nWith multiple lines\r\n\r\nBest,\r\n  The go-mail team"
	rcpts := []string{TestRcptValid}
	t.Run("QuickSend with authentication", func(t *testing.T) {
		props := &serverProps{FeatureSet: []string{"AUTH PLAIN", "8BITMIME", "DSN", "SMTPUTF8"}}
		port := startSMTPServer(t, props)
		addr := fmt.Sprintf("%s:%d", TestServerAddr, port)

		doc, err := QuickSend(context.Background(), addr, NewAuthData("username", "password"), TestSenderValid,
			rcpts, subject, body)
		if err != nil {
			t.Fatalf("failed to send email: %s", err)
		}
		if doc.ContentType != TypeTextPlain {
			t.Errorf("expected content type %s, got: %s", TypeTextPlain, doc.ContentType)
		}

		echo := props.Echo()
		creds := base64.StdEncoding.EncodeToString([]byte("\x00username\x00password"))
		expects := []string{
			"AUTH PLAIN " + creds,
			"MAIL FROM:<valid-from@domain.tld> BODY=8BITMIME SMTPUTF8",
			"RCPT TO:<valid-to@domain.tld>",
			"Subject: " + subject,
			"From: valid-from@domain.tld",
			"To: valid-to@domain.tld",
			"Content-Type: text/plain; charset=utf-8",
			"This is a test body",
			"With multiple lines",
			"Best,",
			"  The go-mail team",
		}
		for _, expect := range expects {
			if !hasLine(echo, expect) {
				t.Errorf("expected line %q in server echo, got:\n%s", expect, echo)
			}
		}
	})
	t.Run("QuickSend with multiple recipients", func(t *testing.T) {
		props := &serverProps{FeatureSet: []string{"8BITMIME"}}
		port := startSMTPServer(t, props)
		addr := fmt.Sprintf("%s:%d", TestServerAddr, port)
		multiRcpts := []string{"a@domain.tld", "b@domain.tld", "c@domain.tld"}

		if _, err := QuickSend(context.Background(), addr, nil, TestSenderValid, multiRcpts, subject,
			body); err != nil {
			t.Fatalf("failed to send email: %s", err)
		}
		echo := props.Echo()
		for _, rcpt := range multiRcpts {
			if !hasLine(echo, "RCPT TO:<"+rcpt+">") {
				t.Errorf("expected RCPT TO for %s, got:\n%s", rcpt, echo)
			}
		}
		if strings.Contains(echo, "AUTH") {
			t.Errorf("no SMTP AUTH expected without AuthData")
		}
	})
	t.Run("QuickSend uses the strongest authentication method", func(t *testing.T) {
		props := &serverProps{FeatureSet: []string{"AUTH PLAIN LOGIN", "8BITMIME"}}
		port := startSMTPServer(t, props)
		addr := fmt.Sprintf("%s:%d", TestServerAddr, port)

		if _, err := QuickSend(context.Background(), addr, NewAuthData("username", "password"), TestSenderValid,
			rcpts, subject, body); err != nil {
			t.Fatalf("failed to send email: %s", err)
		}
		if !hasLine(props.Echo(), "AUTH LOGIN") {
			t.Errorf("expected AUTH LOGIN, got:\n%s", props.Echo())
		}
	})
	t.Run("QuickSend fails during delivery", func(t *testing.T) {
		props := &serverProps{FeatureSet: []string{"8BITMIME"}, FailOnMailFrom: true}
		port := startSMTPServer(t, props)
		addr := fmt.Sprintf("%s:%d", TestServerAddr, port)

		_, err := QuickSend(context.Background(), addr, nil, TestSenderValid, rcpts, subject, body)
		if err == nil {
			t.Fatal("expected QuickSend to fail during delivery")
		}
		var se *SendError
		if !errors.As(err, &se) || se.Reason != ErrSMTPMailFrom {
			t.Errorf("expected SendError with reason %s, got: %s", ErrSMTPMailFrom, err)
		}
	})
	t.Run("QuickSend fails on server address without port", func(t *testing.T) {
		_, err := QuickSend(context.Background(), TestServerAddr, nil, TestSenderValid, rcpts, subject, body)
		if err == nil {
			t.Fatal("expected QuickSend to fail with invalid server address")
		}
		expect := "failed to split host and port from address: address 127.0.0.1: missing port in address"
		if !strings.Contains(err.Error(), expect) {
			t.Errorf("expected error to contain %s, got %s", expect, err)
		}
	})
	t.Run("QuickSend fails on server address with invalid port", func(t *testing.T) {
		_, err := QuickSend(context.Background(), TestServerAddr+":invalid", nil, TestSenderValid, rcpts,
			subject, body)
		if err == nil {
			t.Fatal("expected QuickSend to fail with invalid server port")
		}
		expect := `failed to convert port to int: strconv.Atoi: parsing "invalid": invalid syntax`
		if !strings.Contains(err.Error(), expect) {
			t.Errorf("expected error to contain %s, got %s", expect, err)
		}
	})
	t.Run("QuickSend fails with invalid from address", func(t *testing.T) {
		_, err := QuickSend(context.Background(), TestServerAddr+":587", nil, "invalid-fromdomain.tld", rcpts,
			subject, body)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got: %s", err)
		}
	})
	t.Run("QuickSend fails with invalid to address", func(t *testing.T) {
		_, err := QuickSend(context.Background(), TestServerAddr+":587", nil, TestSenderValid,
			[]string{"invalid-todomain.tld"}, subject, body)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got: %s", err)
		}
	})
	t.Run("QuickSend fails without subject", func(t *testing.T) {
		_, err := QuickSend(context.Background(), TestServerAddr+":587", nil, TestSenderValid, rcpts, "", body)
		if !errors.Is(err, ErrNoSubject) {
			t.Errorf("expected ErrNoSubject, got: %s", err)
		}
	})
}
