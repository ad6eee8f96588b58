// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	// TestSenderValid is a valid sender address for testing
	TestSenderValid = "valid-from@domain.tld"
	// TestRcptValid is a valid recipient address for testing
	TestRcptValid = "valid-to@domain.tld"
	// TestServerAddr is the address the test SMTP server listens on
	TestServerAddr = "127.0.0.1"
)

// testDate is the fixed clock used for deterministic documents
var testDate = time.Date(2024, time.March, 14, 15, 9, 26, 0, time.UTC)

// serverProps configures the behaviour of the test SMTP server
type serverProps struct {
	// FeatureSet lists the EHLO extensions, one per line, like "AUTH PLAIN LOGIN"
	FeatureSet []string
	// FailOnMailFrom rejects MAIL FROM with a permanent error
	FailOnMailFrom bool
	// RcptReplies maps recipient addresses to a reply other than "250 OK"
	RcptReplies map[string]string
	// FailOnData rejects the DATA command
	FailOnData bool
	// DataReply overrides the reply after the message data was received
	DataReply string

	mu   sync.Mutex
	echo bytes.Buffer
}

// Echo returns all lines the server received so far
func (p *serverProps) Echo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.echo.String()
}

func (p *serverProps) record(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.echo.WriteString(line)
	p.echo.WriteString("\r\n")
}

// startSMTPServer starts a minimal SMTP server on a random local port and returns its port.
// The server is stopped when the test finishes.
func startSMTPServer(t *testing.T, props *serverProps) int {
	t.Helper()
	listener, err := net.Listen("tcp", TestServerAddr+":0")
	if err != nil {
		t.Fatalf("failed to start test server: %s", err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go handleTestServerConnection(conn, props)
		}
	}()
	return listener.Addr().(*net.TCPAddr).Port
}

func handleTestServerConnection(conn net.Conn, props *serverProps) {
	defer func() {
		_ = conn.Close()
	}()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	reader := bufio.NewReader(conn)
	writeLine := func(line string) bool {
		_, err := conn.Write([]byte(line + "\r\n"))
		return err == nil
	}
	readLine := func() (string, bool) {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", false
		}
		line = strings.TrimRight(line, "\r\n")
		props.record(line)
		return line, true
	}

	if !writeLine("220 localhost ESMTP go-mail test server") {
		return
	}
	for {
		line, ok := readLine()
		if !ok {
			return
		}
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			lines := append([]string{"localhost Hello"}, props.FeatureSet...)
			for i, l := range lines {
				sep := "-"
				if i == len(lines)-1 {
					sep = " "
				}
				if !writeLine("250" + sep + l) {
					return
				}
			}
		case strings.HasPrefix(cmd, "HELO"):
			writeLine("250 localhost Hello")
		case strings.HasPrefix(cmd, "AUTH PLAIN"):
			writeLine("235 2.7.0 Authentication successful")
		case strings.HasPrefix(cmd, "AUTH LOGIN"):
			if !writeLine("334 VXNlcm5hbWU6") {
				return
			}
			if _, ok = readLine(); !ok {
				return
			}
			if !writeLine("334 UGFzc3dvcmQ6") {
				return
			}
			if _, ok = readLine(); !ok {
				return
			}
			writeLine("235 2.7.0 Authentication successful")
		case strings.HasPrefix(cmd, "AUTH"):
			writeLine("504 5.5.4 Unrecognized authentication type")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			if props.FailOnMailFrom {
				writeLine("500 5.5.2 Error: fail on MAIL FROM")
				break
			}
			writeLine("250 2.1.0 Ok")
		case strings.HasPrefix(cmd, "RCPT TO"):
			addr := line[strings.Index(line, "<")+1 : strings.LastIndex(line, ">")]
			if reply, found := props.RcptReplies[addr]; found {
				writeLine(reply)
				break
			}
			writeLine("250 2.1.5 Ok")
		case cmd == "DATA":
			if props.FailOnData {
				writeLine("554 5.5.1 Error: no valid recipients")
				break
			}
			if !writeLine("354 End data with <CR><LF>.<CR><LF>") {
				return
			}
			for {
				dl, ok := readLine()
				if !ok {
					return
				}
				if dl == "." {
					break
				}
			}
			reply := "250 2.0.0 Ok: queued as 1234567890"
			if props.DataReply != "" {
				reply = props.DataReply
			}
			writeLine(reply)
		case cmd == "RSET":
			writeLine("250 2.0.0 Ok")
		case cmd == "NOOP":
			writeLine("250 2.0.0 Ok")
		case cmd == "QUIT":
			writeLine("221 2.0.0 Bye")
			return
		default:
			writeLine("500 5.5.2 Error: bad syntax")
		}
	}
}

// newTestMsg returns a valid Msg with a single To recipient
func newTestMsg(t *testing.T) *Msg {
	t.Helper()
	m := NewMsg()
	if err := m.SetFrom(TestSenderValid, ""); err != nil {
		t.Fatalf("failed to set sender: %s", err)
	}
	if err := m.AddTo(TestRcptValid, ""); err != nil {
		t.Fatalf("failed to add recipient: %s", err)
	}
	m.SetSubject("Testmail")
	m.SetBody("Testmail body")
	return m
}

// newTestBuilder returns a Builder with a fixed clock and X-Mailer
func newTestBuilder(opts ...BuilderOption) *Builder {
	base := []BuilderOption{
		WithClock(func() time.Time { return testDate }),
		WithXMailer("go-mail test"),
	}
	return NewBuilder(append(base, opts...)...)
}

// buildTestDocument builds m with a test Builder and fails the test on error
func buildTestDocument(t *testing.T, m *Msg) *Document {
	t.Helper()
	doc, err := newTestBuilder().Build(context.Background(), m)
	if err != nil {
		t.Fatalf("failed to build document: %s", err)
	}
	return doc
}

// newTestClient returns a Client for the test server on port without STARTTLS
func newTestClient(t *testing.T, port int, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithPort(port), WithTLSPolicy(NoTLS), WithHELO("tester.local"), WithTimeout(5 * time.Second)}
	c, err := NewClient(TestServerAddr, append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to create new client: %s", err)
	}
	return c
}

// hasLine reports whether the line is part of the CRLF separated text
func hasLine(text, line string) bool {
	for _, l := range strings.Split(text, "\r\n") {
		if l == line {
			return true
		}
	}
	return false
}

// freePort returns a local port nothing listens on
func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", TestServerAddr+":0")
	if err != nil {
		t.Fatalf("failed to find free port: %s", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	if err = listener.Close(); err != nil {
		t.Fatalf("failed to close listener: %s", err)
	}
	return port
}

// delayedFetcher answers every URL with its body after the configured delay
type delayedFetcher struct {
	bodies map[string][]byte
	delays map[string]time.Duration
	status map[string]bool
}

func (f *delayedFetcher) Fetch(ctx context.Context, url string) (bool, []byte, error) {
	select {
	case <-time.After(f.delays[url]):
	case <-ctx.Done():
		return false, nil, ctx.Err()
	}
	body, ok := f.bodies[url]
	if !ok {
		return false, nil, fmt.Errorf("no such URL: %s", url)
	}
	if status, found := f.status[url]; found {
		return status, body, nil
	}
	return true, body, nil
}
