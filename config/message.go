// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"

	mail "github.com/codesaur-php/HTTP-Client"
)

// AddressConfig is a mail address with an optional display name.
type AddressConfig struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// AttachmentConfig describes one attachment. Exactly one of File, URL and Content is used,
// in that order of precedence.
type AttachmentConfig struct {
	File    string `yaml:"file"`
	URL     string `yaml:"url"`
	Content string `yaml:"content"`
	Name    string `yaml:"name"`
}

// MessageConfig describes the message to send.
type MessageConfig struct {
	From        AddressConfig      `yaml:"from"`
	ReplyTo     *AddressConfig     `yaml:"reply_to"`
	To          []AddressConfig    `yaml:"to"`
	Cc          []AddressConfig    `yaml:"cc"`
	Bcc         []AddressConfig    `yaml:"bcc"`
	Subject     string             `yaml:"subject"`
	Body        string             `yaml:"body"`
	BodyFile    string             `yaml:"body_file"`
	Attachments []AttachmentConfig `yaml:"attachments"`
}

// Msg converts the configuration into a mail.Msg. Invalid addresses and attachments fail
// the conversion.
func (mc MessageConfig) Msg() (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.SetFrom(mc.From.Email, mc.From.Name); err != nil {
		return nil, err
	}
	if mc.ReplyTo != nil {
		if err := m.SetReplyTo(mc.ReplyTo.Email, mc.ReplyTo.Name); err != nil {
			return nil, err
		}
	}
	for _, l := range []struct {
		role  mail.Role
		addrs []AddressConfig
	}{{mail.RoleTo, mc.To}, {mail.RoleCc, mc.Cc}, {mail.RoleBcc, mc.Bcc}} {
		for _, a := range l.addrs {
			if err := m.Recipients.Add(l.role, mail.Address{Email: a.Email, Name: a.Name}); err != nil {
				return nil, fmt.Errorf("%s recipient %q: %w", l.role, a.Email, err)
			}
		}
	}

	m.SetSubject(mc.Subject)
	body := mc.Body
	if mc.BodyFile != "" {
		data, err := os.ReadFile(mc.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}
	m.SetBody(body)

	for i, a := range mc.Attachments {
		var src mail.AttachmentSource
		switch {
		case a.File != "":
			src = mail.FilePath{Path: a.File, Name: a.Name}
		case a.URL != "":
			src = mail.RemoteURL{URL: a.URL, Name: a.Name}
		default:
			src = mail.RawContent{Content: []byte(a.Content), Name: a.Name}
		}
		if err := m.AddAttachment(src); err != nil {
			return nil, fmt.Errorf("attachment #%d: %w", i+1, err)
		}
	}
	return m, nil
}
