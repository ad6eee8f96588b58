// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/codesaur-php/HTTP-Client/log"
)

// DefaultXMailer is the X-Mailer header value used when no other value is configured
var DefaultXMailer = fmt.Sprintf("codesaur-mail v%s // %s", VERSION, runtime.Version())

// Builder turns a Msg into a Document. Its configuration is fixed after NewBuilder and a
// Builder can be shared between goroutines.
type Builder struct {
	logger   log.Logger
	mailer   string
	now      func() time.Time
	resolver *Resolver
}

// BuilderOption returns a function that can be used for grouping Builder options
type BuilderOption func(*Builder)

// WithResolver sets the Resolver used for the attachments of a Msg
func WithResolver(r *Resolver) BuilderOption {
	return func(b *Builder) {
		if r != nil {
			b.resolver = r
		}
	}
}

// WithXMailer overrides the X-Mailer header value
func WithXMailer(m string) BuilderOption {
	return func(b *Builder) {
		b.mailer = m
	}
}

// WithClock sets the function that provides the Date header value
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithBuilderLogger sets a logger for the Builder. Unless WithResolver is used as well, the
// logger is handed to the default Resolver.
func WithBuilderLogger(l log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder returns a new Builder
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		mailer: DefaultXMailer,
		now:    time.Now,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(b)
	}
	if b.resolver == nil {
		b.resolver = NewResolver(WithResolverLogger(b.logger))
	}
	return b
}

// Build validates m, resolves its attachments and renders it into a Document. Validation
// happens before any attachment is read or fetched. On error no Document is returned.
func (b *Builder) Build(ctx context.Context, m *Msg) (*Document, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no message given", ErrValidation)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	from, err := FormatAddress(m.From)
	if err != nil {
		return nil, fmt.Errorf("failed to format FROM address: %w", err)
	}
	replyTo := from
	if m.ReplyTo != nil {
		if replyTo, err = FormatAddress(*m.ReplyTo); err != nil {
			return nil, fmt.Errorf("failed to format Reply-To address: %w", err)
		}
	}
	to, err := formatAddresses(m.Recipients.List(RoleTo))
	if err != nil {
		return nil, err
	}
	cc, err := formatAddresses(m.Recipients.List(RoleCc))
	if err != nil {
		return nil, err
	}
	bcc, err := formatAddresses(m.Recipients.List(RoleBcc))
	if err != nil {
		return nil, err
	}

	ct := bodyContentType(m.Body)
	enc := NoEncoding
	if ct == TypeTextHTML {
		enc = EncodingB64
	}

	attachments, err := b.resolver.ResolveAll(ctx, m.Attachments)
	if err != nil {
		return nil, err
	}
	var boundary string
	if len(attachments) > 0 {
		if boundary, err = newBoundary(); err != nil {
			return nil, fmt.Errorf("failed to generate multipart boundary: %w", err)
		}
	}

	fields := []headerField{
		{name: HeaderMIMEVersion, values: []string{string(Mime10)}},
		{name: HeaderDate, values: []string{b.now().Format(time.RFC1123Z)}},
		{name: Header(HeaderFrom), values: []string{from}},
		{name: Header(HeaderCc), values: cc},
		{name: Header(HeaderBcc), values: bcc},
		{name: Header(HeaderReplyTo), values: []string{replyTo}},
	}
	if b.mailer != "" {
		fields = append(fields, headerField{name: HeaderXMailer, values: []string{b.mailer}})
	}

	body := bytes.Buffer{}
	mw := &msgWriter{w: &body}
	if boundary == "" {
		fields = append(fields, headerField{name: HeaderContentType, values: []string{bodyPartType(ct)}})
		if enc == EncodingB64 || !isASCII(m.Body) {
			fields = append(fields, headerField{name: HeaderContentTransferEnc, values: []string{enc.String()}})
		}
		mw.writeBody([]byte(m.Body), enc)
	} else {
		fields = append(fields, headerField{
			name:   HeaderContentType,
			values: []string{fmt.Sprintf("multipart/%s;\r\n boundary=\"%s\"", MIMEMixed, boundary)},
		})
		mw.startMP(boundary)
		mw.writeBodyPart(m.Body, ct, enc)
		for _, a := range attachments {
			mw.writeAttachment(a)
		}
		mw.stopMP()
	}
	if mw.err != nil {
		return nil, fmt.Errorf("failed to render message body: %w", mw.err)
	}
	header, err := renderFields(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to render message header: %w", err)
	}

	doc := &Document{
		To:          to,
		Subject:     encodeWord(m.Subject),
		Header:      header,
		Body:        body.String(),
		Boundary:    boundary,
		ContentType: ct,
		from:        m.From.Email,
		fields:      fields,
		rcpts:       envelopeRecipients(m),
	}
	if b.logger != nil {
		b.logger.Debugf(log.Log{
			Component: log.ComponentBuilder,
			Format:    "built %s message for %d recipient(s) with %d attachment(s)",
			Messages:  []interface{}{ct, len(doc.rcpts), len(attachments)},
		})
	}
	return doc, nil
}

// bodyContentType returns TypeTextHTML if the body looks like it contains HTML markup, which
// is assumed as soon as a closing tag opener "</" is present.
func bodyContentType(body string) ContentType {
	if strings.Contains(body, "</") {
		return TypeTextHTML
	}
	return TypeTextPlain
}

func formatAddresses(l []Address) ([]string, error) {
	out := make([]string, 0, len(l))
	for _, a := range l {
		f, err := FormatAddress(a)
		if err != nil {
			return nil, fmt.Errorf("failed to format address %q: %w", a.Email, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// envelopeRecipients returns the bare addresses of all roles, each address once
func envelopeRecipients(m *Msg) []string {
	seen := make(map[string]struct{})
	var rcpts []string
	for _, role := range []Role{RoleTo, RoleCc, RoleBcc} {
		for _, a := range m.Recipients.List(role) {
			key := strings.ToLower(a.Email)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			rcpts = append(rcpts, a.Email)
		}
	}
	return rcpts
}
