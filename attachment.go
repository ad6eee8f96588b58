// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/codesaur-php/HTTP-Client/httpclient"
	"github.com/codesaur-php/HTTP-Client/log"
)

// DefaultAttachmentName is used for URL attachments whose path has no usable base name
const DefaultAttachmentName = "attachment"

// AttachmentSource is the source an attachment is taken from. It is implemented by
// FilePath, RemoteURL and RawContent only.
type AttachmentSource interface {
	attachmentSource()
	String() string
}

// FilePath is an attachment read from the local file system. Name overrides the base name
// of Path as attachment file name.
type FilePath struct {
	Path string
	Name string
}

// RemoteURL is an attachment fetched over HTTP when the message is built. Name overrides
// the base name of the URL path as attachment file name.
type RemoteURL struct {
	URL  string
	Name string
}

// RawContent is an attachment given as bytes
type RawContent struct {
	Content []byte
	Name    string
}

func (FilePath) attachmentSource()   {}
func (RemoteURL) attachmentSource()  {}
func (RawContent) attachmentSource() {}

func (f FilePath) String() string   { return "file:" + f.Path }
func (u RemoteURL) String() string  { return "url:" + u.URL }
func (c RawContent) String() string { return fmt.Sprintf("content:%s (%d bytes)", c.Name, len(c.Content)) }

// ResolvedAttachment is the outcome of resolving an AttachmentSource: a file name, a MIME
// type and the payload. It is immutable.
type ResolvedAttachment struct {
	name     string
	mimeType string
	content  []byte
}

// NewResolvedAttachment returns a ResolvedAttachment holding a copy of content
func NewResolvedAttachment(name, mimeType string, content []byte) *ResolvedAttachment {
	return &ResolvedAttachment{name: name, mimeType: mimeType, content: bytes.Clone(content)}
}

// Name returns the file name of the attachment
func (a *ResolvedAttachment) Name() string {
	return a.name
}

// MimeType returns the detected MIME type of the attachment
func (a *ResolvedAttachment) MimeType() string {
	return a.mimeType
}

// Content returns a copy of the payload of the attachment
func (a *ResolvedAttachment) Content() []byte {
	return bytes.Clone(a.content)
}

// Fetcher retrieves the body of a remote URL. ok reports whether the server answered with
// HTTP 200.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (ok bool, body []byte, err error)
}

// Resolver turns AttachmentSources into ResolvedAttachments
type Resolver struct {
	fetcher Fetcher
	limit   int
	logger  log.Logger
}

// ResolverOption returns a function that can be used for grouping Resolver options
type ResolverOption func(*Resolver)

// WithFetcher overrides the HTTP client used for RemoteURL attachments
func WithFetcher(f Fetcher) ResolverOption {
	return func(r *Resolver) {
		if f != nil {
			r.fetcher = f
		}
	}
}

// WithResolveLimit caps the number of attachments resolved at the same time. Zero or a
// negative value means no limit.
func WithResolveLimit(n int) ResolverOption {
	return func(r *Resolver) {
		r.limit = n
	}
}

// WithResolverLogger sets a logger for the Resolver
func WithResolverLogger(l log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver returns a new Resolver. Without WithFetcher, remote attachments are fetched
// with a default httpclient.Client.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(r)
	}
	if r.fetcher == nil {
		r.fetcher = httpclient.New()
	}
	return r
}

// Resolve resolves a single AttachmentSource
func (r *Resolver) Resolve(ctx context.Context, src AttachmentSource) (*ResolvedAttachment, error) {
	var (
		att *ResolvedAttachment
		err error
	)
	switch s := src.(type) {
	case FilePath:
		att, err = r.resolveFile(s)
	case RemoteURL:
		att, err = r.resolveURL(ctx, s)
	case RawContent:
		att, err = r.resolveContent(s)
	default:
		return nil, fmt.Errorf("unsupported attachment source %T", src)
	}
	if err != nil {
		return nil, err
	}
	r.debugf("resolved %s as %q (%s, %d bytes)", src, att.name, att.mimeType, len(att.content))
	return att, nil
}

// ResolveAll resolves all sources concurrently. The returned slice has the order of
// sources, independent of the order in which the single resolutions complete. The first
// failure aborts all outstanding resolutions.
func (r *Resolver) ResolveAll(ctx context.Context, sources []AttachmentSource) ([]*ResolvedAttachment, error) {
	resolved := make([]*ResolvedAttachment, len(sources))
	if len(sources) == 0 {
		return resolved, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		group.SetLimit(r.limit)
	}
	for i, src := range sources {
		i, src := i, src
		group.Go(func() error {
			att, err := r.Resolve(groupCtx, src)
			if err != nil {
				return fmt.Errorf("attachment #%d: %w", i+1, err)
			}
			resolved[i] = att
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *Resolver) resolveFile(s FilePath) (*ResolvedAttachment, error) {
	if err := checkRegularFile(s.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAttachmentNotFound, s.Path, err)
	}
	name := s.Name
	if name == "" {
		name = filepath.Base(s.Path)
	}
	return &ResolvedAttachment{name: name, mimeType: detectMimeType(data, name), content: data}, nil
}

func (r *Resolver) resolveURL(ctx context.Context, s RemoteURL) (*ResolvedAttachment, error) {
	ok, data, err := r.fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAttachmentUnreachable, s.URL, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s: server did not respond with 200 OK", ErrAttachmentUnreachable, s.URL)
	}
	name := s.Name
	if name == "" {
		name = urlBaseName(s.URL)
	}
	return &ResolvedAttachment{name: name, mimeType: detectMimeType(data, ""), content: data}, nil
}

func (r *Resolver) resolveContent(s RawContent) (*ResolvedAttachment, error) {
	if err := checkRawContent(s); err != nil {
		return nil, err
	}
	return NewResolvedAttachment(s.Name, detectMimeType(s.Content, s.Name), s.Content), nil
}

func (r *Resolver) debugf(format string, args ...interface{}) {
	if r.logger == nil {
		return
	}
	r.logger.Debugf(log.Log{Component: log.ComponentResolver, Format: format, Messages: args})
}

// checkRegularFile makes sure p references an existing regular file
func checkRegularFile(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAttachmentNotFound, p)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrAttachmentNotFound, p)
	}
	return nil
}

// checkRawContent makes sure a RawContent carries bytes and a name
func checkRawContent(s RawContent) error {
	if len(s.Content) == 0 || s.Name == "" {
		return fmt.Errorf("%w: content and name are required", ErrEmptyAttachment)
	}
	return nil
}

// detectMimeType sniffs the MIME type of data. If sniffing only yields a generic type, the
// extension of name is consulted.
func detectMimeType(data []byte, name string) string {
	detected := mediaTypeOnly(mimetype.Detect(data).String())
	if detected != TypeAppOctetStream.String() && detected != TypeTextPlain.String() {
		return detected
	}
	if ext := filepath.Ext(name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return mediaTypeOnly(byExt)
		}
	}
	return detected
}

// mediaTypeOnly strips any parameters from a MIME type
func mediaTypeOnly(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(t, ";")
	return strings.TrimSpace(mt)
}

// urlBaseName returns the base name of the URL path or DefaultAttachmentName
func urlBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultAttachmentName
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return DefaultAttachmentName
	}
	return base
}
