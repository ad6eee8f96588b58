// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"fmt"

	"github.com/codesaur-php/HTTP-Client/log"
)

// RecipientBook holds ordered lists of validated addresses for the To, Cc and Bcc roles.
// The zero value is ready to use.
type RecipientBook struct {
	to  []Address
	cc  []Address
	bcc []Address
}

// AddTo validates and appends an address to the To list
func (b *RecipientBook) AddTo(a Address) error {
	return b.add(RoleTo, a)
}

// AddCc validates and appends an address to the Cc list
func (b *RecipientBook) AddCc(a Address) error {
	return b.add(RoleCc, a)
}

// AddBcc validates and appends an address to the Bcc list
func (b *RecipientBook) AddBcc(a Address) error {
	return b.add(RoleBcc, a)
}

// ReplaceTo clears all To entries and adds a. On an invalid address the To list is left
// untouched.
func (b *RecipientBook) ReplaceTo(a Address) error {
	if err := ValidateAddress(a.Email); err != nil {
		return err
	}
	b.to = []Address{a}
	return nil
}

// Add validates and appends an address to the list of the given role
func (b *RecipientBook) Add(role Role, a Address) error {
	return b.add(role, a)
}

// AddRecipients adds the addresses of every role in To, Cc, Bcc order. Invalid entries
// are skipped and reported as warning to l, which may be nil. The returned error joins the
// reasons of all skipped entries.
func (b *RecipientBook) AddRecipients(recipients map[Role][]Address, l log.Logger) error {
	var errs []error
	for _, role := range []Role{RoleTo, RoleCc, RoleBcc} {
		for _, a := range recipients[role] {
			err := b.add(role, a)
			if err == nil {
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
			if l != nil {
				l.Warnf(log.Log{
					Component: log.ComponentMessage, Format: "skipping invalid %s recipient %q: %s",
					Messages: []interface{}{role, a.Email, err},
				})
			}
		}
	}
	return errors.Join(errs...)
}

// List returns a copy of the addresses of the given role in insertion order. Unused or
// unknown roles yield an empty slice.
func (b *RecipientBook) List(role Role) []Address {
	var l []Address
	switch role {
	case RoleTo:
		l = b.to
	case RoleCc:
		l = b.cc
	case RoleBcc:
		l = b.bcc
	}
	out := make([]Address, len(l))
	copy(out, l)
	return out
}

// Len returns the number of addresses filed under role
func (b *RecipientBook) Len(role Role) int {
	switch role {
	case RoleTo:
		return len(b.to)
	case RoleCc:
		return len(b.cc)
	case RoleBcc:
		return len(b.bcc)
	}
	return 0
}

// Reset removes all recipients of all roles
func (b *RecipientBook) Reset() {
	b.to, b.cc, b.bcc = nil, nil, nil
}

func (b *RecipientBook) add(role Role, a Address) error {
	if err := ValidateAddress(a.Email); err != nil {
		return err
	}
	switch role {
	case RoleTo:
		b.to = append(b.to, a)
	case RoleCc:
		b.cc = append(b.cc, a)
	case RoleBcc:
		b.bcc = append(b.bcc, a)
	default:
		return fmt.Errorf("unsupported recipient role %q", role)
	}
	return nil
}
