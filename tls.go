// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

// TLSPolicy describes how the SMTP Client uses STARTTLS
type TLSPolicy int

const (
	// TLSMandatory requires STARTTLS. If the server does not offer it, the delivery fails
	// before any credentials or message data are sent.
	TLSMandatory TLSPolicy = iota

	// TLSOpportunistic uses STARTTLS when the server offers it and falls back to plaintext
	// otherwise
	TLSOpportunistic

	// NoTLS never issues STARTTLS
	NoTLS
)

// String is a standard method to convert a TLSPolicy into a printable format
func (p TLSPolicy) String() string {
	switch p {
	case TLSMandatory:
		return "TLSMandatory"
	case TLSOpportunistic:
		return "TLSOpportunistic"
	case NoTLS:
		return "NoTLS"
	default:
		return "UnknownPolicy"
	}
}

// ParseTLSPolicy returns the TLSPolicy for its name as used in configuration files:
// "mandatory", "opportunistic" or "none". Unknown names yield TLSMandatory.
func ParseTLSPolicy(s string) TLSPolicy {
	switch s {
	case "opportunistic", "TLSOpportunistic":
		return TLSOpportunistic
	case "none", "notls", "NoTLS":
		return NoTLS
	default:
		return TLSMandatory
	}
}
