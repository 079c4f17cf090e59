// Package mailto turns mailto: URIs into message headers and a body.
package mailto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailacct/internal/uri"
)

// ErrNotMailto is returned when the input is not a mailto: URI.
var ErrNotMailto = errors.New("not a mailto URI")

// allowed lists the headers a mailto: URI may set. Anything else could
// be used to forge headers and is dropped.
var allowed = map[string]bool{
	"to":          true,
	"cc":          true,
	"bcc":         true,
	"subject":     true,
	"in-reply-to": true,
	"references":  true,
}

// Message is the draft described by a mailto: URI.
type Message struct {
	Header mail.Header
	Body   string

	// Ignored holds the names of query entries that were dropped.
	Ignored []string
}

// Parse splits raw into recipients, headers and body. The address part
// and the query are percent-decoded; recipients are parsed as RFC 5322
// address lists.
func Parse(raw string) (*Message, error) {
	if uri.SchemeOf(raw) != uri.SchemeMailto {
		return nil, fmt.Errorf("%w: %q", ErrNotMailto, raw)
	}

	rest := raw[strings.IndexByte(raw, ':')+1:]
	rawTo, rawQuery, _ := strings.Cut(rest, "?")

	m := &Message{}

	to, err := uri.Decode(rawTo)
	if err != nil {
		return nil, fmt.Errorf("decoding recipients: %w", err)
	}
	if err := m.addAddresses("To", to); err != nil {
		return nil, err
	}

	query, err := uri.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing mailto query: %w", err)
	}

	for _, q := range query {
		name := strings.ToLower(q.Name)
		switch {
		case name == "body":
			m.Body = q.Value
		case !allowed[name]:
			m.Ignored = append(m.Ignored, q.Name)
		case name == "to" || name == "cc" || name == "bcc":
			if err := m.addAddresses(name, q.Value); err != nil {
				return nil, err
			}
		case name == "subject":
			m.Header.SetSubject(q.Value)
		default:
			m.Header.SetText(name, q.Value)
		}
	}

	return m, nil
}

func (m *Message) addAddresses(key, list string) error {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	addrs, err := mail.ParseAddressList(list)
	if err != nil {
		return fmt.Errorf("parsing %s addresses %q: %w", key, list, err)
	}

	existing, err := m.Header.AddressList(key)
	if err != nil {
		return fmt.Errorf("reading %s addresses: %w", key, err)
	}
	m.Header.SetAddressList(key, append(existing, addrs...))
	return nil
}

// Recipients returns every To, Cc and Bcc address, in that order.
func (m *Message) Recipients() ([]*mail.Address, error) {
	var all []*mail.Address
	for _, key := range []string{"To", "Cc", "Bcc"} {
		addrs, err := m.Header.AddressList(key)
		if err != nil {
			return nil, fmt.Errorf("reading %s addresses: %w", key, err)
		}
		all = append(all, addrs...)
	}
	return all, nil
}
