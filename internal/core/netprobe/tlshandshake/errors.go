package tlshandshake

import "fmt"

// ParseError wraps a malformed TLS record or handshake message. A ParseError
// never carries a partial ServerHello: callers get either a fully parsed
// value or this error, never both.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse tls handshake: %s", e.Reason)
}

func errShort(field string) error {
	return &ParseError{Reason: fmt.Sprintf("truncated while reading %s", field)}
}
