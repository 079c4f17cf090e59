package uri

import "errors"

var (
	// ErrMalformedURI is returned for any grammar violation, including bad
	// percent escapes and invalid ports.
	ErrMalformedURI = errors.New("malformed uri")

	// ErrUnknownScheme is returned when the scheme is missing or not
	// registered.
	ErrUnknownScheme = errors.New("unknown uri scheme")

	// ErrEncodingOverflow is returned by EncodeLimit when the output bound
	// is too small.
	ErrEncodingOverflow = errors.New("encoded output exceeds limit")
)
