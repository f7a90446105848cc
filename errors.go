// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import "errors"

// Sentinel errors returned by the binary and textual codecs. Callers should
// use errors.Is against these values; wrapped context is added with
// fmt.Errorf("...: %w", ...) at the call site.
var (
	// ErrMalformedString is returned when a packed-string or Str payload's
	// length/termination byte does not match what the format requires.
	ErrMalformedString = errors.New("uasset: malformed string: length or termination byte is incorrect")

	// ErrTruncatedInput is returned when a read runs past the end of input.
	ErrTruncatedInput = errors.New("uasset: truncated input")

	// ErrNameNotFound is returned when encoding needs to resolve a string to
	// a NameTable index and the string isn't present.
	ErrNameNotFound = errors.New("uasset: name not found in name table")

	// ErrTypeMismatch is returned when a map value's or array element's
	// variant disagrees with its declared type.
	ErrTypeMismatch = errors.New("uasset: type mismatch")

	// ErrMalformedText is returned when the text parser cannot satisfy a
	// required production.
	ErrMalformedText = errors.New("uasset: malformed text")

	// ErrInvalidBase64 is returned when a summary or struct metadata base64
	// token fails to decode.
	ErrInvalidBase64 = errors.New("uasset: invalid base64")

	// ErrUnhandledPropertyType is returned by decoding in Strict mode for a
	// property type name this codec doesn't recognize. Encoding never
	// returns it: an unknown type decoded without Strict is carried as a
	// struct and re-encoded as one, its declared size recomputed from that
	// struct body.
	ErrUnhandledPropertyType = errors.New("uasset: unhandled property type")
)
