// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"fmt"
)

// Document is a full decoded uasset container: the Summary block followed
// by the top-level property stream (spec §2/§4.7).
type Document struct {
	Summary    *Summary
	Properties []*Property
}

// decodeDocument implements the top-level control flow: summary, then
// properties until "None", then four trailing zero bytes.
func decodeDocument(r *Reader, opts *Options) (*Document, error) {
	summary, err := decodeSummary(r)
	if err != nil {
		return nil, fmt.Errorf("document summary: %w", err)
	}

	props, err := decodeStructBody(r, summary.NameTable, opts)
	if err != nil {
		return nil, fmt.Errorf("document properties: %w", err)
	}

	trailer, err := r.ReadExact(4)
	if err != nil {
		return nil, fmt.Errorf("document trailer: %w", err)
	}
	for i, b := range trailer {
		if b != 0 {
			return nil, fmt.Errorf("uasset: trailing byte %d is non-zero (0x%x)", i, b)
		}
	}

	return &Document{Summary: summary, Properties: props}, nil
}

// encodeDocument writes a Document in the mirror order decodeDocument
// reads it in.
func encodeDocument(w *Writer, d *Document, opts *Options) error {
	if err := encodeSummary(w, d.Summary); err != nil {
		return fmt.Errorf("document summary: %w", err)
	}
	for _, p := range d.Properties {
		if _, err := encodeProperty(w, d.Summary.NameTable, p); err != nil {
			return fmt.Errorf("document properties: %w", err)
		}
	}
	if err := encodeNoneHeader(w, d.Summary.NameTable); err != nil {
		return err
	}
	return w.WriteBytes([]byte{0, 0, 0, 0})
}

// DecodeDocument parses a complete uasset container from raw bytes.
func DecodeDocument(data []byte, opts *Options) (*Document, error) {
	return decodeDocument(NewReader(bytes.NewReader(data)), opts)
}

// Encode renders the document back to its exact binary form.
func (d *Document) Encode(opts *Options) ([]byte, error) {
	buf := newBuffer()
	if err := encodeDocument(NewWriter(buf), d, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
