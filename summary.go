// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// SummaryHeader is the fixed-layout 14-field block that opens every
// Summary. Grounded on original_source/src/iostore_uasset.rs's
// UObjectSummaryHeader, field for field.
//
// The field list below totals 64 bytes on the wire (two u64 + two u32 +
// ten i32). spec.md's prose calls this "60 bytes"; the explicit field
// enumeration (and the original Rust prototype, which writes the same
// fourteen fields with the same widths) is taken as authoritative.
type SummaryHeader struct {
	Name              uint64
	SourceName        uint64
	PackageFlags      uint32
	CookedHeaderSize  uint32
	NameMapNamesOff   int32
	NameMapNamesSize  int32
	NameMapHashesOff  int32
	NameMapHashesSize int32
	ImportMapOffset   int32
	ExportMapOffset   int32
	ExportBundlesOff  int32
	GraphDataOffset   int32
	GraphDataSize     int32
	Pad               int32
}

func decodeSummaryHeader(r *Reader) (SummaryHeader, error) {
	var h SummaryHeader
	var err error
	if h.Name, err = r.ReadU64(); err != nil {
		return h, err
	}
	if h.SourceName, err = r.ReadU64(); err != nil {
		return h, err
	}
	if h.PackageFlags, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.CookedHeaderSize, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.NameMapNamesOff, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.NameMapNamesSize, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.NameMapHashesOff, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.NameMapHashesSize, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.ImportMapOffset, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.ExportMapOffset, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.ExportBundlesOff, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.GraphDataOffset, err = r.ReadI32(); err != nil {
		return h, err
	}
	if h.GraphDataSize, err = r.ReadI32(); err != nil {
		return h, err
	}
	// The pad field is read but always written back as zero.
	if _, err = r.ReadI32(); err != nil {
		return h, err
	}
	h.Pad = 0
	return h, nil
}

func encodeSummaryHeader(w *Writer, h SummaryHeader) error {
	writes := []func() error{
		func() error { return w.WriteU64(h.Name) },
		func() error { return w.WriteU64(h.SourceName) },
		func() error { return w.WriteU32(h.PackageFlags) },
		func() error { return w.WriteU32(h.CookedHeaderSize) },
		func() error { return w.WriteI32(h.NameMapNamesOff) },
		func() error { return w.WriteI32(h.NameMapNamesSize) },
		func() error { return w.WriteI32(h.NameMapHashesOff) },
		func() error { return w.WriteI32(h.NameMapHashesSize) },
		func() error { return w.WriteI32(h.ImportMapOffset) },
		func() error { return w.WriteI32(h.ExportMapOffset) },
		func() error { return w.WriteI32(h.ExportBundlesOff) },
		func() error { return w.WriteI32(h.GraphDataOffset) },
		func() error { return w.WriteI32(h.GraphDataSize) },
		func() error { return w.WriteI32(0) }, // pad, always zero
	}
	for _, f := range writes {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the SummaryHeader, followed by a single zero byte, the
// NameTable, and an opaque tail of bytes the core never interprets
// (spec §3/§4.2).
type Summary struct {
	Header    SummaryHeader
	NameTable *NameTable
	Tail      []byte
}

func decodeSummary(r *Reader) (*Summary, error) {
	header, err := decodeSummaryHeader(r)
	if err != nil {
		return nil, fmt.Errorf("summary header: %w", err)
	}

	if zero, err := r.ReadU8(); err != nil {
		return nil, fmt.Errorf("summary separator byte: %w", err)
	} else if zero != 0 {
		return nil, fmt.Errorf("uasset: summary separator byte is non-zero (0x%x)", zero)
	}

	nameCount := header.NameMapHashesSize/8 - 1
	if nameCount < 0 {
		return nil, fmt.Errorf("uasset: negative name table count derived from name_map_hashes_size=%d", header.NameMapHashesSize)
	}
	names := make([]string, 0, nameCount)
	for i := int32(0); i < nameCount; i++ {
		s, err := r.ReadPackedString()
		if err != nil {
			return nil, fmt.Errorf("name table entry %d: %w", i, err)
		}
		names = append(names, s)
	}

	pos, err := r.StreamPosition()
	if err != nil {
		return nil, err
	}
	tailEnd := int64(header.GraphDataOffset) + int64(header.GraphDataSize)
	tailLen := tailEnd - pos
	if tailLen < 0 {
		return nil, fmt.Errorf("uasset: graph_data_offset+graph_data_size (%d) precedes current position (%d)", tailEnd, pos)
	}
	tail, err := r.ReadExact(int(tailLen))
	if err != nil {
		return nil, fmt.Errorf("summary tail: %w", err)
	}

	return &Summary{
		Header:    header,
		NameTable: NewNameTable(names),
		Tail:      tail,
	}, nil
}

func encodeSummary(w *Writer, s *Summary) error {
	if err := encodeSummaryHeader(w, s.Header); err != nil {
		return fmt.Errorf("summary header: %w", err)
	}
	if err := w.WriteU8(0); err != nil {
		return err
	}
	for _, name := range s.NameTable.Entries() {
		if err := w.WritePackedString(name); err != nil {
			return fmt.Errorf("name table entry %q: %w", name, err)
		}
	}
	return w.WriteBytes(s.Tail)
}

// encodeSummaryBytes renders a Summary to its binary form, used both by
// Document encoding and by the textual base64 token.
func encodeSummaryBytes(s *Summary) ([]byte, error) {
	buf := newBuffer()
	if err := encodeSummary(NewWriter(buf), s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryToBase64 renders the summary as the single base64 token written
// after "summary:" in the textual form (spec §4.2).
func SummaryToBase64(s *Summary) (string, error) {
	b, err := encodeSummaryBytes(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// SummaryFromBase64 parses the textual form's base64 summary token back
// into a Summary.
func SummaryFromBase64(token string) (*Summary, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return decodeSummary(NewReader(bytes.NewReader(b)))
}
