// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"testing"
)

// newTestSummary builds a Summary whose header fields are internally
// consistent (name-table count, tail length) so it round-trips through
// decodeSummary/encodeSummary and DecodeDocument/Encode.
func newTestSummary(names []string, tail []byte) *Summary {
	const headerSize = 64
	const separatorSize = 1

	nameTableSize := 0
	for _, n := range names {
		nameTableSize += 1 + len(n) + 1 // length byte + bytes + zero terminator
	}
	pos := int32(headerSize + separatorSize + nameTableSize)

	h := SummaryHeader{
		Name:              1,
		SourceName:        2,
		PackageFlags:      0,
		CookedHeaderSize:  0,
		NameMapNamesOff:   headerSize + separatorSize,
		NameMapNamesSize:  int32(nameTableSize),
		NameMapHashesOff:  0,
		NameMapHashesSize: int32((len(names) + 1) * 8),
		ImportMapOffset:   0,
		ExportMapOffset:   0,
		ExportBundlesOff:  0,
		GraphDataOffset:   0,
		GraphDataSize:     pos + int32(len(tail)),
	}

	return &Summary{
		Header:    h,
		NameTable: NewNameTable(names),
		Tail:      tail,
	}
}

func TestSummaryBinaryRoundTrip(t *testing.T) {
	s := newTestSummary([]string{"None", "Health", "IntProperty"}, []byte{0xAA, 0xBB})

	data, err := encodeSummaryBytes(s)
	if err != nil {
		t.Fatalf("encodeSummaryBytes failed: %v", err)
	}

	got, err := decodeSummary(NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("decodeSummary failed: %v", err)
	}
	if got.Header != s.Header {
		t.Errorf("header = %+v, want %+v", got.Header, s.Header)
	}
	if len(got.NameTable.Entries()) != 3 {
		t.Errorf("name table has %d entries, want 3", len(got.NameTable.Entries()))
	}
	if string(got.Tail) != string(s.Tail) {
		t.Errorf("tail = %v, want %v", got.Tail, s.Tail)
	}
}

func TestSummaryBase64RoundTrip(t *testing.T) {
	s := newTestSummary([]string{"None"}, nil)

	token, err := SummaryToBase64(s)
	if err != nil {
		t.Fatalf("SummaryToBase64 failed: %v", err)
	}

	got, err := SummaryFromBase64(token)
	if err != nil {
		t.Fatalf("SummaryFromBase64 failed: %v", err)
	}
	if got.Header != s.Header {
		t.Errorf("header = %+v, want %+v", got.Header, s.Header)
	}
}

func TestSummaryFromBase64InvalidToken(t *testing.T) {
	if _, err := SummaryFromBase64("not valid base64!!"); err == nil {
		t.Fatal("SummaryFromBase64 with invalid token: want error, got nil")
	}
}
