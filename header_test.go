// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"testing"
)

func TestPropertyHeaderRoundTrip(t *testing.T) {
	names := NewNameTable([]string{"None", "Health", "IntProperty"})

	buf := newBuffer()
	w := NewWriter(buf)
	ok, err := encodeHeader(w, names, "Health", "IntProperty", 4, 0)
	if err != nil {
		t.Fatalf("encodeHeader failed: %v", err)
	}
	if !ok {
		t.Fatal("encodeHeader ok = false, want true")
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	hdr, name, ok, err := decodeHeader(r, names)
	if err != nil {
		t.Fatalf("decodeHeader failed: %v", err)
	}
	if !ok {
		t.Fatal("decodeHeader ok = false, want true")
	}
	if name != "Health" {
		t.Errorf("name = %q, want %q", name, "Health")
	}
	if hdr.DataSize != 4 || hdr.ArrIndex != 0 {
		t.Errorf("hdr = %+v, want DataSize=4 ArrIndex=0", hdr)
	}
}

func TestPropertyHeaderNoneSentinel(t *testing.T) {
	names := NewNameTable([]string{"None"})

	buf := newBuffer()
	w := NewWriter(buf)
	ok, err := encodeHeader(w, names, "None", "", 0, 0)
	if err != nil {
		t.Fatalf("encodeHeader failed: %v", err)
	}
	if ok {
		t.Fatal("encodeHeader ok = true for None, want false")
	}
	if buf.Len() != 8 {
		t.Errorf("None header wrote %d bytes, want 8", buf.Len())
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	_, name, ok, err := decodeHeader(r, names)
	if err != nil {
		t.Fatalf("decodeHeader failed: %v", err)
	}
	if ok {
		t.Fatal("decodeHeader ok = true for None, want false")
	}
	if name != "None" {
		t.Errorf("name = %q, want %q", name, "None")
	}
}
