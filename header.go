// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import "fmt"

// PropertyHeader is the 24-byte preamble of a non-terminal property: name
// index, type index, declared payload size, array index (spec §3/§4.4).
type PropertyHeader struct {
	NameIndex uint64
	TypeIndex uint64
	DataSize  uint32
	ArrIndex  uint32
}

// decodeHeader reads a PropertyHeader. If the name resolves to "None", only
// the 8-byte name index is consumed and ok is false, signaling "stream
// ended" to the caller — no metadata or data follows.
func decodeHeader(r *Reader, names *NameTable) (hdr PropertyHeader, name string, ok bool, err error) {
	nameIndex, err := r.ReadU64()
	if err != nil {
		return hdr, "", false, err
	}
	name, err = names.At(nameIndex)
	if err != nil {
		return hdr, "", false, fmt.Errorf("property name index: %w", err)
	}
	if name == NoneName {
		hdr.NameIndex = nameIndex
		return hdr, name, false, nil
	}

	typeIndex, err := r.ReadU64()
	if err != nil {
		return hdr, "", false, err
	}
	dataSize, err := r.ReadU32()
	if err != nil {
		return hdr, "", false, err
	}
	arrIndex, err := r.ReadU32()
	if err != nil {
		return hdr, "", false, err
	}

	hdr = PropertyHeader{
		NameIndex: nameIndex,
		TypeIndex: typeIndex,
		DataSize:  dataSize,
		ArrIndex:  arrIndex,
	}
	return hdr, name, true, nil
}

// encodeHeader writes a PropertyHeader for a property named `name`. If name
// is "None", only the 8-byte name index is written and ok is false so the
// caller skips metadata/data.
func encodeHeader(w *Writer, names *NameTable, name, typeName string, dataSize, arrIndex uint32) (ok bool, err error) {
	nameIndex, err := names.Index(name)
	if err != nil {
		return false, err
	}
	if name == NoneName {
		return false, w.WriteU64(nameIndex)
	}

	typeIndex, err := names.Index(typeName)
	if err != nil {
		return false, err
	}
	if err := w.WriteU64(nameIndex); err != nil {
		return false, err
	}
	if err := w.WriteU64(typeIndex); err != nil {
		return false, err
	}
	if err := w.WriteU32(dataSize); err != nil {
		return false, err
	}
	if err := w.WriteU32(arrIndex); err != nil {
		return false, err
	}
	return true, nil
}

// encodeNoneHeader writes the 8-byte "None" sentinel that terminates a
// property stream or struct scope.
func encodeNoneHeader(w *Writer, names *NameTable) error {
	idx, err := names.Index(NoneName)
	if err != nil {
		return err
	}
	return w.WriteU64(idx)
}
