// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"fmt"
	"unicode/utf16"
)

// PropertyData is the recursive sum type over property payload shapes
// (spec §3). Only the fields relevant to Kind are populated; this mirrors
// a tagged union/discriminated class hierarchy (spec.md §9's design note)
// rather than a dynamic attribute bag.
type PropertyData struct {
	Kind PropertyKind

	Int    int32
	UInt16 uint16
	UInt32 uint32
	Float  float32
	Byte   uint8

	// Bool holds the value for a Bool property only when nested inside an
	// Array or Map element, where no PropertyMetadata side-channel exists
	// to carry it. A top-level Bool's value lives on
	// Property.Metadata.BoolValue instead.
	Bool   bool
	Enum   string // dereferenced name-table entry
	Name   string // dereferenced name-table entry
	Str    string // used by both KindStr and KindUtf16Str

	Struct []*Property // ordered children, None sentinel implicit

	ArrayItemType string
	ArraySchema   *ArraySchema // non-nil only when ArrayItemType == "StructProperty"
	ArrayItems    []*PropertyData

	MapKeyType string
	MapValType string
	MapPairs   []MapPair
}

// MapPair is one (key, value) entry of a Map property.
type MapPair struct {
	Key   *PropertyData
	Value *PropertyData
}

// ArraySchema is the sub-schema carried once per struct-typed array: the
// shared 24-byte element header, the array-name index, and 17 bytes of
// opaque struct-layout data the engine uses internally (spec §4.6). Not
// derivable from the array's elements — stored verbatim.
type ArraySchema struct {
	ElementName     string
	ElementType     string
	ElementDataSize uint32
	ElementArrIndex uint32
	ArrayName       string
	Opaque          [17]byte
}

// Property is a full (header, metadata, data) triple: a named datum in a
// property stream (spec §3).
type Property struct {
	Name     string
	TypeName string
	ArrIndex uint32
	Metadata *PropertyMetadata
	Data     *PropertyData
}

// rawHeader is the 24-byte PropertyHeader shape used for the struct-array
// element header, which is not itself subject to the "None" stream
// termination rule that decodeHeader/encodeHeader implement.
type rawHeader struct {
	Name     string
	Type     string
	DataSize uint32
	ArrIndex uint32
}

func decodeRawHeader(r *Reader, names *NameTable) (rawHeader, error) {
	var h rawHeader
	nameIdx, err := r.ReadU64()
	if err != nil {
		return h, err
	}
	h.Name, err = names.At(nameIdx)
	if err != nil {
		return h, fmt.Errorf("element header name: %w", err)
	}
	typeIdx, err := r.ReadU64()
	if err != nil {
		return h, err
	}
	h.Type, err = names.At(typeIdx)
	if err != nil {
		return h, fmt.Errorf("element header type: %w", err)
	}
	if h.DataSize, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.ArrIndex, err = r.ReadU32(); err != nil {
		return h, err
	}
	return h, nil
}

func encodeRawHeader(w *Writer, names *NameTable, h rawHeader) error {
	nameIdx, err := names.Index(h.Name)
	if err != nil {
		return err
	}
	typeIdx, err := names.Index(h.Type)
	if err != nil {
		return err
	}
	if err := w.WriteU64(nameIdx); err != nil {
		return err
	}
	if err := w.WriteU64(typeIdx); err != nil {
		return err
	}
	if err := w.WriteU32(h.DataSize); err != nil {
		return err
	}
	return w.WriteU32(h.ArrIndex)
}

// decodeProperty reads one (header, metadata, data) triple. ok is false
// when the header's name resolved to "None" — the stream (or enclosing
// struct scope) has ended and no metadata/data follows.
func decodeProperty(r *Reader, names *NameTable, opts *Options) (*Property, bool, error) {
	hdr, name, ok, err := decodeHeader(r, names)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	typeName, err := names.At(hdr.TypeIndex)
	if err != nil {
		return nil, false, fmt.Errorf("property %q: type index: %w", name, err)
	}

	meta, err := decodeMetadata(r, typeName, names, opts)
	if err != nil {
		return nil, false, fmt.Errorf("property %q: metadata: %w", name, err)
	}

	data, err := decodeData(r, typeName, meta, names, opts, false)
	if err != nil {
		return nil, false, fmt.Errorf("property %q: data: %w", name, err)
	}

	return &Property{
		Name:     name,
		TypeName: typeName,
		ArrIndex: hdr.ArrIndex,
		Metadata: meta,
		Data:     data,
	}, true, nil
}

// decodeStructBody decodes an ordered property stream terminated by "None"
// — used for top-level Struct payloads, struct array elements, and struct
// map values alike (spec §4.6).
func decodeStructBody(r *Reader, names *NameTable, opts *Options) ([]*Property, error) {
	var props []*Property
	for {
		p, ok, err := decodeProperty(r, names, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		props = append(props, p)
	}
	return props, nil
}

// decodeData decodes a bare payload for typeName — used both for a
// property's own data (following its metadata) and for array
// elements/map keys-values, which carry no metadata of their own. meta is
// only consulted when typeName is itself "ArrayProperty"/"MapProperty",
// to learn the element/key/value type names. nested is true for array
// items and map keys/values, where Bool has no metadata side-channel to
// hold its value and instead reads/writes a direct byte.
func decodeData(r *Reader, typeName string, meta *PropertyMetadata, names *NameTable, opts *Options, nested bool) (*PropertyData, error) {
	kind, known := kindFromTypeName(typeName)
	if !known {
		if opts != nil && opts.Strict {
			return nil, fmt.Errorf("%w: %q", ErrUnhandledPropertyType, typeName)
		}
		props, err := decodeStructBody(r, names, opts)
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindStruct, Struct: props}, nil
	}

	switch kind {
	case KindBool:
		if !nested {
			return &PropertyData{Kind: KindBool}, nil // value lives in metadata
		}
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindBool, Bool: v != 0}, nil
	case KindByte:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindByte, Byte: v}, nil
	case KindEnum:
		idx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		s, err := names.At(idx)
		if err != nil {
			return nil, fmt.Errorf("enum value: %w", err)
		}
		return &PropertyData{Kind: KindEnum, Enum: s}, nil
	case KindName:
		idx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		s, err := names.At(idx)
		if err != nil {
			return nil, fmt.Errorf("name value: %w", err)
		}
		return &PropertyData{Kind: KindName, Name: s}, nil
	case KindInt:
		v, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindInt, Int: v}, nil
	case KindUInt16:
		v, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindUInt16, UInt16: v}, nil
	case KindUInt32:
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindUInt32, UInt32: v}, nil
	case KindFloat:
		v, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindFloat, Float: v}, nil
	case KindStr:
		return decodeStrPayload(r)
	case KindStruct:
		props, err := decodeStructBody(r, names, opts)
		if err != nil {
			return nil, err
		}
		return &PropertyData{Kind: KindStruct, Struct: props}, nil
	case KindArray:
		return decodeArrayPayload(r, meta, names, opts)
	case KindMap:
		return decodeMapPayload(r, meta, names, opts)
	}
	return nil, fmt.Errorf("uasset: unreachable property kind %v", kind)
}

// decodeStrPayload reads a Str/Utf16Str payload: a 4-byte signed length,
// then the string and a terminator whose width depends on the sign (spec
// §4.6).
func decodeStrPayload(r *Reader) (*PropertyData, error) {
	l, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	switch {
	case l == 0:
		return &PropertyData{Kind: KindStr, Str: ""}, nil
	case l > 0:
		raw, err := r.ReadExact(int(l) - 1)
		if err != nil {
			return nil, err
		}
		term, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if term != 0 {
			pos, _ := r.StreamPosition()
			return nil, fmt.Errorf("%w at byte 0x%x", ErrMalformedString, pos)
		}
		return &PropertyData{Kind: KindStr, Str: string(raw)}, nil
	default:
		units := -l - 1
		codeUnits := make([]uint16, units)
		for i := range codeUnits {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			codeUnits[i] = v
		}
		term, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if term != 0 {
			pos, _ := r.StreamPosition()
			return nil, fmt.Errorf("%w at byte 0x%x", ErrMalformedString, pos)
		}
		return &PropertyData{Kind: KindUtf16Str, Str: string(utf16.Decode(codeUnits))}, nil
	}
}

// decodeArrayPayload reads an Array's count, optional struct-array
// sub-schema, and elements (spec §4.6).
func decodeArrayPayload(r *Reader, meta *PropertyMetadata, names *NameTable, opts *Options) (*PropertyData, error) {
	if meta == nil {
		return nil, fmt.Errorf("uasset: array property missing metadata")
	}
	itemType := meta.ArrayItemType
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	d := &PropertyData{Kind: KindArray, ArrayItemType: itemType}

	if itemType == "StructProperty" {
		eh, err := decodeRawHeader(r, names)
		if err != nil {
			return nil, fmt.Errorf("array element header: %w", err)
		}
		arrNameIdx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		arrName, err := names.At(arrNameIdx)
		if err != nil {
			return nil, fmt.Errorf("array name: %w", err)
		}
		opaque, err := r.ReadExact(17)
		if err != nil {
			return nil, err
		}
		schema := &ArraySchema{
			ElementName:     eh.Name,
			ElementType:     eh.Type,
			ElementDataSize: eh.DataSize,
			ElementArrIndex: eh.ArrIndex,
			ArrayName:       arrName,
		}
		copy(schema.Opaque[:], opaque)
		d.ArraySchema = schema
	}

	items := make([]*PropertyData, 0, count)
	for i := uint32(0); i < count; i++ {
		elem, err := decodeData(r, itemType, nil, names, opts, true)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		items = append(items, elem)
	}
	d.ArrayItems = items
	return d, nil
}

// decodeMapPayload reads a Map's count and key/value pairs. A ByteProperty
// key is a single raw byte rather than a standard Byte payload (spec
// §4.6, Open Question (b)).
func decodeMapPayload(r *Reader, meta *PropertyMetadata, names *NameTable, opts *Options) (*PropertyData, error) {
	if meta == nil {
		return nil, fmt.Errorf("uasset: map property missing metadata")
	}
	keyType := meta.MapKeyType
	valType := meta.MapValType
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	pairs := make([]MapPair, 0, count)
	for i := uint32(0); i < count; i++ {
		var key *PropertyData
		if keyType == "ByteProperty" {
			v, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			key = &PropertyData{Kind: KindByte, Byte: v}
		} else {
			key, err = decodeData(r, keyType, nil, names, opts, true)
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
		}
		val, err := decodeData(r, valType, nil, names, opts, true)
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", i, err)
		}
		pairs = append(pairs, MapPair{Key: key, Value: val})
	}
	return &PropertyData{Kind: KindMap, MapKeyType: keyType, MapValType: valType, MapPairs: pairs}, nil
}

// encodeProperty writes a property's header, metadata, and data, and
// returns the total bytes written.
func encodeProperty(w *Writer, names *NameTable, p *Property) (int, error) {
	dataBuf := newBuffer()
	actualSize, err := encodeData(NewWriter(dataBuf), names, p.Data, false)
	if err != nil {
		return 0, fmt.Errorf("property %q: data: %w", p.Name, err)
	}
	declSize := declaredDataSize(actualSize, p.Data)

	ok, err := encodeHeader(w, names, p.Name, p.TypeName, declSize, p.ArrIndex)
	if err != nil {
		return 0, fmt.Errorf("property %q: header: %w", p.Name, err)
	}
	if !ok {
		return 8, nil
	}

	metaBuf := newBuffer()
	if err := encodeMetadata(NewWriter(metaBuf), names, p.Metadata); err != nil {
		return 0, fmt.Errorf("property %q: metadata: %w", p.Name, err)
	}
	if err := w.WriteBytes(metaBuf.Bytes()); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(dataBuf.Bytes()); err != nil {
		return 0, err
	}

	return 24 + metaBuf.Len() + dataBuf.Len(), nil
}

// declaredDataSize applies spec §4.5/§4.6's size-counting rule: the
// declared size equals the bytes the data encoder produced, except for
// Map, where the engine's declared size double-counts a 4-byte reserved
// slot that physically lives in the metadata block (spec.md §9 Open
// Question (a); implemented literally, not "fixed").
func declaredDataSize(actualSize int, d *PropertyData) uint32 {
	if d.Kind == KindMap {
		return uint32(actualSize) + 4
	}
	return uint32(actualSize)
}

// encodeData writes the bare payload for d (no header, no metadata) and
// returns the number of bytes actually written. nested mirrors decodeData:
// true for array items and map keys/values, where Bool writes a direct
// byte instead of relying on Property.Metadata.
func encodeData(w *Writer, names *NameTable, d *PropertyData, nested bool) (int, error) {
	switch d.Kind {
	case KindBool:
		if !nested {
			return 0, nil
		}
		var v uint8
		if d.Bool {
			v = 1
		}
		if err := w.WriteU8(v); err != nil {
			return 0, err
		}
		return 1, nil
	case KindByte:
		if err := w.WriteU8(d.Byte); err != nil {
			return 0, err
		}
		return 1, nil
	case KindEnum:
		idx, err := names.Index(d.Enum)
		if err != nil {
			return 0, err
		}
		if err := w.WriteU64(idx); err != nil {
			return 0, err
		}
		return 8, nil
	case KindName:
		idx, err := names.Index(d.Name)
		if err != nil {
			return 0, err
		}
		if err := w.WriteU64(idx); err != nil {
			return 0, err
		}
		return 8, nil
	case KindInt:
		if err := w.WriteI32(d.Int); err != nil {
			return 0, err
		}
		return 4, nil
	case KindUInt16:
		if err := w.WriteU16(d.UInt16); err != nil {
			return 0, err
		}
		return 2, nil
	case KindUInt32:
		if err := w.WriteU32(d.UInt32); err != nil {
			return 0, err
		}
		return 4, nil
	case KindFloat:
		if err := w.WriteF32(d.Float); err != nil {
			return 0, err
		}
		return 4, nil
	case KindStr, KindUtf16Str:
		return encodeStrPayload(w, d)
	case KindStruct:
		return encodeStructBody(w, names, d.Struct)
	case KindArray:
		return encodeArrayPayload(w, names, d)
	case KindMap:
		return encodeMapPayload(w, names, d)
	}
	return 0, fmt.Errorf("uasset: cannot encode property kind %v", d.Kind)
}

func encodeNestedData(w *Writer, names *NameTable, d *PropertyData) (int, error) {
	return encodeData(w, names, d, true)
}

func encodeStrPayload(w *Writer, d *PropertyData) (int, error) {
	buf := newBuffer()
	bw := NewWriter(buf)
	if d.Kind == KindUtf16Str {
		units := utf16.Encode([]rune(d.Str))
		l := -(int32(len(units)) + 1)
		if err := bw.WriteI32(l); err != nil {
			return 0, err
		}
		for _, u := range units {
			if err := bw.WriteU16(u); err != nil {
				return 0, err
			}
		}
		if err := bw.WriteU16(0); err != nil {
			return 0, err
		}
	} else if d.Str == "" {
		if err := bw.WriteI32(0); err != nil {
			return 0, err
		}
	} else {
		raw := []byte(d.Str)
		if err := bw.WriteI32(int32(len(raw)) + 1); err != nil {
			return 0, err
		}
		if err := bw.WriteBytes(raw); err != nil {
			return 0, err
		}
		if err := bw.WriteU8(0); err != nil {
			return 0, err
		}
	}
	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func encodeStructBody(w *Writer, names *NameTable, props []*Property) (int, error) {
	buf := newBuffer()
	bw := NewWriter(buf)
	for _, p := range props {
		if _, err := encodeProperty(bw, names, p); err != nil {
			return 0, err
		}
	}
	if err := encodeNoneHeader(bw, names); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func encodeArrayPayload(w *Writer, names *NameTable, d *PropertyData) (int, error) {
	buf := newBuffer()
	bw := NewWriter(buf)
	if err := bw.WriteU32(uint32(len(d.ArrayItems))); err != nil {
		return 0, err
	}

	if d.ArrayItemType == "StructProperty" {
		if d.ArraySchema == nil {
			return 0, fmt.Errorf("uasset: struct array missing element schema")
		}
		eh := rawHeader{
			Name:     d.ArraySchema.ElementName,
			Type:     d.ArraySchema.ElementType,
			DataSize: d.ArraySchema.ElementDataSize,
			ArrIndex: d.ArraySchema.ElementArrIndex,
		}
		if err := encodeRawHeader(bw, names, eh); err != nil {
			return 0, err
		}
		arrNameIdx, err := names.Index(d.ArraySchema.ArrayName)
		if err != nil {
			return 0, err
		}
		if err := bw.WriteU64(arrNameIdx); err != nil {
			return 0, err
		}
		if err := bw.WriteBytes(d.ArraySchema.Opaque[:]); err != nil {
			return 0, err
		}
	}

	for i, item := range d.ArrayItems {
		if _, err := encodeNestedData(bw, names, item); err != nil {
			return 0, fmt.Errorf("array element %d: %w", i, err)
		}
	}

	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func encodeMapPayload(w *Writer, names *NameTable, d *PropertyData) (int, error) {
	buf := newBuffer()
	bw := NewWriter(buf)
	if err := bw.WriteU32(uint32(len(d.MapPairs))); err != nil {
		return 0, err
	}
	for i, pair := range d.MapPairs {
		if d.MapKeyType == "ByteProperty" {
			if err := bw.WriteU8(pair.Key.Byte); err != nil {
				return 0, err
			}
		} else {
			if _, err := encodeNestedData(bw, names, pair.Key); err != nil {
				return 0, fmt.Errorf("map key %d: %w", i, err)
			}
		}
		if _, err := encodeNestedData(bw, names, pair.Value); err != nil {
			return 0, fmt.Errorf("map value %d: %w", i, err)
		}
	}
	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
