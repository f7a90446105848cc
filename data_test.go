// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"reflect"
	"testing"
)

func TestDecodeDataScalarRoundTrip(t *testing.T) {
	names := NewNameTable([]string{"None", "Health", "Guard"})

	tests := []struct {
		name     string
		typeName string
		data     *PropertyData
	}{
		{"int", "IntProperty", &PropertyData{Kind: KindInt, Int: -7}},
		{"uint16", "UInt16Property", &PropertyData{Kind: KindUInt16, UInt16: 42}},
		{"uint32", "UInt32Property", &PropertyData{Kind: KindUInt32, UInt32: 0xFF00FF}},
		{"float", "FloatProperty", &PropertyData{Kind: KindFloat, Float: 1.25}},
		{"byte", "ByteProperty", &PropertyData{Kind: KindByte, Byte: 9}},
		{"name", "NameProperty", &PropertyData{Kind: KindName, Name: "Health"}},
		{"enum", "EnumProperty", &PropertyData{Kind: KindEnum, Enum: "Guard"}},
		{"str empty", "StrProperty", &PropertyData{Kind: KindStr, Str: ""}},
		{"str ascii", "StrProperty", &PropertyData{Kind: KindStr, Str: "hello"}},
		{"utf16", "StrProperty", &PropertyData{Kind: KindUtf16Str, Str: "héllo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newBuffer()
			if _, err := encodeData(NewWriter(buf), names, tt.data, false); err != nil {
				t.Fatalf("encodeData failed: %v", err)
			}

			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := decodeData(r, tt.typeName, nil, names, &Options{}, false)
			if err != nil {
				t.Fatalf("decodeData failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.data) {
				t.Errorf("decodeData = %+v, want %+v", got, tt.data)
			}
		})
	}
}

func TestBoolTopLevelHasNoDataBytes(t *testing.T) {
	names := NewNameTable([]string{"None"})
	d := &PropertyData{Kind: KindBool}

	buf := newBuffer()
	n, err := encodeData(NewWriter(buf), names, d, false)
	if err != nil {
		t.Fatalf("encodeData failed: %v", err)
	}
	if n != 0 || buf.Len() != 0 {
		t.Errorf("top-level Bool wrote %d bytes, want 0", buf.Len())
	}
}

func TestBoolNestedReadsWritesDirectByte(t *testing.T) {
	names := NewNameTable([]string{"None"})
	d := &PropertyData{Kind: KindBool, Bool: true}

	buf := newBuffer()
	n, err := encodeData(NewWriter(buf), names, d, true)
	if err != nil {
		t.Fatalf("encodeData failed: %v", err)
	}
	if n != 1 {
		t.Errorf("nested Bool wrote %d bytes, want 1", n)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := decodeData(r, "BoolProperty", nil, names, &Options{}, true)
	if err != nil {
		t.Fatalf("decodeData failed: %v", err)
	}
	if !got.Bool {
		t.Errorf("decoded nested Bool = false, want true")
	}
}

func TestDecodeDataStructRoundTrip(t *testing.T) {
	names := NewNameTable([]string{"None", "Health", "IntProperty"})

	child := &Property{
		Name:     "Health",
		TypeName: "IntProperty",
		Metadata: &PropertyMetadata{Kind: MetaNone},
		Data:     &PropertyData{Kind: KindInt, Int: 100},
	}
	data := &PropertyData{Kind: KindStruct, Struct: []*Property{child}}

	buf := newBuffer()
	if _, err := encodeData(NewWriter(buf), names, data, false); err != nil {
		t.Fatalf("encodeData failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := decodeData(r, "StructProperty", nil, names, &Options{}, false)
	if err != nil {
		t.Fatalf("decodeData failed: %v", err)
	}
	if len(got.Struct) != 1 || got.Struct[0].Name != "Health" || got.Struct[0].Data.Int != 100 {
		t.Errorf("decoded struct = %+v, want one Health=100 field", got.Struct)
	}
}

func TestArrayPayloadRoundTripScalar(t *testing.T) {
	names := NewNameTable([]string{"None", "IntProperty"})
	meta := &PropertyMetadata{Kind: MetaArray, ArrayItemType: "IntProperty"}

	data := &PropertyData{
		Kind:          KindArray,
		ArrayItemType: "IntProperty",
		ArrayItems: []*PropertyData{
			{Kind: KindInt, Int: 1},
			{Kind: KindInt, Int: 2},
			{Kind: KindInt, Int: 3},
		},
	}

	buf := newBuffer()
	if _, err := encodeArrayPayload(NewWriter(buf), names, data); err != nil {
		t.Fatalf("encodeArrayPayload failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := decodeArrayPayload(r, meta, names, &Options{})
	if err != nil {
		t.Fatalf("decodeArrayPayload failed: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("decodeArrayPayload = %+v, want %+v", got, data)
	}
}

func TestArrayPayloadRoundTripStruct(t *testing.T) {
	names := NewNameTable([]string{"None", "StructProperty", "IntProperty", "Inventory", "Items", "ItemStruct"})
	meta := &PropertyMetadata{Kind: MetaArray, ArrayItemType: "StructProperty"}

	item := &PropertyData{
		Kind: KindStruct,
		Struct: []*Property{
			{Name: "Items", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 5}},
		},
	}
	data := &PropertyData{
		Kind:          KindArray,
		ArrayItemType: "StructProperty",
		ArraySchema: &ArraySchema{
			ElementName:     "Items",
			ElementType:     "ItemStruct",
			ElementDataSize: 4,
			ElementArrIndex: 0,
			ArrayName:       "Inventory",
			Opaque:          [17]byte{1, 2, 3},
		},
		ArrayItems: []*PropertyData{item},
	}

	buf := newBuffer()
	if _, err := encodeArrayPayload(NewWriter(buf), names, data); err != nil {
		t.Fatalf("encodeArrayPayload failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := decodeArrayPayload(r, meta, names, &Options{})
	if err != nil {
		t.Fatalf("decodeArrayPayload failed: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("decodeArrayPayload = %+v, want %+v", got, data)
	}
}

func TestMapPayloadRoundTripByteKey(t *testing.T) {
	names := NewNameTable([]string{"None", "ByteProperty", "IntProperty"})
	meta := &PropertyMetadata{Kind: MetaMap, MapKeyType: "ByteProperty", MapValType: "IntProperty"}

	data := &PropertyData{
		Kind:       KindMap,
		MapKeyType: "ByteProperty",
		MapValType: "IntProperty",
		MapPairs: []MapPair{
			{Key: &PropertyData{Kind: KindByte, Byte: 1}, Value: &PropertyData{Kind: KindInt, Int: 10}},
			{Key: &PropertyData{Kind: KindByte, Byte: 2}, Value: &PropertyData{Kind: KindInt, Int: 20}},
		},
	}

	buf := newBuffer()
	if _, err := encodeMapPayload(NewWriter(buf), names, data); err != nil {
		t.Fatalf("encodeMapPayload failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := decodeMapPayload(r, meta, names, &Options{})
	if err != nil {
		t.Fatalf("decodeMapPayload failed: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("decodeMapPayload = %+v, want %+v", got, data)
	}
}

func TestDeclaredDataSizeMapAddsFour(t *testing.T) {
	d := &PropertyData{Kind: KindMap}
	if got := declaredDataSize(10, d); got != 14 {
		t.Errorf("declaredDataSize(map) = %d, want 14", got)
	}
	d2 := &PropertyData{Kind: KindInt}
	if got := declaredDataSize(10, d2); got != 10 {
		t.Errorf("declaredDataSize(int) = %d, want 10", got)
	}
}

func TestUnhandledPropertyTypeStrictMode(t *testing.T) {
	names := NewNameTable([]string{"None"})
	r := NewReader(bytes.NewReader(nil))
	_, err := decodeData(r, "SomeFutureProperty", nil, names, &Options{Strict: true}, false)
	if err == nil {
		t.Fatal("decodeData with Strict=true and unknown type: want error, got nil")
	}
}
