// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"reflect"
	"testing"
)

// buildTestDocument assembles a small but representative Document: a bool,
// an int, a UTF-16 string, a byte-keyed int-valued map, an int-keyed
// struct-valued map, and a struct-typed array.
func buildTestDocument() *Document {
	names := []string{
		"None", "bFlag", "BoolProperty", "Count", "IntProperty",
		"Greeting", "StrProperty", "Scores", "ArrayProperty",
		"StructProperty", "Entry", "Inventory", "Items", "ItemStruct",
		"ByteProperty", "MapProperty", "Tags", "EnumProperty", "ETag",
		"ETag::First", "Waypoints", "X", "Y",
	}
	summary := newTestSummary(names, []byte{0x01, 0x02, 0x03})

	boolProp := &Property{
		Name: "bFlag", TypeName: "BoolProperty",
		Metadata: &PropertyMetadata{Kind: MetaBool, BoolValue: true},
		Data:     &PropertyData{Kind: KindBool},
	}
	intProp := &Property{
		Name: "Count", TypeName: "IntProperty",
		Metadata: &PropertyMetadata{Kind: MetaNone},
		Data:     &PropertyData{Kind: KindInt, Int: 7},
	}
	strProp := &Property{
		Name: "Greeting", TypeName: "StrProperty",
		Metadata: &PropertyMetadata{Kind: MetaNone},
		Data:     &PropertyData{Kind: KindUtf16Str, Str: "hi"},
	}
	enumProp := &Property{
		Name: "Tags", TypeName: "EnumProperty",
		Metadata: &PropertyMetadata{Kind: MetaEnum, EnumNameIndex: 18},
		Data:     &PropertyData{Kind: KindEnum, Enum: "ETag::First"},
	}
	mapProp := &Property{
		Name: "Scores", TypeName: "MapProperty",
		Metadata: &PropertyMetadata{Kind: MetaMap, MapKeyType: "ByteProperty", MapValType: "IntProperty"},
		Data: &PropertyData{
			Kind:       KindMap,
			MapKeyType: "ByteProperty",
			MapValType: "IntProperty",
			MapPairs: []MapPair{
				{Key: &PropertyData{Kind: KindByte, Byte: 1}, Value: &PropertyData{Kind: KindInt, Int: 100}},
			},
		},
	}
	structMapProp := &Property{
		Name: "Waypoints", TypeName: "MapProperty",
		Metadata: &PropertyMetadata{Kind: MetaMap, MapKeyType: "IntProperty", MapValType: "StructProperty"},
		Data: &PropertyData{
			Kind:       KindMap,
			MapKeyType: "IntProperty",
			MapValType: "StructProperty",
			MapPairs: []MapPair{
				{
					Key: &PropertyData{Kind: KindInt, Int: 0},
					Value: &PropertyData{Kind: KindStruct, Struct: []*Property{
						{Name: "X", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 1}},
						{Name: "Y", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 2}},
					}},
				},
				{
					Key: &PropertyData{Kind: KindInt, Int: 1},
					Value: &PropertyData{Kind: KindStruct, Struct: []*Property{
						{Name: "X", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 3}},
						{Name: "Y", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 4}},
					}},
				},
			},
		},
	}
	arrayProp := &Property{
		Name: "Inventory", TypeName: "ArrayProperty",
		Metadata: &PropertyMetadata{Kind: MetaArray, ArrayItemType: "StructProperty"},
		Data: &PropertyData{
			Kind:          KindArray,
			ArrayItemType: "StructProperty",
			ArraySchema: &ArraySchema{
				ElementName:     "Entry",
				ElementType:     "ItemStruct",
				ElementDataSize: 0,
				ElementArrIndex: 0,
				ArrayName:       "Items",
				Opaque:          [17]byte{9, 9, 9},
			},
			ArrayItems: []*PropertyData{
				{Kind: KindStruct, Struct: []*Property{
					{Name: "Entry", TypeName: "IntProperty", Metadata: &PropertyMetadata{Kind: MetaNone}, Data: &PropertyData{Kind: KindInt, Int: 3}},
				}},
			},
		},
	}

	return &Document{
		Summary:    summary,
		Properties: []*Property{boolProp, intProp, strProp, enumProp, mapProp, structMapProp, arrayProp},
	}
}

func TestDocumentBinaryRoundTrip(t *testing.T) {
	doc := buildTestDocument()

	data, err := doc.Encode(&Options{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := DecodeDocument(data, &Options{})
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}

	again, err := got.Encode(&Options{})
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if string(again) != string(data) {
		t.Fatalf("re-encoded bytes diverged: got %d bytes, want %d bytes", len(again), len(data))
	}

	if len(got.Properties) != len(doc.Properties) {
		t.Fatalf("decoded %d properties, want %d", len(got.Properties), len(doc.Properties))
	}
	if !reflect.DeepEqual(got.Properties[3].Data, doc.Properties[3].Data) {
		t.Errorf("enum property round-trip mismatch: got %+v, want %+v", got.Properties[3].Data, doc.Properties[3].Data)
	}
	if !reflect.DeepEqual(got.Properties[5].Data, doc.Properties[5].Data) {
		t.Errorf("struct-valued map property round-trip mismatch: got %+v, want %+v", got.Properties[5].Data, doc.Properties[5].Data)
	}
}

func TestDocumentRejectsNonZeroTrailer(t *testing.T) {
	doc := buildTestDocument()
	data, err := doc.Encode(&Options{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data[len(data)-1] = 0xFF

	if _, err := DecodeDocument(data, &Options{}); err == nil {
		t.Fatal("DecodeDocument with corrupted trailer: want error, got nil")
	}
}
