// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	names := NewNameTable([]string{"None", "IntProperty", "BoolProperty", "ArrayProperty", "MapProperty"})

	tests := []struct {
		name string
		meta *PropertyMetadata
	}{
		{"none", &PropertyMetadata{Kind: MetaNone}},
		{"bool true", &PropertyMetadata{Kind: MetaBool, BoolValue: true}},
		{"bool false", &PropertyMetadata{Kind: MetaBool, BoolValue: false}},
		{"byte", &PropertyMetadata{Kind: MetaByte, ByteEnumNameIndex: 5, ByteTag: 7}},
		{"enum", &PropertyMetadata{Kind: MetaEnum, EnumNameIndex: 5}},
		{"array", &PropertyMetadata{Kind: MetaArray, ArrayItemType: "IntProperty"}},
		{"map", &PropertyMetadata{Kind: MetaMap, MapKeyType: "IntProperty", MapValType: "BoolProperty"}},
		{"struct", &PropertyMetadata{Kind: MetaStruct, StructGUID: [25]byte{1, 2, 3, 4, 5}}},
	}

	typeForKind := map[MetadataKind]string{
		MetaNone:   "IntProperty",
		MetaBool:   "BoolProperty",
		MetaByte:   "ByteProperty",
		MetaEnum:   "EnumProperty",
		MetaArray:  "ArrayProperty",
		MetaMap:    "MapProperty",
		MetaStruct: "StructProperty",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typeName := typeForKind[tt.meta.Kind]
			nt := names
			if !nt.Has(typeName) {
				nt = NewNameTable(append(append([]string{}, nt.Entries()...), typeName))
			}

			buf := newBuffer()
			if err := encodeMetadata(NewWriter(buf), nt, tt.meta); err != nil {
				t.Fatalf("encodeMetadata failed: %v", err)
			}

			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := decodeMetadata(r, typeName, nt, &Options{})
			if err != nil {
				t.Fatalf("decodeMetadata failed: %v", err)
			}
			if *got != *tt.meta {
				t.Errorf("decodeMetadata = %+v, want %+v", got, tt.meta)
			}
		})
	}
}
