// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import "fmt"

// MetadataKind discriminates the PropertyMetadata side-channel (spec §3).
type MetadataKind int

const (
	MetaNone MetadataKind = iota
	MetaArray
	MetaBool
	MetaByte
	MetaEnum
	MetaMap
	MetaStruct
)

// PropertyMetadata is the per-property-type side-channel that rides between
// the header and the data payload for some kinds. Its bytes are not
// derivable from the data (spec.md §9) and must be carried verbatim so
// encode reproduces the source exactly.
type PropertyMetadata struct {
	Kind MetadataKind

	ArrayItemType string // Array(item_type_name)

	BoolValue bool // Bool(value)

	ByteEnumNameIndex uint64 // Byte(enum_name_index, tag)
	ByteTag           uint8

	EnumNameIndex uint64 // Enum(enum_name_index)

	MapKeyType string // Map(key_type_name, value_type_name)
	MapValType string

	StructGUID [25]byte // Struct(25 opaque bytes, e.g. a GUID block)
}

// metadataKindForTypeName picks the metadata shape for a given type-name
// string. Unknown types get MetaNone (one padding byte), per spec §4.5's
// best-effort fallback.
func metadataKindForTypeName(typeName string) MetadataKind {
	switch typeName {
	case "ArrayProperty":
		return MetaArray
	case "BoolProperty":
		return MetaBool
	case "ByteProperty":
		return MetaByte
	case "EnumProperty":
		return MetaEnum
	case "MapProperty":
		return MetaMap
	case "StructProperty":
		return MetaStruct
	default:
		return MetaNone
	}
}

func decodeMetadata(r *Reader, typeName string, names *NameTable, opts *Options) (*PropertyMetadata, error) {
	kind := metadataKindForTypeName(typeName)
	if kind == MetaNone {
		if _, ok := kindFromTypeName(typeName); !ok {
			opts.helper().Warnf("uasset: unhandled property type %q, treating as struct", typeName)
		}
	}

	m := &PropertyMetadata{Kind: kind}
	switch kind {
	case MetaArray:
		idx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		itemType, err := names.At(idx)
		if err != nil {
			return nil, fmt.Errorf("array item type: %w", err)
		}
		m.ArrayItemType = itemType
		if _, err := r.ReadU8(); err != nil { // padding
			return nil, err
		}
	case MetaBool:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		m.BoolValue = v != 0
		if _, err := r.ReadU8(); err != nil { // padding
			return nil, err
		}
	case MetaByte:
		idx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		m.ByteEnumNameIndex = idx
		tag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		m.ByteTag = tag
	case MetaEnum:
		idx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		m.EnumNameIndex = idx
		if _, err := r.ReadU8(); err != nil { // padding
			return nil, err
		}
	case MetaMap:
		keyIdx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		keyType, err := names.At(keyIdx)
		if err != nil {
			return nil, fmt.Errorf("map key type: %w", err)
		}
		valIdx, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		valType, err := names.At(valIdx)
		if err != nil {
			return nil, fmt.Errorf("map value type: %w", err)
		}
		m.MapKeyType = keyType
		m.MapValType = valType
		if _, err := r.ReadU8(); err != nil { // padding
			return nil, err
		}
		if _, err := r.ReadU32(); err != nil { // reserved "num removed" slot
			return nil, err
		}
	case MetaStruct:
		guid, err := r.ReadExact(25)
		if err != nil {
			return nil, err
		}
		copy(m.StructGUID[:], guid)
	default: // MetaNone: Float, Str, Name, UInt16, UInt32, Int, and unhandled types
		if _, err := r.ReadU8(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func encodeMetadata(w *Writer, names *NameTable, m *PropertyMetadata) error {
	switch m.Kind {
	case MetaArray:
		idx, err := names.Index(m.ArrayItemType)
		if err != nil {
			return err
		}
		if err := w.WriteU64(idx); err != nil {
			return err
		}
		return w.WriteU8(0)
	case MetaBool:
		var v uint8
		if m.BoolValue {
			v = 1
		}
		if err := w.WriteU8(v); err != nil {
			return err
		}
		return w.WriteU8(0)
	case MetaByte:
		if err := w.WriteU64(m.ByteEnumNameIndex); err != nil {
			return err
		}
		return w.WriteU8(m.ByteTag)
	case MetaEnum:
		if err := w.WriteU64(m.EnumNameIndex); err != nil {
			return err
		}
		return w.WriteU8(0)
	case MetaMap:
		keyIdx, err := names.Index(m.MapKeyType)
		if err != nil {
			return err
		}
		valIdx, err := names.Index(m.MapValType)
		if err != nil {
			return err
		}
		if err := w.WriteU64(keyIdx); err != nil {
			return err
		}
		if err := w.WriteU64(valIdx); err != nil {
			return err
		}
		if err := w.WriteU8(0); err != nil {
			return err
		}
		return w.WriteU32(0)
	case MetaStruct:
		return w.WriteBytes(m.StructGUID[:])
	default:
		return w.WriteU8(0)
	}
}
