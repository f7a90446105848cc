// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

// PropertyKind discriminates the PropertyData sum type (spec §3). Modeled
// as a tag + struct rather than a dynamic attribute map, per spec.md §9's
// design note: the per-variant byte layouts are central and must not be
// erased behind a generic representation.
type PropertyKind int

const (
	KindUnknown PropertyKind = iota
	KindInt
	KindUInt16
	KindUInt32
	KindFloat
	KindBool
	KindByte
	KindEnum
	KindName
	KindStr
	KindUtf16Str
	KindStruct
	KindArray
	KindMap
)

// TypeName returns the NameTable type-name string this kind is referenced
// by. Str and Utf16Str share "StrProperty" — the encoding choice (UTF-8 vs
// UTF-16) is signaled by the sign of the Str payload's length field, not by
// a distinct type name (spec §3/§4.6).
func (k PropertyKind) TypeName() string {
	switch k {
	case KindInt:
		return "IntProperty"
	case KindUInt16:
		return "UInt16Property"
	case KindUInt32:
		return "UInt32Property"
	case KindFloat:
		return "FloatProperty"
	case KindBool:
		return "BoolProperty"
	case KindByte:
		return "ByteProperty"
	case KindEnum:
		return "EnumProperty"
	case KindName:
		return "NameProperty"
	case KindStr, KindUtf16Str:
		return "StrProperty"
	case KindStruct:
		return "StructProperty"
	case KindArray:
		return "ArrayProperty"
	case KindMap:
		return "MapProperty"
	default:
		return ""
	}
}

// kindFromTypeName maps a NameTable type-name string to a PropertyKind.
// Str resolves to KindStr; callers decoding an actual Str payload promote
// it to KindUtf16Str once they observe a negative length field. Returns
// KindUnknown (ok=false) for anything not in spec §3's fixed type list.
func kindFromTypeName(name string) (PropertyKind, bool) {
	switch name {
	case "IntProperty":
		return KindInt, true
	case "UInt16Property":
		return KindUInt16, true
	case "UInt32Property":
		return KindUInt32, true
	case "FloatProperty":
		return KindFloat, true
	case "BoolProperty":
		return KindBool, true
	case "ByteProperty":
		return KindByte, true
	case "EnumProperty":
		return KindEnum, true
	case "NameProperty":
		return KindName, true
	case "StrProperty":
		return KindStr, true
	case "StructProperty":
		return KindStruct, true
	case "ArrayProperty":
		return KindArray, true
	case "MapProperty":
		return KindMap, true
	default:
		return KindUnknown, false
	}
}
