// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "  "

// EmitText renders a Document in the textual dialect (spec §4.8): a
// base64 summary line followed by an indented property tree.
func EmitText(doc *Document) (string, error) {
	var b strings.Builder

	token, err := SummaryToBase64(doc.Summary)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	b.WriteString("summary: ")
	b.WriteString(token)
	b.WriteString("\ncontents:\n")

	for _, p := range doc.Properties {
		if err := emitProperty(&b, 1, doc.Summary.NameTable, p); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeIndent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString(indentUnit)
	}
}

func emitProperty(b *strings.Builder, indent int, names *NameTable, p *Property) error {
	writeIndent(b, indent)
	b.WriteString(p.Name)
	if p.ArrIndex > 0 {
		fmt.Fprintf(b, "[%d]", p.ArrIndex)
	}
	b.WriteString(": ")
	return emitPropertyValue(b, indent, names, p)
}

// emitPropertyValue writes the value-form for a top-level property, where
// p.Metadata carries per-kind side-channel bytes not available to nested
// array/map elements.
func emitPropertyValue(b *strings.Builder, indent int, names *NameTable, p *Property) error {
	d := p.Data
	switch d.Kind {
	case KindBool:
		if p.Metadata.BoolValue {
			b.WriteString("true\n")
		} else {
			b.WriteString("false\n")
		}
		return nil
	case KindByte:
		fmt.Fprintf(b, "!ByteProperty %x %x %x\n", p.Metadata.ByteEnumNameIndex, p.Metadata.ByteTag, d.Byte)
		return nil
	case KindEnum:
		enumType, err := names.At(p.Metadata.EnumNameIndex)
		if err != nil {
			return fmt.Errorf("property %q: enum type name: %w", p.Name, err)
		}
		fmt.Fprintf(b, "!EnumProperty %s %s\n", enumType, rewriteEnumQualifier(d.Enum))
		return nil
	case KindStruct:
		fmt.Fprintf(b, "!struct %s\n", base64.StdEncoding.EncodeToString(p.Metadata.StructGUID[:]))
		for _, child := range d.Struct {
			if err := emitProperty(b, indent+1, names, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return emitScalarOrContainer(b, indent, names, d)
	}
}

// emitScalarOrContainer writes value-forms shared between top-level
// properties and nested array/map elements: everything except Bool,
// Byte, Enum, and Struct, which need Property.Metadata that nested
// elements don't carry.
func emitScalarOrContainer(b *strings.Builder, indent int, names *NameTable, d *PropertyData) error {
	switch d.Kind {
	case KindInt:
		fmt.Fprintf(b, "!i32 %d\n", d.Int)
	case KindUInt16:
		fmt.Fprintf(b, "!u16 %d\n", d.UInt16)
	case KindUInt32:
		fmt.Fprintf(b, "!u32 %d\n", d.UInt32)
	case KindFloat:
		b.WriteString(formatFloat32(d.Float))
		b.WriteString("\n")
	case KindName:
		fmt.Fprintf(b, "!name %s\n", escapeNewlines(d.Name))
	case KindStr:
		if d.Str == "" {
			b.WriteString("!EmptyString\n")
		} else {
			b.WriteString(quoteStr(d.Str))
			b.WriteString("\n")
		}
	case KindUtf16Str:
		fmt.Fprintf(b, "!utf16 %s\n", escapeNewlines(d.Str))
	case KindArray:
		return emitArray(b, indent, names, d)
	case KindMap:
		return emitMap(b, indent, names, d)
	default:
		return fmt.Errorf("uasset: cannot emit nested property kind %v", d.Kind)
	}
	return nil
}

// emitNestedValue writes a value-form for an array item or map key/value,
// where Bool, Byte, and Enum carry their value directly on PropertyData
// instead of on a Property.Metadata that doesn't exist at this level.
func emitNestedValue(b *strings.Builder, indent int, names *NameTable, d *PropertyData) error {
	switch d.Kind {
	case KindBool:
		if d.Bool {
			b.WriteString("true\n")
		} else {
			b.WriteString("false\n")
		}
		return nil
	case KindByte:
		fmt.Fprintf(b, "!byte %x\n", d.Byte)
		return nil
	case KindEnum:
		fmt.Fprintf(b, "!EnumMember %s\n", rewriteEnumQualifier(d.Enum))
		return nil
	case KindStruct:
		for _, child := range d.Struct {
			if err := emitProperty(b, indent+1, names, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return emitScalarOrContainer(b, indent, names, d)
	}
}

func emitArray(b *strings.Builder, indent int, names *NameTable, d *PropertyData) error {
	b.WriteString("!Array\n")
	writeIndent(b, indent+1)
	fmt.Fprintf(b, "item_type: %s\n", d.ArrayItemType)

	if d.ArrayItemType == "StructProperty" && d.ArraySchema != nil {
		writeIndent(b, indent+1)
		b.WriteString("item_schema:\n")
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "name: %s\n", d.ArraySchema.ElementName)
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "type: %s\n", d.ArraySchema.ElementType)
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "data_size: %d\n", d.ArraySchema.ElementDataSize)
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "arr_index: %d\n", d.ArraySchema.ElementArrIndex)
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "opaque: %s\n", base64.StdEncoding.EncodeToString(d.ArraySchema.Opaque[:]))
		writeIndent(b, indent+1)
		fmt.Fprintf(b, "array_name: %s\n", d.ArraySchema.ArrayName)
	}

	writeIndent(b, indent+1)
	b.WriteString("items:\n")
	for i, item := range d.ArrayItems {
		writeIndent(b, indent+2)
		fmt.Fprintf(b, "- %d: ", i)
		if item.Kind == KindStruct {
			b.WriteString("\n")
		}
		if err := emitNestedValue(b, indent+2, names, item); err != nil {
			return fmt.Errorf("array element %d: %w", i, err)
		}
	}
	return nil
}

func emitMap(b *strings.Builder, indent int, names *NameTable, d *PropertyData) error {
	b.WriteString("!Map\n")
	writeIndent(b, indent+1)
	fmt.Fprintf(b, "key_type: %s\n", d.MapKeyType)
	writeIndent(b, indent+1)
	fmt.Fprintf(b, "val_type: %s\n", d.MapValType)
	writeIndent(b, indent+1)
	b.WriteString("map_data:\n")

	for i, pair := range d.MapPairs {
		writeIndent(b, indent+2)
		b.WriteString("- ")
		keyTok, err := inlineToken(names, pair.Key)
		if err != nil {
			return fmt.Errorf("map key %d: %w", i, err)
		}
		b.WriteString(keyTok)
		b.WriteString(": ")
		if pair.Value.Kind == KindStruct {
			b.WriteString("\n")
		}
		if err := emitNestedValue(b, indent+2, names, pair.Value); err != nil {
			return fmt.Errorf("map value %d: %w", i, err)
		}
	}
	return nil
}

// inlineToken renders a map key as the single-line token that precedes
// its ':' separator. Map keys observed in practice are scalar.
func inlineToken(names *NameTable, d *PropertyData) (string, error) {
	switch d.Kind {
	case KindBool:
		return strconv.FormatBool(d.Bool), nil
	case KindByte:
		return fmt.Sprintf("!byte %x", d.Byte), nil
	case KindInt:
		return fmt.Sprintf("!i32 %d", d.Int), nil
	case KindUInt16:
		return fmt.Sprintf("!u16 %d", d.UInt16), nil
	case KindUInt32:
		return fmt.Sprintf("!u32 %d", d.UInt32), nil
	case KindFloat:
		return formatFloat32(d.Float), nil
	case KindEnum:
		return fmt.Sprintf("!EnumMember %s", rewriteEnumQualifier(d.Enum)), nil
	case KindName:
		return fmt.Sprintf("!name %s", escapeNewlines(d.Name)), nil
	case KindStr:
		if d.Str == "" {
			return "!EmptyString", nil
		}
		return quoteStr(d.Str), nil
	case KindUtf16Str:
		return fmt.Sprintf("!utf16 %s", escapeNewlines(d.Str)), nil
	default:
		return "", fmt.Errorf("uasset: map key kind %v has no single-line form", d.Kind)
	}
}

func rewriteEnumQualifier(member string) string {
	return strings.ReplaceAll(member, "::", "->")
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

// quoteStr quotes s whenever emitting it bare would parse back as a
// different variant: a bool literal, a leading-'!' tag (including
// "!EmptyString"), or anything strconv.ParseFloat would accept as a
// float32.
func quoteStr(s string) string {
	if strings.ContainsAny(s, " \t\"#:\n") {
		return strconv.Quote(s)
	}
	if s == "true" || s == "false" {
		return strconv.Quote(s)
	}
	if strings.HasPrefix(s, "!") {
		return strconv.Quote(s)
	}
	if _, err := strconv.ParseFloat(s, 32); err == nil {
		return strconv.Quote(s)
	}
	return s
}

// formatFloat32 renders f with the shortest decimal representation that
// round-trips exactly through a 32-bit IEEE-754 parse (spec §4.8/§9).
func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
