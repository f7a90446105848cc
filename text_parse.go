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

// lineScanner walks a textual document one non-empty, indent-normalized
// line at a time, with the ability to push a line back for an enclosing
// scope to re-consume — the line-oriented equivalent of the byte-cursor
// seek-back spec §4.9 describes.
type lineScanner struct {
	lines []string
	pos   int
}

func newLineScanner(text string) *lineScanner {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = normalizeIndent(l)
	}
	return &lineScanner{lines: lines}
}

// normalizeIndent treats a leading tab as equivalent to two spaces (spec
// §4.8).
func normalizeIndent(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	var b strings.Builder
	for j := 0; j < i; j++ {
		if line[j] == '\t' {
			b.WriteString(indentUnit)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(line[i:])
	return b.String()
}

// nextNonEmpty returns the next non-blank line, advancing past it.
// Returns "" at EOF.
func (s *lineScanner) nextNonEmpty() string {
	for s.pos < len(s.lines) {
		l := s.lines[s.pos]
		s.pos++
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}

// unread pushes the most recently returned line back onto the scanner.
func (s *lineScanner) unread() {
	s.pos--
}

// checkIndent reports whether line's first n characters are spaces
// (spec §4.9).
func checkIndent(line string, n int) bool {
	if len(line) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if line[i] != ' ' {
			return false
		}
	}
	return true
}

// splitAtTopColon splits on the first ':' not inside a double-quoted
// span, so quoted Str keys/values containing ':' parse correctly.
func splitAtTopColon(s string) (left, right string, ok bool) {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inQuotes {
				i++
			}
		case '"':
			inQuotes = !inQuotes
		case ':':
			if !inQuotes {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// ParseText parses the textual dialect (spec §4.9) into a Document.
func ParseText(text string, opts *Options) (*Document, error) {
	sc := newLineScanner(text)

	line := sc.nextNonEmpty()
	const summaryPrefix = "summary:"
	if !strings.HasPrefix(line, summaryPrefix) {
		return nil, fmt.Errorf("%w: expected \"summary:\" line", ErrMalformedText)
	}
	token := strings.TrimSpace(strings.TrimPrefix(line, summaryPrefix))
	summary, err := SummaryFromBase64(token)
	if err != nil {
		return nil, err
	}

	line = sc.nextNonEmpty()
	if strings.TrimSpace(line) != "contents:" {
		return nil, fmt.Errorf("%w: expected \"contents:\" line", ErrMalformedText)
	}

	props, err := parsePropertyList(sc, 1, summary.NameTable)
	if err != nil {
		return nil, err
	}

	doc := &Document{Summary: summary, Properties: props}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// parsePropertyList parses sibling property lines at the given indent
// level until a dedent or EOF, pushing the terminating line back.
func parsePropertyList(sc *lineScanner, indent int, names *NameTable) ([]*Property, error) {
	prefix := strings.Repeat(indentUnit, indent)
	var props []*Property
	for {
		line := sc.nextNonEmpty()
		if line == "" {
			break
		}
		if !checkIndent(line, len(prefix)) {
			sc.unread()
			break
		}
		p, err := parsePropertyLine(sc, indent, names, line[len(prefix):])
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func parsePropertyLine(sc *lineScanner, indent int, names *NameTable, content string) (*Property, error) {
	left, right, ok := splitAtTopColon(content)
	if !ok {
		return nil, fmt.Errorf("%w: property line missing ':'", ErrMalformedText)
	}
	name, arrIndex, err := parseNameAndIndex(strings.TrimSpace(left))
	if err != nil {
		return nil, err
	}

	data, meta, typeName, err := parseValue(sc, indent, names, true, strings.TrimSpace(right))
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}

	return &Property{
		Name:     name,
		TypeName: typeName,
		ArrIndex: arrIndex,
		Metadata: meta,
		Data:     data,
	}, nil
}

func parseNameAndIndex(left string) (string, uint32, error) {
	if !strings.HasSuffix(left, "]") {
		return left, 0, nil
	}
	open := strings.LastIndex(left, "[")
	if open < 0 {
		return left, 0, nil
	}
	n, err := strconv.ParseUint(left[open+1:len(left)-1], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad array index in %q", ErrMalformedText, left)
	}
	return left[:open], uint32(n), nil
}

// parseValue dispatches a property's right-hand-side value form. topLevel
// distinguishes forms needing Property.Metadata (Bool, Byte, Enum,
// Struct's GUID) from the metadata-free forms nested array items and map
// entries use for the same kinds.
func parseValue(sc *lineScanner, indent int, names *NameTable, topLevel bool, right string) (*PropertyData, *PropertyMetadata, string, error) {
	switch {
	case right == "":
		children, err := parsePropertyList(sc, indent+1, names)
		if err != nil {
			return nil, nil, "", err
		}
		data := &PropertyData{Kind: KindStruct, Struct: children}
		if topLevel {
			return data, &PropertyMetadata{Kind: MetaStruct}, "StructProperty", nil
		}
		return data, nil, "StructProperty", nil

	case topLevel && strings.HasPrefix(right, "!struct "):
		b64 := strings.TrimPrefix(right, "!struct ")
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, nil, "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
		if len(raw) != 25 {
			return nil, nil, "", fmt.Errorf("%w: struct metadata must be 25 bytes", ErrMalformedText)
		}
		var guid [25]byte
		copy(guid[:], raw)
		children, err := parsePropertyList(sc, indent+1, names)
		if err != nil {
			return nil, nil, "", err
		}
		return &PropertyData{Kind: KindStruct, Struct: children},
			&PropertyMetadata{Kind: MetaStruct, StructGUID: guid}, "StructProperty", nil

	case topLevel && strings.HasPrefix(right, "!ByteProperty "):
		fields := strings.Fields(strings.TrimPrefix(right, "!ByteProperty "))
		if len(fields) != 3 {
			return nil, nil, "", fmt.Errorf("%w: !ByteProperty wants 3 hex fields", ErrMalformedText)
		}
		enumIdx, err1 := strconv.ParseUint(fields[0], 16, 64)
		tag, err2 := strconv.ParseUint(fields[1], 16, 8)
		val, err3 := strconv.ParseUint(fields[2], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, nil, "", fmt.Errorf("%w: malformed !ByteProperty fields", ErrMalformedText)
		}
		return &PropertyData{Kind: KindByte, Byte: uint8(val)},
			&PropertyMetadata{Kind: MetaByte, ByteEnumNameIndex: enumIdx, ByteTag: uint8(tag)}, "ByteProperty", nil

	case topLevel && strings.HasPrefix(right, "!EnumProperty "):
		rest := strings.TrimPrefix(right, "!EnumProperty ")
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, nil, "", fmt.Errorf("%w: !EnumProperty wants type and member", ErrMalformedText)
		}
		enumType := rest[:sp]
		idx, err := names.Index(enumType)
		if err != nil {
			return nil, nil, "", fmt.Errorf("enum type %q: %w", enumType, err)
		}
		member := unrewriteEnumQualifier(rest[sp+1:])
		return &PropertyData{Kind: KindEnum, Enum: member},
			&PropertyMetadata{Kind: MetaEnum, EnumNameIndex: idx}, "EnumProperty", nil

	case right == "!Array":
		return parseArrayValue(sc, indent, names)

	case right == "!Map":
		return parseMapValue(sc, indent, names)

	default:
		data, err := parseScalarToken(right)
		if err != nil {
			return nil, nil, "", err
		}
		if !topLevel {
			return data, nil, data.Kind.TypeName(), nil
		}
		switch data.Kind {
		case KindBool:
			return &PropertyData{Kind: KindBool},
				&PropertyMetadata{Kind: MetaBool, BoolValue: data.Bool}, "BoolProperty", nil
		case KindByte, KindEnum:
			return nil, nil, "", fmt.Errorf("%w: %q requires its full tag at top level", ErrMalformedText, right)
		default:
			return data, &PropertyMetadata{Kind: MetaNone}, data.Kind.TypeName(), nil
		}
	}
}

// parseScalarToken parses the metadata-free value forms shared by array
// items and map keys/values (plus, via parseValue's default case, the
// top-level forms that need no metadata).
func parseScalarToken(tok string) (*PropertyData, error) {
	switch {
	case tok == "true" || tok == "false":
		return &PropertyData{Kind: KindBool, Bool: tok == "true"}, nil
	case strings.HasPrefix(tok, "!i32 "):
		n, err := strconv.ParseInt(strings.TrimPrefix(tok, "!i32 "), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad !i32 value %q", ErrMalformedText, tok)
		}
		return &PropertyData{Kind: KindInt, Int: int32(n)}, nil
	case strings.HasPrefix(tok, "!u16 "):
		n, err := strconv.ParseUint(strings.TrimPrefix(tok, "!u16 "), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: bad !u16 value %q", ErrMalformedText, tok)
		}
		return &PropertyData{Kind: KindUInt16, UInt16: uint16(n)}, nil
	case strings.HasPrefix(tok, "!u32 "):
		n, err := strconv.ParseUint(strings.TrimPrefix(tok, "!u32 "), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad !u32 value %q", ErrMalformedText, tok)
		}
		return &PropertyData{Kind: KindUInt32, UInt32: uint32(n)}, nil
	case strings.HasPrefix(tok, "!byte "):
		n, err := strconv.ParseUint(strings.TrimPrefix(tok, "!byte "), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: bad !byte value %q", ErrMalformedText, tok)
		}
		return &PropertyData{Kind: KindByte, Byte: uint8(n)}, nil
	case strings.HasPrefix(tok, "!EnumMember "):
		return &PropertyData{Kind: KindEnum, Enum: unrewriteEnumQualifier(strings.TrimPrefix(tok, "!EnumMember "))}, nil
	case strings.HasPrefix(tok, "!name "):
		return &PropertyData{Kind: KindName, Name: unescapeNewlines(strings.TrimPrefix(tok, "!name "))}, nil
	case strings.HasPrefix(tok, "!utf16 "):
		return &PropertyData{Kind: KindUtf16Str, Str: unescapeNewlines(strings.TrimPrefix(tok, "!utf16 "))}, nil
	case tok == "!EmptyString":
		return &PropertyData{Kind: KindStr, Str: ""}, nil
	default:
		if f, err := strconv.ParseFloat(tok, 32); err == nil {
			return &PropertyData{Kind: KindFloat, Float: float32(f)}, nil
		}
		return &PropertyData{Kind: KindStr, Str: unquoteStr(tok)}, nil
	}
}

func expectKeyValue(sc *lineScanner, indent int, wantKey string) (string, error) {
	line := sc.nextNonEmpty()
	key, val, ok := splitKeyValue(line, indent)
	if !ok || key != wantKey {
		return "", fmt.Errorf("%w: expected %q:", ErrMalformedText, wantKey)
	}
	return val, nil
}

func expectKeyOnly(sc *lineScanner, indent int, wantKey string) error {
	val, err := expectKeyValue(sc, indent, wantKey)
	if err != nil {
		return err
	}
	if val != "" {
		return fmt.Errorf("%w: expected %q: with no value", ErrMalformedText, wantKey)
	}
	return nil
}

func splitKeyValue(line string, indent int) (key, value string, ok bool) {
	prefix := strings.Repeat(indentUnit, indent)
	if !strings.HasPrefix(line, prefix) {
		return "", "", false
	}
	left, right, ok := splitAtTopColon(line[len(prefix):])
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(left), strings.TrimSpace(right), true
}

// parseArrayValue parses the !Array block: item_type, an optional
// item_schema for struct arrays, array_name, and the items list.
func parseArrayValue(sc *lineScanner, indent int, names *NameTable) (*PropertyData, *PropertyMetadata, string, error) {
	child := indent + 1

	itemType, err := expectKeyValue(sc, child, "item_type")
	if err != nil {
		return nil, nil, "", err
	}
	d := &PropertyData{Kind: KindArray, ArrayItemType: itemType}

	if itemType == "StructProperty" {
		if err := expectKeyOnly(sc, child, "item_schema"); err != nil {
			return nil, nil, "", err
		}
		schema := &ArraySchema{}
		if schema.ElementName, err = expectKeyValue(sc, child+1, "name"); err != nil {
			return nil, nil, "", err
		}
		if schema.ElementType, err = expectKeyValue(sc, child+1, "type"); err != nil {
			return nil, nil, "", err
		}
		dataSizeStr, err := expectKeyValue(sc, child+1, "data_size")
		if err != nil {
			return nil, nil, "", err
		}
		dataSize, err := strconv.ParseUint(dataSizeStr, 10, 32)
		if err != nil {
			return nil, nil, "", fmt.Errorf("%w: bad data_size %q", ErrMalformedText, dataSizeStr)
		}
		schema.ElementDataSize = uint32(dataSize)
		arrIndexStr, err := expectKeyValue(sc, child+1, "arr_index")
		if err != nil {
			return nil, nil, "", err
		}
		arrIndex, err := strconv.ParseUint(arrIndexStr, 10, 32)
		if err != nil {
			return nil, nil, "", fmt.Errorf("%w: bad arr_index %q", ErrMalformedText, arrIndexStr)
		}
		schema.ElementArrIndex = uint32(arrIndex)
		opaqueStr, err := expectKeyValue(sc, child+1, "opaque")
		if err != nil {
			return nil, nil, "", err
		}
		opaque, err := base64.StdEncoding.DecodeString(opaqueStr)
		if err != nil || len(opaque) != 17 {
			return nil, nil, "", fmt.Errorf("%w: array item_schema opaque must be 17 bytes", ErrInvalidBase64)
		}
		copy(schema.Opaque[:], opaque)

		if schema.ArrayName, err = expectKeyValue(sc, child, "array_name"); err != nil {
			return nil, nil, "", err
		}
		d.ArraySchema = schema
	}

	if err := expectKeyOnly(sc, child, "items"); err != nil {
		return nil, nil, "", err
	}
	items, err := parseItemsList(sc, child+1, names, itemType)
	if err != nil {
		return nil, nil, "", err
	}
	d.ArrayItems = items

	return d, &PropertyMetadata{Kind: MetaArray, ArrayItemType: itemType}, "ArrayProperty", nil
}

func parseItemsList(sc *lineScanner, indent int, names *NameTable, itemType string) ([]*PropertyData, error) {
	prefix := strings.Repeat(indentUnit, indent)
	var items []*PropertyData
	for {
		line := sc.nextNonEmpty()
		if line == "" {
			break
		}
		if !checkIndent(line, len(prefix)) {
			sc.unread()
			break
		}
		rest := strings.TrimPrefix(line[len(prefix):], "- ")
		_, right, ok := splitAtTopColon(rest)
		if !ok {
			return nil, fmt.Errorf("%w: array item missing ':'", ErrMalformedText)
		}
		data, _, _, err := parseValue(sc, indent, names, false, strings.TrimSpace(right))
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(items), err)
		}
		items = append(items, data)
	}
	return items, nil
}

// parseMapValue parses the !Map block: key_type, val_type, and map_data
// entries.
func parseMapValue(sc *lineScanner, indent int, names *NameTable) (*PropertyData, *PropertyMetadata, string, error) {
	child := indent + 1

	keyType, err := expectKeyValue(sc, child, "key_type")
	if err != nil {
		return nil, nil, "", err
	}
	valType, err := expectKeyValue(sc, child, "val_type")
	if err != nil {
		return nil, nil, "", err
	}
	if err := expectKeyOnly(sc, child, "map_data"); err != nil {
		return nil, nil, "", err
	}

	pairs, err := parseMapEntries(sc, child+1, names, valType)
	if err != nil {
		return nil, nil, "", err
	}

	return &PropertyData{Kind: KindMap, MapKeyType: keyType, MapValType: valType, MapPairs: pairs},
		&PropertyMetadata{Kind: MetaMap, MapKeyType: keyType, MapValType: valType}, "MapProperty", nil
}

func parseMapEntries(sc *lineScanner, indent int, names *NameTable, valType string) ([]MapPair, error) {
	prefix := strings.Repeat(indentUnit, indent)
	var pairs []MapPair
	for {
		line := sc.nextNonEmpty()
		if line == "" {
			break
		}
		if !checkIndent(line, len(prefix)) {
			sc.unread()
			break
		}
		rest := strings.TrimPrefix(line[len(prefix):], "- ")
		keyTok, valTok, ok := splitAtTopColon(rest)
		if !ok {
			return nil, fmt.Errorf("%w: map entry missing ':'", ErrMalformedText)
		}
		key, err := parseScalarToken(strings.TrimSpace(keyTok))
		if err != nil {
			return nil, fmt.Errorf("map key %d: %w", len(pairs), err)
		}
		val, _, _, err := parseValue(sc, indent, names, false, strings.TrimSpace(valTok))
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", len(pairs), err)
		}
		pairs = append(pairs, MapPair{Key: key, Value: val})
	}
	return pairs, nil
}

func unquoteStr(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		if s, err := strconv.Unquote(tok); err == nil {
			return s
		}
	}
	return unescapeNewlines(tok)
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func unrewriteEnumQualifier(member string) string {
	return strings.ReplaceAll(member, "->", "::")
}

// validateDocument enforces spec §4.9's post-parse invariant: every map
// value's and array item's variant must match its declared type.
func validateDocument(doc *Document) error {
	for _, p := range doc.Properties {
		if err := validateData(p.Data); err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
	}
	return nil
}

func validateData(d *PropertyData) error {
	switch d.Kind {
	case KindStruct:
		for _, child := range d.Struct {
			if err := validateData(child.Data); err != nil {
				return fmt.Errorf("field %q: %w", child.Name, err)
			}
		}
	case KindArray:
		for i, item := range d.ArrayItems {
			if !kindMatchesDeclaredType(item.Kind, d.ArrayItemType) {
				return fmt.Errorf("%w: array element %d is %s, want %s", ErrTypeMismatch, i, item.Kind.TypeName(), d.ArrayItemType)
			}
			if err := validateData(item); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
	case KindMap:
		for i, pair := range d.MapPairs {
			if !kindMatchesDeclaredType(pair.Key.Kind, d.MapKeyType) {
				return fmt.Errorf("%w: map key %d is %s, want %s", ErrTypeMismatch, i, pair.Key.Kind.TypeName(), d.MapKeyType)
			}
			if !kindMatchesDeclaredType(pair.Value.Kind, d.MapValType) {
				return fmt.Errorf("%w: map value %d is %s, want %s", ErrTypeMismatch, i, pair.Value.Kind.TypeName(), d.MapValType)
			}
			if err := validateData(pair.Value); err != nil {
				return fmt.Errorf("map value %d: %w", i, err)
			}
		}
	}
	return nil
}

func kindMatchesDeclaredType(kind PropertyKind, typeName string) bool {
	want, ok := kindFromTypeName(typeName)
	if !ok {
		return kind == KindStruct
	}
	if want == KindStr {
		return kind == KindStr || kind == KindUtf16Str
	}
	return kind == want
}
