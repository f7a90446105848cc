// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import "fmt"

// NoneName is the sentinel string that terminates a property stream and a
// struct's child-property scope.
const NoneName = "None"

// NameTable is the ordered sequence of strings every property name and type
// reference indexes into (spec §3). Duplicates are permitted and preserved
// — the engine's own output may contain them, and byte-exact round-trip
// requires keeping them rather than deduplicating.
type NameTable struct {
	names []string
}

// NewNameTable builds a NameTable from an ordered slice of strings.
func NewNameTable(names []string) *NameTable {
	return &NameTable{names: append([]string(nil), names...)}
}

// Len returns the number of entries.
func (nt *NameTable) Len() int { return len(nt.names) }

// At returns the entry at index i, or an error if i is out of range.
func (nt *NameTable) At(i uint64) (string, error) {
	if i >= uint64(len(nt.names)) {
		return "", fmt.Errorf("%w: index %d out of range (table has %d entries)", ErrTruncatedInput, i, len(nt.names))
	}
	return nt.names[i], nil
}

// Entries returns the table's backing strings. Callers must not mutate the
// returned slice.
func (nt *NameTable) Entries() []string { return nt.names }

// Index returns the index of the first occurrence of name in the table.
// Encode-time lookups always use the first occurrence per spec §4.3.
func (nt *NameTable) Index(name string) (uint64, error) {
	for i, n := range nt.names {
		if n == name {
			return uint64(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNameNotFound, name)
}

// Has reports whether name appears anywhere in the table.
func (nt *NameTable) Has(name string) bool {
	for _, n := range nt.names {
		if n == name {
			return true
		}
	}
	return false
}
