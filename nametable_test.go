// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"errors"
	"testing"
)

func TestNameTableAt(t *testing.T) {
	nt := NewNameTable([]string{"None", "Health", "Health"})

	if got, err := nt.At(1); err != nil || got != "Health" {
		t.Errorf("At(1) = %q, %v, want %q, nil", got, err, "Health")
	}
	if _, err := nt.At(99); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("At(99) error = %v, want ErrTruncatedInput", err)
	}
}

func TestNameTableIndexFirstOccurrence(t *testing.T) {
	nt := NewNameTable([]string{"None", "Health", "Health"})

	idx, err := nt.Index("Health")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("Index(Health) = %d, want 1 (first occurrence)", idx)
	}
}

func TestNameTableIndexNotFound(t *testing.T) {
	nt := NewNameTable([]string{"None"})
	if _, err := nt.Index("Missing"); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("Index(Missing) error = %v, want ErrNameNotFound", err)
	}
}

func TestNameTableHas(t *testing.T) {
	nt := NewNameTable([]string{"None", "Health"})
	if !nt.Has("Health") {
		t.Error("Has(Health) = false, want true")
	}
	if nt.Has("Missing") {
		t.Error("Has(Missing) = true, want false")
	}
}
