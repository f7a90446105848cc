// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import "bytes"

// Fuzz is a go-fuzz entrypoint exercising the round-trip invariant:
// decoding arbitrary bytes must never panic, and whatever decodes
// successfully must re-encode to the exact same bytes.
func Fuzz(data []byte) int {
	doc, err := DecodeDocument(data, &Options{Strict: true})
	if err != nil {
		return 0
	}

	out, err := doc.Encode(&Options{Strict: true})
	if err != nil {
		panic("uasset: decoded document failed to re-encode: " + err.Error())
	}
	if !bytes.Equal(data, out) {
		panic("uasset: re-encoded bytes diverged from the original input")
	}

	return 1
}
