// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// File is an open uasset container: the decoded Document plus the backing
// memory-mapped region, when one was opened from disk.
type File struct {
	Document *Document

	data mmap.MMap
	f    *os.File
	opts *Options
}

// Open memory-maps name and decodes its binary contents into a Document.
func Open(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	doc, err := DecodeDocument(data, opts)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &File{Document: doc, data: data, f: f, opts: opts}, nil
}

// NewBytes decodes an in-memory buffer into a Document without mapping a
// file.
func NewBytes(data []byte, opts *Options) (*File, error) {
	doc, err := DecodeDocument(data, opts)
	if err != nil {
		return nil, err
	}
	return &File{Document: doc, opts: opts}, nil
}

// Close releases the memory-mapped region and underlying file handle, if
// any were opened.
func (file *File) Close() error {
	if file.data != nil {
		if err := file.data.Unmap(); err != nil {
			return err
		}
	}
	if file.f != nil {
		return file.f.Close()
	}
	return nil
}
