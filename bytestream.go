// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader wraps a byte stream with the fixed-width primitives the binary
// codec needs. Byte order is a parameter (see spec §4.1) even though in
// practice every uasset on disk is little-endian.
type Reader struct {
	r     io.ReadSeeker
	order binary.ByteOrder
}

// NewReader wraps r for little-endian decoding.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r, order: binary.LittleEndian}
}

// NewReaderOrder wraps r using an explicit byte order.
func NewReaderOrder(r io.ReadSeeker, order binary.ByteOrder) *Reader {
	return &Reader{r: r, order: order}
}

func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return buf, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadPackedString reads a u8 length L, L bytes of UTF-8, and a terminating
// zero byte (spec §4.1). Fails with ErrMalformedString if the terminator is
// non-zero.
func (r *Reader) ReadPackedString() (string, error) {
	l, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	raw, err := r.ReadExact(int(l))
	if err != nil {
		return "", err
	}
	term, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	if term != 0 {
		pos, _ := r.StreamPosition()
		return "", fmt.Errorf("%w at byte 0x%x", ErrMalformedString, pos)
	}
	return string(raw), nil
}

func (r *Reader) StreamPosition() (int64, error) {
	return r.r.Seek(0, io.SeekCurrent)
}

func (r *Reader) SeekRelative(n int64) error {
	_, err := r.r.Seek(n, io.SeekCurrent)
	return err
}

func (r *Reader) SeekAbsolute(pos int64) error {
	_, err := r.r.Seek(pos, io.SeekStart)
	return err
}

// Writer mirrors Reader for encoding.
type Writer struct {
	w     io.Writer
	order binary.ByteOrder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, order: binary.LittleEndian}
}

func NewWriterOrder(w io.Writer, order binary.ByteOrder) *Writer {
	return &Writer{w: w, order: order}
}

func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

func (w *Writer) WriteU8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

func (w *Writer) WriteU16(v uint16) error {
	b := make([]byte, 2)
	w.order.PutUint16(b, v)
	return w.WriteBytes(b)
}

func (w *Writer) WriteU32(v uint32) error {
	b := make([]byte, 4)
	w.order.PutUint32(b, v)
	return w.WriteBytes(b)
}

func (w *Writer) WriteU64(v uint64) error {
	b := make([]byte, 8)
	w.order.PutUint64(b, v)
	return w.WriteBytes(b)
}

func (w *Writer) WriteI32(v int32) error {
	return w.WriteU32(uint32(v))
}

func (w *Writer) WriteF32(v float32) error {
	return w.WriteU32(math.Float32bits(v))
}

// WritePackedString writes a u8 length, the string's bytes, and a
// terminating zero byte.
func (w *Writer) WritePackedString(s string) error {
	if len(s) > 255 {
		return fmt.Errorf("uasset: packed string too long (%d bytes)", len(s))
	}
	if err := w.WriteU8(uint8(len(s))); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteU8(0)
}

// newBuffer is a small convenience used throughout the data codec: encode a
// sub-structure into its own buffer to learn its length before committing it
// to the parent writer, mirroring how the original prototype accumulates a
// child Vec<u8> before writing it out.
func newBuffer() *bytes.Buffer {
	return &bytes.Buffer{}
}
