// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import "encoding/binary"

// encodeBuffer accumulates the bytes of one outgoing message, growing as
// fields are appended. Unlike the FUSE kernel ABI (fixed C structs punned
// via unsafe.Pointer), every 9P field is variable length, so this grows a
// plain []byte by explicit index arithmetic rather than overlaying a struct.
//
// Must be created with newEncodeBuffer.
type encodeBuffer struct {
	b []byte
}

func newEncodeBuffer(capacityHint int) *encodeBuffer {
	return &encodeBuffer{b: make([]byte, 0, capacityHint)}
}

func (e *encodeBuffer) Len() int { return len(e.b) }

func (e *encodeBuffer) Bytes() []byte { return e.b }

func (e *encodeBuffer) u8(v uint8) { e.b = append(e.b, v) }

func (e *encodeBuffer) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *encodeBuffer) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *encodeBuffer) u64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *encodeBuffer) str(s string) {
	e.u16(uint16(len(s)))
	e.b = append(e.b, s...)
}

func (e *encodeBuffer) qid(q Qid) {
	e.u8(q.Type)
	e.u32(q.Vers)
	e.u64(q.Path)
}

func (e *encodeBuffer) raw(p []byte) {
	e.b = append(e.b, p...)
}

// putU16At back-patches a previously reserved 16-bit slot at offset off.
func (e *encodeBuffer) putU16At(off int, v uint16) {
	binary.LittleEndian.PutUint16(e.b[off:off+2], v)
}

// putU32At back-patches a previously reserved 32-bit slot at offset off.
func (e *encodeBuffer) putU32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(e.b[off:off+4], v)
}

// reserve appends n zero bytes and returns the offset they start at, for a
// field that will be back-patched later (size, nwname, count).
func (e *encodeBuffer) reserve(n int) int {
	off := len(e.b)
	for i := 0; i < n; i++ {
		e.b = append(e.b, 0)
	}
	return off
}

// decodeCursor reads fields sequentially out of a fixed byte slice,
// refusing any read that would run past the end: "skip n bytes and decode
// a typed field, or return an error" rather than "skip n bytes and hand
// back a raw pointer", since 9P bodies are variable-length, not fixed-size
// kernel structs.
type decodeCursor struct {
	b   []byte
	pos int
}

func newDecodeCursor(b []byte) *decodeCursor {
	return &decodeCursor{b: b}
}

// ErrShort is returned when a decode reads past the end of the supplied
// bytes.
var ErrShort = &DecodeError{"short message"}

// DecodeError is a protocol decode error: malformed framing or a body
// field that runs past the declared size.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string { return "wire: " + e.Msg }

func (d *decodeCursor) remaining() int { return len(d.b) - d.pos }

func (d *decodeCursor) u8() (uint8, error) {
	if d.remaining() < 1 {
		return 0, ErrShort
	}
	v := d.b[d.pos]
	d.pos++
	return v, nil
}

func (d *decodeCursor) u16() (uint16, error) {
	if d.remaining() < 2 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint16(d.b[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decodeCursor) u32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint32(d.b[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decodeCursor) u64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint64(d.b[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decodeCursor) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	if d.remaining() < int(n) {
		return "", ErrShort
	}
	s := string(d.b[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

func (d *decodeCursor) qid() (Qid, error) {
	var q Qid
	var err error
	if q.Type, err = d.u8(); err != nil {
		return q, err
	}
	if q.Vers, err = d.u32(); err != nil {
		return q, err
	}
	if q.Path, err = d.u64(); err != nil {
		return q, err
	}
	return q, nil
}

// bytesN consumes exactly n bytes and returns a slice aliasing the
// underlying buffer; callers that need to retain the bytes must copy.
func (d *decodeCursor) bytesN(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, ErrShort
	}
	b := d.b[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// atEnd reports whether every byte of the cursor has been consumed. Used by
// Decode to enforce "the inner position never exceeds size" and that it
// doesn't fall short either.
func (d *decodeCursor) atEnd() bool { return d.pos == len(d.b) }
