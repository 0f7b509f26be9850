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

// TwriteHeaderSize is the non-data overhead of a Twrite message: 4 size +
// 1 type + 2 tag + 4 fid + 8 offset + 4 count.
const TwriteHeaderSize = headerSize + 4 + 8 + 4

// MaxWriteData returns the largest data payload that fits in a single
// Twrite within the given msize ceiling.
func MaxWriteData(msize uint32) int {
	n := int(msize) - TwriteHeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// WriteEncoder incrementally builds a Twrite message: the opener writes
// the header (fid, offset) and reserves the count field; Append copies
// data directly into the send buffer; Finish back-patches count and the
// outer size. Callers are expected to have already clamped the data they
// pass to Append to MaxWriteData(msize) - the encoder itself does not
// truncate.
type WriteEncoder struct {
	e       *encodeBuffer
	countOff int
	n       int
}

// NewWriteEncoder opens a Twrite message for fid at the given offset.
func NewWriteEncoder(tag Tag, fid FID, offset uint64) *WriteEncoder {
	e := newFrame(TwriteHeaderSize, Twrite, tag)
	e.u32(uint32(fid))
	e.u64(offset)
	countOff := e.reserve(4)
	return &WriteEncoder{e: e, countOff: countOff}
}

// Append copies data into the message body.
func (w *WriteEncoder) Append(data []byte) {
	w.e.raw(data)
	w.n += len(data)
}

// Finish back-patches the count and frame size, returning the completed
// message.
func (w *WriteEncoder) Finish() []byte {
	w.e.putU32At(w.countOff, uint32(w.n))
	return finishFrame(w.e)
}
