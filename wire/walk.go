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

import "errors"

// ErrTooManyWalkElem is returned by WalkEncoder.Add once MaxWalkElem names
// have already been added; the protocol caps Twalk at 16 components.
var ErrTooManyWalkElem = errors.New("wire: walk exceeds 16 path components")

// WalkEncoder incrementally builds a Twalk message: an opener writes the
// header, the two fids, and reserves the nwname field; Add appends one path
// component at a time; Finish back-patches nwname and the outer size. This
// three-phase shape lets a caller stream path components in (e.g. while
// splitting a path string) without knowing the final count up front.
type WalkEncoder struct {
	e         *encodeBuffer
	nwnameOff int
	n         int
}

// NewWalkEncoder opens a Twalk message from fid to newfid.
func NewWalkEncoder(tag Tag, fid, newfid FID) *WalkEncoder {
	e := newFrame(32, Twalk, tag)
	e.u32(uint32(fid))
	e.u32(uint32(newfid))
	nwnameOff := e.reserve(2)
	return &WalkEncoder{e: e, nwnameOff: nwnameOff}
}

// Add appends one path component. It returns ErrTooManyWalkElem past the
// protocol's 16-component cap.
func (w *WalkEncoder) Add(name string) error {
	if w.n >= MaxWalkElem {
		return ErrTooManyWalkElem
	}
	w.e.str(name)
	w.n++
	return nil
}

// Finish back-patches nwname and the frame size, returning the completed
// message.
func (w *WalkEncoder) Finish() []byte {
	w.e.putU16At(w.nwnameOff, uint16(w.n))
	return finishFrame(w.e)
}

// SplitWalkPath splits an input path on '/', skipping empty segments so
// that leading, trailing, and doubled slashes collapse. "." contributes no
// segment (current directory); ".." is passed through unchanged since
// popping a logical cwd is a client-side (shell) convenience outside this
// package's scope — the server sees it as an ordinary relative walk.
func SplitWalkPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				seg := path[start:i]
				if seg != "." {
					out = append(out, seg)
				}
			}
			start = i + 1
		}
	}
	return out
}
