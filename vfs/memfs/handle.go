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

package memfs

import (
	"io"

	"github.com/ninepkit/ninep/wire"
)

// handle is the vfs.Handle returned by node.Open/node.Create.
type handle struct {
	n *node
}

func (h *handle) Read(offset uint64, p []byte) (int, error) {
	h.n.mu.Lock()
	defer h.n.mu.Unlock()

	if h.n.isDir() {
		return h.readDirLocked(offset, p)
	}

	if offset > uint64(len(h.n.contents)) {
		return 0, io.EOF
	}
	n := copy(p, h.n.contents[offset:])
	return n, nil
}

// readDirLocked renders this directory's children as a sequence of
// back-to-back wire.EncodeStat records, as if the whole listing were one
// contiguous byte stream and offset/p were a window into it. Callers are
// expected to request offset 0 then advance by exactly the byte count
// returned each time (as session.ReadDir does), so offset always falls on
// a record boundary in practice; a mid-record offset simply omits that
// record rather than returning a partial one. A record is only appended
// once it's known to fit in p whole - no read ever returns a record
// truncated mid-body, so the next read's offset still lands on a boundary.
//
// SHARED_LOCKS_REQUIRED(h.n.mu)
func (h *handle) readDirLocked(offset uint64, p []byte) (int, error) {
	var pos uint64
	var out []byte
	for _, name := range h.n.sortedChildNames() {
		child := h.n.children[name]
		st, _ := child.Stat()
		rec := wire.EncodeStat(st)

		if pos+uint64(len(rec)) <= offset {
			pos += uint64(len(rec))
			continue
		}
		if pos >= offset {
			if len(out)+len(rec) > len(p) {
				break
			}
			out = append(out, rec...)
		}
		pos += uint64(len(rec))
	}
	n := copy(p, out)
	return n, nil
}

func (h *handle) Write(offset uint64, p []byte) (int, error) {
	h.n.mu.Lock()
	defer h.n.mu.Unlock()

	if h.n.isDir() {
		return 0, io.ErrShortWrite
	}

	newLen := offset + uint64(len(p))
	if uint64(len(h.n.contents)) < newLen {
		h.n.contents = append(h.n.contents, make([]byte, newLen-uint64(len(h.n.contents)))...)
	}
	n := copy(h.n.contents[offset:], p)
	h.n.mtime = uint32(h.n.clock.Now().Unix())
	return n, nil
}

func (h *handle) Close() error {
	return nil
}
