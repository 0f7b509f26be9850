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
	"sync"

	"github.com/jacobsa/timeutil"

	"github.com/ninepkit/ninep/vfs"
	"github.com/ninepkit/ninep/wire"
)

// FS is an in-memory vfs.FS, rooted at a single directory.
type FS struct {
	clock timeutil.Clock

	mu       sync.Mutex
	nextPath uint64 // GUARDED_BY(mu)

	root *node
}

// New creates an empty filesystem, with clock used for mtime/atime
// bookkeeping (pass timeutil.RealClock() in production; a fake clock in
// tests).
func New(clock timeutil.Clock) *FS {
	fs := &FS{clock: clock}
	fs.root = newNode(fs, nil, "/", true, "root")
	return fs
}

// nextQid allocates a fresh Qid.Path, unique within this FS, tagging its Type
// bits to reflect whether the new node is a directory.
func (fs *FS) nextQid(isDir bool) wire.Qid {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.nextPath++

	var t uint8
	if isDir {
		t = wire.QTDIR
	}
	return wire.Qid{Type: t, Vers: 0, Path: fs.nextPath}
}

// Root returns the filesystem's root directory. memfs performs no
// per-user authentication; every attach succeeds.
func (fs *FS) Root(user vfs.User) (vfs.File, error) {
	return fs.root, nil
}
