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
	"fmt"
	"sort"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"

	"github.com/ninepkit/ninep/vfs"
	"github.com/ninepkit/ninep/wire"
)

// node is one file or directory in the tree.
type node struct {
	clock timeutil.Clock

	mu syncutil.InvariantMutex

	// INVARIANT: !(isDir() && len(contents) != 0)
	// INVARIANT: parent == nil iff this is the root
	qid      wire.Qid // GUARDED_BY(mu)
	mode     uint32   // GUARDED_BY(mu); high byte mirrors qid.Type
	atime    uint32   // GUARDED_BY(mu)
	mtime    uint32   // GUARDED_BY(mu)
	uid      string   // GUARDED_BY(mu)
	gid      string   // GUARDED_BY(mu)
	name     string   // GUARDED_BY(mu)
	contents []byte   // GUARDED_BY(mu), nil for directories

	parent   *node            // GUARDED_BY(mu), nil for the root
	children map[string]*node // GUARDED_BY(mu), nil for non-directories

	fs *FS
}

func (n *node) checkInvariants() {
	if n.isDir() && len(n.contents) != 0 {
		panic(fmt.Sprintf("directory %q has non-empty contents", n.name))
	}
	if n.isDir() && n.children == nil {
		panic(fmt.Sprintf("directory %q has a nil children map", n.name))
	}
}

// LOCKS_REQUIRED(n.mu)
func (n *node) isDir() bool {
	return n.mode&wire.DMDIR != 0
}

func newNode(fs *FS, parent *node, name string, isDir bool, uid string) *node {
	now := uint32(fs.clock.Now().Unix())
	n := &node{
		clock:  fs.clock,
		qid:    fs.nextQid(isDir),
		atime:  now,
		mtime:  now,
		uid:    uid,
		gid:    uid,
		name:   name,
		parent: parent,
		fs:     fs,
	}
	if isDir {
		n.mode = wire.DMDIR | 0o755
		n.children = make(map[string]*node)
	} else {
		n.mode = 0o644
	}
	n.mu = syncutil.NewInvariantMutex(n.checkInvariants)
	return n
}

func (n *node) Qid() wire.Qid {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.qid
}

func (n *node) Stat() (wire.Stat, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return wire.Stat{
		Type:   0,
		Dev:    0,
		Qid:    n.qid,
		Mode:   n.mode,
		Atime:  n.atime,
		Mtime:  n.mtime,
		Length: uint64(len(n.contents)),
		Name:   n.name,
		UID:    n.uid,
		GID:    n.gid,
		MUID:   n.uid,
	}, nil
}

func (n *node) Wstat(user vfs.User, patch wire.Stat) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	cur := wire.Stat{
		Mode:  n.mode,
		Atime: n.atime,
		Mtime: n.mtime,
		Name:  n.name,
		UID:   n.uid,
		GID:   n.gid,
	}
	merged := wire.ApplyWstat(cur, patch)

	n.mode = (n.mode &^ 0o777) | (merged.Mode & 0o777)
	n.atime = merged.Atime
	n.mtime = merged.Mtime
	n.uid = merged.UID
	n.gid = merged.GID

	if merged.Name != n.name && n.parent != nil {
		n.parent.mu.Lock()
		n.parent.children[merged.Name] = n.parent.children[n.name]
		delete(n.parent.children, n.name)
		n.parent.mu.Unlock()
		n.name = merged.Name
	}
	return nil
}

// Walk resolves a single path component against a directory node.
func (n *node) Walk(user vfs.User, name string) (vfs.File, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.isDir() {
		return nil, vfs.ErrNotDir
	}
	if n.mode&0o111 == 0 {
		return nil, vfs.ErrPermission
	}
	child, ok := n.children[name]
	if !ok {
		return nil, vfs.ErrNotFound
	}
	return child, nil
}

func (n *node) Create(user vfs.User, name string, perm uint32, mode uint8) (vfs.File, vfs.Handle, error) {
	n.mu.Lock()
	if !n.isDir() {
		n.mu.Unlock()
		return nil, nil, vfs.ErrNotDir
	}
	if n.mode&0o222 == 0 {
		n.mu.Unlock()
		return nil, nil, vfs.ErrPermission
	}
	if _, exists := n.children[name]; exists {
		n.mu.Unlock()
		return nil, nil, fmt.Errorf("memfs: %q already exists", name)
	}
	n.mu.Unlock()

	child := newNode(n.fs, n, name, perm&wire.DMDIR != 0, string(user))
	child.mu.Lock()
	child.mode = (child.mode &^ 0o777) | (perm & 0o777)
	child.mu.Unlock()

	n.mu.Lock()
	n.children[name] = child
	n.mtime = uint32(n.clock.Now().Unix())
	n.mu.Unlock()

	h, err := child.Open(user, mode)
	if err != nil {
		return nil, nil, err
	}
	return child, h, nil
}

func (n *node) Remove(user vfs.User) error {
	n.mu.Lock()
	if n.isDir() && len(n.children) != 0 {
		n.mu.Unlock()
		return vfs.ErrNotEmpty
	}
	parent := n.parent
	name := n.name
	n.mu.Unlock()

	if parent == nil {
		return fmt.Errorf("memfs: cannot remove root")
	}
	parent.mu.Lock()
	delete(parent.children, name)
	parent.mtime = uint32(parent.clock.Now().Unix())
	parent.mu.Unlock()
	return nil
}

func (n *node) Open(user vfs.User, mode uint8) (vfs.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	want := accessBitsFor(mode)
	if !n.hasAccessLocked(want) {
		return nil, vfs.ErrPermission
	}
	if mode&wire.OTRUNC != 0 && !n.isDir() {
		n.contents = nil
	}
	return &handle{n: n}, nil
}

// LOCKS_REQUIRED(n.mu)
func (n *node) hasAccessLocked(want uint32) bool {
	if want&wire.AREAD != 0 && n.mode&0o444 == 0 {
		return false
	}
	if want&wire.AWRITE != 0 && n.mode&0o222 == 0 {
		return false
	}
	if want&wire.AEXEC != 0 && n.mode&0o111 == 0 {
		return false
	}
	return true
}

func accessBitsFor(mode uint8) uint32 {
	switch mode & 0x3 {
	case wire.OREAD:
		return wire.AREAD
	case wire.OWRITE:
		return wire.AWRITE
	case wire.ORDWR:
		return wire.AREAD | wire.AWRITE
	case wire.OEXEC:
		return wire.AEXEC
	}
	return 0
}

// sortedChildNames returns this directory's child names in a stable
// order, for deterministic directory reads.
// SHARED_LOCKS_REQUIRED(n.mu)
func (n *node) sortedChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
