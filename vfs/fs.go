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

package vfs

import (
	"errors"

	"github.com/ninepkit/ninep/wire"
)

// ErrPermission is returned by Walk/Open/Create when the access bits the
// caller requested are not held by User against the target file.
var ErrPermission = errors.New("vfs: permission denied")

// ErrNotDir is returned by Walk when the current file is not a directory.
var ErrNotDir = errors.New("vfs: not a directory")

// ErrNotFound is returned by Walk when no child with the given name
// exists.
var ErrNotFound = errors.New("vfs: no such file or directory")

// ErrNotEmpty is returned by Remove on a non-empty directory.
var ErrNotEmpty = errors.New("vfs: directory not empty")

// User identifies the principal on whose behalf a call is made, matching
// Stat.UID/GID strings rather than any numeric ID; this module does no
// authentication, only the access-bit bookkeeping the wire protocol
// requires of a server.
type User string

// File is one node in a server's directory tree: the polymorphic "file"
// the protocol's Walk/Open/Create/Remove/Stat/Wstat messages operate on.
// Implementations must be safe for concurrent use.
type File interface {
	// Qid returns this file's stable identity.
	Qid() wire.Qid

	// Walk resolves name (a single path component, never "/") against
	// this file, which must be a directory. It returns ErrPermission if
	// user lacks AEXEC on this directory, ErrNotDir if this is not a
	// directory, or ErrNotFound if no child matches.
	Walk(user User, name string) (File, error)

	// Open prepares this file for Read/Write/Close with the given mode
	// (wire.OREAD/OWRITE/ORDWR/OEXEC, optionally OR'd with OTRUNC). It
	// returns ErrPermission if user lacks the access bit the mode
	// implies.
	Open(user User, mode uint8) (Handle, error)

	// Create makes a new child of this directory with the given name,
	// permission bits (the rwx triples of wire.Stat.Mode, plus
	// wire.DMDIR if it should be a directory), and open mode, then opens
	// it exactly as Open would. It returns ErrPermission if user lacks
	// AWRITE on this directory.
	Create(user User, name string, perm uint32, mode uint8) (File, Handle, error)

	// Remove deletes this file from its parent. It returns ErrNotEmpty
	// if this is a non-empty directory.
	Remove(user User) error

	// Stat returns this file's current metadata.
	Stat() (wire.Stat, error)

	// Wstat applies a partial stat record (see wire.ApplyWstat) to this
	// file's metadata.
	Wstat(user User, patch wire.Stat) error
}

// Handle is a file opened for data transfer, returned by File.Open or
// File.Create.
type Handle interface {
	// Read reads up to len(p) bytes starting at offset. Reading a
	// directory handle returns a sequence of back-to-back
	// wire.EncodeStat records rather than arbitrary bytes, matching the
	// wire protocol's own convention for directory reads.
	Read(offset uint64, p []byte) (int, error)

	// Write writes p at offset, returning the number of bytes accepted.
	Write(offset uint64, p []byte) (int, error)

	// Close releases any resources associated with this handle. The
	// server calls it when the owning fid is clunked or removed.
	Close() error
}

// FS is a complete file tree, the root collaborator a session.Server is
// constructed with.
type FS interface {
	// Root returns the file attach should resolve to; called once per
	// Tattach.
	Root(user User) (File, error)
}
