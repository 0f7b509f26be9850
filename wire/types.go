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

// MType identifies the kind of a 9P2000 message on the wire.
type MType uint8

// Message types, in T/R pairs. Tauth/Rauth are decoded for completeness;
// session.Session never sends Tauth.
const (
	Tversion MType = 100 + iota
	Rversion
	Tauth
	Rauth
	Tattach
	Rattach
	_ // Terror is never sent on the wire
	Rerror
	Tflush
	Rflush
	Twalk
	Rwalk
	Topen
	Ropen
	Tcreate
	Rcreate
	Tread
	Rread
	Twrite
	Rwrite
	Tclunk
	Rclunk
	Tremove
	Rremove
	Tstat
	Rstat
	Twstat
	Rwstat
)

// MTypeNames gives a human-readable name for every message type, used by
// debug tracing.
var MTypeNames = map[MType]string{
	Tversion: "Tversion", Rversion: "Rversion",
	Tauth: "Tauth", Rauth: "Rauth",
	Tattach: "Tattach", Rattach: "Rattach",
	Rerror: "Rerror",
	Tflush: "Tflush", Rflush: "Rflush",
	Twalk: "Twalk", Rwalk: "Rwalk",
	Topen: "Topen", Ropen: "Ropen",
	Tcreate: "Tcreate", Rcreate: "Rcreate",
	Tread: "Tread", Rread: "Rread",
	Twrite: "Twrite", Rwrite: "Rwrite",
	Tclunk: "Tclunk", Rclunk: "Rclunk",
	Tremove: "Tremove", Rremove: "Rremove",
	Tstat: "Tstat", Rstat: "Rstat",
	Twstat: "Twstat", Rwstat: "Rwstat",
}

// Tag identifies one in-flight request/response pair within a session.
type Tag uint16

// NOTAG is used for the Tversion exchange, before any tag has meaning.
const NOTAG Tag = 0xFFFF

// FID is a 32-bit, client-chosen handle naming an open file within a
// session.
type FID uint32

// NOFID means "no auth fid" in Tattach, or "no fid" generally.
const NOFID FID = 0xFFFFFFFF

// Qid type bits (the high byte of a file's mode).
const (
	QTDIR    = 0x80
	QTAPPEND = 0x40
	QTEXCL   = 0x20
	QTMOUNT  = 0x10
	QTAUTH   = 0x08
	QTTMP    = 0x04
)

// Qid is the server's stable identity for a file. Two files on the same
// server are the same file iff their Qids are equal.
type Qid struct {
	Type uint8
	Vers uint32
	Path uint64
}

// Open/create mode bits (the low bits of Topen.Mode/Tcreate.Mode).
const (
	OREAD  = 0x0
	OWRITE = 0x1
	ORDWR  = 0x2
	OEXEC  = 0x3
	OTRUNC = 0x10
)

// Access bits gating Walk/Open per-user in the VFS interface.
const (
	AEXEC  = 1
	AWRITE = 2
	AREAD  = 4
)

// Dir mode bits, mirroring Qid.Type in the high byte plus rwx triples.
const (
	DMDIR    = 0x80000000
	DMAPPEND = 0x40000000
	DMEXCL   = 0x20000000
	DMTMP    = 0x04000000
)

// Version is the only protocol version this codec understands.
const Version = "9P2000"

// MaxWalkElem is the protocol-mandated cap on path components per Twalk.
const MaxWalkElem = 16

// RreadHeaderSize is the non-data overhead of an Rread message: 4 bytes of
// size, 1 of type, 2 of tag, 4 of count. A Tread's requested count must
// leave this much headroom inside msize for the reply envelope, rather
// than subtracting a fixed magic number that assumes a particular field
// layout.
const RreadHeaderSize = 4 + 1 + 2 + 4

// Stat is the decoded form of a 9P2000 stat record. In a Twstat request,
// any numeric field set to all-ones, or any string field set to the empty
// string, means "don't touch" that field.
type Stat struct {
	Type   uint16
	Dev    uint32
	Qid    Qid
	Mode   uint32
	Atime  uint32
	Mtime  uint32
	Length uint64
	Name   string
	UID    string
	GID    string
	MUID   string
}

// NoTouch32/NoTouch64 are the wstat sentinels meaning "don't touch this
// field".
const (
	NoTouch32 = 0xFFFFFFFF
	NoTouch64 = 0xFFFFFFFFFFFFFFFF
)

// NoTouchStat returns a Stat with every field set to its "don't touch"
// sentinel, suitable as a starting point for a partial Wstat (e.g. chmod).
func NoTouchStat() Stat {
	return Stat{
		Type:   NoTouch32 & 0xFFFF,
		Dev:    NoTouch32,
		Qid:    Qid{Type: 0xFF, Vers: NoTouch32, Path: NoTouch64},
		Mode:   NoTouch32,
		Atime:  NoTouch32,
		Mtime:  NoTouch32,
		Length: NoTouch64,
	}
}
