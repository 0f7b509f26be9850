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

package transport

import (
	"io"
	"net"

	"github.com/ninepkit/ninep/nerr"
)

// Flag controls how a Handle is created.
type Flag uint8

const (
	// CLOEXEC asks the underlying descriptor not to be inherited by child
	// processes spawned after it is opened.
	CLOEXEC Flag = 1 << iota
	// NONBLOCK puts the descriptor in non-blocking mode, for use with an
	// evqueue.Queue rather than blocking Read/Write calls.
	NONBLOCK
)

// Handle is a byte stream a session can Read from and Write to: a TCP
// connection or a local pipe. It wraps io.ReadWriteCloser rather than
// defining its own read/write syscalls directly, so the same Handle works
// uniformly across TCP, Unix-socket, and named-pipe transports without
// platform-specific plumbing at every call site.
type Handle struct {
	rwc io.ReadWriteCloser
}

// NewHandle wraps an already-established connection.
func NewHandle(rwc io.ReadWriteCloser) *Handle {
	return &Handle{rwc: rwc}
}

// Read reads into p, returning the number of bytes read. It blocks until
// at least one byte is available or the connection is closed.
func (h *Handle) Read(p []byte) (int, error) {
	n, err := h.rwc.Read(p)
	if err != nil && err != io.EOF {
		return n, nerr.Wrap(nerr.DomainErrno, err)
	}
	return n, err
}

// Write writes all of p, blocking until every byte is accepted or an
// error occurs.
func (h *Handle) Write(p []byte) (int, error) {
	n, err := h.rwc.Write(p)
	if err != nil {
		return n, nerr.Wrap(nerr.DomainErrno, err)
	}
	return n, nil
}

// Close releases the underlying connection.
func (h *Handle) Close() error {
	return h.rwc.Close()
}

// RawConn exposes the underlying net.Conn and reports whether one was
// available, for callers (notably evqueue registration) that need the
// raw file descriptor. A Handle wrapping a non-net.Conn stream (e.g. a
// Windows named pipe) reports ok=false.
func (h *Handle) RawConn() (conn net.Conn, ok bool) {
	conn, ok = h.rwc.(net.Conn)
	return conn, ok
}
