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

package session

import (
	"io"
	"net"

	"github.com/ninepkit/ninep/evqueue"
	"github.com/ninepkit/ninep/task"
)

// connIO is the byte stream a serverConn reads framed messages from and
// writes replies to. Unlike the client Session (which has nothing better
// to do than block until its one outstanding call returns), a Server runs
// every connection's task under a scheduler that hands a single token
// around: blocking the calling goroutine in conn.Read would stall every
// other connection's task along with it. Implementations must instead
// suspend t and arrange for the scheduler to make it runnable again once
// the network is ready, rather than parking on the socket directly.
type connIO interface {
	ReadFull(t *task.Task, p []byte) error
	WriteFull(t *task.Task, p []byte) error
	Close() error
}

// newConnIO wraps conn in the best connIO this platform can offer: a
// non-blocking, evqueue-driven implementation where raw descriptor access
// is available, falling back to ordinary blocking I/O otherwise (notably
// on Windows, where driving a socket the same way an overlapped-I/O
// completion port expects needs per-operation plumbing this module does
// not yet wire up - see newNonblockingConnIO's platform-specific doc).
func newConnIO(conn net.Conn, queue evqueue.Queue, sched *task.Scheduler) connIO {
	if nb, err := newNonblockingConnIO(conn, queue, sched); err == nil {
		return nb
	}
	return &blockingConnIO{conn: conn}
}

// blockingConnIO is the fallback connIO: ordinary blocking net.Conn
// reads/writes. A task using it ties up the scheduler's single token for
// as long as the network call blocks, so it is correct only as a
// last-resort path, never the common case.
type blockingConnIO struct {
	conn net.Conn
}

func (b *blockingConnIO) ReadFull(t *task.Task, p []byte) error {
	_, err := io.ReadFull(b.conn, p)
	return err
}

func (b *blockingConnIO) WriteFull(t *task.Task, p []byte) error {
	_, err := b.conn.Write(p)
	return err
}

func (b *blockingConnIO) Close() error { return b.conn.Close() }
