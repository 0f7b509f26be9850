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

//go:build !windows
// +build !windows

package session

import (
	"io"
	"net"
	"syscall"

	"github.com/ninepkit/ninep/evqueue"
	"github.com/ninepkit/ninep/nerr"
	"github.com/ninepkit/ninep/task"
)

// nonblockingConnIO drives one connection's framed reads/writes through a
// raw, non-blocking file descriptor and an evqueue.Queue, so that EAGAIN
// suspends the calling task instead of blocking the thread it runs on.
// The descriptor is re-armed with queue.Add on every wait, matching the
// level-triggered-once-per-call contract evqueue.Queue documents.
type nonblockingConnIO struct {
	conn  net.Conn
	fd    int
	queue evqueue.Queue
	sched *task.Scheduler
}

// newNonblockingConnIO extracts conn's raw descriptor and puts it in
// non-blocking mode; the descriptor is registered with queue only when a
// read or write has to wait. It fails for any
// net.Conn that does not expose a raw descriptor (e.g. an in-memory
// net.Pipe used in tests), in which case the caller falls back to
// blockingConnIO.
func newNonblockingConnIO(conn net.Conn, queue evqueue.Queue, sched *task.Scheduler) (connIO, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, nerr.Newf(nerr.DomainErrno, "connection has no raw file descriptor")
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}

	var fd int
	var setErr error
	ctrlErr := rc.Control(func(f uintptr) {
		fd = int(f)
		setErr = syscall.SetNonblock(fd, true)
	})
	if ctrlErr != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, ctrlErr)
	}
	if setErr != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, setErr)
	}

	return &nonblockingConnIO{conn: conn, fd: fd, queue: queue, sched: sched}, nil
}

func (c *nonblockingConnIO) waitReadable(t *task.Task) {
	c.queue.Add(c.fd, evqueue.Readable, c.fd)
	c.sched.WaitKey(c.fd, t)
	t.Suspend()
}

func (c *nonblockingConnIO) waitWritable(t *task.Task) {
	c.queue.Add(c.fd, evqueue.Writable, c.fd)
	c.sched.WaitKey(c.fd, t)
	t.Suspend()
}

func (c *nonblockingConnIO) ReadFull(t *task.Task, p []byte) error {
	read := 0
	for read < len(p) {
		n, err := syscall.Read(c.fd, p[read:])
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			if err == syscall.EAGAIN {
				c.waitReadable(t)
				continue
			}
			return nerr.Wrap(nerr.DomainErrno, err)
		}
		if n == 0 {
			return io.EOF
		}
		read += n
	}
	return nil
}

func (c *nonblockingConnIO) WriteFull(t *task.Task, p []byte) error {
	written := 0
	for written < len(p) {
		n, err := syscall.Write(c.fd, p[written:])
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			if err == syscall.EAGAIN {
				c.waitWritable(t)
				continue
			}
			return nerr.Wrap(nerr.DomainErrno, err)
		}
		written += n
	}
	return nil
}

func (c *nonblockingConnIO) Close() error {
	c.queue.Remove(c.fd)
	return c.conn.Close()
}
