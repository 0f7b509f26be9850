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

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !solaris && !windows
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!dragonfly,!solaris,!windows

package evqueue

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ninepkit/ninep/nerr"
)

// pollQueue is the fallback backend for platforms with no dedicated
// readiness-notification facility wired in: it re-scans every registered
// fd with poll(2) each time Dequeue is called. O(n) in the number of
// registered fds rather than O(1), but correct everywhere unix.Poll is
// available. Unlike the other backends, Dequeue does not block when no fd
// is registered: it returns an error at once.
type pollQueue struct {
	mu      sync.Mutex
	fds     map[int]Interest
	keys    map[int]interface{}
	closeCh chan struct{}
}

// New creates the platform's native Queue backend.
func New() (Queue, error) {
	return &pollQueue{
		fds:     make(map[int]Interest),
		keys:    make(map[int]interface{}),
		closeCh: make(chan struct{}),
	}, nil
}

func (q *pollQueue) Add(fd int, interest Interest, key interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fds[fd] = interest
	q.keys[fd] = key
	return nil
}

func (q *pollQueue) Remove(fd int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.fds, fd)
	delete(q.keys, fd)
	return nil
}

func toPollEvents(i Interest) int16 {
	var ev int16
	if i&Readable != 0 {
		ev |= unix.POLLIN
	}
	if i&Writable != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func (q *pollQueue) Dequeue() ([]interface{}, error) {
	for {
		select {
		case <-q.closeCh:
			return nil, nerr.Newf(nerr.DomainErrno, "evqueue: closed")
		default:
		}

		q.mu.Lock()
		fds := make([]unix.PollFd, 0, len(q.fds))
		order := make([]int, 0, len(q.fds))
		for fd, interest := range q.fds {
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: toPollEvents(interest)})
			order = append(order, fd)
		}
		q.mu.Unlock()

		if len(fds) == 0 {
			return nil, nerr.Newf(nerr.DomainErrno, "evqueue: Dequeue called with no registered fds")
		}

		n, err := unix.Poll(fds, 250)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, nerr.Wrap(nerr.DomainErrno, err)
		}
		if n == 0 {
			continue
		}

		q.mu.Lock()
		var keys []interface{}
		for i, pfd := range fds {
			if pfd.Revents != 0 {
				if k, ok := q.keys[order[i]]; ok {
					keys = append(keys, k)
				}
			}
		}
		q.mu.Unlock()
		if len(keys) > 0 {
			return keys, nil
		}
	}
}

func (q *pollQueue) Close() error {
	close(q.closeCh)
	return nil
}
