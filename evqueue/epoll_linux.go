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

//go:build linux
// +build linux

package evqueue

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ninepkit/ninep/nerr"
)

// epollQueue implements Queue on top of Linux's epoll(7) family.
type epollQueue struct {
	mu   sync.Mutex
	fd   int
	keys map[int]interface{} // fd -> caller key, GUARDED_BY(mu)
}

// New creates the platform's native Queue backend.
func New() (Queue, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return &epollQueue{fd: fd, keys: make(map[int]interface{})}, nil
}

func toEpollEvents(i Interest) uint32 {
	var ev uint32
	if i&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if i&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (q *epollQueue) Add(fd int, interest Interest, key interface{}) error {
	q.mu.Lock()
	_, existed := q.keys[fd]
	q.keys[fd] = key
	q.mu.Unlock()

	ev := unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if existed {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(q.fd, op, fd, &ev); err != nil {
		return nerr.Wrap(nerr.DomainErrno, err)
	}
	return nil
}

func (q *epollQueue) Remove(fd int) error {
	q.mu.Lock()
	_, ok := q.keys[fd]
	delete(q.keys, fd)
	q.mu.Unlock()

	if !ok {
		return nil
	}
	if err := unix.EpollCtl(q.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return nerr.Wrap(nerr.DomainErrno, err)
	}
	return nil
}

func (q *epollQueue) Dequeue() ([]interface{}, error) {
	var events [64]unix.EpollEvent
	for {
		n, err := unix.EpollWait(q.fd, events[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, nerr.Wrap(nerr.DomainErrno, err)
		}

		q.mu.Lock()
		keys := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			if k, ok := q.keys[int(events[i].Fd)]; ok {
				keys = append(keys, k)
			}
		}
		q.mu.Unlock()
		return keys, nil
	}
}

func (q *epollQueue) Close() error {
	return unix.Close(q.fd)
}
