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

//go:build darwin || freebsd || netbsd || openbsd || dragonfly
// +build darwin freebsd netbsd openbsd dragonfly

package evqueue

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ninepkit/ninep/nerr"
)

// kqueueQueue implements Queue on top of the BSD/Darwin kqueue(2) family.
// Because kqueue identifies filters by (ident, filter) pairs rather than a
// single combined readiness mask, a fd registered for both Readable and
// Writable gets two independent filter registrations.
type kqueueQueue struct {
	mu   sync.Mutex
	fd   int
	keys map[int]interface{} // fd -> caller key, GUARDED_BY(mu)
}

// New creates the platform's native Queue backend.
func New() (Queue, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return &kqueueQueue{fd: fd, keys: make(map[int]interface{})}, nil
}

func (q *kqueueQueue) Add(fd int, interest Interest, key interface{}) error {
	q.mu.Lock()
	q.keys[fd] = key
	q.mu.Unlock()

	var changes []unix.Kevent_t
	if interest&Readable != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  unix.EV_ADD | unix.EV_CLEAR,
		})
	}
	if interest&Writable != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  unix.EV_ADD | unix.EV_CLEAR,
		})
	}
	if len(changes) == 0 {
		return nil
	}
	if _, err := unix.Kevent(q.fd, changes, nil, nil); err != nil {
		return nerr.Wrap(nerr.DomainErrno, err)
	}
	return nil
}

func (q *kqueueQueue) Remove(fd int) error {
	q.mu.Lock()
	_, ok := q.keys[fd]
	delete(q.keys, fd)
	q.mu.Unlock()

	if !ok {
		return nil
	}
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	// Either filter may not have been registered; kqueue's ENOENT for a
	// missing one is not an actionable error here.
	unix.Kevent(q.fd, changes, nil, nil)
	return nil
}

func (q *kqueueQueue) Dequeue() ([]interface{}, error) {
	var events [64]unix.Kevent_t
	for {
		n, err := unix.Kevent(q.fd, nil, events[:], nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, nerr.Wrap(nerr.DomainErrno, err)
		}

		q.mu.Lock()
		keys := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			if k, ok := q.keys[int(events[i].Ident)]; ok {
				keys = append(keys, k)
			}
		}
		q.mu.Unlock()
		return keys, nil
	}
}

func (q *kqueueQueue) Close() error {
	return unix.Close(q.fd)
}
