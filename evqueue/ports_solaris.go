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

//go:build solaris
// +build solaris

package evqueue

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ninepkit/ninep/nerr"
)

// portsQueue implements Queue on top of Solaris/illumos event ports
// (port_create(3C) / port_associate(3C) / port_get(3C)). Event ports are
// one-shot by nature: a fired association must be re-associated with
// Add before it will fire again, which this backend's callers already do
// (see Queue's doc comment on re-arming).
type portsQueue struct {
	mu   sync.Mutex
	port int
	keys map[int]interface{} // fd -> caller key, GUARDED_BY(mu)
}

// New creates the platform's native Queue backend.
func New() (Queue, error) {
	port, err := unix.PortCreate()
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return &portsQueue{port: port, keys: make(map[int]interface{})}, nil
}

func toPortEvents(i Interest) int {
	var ev int
	if i&Readable != 0 {
		ev |= unix.POLLIN
	}
	if i&Writable != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func (q *portsQueue) Add(fd int, interest Interest, key interface{}) error {
	q.mu.Lock()
	q.keys[fd] = key
	q.mu.Unlock()

	if err := unix.PortAssociate(q.port, unix.PORT_SOURCE_FD, fd, toPortEvents(interest)); err != nil {
		return nerr.Wrap(nerr.DomainErrno, err)
	}
	return nil
}

func (q *portsQueue) Remove(fd int) error {
	q.mu.Lock()
	_, ok := q.keys[fd]
	delete(q.keys, fd)
	q.mu.Unlock()

	if !ok {
		return nil
	}
	if err := unix.PortDissociate(q.port, unix.PORT_SOURCE_FD, fd); err != nil {
		return nerr.Wrap(nerr.DomainErrno, err)
	}
	return nil
}

func (q *portsQueue) Dequeue() ([]interface{}, error) {
	pe, err := unix.PortGet(q.port, nil)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if k, ok := q.keys[int(pe.Object)]; ok {
		return []interface{}{k}, nil
	}
	return nil, nil
}

func (q *portsQueue) Close() error {
	return unix.Close(q.port)
}
