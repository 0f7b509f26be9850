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

//go:build windows
// +build windows

package evqueue

import (
	"sync"

	"golang.org/x/sys/windows"

	"github.com/ninepkit/ninep/nerr"
)

// iocpQueue implements Queue atop a Windows I/O completion port. IOCP is a
// completion-based API, not a readiness-based one like epoll/kqueue: Add
// associates a handle with the port once (CreateIoCompletionPort), and
// Dequeue's GetQueuedCompletionStatus wakes when an outstanding overlapped
// operation on that handle finishes, whereas the caller's own transport
// code is responsible for the handle having overlapped I/O outstanding
// before it calls Add. The Interest parameter is accepted for symmetry
// with the other backends but otherwise unused: a completion port does
// not distinguish read-ready from write-ready, only "an operation
// completed."
type iocpQueue struct {
	mu   sync.Mutex
	port windows.Handle
	keys map[windows.Handle]interface{} // GUARDED_BY(mu)
}

// New creates the platform's native Queue backend.
func New() (Queue, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainWin32, err)
	}
	return &iocpQueue{port: port, keys: make(map[windows.Handle]interface{})}, nil
}

func (q *iocpQueue) Add(fd int, interest Interest, key interface{}) error {
	h := windows.Handle(fd)
	if _, err := windows.CreateIoCompletionPort(h, q.port, uintptr(h), 0); err != nil {
		return nerr.Wrap(nerr.DomainWin32, err)
	}
	q.mu.Lock()
	q.keys[h] = key
	q.mu.Unlock()
	return nil
}

func (q *iocpQueue) Remove(fd int) error {
	q.mu.Lock()
	delete(q.keys, windows.Handle(fd))
	q.mu.Unlock()
	return nil
}

func (q *iocpQueue) Dequeue() ([]interface{}, error) {
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped

	err := windows.GetQueuedCompletionStatus(q.port, &bytes, &key, &overlapped, windows.INFINITE)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainWin32, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if k, ok := q.keys[windows.Handle(key)]; ok {
		return []interface{}{k}, nil
	}
	return nil, nil
}

func (q *iocpQueue) Close() error {
	return windows.CloseHandle(q.port)
}
