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

package evqueue

// Interest is the set of readiness conditions a caller can subscribe a
// file descriptor to.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// Queue is the contract every platform backend satisfies. A Queue tracks
// a set of (fd, key) subscriptions; when Dequeue reports a key, that fd's
// interest has fired at least once. Callers in this module call Add again
// before every wait, which every backend accepts: the epoll backend
// registers level-triggered and modifies an existing registration, the
// kqueue backend registers with EV_CLEAR, and Solaris event ports are
// one-shot and need the fresh association.
type Queue interface {
	// Add (re-)registers fd for the given interest, associated with an
	// opaque key that Dequeue will report back when it fires.
	Add(fd int, interest Interest, key interface{}) error

	// Remove cancels a prior Add for fd. It is not an error to Remove an
	// fd that was never added.
	Remove(fd int) error

	// Dequeue blocks until at least one registered fd becomes ready (or
	// the queue is closed), then returns the keys of everything that
	// fired. It satisfies task.Sleeper.
	Dequeue() (keys []interface{}, err error)

	// Close releases the underlying OS handle. Subsequent calls to any
	// method are invalid.
	Close() error
}
