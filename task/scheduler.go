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

package task

import "sync"

// Sleeper is the blocking half of an event queue: Dequeue blocks until at
// least one subscribed handle is ready, then returns the keys (whatever
// identifier was registered for that handle) that became runnable. The
// task package depends only on this narrow interface, not on evqueue
// directly, so it can be tested without a real platform backend.
type Sleeper interface {
	Dequeue() (keys []interface{}, err error)
}

// Scheduler owns the FIFO runnable queue and hands a single token back and
// forth between Task goroutines, so that exactly one is ever making
// progress. The zero value is not usable; create one with NewScheduler.
type Scheduler struct {
	mu        sync.Mutex
	runnableQ []*Task
	sleeper   Sleeper

	// byKey maps an arbitrary key (typically an evqueue handle) to the task
	// blocked waiting on it, so that Dequeue results can be turned back into
	// Runnable calls. Registered via WaitKey/forgotten via ForgetKey.
	byKey map[interface{}]*Task
}

// NewScheduler creates a scheduler. sleeper may be nil if this scheduler
// will never be asked to sleep (Run(true) with no pending I/O).
func NewScheduler(sleeper Sleeper) *Scheduler {
	return &Scheduler{sleeper: sleeper, byKey: make(map[interface{}]*Task)}
}

// Spawn creates a new task running entry, and appends it to the runnable
// queue. entry must call t.Exit before returning.
func (s *Scheduler) Spawn(name string, entry func(t *Task)) *Task {
	t := &Task{
		name:    name,
		sched:   s,
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}

	go func() {
		<-t.resume
		entry(t)
	}()

	s.Runnable(t)
	return t
}

// Runnable appends t to the tail of the runnable queue. Idempotent if t is
// already queued.
func (s *Scheduler) Runnable(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.dead || t.queued {
		return
	}
	t.queued = true
	s.runnableQ = append(s.runnableQ, t)
}

// WaitKey registers t as the task to make runnable the next time Dequeue
// reports key as ready. Used by evqueue integration (session's
// nonblockingConnIO registers the descriptor it waits on).
func (s *Scheduler) WaitKey(key interface{}, t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[key] = t
}

// ForgetKey removes a registration made by WaitKey, e.g. after a retry
// succeeds without needing to wait.
func (s *Scheduler) ForgetKey(key interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, key)
}

// requeueAndPause implements Task.Yield.
func (s *Scheduler) requeueAndPause(t *Task) {
	s.Runnable(t)
	t.yielded <- struct{}{}
	<-t.resume
}

// pause implements Task.Suspend: hand back control without requeuing.
func (s *Scheduler) pause(t *Task) {
	t.yielded <- struct{}{}
	<-t.resume
}

// finish implements Task.Exit.
func (s *Scheduler) finish(t *Task, cleanup func()) {
	s.mu.Lock()
	t.dead = true
	s.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	t.yielded <- struct{}{}
}

// Run drives the scheduler loop. If any
// task other than the caller is runnable, it runs the head of the queue to
// its next suspension point, then returns. If nothing is runnable and
// sleep is true, it blocks in the sleeper's Dequeue and marks every task
// keyed by a returned event runnable, looping until something is
// runnable. If sleep is false and nothing is runnable, it returns
// immediately.
//
// A typical driver loop calls Run(true) forever; a typical single-shot
// caller (e.g. a test wanting deterministic steps) calls Run(false)
// repeatedly and checks HasRunnable between calls.
func (s *Scheduler) Run(sleep bool) {
	for {
		s.mu.Lock()
		if len(s.runnableQ) == 0 {
			s.mu.Unlock()
			if !sleep || s.sleeper == nil {
				return
			}
			s.sleepAndWake()
			continue
		}

		next := s.runnableQ[0]
		s.runnableQ = s.runnableQ[1:]
		next.queued = false
		s.mu.Unlock()

		next.resume <- struct{}{}
		<-next.yielded
		return
	}
}

// RunAll repeatedly calls Run(sleep) until the runnable queue is empty and
// (if sleep) the sleeper has nothing left to report; a convenience for
// drivers that want to drain every currently-runnable task in one call.
func (s *Scheduler) RunAll(sleep bool) {
	for s.HasRunnable() || sleep {
		before := s.HasRunnable()
		s.Run(sleep)
		if !before && !s.HasRunnable() {
			return
		}
	}
}

// HasRunnable reports whether any task is currently queued to run.
func (s *Scheduler) HasRunnable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runnableQ) > 0
}

func (s *Scheduler) sleepAndWake() {
	keys, err := s.sleeper.Dequeue()
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if t, ok := s.byKey[k]; ok {
			delete(s.byKey, k)
			if !t.dead && !t.queued {
				t.queued = true
				s.runnableQ = append(s.runnableQ, t)
			}
		}
	}
}
