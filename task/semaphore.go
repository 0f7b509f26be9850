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

// Semaphore is a counting semaphore for tasks scheduled by a single
// Scheduler. Waiters are served in FIFO order: the task that has been
// blocked longest is the first one made runnable by a Post.
type Semaphore struct {
	sched   *Scheduler
	count   int
	waiters []*Task
}

// NewSemaphore creates a semaphore with the given initial count.
func NewSemaphore(sched *Scheduler, initial int) *Semaphore {
	return &Semaphore{sched: sched, count: initial}
}

// Wait decrements the count, blocking the calling task until it can do so
// without going negative.
func (s *Semaphore) Wait(t *Task) {
	if s.count > 0 {
		s.count--
		return
	}
	s.waiters = append(s.waiters, t)
	t.Suspend()
}

// Post increments the count, or, if a task is waiting, hands its unit of
// count directly to the longest-waiting task instead.
func (s *Semaphore) Post() {
	if len(s.waiters) == 0 {
		s.count++
		return
	}
	t := s.waiters[0]
	s.waiters = s.waiters[1:]
	s.sched.Runnable(t)
}
