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

// Task is one cooperatively-scheduled unit of work. Create one with
// Scheduler.Spawn.
type Task struct {
	name  string
	sched *Scheduler

	resume  chan struct{} // scheduler -> task: "you have the token"
	yielded chan struct{} // task -> scheduler: "I no longer want it"

	queued bool // GUARDED_BY(sched.mu): already on the runnable queue
	dead   bool // GUARDED_BY(sched.mu): Exit has been called
}

// Name returns the task's diagnostic name, set at Spawn.
func (t *Task) Name() string { return t.name }

// Yield appends the task to the tail of the runnable queue and hands
// control back to the scheduler; the task runs again only after every
// other currently-runnable task has had its turn.
func (t *Task) Yield() {
	t.sched.requeueAndPause(t)
}

// Suspend hands control back to the scheduler without requeuing; the task
// runs again only once something calls Scheduler.Runnable(t) (typically a
// WaitObject.Notify, a Semaphore.Post, or an I/O readiness event).
func (t *Task) Suspend() {
	t.sched.pause(t)
}

// Exit marks the task dead, runs cleanup (if non-nil) on the task's own
// goroutine, and then hands control back to the scheduler permanently. The entry function must return immediately after
// calling Exit; the task will never be resumed.
func (t *Task) Exit(cleanup func()) {
	t.sched.finish(t, cleanup)
}
