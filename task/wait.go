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

// WaitObject is a single-slot, single-waiter rendezvous: one task calls
// Wait, another calls Notify, and whichever happens first is remembered
// until the other side arrives. It is not a condition variable; a second
// Wait before the first Notify is consumed is a caller bug.
type WaitObject struct {
	sched *Scheduler
	// waiter is the task currently blocked in Wait, or nil.
	waiter *Task
	// signaled is true if Notify arrived before any task called Wait.
	signaled bool
}

// NewWaitObject creates a wait object driven by sched.
func NewWaitObject(sched *Scheduler) *WaitObject {
	return &WaitObject{sched: sched}
}

// Wait blocks the calling task until Notify is called, or returns
// immediately if Notify already fired since the last Wait.
func (w *WaitObject) Wait(t *Task) {
	if w.signaled {
		w.signaled = false
		return
	}
	w.waiter = t
	t.Suspend()
}

// Notify wakes the task blocked in Wait, or, if none is currently waiting,
// remembers the signal for the next call to Wait.
func (w *WaitObject) Notify() {
	if w.waiter == nil {
		w.signaled = true
		return
	}
	t := w.waiter
	w.waiter = nil
	w.sched.Runnable(t)
}
