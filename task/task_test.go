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

import "testing"

func TestYieldIsFIFO(t *testing.T) {
	sched := NewScheduler(nil)

	var order []string
	const rounds = 3

	makeTask := func(name string) {
		sched.Spawn(name, func(self *Task) {
			for i := 0; i < rounds; i++ {
				order = append(order, self.Name())
				self.Yield()
			}
			self.Exit(nil)
		})
	}

	makeTask("a")
	makeTask("b")
	makeTask("c")

	for sched.HasRunnable() {
		sched.Run(false)
	}

	want := []string{
		"a", "b", "c",
		"a", "b", "c",
		"a", "b", "c",
	}
	if len(order) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("event %d: got %q, want %q (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestSuspendBlocksUntilRunnable(t *testing.T) {
	sched := NewScheduler(nil)

	var resumed bool
	task := sched.Spawn("blocked", func(self *Task) {
		self.Suspend()
		resumed = true
		self.Exit(nil)
	})

	sched.Run(false)
	if resumed {
		t.Fatal("task resumed past Suspend before being made runnable again")
	}
	if sched.HasRunnable() {
		t.Fatal("suspended task should not be in the runnable queue")
	}

	sched.Runnable(task)
	sched.Run(false)
	if !resumed {
		t.Fatal("task did not resume after Runnable")
	}
}

func TestExitRunsCleanupExactlyOnce(t *testing.T) {
	sched := NewScheduler(nil)

	cleanups := 0
	sched.Spawn("t", func(self *Task) {
		self.Yield()
		self.Exit(func() { cleanups++ })
	})

	for sched.HasRunnable() {
		sched.Run(false)
	}
	if cleanups != 1 {
		t.Fatalf("got %d cleanup calls, want 1", cleanups)
	}
}

func TestWaitObjectNotifyBeforeWait(t *testing.T) {
	sched := NewScheduler(nil)
	w := NewWaitObject(sched)

	// Notify before anyone is waiting should be remembered.
	w.Notify()

	var passed bool
	sched.Spawn("t", func(self *Task) {
		w.Wait(self)
		passed = true
		self.Exit(nil)
	})

	for sched.HasRunnable() {
		sched.Run(false)
	}
	if !passed {
		t.Fatal("Wait did not return after a prior Notify")
	}
}

func TestWaitObjectWaitThenNotify(t *testing.T) {
	sched := NewScheduler(nil)
	w := NewWaitObject(sched)

	var passed bool
	sched.Spawn("waiter", func(self *Task) {
		w.Wait(self)
		passed = true
		self.Exit(nil)
	})

	sched.Run(false)
	if passed {
		t.Fatal("waiter ran past Wait before Notify")
	}

	w.Notify()
	for sched.HasRunnable() {
		sched.Run(false)
	}
	if !passed {
		t.Fatal("waiter never resumed after Notify")
	}
}

func TestSemaphoreFIFOOrder(t *testing.T) {
	sched := NewScheduler(nil)
	sem := NewSemaphore(sched, 0)

	var order []string
	makeWaiter := func(name string) {
		sched.Spawn(name, func(self *Task) {
			sem.Wait(self)
			order = append(order, name)
			self.Exit(nil)
		})
	}

	makeWaiter("first")
	makeWaiter("second")
	makeWaiter("third")

	// Drain the spawn-time runnable entries; all three should block in Wait.
	for sched.HasRunnable() {
		sched.Run(false)
	}
	if len(order) != 0 {
		t.Fatalf("waiters ran before any Post: %v", order)
	}

	sem.Post()
	sem.Post()
	sem.Post()
	for sched.HasRunnable() {
		sched.Run(false)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestSemaphorePostBeforeWaitIsRemembered(t *testing.T) {
	sched := NewScheduler(nil)
	sem := NewSemaphore(sched, 0)
	sem.Post()

	var passed bool
	sched.Spawn("t", func(self *Task) {
		sem.Wait(self)
		passed = true
		self.Exit(nil)
	})

	for sched.HasRunnable() {
		sched.Run(false)
	}
	if !passed {
		t.Fatal("Wait blocked despite a Post with no prior waiter")
	}
}
