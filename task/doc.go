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

// Package task implements a cooperative, single-threaded task runtime: a
// FIFO runnable queue, explicit yield/suspend/resume, one-shot wait
// objects, and a counting semaphore.
//
// Go has no portable stackful-fiber primitive, so each Task here is backed
// by its own goroutine - but the scheduler hands a single token back and
// forth between them over unbuffered channels, so at any instant exactly
// one task's goroutine is actually making progress, exactly as it would
// with real stack-switching fibers.
package task
