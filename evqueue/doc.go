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

// Package evqueue provides a small, portable readiness-notification queue
// over whatever facility the host OS offers (epoll on Linux, kqueue on the
// BSDs and Darwin, event ports on Solaris, an I/O completion port on
// Windows), plus a generic poll(2)-based fallback for any other platform. Every backend implements the same Queue interface and satisfies
// task.Sleeper, so the task scheduler can block in one of them without
// knowing which platform it is running on.
package evqueue
