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

// Package memfs is a reference vfs.FS: an in-memory directory tree
// supporting every vfs.File method, backed by a map of children per
// directory and a byte slice per regular file. It exists to drive the
// session engine's end-to-end tests and cmd/ninepd, not as a production
// file store.
package memfs
