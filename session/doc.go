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

// Package session implements the 9P2000 session engine: Session drives one
// client-side connection through version negotiation, attach, and the
// walk/open/read/write/create/remove/stat/wstat/clunk calls that follow,
// tracking the connection's negotiated msize and allocating its own tags.
// Server accepts connections and dispatches incoming requests to a
// vfs.FS, running one task.Task per connection.
package session
