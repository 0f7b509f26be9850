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

// Package wire implements the 9P2000 message codec: the fixed and
// variable-length T-message/R-message pairs, the stat record, and the
// little-endian integer primitives they are built from.
//
// Every message is framed as size[4] type[1] tag[2] body..., where size
// counts the whole message including itself. Decode is bit-exact: it
// rejects any byte stream whose declared size does not match the bytes
// delivered, and any body whose fields run past that size.
package wire
