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

package session

import "errors"

// ErrClosed is returned by any call made after the session has been closed,
// or after an earlier call left it broken (a transport error, an unparsable
// reply, or a reply whose tag or type does not match the request).
var ErrClosed = errors.New("session: closed")

// ErrPartialWalk is returned by Walk/WalkPath when the server's reply
// carries fewer qids than path components were requested: a partial walk
// is not an Rerror, but it means the full path does not exist, which
// callers should treat the same as "not found".
var ErrPartialWalk = errors.New("session: walk stopped before the last path component")

// ErrTooLarge is returned when a caller's request cannot be sent as one
// message and the session cannot split it, e.g. a Walk with more than
// wire.MaxWalkElem names. (Write never returns it: it splits data larger
// than wire.MaxWriteData(msize) across several Twrites.)
var ErrTooLarge = errors.New("session: request exceeds negotiated msize")
