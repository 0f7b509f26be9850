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

//go:build windows
// +build windows

package session

import (
	"net"

	"github.com/ninepkit/ninep/evqueue"
	"github.com/ninepkit/ninep/nerr"
	"github.com/ninepkit/ninep/task"
)

// newNonblockingConnIO has no Windows implementation: driving a socket
// through the IOCP completion port an evqueue.Queue wraps here requires
// an outstanding overlapped ReadFile/WSARecv per operation, which this
// module does not yet issue (see evqueue's iocpQueue doc comment - it
// already notes this is the caller's responsibility). newConnIO falls
// back to blockingConnIO on this platform until that plumbing exists.
func newNonblockingConnIO(conn net.Conn, queue evqueue.Queue, sched *task.Scheduler) (connIO, error) {
	return nil, nerr.Newf(nerr.DomainWin32, "non-blocking connIO not implemented on windows")
}
