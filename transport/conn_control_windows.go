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

package transport

import "syscall"

// controlFunc builds a net.Dialer.Control callback applying flags to the
// raw socket before connect(2) is issued. CLOEXEC has no Windows
// equivalent at this layer (handle inheritance is controlled at process
// creation, not per-socket here), so only NONBLOCK is meaningful.
func controlFunc(flags Flag) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			if flags&NONBLOCK != 0 {
				if err := syscall.SetNonblock(syscall.Handle(fd), true); err != nil {
					ctrlErr = err
				}
			}
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}
