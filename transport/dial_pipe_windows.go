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

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/windows"

	"github.com/ninepkit/ninep/nerr"
)

// DialPipe connects to a local server listening on a Windows named pipe
// (e.g. `\\.\pipe\ninep`), retrying while the server's listen backlog is
// momentarily full (ERROR_PIPE_BUSY) until ctx is done.
func DialPipe(ctx context.Context, name string, flags Flag) (*Handle, error) {
	p16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainWin32, err)
	}

	deadline, hasDeadline := ctx.Deadline()
	for {
		h, err := windows.CreateFile(
			p16,
			windows.GENERIC_READ|windows.GENERIC_WRITE,
			0,
			nil,
			windows.OPEN_EXISTING,
			0,
			0,
		)
		if err == nil {
			return NewHandle(os.NewFile(uintptr(h), name)), nil
		}
		if err != windows.ERROR_PIPE_BUSY {
			return nil, nerr.Wrap(nerr.DomainWin32, err)
		}
		if hasDeadline && time.Now().After(deadline) {
			return nil, nerr.Newf(nerr.DomainWin32, "DialPipe: timed out waiting for %q", name)
		}
		select {
		case <-ctx.Done():
			return nil, nerr.Wrap(nerr.DomainWin32, ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}
