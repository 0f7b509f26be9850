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

//go:build !windows
// +build !windows

package transport

import (
	"context"
	"net"
	"os"

	"github.com/ninepkit/ninep/nerr"
)

// DialPipe connects to a local server listening on a Unix domain socket at
// the given filesystem path.
func DialPipe(ctx context.Context, name string, flags Flag) (*Handle, error) {
	dialer := net.Dialer{Control: controlFunc(flags)}
	conn, err := dialer.DialContext(ctx, "unix", name)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return NewHandle(conn), nil
}

// ListenPipe listens for local connections on a Unix domain socket at the
// given filesystem path, removing any stale socket file left behind by a
// previous run first.
func ListenPipe(name string) (net.Listener, error) {
	if fi, err := os.Lstat(name); err == nil && fi.Mode()&os.ModeSocket != 0 {
		if err := os.Remove(name); err != nil {
			return nil, nerr.Wrap(nerr.DomainErrno, err)
		}
	}
	l, err := net.Listen("unix", name)
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return l, nil
}
