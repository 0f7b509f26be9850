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

// Package ninep is a 9P2000 client and server runtime: a bit-exact wire
// codec (package wire), a client session engine that drives one connection
// through handshake/attach/walk/open/read/write/stat/clunk (package
// session), and a cooperative concurrency runtime of an event queue, a
// fiber-style task scheduler, and non-blocking transport handles (packages
// evqueue, task, transport) that session.Server runs connections on.
//
// Dial and Serve below are the two entry points most callers need; for
// finer control construct a session.Session or session.Server directly.
package ninep

import (
	"context"
	"net"

	"github.com/ninepkit/ninep/session"
	"github.com/ninepkit/ninep/transport"
	"github.com/ninepkit/ninep/vfs"
)

// Dial connects to a 9P2000 server at addr and performs the version
// handshake, offering wantMsize (session.DefaultMsize if zero). The
// returned Session is ready for Attach.
func Dial(ctx context.Context, addr string, wantMsize uint32, cfg session.Config) (*session.Session, error) {
	if wantMsize == 0 {
		wantMsize = session.DefaultMsize
	}
	h, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	s := session.NewSession(h, cfg)
	if _, err := s.Handshake(ctx, wantMsize); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Serve accepts connections on ln and serves them against fs until Serve
// returns (typically because ln was closed). It blocks: callers that also
// need to Accept new listeners or otherwise stay responsive should run it
// in its own goroutine.
func Serve(ln net.Listener, fs vfs.FS, maxMsize uint32, cfg session.Config) error {
	srv, err := session.NewServer(fs, maxMsize, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	sched := srv.Scheduler()
	for {
		select {
		case err := <-done:
			return err
		default:
			sched.RunAll(true)
		}
	}
}
