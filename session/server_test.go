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

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/ninepkit/ninep/vfs/memfs"
	"github.com/ninepkit/ninep/wire"
)

// startTestServer brings up a Server backed by a fresh memfs over a real
// loopback TCP listener, with a background goroutine driving its
// scheduler, and returns a Session already connected to it.
func startTestServer(t *testing.T) *Session {
	t.Helper()

	clock := timeutil.NewSimulatedClock(time.Date(2012, 8, 15, 22, 56, 0, 0, time.UTC))
	fs := memfs.New(clock)

	srv, err := NewServer(fs, 4096, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close(); srv.Close() })

	go srv.Serve(ln)

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				srv.Scheduler().RunAll(true)
			}
		}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewSession(conn, Config{})
}

func TestServerHandshakeNegotiatesItsOwnCeiling(t *testing.T) {
	s := startTestServer(t)
	negotiated, err := s.Handshake(context.Background(), 8192)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if negotiated != 4096 {
		t.Fatalf("negotiated msize = %d, want 4096 (the server's own ceiling)", negotiated)
	}
}

func TestServerAttachCreateWalkReadWriteRoundTrip(t *testing.T) {
	s := startTestServer(t)
	ctx := context.Background()
	if _, err := s.Handshake(ctx, DefaultMsize); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	rootQid, err := s.Attach(ctx, 0, wire.NOFID, "alice", "")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if rootQid.Type&wire.QTDIR == 0 {
		t.Fatalf("root qid is not a directory: %+v", rootQid)
	}

	if _, _, err := s.Create(ctx, 0, "greeting.txt", 0o644, wire.OWRITE); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Write(ctx, 0, 0, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Clunk(ctx, 0); err != nil {
		t.Fatalf("Clunk: %v", err)
	}

	if _, err := s.Attach(ctx, 1, wire.NOFID, "alice", ""); err != nil {
		t.Fatalf("re-Attach: %v", err)
	}
	qids, err := s.Walk(ctx, 1, 2, []string{"greeting.txt"})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(qids) != 1 {
		t.Fatalf("got %d qids, want 1", len(qids))
	}

	if _, _, err := s.Open(ctx, 2, wire.OREAD); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := s.ReadAll(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestServerWalkMissingChildFails(t *testing.T) {
	s := startTestServer(t)
	ctx := context.Background()
	if _, err := s.Handshake(ctx, DefaultMsize); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if _, err := s.Attach(ctx, 0, wire.NOFID, "alice", ""); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	_, err := s.Walk(ctx, 0, 1, []string{"nope"})
	if err == nil {
		t.Fatalf("expected an error walking a missing child")
	}
}
