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
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/ninepkit/ninep/wire"
)

// fakeServer reads one framed request at a time off the pipe and answers
// with whatever handler returns, recording every request it saw.
type fakeServer struct {
	conn     net.Conn
	handler  func(h wire.Header, msg interface{}) []byte
	requests []interface{}
}

func newFakeServer(t *testing.T, conn net.Conn, handler func(wire.Header, interface{}) []byte) *fakeServer {
	fs := &fakeServer{conn: conn, handler: handler}
	go fs.run(t)
	return fs
}

func (fs *fakeServer) run(t *testing.T) {
	for {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(fs.conn, sizeBuf[:]); err != nil {
			return
		}
		size := binary.LittleEndian.Uint32(sizeBuf[:])
		buf := make([]byte, size)
		copy(buf[:4], sizeBuf[:])
		if _, err := io.ReadFull(fs.conn, buf[4:]); err != nil {
			return
		}
		h, msg, err := wire.Decode(buf)
		if err != nil {
			t.Errorf("fakeServer: decode: %v", err)
			return
		}
		fs.requests = append(fs.requests, msg)
		reply := fs.handler(h, msg)
		if _, err := fs.conn.Write(reply); err != nil {
			return
		}
	}
}

func newPipeSession(t *testing.T, handler func(wire.Header, interface{}) []byte) (*Session, *fakeServer) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	fs := newFakeServer(t, server, handler)
	return NewSession(client, Config{}), fs
}

func handshake(t *testing.T, s *Session, fs *fakeServer, wantMsize, serverMsize uint32) {
	t.Helper()
	old := fs.handler
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		if _, ok := msg.(wire.TversionMsg); !ok {
			t.Fatalf("expected Tversion first, got %T", msg)
		}
		return wire.EncodeRversion(h.Tag, wire.RversionMsg{Msize: serverMsize, Version: wire.Version})
	}
	if _, err := s.Handshake(context.Background(), wantMsize); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	fs.handler = old
}

func TestHandshakeNegotiatesSmallerMsize(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, 8192, 4096)
	if got := s.Msize(); got != 4096 {
		t.Fatalf("Msize() = %d, want 4096", got)
	}
}

func TestHandshakeRejectsGrowthBeyondOffer(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		return wire.EncodeRversion(h.Tag, wire.RversionMsg{Msize: 65536, Version: wire.Version})
	}
	negotiated, err := s.Handshake(context.Background(), 8192)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if negotiated != 8192 {
		t.Fatalf("negotiated = %d, want 8192 (client offer caps the server's reply)", negotiated)
	}
}

func TestAttachReturnsRootQid(t *testing.T) {
	wantQid := wire.Qid{Type: wire.QTDIR, Path: 1}
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		return wire.EncodeRattach(h.Tag, wire.RattachMsg{Qid: wantQid})
	}

	qid, err := s.Attach(context.Background(), 0, wire.NOFID, "alice", "")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if qid != wantQid {
		t.Fatalf("Attach qid = %+v, want %+v", qid, wantQid)
	}
}

func TestWalkPartialReturnsErrPartialWalk(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		// Two names requested ("tmp", "x"), only "tmp" resolves.
		return wire.EncodeRwalk(h.Tag, wire.RwalkMsg{Qids: []wire.Qid{{Type: wire.QTDIR, Path: 2}}})
	}

	qids, err := s.Walk(context.Background(), 0, 1, []string{"tmp", "x"})
	if err != ErrPartialWalk {
		t.Fatalf("err = %v, want ErrPartialWalk", err)
	}
	if len(qids) != 1 {
		t.Fatalf("got %d qids, want 1", len(qids))
	}
}

func TestWalkTooManyNamesFailsLocallyWithoutARoundTrip(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		t.Fatalf("Walk with too many names should never reach the wire")
		return nil
	}

	names := make([]string, wire.MaxWalkElem+1)
	for i := range names {
		names[i] = "x"
	}
	if _, err := s.Walk(context.Background(), 0, 1, names); err != ErrTooLarge {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestReadLoopsUntilEOFAtNegotiatedMsize(t *testing.T) {
	const fileSize = 10000
	data := make([]byte, fileSize)
	for i := range data {
		data[i] = byte(i)
	}

	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, 4096, 4096)

	var sent int
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		req := msg.(wire.TreadMsg)
		remaining := data[req.Offset:]
		n := int(req.Count)
		if n > len(remaining) {
			n = len(remaining)
		}
		sent++
		return wire.EncodeRread(h.Tag, wire.RreadMsg{Data: remaining[:n]})
	}

	got, err := s.ReadAll(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != fileSize {
		t.Fatalf("got %d bytes, want %d", len(got), fileSize)
	}
	for i := range got {
		if got[i] != data[i] {
			t.Fatalf("byte %d mismatch", i)
		}
	}
	if sent < 3 {
		t.Fatalf("server saw %d Tread calls, want at least 3 at msize=4096", sent)
	}
}

func TestWriteSplitsAcrossPartialRwrites(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)

	var calls int
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		req := msg.(wire.TwriteMsg)
		calls++
		n := len(req.Data)
		if n > 3 {
			n = 3
		}
		return wire.EncodeRwrite(h.Tag, wire.RwriteMsg{Count: uint32(n)})
	}

	n, err := s.Write(context.Background(), 0, 0, []byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 {
		t.Fatalf("wrote %d bytes, want 5", n)
	}
	if calls != 2 {
		t.Fatalf("server saw %d Twrite calls, want 2", calls)
	}
}

func TestWstatChmodLeavesOtherFieldsUntouched(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)

	var seen wire.Stat
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		seen = msg.(wire.TwstatMsg).Stat
		return wire.EncodeRwstat(h.Tag, wire.RwstatMsg{})
	}

	patch := wire.NoTouchStat()
	patch.Mode = 0o755
	if err := s.Wstat(context.Background(), 0, patch); err != nil {
		t.Fatalf("Wstat: %v", err)
	}

	untouched := wire.NoTouchStat()
	if seen.Mode != 0o755 {
		t.Fatalf("Mode = %o, want %o", seen.Mode, 0o755)
	}
	if seen.Name != untouched.Name || seen.UID != untouched.UID || seen.Length != untouched.Length {
		t.Fatalf("Wstat touched fields besides Mode: %+v", seen)
	}
}

func TestReadErrorBreaksSessionForSubsequentCalls(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		// A reply tagged with the wrong tag should be treated the same as
		// any other mismatch: the session is no longer trustworthy.
		return wire.EncodeRattach(h.Tag+1, wire.RattachMsg{})
	}

	if _, err := s.Attach(context.Background(), 0, wire.NOFID, "alice", ""); err == nil {
		t.Fatalf("expected a tag-mismatch error")
	}

	if _, err := s.Stat(context.Background(), 0); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed once the session is broken", err)
	}
}

func TestTagAllocationNeverEmitsNotag(t *testing.T) {
	s, fs := newPipeSession(t, nil)
	handshake(t, s, fs, DefaultMsize, DefaultMsize)

	s.mu.Lock()
	s.nextTag = uint32(wire.NOTAG) - 1
	s.mu.Unlock()

	var tags []wire.Tag
	fs.handler = func(h wire.Header, msg interface{}) []byte {
		tags = append(tags, h.Tag)
		return wire.EncodeRstat(h.Tag, wire.RstatMsg{})
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Stat(context.Background(), 0); err != nil {
			t.Fatalf("Stat: %v", err)
		}
	}

	for _, tag := range tags {
		if tag == wire.NOTAG {
			t.Fatalf("allocated wire.NOTAG as a real request tag: %v", tags)
		}
	}
}
