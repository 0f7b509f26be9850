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
	"log"
	"sync"

	"github.com/jacobsa/reqtrace"

	"github.com/ninepkit/ninep/nerr"
	"github.com/ninepkit/ninep/wire"
)

// DefaultMsize is offered by NewSession callers that have no opinion of
// their own, matching common 9P client behavior.
const DefaultMsize = 8192

// ReadHeaderOverhead is the non-data overhead of an Rread reply that the
// read loop must leave room for inside msize: the true per-Tread budget is
// msize - 11, not the msize - 24 some clients assume by copying a fixed
// constant meant for a different header layout.
const ReadHeaderOverhead = wire.RreadHeaderSize

// Config carries optional, nil-safe dependencies for a Session.
type Config struct {
	// DebugLogger, if non-nil, receives a line for every request sent and
	// reply received.
	DebugLogger *log.Logger
	// ErrorLogger, if non-nil, receives a line for every failed call.
	ErrorLogger *log.Logger
}

// Session drives one 9P2000 connection from the client side. A Session
// must not be used concurrently from multiple goroutines; it serializes
// its own request/response cycles internally because the wire protocol
// pairs exactly one reply with each request on a given connection.
type Session struct {
	rwc io.ReadWriteCloser

	debugLogger *log.Logger
	errorLogger *log.Logger

	mu      sync.Mutex
	broken  bool   // GUARDED_BY(mu); set once framing is no longer trustworthy
	msize   uint32 // GUARDED_BY(mu); 0 until Handshake succeeds
	nextTag uint32 // GUARDED_BY(mu)
	recvBuf []byte // GUARDED_BY(mu); reused across calls, aliased by Read's return
}

// NewSession wraps an established connection. Callers must call Handshake
// before any other method; every other method requires a negotiated msize.
func NewSession(rwc io.ReadWriteCloser, cfg Config) *Session {
	return &Session{
		rwc:         rwc,
		debugLogger: cfg.DebugLogger,
		errorLogger: cfg.ErrorLogger,
	}
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.debugLogger == nil {
		return
	}
	s.debugLogger.Printf(format, args...)
}

func (s *Session) errorf(format string, args ...interface{}) {
	if s.errorLogger == nil {
		return
	}
	s.errorLogger.Printf(format, args...)
}

// Msize returns the negotiated message size, or 0 before Handshake.
func (s *Session) Msize() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msize
}

// Close releases the underlying connection. Any call in flight will fail;
// any call made afterward returns ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	s.broken = true
	s.mu.Unlock()
	return s.rwc.Close()
}

// Handshake performs the Tversion/Rversion exchange, offering wantMsize,
// and sets the session's negotiated msize to the smaller of wantMsize and
// the server's reply (a server must not grow the session beyond what the
// client offered). Tversion always carries wire.NOTAG, never an allocated
// tag, since no prior tag state exists yet to collide with.
func (s *Session) Handshake(ctx context.Context, wantMsize uint32) (uint32, error) {
	body, err := s.call(ctx, "Version", wire.NOTAG, wire.Rversion, func(tag wire.Tag) []byte {
		return wire.EncodeTversion(tag, wire.TversionMsg{Msize: wantMsize, Version: wire.Version})
	})
	if err != nil {
		return 0, err
	}

	rm := body.(wire.RversionMsg)
	if rm.Version != wire.Version {
		s.mu.Lock()
		s.broken = true
		s.mu.Unlock()
		return 0, nerr.Newf(nerr.DomainProtocol, "server replied with unsupported version %q", rm.Version)
	}

	negotiated := rm.Msize
	if negotiated > wantMsize {
		negotiated = wantMsize
	}

	s.mu.Lock()
	s.msize = negotiated
	s.mu.Unlock()
	return negotiated, nil
}

// Attach associates fid with the root of aname as uname, per Tattach. afid
// is wire.NOFID when no auth fid is in use; this module never negotiates
// or enforces auth, leaving every Tattach's afid unused on the wire.
func (s *Session) Attach(ctx context.Context, fid, afid wire.FID, uname, aname string) (wire.Qid, error) {
	body, err := s.roundTrip(ctx, "Attach", wire.Rattach, func(tag wire.Tag) []byte {
		return wire.EncodeTattach(tag, wire.TattachMsg{FID: fid, AFID: afid, Uname: uname, Aname: aname})
	})
	if err != nil {
		return wire.Qid{}, err
	}
	return body.(wire.RattachMsg).Qid, nil
}

// Walk resolves names starting from fid, binding the result to newfid on
// success. Per the protocol, fid and newfid may be equal (walk onto
// oneself) or distinct; an empty names walk just clones fid onto newfid.
//
// If the server's reply carries fewer qids than len(names), the walk
// stopped partway through (the file at that depth does not exist);
// Walk returns the partial qid list alongside ErrPartialWalk so a caller
// can decide whether that counts as "not found".
func (s *Session) Walk(ctx context.Context, fid, newfid wire.FID, names []string) ([]wire.Qid, error) {
	if len(names) > wire.MaxWalkElem {
		return nil, ErrTooLarge
	}
	body, err := s.roundTrip(ctx, "Walk", wire.Rwalk, func(tag wire.Tag) []byte {
		return wire.EncodeTwalk(tag, wire.TwalkMsg{FID: fid, NewFID: newfid, Names: names})
	})
	if err != nil {
		return nil, err
	}
	qids := body.(wire.RwalkMsg).Qids
	if len(names) > 0 && len(qids) < len(names) {
		return qids, ErrPartialWalk
	}
	return qids, nil
}

// WalkPath splits path on '/' (see wire.SplitWalkPath) and walks it in one
// call. There is no implicit client-side cwd: callers that want one layer
// it on top of fid/newfid themselves.
func (s *Session) WalkPath(ctx context.Context, fid, newfid wire.FID, path string) ([]wire.Qid, error) {
	return s.Walk(ctx, fid, newfid, wire.SplitWalkPath(path))
}

// Open prepares fid for I/O in the given mode, returning its qid and the
// server's preferred I/O size (0 if the server expresses no preference).
func (s *Session) Open(ctx context.Context, fid wire.FID, mode uint8) (wire.Qid, uint32, error) {
	body, err := s.roundTrip(ctx, "Open", wire.Ropen, func(tag wire.Tag) []byte {
		return wire.EncodeTopen(tag, wire.TopenMsg{FID: fid, Mode: mode})
	})
	if err != nil {
		return wire.Qid{}, 0, err
	}
	rm := body.(wire.RopenMsg)
	return rm.Qid, rm.IOUnit, nil
}

// Create creates name under the directory fid, rebinding fid to the new
// file (per the protocol, Tcreate's fid becomes the created file's fid,
// not a separate newfid).
func (s *Session) Create(ctx context.Context, fid wire.FID, name string, perm uint32, mode uint8) (wire.Qid, uint32, error) {
	body, err := s.roundTrip(ctx, "Create", wire.Rcreate, func(tag wire.Tag) []byte {
		return wire.EncodeTcreate(tag, wire.TcreateMsg{FID: fid, Name: name, Perm: perm, Mode: mode})
	})
	if err != nil {
		return wire.Qid{}, 0, err
	}
	rm := body.(wire.RcreateMsg)
	return rm.Qid, rm.IOUnit, nil
}

// Read issues a single Tread and returns the data the server replied
// with. The returned slice aliases the session's receive buffer: it is
// only valid until the next call made on this Session. Callers that need
// to retain the bytes must copy them out, or use ReadAll.
func (s *Session) Read(ctx context.Context, fid wire.FID, offset uint64, count uint32) ([]byte, error) {
	s.mu.Lock()
	budget := s.msize - ReadHeaderOverhead
	s.mu.Unlock()
	if count > budget {
		count = budget
	}

	body, err := s.roundTrip(ctx, "Read", wire.Rread, func(tag wire.Tag) []byte {
		return wire.EncodeTread(tag, wire.TreadMsg{FID: fid, Offset: offset, Count: count})
	})
	if err != nil {
		return nil, err
	}
	return body.(wire.RreadMsg).Data, nil
}

// ReadAll reads fid from offset 0 to EOF, a chunk at a time, and returns
// the concatenated bytes. iounit caps each Tread's requested count; 0
// means "use the full read budget for the session's msize".
func (s *Session) ReadAll(ctx context.Context, fid wire.FID, iounit uint32) ([]byte, error) {
	s.mu.Lock()
	budget := s.msize - ReadHeaderOverhead
	s.mu.Unlock()
	if iounit == 0 || iounit > budget {
		iounit = budget
	}

	var out []byte
	var offset uint64
	for {
		data, err := s.Read(ctx, fid, offset, iounit)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return out, nil
		}
		out = append(out, data...)
		offset += uint64(len(data))
	}
}

// ReadDir reads fid (which must be open on a directory) to EOF and
// decodes the result as a sequence of back-to-back stat records.
func (s *Session) ReadDir(ctx context.Context, fid wire.FID) ([]wire.Stat, error) {
	data, err := s.ReadAll(ctx, fid, 0)
	if err != nil {
		return nil, err
	}

	var stats []wire.Stat
	for len(data) > 0 {
		st, n, err := wire.DecodeStat(data)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
		data = data[n:]
	}
	return stats, nil
}

// Write writes data to fid starting at offset, looping over however many
// Twrite calls the server needs to consume it all: a server is free to
// reply with a smaller Rwrite.Count than was sent, and the protocol
// treats that as "you owe me another Twrite for the rest", not an error.
func (s *Session) Write(ctx context.Context, fid wire.FID, offset uint64, data []byte) (uint32, error) {
	s.mu.Lock()
	maxChunk := wire.MaxWriteData(s.msize)
	s.mu.Unlock()

	var written uint32
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunk {
			chunk = chunk[:maxChunk]
		}

		body, err := s.roundTrip(ctx, "Write", wire.Rwrite, func(tag wire.Tag) []byte {
			return wire.EncodeTwrite(tag, wire.TwriteMsg{FID: fid, Offset: offset + uint64(written), Data: chunk})
		})
		if err != nil {
			return written, err
		}

		n := body.(wire.RwriteMsg).Count
		if n == 0 {
			return written, nerr.Newf(nerr.DomainProtocol, "server wrote zero of %d remaining bytes", len(chunk))
		}
		if n > uint32(len(chunk)) {
			n = uint32(len(chunk)) // a server claiming more than it was sent is lying; trust what we sent
		}
		written += n
		data = data[n:]
	}
	return written, nil
}

// Remove removes the file named by fid and clunks it, succeeding or
// failing as one atomic protocol step (per Tremove's own semantics, the
// fid is gone afterward either way).
func (s *Session) Remove(ctx context.Context, fid wire.FID) error {
	_, err := s.roundTrip(ctx, "Remove", wire.Rremove, func(tag wire.Tag) []byte {
		return wire.EncodeTremove(tag, wire.TremoveMsg{FID: fid})
	})
	return err
}

// Stat retrieves fid's stat record.
func (s *Session) Stat(ctx context.Context, fid wire.FID) (wire.Stat, error) {
	body, err := s.roundTrip(ctx, "Stat", wire.Rstat, func(tag wire.Tag) []byte {
		return wire.EncodeTstat(tag, wire.TstatMsg{FID: fid})
	})
	if err != nil {
		return wire.Stat{}, err
	}
	return body.(wire.RstatMsg).Stat, nil
}

// Wstat applies a partial stat patch to fid. Callers should start from
// wire.NoTouchStat() and set only the fields they mean to change, per the
// protocol's all-ones/empty-string "don't touch" convention.
func (s *Session) Wstat(ctx context.Context, fid wire.FID, patch wire.Stat) error {
	_, err := s.roundTrip(ctx, "Wstat", wire.Rwstat, func(tag wire.Tag) []byte {
		return wire.EncodeTwstat(tag, wire.TwstatMsg{FID: fid, Stat: patch})
	})
	return err
}

// Clunk releases fid without affecting the file it names.
func (s *Session) Clunk(ctx context.Context, fid wire.FID) error {
	_, err := s.roundTrip(ctx, "Clunk", wire.Rclunk, func(tag wire.Tag) []byte {
		return wire.EncodeTclunk(tag, wire.TclunkMsg{FID: fid})
	})
	return err
}

// roundTrip allocates a fresh tag, under s.mu, and performs one request's
// call. Every public method but Handshake goes through here.
func (s *Session) roundTrip(ctx context.Context, name string, expectType wire.MType, build func(wire.Tag) []byte) (interface{}, error) {
	s.mu.Lock()
	tag := wire.Tag(s.nextTag)
	s.nextTag++
	if wire.Tag(s.nextTag) == wire.NOTAG {
		s.nextTag = 0
	}
	s.mu.Unlock()

	return s.call(ctx, name, tag, expectType, build)
}

// call sends one request with the given tag and waits for its matching
// reply, serializing the whole cycle so that the reply read always
// belongs to the request just written (the reference client, like this
// one, never has more than one call outstanding at a time).
func (s *Session) call(ctx context.Context, name string, tag wire.Tag, expectType wire.MType, build func(wire.Tag) []byte) (body interface{}, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken {
		return nil, ErrClosed
	}

	_, report := reqtrace.StartSpan(ctx, name)
	defer func() { report(err) }()

	req := build(tag)
	s.debugf("-> %s tag=%d len=%d", name, tag, len(req))
	if _, werr := s.rwc.Write(req); werr != nil {
		s.broken = true
		err = nerr.Wrap(nerr.DomainErrno, werr)
		s.errorf("%s: write failed: %v", name, err)
		return nil, err
	}

	header, msg, rerr := s.readMessageLocked()
	if rerr != nil {
		// The read path is length-prefixed; once a frame fails to parse we
		// no longer know where the next one starts, so the whole session
		// is suspect, not just this call.
		s.broken = true
		err = rerr
		s.errorf("%s: read failed: %v", name, err)
		return nil, err
	}

	if header.Tag != tag {
		s.broken = true
		err = nerr.Newf(nerr.DomainProtocol, "reply tag %d does not match request tag %d", header.Tag, tag)
		s.errorf("%s: %v", name, err)
		return nil, err
	}

	if header.Type == wire.Rerror {
		em := msg.(wire.RerrorMsg)
		err = nerr.Newf(nerr.DomainProtocol, "%s", em.Ename)
		s.debugf("<- %s tag=%d error=%q", name, tag, em.Ename)
		return nil, err
	}

	if header.Type != expectType {
		s.broken = true
		err = nerr.Newf(nerr.DomainProtocol, "reply type %s does not match request type %s",
			wire.MTypeNames[header.Type], wire.MTypeNames[expectType])
		s.errorf("%s: %v", name, err)
		return nil, err
	}

	s.debugf("<- %s tag=%d", name, tag)
	return msg, nil
}

// readMessageLocked reads one framed message from the connection into
// s.recvBuf, reusing its backing array across calls, and decodes it.
//
// LOCKS_REQUIRED(s.mu)
func (s *Session) readMessageLocked() (wire.Header, interface{}, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(s.rwc, sizeBuf[:]); err != nil {
		return wire.Header{}, nil, nerr.Wrap(nerr.DomainErrno, err)
	}

	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size < 7 {
		return wire.Header{}, nil, nerr.Newf(nerr.DomainProtocol, "declared frame size %d is smaller than a header", size)
	}

	if cap(s.recvBuf) < int(size) {
		s.recvBuf = make([]byte, size)
	} else {
		s.recvBuf = s.recvBuf[:size]
	}
	copy(s.recvBuf[:4], sizeBuf[:])

	if _, err := io.ReadFull(s.rwc, s.recvBuf[4:]); err != nil {
		return wire.Header{}, nil, nerr.Wrap(nerr.DomainErrno, err)
	}

	return wire.Decode(s.recvBuf)
}
