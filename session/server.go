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
	"encoding/binary"
	"io"
	"log"
	"net"

	"github.com/ninepkit/ninep/evqueue"
	"github.com/ninepkit/ninep/nerr"
	"github.com/ninepkit/ninep/task"
	"github.com/ninepkit/ninep/vfs"
	"github.com/ninepkit/ninep/wire"
)

// Server accepts 9P2000 connections and serves them against a vfs.FS. It
// runs one task.Task per connection (the protocol's "a server multiplexes
// one task per connection"). The scheduler hands a single token between
// tasks, so a connection's task must never block the thread it runs on
// waiting for the network: Server reads and writes through a connIO that
// suspends the task and re-arms an evqueue interest on EAGAIN instead,
// exactly the pattern the task/evqueue pair exists to drive.
type Server struct {
	fs    vfs.FS
	sched *task.Scheduler
	queue evqueue.Queue
	msize uint32 // this server's own ceiling; the connection's msize is min(this, the client's offer)

	debugLogger *log.Logger
	errorLogger *log.Logger
}

// NewServer creates a Server backed by fs, with maxMsize as its own
// ceiling on the per-connection negotiated msize (0 means DefaultMsize).
// It opens the platform's native evqueue backend and wires it as the
// scheduler's Sleeper, so Scheduler().RunAll(true) both drains runnable
// connection tasks and sleeps for network readiness between bursts.
func NewServer(fs vfs.FS, maxMsize uint32, cfg Config) (*Server, error) {
	if maxMsize == 0 {
		maxMsize = DefaultMsize
	}
	q, err := evqueue.New()
	if err != nil {
		return nil, nerr.Wrap(nerr.DomainErrno, err)
	}
	return &Server{
		fs:          fs,
		sched:       task.NewScheduler(q),
		queue:       q,
		msize:       maxMsize,
		debugLogger: cfg.DebugLogger,
		errorLogger: cfg.ErrorLogger,
	}, nil
}

// Scheduler returns the scheduler Serve spawns connection tasks on, so a
// caller (cmd/ninepd) can drive the run loop with RunAll(true).
func (srv *Server) Scheduler() *task.Scheduler { return srv.sched }

// Close releases the evqueue backend. Call after the scheduler has no more
// connections to serve.
func (srv *Server) Close() error { return srv.queue.Close() }

func (srv *Server) debugf(format string, args ...interface{}) {
	if srv.debugLogger == nil {
		return
	}
	srv.debugLogger.Printf(format, args...)
}

func (srv *Server) errorf(format string, args ...interface{}) {
	if srv.errorLogger == nil {
		return
	}
	srv.errorLogger.Printf(format, args...)
}

// Serve accepts connections from ln until it returns an error (typically
// because ln was closed), spawning one task per connection. Accept itself
// runs on the calling goroutine, not a scheduled task, since it has
// nothing to cooperate with until a connection actually exists; pair it
// with a goroutine driving Scheduler().RunAll(true) forever.
func (srv *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		srv.debugf("accepted %s", conn.RemoteAddr())
		srv.spawnConn(conn)
	}
}

func (srv *Server) spawnConn(conn net.Conn) {
	srv.sched.Spawn(conn.RemoteAddr().String(), func(t *task.Task) {
		stream := newConnIO(conn, srv.queue, srv.sched)
		c := &serverConn{io: stream, fids: make(map[wire.FID]*fidEntry), msize: srv.msize}
		c.serve(srv, t)
		stream.Close()
		t.Exit(nil)
	})
}

// fidEntry is the server's per-fid state: the vfs.File it currently names,
// plus the vfs.Handle once Topen/Tcreate has opened it, plus the uname it
// was attached/created under (vfs.File methods that check permissions
// need a user argument on every call).
type fidEntry struct {
	file   vfs.File
	handle vfs.Handle
	user   vfs.User
}

type serverConn struct {
	io      connIO
	fids    map[wire.FID]*fidEntry
	msize   uint32 // the server's ceiling until Tversion; the connection's own negotiated ceiling after that
	recvBuf []byte
}

// serve runs this connection's full request/reply loop until the client
// disconnects or a frame fails to parse.
func (c *serverConn) serve(srv *Server, t *task.Task) {
	for {
		header, msg, err := c.readMessage(t)
		if err != nil {
			if err != io.EOF {
				srv.errorf("read: %v", err)
			}
			return
		}

		reply := srv.dispatch(c, header, msg)
		if err := c.io.WriteFull(t, reply); err != nil {
			srv.errorf("write: %v", err)
			return
		}
	}
}

func (c *serverConn) readMessage(t *task.Task) (wire.Header, interface{}, error) {
	var sizeBuf [4]byte
	if err := c.io.ReadFull(t, sizeBuf[:]); err != nil {
		return wire.Header{}, nil, err
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size < 7 {
		return wire.Header{}, nil, &wire.DecodeError{Msg: "declared frame size smaller than a header"}
	}

	if cap(c.recvBuf) < int(size) {
		c.recvBuf = make([]byte, size)
	} else {
		c.recvBuf = c.recvBuf[:size]
	}
	copy(c.recvBuf[:4], sizeBuf[:])
	if err := c.io.ReadFull(t, c.recvBuf[4:]); err != nil {
		return wire.Header{}, nil, err
	}

	return wire.Decode(c.recvBuf)
}

// dispatch runs one decoded request to completion and returns its framed
// reply, always tagged with the request's own tag (never assuming tag 0:
// only the reference client does that, a server must not rely on it).
func (srv *Server) dispatch(c *serverConn, h wire.Header, msg interface{}) []byte {
	tag := h.Tag

	switch m := msg.(type) {
	case wire.TversionMsg:
		negotiated := m.Msize
		if negotiated > srv.msize {
			negotiated = srv.msize
		}
		c.msize = negotiated
		return wire.EncodeRversion(tag, wire.RversionMsg{Msize: negotiated, Version: wire.Version})

	case wire.TauthMsg:
		return srv.errorReply(tag, "auth not supported")

	case wire.TattachMsg:
		root, err := srv.fs.Root(vfs.User(m.Uname))
		if err != nil {
			return srv.errorReply(tag, err.Error())
		}
		c.fids[m.FID] = &fidEntry{file: root, user: vfs.User(m.Uname)}
		return wire.EncodeRattach(tag, wire.RattachMsg{Qid: root.Qid()})

	case wire.TwalkMsg:
		return srv.handleWalk(c, tag, m)

	case wire.TopenMsg:
		return srv.handleOpen(c, tag, m)

	case wire.TcreateMsg:
		return srv.handleCreate(c, tag, m)

	case wire.TreadMsg:
		return srv.handleRead(c, tag, m)

	case wire.TwriteMsg:
		return srv.handleWrite(c, tag, m)

	case wire.TclunkMsg:
		if e, ok := c.fids[m.FID]; ok {
			if e.handle != nil {
				e.handle.Close()
			}
			delete(c.fids, m.FID)
		}
		return wire.EncodeRclunk(tag, wire.RclunkMsg{})

	case wire.TremoveMsg:
		e, ok := c.fids[m.FID]
		delete(c.fids, m.FID)
		if !ok {
			return srv.errorReply(tag, "unknown fid")
		}
		if e.handle != nil {
			e.handle.Close()
		}
		if err := e.file.Remove(e.user); err != nil {
			return srv.errorReply(tag, err.Error())
		}
		return wire.EncodeRremove(tag, wire.RremoveMsg{})

	case wire.TstatMsg:
		e, ok := c.fids[m.FID]
		if !ok {
			return srv.errorReply(tag, "unknown fid")
		}
		st, err := e.file.Stat()
		if err != nil {
			return srv.errorReply(tag, err.Error())
		}
		return wire.EncodeRstat(tag, wire.RstatMsg{Stat: st})

	case wire.TwstatMsg:
		e, ok := c.fids[m.FID]
		if !ok {
			return srv.errorReply(tag, "unknown fid")
		}
		if err := e.file.Wstat(e.user, m.Stat); err != nil {
			return srv.errorReply(tag, err.Error())
		}
		return wire.EncodeRwstat(tag, wire.RwstatMsg{})

	case wire.TflushMsg:
		// Requests are served one at a time per connection, so there is
		// never an outstanding op to actually flush; answer unconditionally.
		return wire.EncodeRflush(tag, wire.RflushMsg{})

	default:
		return srv.errorReply(tag, "unsupported request type")
	}
}

func (srv *Server) errorReply(tag wire.Tag, msg string) []byte {
	return wire.EncodeRerror(tag, wire.RerrorMsg{Ename: msg})
}

func (srv *Server) handleWalk(c *serverConn, tag wire.Tag, m wire.TwalkMsg) []byte {
	e, ok := c.fids[m.FID]
	if !ok {
		return srv.errorReply(tag, "unknown fid")
	}

	cur := e.file
	qids := make([]wire.Qid, 0, len(m.Names))
	for _, name := range m.Names {
		next, err := cur.Walk(e.user, name)
		if err != nil {
			break
		}
		cur = next
		qids = append(qids, cur.Qid())
	}

	// A walk of zero names always succeeds, cloning fid without resolving
	// anything; a nonempty walk that resolves no names at all is a miss.
	if len(m.Names) > 0 && len(qids) == 0 {
		return srv.errorReply(tag, "no such file or directory")
	}

	if len(qids) == len(m.Names) {
		c.fids[m.NewFID] = &fidEntry{file: cur, user: e.user}
	}
	return wire.EncodeRwalk(tag, wire.RwalkMsg{Qids: qids})
}

func (srv *Server) handleOpen(c *serverConn, tag wire.Tag, m wire.TopenMsg) []byte {
	e, ok := c.fids[m.FID]
	if !ok {
		return srv.errorReply(tag, "unknown fid")
	}
	h, err := e.file.Open(e.user, m.Mode)
	if err != nil {
		return srv.errorReply(tag, err.Error())
	}
	e.handle = h
	return wire.EncodeRopen(tag, wire.RopenMsg{Qid: e.file.Qid(), IOUnit: 0})
}

func (srv *Server) handleCreate(c *serverConn, tag wire.Tag, m wire.TcreateMsg) []byte {
	e, ok := c.fids[m.FID]
	if !ok {
		return srv.errorReply(tag, "unknown fid")
	}
	file, h, err := e.file.Create(e.user, m.Name, m.Perm, m.Mode)
	if err != nil {
		return srv.errorReply(tag, err.Error())
	}
	e.file = file
	e.handle = h
	return wire.EncodeRcreate(tag, wire.RcreateMsg{Qid: file.Qid(), IOUnit: 0})
}

func (srv *Server) handleRead(c *serverConn, tag wire.Tag, m wire.TreadMsg) []byte {
	e, ok := c.fids[m.FID]
	if !ok || e.handle == nil {
		return srv.errorReply(tag, "fid not open")
	}

	budget := c.msize - ReadHeaderOverhead
	count := m.Count
	if count > budget {
		count = budget
	}

	buf := make([]byte, count)
	n, err := e.handle.Read(m.Offset, buf)
	if err != nil && err != io.EOF {
		return srv.errorReply(tag, err.Error())
	}
	return wire.EncodeRread(tag, wire.RreadMsg{Data: buf[:n]})
}

func (srv *Server) handleWrite(c *serverConn, tag wire.Tag, m wire.TwriteMsg) []byte {
	e, ok := c.fids[m.FID]
	if !ok || e.handle == nil {
		return srv.errorReply(tag, "fid not open")
	}
	n, err := e.handle.Write(m.Offset, m.Data)
	if err != nil {
		return srv.errorReply(tag, err.Error())
	}
	return wire.EncodeRwrite(tag, wire.RwriteMsg{Count: uint32(n)})
}
