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

package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"golang.org/x/net/nettest"
)

// TestHandleConformsToNettest runs the golang.org/x/net/nettest conformance
// suite (deadline semantics, concurrent Read/Write, half-close behavior)
// over a loopback TCP pair whose client side is dialed with DialTCP; the
// suite runs against the net.Conn that Handle wraps, obtained via RawConn.
func TestHandleConformsToNettest(t *testing.T) {
	mp := func() (c1, c2 net.Conn, stop func(), err error) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, nil, nil, err
		}

		acceptErr := make(chan error, 1)
		var serverConn net.Conn
		go func() {
			conn, err := ln.Accept()
			serverConn = conn
			acceptErr <- err
		}()

		clientHandle, err := DialTCP(context.Background(), ln.Addr().String(), 0)
		if err != nil {
			ln.Close()
			return nil, nil, nil, err
		}
		if err := <-acceptErr; err != nil {
			ln.Close()
			return nil, nil, nil, err
		}

		clientConn, _ := clientHandle.RawConn()
		stop = func() {
			clientHandle.Close()
			serverConn.Close()
			ln.Close()
		}
		return clientConn, serverConn, stop, nil
	}

	nettest.TestConn(t, mp)
}

func TestDialTCPRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := conn.Read(buf); err != nil {
			t.Errorf("server Read: %v", err)
			return
		}
		if string(buf) != "hello" {
			t.Errorf("server got %q, want %q", buf, "hello")
		}
		conn.Write([]byte("world"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h, err := DialTCP(ctx, ln.Addr().String(), 0)
	if err != nil {
		t.Fatalf("DialTCP: %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := h.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != "world" {
		t.Fatalf("got %q, want %q", buf, "world")
	}

	<-serverDone
}

