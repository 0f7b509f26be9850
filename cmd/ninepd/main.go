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

// Command ninepd serves an in-memory filesystem over 9P2000 on a TCP
// address. It exists to demonstrate ninep.Serve wiring evqueue, task,
// session, and vfs together; it does not implement a shell or any of the
// usual 9P client tools.
package main

import (
	"flag"
	"log"
	"net"
	"os"

	"github.com/jacobsa/timeutil"

	"github.com/ninepkit/ninep"
	"github.com/ninepkit/ninep/session"
	"github.com/ninepkit/ninep/vfs/memfs"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5640", "address to listen on")
	msize := flag.Uint("msize", uint(session.DefaultMsize), "maximum message size this server will negotiate")
	debug := flag.Bool("debug", false, "log every request and reply")
	flag.Parse()

	cfg := session.Config{
		ErrorLogger: log.New(os.Stderr, "ninepd: ", log.LstdFlags),
	}
	if *debug {
		cfg.DebugLogger = log.New(os.Stderr, "ninepd debug: ", log.LstdFlags|log.Lmicroseconds)
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	log.Printf("serving on %s", ln.Addr())

	fs := memfs.New(timeutil.RealClock())
	if err := ninep.Serve(ln, fs, uint32(*msize), cfg); err != nil {
		log.Fatalf("Serve: %v", err)
	}
}
