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

package memfs

import (
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/ninepkit/ninep/vfs"
	"github.com/ninepkit/ninep/wire"
)

func newTestFS() *FS {
	clock := timeutil.NewSimulatedClock(time.Date(2012, 8, 15, 22, 56, 0, 0, time.UTC))
	return New(clock)
}

func TestRootIsDirWithQidPathOne(t *testing.T) {
	fs := newTestFS()
	root, err := fs.Root(vfs.User("alice"))
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	qid := root.Qid()
	if qid.Type&wire.QTDIR == 0 {
		t.Fatalf("root qid type = 0x%x, want QTDIR set", qid.Type)
	}
	if qid.Path != 1 {
		t.Fatalf("root qid path = %d, want 1", qid.Path)
	}
}

func TestCreateThenWalkFindsChild(t *testing.T) {
	fs := newTestFS()
	root, _ := fs.Root(vfs.User("alice"))

	child, h, err := root.Create(vfs.User("alice"), "greeting.txt", 0o644, wire.OWRITE)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer h.Close()

	if _, err := h.Write(0, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	found, err := root.Walk(vfs.User("alice"), "greeting.txt")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if found.Qid() != child.Qid() {
		t.Fatalf("Walk returned a different file than Create")
	}

	rh, err := found.Open(vfs.User("alice"), wire.OREAD)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rh.Close()

	buf := make([]byte, 5)
	n, err := rh.Read(0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("got %q, want %q", buf[:n], "hello")
	}
}

func TestWalkMissingChildIsErrNotFound(t *testing.T) {
	fs := newTestFS()
	root, _ := fs.Root(vfs.User("alice"))

	if _, err := root.Walk(vfs.User("alice"), "nope"); err != vfs.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRemoveNonEmptyDirFails(t *testing.T) {
	fs := newTestFS()
	root, _ := fs.Root(vfs.User("alice"))

	dir, dh, err := root.Create(vfs.User("alice"), "sub", wire.DMDIR|0o755, wire.OREAD)
	if err != nil {
		t.Fatalf("Create dir: %v", err)
	}
	dh.Close()

	if _, _, err := dir.Create(vfs.User("alice"), "f", 0o644, wire.OWRITE); err != nil {
		t.Fatalf("Create file: %v", err)
	}

	if err := dir.Remove(vfs.User("alice")); err != vfs.ErrNotEmpty {
		t.Fatalf("got %v, want ErrNotEmpty", err)
	}
}

func TestWstatChmodChangesOnlyMode(t *testing.T) {
	fs := newTestFS()
	root, _ := fs.Root(vfs.User("alice"))

	file, h, err := root.Create(vfs.User("alice"), "f", 0o644, wire.OWRITE)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Close()

	before, _ := file.Stat()

	patch := wire.NoTouchStat()
	patch.Mode = 0o755
	if err := file.Wstat(vfs.User("alice"), patch); err != nil {
		t.Fatalf("Wstat: %v", err)
	}

	after, _ := file.Stat()
	if after.Mode&0o777 != 0o755 {
		t.Fatalf("mode = %o, want %o", after.Mode&0o777, 0o755)
	}
	if after.Name != before.Name || after.UID != before.UID {
		t.Fatalf("chmod changed fields other than mode: before=%+v after=%+v", before, after)
	}
}

func TestDirectoryReadListsChildrenAsStatRecords(t *testing.T) {
	fs := newTestFS()
	root, _ := fs.Root(vfs.User("alice"))

	for _, name := range []string{"a", "b", "c"} {
		_, h, err := root.Create(vfs.User("alice"), name, 0o644, wire.OWRITE)
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		h.Close()
	}

	rh, err := root.Open(vfs.User("alice"), wire.OREAD)
	if err != nil {
		t.Fatalf("Open root: %v", err)
	}
	defer rh.Close()

	buf := make([]byte, 4096)
	n, err := rh.Read(0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var names []string
	rest := buf[:n]
	for len(rest) > 0 {
		st, consumed, err := wire.DecodeStat(rest)
		if err != nil {
			t.Fatalf("DecodeStat: %v", err)
		}
		names = append(names, st.Name)
		rest = rest[consumed:]
	}

	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}
