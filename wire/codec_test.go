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

package wire

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestVersionRoundTrip(t *testing.T) {
	want := TversionMsg{Msize: 8192, Version: "9P2000"}
	b := EncodeTversion(0, want)

	h, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.Type != Tversion {
		t.Fatalf("Type = %v, want Tversion", h.Type)
	}
	got := msg.(TversionMsg)
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if int(h.Size) != len(b) {
		t.Errorf("declared size %d != encoded length %d", h.Size, len(b))
	}
}

func TestAttachRoundTrip(t *testing.T) {
	want := TattachMsg{FID: 0, AFID: NOFID, Uname: "drew", Aname: ""}
	b := EncodeTattach(7, want)

	h, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.Tag != 7 {
		t.Errorf("Tag = %v, want 7", h.Tag)
	}
	got := msg.(TattachMsg)
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRattachRoundTrip(t *testing.T) {
	want := RattachMsg{Qid: Qid{Type: QTDIR, Vers: 0, Path: 1}}
	b := EncodeRattach(7, want)

	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := msg.(RattachMsg)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWalkRoundTrip(t *testing.T) {
	want := TwalkMsg{FID: 0, NewFID: 1, Names: []string{"tmp", "x"}}
	b := EncodeTwalk(3, want)

	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := msg.(TwalkMsg)
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkEncoderCapsAt16(t *testing.T) {
	it := NewWalkEncoder(0, 0, 1)
	for i := 0; i < MaxWalkElem; i++ {
		if err := it.Add("a"); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if err := it.Add("one-too-many"); err != ErrTooManyWalkElem {
		t.Fatalf("Add past cap: got %v, want ErrTooManyWalkElem", err)
	}
}

func TestRwalkCountInvariant(t *testing.T) {
	// A walk that fails partway yields nwqid < nwname; the client treats a
	// short reply as "stopped here", not as an error by itself.
	want := RwalkMsg{Qids: []Qid{{Type: QTDIR, Path: 42}}}
	b := EncodeRwalk(0, want)

	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := msg.(RwalkMsg)
	if len(got.Qids) != 1 {
		t.Fatalf("len(Qids) = %d, want 1", len(got.Qids))
	}
}

func TestReadRoundTrip(t *testing.T) {
	want := TreadMsg{FID: 4, Offset: 1024, Count: 4096}
	b := EncodeTread(1, want)
	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := msg.(TreadMsg); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	rwant := RreadMsg{Data: []byte("hello world")}
	rb := EncodeRread(1, rwant)
	_, rmsg, err := Decode(rb)
	if err != nil {
		t.Fatalf("Decode Rread: %v", err)
	}
	if got := rmsg.(RreadMsg); string(got.Data) != string(rwant.Data) {
		t.Errorf("got %q, want %q", got.Data, rwant.Data)
	}
}

func TestWriteEncoderSplitsAtMsize(t *testing.T) {
	const msize = 20 + TwriteHeaderSize // room for exactly 20 bytes of data
	data := []byte("0123456789abcdefghijklmno")

	var sent [][]byte
	offset := uint64(0)
	for len(data) > 0 {
		n := MaxWriteData(msize)
		if n > len(data) {
			n = len(data)
		}
		it := NewWriteEncoder(0, 9, offset)
		it.Append(data[:n])
		sent = append(sent, it.Finish())
		offset += uint64(n)
		data = data[n:]
	}

	if len(sent) != 2 {
		t.Fatalf("len(sent) = %d, want 2", len(sent))
	}

	var got []byte
	for _, frame := range sent {
		_, msg, err := Decode(frame)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, msg.(TwriteMsg).Data...)
	}
	if string(got) != "0123456789abcdefghijklmno" {
		t.Errorf("got %q", got)
	}
}

func TestStatWstatSentinelChangesOnlyMode(t *testing.T) {
	before := Stat{
		Type: 0, Dev: 0,
		Qid:    Qid{Type: 0, Vers: 3, Path: 9},
		Mode:   0644,
		Atime:  1000,
		Mtime:  2000,
		Length: 512,
		Name:   "f", UID: "drew", GID: "drew", MUID: "drew",
	}

	patch := NoTouchStat()
	patch.Mode = 0755

	after := ApplyWstat(before, patch)

	want := before
	want.Mode = 0755
	if after != want {
		t.Errorf("wstat sentinel changed more than mode: got %+v, want %+v", after, want)
	}
}

func TestStatRecordRoundTrip(t *testing.T) {
	want := Stat{
		Type: 1, Dev: 2,
		Qid:    Qid{Type: QTDIR, Vers: 5, Path: 99},
		Mode:   DMDIR | 0755,
		Atime:  111,
		Mtime:  222,
		Length: 0,
		Name:   "dir", UID: "u", GID: "g", MUID: "m",
	}

	b := EncodeStat(want)
	got, n, err := DecodeStat(b)
	if err != nil {
		t.Fatalf("DecodeStat: %v", err)
	}
	if n != len(b) {
		t.Errorf("consumed %d, want %d", n, len(b))
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTruncationAndExtensionAreDecodeErrors(t *testing.T) {
	b := EncodeTattach(0, TattachMsg{FID: 0, AFID: NOFID, Uname: "u", Aname: ""})

	for k := 1; k <= 3; k++ {
		truncated := b[:len(b)-k]
		if _, _, err := Decode(truncated); err == nil {
			t.Errorf("truncate by %d: expected decode error, got none", k)
		}
	}

	extended := append(append([]byte{}, b...), 0, 0, 0)
	if _, _, err := Decode(extended); err == nil {
		t.Error("appended bytes: expected decode error, got none")
	}
}

func TestSplitWalkPath(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/a//b/", []string{"a", "b"}},
		{"", nil},
		{"a", []string{"a"}},
		{"/tmp/x", []string{"tmp", "x"}},
		{"./a/./b", []string{"a", "b"}},
	}

	for _, c := range cases {
		got := SplitWalkPath(c.path)
		if diff := pretty.Compare(c.want, got); diff != "" {
			t.Errorf("SplitWalkPath(%q) mismatch (-want +got):\n%s", c.path, diff)
		}
	}
}

func TestRerrorRoundTrip(t *testing.T) {
	want := RerrorMsg{Ename: "file not found"}
	b := EncodeRerror(2, want)
	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := msg.(RerrorMsg); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFlushRoundTrip(t *testing.T) {
	want := TflushMsg{OldTag: 5}
	b := EncodeTflush(6, want)
	_, msg, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := msg.(TflushMsg); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
