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

// EncodeStat renders a Stat record: size[2] type[2] dev[4] qid[13]
// mode[4] atime[4] mtime[4] length[8] name[s] uid[s] gid[s] muid[s]. The
// leading size field counts the record minus its own two bytes.
func EncodeStat(s Stat) []byte {
	e := newEncodeBuffer(2 + 2 + 4 + 13 + 4 + 4 + 4 + 8 + 2 + 2 + 2 + 2 +
		len(s.Name)+len(s.UID)+len(s.GID)+len(s.MUID))

	sizeOff := e.reserve(2)
	e.u16(s.Type)
	e.u32(s.Dev)
	e.qid(s.Qid)
	e.u32(s.Mode)
	e.u32(s.Atime)
	e.u32(s.Mtime)
	e.u64(s.Length)
	e.str(s.Name)
	e.str(s.UID)
	e.str(s.GID)
	e.str(s.MUID)

	e.putU16At(sizeOff, uint16(e.Len()-2))
	return e.Bytes()
}

// DecodeStat parses one stat record from the front of b, returning the
// number of bytes it consumed so callers walking a directory listing (a
// concatenation of records) can advance to the next one. Records never
// cross read boundaries, so a short buffer is always a decode error, never
// a signal to read more.
func DecodeStat(b []byte) (Stat, int, error) {
	d := newDecodeCursor(b)

	size, err := d.u16()
	if err != nil {
		return Stat{}, 0, err
	}
	total := int(size) + 2
	if len(b) < total {
		return Stat{}, 0, ErrShort
	}

	body := newDecodeCursor(b[2:total])
	var s Stat
	if s.Type, err = body.u16(); err != nil {
		return Stat{}, 0, err
	}
	if s.Dev, err = body.u32(); err != nil {
		return Stat{}, 0, err
	}
	if s.Qid, err = body.qid(); err != nil {
		return Stat{}, 0, err
	}
	if s.Mode, err = body.u32(); err != nil {
		return Stat{}, 0, err
	}
	if s.Atime, err = body.u32(); err != nil {
		return Stat{}, 0, err
	}
	if s.Mtime, err = body.u32(); err != nil {
		return Stat{}, 0, err
	}
	if s.Length, err = body.u64(); err != nil {
		return Stat{}, 0, err
	}
	if s.Name, err = body.str(); err != nil {
		return Stat{}, 0, err
	}
	if s.UID, err = body.str(); err != nil {
		return Stat{}, 0, err
	}
	if s.GID, err = body.str(); err != nil {
		return Stat{}, 0, err
	}
	if s.MUID, err = body.str(); err != nil {
		return Stat{}, 0, err
	}
	if !body.atEnd() {
		return Stat{}, 0, &DecodeError{"stat record has trailing bytes"}
	}

	return s, total, nil
}

// ApplyWstat merges a partial Wstat request (fields set to their
// "don't touch" sentinel are left alone) onto the current stat, returning
// the result. This is how a server changes only permissions for a chmod
// without clobbering the rest of the record.
func ApplyWstat(cur, patch Stat) Stat {
	out := cur
	if patch.Mode != NoTouch32 {
		out.Mode = patch.Mode
	}
	if patch.Atime != NoTouch32 {
		out.Atime = patch.Atime
	}
	if patch.Mtime != NoTouch32 {
		out.Mtime = patch.Mtime
	}
	if patch.Length != NoTouch64 {
		out.Length = patch.Length
	}
	if patch.Name != "" {
		out.Name = patch.Name
	}
	if patch.UID != "" {
		out.UID = patch.UID
	}
	if patch.GID != "" {
		out.GID = patch.GID
	}
	if patch.MUID != "" {
		out.MUID = patch.MUID
	}
	return out
}
