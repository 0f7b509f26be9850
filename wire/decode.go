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

const headerSize = 4 + 1 + 2

// Header is the fixed leading portion of every 9P2000 message.
type Header struct {
	Size uint32
	Type MType
	Tag  Tag
}

// DecodeHeader parses the 7-byte frame header and validates that b's
// length matches the declared size exactly: truncating or appending to a
// valid frame must always fail here, never silently succeed.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, ErrShort
	}
	d := newDecodeCursor(b[:headerSize])
	size, _ := d.u32()
	mtype, _ := d.u8()
	tag, _ := d.u16()

	if int(size) != len(b) {
		return Header{}, &DecodeError{"declared size does not match delivered bytes"}
	}

	return Header{Size: size, Type: MType(mtype), Tag: Tag(tag)}, nil
}

// Decode parses a complete framed message, dispatching on its type. The
// returned value is one of the *Msg types in messages.go. Decode enforces
// that every field fits within the declared size and that no bytes are
// left over.
func Decode(b []byte) (Header, interface{}, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, nil, err
	}

	body := newDecodeCursor(b[headerSize:])
	var msg interface{}

	switch h.Type {
	case Tversion:
		msg, err = decodeTversion(body)
	case Rversion:
		msg, err = decodeRversion(body)
	case Tauth:
		msg, err = decodeTauth(body)
	case Rauth:
		msg, err = decodeRauth(body)
	case Tattach:
		msg, err = decodeTattach(body)
	case Rattach:
		msg, err = decodeRattach(body)
	case Rerror:
		msg, err = decodeRerror(body)
	case Tflush:
		msg, err = decodeTflush(body)
	case Rflush:
		msg, err = decodeRflush(body)
	case Twalk:
		msg, err = decodeTwalk(body)
	case Rwalk:
		msg, err = decodeRwalk(body)
	case Topen:
		msg, err = decodeTopen(body)
	case Ropen:
		msg, err = decodeRopen(body)
	case Tcreate:
		msg, err = decodeTcreate(body)
	case Rcreate:
		msg, err = decodeRcreate(body)
	case Tread:
		msg, err = decodeTread(body)
	case Rread:
		msg, err = decodeRread(body)
	case Twrite:
		msg, err = decodeTwrite(body)
	case Rwrite:
		msg, err = decodeRwrite(body)
	case Tclunk:
		msg, err = decodeTclunk(body)
	case Rclunk:
		msg, err = decodeRclunk(body)
	case Tremove:
		msg, err = decodeTremove(body)
	case Rremove:
		msg, err = decodeRremove(body)
	case Tstat:
		msg, err = decodeTstat(body)
	case Rstat:
		msg, err = decodeRstat(body)
	case Twstat:
		msg, err = decodeTwstat(body)
	case Rwstat:
		msg, err = decodeRwstat(body)
	default:
		return Header{}, nil, &DecodeError{"unknown message type"}
	}

	if err != nil {
		return Header{}, nil, err
	}
	if !body.atEnd() {
		return Header{}, nil, &DecodeError{"trailing bytes after body"}
	}

	return h, msg, nil
}

func decodeTversion(d *decodeCursor) (TversionMsg, error) {
	var m TversionMsg
	var err error
	if m.Msize, err = d.u32(); err != nil {
		return m, err
	}
	m.Version, err = d.str()
	return m, err
}

func decodeRversion(d *decodeCursor) (RversionMsg, error) {
	var m RversionMsg
	var err error
	if m.Msize, err = d.u32(); err != nil {
		return m, err
	}
	m.Version, err = d.str()
	return m, err
}

func decodeTauth(d *decodeCursor) (TauthMsg, error) {
	var m TauthMsg
	afid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.AFID = FID(afid)
	if m.Uname, err = d.str(); err != nil {
		return m, err
	}
	m.Aname, err = d.str()
	return m, err
}

func decodeRauth(d *decodeCursor) (RauthMsg, error) {
	var m RauthMsg
	var err error
	m.AQid, err = d.qid()
	return m, err
}

func decodeTattach(d *decodeCursor) (TattachMsg, error) {
	var m TattachMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	afid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.AFID = FID(afid)
	if m.Uname, err = d.str(); err != nil {
		return m, err
	}
	m.Aname, err = d.str()
	return m, err
}

func decodeRattach(d *decodeCursor) (RattachMsg, error) {
	var m RattachMsg
	var err error
	m.Qid, err = d.qid()
	return m, err
}

func decodeRerror(d *decodeCursor) (RerrorMsg, error) {
	var m RerrorMsg
	var err error
	m.Ename, err = d.str()
	return m, err
}

func decodeTflush(d *decodeCursor) (TflushMsg, error) {
	var m TflushMsg
	tag, err := d.u16()
	m.OldTag = Tag(tag)
	return m, err
}

func decodeRflush(d *decodeCursor) (RflushMsg, error) {
	return RflushMsg{}, nil
}

func decodeTwalk(d *decodeCursor) (TwalkMsg, error) {
	var m TwalkMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	newfid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.NewFID = FID(newfid)

	nwname, err := d.u16()
	if err != nil {
		return m, err
	}
	if nwname > MaxWalkElem {
		return m, &DecodeError{"nwname exceeds protocol maximum"}
	}
	m.Names = make([]string, 0, nwname)
	for i := 0; i < int(nwname); i++ {
		name, err := d.str()
		if err != nil {
			return m, err
		}
		m.Names = append(m.Names, name)
	}
	return m, nil
}

func decodeRwalk(d *decodeCursor) (RwalkMsg, error) {
	var m RwalkMsg
	nwqid, err := d.u16()
	if err != nil {
		return m, err
	}
	m.Qids = make([]Qid, 0, nwqid)
	for i := 0; i < int(nwqid); i++ {
		q, err := d.qid()
		if err != nil {
			return m, err
		}
		m.Qids = append(m.Qids, q)
	}
	return m, nil
}

func decodeTopen(d *decodeCursor) (TopenMsg, error) {
	var m TopenMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	m.Mode, err = d.u8()
	return m, err
}

func decodeRopen(d *decodeCursor) (RopenMsg, error) {
	var m RopenMsg
	var err error
	if m.Qid, err = d.qid(); err != nil {
		return m, err
	}
	m.IOUnit, err = d.u32()
	return m, err
}

func decodeTcreate(d *decodeCursor) (TcreateMsg, error) {
	var m TcreateMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	if m.Name, err = d.str(); err != nil {
		return m, err
	}
	if m.Perm, err = d.u32(); err != nil {
		return m, err
	}
	m.Mode, err = d.u8()
	return m, err
}

func decodeRcreate(d *decodeCursor) (RcreateMsg, error) {
	var m RcreateMsg
	var err error
	if m.Qid, err = d.qid(); err != nil {
		return m, err
	}
	m.IOUnit, err = d.u32()
	return m, err
}

func decodeTread(d *decodeCursor) (TreadMsg, error) {
	var m TreadMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	if m.Offset, err = d.u64(); err != nil {
		return m, err
	}
	m.Count, err = d.u32()
	return m, err
}

func decodeRread(d *decodeCursor) (RreadMsg, error) {
	var m RreadMsg
	count, err := d.u32()
	if err != nil {
		return m, err
	}
	m.Data, err = d.bytesN(int(count))
	return m, err
}

func decodeTwrite(d *decodeCursor) (TwriteMsg, error) {
	var m TwriteMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	if m.Offset, err = d.u64(); err != nil {
		return m, err
	}
	count, err := d.u32()
	if err != nil {
		return m, err
	}
	m.Data, err = d.bytesN(int(count))
	return m, err
}

func decodeRwrite(d *decodeCursor) (RwriteMsg, error) {
	var m RwriteMsg
	var err error
	m.Count, err = d.u32()
	return m, err
}

func decodeTclunk(d *decodeCursor) (TclunkMsg, error) {
	var m TclunkMsg
	fid, err := d.u32()
	m.FID = FID(fid)
	return m, err
}

func decodeRclunk(d *decodeCursor) (RclunkMsg, error) {
	return RclunkMsg{}, nil
}

func decodeTremove(d *decodeCursor) (TremoveMsg, error) {
	var m TremoveMsg
	fid, err := d.u32()
	m.FID = FID(fid)
	return m, err
}

func decodeRremove(d *decodeCursor) (RremoveMsg, error) {
	return RremoveMsg{}, nil
}

func decodeTstat(d *decodeCursor) (TstatMsg, error) {
	var m TstatMsg
	fid, err := d.u32()
	m.FID = FID(fid)
	return m, err
}

func decodeRstat(d *decodeCursor) (RstatMsg, error) {
	var m RstatMsg
	n, err := d.u16()
	if err != nil {
		return m, err
	}
	raw, err := d.bytesN(int(n))
	if err != nil {
		return m, err
	}
	stat, consumed, err := DecodeStat(raw)
	if err != nil {
		return m, err
	}
	if consumed != len(raw) {
		return m, &DecodeError{"stat record size mismatch"}
	}
	m.Stat = stat
	return m, nil
}

func decodeTwstat(d *decodeCursor) (TwstatMsg, error) {
	var m TwstatMsg
	fid, err := d.u32()
	if err != nil {
		return m, err
	}
	m.FID = FID(fid)
	n, err := d.u16()
	if err != nil {
		return m, err
	}
	raw, err := d.bytesN(int(n))
	if err != nil {
		return m, err
	}
	stat, consumed, err := DecodeStat(raw)
	if err != nil {
		return m, err
	}
	if consumed != len(raw) {
		return m, &DecodeError{"stat record size mismatch"}
	}
	m.Stat = stat
	return m, nil
}

func decodeRwstat(d *decodeCursor) (RwstatMsg, error) {
	return RwstatMsg{}, nil
}
