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

// newFrame starts a message: it reserves the 4-byte size field and writes
// the type and tag that follow it. Callers append the body, then call
// finishFrame to back-patch the size.
func newFrame(capacityHint int, mtype MType, tag Tag) *encodeBuffer {
	e := newEncodeBuffer(capacityHint)
	e.reserve(4)
	e.u8(uint8(mtype))
	e.u16(uint16(tag))
	return e
}

// finishFrame back-patches the leading size field to the frame's total
// length and returns the finished bytes.
func finishFrame(e *encodeBuffer) []byte {
	e.putU32At(0, uint32(e.Len()))
	return e.Bytes()
}

func EncodeTversion(tag Tag, m TversionMsg) []byte {
	e := newFrame(16+len(m.Version), Tversion, tag)
	e.u32(m.Msize)
	e.str(m.Version)
	return finishFrame(e)
}

func EncodeRversion(tag Tag, m RversionMsg) []byte {
	e := newFrame(16+len(m.Version), Rversion, tag)
	e.u32(m.Msize)
	e.str(m.Version)
	return finishFrame(e)
}

func EncodeTauth(tag Tag, m TauthMsg) []byte {
	e := newFrame(32+len(m.Uname)+len(m.Aname), Tauth, tag)
	e.u32(uint32(m.AFID))
	e.str(m.Uname)
	e.str(m.Aname)
	return finishFrame(e)
}

func EncodeRauth(tag Tag, m RauthMsg) []byte {
	e := newFrame(24, Rauth, tag)
	e.qid(m.AQid)
	return finishFrame(e)
}

func EncodeTattach(tag Tag, m TattachMsg) []byte {
	e := newFrame(32+len(m.Uname)+len(m.Aname), Tattach, tag)
	e.u32(uint32(m.FID))
	e.u32(uint32(m.AFID))
	e.str(m.Uname)
	e.str(m.Aname)
	return finishFrame(e)
}

func EncodeRattach(tag Tag, m RattachMsg) []byte {
	e := newFrame(24, Rattach, tag)
	e.qid(m.Qid)
	return finishFrame(e)
}

func EncodeRerror(tag Tag, m RerrorMsg) []byte {
	e := newFrame(16+len(m.Ename), Rerror, tag)
	e.str(m.Ename)
	return finishFrame(e)
}

func EncodeTflush(tag Tag, m TflushMsg) []byte {
	e := newFrame(9, Tflush, tag)
	e.u16(uint16(m.OldTag))
	return finishFrame(e)
}

func EncodeRflush(tag Tag, m RflushMsg) []byte {
	e := newFrame(7, Rflush, tag)
	return finishFrame(e)
}

func EncodeTwalk(tag Tag, m TwalkMsg) []byte {
	it := NewWalkEncoder(tag, m.FID, m.NewFID)
	for _, name := range m.Names {
		if err := it.Add(name); err != nil {
			panic(err) // programmer error: caller must respect MaxWalkElem
		}
	}
	return it.Finish()
}

func EncodeRwalk(tag Tag, m RwalkMsg) []byte {
	e := newFrame(9+13*len(m.Qids), Rwalk, tag)
	nwqidOff := e.reserve(2)
	for _, q := range m.Qids {
		e.qid(q)
	}
	e.putU16At(nwqidOff, uint16(len(m.Qids)))
	return finishFrame(e)
}

func EncodeTopen(tag Tag, m TopenMsg) []byte {
	e := newFrame(8, Topen, tag)
	e.u32(uint32(m.FID))
	e.u8(m.Mode)
	return finishFrame(e)
}

func EncodeRopen(tag Tag, m RopenMsg) []byte {
	e := newFrame(28, Ropen, tag)
	e.qid(m.Qid)
	e.u32(m.IOUnit)
	return finishFrame(e)
}

func EncodeTcreate(tag Tag, m TcreateMsg) []byte {
	e := newFrame(16+len(m.Name), Tcreate, tag)
	e.u32(uint32(m.FID))
	e.str(m.Name)
	e.u32(m.Perm)
	e.u8(m.Mode)
	return finishFrame(e)
}

func EncodeRcreate(tag Tag, m RcreateMsg) []byte {
	e := newFrame(28, Rcreate, tag)
	e.qid(m.Qid)
	e.u32(m.IOUnit)
	return finishFrame(e)
}

func EncodeTread(tag Tag, m TreadMsg) []byte {
	e := newFrame(20, Tread, tag)
	e.u32(uint32(m.FID))
	e.u64(m.Offset)
	e.u32(m.Count)
	return finishFrame(e)
}

func EncodeRread(tag Tag, m RreadMsg) []byte {
	e := newFrame(RreadHeaderSize+len(m.Data), Rread, tag)
	e.u32(uint32(len(m.Data)))
	e.raw(m.Data)
	return finishFrame(e)
}

func EncodeTwrite(tag Tag, m TwriteMsg) []byte {
	it := NewWriteEncoder(tag, m.FID, m.Offset)
	it.Append(m.Data)
	return it.Finish()
}

func EncodeRwrite(tag Tag, m RwriteMsg) []byte {
	e := newFrame(11, Rwrite, tag)
	e.u32(m.Count)
	return finishFrame(e)
}

func EncodeTclunk(tag Tag, m TclunkMsg) []byte {
	e := newFrame(11, Tclunk, tag)
	e.u32(uint32(m.FID))
	return finishFrame(e)
}

func EncodeRclunk(tag Tag, m RclunkMsg) []byte {
	e := newFrame(7, Rclunk, tag)
	return finishFrame(e)
}

func EncodeTremove(tag Tag, m TremoveMsg) []byte {
	e := newFrame(11, Tremove, tag)
	e.u32(uint32(m.FID))
	return finishFrame(e)
}

func EncodeRremove(tag Tag, m RremoveMsg) []byte {
	e := newFrame(7, Rremove, tag)
	return finishFrame(e)
}

func EncodeTstat(tag Tag, m TstatMsg) []byte {
	e := newFrame(11, Tstat, tag)
	e.u32(uint32(m.FID))
	return finishFrame(e)
}

func EncodeRstat(tag Tag, m RstatMsg) []byte {
	stat := EncodeStat(m.Stat)
	e := newFrame(9+len(stat), Rstat, tag)
	e.u16(uint16(len(stat)))
	e.raw(stat)
	return finishFrame(e)
}

func EncodeTwstat(tag Tag, m TwstatMsg) []byte {
	stat := EncodeStat(m.Stat)
	e := newFrame(13+len(stat), Twstat, tag)
	e.u32(uint32(m.FID))
	e.u16(uint16(len(stat)))
	e.raw(stat)
	return finishFrame(e)
}

func EncodeRwstat(tag Tag, m RwstatMsg) []byte {
	e := newFrame(7, Rwstat, tag)
	return finishFrame(e)
}
