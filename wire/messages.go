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

// Field names deliberately differ between T and R variants of the same
// call (e.g. Tattach.AFID vs Rattach.Qid) so that a reader never confuses a
// request field with a response field of the same op.

type TversionMsg struct {
	Msize   uint32
	Version string
}

type RversionMsg struct {
	Msize   uint32
	Version string
}

type TauthMsg struct {
	AFID  FID
	Uname string
	Aname string
}

type RauthMsg struct {
	AQid Qid
}

type TattachMsg struct {
	FID   FID
	AFID  FID
	Uname string
	Aname string
}

type RattachMsg struct {
	Qid Qid
}

type RerrorMsg struct {
	Ename string
}

type TflushMsg struct {
	OldTag Tag
}

type RflushMsg struct{}

// TwalkMsg is encoded by EncodeTwalk through the incremental WalkEncoder in
// walk.go; callers that add names one at a time can use WalkEncoder
// directly. RwalkMsg is produced by Decode.
type TwalkMsg struct {
	FID    FID
	NewFID FID
	Names  []string
}

type RwalkMsg struct {
	Qids []Qid
}

type TopenMsg struct {
	FID  FID
	Mode uint8
}

type RopenMsg struct {
	Qid    Qid
	IOUnit uint32
}

type TcreateMsg struct {
	FID  FID
	Name string
	Perm uint32
	Mode uint8
}

type RcreateMsg struct {
	Qid    Qid
	IOUnit uint32
}

type TreadMsg struct {
	FID    FID
	Offset uint64
	Count  uint32
}

type RreadMsg struct {
	Data []byte
}

type TwriteMsg struct {
	FID    FID
	Offset uint64
	Data   []byte
}

type RwriteMsg struct {
	Count uint32
}

type TclunkMsg struct {
	FID FID
}

type RclunkMsg struct{}

type TremoveMsg struct {
	FID FID
}

type RremoveMsg struct{}

type TstatMsg struct {
	FID FID
}

type RstatMsg struct {
	Stat Stat
}

type TwstatMsg struct {
	FID  FID
	Stat Stat
}

type RwstatMsg struct{}
