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

// Package nerr carries a {source, domain, code} error record: transport,
// event-queue, and protocol failures in this module are returned as one of
// these (wrapped in the standard error interface) rather than a bare errno
// or a generic fmt.Errorf string, so callers can classify a failure by
// domain without string-matching its message. Package-level sentinel
// errors (such as session.ErrClosed or the vfs errors), wire.DecodeError,
// and io.EOF are returned as they are.
package nerr

import (
	"fmt"
	"runtime"
)

// Domain classifies where a numeric error code came from.
type Domain int

const (
	// DomainErrno means Code is a POSIX errno value.
	DomainErrno Domain = iota
	// DomainWin32 means Code is a Windows GetLastError/WSAGetLastError
	// value.
	DomainWin32
	// DomainGetAddrInfo means Code is a getaddrinfo/EAI_* value.
	DomainGetAddrInfo
	// DomainProtocol means this is a 9P decode/semantic/mismatch error,
	// not a transport-level failure at all.
	DomainProtocol
)

func (d Domain) String() string {
	switch d {
	case DomainErrno:
		return "errno"
	case DomainWin32:
		return "win32"
	case DomainGetAddrInfo:
		return "getaddrinfo"
	case DomainProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error records a failure's source location alongside its domain and code
// (func/file/line + domain + num) while composing with the standard error
// interface so it works with fmt.Errorf("%w", ...) and errors.As.
type Error struct {
	Func   string
	File   string
	Line   int
	Domain Domain
	Code   int
	// Msg, when set, overrides the default "<domain>: code <n>" rendering
	// (used for Rerror strings and decode failures, which carry their own
	// message rather than a numeric code).
	Msg string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s (%s:%d %s)", e.Msg, e.File, e.Line, e.Func)
	}
	return fmt.Sprintf("%s: code %d (%s:%d %s)", e.Domain, e.Code, e.File, e.Line, e.Func)
}

// New captures the location of its caller and returns an *Error for the
// given domain/code.
func New(domain Domain, code int) *Error {
	return newAt(1, domain, code, "")
}

// Newf is like New but carries a human-readable message instead of a bare
// numeric code (used for protocol-level failures where there is no errno).
func Newf(domain Domain, format string, args ...interface{}) *Error {
	return newAt(1, domain, 0, fmt.Sprintf(format, args...))
}

func newAt(skip int, domain Domain, code int, msg string) *Error {
	pc, file, line, ok := runtime.Caller(skip + 1)
	fn := "???"
	if ok {
		if f := runtime.FuncForPC(pc); f != nil {
			fn = f.Name()
		}
	} else {
		file = "???"
	}
	return &Error{Func: fn, File: file, Line: line, Domain: domain, Code: code, Msg: msg}
}

// Wrap annotates an existing error with a domain, preserving its message.
// Used at transport boundaries translating a Go stdlib error (e.g. from
// net.Dial) into the domain-tagged form callers switch on.
func Wrap(domain Domain, err error) *Error {
	if err == nil {
		return nil
	}
	e := newAt(1, domain, 0, err.Error())
	return e
}
