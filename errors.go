// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  errors.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
)

// Code is an ISP result code. The integer value is what travels in the
// code attribute of a result element, so values must never be renumbered.
type Code int

// RESULT CODES
const (
	Success     Code = 0
	ErrNotRun   Code = 1
	ErrNoKey    Code = 2
	ErrDupKey   Code = 3
	ErrCorrupt  Code = 4
	ErrNoEnt    Code = 5
	ErrExited   Code = 6
	ErrSignal   Code = 7
	ErrStopped  Code = 8
	ErrWait     Code = 9
	ErrEOF      Code = 10
	ErrRead     Code = 11
	ErrWrite    Code = 12
	ErrWouldBlk Code = 13
	ErrNoMem    Code = 14
	ErrFcntl    Code = 15
	ErrParse    Code = 16
	ErrPoll     Code = 17
	ErrNotClose Code = 18
	ErrTime     Code = 19
	ErrMkTmp    Code = 20
	ErrCopy     Code = 21
	ErrRedirect Code = 22
	ErrFork     Code = 23
	ErrExec     Code = 24
	ErrPipe     Code = 25
	ErrRename   Code = 26
	ErrAttr     Code = 27
	ErrInval    Code = 28
	ErrNoInit   Code = 29
	ErrElement  Code = 30
	ErrGetcwd   Code = 31
	ErrBadF     Code = 32
	ErrRWFile   Code = 33
	ErrDocument Code = 34
	ErrBind     Code = 35
	ErrTypeMism Code = 36

	ErrUserFatal Code = 1024
	ErrUser      Code = 1025
)

var errtab = map[Code]string{
	Success:     "success",
	ErrNotRun:   "not run",
	ErrNoKey:    "key not found",
	ErrDupKey:   "duplicate key",
	ErrCorrupt:  "file integrity check failed",
	ErrNoEnt:    "file not found",
	ErrExited:   "subprocess exited with nonzero status",
	ErrSignal:   "subprocess terminated by signal",
	ErrStopped:  "subprocess stopped",
	ErrWait:     "wait failed",
	ErrEOF:      "end of file",
	ErrRead:     "read error",
	ErrWrite:    "write error",
	ErrWouldBlk: "operation would block",
	ErrNoMem:    "out of memory",
	ErrFcntl:    "fcntl error",
	ErrParse:    "XML parse error",
	ErrPoll:     "poll error",
	ErrNotClose: "document not closed",
	ErrTime:     "time error",
	ErrMkTmp:    "could not create temporary file",
	ErrCopy:     "file copy failed",
	ErrRedirect: "redirect failed",
	ErrFork:     "fork failed",
	ErrExec:     "exec failed",
	ErrPipe:     "pipe failed",
	ErrRename:   "rename failed",
	ErrAttr:     "attribute error",
	ErrInval:    "invalid argument",
	ErrNoInit:   "stage not initialized",
	ErrElement:  "unexpected element",
	ErrGetcwd:   "getcwd failed",
	ErrBadF:     "bad file descriptor",
	ErrRWFile:   "unit contains read-write file",
	ErrDocument: "document error",
	ErrBind:     "symbol binding failed",
	ErrTypeMism: "type mismatch",

	ErrUserFatal: "fatal user error",
	ErrUser:      "user error",
}

// Error implements the error interface
func (c Code) Error() string {

	if s, ok := errtab[c]; ok {
		return s
	}
	if c > ErrUser {
		return fmt.Sprintf("user error %d", int(c))
	}
	return fmt.Sprintf("unknown error %d", int(c))
}

// Kind groups result codes by how a stage should react to them
type Kind int

// ERROR KINDS
const (
	KindNone Kind = iota
	KindProtocol
	KindTransport
	KindWouldBlock
	KindBinding
	KindData
	KindProcess
	KindResource
	KindUser
)

var kindNames = [...]string{"none", "protocol", "transport", "wouldblock", "binding", "data", "process", "resource", "user"}

func (k Kind) String() string {

	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Fatal reports whether an error of this kind ends the stage rather than
// being recorded in a unit result
func (k Kind) Fatal() bool {

	switch k {
	case KindProtocol, KindTransport, KindBinding, KindResource:
		return true
	}
	return false
}

// Kind classifies the code
func (c Code) Kind() Kind {

	switch c {
	case Success:
		return KindNone
	case ErrWouldBlk:
		return KindWouldBlock
	case ErrParse, ErrElement, ErrDocument, ErrNotClose, ErrNoInit, ErrEOF, ErrBadF:
		return KindProtocol
	case ErrRead, ErrWrite, ErrPoll, ErrFcntl, ErrPipe:
		return KindTransport
	case ErrBind:
		return KindBinding
	case ErrNoKey, ErrDupKey, ErrCorrupt, ErrNoEnt, ErrTypeMism, ErrAttr, ErrRWFile, ErrInval,
		ErrCopy, ErrRename, ErrNotRun:
		return KindData
	case ErrExited, ErrSignal, ErrStopped, ErrWait, ErrExec, ErrRedirect:
		return KindProcess
	case ErrNoMem, ErrTime, ErrMkTmp, ErrFork, ErrGetcwd:
		return KindResource
	}
	return KindUser
}

// CodeOf extracts the result code carried by err. A nil error is Success,
// an error without a code is ErrUser.
func CodeOf(err error) Code {

	if err == nil {
		return Success
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return ErrUser
}

// KindOf classifies an arbitrary error
func KindOf(err error) Kind {

	return CodeOf(err).Kind()
}

// IsFatal reports whether err should abort the unit map loop
func IsFatal(err error) bool {

	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserFatal) {
		return true
	}
	return KindOf(err).Fatal()
}
