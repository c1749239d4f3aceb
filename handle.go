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
// File Name:  handle.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
	"go.uber.org/multierr"
)

// Flags select the direction and behavior of a Handle
type Flags int

// HANDLE FLAGS
const (
	FlagSource   Flags = 0x01 // handle writes a stream
	FlagSink     Flags = 0x02 // handle reads a stream
	FlagIgnErr   Flags = 0x04 // run callbacks even when upstream failed
	FlagPreparse Flags = 0x08 // read the whole input stream before returning
	FlagNonblock Flags = 0x10 // Read and Write return ErrWouldBlk instead of waiting
	FlagProxy    Flags = 0x20 // skip the init handshake
)

// Handle combines an optional input stream and an optional output stream.
// Unless FlagNonblock is set, Read and Write wait on both directions so
// that a stage filling its output never starves its input, and vice versa.
type Handle struct {
	flags Flags
	xin   *XIn
	xout  *XOut
}

// NewHandle creates the streams selected by flags on ifd and ofd
func NewHandle(flags Flags, ibacklog, obacklog, ifd, ofd int) (*Handle, error) {

	h := &Handle{flags: flags}

	if flags&FlagSource != 0 {
		xout, err := NewXOut(ofd, obacklog)
		if err != nil {
			return nil, err
		}
		h.xout = xout
	}

	if flags&FlagSink != 0 {
		xin, err := NewXIn(ifd, ibacklog)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.xin = xin
		if flags&FlagPreparse != 0 {
			if err := xin.Preparse(); err != nil {
				h.Close()
				return nil, err
			}
		}
	}

	return h, nil
}

// Flags returns the current flags
func (h *Handle) Flags() Flags {

	return h.flags
}

// SetFlags replaces the flags. Stream directions fixed at creation are not
// affected.
func (h *Handle) SetFlags(f Flags) {

	h.flags = f
}

// SetBacklog changes both queue bounds
func (h *Handle) SetBacklog(ibacklog, obacklog int) {

	if h.xin != nil {
		h.xin.SetMaxBacklog(ibacklog)
	}
	if h.xout != nil {
		h.xout.SetMaxBacklog(obacklog)
	}
}

// Prepoll registers the events the streams are waiting for
func (h *Handle) Prepoll(ps *PollSet) {

	if h.flags&FlagSink != 0 && h.xin != nil {
		h.xin.Prepoll(ps)
	}
	if h.flags&FlagSource != 0 && h.xout != nil {
		h.xout.Prepoll(ps)
	}
}

// Postpoll lets the streams act on poll results
func (h *Handle) Postpoll(ps *PollSet) {

	if h.flags&FlagSink != 0 && h.xin != nil {
		h.xin.Postpoll(ps)
	}
	if h.flags&FlagSource != 0 && h.xout != nil {
		h.xout.Postpoll(ps)
	}
}

func (h *Handle) waitForIO() error {

	ps := NewPollSet()
	h.Prepoll(ps)
	if _, err := ps.Poll(-1); err != nil {
		return err
	}
	h.Postpoll(ps)

	return nil
}

// Read returns the next input element, waiting for it unless nonblocking
func (h *Handle) Read() (*Element, error) {

	if h.flags&FlagSink == 0 || h.xin == nil {
		return nil, fmt.Errorf("read on handle without input: %w", ErrInval)
	}

	for {
		el, err := h.xin.Read()
		if !errors.Is(err, ErrWouldBlk) || h.flags&FlagNonblock != 0 {
			return el, err
		}
		if err := h.waitForIO(); err != nil {
			return nil, err
		}
	}
}

// Write queues an output element, waiting for room unless nonblocking.
// A nil element closes the output document.
func (h *Handle) Write(el *Element) error {

	if h.flags&FlagSource == 0 || h.xout == nil {
		return fmt.Errorf("write on handle without output: %w", ErrInval)
	}

	for {
		err := h.xout.Write(el)
		if !errors.Is(err, ErrWouldBlk) || h.flags&FlagNonblock != 0 {
			return err
		}
		if err := h.waitForIO(); err != nil {
			return err
		}
	}
}

// Close flushes and closes the output, then closes the input. Both are
// always closed; all failures are returned.
func (h *Handle) Close() error {

	var err error

	if h.xout != nil {
		err = multierr.Append(err, h.xout.Close())
		h.xout = nil
	}
	if h.xin != nil {
		err = multierr.Append(err, h.xin.Close())
		h.xin = nil
	}

	return err
}
