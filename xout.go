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
// File Name:  xout.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"golang.org/x/sys/unix"
)

// Document framing shared by the stream writer and the archive writer
const (
	xmlOpen  = "<?xml version=\"1.0\" standalone=\"yes\"?>\n<document>\n"
	xmlClose = "</document>\n"
)

type docState int

const (
	docVirgin docState = iota
	docOpen
	docClosed
)

// pending is a serialized element partially written to the descriptor
type pending struct {
	buf     []byte
	written int
}

// XOut writes a stream of elements to a non-blocking descriptor as the
// children of a single <document>. Elements that cannot be written
// immediately are queued, up to maxBacklog buffers (0 means unlimited).
type XOut struct {
	fd         int
	err        error
	backlog    []*pending
	maxBacklog int
	state      docState
}

// NewXOut takes ownership of fd and switches it to non-blocking mode
func NewXOut(fd, maxBacklog int) (*XOut, error) {

	if maxBacklog < 0 {
		return nil, fmt.Errorf("output backlog %d: %w", maxBacklog, ErrInval)
	}
	if err := setNonblock(fd); err != nil {
		return nil, err
	}

	return &XOut{fd: fd, maxBacklog: maxBacklog}, nil
}

// Fd returns the underlying descriptor
func (h *XOut) Fd() int {

	return h.fd
}

// Backlog returns the number of queued buffers
func (h *XOut) Backlog() int {

	return len(h.backlog)
}

// SetMaxBacklog changes the queue bound
func (h *XOut) SetMaxBacklog(n int) {

	h.maxBacklog = n
}

// Closed reports whether the document epilogue has been queued
func (h *XOut) Closed() bool {

	return h.state == docClosed
}

// Write serializes el and queues it for output. A nil element closes the
// document. Pending output is flushed first; if the queue is still full,
// ErrWouldBlk is returned and nothing is queued, so the caller must poll and
// retry.
func (h *XOut) Write(el *Element) error {

	if h.state == docClosed {
		return fmt.Errorf("write after document close: %w", ErrBadF)
	}
	if err := h.flush(true); err != nil {
		return err
	}
	if h.maxBacklog > 0 && len(h.backlog) >= h.maxBacklog {
		return ErrWouldBlk
	}

	var buf []byte

	switch h.state {
	case docVirgin:
		if el == nil {
			// empty stream, nothing at all is emitted
			h.state = docClosed
			return nil
		}
		buf = append([]byte(xmlOpen), el.Serialize()...)
		h.state = docOpen
	case docOpen:
		if el == nil {
			buf = []byte(xmlClose)
			h.state = docClosed
		} else {
			buf = el.Serialize()
		}
	}

	h.backlog = append(h.backlog, &pending{buf: buf})

	return h.flush(true)
}

// flush writes queued buffers in order until the descriptor would block
func (h *XOut) flush(suppressWouldBlock bool) error {

	if h.err != nil {
		return h.err
	}

	for len(h.backlog) > 0 {
		b := h.backlog[0]
		for b.written < len(b.buf) {
			n, err := writeFd(h.fd, b.buf[b.written:])
			if err != nil {
				if wouldBlock(err) {
					if suppressWouldBlock {
						return nil
					}
					return ErrWouldBlk
				}
				h.err = fmt.Errorf("write fd %d: %v: %w", h.fd, err, ErrWrite)
				return h.err
			}
			b.written += n
		}
		h.backlog[0] = nil
		h.backlog = h.backlog[1:]
	}

	return nil
}

// Prepoll registers interest in writability while output is queued
func (h *XOut) Prepoll(ps *PollSet) {

	if h.err == nil && len(h.backlog) > 0 {
		ps.Set(h.fd, PollOut)
	}
}

// Postpoll flushes after a poll. Hangup or error conditions are latched and
// returned by every later call.
func (h *XOut) Postpoll(ps *PollSet) {

	if h.err != nil {
		return
	}

	flags := ps.Revents(h.fd)
	if flags&(PollHup|PollErr|PollNval) != 0 {
		h.err = fmt.Errorf("output fd %d: %w", h.fd, ErrPoll)
		return
	}
	if flags&PollOut != 0 {
		h.err = h.flush(true)
	}
}

// waitForIO blocks until the descriptor accepts more output
func (h *XOut) waitForIO() error {

	ps := NewPollSet()
	h.Prepoll(ps)
	if ps.Len() == 0 {
		return h.err
	}
	if _, err := ps.Poll(-1); err != nil {
		return err
	}
	h.Postpoll(ps)

	return h.err
}

// Close drains the queue and closes the descriptor. The document must have
// been closed with Write(nil) unless nothing was ever written.
func (h *XOut) Close() error {

	var res error

	switch {
	case h.err != nil:
		res = h.err
	case h.state == docOpen:
		res = fmt.Errorf("output fd %d: %w", h.fd, ErrNotClose)
	case h.state == docClosed:
		for {
			res = h.flush(false)
			if res != ErrWouldBlk {
				break
			}
			if res = h.waitForIO(); res != nil {
				break
			}
		}
	}

	if err := unix.Close(h.fd); err != nil && res == nil {
		res = fmt.Errorf("close fd %d: %v: %w", h.fd, err, ErrWrite)
	}
	h.backlog = nil

	return res
}
