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
// File Name:  xin.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"golang.org/x/sys/unix"
)

const xinBufSize = 4096

// XIn reads a stream of elements from a non-blocking descriptor. Reads are
// driven by poll readiness; completed top-level elements are queued until
// the queue reaches maxBacklog (0 means unlimited).
type XIn struct {
	fd         int
	err        error
	end        bool
	maxBacklog int
	buf        []byte
	parser     docParser
}

// NewXIn takes ownership of fd and switches it to non-blocking mode
func NewXIn(fd, maxBacklog int) (*XIn, error) {

	if maxBacklog < 0 {
		return nil, fmt.Errorf("input backlog %d: %w", maxBacklog, ErrInval)
	}
	if err := setNonblock(fd); err != nil {
		return nil, err
	}

	return &XIn{fd: fd, maxBacklog: maxBacklog, buf: make([]byte, xinBufSize)}, nil
}

// Fd returns the underlying descriptor
func (h *XIn) Fd() int {

	return h.fd
}

// Backlog returns the number of parsed elements waiting to be read
func (h *XIn) Backlog() int {

	return len(h.parser.queue)
}

// SetMaxBacklog changes the queue bound
func (h *XIn) SetMaxBacklog(n int) {

	h.maxBacklog = n
}

// Count returns the number of top-level elements parsed so far
func (h *XIn) Count() int {

	return h.parser.parsed
}

func (h *XIn) underBacklog() bool {

	return h.maxBacklog == 0 || len(h.parser.queue) < h.maxBacklog
}

// Read returns the next element. Queued elements are delivered before a
// latched error is reported. ErrEOF marks the end of the document;
// ErrWouldBlk means more input is needed.
func (h *XIn) Read() (*Element, error) {

	if el := h.parser.next(); el != nil {
		return el, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	if h.end {
		return nil, ErrEOF
	}
	return nil, ErrWouldBlk
}

// readOnce performs a single read and parses what arrived. It returns the
// number of bytes read; zero means the descriptor would block or hit EOF.
func (h *XIn) readOnce() int {

	n, err := readFd(h.fd, h.buf)
	if err != nil {
		if !wouldBlock(err) {
			h.err = fmt.Errorf("read fd %d: %v: %w", h.fd, err, ErrRead)
		}
		return 0
	}

	if n == 0 {
		if err := h.parser.finish(); err != nil {
			h.err = err
		}
		h.end = true
		return 0
	}

	if err := h.parser.feed(h.buf[:n]); err != nil {
		h.err = err
		return 0
	}
	if h.parser.closed {
		h.end = true
	}

	return n
}

// Prepoll registers interest in readability unless the stream has ended,
// failed, or filled its queue
func (h *XIn) Prepoll(ps *PollSet) {

	if h.err == nil && !h.end && h.underBacklog() {
		ps.Set(h.fd, PollIn)
	}
}

// Postpoll consumes available input after a poll
func (h *XIn) Postpoll(ps *PollSet) {

	if h.err != nil || h.end {
		return
	}

	flags := ps.Revents(h.fd)
	if flags&(PollIn|PollHup) != 0 {
		for h.underBacklog() && !h.end && h.err == nil {
			if h.readOnce() == 0 {
				break
			}
		}
	} else if flags&(PollErr|PollNval) != 0 {
		h.err = fmt.Errorf("input fd %d: %w", h.fd, ErrPoll)
	}
}

// Preparse reads and parses the whole stream, ignoring the queue bound
func (h *XIn) Preparse() error {

	saved := h.maxBacklog
	h.maxBacklog = 0
	defer func() { h.maxBacklog = saved }()

	ps := NewPollSet()
	for h.err == nil && !h.end {
		ps.Zero()
		h.Prepoll(ps)
		if _, err := ps.Poll(-1); err != nil {
			return err
		}
		h.Postpoll(ps)
	}

	return h.err
}

// Close closes the descriptor
func (h *XIn) Close() error {

	if err := unix.Close(h.fd); err != nil {
		return fmt.Errorf("close fd %d: %v: %w", h.fd, err, ErrRead)
	}
	return nil
}
