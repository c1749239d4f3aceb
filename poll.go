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
// File Name:  poll.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"golang.org/x/sys/unix"
	"strings"
	"time"
)

// Poll event bits, re-exported so callers need not import x/sys/unix
const (
	PollIn   = unix.POLLIN
	PollOut  = unix.POLLOUT
	PollErr  = unix.POLLERR
	PollHup  = unix.POLLHUP
	PollNval = unix.POLLNVAL
)

// PollSet is a growable set of descriptors to wait on
type PollSet struct {
	fds []unix.PollFd
}

// NewPollSet returns an empty poll set
func NewPollSet() *PollSet {

	return &PollSet{}
}

// Zero clears all registrations
func (ps *PollSet) Zero() {

	ps.fds = ps.fds[:0]
}

// Len returns the number of registered descriptors
func (ps *PollSet) Len() int {

	return len(ps.fds)
}

// Set adds events to the registration for fd
func (ps *PollSet) Set(fd int, events int16) {

	for i := range ps.fds {
		if int(ps.fds[i].Fd) == fd {
			ps.fds[i].Events |= events
			return
		}
	}
	ps.fds = append(ps.fds, unix.PollFd{Fd: int32(fd), Events: events})
}

// Revents returns the events reported for fd by the last Poll
func (ps *PollSet) Revents(fd int) int16 {

	for _, pfd := range ps.fds {
		if int(pfd.Fd) == fd {
			return pfd.Revents
		}
	}
	return 0
}

// Poll waits for registered events. A negative timeout waits forever.
// Interrupted waits are resumed with the remaining time.
func (ps *PollSet) Poll(timeout time.Duration) (int, error) {

	if len(ps.fds) == 0 && timeout < 0 {
		return 0, fmt.Errorf("poll with no descriptors and no timeout: %w", ErrInval)
	}

	for i := range ps.fds {
		ps.fds[i].Revents = 0
	}

	deadline := time.Now().Add(timeout)
	for {
		msec := -1
		if timeout >= 0 {
			msec = int(time.Until(deadline) / time.Millisecond)
			if msec < 0 {
				msec = 0
			}
		}
		n, err := unix.Poll(ps.fds, msec)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("poll: %v: %w", err, ErrPoll)
		}
		return n, nil
	}
}

// String shows one character per descriptor: I readable, O writable, E error
func (ps *PollSet) String() string {

	var sb strings.Builder
	for _, pfd := range ps.fds {
		sb.WriteString(fmt.Sprintf("%d:", pfd.Fd))
		switch {
		case pfd.Revents&(PollErr|PollHup|PollNval) != 0:
			sb.WriteByte('E')
		case pfd.Revents&PollIn != 0:
			sb.WriteByte('I')
		case pfd.Revents&PollOut != 0:
			sb.WriteByte('O')
		default:
			sb.WriteByte('.')
		}
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}

// setNonblock puts fd into non-blocking mode
func setNonblock(fd int) error {

	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("set nonblocking on fd %d: %v: %w", fd, err, ErrFcntl)
	}
	return nil
}

// readFd reads once, retrying on EINTR
func readFd(fd int, buf []byte) (int, error) {

	for {
		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// writeFd writes once, retrying on EINTR
func writeFd(fd int, buf []byte) (int, error) {

	for {
		n, err := unix.Write(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func wouldBlock(err error) bool {

	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}
