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
// File Name:  spawn.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
	"golang.org/x/sys/unix"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// waitError classifies the way a child process ended
func waitError(argv []string, err error) error {

	if err == nil {
		return nil
	}

	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return fmt.Errorf("%s: %v: %w", argv[0], err, ErrWait)
	}

	ws, ok := ee.Sys().(syscall.WaitStatus)
	switch {
	case !ok:
		return fmt.Errorf("%s: %v: %w", argv[0], err, ErrWait)
	case ws.Signaled():
		return fmt.Errorf("%s: %v: %w", argv[0], ws.Signal(), ErrSignal)
	case ws.Stopped():
		return fmt.Errorf("%s: %v: %w", argv[0], ws.StopSignal(), ErrStopped)
	case ws.Exited() && ws.ExitStatus() != 0:
		return fmt.Errorf("%s: exit status %d: %w", argv[0], ws.ExitStatus(), ErrExited)
	}
	return nil
}

func startError(argv []string, err error) error {

	var pe *os.PathError
	if errors.Is(err, exec.ErrNotFound) || errors.As(err, &pe) {
		return fmt.Errorf("%s: %v: %w", argv[0], err, ErrExec)
	}
	return fmt.Errorf("%s: %v: %w", argv[0], err, ErrFork)
}

// RunCmd runs argv to completion. Nil streams are connected to the null
// device.
func RunCmd(argv []string, stdin io.Reader, stdout, stderr io.Writer) error {

	if len(argv) == 0 {
		return fmt.Errorf("empty command: %w", ErrInval)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return startError(argv, err)
	}
	err := cmd.Wait()
	if err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return fmt.Errorf("%s: %v: %w", argv[0], err, ErrRedirect)
		}
	}
	return waitError(argv, err)
}

// Coproc is a child process whose stdin and stdout are pipes. ToChild and
// FromChild are raw descriptors suitable for NewHandle, which takes
// ownership of them.
type Coproc struct {
	Pid       int
	ToChild   int
	FromChild int

	argv []string
	cmd  *exec.Cmd
}

func closeFds(fds ...int) {

	for _, fd := range fds {
		unix.Close(fd)
	}
}

// StartCoproc starts argv with pipes on stdin and stdout. The child's
// stderr is inherited.
func StartCoproc(argv []string) (*Coproc, error) {

	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command: %w", ErrInval)
	}

	var toChild, fromChild [2]int
	if err := unix.Pipe2(toChild[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("pipe: %v: %w", err, ErrPipe)
	}
	if err := unix.Pipe2(fromChild[:], unix.O_CLOEXEC); err != nil {
		closeFds(toChild[:]...)
		return nil, fmt.Errorf("pipe: %v: %w", err, ErrPipe)
	}

	childIn := os.NewFile(uintptr(toChild[0]), "coproc-stdin")
	childOut := os.NewFile(uintptr(fromChild[1]), "coproc-stdout")

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = childIn
	cmd.Stdout = childOut
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	childIn.Close()
	childOut.Close()
	if err != nil {
		closeFds(toChild[1], fromChild[0])
		return nil, startError(argv, err)
	}

	return &Coproc{
		Pid:       cmd.Process.Pid,
		ToChild:   toChild[1],
		FromChild: fromChild[0],
		argv:      argv,
		cmd:       cmd,
	}, nil
}

// Wait waits for the child to exit and classifies its status
func (c *Coproc) Wait() error {

	return waitError(c.argv, c.cmd.Wait())
}
