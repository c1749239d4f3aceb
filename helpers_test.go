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
// File Name:  helpers_test.go
//
// ==========================================================================

package isp

import (
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"os"
	"strconv"
	"testing"
)

// chdir changes the working directory to dir for the rest of the test,
// restoring the previous one on cleanup (t.Chdir needs Go 1.24)
func chdir(t *testing.T, dir string) {

	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// pipe returns the read and write ends of a new pipe
func pipe(t *testing.T) (int, int) {

	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	return p[0], p[1]
}

// writeRaw writes bytes straight to fd and closes it
func writeRaw(t *testing.T, fd int, data string) {

	t.Helper()
	_, err := unix.Write(fd, []byte(data))
	require.NoError(t, err)
	require.NoError(t, unix.Close(fd))
}

// testContext returns a quiet context already bound to fid
func testContext(fid int) *Context {

	ctx := NewContext("isptest", DefaultConfig())
	ctx.bind(&Init{}, fid)
	return ctx
}

func sampleUnit(n int) *Element {

	u := NewElement("unit")
	m := NewElement("meta")
	m.AddAttr("key", "n")
	m.AddIntAttr("type", int64(TypeUint64))
	m.AddUintAttr("val", uint64(n))
	m.AddIntAttr("src", 0)
	m.AddIntAttr("sink", NoFID)
	u.Append(m)
	return u
}

func unitVal(i int) string {

	return strconv.Itoa(i)
}
