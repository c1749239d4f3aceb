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
// File Name:  spawn_test.go
//
// ==========================================================================

package isp

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestRunCmdStatus(t *testing.T) {

	tests := []struct {
		name string
		argv []string
		want error
	}{
		{"success", []string{"true"}, nil},
		{"exit status", []string{"false"}, ErrExited},
		{"signal", []string{"sh", "-c", "kill -9 $$"}, ErrSignal},
		{"not found", []string{"/nonexistent/isp-command"}, ErrExec},
		{"empty", nil, ErrInval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunCmd(tt.argv, nil, nil, nil)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunCmdRedirect(t *testing.T) {

	var out bytes.Buffer
	require.NoError(t, RunCmd([]string{"tr", "a-z", "A-Z"}, strings.NewReader("hello\n"), &out, nil))
	assert.Equal(t, "HELLO\n", out.String())
}

func TestCoprocStream(t *testing.T) {

	cp, err := StartCoproc([]string{"cat"})
	require.NoError(t, err)
	assert.Greater(t, cp.Pid, 0)

	h, err := NewHandle(FlagSource|FlagSink, 0, 0, cp.FromChild, cp.ToChild)
	require.NoError(t, err)

	const count = 50
	for i := 0; i < count; i++ {
		require.NoError(t, h.Write(sampleUnit(i)))
	}
	require.NoError(t, h.Write(nil))

	for i := 0; i < count; i++ {
		el, err := h.Read()
		require.NoError(t, err)
		assert.Equal(t, sampleUnit(i).String(), el.String())
	}
	_, err = h.Read()
	assert.ErrorIs(t, err, ErrEOF)

	require.NoError(t, h.Close())
	assert.NoError(t, cp.Wait())
}

func TestCoprocStartFailure(t *testing.T) {

	_, err := StartCoproc([]string{"/nonexistent/isp-command"})
	assert.ErrorIs(t, err, ErrExec)
	assert.Equal(t, KindProcess, KindOf(err))

	_, err = StartCoproc(nil)
	assert.True(t, errors.Is(err, ErrInval))
}
