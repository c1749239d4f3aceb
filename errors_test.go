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
// File Name:  errors_test.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
	"testing"
)

func TestCodeStrings(t *testing.T) {

	assert.Equal(t, "success", Success.Error())
	assert.Equal(t, "user error", ErrUser.Error())
	assert.Equal(t, "user error 1030", Code(1030).Error())
	assert.Equal(t, "unknown error 500", Code(500).Error())
}

func TestCodeOf(t *testing.T) {

	assert.Equal(t, Success, CodeOf(nil))
	assert.Equal(t, ErrCorrupt, CodeOf(fmt.Errorf("file x: %w", ErrCorrupt)))
	assert.Equal(t, ErrUser, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrBind, CodeOf(multierr.Combine(
		fmt.Errorf("a: %w", ErrBind),
		fmt.Errorf("b: %w", ErrBind),
	)))
}

func TestKinds(t *testing.T) {

	tests := []struct {
		code  Code
		kind  Kind
		fatal bool
	}{
		{Success, KindNone, false},
		{ErrWouldBlk, KindWouldBlock, false},
		{ErrParse, KindProtocol, true},
		{ErrWrite, KindTransport, true},
		{ErrBind, KindBinding, true},
		{ErrCorrupt, KindData, false},
		{ErrNotRun, KindData, false},
		{ErrSignal, KindProcess, false},
		{ErrMkTmp, KindResource, true},
		{ErrUser, KindUser, false},
		{Code(2000), KindUser, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.code.Kind(), tt.code.Error())
		assert.Equal(t, tt.fatal, IsFatal(fmt.Errorf("wrapped: %w", tt.code)), tt.code.Error())
	}

	assert.True(t, IsFatal(ErrUserFatal))
	assert.False(t, IsFatal(nil))
	assert.Equal(t, "process", KindProcess.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
