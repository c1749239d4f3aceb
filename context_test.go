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
// File Name:  context_test.go
//
// ==========================================================================

package isp

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestContextErrorf(t *testing.T) {

	ctx := NewContext("/usr/local/bin/ispcat", DefaultConfig())
	assert.Equal(t, "ispcat", ctx.Progname)
	assert.Equal(t, NoFID, ctx.FID())
	assert.NotEmpty(t, ctx.Host)

	var buf bytes.Buffer
	ctx.SetStderr(&buf)

	ctx.Errorf("bad unit %d", 7)
	assert.Equal(t, "ispcat: bad unit 7\n", buf.String())

	buf.Reset()
	ctx.bind(&Init{}, 3)
	ctx.Errorf("%v", ErrCorrupt)
	assert.Equal(t, "ispcat[3]: file integrity check failed\n", buf.String())
	assert.Equal(t, 3, ctx.FID())
	assert.NotNil(t, ctx.Init())
}

func TestContextNilConfig(t *testing.T) {

	ctx := NewContext("isptest", nil)
	assert.Equal(t, 1, ctx.Config.IBacklog)
	assert.NotNil(t, ctx.Log)
}
