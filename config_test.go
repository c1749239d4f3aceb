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
// File Name:  config_test.go
//
// ==========================================================================

package isp

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {

	for _, name := range []string{"ISP_DBGFAIL", "ISP_MD5CHECK", "ISP_IBACKLOG", "ISP_OBACKLOG", "ISP_LOGLEVEL"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigEnvironment(t *testing.T) {

	t.Setenv("ISP_DBGFAIL", "true")
	t.Setenv("ISP_MD5CHECK", "1")
	t.Setenv("ISP_IBACKLOG", "0")
	t.Setenv("ISP_OBACKLOG", "16")
	t.Setenv("ISP_LOGLEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.DbgFail)
	assert.True(t, cfg.MD5Check)
	assert.Equal(t, 0, cfg.IBacklog)
	assert.Equal(t, 16, cfg.OBacklog)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {

	t.Setenv("ISP_OBACKLOG", "-1")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrInval)

	t.Setenv("ISP_OBACKLOG", "lots")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestPrintTunings(t *testing.T) {

	var buf bytes.Buffer
	PrintTunings(&buf, &Config{IBacklog: 4, OBacklog: 1000})

	out := buf.String()
	assert.Regexp(t, `(?m)^Thrd \d+$`, out)
	assert.Contains(t, out, "IBkl 4\n")
	assert.Contains(t, out, "OBkl 1,000\n")
	assert.Contains(t, out, "Md5c false\n")
}

func TestSplitKeyValue(t *testing.T) {

	key, val, err := SplitKeyValue("color=blue=green")
	require.NoError(t, err)
	assert.Equal(t, "color", key)
	assert.Equal(t, "blue=green", val)

	_, _, err = SplitKeyValue("novalue")
	assert.ErrorIs(t, err, ErrInval)
	_, _, err = SplitKeyValue("=x")
	assert.ErrorIs(t, err, ErrInval)
}

func TestNumericArg(t *testing.T) {

	n, err := NumericArg([]string{"-f", "7"}, "Split factor", 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = NumericArg([]string{"-f", "0"}, "Split factor", 5, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = NumericArg([]string{"-n", "900"}, "Count", 0, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = NumericArg([]string{"-n", "3"}, "Count", 0, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = NumericArg([]string{"-n", "ten"}, "Count", 0, 0, 0)
	assert.ErrorIs(t, err, ErrInval)
	assert.Contains(t, err.Error(), "-n Count")

	_, err = NumericArg([]string{"-n"}, "Count", 0, 0, 0)
	assert.ErrorIs(t, err, ErrInval)
}

func TestStringArg(t *testing.T) {

	s, err := StringArg([]string{"-k", "shard", "-tunings"}, "Split key")
	require.NoError(t, err)
	assert.Equal(t, "shard", s)

	_, err = StringArg([]string{"-k"}, "Split key")
	assert.ErrorIs(t, err, ErrInval)
	assert.Contains(t, err.Error(), "-k Split key is missing")

	_, err = StringArg([]string{"-k", ""}, "Split key")
	assert.ErrorIs(t, err, ErrInval)

	_, err = StringArg(nil, "Split key")
	assert.ErrorIs(t, err, ErrInval)
}
