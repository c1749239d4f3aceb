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
// File Name:  monitor_test.go
//
// ==========================================================================

package isp

import (
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {

	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMonitorRoutes(t *testing.T) {

	gin.SetMode(gin.TestMode)

	ctx := NewContext("ispstats", DefaultConfig())
	in := statsInit()
	ctx.bind(in, 2)

	sc, err := NewStatsCollector(in, 2)
	require.NoError(t, err)
	require.NoError(t, sc.Add(timedUnit(ctx, Success, Success)))
	require.NoError(t, sc.Add(timedUnit(ctx, ErrExited, Success)))

	r := NewMonitor(ctx, sc)

	w := get(t, r, "/stage")
	assert.Equal(t, http.StatusOK, w.Code)
	var stage map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stage))
	assert.Equal(t, "ispstats", stage["progname"])
	assert.Equal(t, float64(2), stage["fid"])

	w = get(t, r, "/init")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "<init>"))
	assert.Contains(t, w.Body.String(), `splitfactor="2"`)

	w = get(t, r, "/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	var snap StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Failed)
	require.Len(t, snap.Stages, 3)
	assert.Equal(t, "tot", snap.Stages[2].Stage)
	require.NotNil(t, snap.Stages[2].Real)
	assert.InDelta(t, 4.0, snap.Stages[2].Real.Mean, 1e-9)

	// stage 0 failed once, so stage 0 has one sample and stage 1 two
	assert.Equal(t, 0, snap.Stages[0].Units)
	assert.Equal(t, 2, snap.Stages[1].Units)
}

func TestMonitorWithoutInit(t *testing.T) {

	gin.SetMode(gin.TestMode)

	r := NewMonitor(NewContext("ispstats", DefaultConfig()), nil)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/init").Code)
	assert.Equal(t, http.StatusNotFound, get(t, r, "/stats").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/stage").Code)
}
