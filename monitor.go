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
// File Name:  monitor.go
//
// ==========================================================================

package isp

import (
	"github.com/gin-gonic/gin"
	"net/http"
)

// MONITOR ROUTES

// NewMonitor returns a router that reports on a running stage:
//
//	GET /stage   progname, host, and fid
//	GET /init    the init stack as received and extended by this stage
//	GET /stats   timing statistics collected so far
func NewMonitor(ctx *Context, sc *StatsCollector) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/stage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"progname": ctx.Progname,
			"host":     ctx.Host,
			"fid":      ctx.FID(),
		})
	})

	r.GET("/init", func(c *gin.Context) {
		in := ctx.Init()
		if in == nil {
			c.String(http.StatusNotFound, "%v\n", ErrNoInit)
			return
		}
		el, err := in.Element()
		if err != nil {
			c.String(http.StatusInternalServerError, "%v\n", err)
			return
		}
		c.Data(http.StatusOK, "application/xml; charset=utf-8", el.Serialize())
	})

	r.GET("/stats", func(c *gin.Context) {
		if sc == nil {
			c.String(http.StatusNotFound, "no statistics collected\n")
			return
		}
		c.JSON(http.StatusOK, sc.Snapshot())
	})

	return r
}
