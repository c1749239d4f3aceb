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
// File Name:  ispstats.go
//
// ==========================================================================

package main

import (
	"fmt"
	"github.com/garlick/isp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"os"
)

// ispstats passes units through unchanged and reports the timing results
// of every upstream stage when the stream ends. With -serve, the statistics
// can also be followed over HTTP while the stream runs.

func main() {

	// skip past executable name
	args := os.Args[1:]

	// address for the optional monitoring server
	serve := ""

	for len(args) > 0 {

		switch args[0] {
		case "-serve":
			serve = isp.GetStringArg(args, "Monitor address")
			args = args[1:]
		case "-tunings":
			cfg, err := isp.LoadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
				os.Exit(1)
			}
			isp.PrintTunings(os.Stderr, cfg)
			return
		default:
			fmt.Fprintf(os.Stderr, "\nERROR: Unrecognized option '%s'\n", args[0])
			fmt.Fprintf(os.Stderr, "Usage: ispstats [-serve host:port] [-tunings]\n")
			os.Exit(1)
		}

		// skip past argument
		args = args[1:]
	}

	stage, err := isp.Open(isp.FlagSource|isp.FlagSink|isp.FlagIgnErr, nil, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start ispstats: %v\n", err)
		os.Exit(1)
	}

	sc, err := isp.NewStatsCollector(stage.Init(), stage.FID())
	if err != nil {
		stage.Fatalf("stats: %v", err)
	}

	if serve != "" {
		gin.SetMode(gin.ReleaseMode)
		r := isp.NewMonitor(stage.Context, sc)
		go func() {
			if err := r.Run(serve); err != nil {
				stage.Errorf("monitor: %v", err)
			}
		}()
		stage.Log.Debug("monitor listening", zap.String("addr", serve))
	}

	if err := stage.Map(sc.Add); err != nil {
		stage.Fatalf("map: %v", err)
	}

	sc.Report(os.Stderr)

	if err := stage.Close(); err != nil {
		stage.Fatalf("close: %v", err)
	}
}
