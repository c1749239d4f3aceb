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
// File Name:  isparchive.go
//
// ==========================================================================

package main

import (
	"errors"
	"fmt"
	"github.com/garlick/isp"
	"go.uber.org/zap"
	"os"
)

// isparchive saves a stream to a compressed file while passing it through,
// or replays a saved stream. It works on raw elements, so it neither joins
// the handshake nor adds a result to the units.

func usage() {

	fmt.Fprintf(os.Stderr, "Usage: isparchive -save path.gz | -load path.gz\n")
	os.Exit(1)
}

func save(stage *isp.Stage, path string) error {

	aw, err := isp.CreateArchive(path)
	if err != nil {
		return err
	}

	h := stage.Handle()
	for {
		el, err := h.Read()
		if errors.Is(err, isp.ErrEOF) {
			break
		}
		if err != nil {
			aw.Close()
			return err
		}
		if err := aw.Write(el); err != nil {
			aw.Close()
			return err
		}
		if err := h.Write(el); err != nil {
			aw.Close()
			return err
		}
	}

	stage.Log.Debug("archive saved", zap.String("path", path), zap.Int("elements", aw.Count()))

	if err := aw.Close(); err != nil {
		return err
	}
	return h.Write(nil)
}

func load(stage *isp.Stage, path string) error {

	ar, err := isp.OpenArchive(path)
	if err != nil {
		return err
	}
	defer ar.Close()

	h := stage.Handle()
	count := 0
	for {
		el, err := ar.Read()
		if errors.Is(err, isp.ErrEOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := h.Write(el); err != nil {
			return err
		}
		count++
	}

	stage.Log.Debug("archive loaded", zap.String("path", path), zap.Int("elements", count))

	return h.Write(nil)
}

func main() {

	// skip past executable name
	args := os.Args[1:]

	savePath := ""
	loadPath := ""
	tunings := false

	for len(args) > 0 {

		switch args[0] {
		case "-save":
			savePath = isp.GetStringArg(args, "Archive file name")
			args = args[1:]
		case "-load":
			loadPath = isp.GetStringArg(args, "Archive file name")
			args = args[1:]
		case "-tunings":
			tunings = true
		default:
			usage()
		}

		// skip past argument
		args = args[1:]
	}

	cfg, err := isp.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
		os.Exit(1)
	}

	if tunings {
		isp.PrintTunings(os.Stderr, cfg)
		return
	}

	if (savePath == "") == (loadPath == "") {
		usage()
	}

	flags := isp.FlagProxy | isp.FlagSource
	if savePath != "" {
		flags |= isp.FlagSink
	}

	ctx := isp.NewContext(os.Args[0], cfg)
	stage, err := ctx.Open(isp.StageOptions{Flags: flags, Argv: os.Args, InFd: 0, OutFd: 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start isparchive: %v\n", err)
		os.Exit(1)
	}

	if savePath != "" {
		err = save(stage, savePath)
	} else {
		err = load(stage, loadPath)
	}
	if err != nil {
		stage.Fatalf("%v", err)
	}

	if err := stage.Close(); err != nil {
		stage.Fatalf("close: %v", err)
	}
}
