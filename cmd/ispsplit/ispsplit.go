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
// File Name:  ispsplit.go
//
// ==========================================================================

package main

import (
	"errors"
	"fmt"
	"github.com/garlick/isp"
	"os"
)

// ispsplit replicates each unit factor times, numbering the copies with a
// uint64 metadata key

func usage() {

	fmt.Fprintf(os.Stderr, "Usage: ispsplit [-k key] [-z first] -f factor\n")
	os.Exit(1)
}

func main() {

	// skip past executable name
	args := os.Args[1:]

	key := "split"
	zero := 0
	factor := 0
	tunings := false

	for len(args) > 0 {

		switch args[0] {
		case "-k", "-key":
			key = isp.GetStringArg(args, "Split key")
			args = args[1:]
		case "-z", "-zero":
			zero = isp.GetNumericArg(args, "First split number", 0, 0, 0)
			args = args[1:]
		case "-f", "-factor":
			factor = isp.GetNumericArg(args, "Split factor", 0, 1, 0)
			args = args[1:]
		case "-tunings":
			tunings = true
		default:
			usage()
		}

		// skip past argument
		args = args[1:]
	}

	if tunings {
		cfg, err := isp.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
			os.Exit(1)
		}
		isp.PrintTunings(os.Stderr, cfg)
		return
	}

	if factor < 1 {
		usage()
	}

	stab := isp.SymbolTable{{Key: key, Type: isp.TypeUint64, Flags: isp.Provides}}

	stage, err := isp.Open(isp.FlagSource|isp.FlagSink|isp.FlagIgnErr, stab, factor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start ispsplit: %v\n", err)
		os.Exit(1)
	}

	check := func(op string, err error) {
		if err != nil {
			stage.Fatalf("%s: %v", op, err)
		}
	}

	for {
		u, err := stage.ReadUnit()
		if errors.Is(err, isp.ErrEOF) {
			break
		}
		check("unit read", err)

		// copies must not share a file that a later stage may modify
		check("rwfile check", u.RWFileCheck())

		for i := 0; i < factor; i++ {
			cpy := u.Copy()
			check("unit init", cpy.Init())
			check("meta source", cpy.MetaSource(key, isp.Uint64Value(uint64(i+zero))))
			check("unit fini", cpy.Fini(isp.Success))
			check("unit write", stage.WriteUnit(cpy))
		}
	}

	check("unit write", stage.WriteUnit(nil))
	check("close", stage.Close())
}
