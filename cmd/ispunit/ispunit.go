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
// File Name:  ispunit.go
//
// ==========================================================================

package main

import (
	"fmt"
	"github.com/garlick/isp"
	"go.uber.org/zap"
	"os"
)

// ispunit creates count identical units from key=value arguments

type binding struct {
	key string
	raw string
	typ isp.Type
	val isp.Value
}

func usage() {

	fmt.Fprintf(os.Stderr, "Usage: ispunit [-n count] [-i|-u|-d|-s|-f key=value ...]\n")
	os.Exit(1)
}

func main() {

	// skip past executable name
	args := os.Args[1:]

	var binds []binding
	count := 1
	tunings := false

	add := func(typ isp.Type) {
		arg := isp.GetStringArg(args, "Key=value argument")
		key, raw, err := isp.SplitKeyValue(arg)
		if err == nil && raw == "" {
			err = fmt.Errorf("%q has an empty value: %w", arg, isp.ErrInval)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
			os.Exit(1)
		}
		b := binding{key: key, raw: raw, typ: typ}
		if typ != isp.TypeFile {
			// values are checked before the handshake
			b.val, err = isp.ParseValue(typ, raw)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nERROR: %s: %v\n", key, err)
				os.Exit(1)
			}
		}
		binds = append(binds, b)
	}

	for len(args) > 0 {

		switch args[0] {
		case "-s", "-string":
			add(isp.TypeStr)
			args = args[1:]
		case "-i", "-int64":
			add(isp.TypeInt64)
			args = args[1:]
		case "-u", "-uint64":
			add(isp.TypeUint64)
			args = args[1:]
		case "-d", "-double":
			add(isp.TypeDouble)
			args = args[1:]
		case "-f", "-file":
			add(isp.TypeFile)
			args = args[1:]
		case "-n", "-numunits":
			count = isp.GetNumericArg(args, "Number of units", 0, 0, 0)
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

	var stab isp.SymbolTable
	for _, b := range binds {
		stab = append(stab, isp.Sym{Key: b.key, Type: b.typ, Flags: isp.Provides})
	}

	stage, err := isp.Open(isp.FlagSource, stab, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start ispunit: %v\n", err)
		os.Exit(1)
	}

	check := func(op string, err error) {
		if err != nil {
			stage.Fatalf("%s: %v", op, err)
		}
	}

	for i := 0; i < count; i++ {
		u := stage.NewUnit()
		check("unit init", u.Init())
		for _, b := range binds {
			if b.typ == isp.TypeFile {
				check("file source", u.FileSource(b.key, b.raw, isp.ModeRDONLY))
			} else {
				check("meta source", u.MetaSource(b.key, b.val))
			}
		}
		check("unit fini", u.Fini(isp.Success))
		check("unit write", stage.WriteUnit(u))
	}

	stage.Log.Debug("units written", zap.Int("count", count))

	check("unit write", stage.WriteUnit(nil))
	check("close", stage.Close())
}
