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
// File Name:  ispexec.go
//
// ==========================================================================

package main

import (
	"fmt"
	"github.com/garlick/isp"
	"os"
)

// ispexec runs "command <infile >outfile" for each unit and replaces the
// unit's file with the output

func usage() {

	fmt.Fprintf(os.Stderr, "Usage: ispexec [-f filekey] [--] command [args ...]\n")
	os.Exit(1)
}

// runCommand returns the map callback for argv
func runCommand(filekey string, argv []string) isp.MapFunc {

	return func(u *isp.Unit) error {

		ipath, err := u.FileAccess(filekey, isp.ModeRDONLY)
		if err != nil {
			return err
		}
		in, err := os.Open(ipath)
		if err != nil {
			return fmt.Errorf("%s: %v: %w", ipath, err, isp.ErrNoEnt)
		}
		defer in.Close()

		out, err := os.CreateTemp(".", "isptmp")
		if err != nil {
			return fmt.Errorf("temp file: %v: %w", err, isp.ErrMkTmp)
		}
		opath := out.Name()

		if err := isp.RunCmd(argv, in, out, os.Stderr); err != nil {
			out.Close()
			os.Remove(opath)
			return err
		}
		if err := out.Close(); err != nil {
			os.Remove(opath)
			return fmt.Errorf("%s: %v: %w", opath, err, isp.ErrWrite)
		}

		if err := u.FileSink(filekey); err != nil {
			os.Remove(opath)
			return err
		}
		if err := u.FileSource(filekey, opath, isp.ModeRDWR); err != nil {
			os.Remove(opath)
			return err
		}

		return nil
	}
}

func main() {

	// skip past executable name
	args := os.Args[1:]

	filekey := "file"
	tunings := false

	for len(args) > 0 {

		inSwitch := true

		switch args[0] {
		case "-f", "-filekey":
			filekey = isp.GetStringArg(args, "File key")
			args = args[1:]
		case "-tunings":
			tunings = true
		case "--":
			args = args[1:]
			inSwitch = false
		default:
			inSwitch = false
		}

		if !inSwitch {
			break
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

	if len(args) < 1 {
		usage()
	}

	stab := isp.SymbolTable{{Key: filekey, Type: isp.TypeFile, Flags: isp.Requires}}

	stage, err := isp.Open(isp.FlagSource|isp.FlagSink, stab, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start ispexec: %v\n", err)
		os.Exit(1)
	}

	if err := stage.Map(runCommand(filekey, args)); err != nil {
		stage.Fatalf("map: %v", err)
	}
	if err := stage.Close(); err != nil {
		stage.Fatalf("close: %v", err)
	}
}
