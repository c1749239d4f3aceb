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
// File Name:  ispcat.go
//
// ==========================================================================

package main

import (
	"bufio"
	"fmt"
	"github.com/garlick/isp"
	"golang.org/x/sys/unix"
	"os"
	"path/filepath"
	"strings"
)

// ispcat creates a stream of units, one per regular file, from paths on the
// command line or, when none are given, from a list of paths on stdin

type catter struct {
	stage     *isp.Stage
	filekey   string
	basekey   string
	recursive bool
}

func (c *catter) check(op string, err error) {

	if err != nil {
		c.stage.Fatalf("%s: %v", op, err)
	}
}

// baseName strips the directory and any extension
func baseName(path string) string {

	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

func (c *catter) cat(path string) {

	fi, err := os.Stat(path)
	if err != nil {
		c.stage.Fatalf("%v", err)
	}

	if c.recursive && fi.IsDir() {
		ents, err := os.ReadDir(path)
		if err != nil {
			c.stage.Fatalf("%v", err)
		}
		for _, ent := range ents {
			c.cat(filepath.Join(path, ent.Name()))
		}
		return
	}

	if !fi.Mode().IsRegular() {
		c.stage.Fatalf("%s: not a regular file", path)
	}
	if unix.Access(path, unix.R_OK) != nil {
		c.stage.Fatalf("%s: no read access", path)
	}

	u := c.stage.NewUnit()
	c.check("unit init", u.Init())
	c.check("file source", u.FileSource(c.filekey, path, isp.ModeRDONLY))
	c.check("meta source", u.MetaSource(c.basekey, isp.StrValue(baseName(path))))
	c.check("unit fini", u.Fini(isp.Success))
	c.check("unit write", c.stage.WriteUnit(u))
}

func main() {

	// skip past executable name
	args := os.Args[1:]

	c := &catter{filekey: "file", basekey: "basename"}
	tunings := false

	for len(args) > 0 {

		inSwitch := true

		switch args[0] {
		case "-r", "-recursive":
			c.recursive = true
		case "-f", "-filekey":
			c.filekey = isp.GetStringArg(args, "File key")
			args = args[1:]
		case "-b", "-basekey":
			c.basekey = isp.GetStringArg(args, "Basename key")
			args = args[1:]
		case "-tunings":
			tunings = true
		default:
			if strings.HasPrefix(args[0], "-") {
				fmt.Fprintf(os.Stderr, "\nERROR: Unrecognized option '%s'\n", args[0])
				fmt.Fprintf(os.Stderr, "Usage: ispcat [-r] [-f filekey] [-b basekey] [file ...]\n")
				os.Exit(1)
			}
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

	stab := isp.SymbolTable{
		{Key: c.filekey, Type: isp.TypeFile, Flags: isp.Provides},
		{Key: c.basekey, Type: isp.TypeStr, Flags: isp.Provides},
	}

	stage, err := isp.Open(isp.FlagSource, stab, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to start ispcat: %v\n", err)
		os.Exit(1)
	}
	c.stage = stage

	if len(args) > 0 {
		for _, path := range args {
			c.cat(path)
		}
	} else {
		scanr := bufio.NewScanner(os.Stdin)
		for scanr.Scan() {
			path := strings.TrimSpace(scanr.Text())
			if path != "" {
				c.cat(path)
			}
		}
		c.check("reading paths", scanr.Err())
	}

	c.check("unit write", stage.WriteUnit(nil))
	c.check("close", stage.Close())
}
