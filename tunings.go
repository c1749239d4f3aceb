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
// File Name:  tunings.go
//
// ==========================================================================

package isp

import (
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"io"
	"os"
	"runtime"
)

// PrintTunings reports the hardware and the stream settings a stage runs with
func PrintTunings(w io.Writer, cfg *Config) {

	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := message.NewPrinter(language.English)

	nCPU := runtime.NumCPU()
	p.Fprintf(w, "Thrd %d\n", nCPU)
	if cpuid.CPU.ThreadsPerCore > 0 {
		p.Fprintf(w, "Core %d\n", nCPU/cpuid.CPU.ThreadsPerCore)
	}
	if cpuid.CPU.LogicalCores > 0 {
		p.Fprintf(w, "Sock %d\n", nCPU/cpuid.CPU.LogicalCores)
	}
	p.Fprintf(w, "Mmry %d\n", memory.TotalMemory()/(1024*1024*1024))

	p.Fprintf(w, "IBkl %d\n", cfg.IBacklog)
	p.Fprintf(w, "OBkl %d\n", cfg.OBacklog)
	p.Fprintf(w, "Md5c %t\n", cfg.MD5Check)
	p.Fprintf(w, "Dbgf %t\n", cfg.DbgFail)

	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		fi, err := f.Stat()
		if err == nil {
			p.Fprintf(w, "Mode %s %s\n", f.Name(), fi.Mode().String())
		}
	}

	p.Fprintf(w, "\n")
}
