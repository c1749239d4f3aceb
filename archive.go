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
// File Name:  archive.go
//
// ==========================================================================

package isp

import (
	"bufio"
	"fmt"
	"github.com/klauspost/pgzip"
	"io"
	"os"
)

// ArchiveWriter saves a stream to a gzip file framed as a complete
// document, so that the file can be replayed as a stream later
type ArchiveWriter struct {
	fl     *os.File
	zpr    *pgzip.Writer
	wrtr   *bufio.Writer
	opened bool
	count  int
}

// CreateArchive creates or truncates the archive at path
func CreateArchive(path string) (*ArchiveWriter, error) {

	fl, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %v: %w", path, err, ErrWrite)
	}

	// using parallel pgzip for better performance on large streams
	zpr, err := pgzip.NewWriterLevel(fl, pgzip.BestSpeed)
	if err != nil {
		fl.Close()
		return nil, fmt.Errorf("compressor for %s: %v: %w", path, err, ErrWrite)
	}

	return &ArchiveWriter{fl: fl, zpr: zpr, wrtr: bufio.NewWriter(zpr)}, nil
}

// Write appends one element
func (a *ArchiveWriter) Write(el *Element) error {

	if !a.opened {
		if _, err := a.wrtr.WriteString(xmlOpen); err != nil {
			return fmt.Errorf("archive %s: %v: %w", a.fl.Name(), err, ErrWrite)
		}
		a.opened = true
	}
	if _, err := a.wrtr.Write(el.Serialize()); err != nil {
		return fmt.Errorf("archive %s: %v: %w", a.fl.Name(), err, ErrWrite)
	}
	a.count++

	return nil
}

// Count returns the number of elements written
func (a *ArchiveWriter) Count() int {

	return a.count
}

// Close terminates the document and closes the file. An archive that never
// received an element holds an empty stream.
func (a *ArchiveWriter) Close() error {

	var res error
	if a.opened {
		if _, err := a.wrtr.WriteString(xmlClose); err != nil {
			res = err
		}
	}
	if err := a.wrtr.Flush(); err != nil && res == nil {
		res = err
	}
	if err := a.zpr.Close(); err != nil && res == nil {
		res = err
	}
	if err := a.fl.Close(); err != nil && res == nil {
		res = err
	}
	if res != nil {
		return fmt.Errorf("archive %s: %v: %w", a.fl.Name(), res, ErrWrite)
	}
	return nil
}

// ArchiveReader replays an archive element by element
type ArchiveReader struct {
	fl     *os.File
	zpr    *pgzip.Reader
	buf    []byte
	parser docParser
	end    bool
	err    error
}

// OpenArchive opens the archive at path
func OpenArchive(path string) (*ArchiveReader, error) {

	fl, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, ErrNoEnt)
	}

	zpr, err := pgzip.NewReader(bufio.NewReader(fl))
	if err != nil {
		fl.Close()
		return nil, fmt.Errorf("decompressor for %s: %v: %w", path, err, ErrRead)
	}

	return &ArchiveReader{fl: fl, zpr: zpr, buf: make([]byte, 65536)}, nil
}

// Read returns the next element, or ErrEOF after the last one
func (a *ArchiveReader) Read() (*Element, error) {

	for {
		if el := a.parser.next(); el != nil {
			return el, nil
		}
		if a.err != nil {
			return nil, a.err
		}
		if a.end {
			return nil, ErrEOF
		}

		n, err := a.zpr.Read(a.buf)
		if n > 0 {
			if perr := a.parser.feed(a.buf[:n]); perr != nil {
				a.err = perr
				continue
			}
			if a.parser.closed {
				a.end = true
			}
		}
		if err == io.EOF {
			if ferr := a.parser.finish(); ferr != nil {
				a.err = ferr
			}
			a.end = true
		} else if err != nil {
			a.err = fmt.Errorf("archive %s: %v: %w", a.fl.Name(), err, ErrRead)
		}
	}
}

// Close closes the archive
func (a *ArchiveReader) Close() error {

	a.zpr.Close()
	return a.fl.Close()
}
