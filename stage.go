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
// File Name:  stage.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"go.uber.org/zap"
	"os"
)

// Stage is one running pipeline filter: its context and its stream handle
type Stage struct {
	*Context
	h *Handle
}

// StageOptions select how a stage is opened
type StageOptions struct {
	Flags       Flags
	Stab        SymbolTable
	Argv        []string
	SplitFactor int

	// descriptors default to stdin and stdout
	InFd  int
	OutFd int
}

// Open starts a stage on stdin and stdout using the process arguments and
// the environment configuration
func Open(flags Flags, stab SymbolTable, splitFactor int) (*Stage, error) {

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	ctx := NewContext(os.Args[0], cfg)

	return ctx.Open(StageOptions{
		Flags:       flags,
		Stab:        stab,
		Argv:        os.Args,
		SplitFactor: splitFactor,
		InFd:        0,
		OutFd:       1,
	})
}

// Open creates the stage handle and, unless FlagProxy is set, performs the
// init handshake. The handshake always runs in blocking mode.
func (c *Context) Open(opts StageOptions) (*Stage, error) {

	if opts.SplitFactor == 0 {
		opts.SplitFactor = 1
	}
	if opts.SplitFactor < 1 {
		return nil, fmt.Errorf("splitfactor %d: %w", opts.SplitFactor, ErrInval)
	}
	if opts.Flags&FlagNonblock != 0 && opts.Flags&FlagProxy == 0 {
		return nil, fmt.Errorf("nonblocking stage must be a proxy: %w", ErrInval)
	}

	h, err := NewHandle(opts.Flags, c.Config.IBacklog, c.Config.OBacklog, opts.InFd, opts.OutFd)
	if err != nil {
		return nil, err
	}

	s := &Stage{Context: c, h: h}

	if opts.Flags&FlagProxy != 0 {
		return s, nil
	}

	in, fid, err := Handshake(h, opts.Stab, opts.Argv, opts.SplitFactor)
	if fid != NoFID {
		c.bind(in, fid)
	}
	if err != nil {
		c.dbgfail("handshake", err)
		h.Close()
		return nil, err
	}
	c.Log.Debug("handshake complete", zap.Int("filters", len(in.Filters())))

	return s, nil
}

// Handle returns the stage's stream handle
func (s *Stage) Handle() *Handle {

	return s.h
}

// ReadUnit reads the next unit
func (s *Stage) ReadUnit() (*Unit, error) {

	return s.Context.ReadUnit(s.h)
}

// WriteUnit writes a unit; nil closes the stream
func (s *Stage) WriteUnit(u *Unit) error {

	return s.Context.WriteUnit(s.h, u)
}

// Map runs the map loop on the stage handle
func (s *Stage) Map(fn MapFunc) error {

	return s.Context.Map(s.h, fn)
}

// Close flushes output and closes the stage's descriptors
func (s *Stage) Close() error {

	err := s.h.Close()
	s.Log.Sync()
	return err
}
