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
// File Name:  context.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"io"
	"os"
	"path/filepath"
)

// Context is the per-stage state every unit operation depends on: the
// stage's position in the pipeline, the init stack it received, the host
// it runs on, and its configuration. A unit is bound to the context that
// created or read it.
type Context struct {
	Progname string
	Host     string
	Config   *Config
	Log      *zap.Logger
	Stderr   io.Writer

	fid   int
	init  *Init
	label *color.Color
}

// NewContext creates a context with no fid assigned. A nil config selects
// the defaults.
func NewContext(progname string, cfg *Config) *Context {

	if cfg == nil {
		cfg = DefaultConfig()
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	progname = filepath.Base(progname)

	ctx := &Context{
		Progname: progname,
		Host:     host,
		Config:   cfg,
		Log:      newLogger(cfg, progname),
		Stderr:   os.Stderr,
		fid:      NoFID,
		label:    color.New(color.FgRed, color.Bold),
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		ctx.label.DisableColor()
	}

	return ctx
}

// FID returns the stage id, or NoFID before the handshake
func (c *Context) FID() int {

	return c.fid
}

// Init returns the init stack cached by the handshake
func (c *Context) Init() *Init {

	return c.init
}

// bind records the outcome of the handshake
func (c *Context) bind(in *Init, fid int) {

	if fid != NoFID && c.fid == NoFID {
		c.Log = c.Log.With(zap.Int("fid", fid))
	}
	c.fid = fid
	c.init = in
}

// SetStderr redirects user diagnostics, uncolored
func (c *Context) SetStderr(w io.Writer) {

	c.Stderr = w
	c.label.DisableColor()
}

func (c *Context) prefix() string {

	if c.fid == NoFID {
		return c.Progname + ":"
	}
	return fmt.Sprintf("%s[%d]:", c.Progname, c.fid)
}

// Errorf prints a diagnostic labeled with the program name and fid
func (c *Context) Errorf(format string, args ...interface{}) {

	fmt.Fprintf(c.Stderr, "%s %s\n", c.label.Sprint(c.prefix()), fmt.Sprintf(format, args...))
}

// Fatalf prints a diagnostic and exits with status 1
func (c *Context) Fatalf(format string, args ...interface{}) {

	c.Errorf(format, args...)
	c.Log.Sync()
	os.Exit(1)
}

// dbgfail logs a failure that is otherwise silent
func (c *Context) dbgfail(msg string, err error, fields ...zap.Field) {

	c.Log.Debug(msg, append(fields, zap.Error(err))...)
}
