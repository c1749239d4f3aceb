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
// File Name:  unit.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"os"
	"path/filepath"
	"time"
)

// Unit is one work item. Entries are kept most recent first; entries are
// never removed, so the unit accumulates its own history.
type Unit struct {
	ctx     *Context
	entries []Entry
}

// NewUnit creates an empty unit bound to the context
func (c *Context) NewUnit() *Unit {

	return &Unit{ctx: c}
}

// UnitFromElement converts a <unit> element read from a stream
func (c *Context) UnitFromElement(el *Element) (*Unit, error) {

	if el.Name != "unit" {
		return nil, fmt.Errorf("expected <unit>, got <%s>: %w", el.Name, ErrDocument)
	}

	u := &Unit{ctx: c}
	for _, ch := range el.Children() {
		ent, err := entryFromElement(ch)
		if err != nil {
			return nil, err
		}
		u.entries = append(u.entries, ent)
	}
	return u, nil
}

// Element converts the unit to its <unit> form
func (u *Unit) Element() *Element {

	el := NewElement("unit")
	for _, ent := range u.entries {
		el.Append(ent.Element())
	}
	return el
}

// Entries returns all entries, most recent first
func (u *Unit) Entries() []Entry {

	return u.entries
}

// Copy returns an independent deep copy bound to the same context
func (u *Unit) Copy() *Unit {

	cpy := &Unit{ctx: u.ctx, entries: make([]Entry, len(u.entries))}
	for i, ent := range u.entries {
		switch e := ent.(type) {
		case *Meta:
			m := *e
			cpy.entries[i] = &m
		case *File:
			f := *e
			cpy.entries[i] = &f
		case *Result:
			r := *e
			cpy.entries[i] = &r
		}
	}
	return cpy
}

func (u *Unit) push(ent Entry) {

	u.entries = append([]Entry{ent}, u.entries...)
}

func (u *Unit) liveMeta(key string) *Meta {

	for _, ent := range u.entries {
		if m, ok := ent.(*Meta); ok && m.Live() && m.Key == key {
			return m
		}
	}
	return nil
}

func (u *Unit) liveFile(key string) *File {

	for _, ent := range u.entries {
		if f, ok := ent.(*File); ok && f.Live() && f.Key == key {
			return f
		}
	}
	return nil
}

// bound fails until the init handshake has given the context a fid
func (u *Unit) bound() error {

	if u.ctx.fid == NoFID {
		return fmt.Errorf("%s: no stage fid: %w", u.ctx.Progname, ErrNoInit)
	}
	return nil
}

// checkMeta fails if key or a string value cannot be written to the stream
func checkMeta(key string, val Value) error {

	if err := checkText(key); err != nil {
		return fmt.Errorf("meta key: %w", err)
	}
	if str, err := val.Str(); err == nil {
		if err := checkText(str); err != nil {
			return fmt.Errorf("meta %q: %w", key, err)
		}
	}
	return nil
}

// METADATA

// MetaSource adds a live metadata entry authored by this stage
func (u *Unit) MetaSource(key string, val Value) error {

	if err := u.bound(); err != nil {
		return err
	}
	if err := checkMeta(key, val); err != nil {
		return err
	}
	if u.liveMeta(key) != nil {
		return fmt.Errorf("meta %q: %w", key, ErrDupKey)
	}
	if val.Type() == TypeFile {
		return fmt.Errorf("meta %q of type file: %w", key, ErrInval)
	}

	u.push(&Meta{Key: key, Value: val, Src: u.ctx.fid, Sink: NoFID})

	return nil
}

// MetaGet returns the live value of key, which must have type t
func (u *Unit) MetaGet(key string, t Type) (Value, error) {

	m := u.liveMeta(key)
	if m == nil {
		return Value{}, fmt.Errorf("meta %q: %w", key, ErrNoKey)
	}
	if m.Value.Type() != t {
		return Value{}, fmt.Errorf("meta %q is %s, not %s: %w", key, m.Value.Type(), t, ErrTypeMism)
	}
	return m.Value, nil
}

// MetaSet changes the live value of key. A value authored by this stage is
// replaced in place; a value from upstream is sunk and a new entry sourced,
// so the unit keeps the same provenance trail that file updates leave.
func (u *Unit) MetaSet(key string, val Value) error {

	if err := u.bound(); err != nil {
		return err
	}
	if err := checkMeta(key, val); err != nil {
		return err
	}
	m := u.liveMeta(key)
	if m == nil {
		return fmt.Errorf("meta %q: %w", key, ErrNoKey)
	}
	if m.Value.Type() != val.Type() {
		return fmt.Errorf("meta %q is %s, not %s: %w", key, m.Value.Type(), val.Type(), ErrTypeMism)
	}

	if m.Src == u.ctx.fid {
		m.Value = val
		return nil
	}

	m.Sink = u.ctx.fid
	u.push(&Meta{Key: key, Value: val, Src: u.ctx.fid, Sink: NoFID})

	return nil
}

// MetaSink retires the live entry for key
func (u *Unit) MetaSink(key string) error {

	if err := u.bound(); err != nil {
		return err
	}
	m := u.liveMeta(key)
	if m == nil {
		return fmt.Errorf("meta %q: %w", key, ErrNoKey)
	}
	m.Sink = u.ctx.fid

	return nil
}

// FILES

// verifyFile checks the recorded size and, when digest checking is on and
// a digest was recorded, the MD5 digest
func (u *Unit) verifyFile(f *File) error {

	fi, err := os.Stat(f.Path)
	if err != nil {
		return fmt.Errorf("file %q (%s): %v: %w", f.Key, f.Path, err, ErrNoEnt)
	}
	if uint64(fi.Size()) != f.Size {
		return fmt.Errorf("file %q (%s) size %d, recorded %d: %w", f.Key, f.Path, fi.Size(), f.Size, ErrCorrupt)
	}
	if f.MD5 == "" || !u.ctx.Config.MD5Check {
		return nil
	}
	digest, err := md5Digest(f.Path)
	if err != nil {
		return err
	}
	if digest != f.MD5 {
		return fmt.Errorf("file %q (%s) digest mismatch: %w", f.Key, f.Path, ErrCorrupt)
	}
	return nil
}

func (u *Unit) newFile(key, path string, mode FileMode) *File {

	return &File{
		Key:  key,
		Path: path,
		Host: u.ctx.Host,
		Src:  u.ctx.fid,
		Sink: NoFID,
		Mode: mode,
	}
}

// FileSource adds a live file reference authored by this stage. The path
// is made absolute and must exist. Size and digest are filled in by Fini.
func (u *Unit) FileSource(key, path string, mode FileMode) error {

	if err := u.bound(); err != nil {
		return err
	}
	if err := checkText(key); err != nil {
		return fmt.Errorf("file key: %w", err)
	}
	if u.liveFile(key) != nil {
		return fmt.Errorf("file %q: %w", key, ErrDupKey)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, ErrGetcwd)
	}
	if err := checkText(abs); err != nil {
		return fmt.Errorf("file %q path: %w", key, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("file %q (%s): %v: %w", key, abs, err, ErrNoEnt)
	}

	u.push(u.newFile(key, abs, mode))

	return nil
}

// FileAccess verifies the live file for key and returns a path to use. For
// ModeRDWR access the old reference is sunk and a new read-write reference
// sourced; a read-only file is first copied into the working directory so
// the upstream file is never modified.
func (u *Unit) FileAccess(key string, mode FileMode) (string, error) {

	f := u.liveFile(key)
	if f == nil {
		return "", fmt.Errorf("file %q: %w", key, ErrNoKey)
	}
	if err := u.verifyFile(f); err != nil {
		return "", err
	}
	if mode&ModeRDONLY != 0 {
		return f.Path, nil
	}
	if err := u.bound(); err != nil {
		return "", err
	}

	path := f.Path
	if f.Mode&ModeRDONLY != 0 {
		npath, err := mkTmpCopy(f.Path, ".")
		if err != nil {
			return "", err
		}
		path = npath
	}

	f.Sink = u.ctx.fid
	u.push(u.newFile(key, path, ModeRDWR))

	return path, nil
}

// FileRename moves the live file for key to npath and sources a read-write
// reference there. A read-only file is copied instead of moved.
func (u *Unit) FileRename(key, npath string) error {

	if err := u.bound(); err != nil {
		return err
	}
	f := u.liveFile(key)
	if f == nil {
		return fmt.Errorf("file %q: %w", key, ErrNoKey)
	}
	if err := u.verifyFile(f); err != nil {
		return err
	}

	abs, err := filepath.Abs(npath)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", npath, err, ErrGetcwd)
	}
	if err := checkText(abs); err != nil {
		return fmt.Errorf("file %q path: %w", key, err)
	}
	if sameFile(f.Path, abs) {
		return fmt.Errorf("file %q: %s is its current path: %w", key, npath, ErrInval)
	}

	if f.Mode&ModeRDONLY != 0 {
		if err := copyFile(f.Path, abs); err != nil {
			return err
		}
	} else if err := os.Rename(f.Path, abs); err != nil {
		return fmt.Errorf("rename %s to %s: %v: %w", f.Path, abs, err, ErrRename)
	}

	if _, err := os.Stat(abs); err != nil {
		if f.Mode&ModeRDONLY != 0 {
			os.Remove(abs)
		} else {
			os.Rename(abs, f.Path)
		}
		return fmt.Errorf("file %q (%s): %v: %w", key, abs, err, ErrNoEnt)
	}

	f.Sink = u.ctx.fid
	u.push(u.newFile(key, abs, ModeRDWR))

	return nil
}

// FileSink retires the live file for key. A read-write file is removed on a
// best-effort basis, since a copy of the unit may still refer to it.
func (u *Unit) FileSink(key string) error {

	if err := u.bound(); err != nil {
		return err
	}
	f := u.liveFile(key)
	if f == nil {
		return fmt.Errorf("file %q: %w", key, ErrNoKey)
	}
	f.Sink = u.ctx.fid

	if f.Mode&ModeRDONLY == 0 {
		if err := os.Remove(f.Path); err != nil {
			u.ctx.dbgfail("unlink sunk file", err, zap.String("key", key), zap.String("path", f.Path))
		}
	}

	return nil
}

// RWFileCheck fails if any live file is read-write. Stages that replicate
// units use it so that two copies never share a mutable file.
func (u *Unit) RWFileCheck() error {

	for _, ent := range u.entries {
		if f, ok := ent.(*File); ok && f.Live() && f.Mode&ModeRDWR != 0 {
			return fmt.Errorf("file %q (%s): %w", f.Key, f.Path, ErrRWFile)
		}
	}
	return nil
}

// LiveFiles returns the live file references, most recent first
func (u *Unit) LiveFiles() []*File {

	var files []*File
	for _, ent := range u.entries {
		if f, ok := ent.(*File); ok && f.Live() {
			files = append(files, f)
		}
	}
	return files
}

// RESULTS

// Result returns the result entry of stage fid
func (u *Unit) Result(fid int) (*Result, error) {

	for _, ent := range u.entries {
		if r, ok := ent.(*Result); ok && r.FID == fid {
			return r, nil
		}
	}
	return nil, fmt.Errorf("result for fid %d: %w", fid, ErrNoKey)
}

// UpstreamResult returns the failure code of the earliest stage before this
// one that did not succeed, or Success
func (u *Unit) UpstreamResult() Code {

	code := Success
	fid := u.ctx.fid
	for _, ent := range u.entries {
		if r, ok := ent.(*Result); ok && r.FID < fid && r.Code != Success {
			code = r.Code
			fid = r.FID
		}
	}
	return code
}

// clock samples process and wall time in milliseconds. Process time
// includes waited-for children so that stages which run commands are
// charged for them.
func clock() (utime, stime, rtime uint64, err error) {

	var self, children unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &self); err != nil {
		return 0, 0, 0, fmt.Errorf("getrusage: %v: %w", err, ErrTime)
	}
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &children); err != nil {
		return 0, 0, 0, fmt.Errorf("getrusage: %v: %w", err, ErrTime)
	}

	ms := func(tv unix.Timeval) uint64 {
		return uint64(tv.Nano() / int64(time.Millisecond))
	}
	utime = ms(self.Utime) + ms(children.Utime)
	stime = ms(self.Stime) + ms(children.Stime)
	rtime = uint64(time.Now().UnixMilli())

	return utime, stime, rtime, nil
}

// Init pushes this stage's result entry holding the starting clock values
func (u *Unit) Init() error {

	if err := u.bound(); err != nil {
		return err
	}
	if _, err := u.Result(u.ctx.fid); err == nil {
		return fmt.Errorf("result for fid %d: %w", u.ctx.fid, ErrDupKey)
	}

	ut, st, rt, err := clock()
	if err != nil {
		return err
	}
	u.push(&Result{FID: u.ctx.fid, UTime: ut, STime: st, RTime: rt, Code: ErrNotRun})

	return nil
}

// Fini stamps unset sources, records size and digest of live files this
// stage authored, and turns the result entry's clock values into elapsed
// times along with code
func (u *Unit) Fini(code Code) error {

	fid := u.ctx.fid

	for _, ent := range u.entries {
		switch e := ent.(type) {
		case *File:
			if !e.Live() {
				continue
			}
			if e.Src == NoFID {
				e.Src = fid
			}
			if e.Src != fid {
				continue
			}
			fi, err := os.Stat(e.Path)
			if err != nil {
				u.ctx.dbgfail("stat file", err, zap.String("key", e.Key), zap.String("path", e.Path))
				return fmt.Errorf("file %q (%s): %v: %w", e.Key, e.Path, err, ErrNoEnt)
			}
			e.Size = uint64(fi.Size())
			if u.ctx.Config.MD5Check {
				digest, err := md5Digest(e.Path)
				if err != nil {
					return err
				}
				e.MD5 = digest
			}
		case *Meta:
			if e.Src == NoFID {
				e.Src = fid
			}
		}
	}

	r, err := u.Result(fid)
	if err != nil {
		return fmt.Errorf("result for fid %d: %w", fid, ErrElement)
	}
	ut, st, rt, err := clock()
	if err != nil {
		return err
	}

	delta := func(now, then uint64) uint64 {
		if now < then {
			return 0
		}
		return now - then
	}
	r.UTime = delta(ut, r.UTime)
	r.STime = delta(st, r.STime)
	r.RTime = delta(rt, r.RTime)
	r.Code = code

	return nil
}

// STREAM I/O

// ReadUnit reads the next unit from h. ErrEOF marks the end of the stream.
func (c *Context) ReadUnit(h *Handle) (*Unit, error) {

	el, err := h.Read()
	if err != nil {
		return nil, err
	}
	return c.UnitFromElement(el)
}

// WriteUnit writes u to h; a nil unit closes the stream
func (c *Context) WriteUnit(h *Handle, u *Unit) error {

	if u == nil {
		return h.Write(nil)
	}
	return h.Write(u.Element())
}

// MapFunc processes one unit. A returned error is recorded in the unit's
// result unless it is fatal, which ends the map loop.
type MapFunc func(u *Unit) error

// Map reads units from h until end of stream, running fn on each one whose
// upstream stages all succeeded (or on every unit with FlagIgnErr), and
// writes them downstream when h is a source. The output stream is closed at
// the end.
func (c *Context) Map(h *Handle, fn MapFunc) error {

	ignerr := h.Flags()&FlagIgnErr != 0
	source := h.Flags()&FlagSource != 0

	for {
		u, err := c.ReadUnit(h)
		if errors.Is(err, ErrEOF) {
			break
		}
		if err != nil {
			return err
		}

		upstream := u.UpstreamResult()

		if err := u.Init(); err != nil {
			return err
		}

		code := ErrNotRun
		if ignerr || upstream == Success {
			code = Success
			if fn != nil {
				if err := fn(u); err != nil {
					if IsFatal(err) {
						return err
					}
					c.dbgfail("unit failed", err)
					code = CodeOf(err)
				}
			}
		}

		if err := u.Fini(code); err != nil {
			return err
		}
		if !source {
			continue
		}
		if err := c.WriteUnit(h, u); err != nil {
			return err
		}
	}

	if !source {
		return nil
	}
	return c.WriteUnit(h, nil)
}
