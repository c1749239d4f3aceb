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
// File Name:  init.go
//
// ==========================================================================

package isp

import (
	"errors"
	"fmt"
	"go.uber.org/multierr"
	"os"
)

// ProtoVersion is the protocol version announced by every filter
const ProtoVersion = 1

// Filter describes one pipeline stage as recorded in the init element
type Filter struct {
	FID         int
	Cwd         string
	UID         int
	GID         int
	Proto       int
	SplitFactor int
	Argv        []string
	Stab        SymbolTable
	HasStab     bool
}

// NewFilter describes the calling process as stage fid
func NewFilter(fid int, stab SymbolTable, argv []string, splitFactor int) (*Filter, error) {

	if fid < 0 || splitFactor < 1 {
		return nil, fmt.Errorf("filter fid %d splitfactor %d: %w", fid, splitFactor, ErrInval)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrGetcwd)
	}
	for _, str := range append([]string{cwd}, argv...) {
		if err := checkText(str); err != nil {
			return nil, fmt.Errorf("filter fid %d: %w", fid, err)
		}
	}

	return &Filter{
		FID:         fid,
		Cwd:         cwd,
		UID:         os.Getuid(),
		GID:         os.Getgid(),
		Proto:       ProtoVersion,
		SplitFactor: splitFactor,
		Argv:        append([]string(nil), argv...),
		Stab:        stab,
		HasStab:     true,
	}, nil
}

// Element converts the filter to its <filter> form
func (f *Filter) Element() (*Element, error) {

	el := NewElement("filter")
	el.AddIntAttr("fid", int64(f.FID))
	el.AddAttr("cwd", f.Cwd)
	el.AddIntAttr("uid", int64(f.UID))
	el.AddIntAttr("gid", int64(f.GID))
	el.AddIntAttr("proto", int64(f.Proto))
	el.AddIntAttr("splitfactor", int64(f.SplitFactor))

	argv := NewElement("argv")
	for i, arg := range f.Argv {
		a := NewElement("arg")
		a.AddAttr("key", itoa(i))
		a.AddAttr("val", arg)
		argv.Append(a)
	}
	el.Append(argv)

	if f.HasStab {
		stab, err := f.Stab.Element()
		if err != nil {
			return nil, err
		}
		el.Append(stab)
	}

	return el, nil
}

// filterFromElement parses a <filter> element
func filterFromElement(el *Element) (*Filter, error) {

	if el.Name != "filter" {
		return nil, fmt.Errorf("<%s> in init: %w", el.Name, ErrElement)
	}

	f := &Filter{}
	ints := []struct {
		name string
		dst  *int
	}{
		{"fid", &f.FID},
		{"uid", &f.UID},
		{"gid", &f.GID},
		{"proto", &f.Proto},
		{"splitfactor", &f.SplitFactor},
	}
	for _, it := range ints {
		val, err := el.IntAttr(it.name)
		if err != nil {
			return nil, err
		}
		*it.dst = int(val)
	}
	cwd, err := el.Attr("cwd")
	if err != nil {
		return nil, err
	}
	f.Cwd = cwd

	if argv := el.FindName("argv"); argv != nil {
		for _, a := range argv.Children() {
			val, err := a.Attr("val")
			if err != nil {
				return nil, err
			}
			f.Argv = append(f.Argv, val)
		}
	}

	if stab := el.FindName("stab"); stab != nil {
		st, err := symbolTableFromElement(stab)
		if err != nil {
			return nil, err
		}
		f.Stab = st
		f.HasStab = true
	}

	return f, nil
}

// Init is the stack of filters seen so far, most recent first
type Init struct {
	filters []*Filter
}

// Filters returns the stack, top first
func (in *Init) Filters() []*Filter {

	return in.filters
}

// Peek returns the most recent filter
func (in *Init) Peek() (*Filter, error) {

	if len(in.filters) == 0 {
		return nil, fmt.Errorf("empty init: %w", ErrElement)
	}
	return in.filters[0], nil
}

// Find returns the filter with the given fid
func (in *Init) Find(fid int) (*Filter, error) {

	for _, f := range in.filters {
		if f.FID == fid {
			return f, nil
		}
	}
	return nil, fmt.Errorf("filter %d: %w", fid, ErrNoKey)
}

// Push adds f to the top of the stack
func (in *Init) Push(f *Filter) {

	in.filters = append([]*Filter{f}, in.filters...)
}

// SplitFactor returns the split factor of stage fid
func (in *Init) SplitFactor(fid int) (int, error) {

	f, err := in.Find(fid)
	if err != nil {
		return 0, err
	}
	return f.SplitFactor, nil
}

// Element converts the init stack to its <init> form
func (in *Init) Element() (*Element, error) {

	el := NewElement("init")
	for _, f := range in.filters {
		fel, err := f.Element()
		if err != nil {
			return nil, err
		}
		el.Append(fel)
	}
	return el, nil
}

// InitFromElement parses an <init> element
func InitFromElement(el *Element) (*Init, error) {

	if el.Name != "init" {
		return nil, fmt.Errorf("expected <init>, got <%s>: %w", el.Name, ErrDocument)
	}

	in := &Init{}
	for _, fel := range el.Children() {
		f, err := filterFromElement(fel)
		if err != nil {
			return nil, err
		}
		in.filters = append(in.filters, f)
	}
	return in, nil
}

// bindError reports one required key that could not be bound
type bindError struct {
	sym Sym
}

func (e *bindError) Error() string {

	return fmt.Sprintf("requires key ``%s'' (%s) not found upstream", e.sym.Key, e.sym.Type)
}

func (e *bindError) Unwrap() error {

	return ErrBind
}

// verifyUpstream walks the filters below fid, nearest first, looking for
// the stage that provides key with the right type. A stage that removes the
// key, declares it with another type, or a missing fid ends the search.
func (in *Init) verifyUpstream(fid int, sym Sym) bool {

	for id := fid - 1; id >= 0; id-- {
		f, err := in.Find(id)
		if err != nil {
			return false
		}
		if !f.HasStab {
			continue
		}
		up, ok := f.Stab.Find(sym.Key)
		if !ok {
			continue
		}
		if up.Type != sym.Type {
			return false
		}
		if up.Flags&Provides != 0 {
			return true
		}
		if up.Flags&Removes != 0 {
			return false
		}
	}

	return false
}

// Verify checks every key stab requires against the filters upstream of fid.
// All unbound keys are reported.
func (in *Init) Verify(fid int, stab SymbolTable) error {

	var err error

	for _, sym := range stab {
		if sym.Flags&Requires == 0 {
			continue
		}
		if !in.verifyUpstream(fid, sym) {
			err = multierr.Append(err, &bindError{sym: sym})
		}
	}

	return err
}

// Handshake performs the init exchange on h. A sink reads the upstream init
// and takes the next fid; otherwise a new init is started at fid 0. The
// required keys are verified, this stage's filter is pushed, and a source
// forwards the result downstream. The assigned fid is returned even when
// binding fails so that diagnostics can be labeled.
func Handshake(h *Handle, stab SymbolTable, argv []string, splitFactor int) (*Init, int, error) {

	flags := h.Flags()
	if flags&FlagNonblock != 0 {
		return nil, -1, fmt.Errorf("handshake on nonblocking handle: %w", ErrInval)
	}

	var (
		in  *Init
		fid int
	)

	if flags&FlagSink != 0 {
		el, err := h.Read()
		if err != nil {
			if errors.Is(err, ErrEOF) {
				return nil, -1, fmt.Errorf("reading init: %w", ErrNoInit)
			}
			return nil, -1, err
		}
		in, err = InitFromElement(el)
		if err != nil {
			return nil, -1, err
		}
		top, err := in.Peek()
		if err != nil {
			return nil, -1, err
		}
		fid = top.FID + 1
	} else {
		in = &Init{}
		fid = 0
	}

	if err := in.Verify(fid, stab); err != nil {
		return nil, fid, err
	}

	f, err := NewFilter(fid, stab, argv, splitFactor)
	if err != nil {
		return nil, fid, err
	}
	in.Push(f)

	if flags&FlagSource != 0 {
		el, err := in.Element()
		if err != nil {
			return nil, fid, err
		}
		if err := h.Write(el); err != nil {
			return nil, fid, err
		}
	}

	return in, fid, nil
}
