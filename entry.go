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
// File Name:  entry.go
//
// ==========================================================================

package isp

import (
	"fmt"
)

// NoFID marks a src or sink field that has not been set
const NoFID = -1

// FileMode is the access mode of a file reference
type FileMode int

// FILE MODES
const (
	ModeRDWR   FileMode = 1
	ModeRDONLY FileMode = 2
)

func (m FileMode) String() string {

	if m&ModeRDONLY != 0 {
		return "rdonly"
	}
	return "rdwr"
}

// Entry is one item of a unit: *Meta, *File, or *Result
type Entry interface {
	Element() *Element
	isEntry()
}

// Meta is a typed key/value pair
type Meta struct {
	Key   string
	Value Value
	Src   int
	Sink  int
}

func (*Meta) isEntry() {}

// Live reports whether no stage has sunk the entry
func (m *Meta) Live() bool {

	return m.Sink == NoFID
}

// Element converts the entry to its <meta> form
func (m *Meta) Element() *Element {

	el := NewElement("meta")
	el.AddAttr("key", m.Key)
	el.AddIntAttr("type", int64(m.Value.Type()))
	el.AddAttr("val", m.Value.String())
	el.AddIntAttr("src", int64(m.Src))
	el.AddIntAttr("sink", int64(m.Sink))
	return el
}

// File is a reference to a file on a named host
type File struct {
	Key  string
	Path string
	Host string
	Size uint64
	Src  int
	Sink int
	Mode FileMode
	MD5  string
}

func (*File) isEntry() {}

// Live reports whether no stage has sunk the entry
func (f *File) Live() bool {

	return f.Sink == NoFID
}

// Element converts the entry to its <file> form
func (f *File) Element() *Element {

	el := NewElement("file")
	el.AddAttr("key", f.Key)
	el.AddAttr("path", f.Path)
	el.AddAttr("host", f.Host)
	el.AddUintAttr("size", f.Size)
	el.AddIntAttr("src", int64(f.Src))
	el.AddIntAttr("sink", int64(f.Sink))
	el.AddIntAttr("flags", int64(f.Mode))
	el.AddAttr("md5", f.MD5)
	return el
}

// Result records how one stage handled the unit. Times are milliseconds.
type Result struct {
	FID   int
	UTime uint64
	STime uint64
	RTime uint64
	Code  Code
}

func (*Result) isEntry() {}

// Element converts the entry to its <result> form
func (r *Result) Element() *Element {

	el := NewElement("result")
	el.AddIntAttr("fid", int64(r.FID))
	el.AddUintAttr("utime", r.UTime)
	el.AddUintAttr("stime", r.STime)
	el.AddUintAttr("rtime", r.RTime)
	el.AddIntAttr("code", int64(r.Code))
	return el
}

// intAttrs parses several integer attributes in one pass
func intAttrs(el *Element, names []string, dsts []*int) error {

	for i, name := range names {
		val, err := el.IntAttr(name)
		if err != nil {
			return err
		}
		*dsts[i] = int(val)
	}
	return nil
}

func metaFromElement(el *Element) (*Meta, error) {

	m := &Meta{}
	var typ int
	if err := intAttrs(el, []string{"type", "src", "sink"}, []*int{&typ, &m.Src, &m.Sink}); err != nil {
		return nil, err
	}
	key, err := el.Attr("key")
	if err != nil {
		return nil, err
	}
	val, err := el.Attr("val")
	if err != nil {
		return nil, err
	}
	m.Key = key
	m.Value, err = ParseValue(Type(typ), val)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func fileFromElement(el *Element) (*File, error) {

	f := &File{}
	var mode int
	if err := intAttrs(el, []string{"src", "sink", "flags"}, []*int{&f.Src, &f.Sink, &mode}); err != nil {
		return nil, err
	}
	f.Mode = FileMode(mode)

	strs := []struct {
		name string
		dst  *string
	}{
		{"key", &f.Key},
		{"path", &f.Path},
		{"host", &f.Host},
		{"md5", &f.MD5},
	}
	for _, s := range strs {
		val, err := el.Attr(s.name)
		if err != nil {
			return nil, err
		}
		*s.dst = val
	}

	size, err := el.UintAttr("size")
	if err != nil {
		return nil, err
	}
	f.Size = size

	return f, nil
}

func resultFromElement(el *Element) (*Result, error) {

	r := &Result{}
	var code int
	if err := intAttrs(el, []string{"fid", "code"}, []*int{&r.FID, &code}); err != nil {
		return nil, err
	}
	r.Code = Code(code)

	times := []struct {
		name string
		dst  *uint64
	}{
		{"utime", &r.UTime},
		{"stime", &r.STime},
		{"rtime", &r.RTime},
	}
	for _, t := range times {
		val, err := el.UintAttr(t.name)
		if err != nil {
			return nil, err
		}
		*t.dst = val
	}

	return r, nil
}

// entryFromElement dispatches on the element name
func entryFromElement(el *Element) (Entry, error) {

	var (
		ent Entry
		err error
	)

	switch el.Name {
	case "meta":
		var m *Meta
		m, err = metaFromElement(el)
		ent = m
	case "file":
		var f *File
		f, err = fileFromElement(el)
		ent = f
	case "result":
		var r *Result
		r, err = resultFromElement(el)
		ent = r
	default:
		return nil, fmt.Errorf("<%s> in unit: %w", el.Name, ErrElement)
	}
	if err != nil {
		return nil, err
	}

	return ent, nil
}
