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
// File Name:  stab.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"strconv"
)

// Type is the declared type of a unit key
type Type int

// KEY TYPES
const (
	TypeFile   Type = 0
	TypeStr    Type = 1
	TypeDouble Type = 2
	TypeUint64 Type = 3
	TypeInt64  Type = 4
)

var typeNames = map[Type]string{
	TypeFile:   "file",
	TypeStr:    "string",
	TypeDouble: "double",
	TypeUint64: "uint64",
	TypeInt64:  "int64",
}

func (t Type) String() string {

	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown type"
}

// ParseType converts a type name back to a Type
func ParseType(s string) (Type, error) {

	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("type %q: %w", s, ErrInval)
}

// SymFlags describe what a stage does with a key
type SymFlags int

// SYMBOL FLAGS
const (
	Provides SymFlags = 1
	Requires SymFlags = 2
	Removes  SymFlags = 4
)

func (f SymFlags) String() string {

	str := ""
	add := func(s string) {
		if str != "" {
			str += "|"
		}
		str += s
	}
	if f&Provides != 0 {
		add("provides")
	}
	if f&Requires != 0 {
		add("requires")
	}
	if f&Removes != 0 {
		add("removes")
	}
	if str == "" {
		return "none"
	}
	return str
}

// Sym declares one key a stage provides, requires, or removes
type Sym struct {
	Key   string
	Type  Type
	Flags SymFlags
}

// SymbolTable is a stage's declaration of the keys it touches
type SymbolTable []Sym

// Find returns the entry for key
func (st SymbolTable) Find(key string) (Sym, bool) {

	for _, s := range st {
		if s.Key == key {
			return s, true
		}
	}
	return Sym{}, false
}

// Element converts the table to its <stab> form. Duplicate keys are rejected.
func (st SymbolTable) Element() (*Element, error) {

	stab := NewElement("stab")
	seen := make(map[string]bool)
	for _, s := range st {
		if seen[s.Key] {
			return nil, fmt.Errorf("symbol %q: %w", s.Key, ErrDupKey)
		}
		seen[s.Key] = true
		sym := NewElement("sym")
		sym.AddAttr("key", s.Key)
		sym.AddIntAttr("type", int64(s.Type))
		sym.AddIntAttr("flags", int64(s.Flags))
		stab.Append(sym)
	}
	return stab, nil
}

// symbolTableFromElement parses a <stab> element
func symbolTableFromElement(el *Element) (SymbolTable, error) {

	if el.Name != "stab" {
		return nil, fmt.Errorf("<%s> is not a symbol table: %w", el.Name, ErrElement)
	}

	var st SymbolTable
	for _, sym := range el.Children() {
		if sym.Name != "sym" {
			continue
		}
		key, err := sym.Attr("key")
		if err != nil {
			return nil, err
		}
		typ, err := sym.IntAttr("type")
		if err != nil {
			return nil, err
		}
		flags, err := sym.IntAttr("flags")
		if err != nil {
			return nil, err
		}
		st = append(st, Sym{Key: key, Type: Type(typ), Flags: SymFlags(flags)})
	}
	return st, nil
}

func (s Sym) String() string {

	return s.Key + " (" + s.Type.String() + ", " + s.Flags.String() + ")"
}

// itoa is used for argv keys
func itoa(i int) string {

	return strconv.Itoa(i)
}
