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
// File Name:  value.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"strconv"
)

// Value is a typed metadata value
type Value struct {
	typ Type
	str string
	dbl float64
	u64 uint64
	i64 int64
}

// StrValue wraps a string
func StrValue(s string) Value {

	return Value{typ: TypeStr, str: s}
}

// DoubleValue wraps a float64
func DoubleValue(d float64) Value {

	return Value{typ: TypeDouble, dbl: d}
}

// Uint64Value wraps a uint64
func Uint64Value(u uint64) Value {

	return Value{typ: TypeUint64, u64: u}
}

// Int64Value wraps an int64
func Int64Value(i int64) Value {

	return Value{typ: TypeInt64, i64: i}
}

// Type returns the value's type
func (v Value) Type() Type {

	return v.typ
}

func (v Value) mismatch(want Type) error {

	return fmt.Errorf("value is %s, not %s: %w", v.typ, want, ErrTypeMism)
}

// Str returns a string value
func (v Value) Str() (string, error) {

	if v.typ != TypeStr {
		return "", v.mismatch(TypeStr)
	}
	return v.str, nil
}

// Double returns a double value
func (v Value) Double() (float64, error) {

	if v.typ != TypeDouble {
		return 0, v.mismatch(TypeDouble)
	}
	return v.dbl, nil
}

// Uint64 returns an unsigned value
func (v Value) Uint64() (uint64, error) {

	if v.typ != TypeUint64 {
		return 0, v.mismatch(TypeUint64)
	}
	return v.u64, nil
}

// Int64 returns a signed value
func (v Value) Int64() (int64, error) {

	if v.typ != TypeInt64 {
		return 0, v.mismatch(TypeInt64)
	}
	return v.i64, nil
}

// String encodes the value as it appears in the val attribute. Doubles use
// six-digit scientific notation.
func (v Value) String() string {

	switch v.typ {
	case TypeStr:
		return v.str
	case TypeDouble:
		return strconv.FormatFloat(v.dbl, 'e', 6, 64)
	case TypeUint64:
		return strconv.FormatUint(v.u64, 10)
	case TypeInt64:
		return strconv.FormatInt(v.i64, 10)
	}
	return ""
}

// ParseValue decodes the val attribute of the given type
func ParseValue(t Type, s string) (Value, error) {

	switch t {
	case TypeStr:
		return StrValue(s), nil
	case TypeDouble:
		d, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("double %q: %w", s, ErrAttr)
		}
		return DoubleValue(d), nil
	case TypeUint64:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("uint64 %q: %w", s, ErrAttr)
		}
		return Uint64Value(u), nil
	case TypeInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("int64 %q: %w", s, ErrAttr)
		}
		return Int64Value(i), nil
	}
	return Value{}, fmt.Errorf("metadata of %s: %w", t, ErrInval)
}
