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
// File Name:  args.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// COMMAND-LINE HELPERS

// NumericArg parses the integer that follows the flag in args[0]. Values
// below 1 select zer; the rest are clamped to min and max, where a zero
// bound is ignored.
func NumericArg(args []string, name string, zer, min, max int) (int, error) {

	str, err := StringArg(args, name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%s %s (%q) is not an integer: %w", args[0], name, str, ErrInval)
	}

	switch {
	case value < 1:
		return zer, nil
	case min > 0 && value < min:
		return min, nil
	case max > 0 && value > max:
		return max, nil
	}
	return value, nil
}

// StringArg returns the non-empty value that follows the flag in args[0]
func StringArg(args []string, name string) (string, error) {

	if len(args) < 1 {
		return "", fmt.Errorf("%s: no flag: %w", name, ErrInval)
	}
	if len(args) < 2 || args[1] == "" {
		return "", fmt.Errorf("%s %s is missing: %w", args[0], name, ErrInval)
	}
	return args[1], nil
}

// argFail ends a tool whose command line cannot be parsed
func argFail(err error) {

	fmt.Fprintf(os.Stderr, "\nERROR: %s: %v\n", filepath.Base(os.Args[0]), err)
	os.Exit(1)
}

// GetNumericArg is NumericArg for flag loops, exiting on error
func GetNumericArg(args []string, name string, zer, min, max int) int {

	value, err := NumericArg(args, name, zer, min, max)
	if err != nil {
		argFail(err)
	}
	return value
}

// GetStringArg is StringArg for flag loops, exiting on error
func GetStringArg(args []string, name string) string {

	value, err := StringArg(args, name)
	if err != nil {
		argFail(err)
	}
	return value
}

// SplitKeyValue separates a key=value argument
func SplitKeyValue(arg string) (string, string, error) {

	key, val, found := strings.Cut(arg, "=")
	if !found || key == "" {
		return "", "", fmt.Errorf("%q is not key=value: %w", arg, ErrInval)
	}
	return key, val, nil
}
