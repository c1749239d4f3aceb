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
// File Name:  fileutil.go
//
// ==========================================================================

package isp

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// md5Digest returns the hex MD5 digest of a file's contents
func md5Digest(path string) (string, error) {

	fl, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", path, err, ErrNoEnt)
	}
	defer fl.Close()

	hsh := md5.New()
	if _, err := io.Copy(hsh, fl); err != nil {
		return "", fmt.Errorf("digest %s: %v: %w", path, err, ErrRead)
	}

	return hex.EncodeToString(hsh.Sum(nil)), nil
}

// copyInto copies the contents of src into the open file dst
func copyInto(dst *os.File, src string) error {

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", src, err, ErrNoEnt)
	}
	defer in.Close()

	if _, err := io.Copy(dst, in); err != nil {
		return fmt.Errorf("copy %s to %s: %v: %w", src, dst.Name(), err, ErrCopy)
	}
	return nil
}

// copyFile copies src to a new file at dst, replacing any existing file
func copyFile(src, dst string) error {

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %v: %w", dst, err, ErrCopy)
	}
	if err := copyInto(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close %s: %v: %w", dst, err, ErrCopy)
	}
	return nil
}

// mkTmpCopy copies src to a new uniquely named file in dir and returns its
// absolute path
func mkTmpCopy(src, dir string) (string, error) {

	out, err := os.CreateTemp(dir, "isptmp")
	if err != nil {
		return "", fmt.Errorf("temp file in %s: %v: %w", dir, err, ErrMkTmp)
	}
	path := out.Name()
	if err := copyInto(out, src); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %v: %w", path, err, ErrCopy)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%s: %v: %w", path, err, ErrGetcwd)
	}
	return abs, nil
}

// sameFile reports whether a and b name one file, either by path or,
// when both exist, by device and inode
func sameFile(a, b string) bool {

	if a == b {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
