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
// File Name:  unit_test.go
//
// ==========================================================================

package isp

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func countMeta(u *Unit, key string) (live, dead int) {

	for _, ent := range u.Entries() {
		if m, ok := ent.(*Meta); ok && m.Key == key {
			if m.Live() {
				live++
			} else {
				dead++
			}
		}
	}
	return live, dead
}

func TestMetaLifecycle(t *testing.T) {

	u := testContext(1).NewUnit()

	require.NoError(t, u.MetaSource("k", StrValue("one")))
	assert.ErrorIs(t, u.MetaSource("k", StrValue("two")), ErrDupKey)

	require.NoError(t, u.MetaSink("k"))
	_, err := u.MetaGet("k", TypeStr)
	assert.ErrorIs(t, err, ErrNoKey)
	assert.ErrorIs(t, u.MetaSink("k"), ErrNoKey)

	require.NoError(t, u.MetaSource("k", StrValue("two")))
	live, dead := countMeta(u, "k")
	assert.Equal(t, 1, live)
	assert.Equal(t, 1, dead)

	v, err := u.MetaGet("k", TypeStr)
	require.NoError(t, err)
	s, err := v.Str()
	require.NoError(t, err)
	assert.Equal(t, "two", s)

	_, err = u.MetaGet("k", TypeInt64)
	assert.ErrorIs(t, err, ErrTypeMism)
	_, err = v.Int64()
	assert.ErrorIs(t, err, ErrTypeMism)
}

func TestMetaSetProvenance(t *testing.T) {

	up := testContext(0).NewUnit()
	require.NoError(t, up.MetaSource("n", Uint64Value(1)))

	// same stage: replaced in place
	require.NoError(t, up.MetaSet("n", Uint64Value(2)))
	live, dead := countMeta(up, "n")
	assert.Equal(t, 1, live)
	assert.Equal(t, 0, dead)

	assert.ErrorIs(t, up.MetaSet("n", StrValue("x")), ErrTypeMism)
	assert.ErrorIs(t, up.MetaSet("none", Uint64Value(1)), ErrNoKey)

	// downstream stage: old value sunk, new value sourced
	down := testContext(1)
	u, err := down.UnitFromElement(up.Element())
	require.NoError(t, err)
	require.NoError(t, u.MetaSet("n", Uint64Value(3)))
	live, dead = countMeta(u, "n")
	assert.Equal(t, 1, live)
	assert.Equal(t, 1, dead)

	v, err := u.MetaGet("n", TypeUint64)
	require.NoError(t, err)
	n, _ := v.Uint64()
	assert.Equal(t, uint64(3), n)
}

func TestUnitElementRoundTrip(t *testing.T) {

	ctx := testContext(0)
	u := ctx.NewUnit()
	require.NoError(t, u.MetaSource("d", DoubleValue(1.5)))
	require.NoError(t, u.MetaSource("i", Int64Value(-3)))
	require.NoError(t, u.Init())
	require.NoError(t, u.Fini(Success))

	el := u.Element()
	d := el.FindName("meta")
	val, _ := d.Attr("key")
	assert.Equal(t, "i", val)

	back, err := ctx.UnitFromElement(el)
	require.NoError(t, err)
	assert.Equal(t, u.Entries(), back.Entries())

	v, err := back.MetaGet("d", TypeDouble)
	require.NoError(t, err)
	assert.Equal(t, "1.500000e+00", v.String())

	_, err = ctx.UnitFromElement(NewElement("init"))
	assert.ErrorIs(t, err, ErrDocument)

	bad := NewElement("unit")
	bad.Append(NewElement("bogus"))
	_, err = ctx.UnitFromElement(bad)
	assert.ErrorIs(t, err, ErrElement)
}

func writeFile(t *testing.T, path, data string) {

	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestFileCorruption(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	writeFile(t, path, "hello")

	u := testContext(0).NewUnit()
	require.NoError(t, u.Init())
	require.NoError(t, u.FileSource("f", path, ModeRDONLY))
	assert.ErrorIs(t, u.FileSource("f", path, ModeRDONLY), ErrDupKey)
	require.NoError(t, u.Fini(Success))

	f := u.LiveFiles()[0]
	assert.Equal(t, uint64(5), f.Size)
	assert.Equal(t, path, f.Path)

	got, err := u.FileAccess("f", ModeRDONLY)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	writeFile(t, path, "hello, world")
	_, err = u.FileAccess("f", ModeRDONLY)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, os.Remove(path))
	_, err = u.FileAccess("f", ModeRDONLY)
	assert.ErrorIs(t, err, ErrNoEnt)

	assert.ErrorIs(t, u.FileSource("g", filepath.Join(dir, "missing"), ModeRDONLY), ErrNoEnt)
}

func TestFileDigest(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	writeFile(t, path, "abcde")

	ctx := testContext(0)
	ctx.Config.MD5Check = true

	u := ctx.NewUnit()
	require.NoError(t, u.Init())
	require.NoError(t, u.FileSource("f", path, ModeRDONLY))
	require.NoError(t, u.Fini(Success))
	assert.Equal(t, "ab56b4d92b40713acc5af89985d4b786", u.LiveFiles()[0].MD5)

	// same size, different content
	writeFile(t, path, "edcba")
	_, err := u.FileAccess("f", ModeRDONLY)
	assert.ErrorIs(t, err, ErrCorrupt)

	// digests are ignored when checking is off
	ctx.Config.MD5Check = false
	_, err = u.FileAccess("f", ModeRDONLY)
	assert.NoError(t, err)
}

func TestFileAccessCopyOnWrite(t *testing.T) {

	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "orig")
	writeFile(t, path, "upstream")

	src := testContext(0).NewUnit()
	require.NoError(t, src.Init())
	require.NoError(t, src.FileSource("f", path, ModeRDONLY))
	require.NoError(t, src.Fini(Success))

	u, err := testContext(1).UnitFromElement(src.Element())
	require.NoError(t, err)
	require.NoError(t, u.Init())

	npath, err := u.FileAccess("f", ModeRDWR)
	require.NoError(t, err)
	assert.NotEqual(t, path, npath)
	assert.Equal(t, dir, filepath.Dir(npath))
	assert.True(t, filepath.IsAbs(npath))

	writeFile(t, npath, "changed by stage 1")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upstream", string(data))

	files := u.LiveFiles()
	require.Len(t, files, 1)
	assert.Equal(t, ModeRDWR, files[0].Mode)
	assert.Equal(t, 1, files[0].Src)

	require.NoError(t, u.Fini(Success))
	assert.Equal(t, uint64(len("changed by stage 1")), u.LiveFiles()[0].Size)

	// a read-write file is reused in place
	down, err := testContext(2).UnitFromElement(u.Element())
	require.NoError(t, err)
	again, err := down.FileAccess("f", ModeRDWR)
	require.NoError(t, err)
	assert.Equal(t, npath, again)
	assert.Equal(t, 2, down.LiveFiles()[0].Src)
}

func TestFileRenameAndSink(t *testing.T) {

	dir := t.TempDir()
	ro := filepath.Join(dir, "ro")
	rw := filepath.Join(dir, "rw")
	writeFile(t, ro, "r")
	writeFile(t, rw, "w")

	u := testContext(0).NewUnit()
	require.NoError(t, u.Init())
	require.NoError(t, u.FileSource("ro", ro, ModeRDONLY))
	require.NoError(t, u.FileSource("rw", rw, ModeRDWR))
	require.NoError(t, u.Fini(Success))

	// read-only files are copied, read-write files moved
	roNew := filepath.Join(dir, "ro.new")
	rwNew := filepath.Join(dir, "rw.new")
	require.NoError(t, u.FileRename("ro", roNew))
	require.NoError(t, u.FileRename("rw", rwNew))
	assert.FileExists(t, ro)
	assert.FileExists(t, roNew)
	assert.NoFileExists(t, rw)
	assert.FileExists(t, rwNew)

	assert.ErrorIs(t, u.FileRename("none", rwNew), ErrNoKey)

	assert.ErrorIs(t, u.RWFileCheck(), ErrRWFile)

	require.NoError(t, u.FileSink("rw"))
	require.NoError(t, u.FileSink("ro"))
	assert.NoFileExists(t, rwNew)
	assert.NoFileExists(t, roNew)
	assert.FileExists(t, ro)
	assert.ErrorIs(t, u.FileSink("rw"), ErrNoKey)

	assert.NoError(t, u.RWFileCheck())
	assert.Empty(t, u.LiveFiles())
}

func TestRWFileCheckReadOnly(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "ro")
	writeFile(t, path, "x")

	u := testContext(0).NewUnit()
	require.NoError(t, u.FileSource("f", path, ModeRDONLY))
	assert.NoError(t, u.RWFileCheck())
}

func TestUnboundUnit(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "x")

	u := NewContext("isptest", DefaultConfig()).NewUnit()
	assert.ErrorIs(t, u.Init(), ErrNoInit)
	assert.ErrorIs(t, u.MetaSource("k", StrValue("v")), ErrNoInit)
	assert.ErrorIs(t, u.FileSource("f", path, ModeRDONLY), ErrNoInit)
	assert.Empty(t, u.Entries())

	// entries that arrived from upstream still cannot be sunk or changed
	u.push(&Meta{Key: "k", Value: StrValue("v"), Src: 0, Sink: NoFID})
	u.push(&File{Key: "f", Path: path, Size: 1, Src: 0, Sink: NoFID, Mode: ModeRDWR})
	assert.ErrorIs(t, u.MetaSet("k", StrValue("w")), ErrNoInit)
	assert.ErrorIs(t, u.MetaSink("k"), ErrNoInit)
	assert.ErrorIs(t, u.FileSink("f"), ErrNoInit)
	assert.ErrorIs(t, u.FileRename("f", filepath.Join(dir, "g")), ErrNoInit)
	_, err := u.FileAccess("f", ModeRDWR)
	assert.ErrorIs(t, err, ErrNoInit)

	live, _ := countMeta(u, "k")
	assert.Equal(t, 1, live)
	assert.Len(t, u.LiveFiles(), 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestFileRenameOntoItself(t *testing.T) {

	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "ro")
	writeFile(t, path, "hello")

	u := testContext(0).NewUnit()
	require.NoError(t, u.Init())
	require.NoError(t, u.FileSource("f", path, ModeRDONLY))
	require.NoError(t, u.Fini(Success))

	assert.ErrorIs(t, u.FileRename("f", path), ErrInval)
	assert.ErrorIs(t, u.FileRename("f", "ro"), ErrInval)
	assert.ErrorIs(t, u.FileRename("f", "./sub/../ro"), ErrInval)

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Link(path, link))
	assert.ErrorIs(t, u.FileRename("f", link), ErrInval)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.Len(t, u.LiveFiles(), 1)
	assert.Equal(t, path, u.LiveFiles()[0].Path)
}

func TestUnwritableText(t *testing.T) {

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad\x01name")
	writeFile(t, bad, "x")

	u := testContext(0).NewUnit()
	assert.ErrorIs(t, u.MetaSource("k", StrValue("x\x1by")), ErrInval)
	assert.ErrorIs(t, u.MetaSource("k", StrValue("caf\xe9")), ErrInval)
	assert.ErrorIs(t, u.MetaSource("k\x00", Uint64Value(1)), ErrInval)
	assert.ErrorIs(t, u.FileSource("f", bad, ModeRDONLY), ErrInval)
	assert.Empty(t, u.Entries())

	require.NoError(t, u.MetaSource("k", StrValue("tab\tnew\nline\r café")))
	assert.ErrorIs(t, u.MetaSet("k", StrValue("\xff")), ErrInval)

	// what is accepted survives the trip through a stream
	_, err := u.MetaGet("k", TypeStr)
	require.NoError(t, err)
	var p docParser
	require.NoError(t, p.feed([]byte("<document>\n"+u.Element().String()+"</document>\n")))
	el := p.next()
	require.NotNil(t, el)
	down, err := testContext(1).UnitFromElement(el)
	require.NoError(t, err)
	val, err := down.MetaGet("k", TypeStr)
	require.NoError(t, err)
	str, err := val.Str()
	require.NoError(t, err)
	assert.Equal(t, "tab\tnew\nline\r café", str)
}

func TestUnitFiniStampsSource(t *testing.T) {

	u := testContext(0).NewUnit()
	u.push(&Meta{Key: "k", Value: StrValue("v"), Src: NoFID, Sink: NoFID})
	require.NoError(t, u.Init())
	require.NoError(t, u.Fini(Success))

	for _, ent := range u.Entries() {
		if m, ok := ent.(*Meta); ok {
			assert.Equal(t, 0, m.Src)
		}
	}
}

func TestUnitResults(t *testing.T) {

	u := testContext(3).NewUnit()
	u.push(&Result{FID: 0, Code: Success})
	u.push(&Result{FID: 1, Code: ErrExited})
	u.push(&Result{FID: 2, Code: ErrCorrupt})

	assert.Equal(t, ErrExited, u.UpstreamResult())

	require.NoError(t, u.Init())
	assert.ErrorIs(t, u.Init(), ErrDupKey)
	r, err := u.Result(3)
	require.NoError(t, err)
	assert.Equal(t, ErrNotRun, r.Code)

	require.NoError(t, u.Fini(ErrUser))
	r, _ = u.Result(3)
	assert.Equal(t, ErrUser, r.Code)
	assert.Less(t, r.RTime, uint64(60000))

	_, err = u.Result(7)
	assert.ErrorIs(t, err, ErrNoKey)

	// a result is required for fini
	assert.ErrorIs(t, testContext(4).NewUnit().Fini(Success), ErrElement)
}

func TestUnitCopyIsDeep(t *testing.T) {

	u := testContext(0).NewUnit()
	require.NoError(t, u.MetaSource("k", StrValue("v")))

	cpy := u.Copy()
	require.NoError(t, cpy.MetaSink("k"))

	_, err := u.MetaGet("k", TypeStr)
	assert.NoError(t, err)
	_, err = cpy.MetaGet("k", TypeStr)
	assert.ErrorIs(t, err, ErrNoKey)
}
