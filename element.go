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
// File Name:  element.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Attr is a single name/value attribute
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the restricted XML tree: a name, ordered attributes,
// and ordered children. Text content is not representable.
type Element struct {
	Name     string
	attrs    []Attr
	children []*Element
	parent   *Element
}

// NewElement creates an element with no attributes and no children
func NewElement(name string) *Element {

	return &Element{Name: name}
}

// Copy returns a deep copy detached from any parent
func (e *Element) Copy() *Element {

	if e == nil {
		return nil
	}

	cpy := &Element{Name: e.Name}
	if len(e.attrs) > 0 {
		cpy.attrs = make([]Attr, len(e.attrs))
		copy(cpy.attrs, e.attrs)
	}
	for _, ch := range e.children {
		cpy.Append(ch.Copy())
	}

	return cpy
}

// Parent returns the enclosing element, or nil for a detached element
func (e *Element) Parent() *Element {

	return e.parent
}

// Len returns the number of children
func (e *Element) Len() int {

	return len(e.children)
}

// Children returns the children in document order. The slice must not be modified.
func (e *Element) Children() []*Element {

	return e.children
}

// Append adds child as the last child
func (e *Element) Append(child *Element) {

	child.parent = e
	e.children = append(e.children, child)
}

// Push adds child as the first child
func (e *Element) Push(child *Element) {

	child.parent = e
	e.children = append(e.children, nil)
	copy(e.children[1:], e.children)
	e.children[0] = child
}

// Peek returns the first child, or nil
func (e *Element) Peek() *Element {

	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Pop detaches and returns the first child, or nil
func (e *Element) Pop() *Element {

	if len(e.children) == 0 {
		return nil
	}

	child := e.children[0]
	e.children[0] = nil
	e.children = e.children[1:]
	child.parent = nil

	return child
}

// Remove detaches child, reporting whether it was found
func (e *Element) Remove(child *Element) bool {

	for i, ch := range e.children {
		if ch == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// FindFirst returns the first child satisfying pred
func (e *Element) FindFirst(pred func(*Element) bool) *Element {

	for _, ch := range e.children {
		if pred(ch) {
			return ch
		}
	}
	return nil
}

// FindName returns the first child with the given name
func (e *Element) FindName(name string) *Element {

	return e.FindFirst(func(ch *Element) bool { return ch.Name == name })
}

// Attrs returns the attributes in insertion order. The slice must not be modified.
func (e *Element) Attrs() []Attr {

	return e.attrs
}

// Attr returns the value of the named attribute
func (e *Element) Attr(name string) (string, error) {

	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, nil
		}
	}
	return "", fmt.Errorf("attribute %q of <%s>: %w", name, e.Name, ErrNoKey)
}

// HasAttr reports whether the named attribute is present
func (e *Element) HasAttr(name string) bool {

	_, err := e.Attr(name)
	return err == nil
}

// AddAttr appends an attribute. Duplicate names are not checked.
func (e *Element) AddAttr(name, value string) {

	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// AddIntAttr appends a signed integer attribute
func (e *Element) AddIntAttr(name string, value int64) {

	e.AddAttr(name, strconv.FormatInt(value, 10))
}

// AddUintAttr appends an unsigned integer attribute
func (e *Element) AddUintAttr(name string, value uint64) {

	e.AddAttr(name, strconv.FormatUint(value, 10))
}

// SetAttr replaces the value of an existing attribute. It never creates one.
func (e *Element) SetAttr(name, value string) error {

	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("attribute %q of <%s>: %w", name, e.Name, ErrNoKey)
}

// SetIntAttr replaces an existing signed integer attribute
func (e *Element) SetIntAttr(name string, value int64) error {

	return e.SetAttr(name, strconv.FormatInt(value, 10))
}

// SetUintAttr replaces an existing unsigned integer attribute
func (e *Element) SetUintAttr(name string, value uint64) error {

	return e.SetAttr(name, strconv.FormatUint(value, 10))
}

// IntAttr parses a signed integer attribute
func (e *Element) IntAttr(name string) (int64, error) {

	str, err := e.Attr(name)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %q of <%s> (%q): %w", name, e.Name, str, ErrAttr)
	}
	return val, nil
}

// UintAttr parses an unsigned integer attribute
func (e *Element) UintAttr(name string) (uint64, error) {

	str, err := e.Attr(name)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %q of <%s> (%q): %w", name, e.Name, str, ErrAttr)
	}
	return val, nil
}

// depth counts ancestors
func (e *Element) depth() int {

	d := 0
	for p := e.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;",
	"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")

// checkText fails unless s can be carried in an attribute value: valid
// UTF-8 holding only characters that XML 1.0 permits
func checkText(s string) error {

	if !utf8.ValidString(s) {
		return fmt.Errorf("%q is not valid UTF-8: %w", s, ErrInval)
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return fmt.Errorf("%q holds character %U: %w", s, r, ErrInval)
		}
	}
	return nil
}

// serialize writes the element indented by two spaces per level, measured
// from the enclosing parent chain so that a unit below <document> gets one
// level of indentation
func (e *Element) serialize(sb *strings.Builder, level int) {

	sb.WriteString(strings.Repeat("  ", level))
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString("=\"")
		sb.WriteString(attrEscaper.Replace(a.Value))
		sb.WriteByte('"')
	}

	if len(e.children) == 0 {
		sb.WriteString("/>\n")
		return
	}

	sb.WriteString(">\n")
	for _, ch := range e.children {
		ch.serialize(sb, level+1)
	}
	sb.WriteString(strings.Repeat("  ", level))
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteString(">\n")
}

// Serialize renders the element and its subtree
func (e *Element) Serialize() []byte {

	var sb strings.Builder
	e.serialize(&sb, e.depth())
	return []byte(sb.String())
}

// String renders the element for diagnostics
func (e *Element) String() string {

	return string(e.Serialize())
}
