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
// File Name:  parser.go
//
// ==========================================================================

package isp

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"github.com/krotik/common/errorutil"
	"io"
)

// docParser assembles a stream of restricted XML into top-level elements.
// Input arrives in arbitrary pieces; each piece is trimmed back to the last
// complete tag and the remainder is carried into the next call, so the
// tokenizer only ever sees whole tags.
type docParser struct {
	pending []byte
	scanned int
	inTag   bool
	quote   byte
	lastSig byte
	total   int

	stack  []*Element
	opened bool
	closed bool
	queue  []*Element
	parsed int
}

// feed consumes another piece of input
func (p *docParser) feed(data []byte) error {

	p.total += len(data)
	p.pending = append(p.pending, data...)

	cut := p.lastTagEnd()
	if cut == 0 {
		return nil
	}

	chunk := p.pending[:cut]
	err := p.tokenize(chunk)

	remainder := copy(p.pending, p.pending[cut:])
	p.pending = p.pending[:remainder]
	p.scanned -= cut
	errorutil.AssertTrue(p.scanned >= 0, "scan offset behind chunk cut")

	return err
}

// lastTagEnd scans new bytes for tag boundaries and returns the offset just
// past the last '>' that closes a tag, or 0 if there is none. Attribute value
// quotes (those following '=') are tracked so that '>' inside a value does not
// end the tag.
func (p *docParser) lastTagEnd() int {

	cut := 0
	buf := p.pending
	for i := p.scanned; i < len(buf); i++ {
		ch := buf[i]
		switch {
		case p.quote != 0:
			if ch == p.quote {
				p.quote = 0
			}
		case !p.inTag:
			if ch == '<' {
				p.inTag = true
				p.lastSig = ch
			}
		case (ch == '"' || ch == '\'') && p.lastSig == '=':
			p.quote = ch
			p.lastSig = ch
		case ch == '>':
			p.inTag = false
			cut = i + 1
		case ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r':
			p.lastSig = ch
		}
	}
	p.scanned = len(buf)

	return cut
}

// tokenize parses a run of complete tags
func (p *docParser) tokenize(chunk []byte) error {

	dec := xml.NewDecoder(bytes.NewReader(chunk))
	dec.Strict = true

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var serr *xml.SyntaxError
			if errors.As(err, &serr) {
				return fmt.Errorf("line %d: %s: %w", serr.Line, serr.Msg, ErrParse)
			}
			return fmt.Errorf("%v: %w", err, ErrParse)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return err
			}
		case xml.EndElement:
			if err := p.end(t); err != nil {
				return err
			}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected text %q: %w", string(bytes.TrimSpace(t)), ErrParse)
			}
		}
	}
}

func qualifiedName(n xml.Name) string {

	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func (p *docParser) start(t xml.StartElement) error {

	name := qualifiedName(t.Name)

	if p.closed {
		return fmt.Errorf("<%s> after end of document: %w", name, ErrParse)
	}

	el := NewElement(name)
	for _, a := range t.Attr {
		el.AddAttr(qualifiedName(a.Name), a.Value)
	}

	if !p.opened {
		if name != "document" {
			return fmt.Errorf("root element <%s>: %w", name, ErrDocument)
		}
		p.opened = true
	} else if len(p.stack) > 1 {
		p.stack[len(p.stack)-1].Append(el)
	}

	p.stack = append(p.stack, el)

	return nil
}

func (p *docParser) end(t xml.EndElement) error {

	name := qualifiedName(t.Name)

	if len(p.stack) == 0 {
		return fmt.Errorf("unmatched </%s>: %w", name, ErrParse)
	}
	top := p.stack[len(p.stack)-1]
	if top.Name != name {
		return fmt.Errorf("</%s> closes <%s>: %w", name, top.Name, ErrParse)
	}
	p.stack = p.stack[:len(p.stack)-1]

	switch len(p.stack) {
	case 0:
		p.closed = true
	case 1:
		errorutil.AssertTrue(top.Parent() == nil, "top-level element attached to <document>")
		p.queue = append(p.queue, top)
		p.parsed++
	}

	return nil
}

// finish validates the state at end of input
func (p *docParser) finish() error {

	if p.total == 0 {
		return nil
	}
	if len(bytes.TrimSpace(p.pending)) > 0 {
		return fmt.Errorf("unterminated markup at end of input: %w", ErrParse)
	}
	if !p.closed {
		return fmt.Errorf("end of input inside document: %w", ErrParse)
	}
	return nil
}

// next pops the oldest completed element
func (p *docParser) next() *Element {

	if len(p.queue) == 0 {
		return nil
	}
	el := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return el
}
