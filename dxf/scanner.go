// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package dxf reads ASCII DXF files into a document model: header
// variables, layer and style tables, block definitions, and entities.
// It resolves only the structure of the file; geometric and visual
// interpretation is left to the caller.
package dxf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrTruncated is returned when a group code line is not followed by a
	// value line.
	ErrTruncated = errors.New("dxf: truncated tag pair")
)

// A Tag is one group code and value pair from a DXF stream.
type Tag struct {
	Code  int
	Value string
}

// Float parses the value as a decimal number, returning 0 for malformed
// input. Real-world DXF writers emit a surprising variety of number
// formats and a single bad coordinate should not reject the file.
func (t Tag) Float() float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	return f
}

// Int parses the value as a decimal integer, returning 0 for malformed
// input.
func (t Tag) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(t.Value))
	return n
}

// Hex parses the value as a hexadecimal integer, the encoding used for
// handles, returning 0 for malformed input.
func (t Tag) Hex() uint64 {
	n, _ := strconv.ParseUint(strings.TrimSpace(t.Value), 16, 64)
	return n
}

// A Scanner reads group code and value pairs from an ASCII DXF stream.
type Scanner struct {
	r    *bufio.Reader
	line int
	cm   *charmap.Charmap
	held []Tag
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// SetCharmap selects the code page used to decode non-ASCII bytes in
// subsequent values. Files name their code page in the $DWGCODEPAGE
// header variable, which precedes all text that could need it.
func (s *Scanner) SetCharmap(cm *charmap.Charmap) {
	s.cm = cm
}

// Unread pushes a tag back onto the stream. The next call to Next
// returns it again.
func (s *Scanner) Unread(t Tag) {
	s.held = append(s.held, t)
}

// Next returns the next tag. It returns io.EOF at the end of the
// stream and ErrTruncated when a code line has no value line.
func (s *Scanner) Next() (Tag, error) {
	if n := len(s.held); n > 0 {
		t := s.held[n-1]
		s.held = s.held[:n-1]
		return t, nil
	}
	codeLine, err := s.readLine()
	if err != nil {
		if err == io.EOF && codeLine == "" {
			return Tag{}, io.EOF
		}
		if err == io.EOF {
			return Tag{}, fmt.Errorf("line %d: %w", s.line, ErrTruncated)
		}
		return Tag{}, err
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeLine))
	if err != nil {
		return Tag{}, fmt.Errorf("dxf: line %d: bad group code %q", s.line, strings.TrimSpace(codeLine))
	}
	value, err := s.readLine()
	if err != nil && err != io.EOF {
		return Tag{}, err
	}
	if err == io.EOF && value == "" && code != 0 {
		return Tag{}, fmt.Errorf("line %d: %w", s.line, ErrTruncated)
	}
	return Tag{Code: code, Value: s.decode(value)}, nil
}

func (s *Scanner) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if line != "" {
		s.line++
	}
	line = strings.TrimRight(line, "\r\n")
	if err != nil && (err != io.EOF || line == "") {
		return line, err
	}
	return line, nil
}

func (s *Scanner) decode(v string) string {
	if s.cm == nil {
		return v
	}
	ascii := true
	for i := 0; i < len(v); i++ {
		if v[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return v
	}
	out, err := s.cm.NewDecoder().String(v)
	if err != nil {
		return v
	}
	return out
}
