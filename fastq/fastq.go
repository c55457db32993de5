// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fastq implements minimal, byte-exact FASTQ record tokenizing.
//
// A Record keeps the four lines of a FASTQ entry exactly as they were
// read, including the trailing newline and any comment on the separator
// line. Byte-length measurements and re-emission both use these raw
// bytes directly; a Record is never rebuilt from parsed sub-fields.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// errFastq is the base error for all fastq package errors.
var errFastq = errors.New("fastq")

// ErrInvalidRecord indicates a record did not follow the FASTQ line markers.
var ErrInvalidRecord = fmt.Errorf("%w: invalid record", errFastq)

// Record is one FASTQ entry, held as its four raw lines.
//
// Each field includes its line prefix character ('@', none, '+', none)
// and its trailing newline, exactly as read from the source. Sep may
// carry a comment after the '+', per the FASTQ format; Head may carry
// space-separated read metadata after the '@'.
type Record struct {
	Head []byte
	Seq  []byte
	Sep  []byte
	Qual []byte
}

// Len returns the exact on-disk byte length of the record.
func (r *Record) Len() int {
	return len(r.Head) + len(r.Seq) + len(r.Sep) + len(r.Qual)
}

// WriteTo writes the record's raw bytes unchanged, in FASTQ order.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, line := range [...][]byte{r.Head, r.Seq, r.Sep, r.Qual} {
		m, err := w.Write(line)
		n += int64(m)
		if err != nil {
			return n, fmt.Errorf("%w: writing record: %w", errFastq, err)
		}
	}
	return n, nil
}

// Scanner tokenizes a byte stream into FASTQ records.
//
// It does not validate sequence/quality alphabet or length agreement;
// it only enforces the '@' and '+' line markers, matching the narrow
// contract FASTQ tokenizing is expected to hold in this module.
type Scanner struct {
	r   *bufio.Reader
	rec Record
	err error
}

// NewScanner returns a Scanner reading FASTQ records from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next record, returning false at EOF or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	head, err := s.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(head) == 0 {
			s.err = io.EOF
			return false
		}
		s.err = fmt.Errorf("%w: reading header line: %w", errFastq, err)
		return false
	}
	if len(head) == 0 || head[0] != '@' {
		s.err = fmt.Errorf("%w: header line missing '@': %q", ErrInvalidRecord, head)
		return false
	}

	seq, err := s.r.ReadBytes('\n')
	if err != nil {
		s.err = fmt.Errorf("%w: reading sequence line: %w", errFastq, err)
		return false
	}

	sep, err := s.r.ReadBytes('\n')
	if err != nil {
		s.err = fmt.Errorf("%w: reading separator line: %w", errFastq, err)
		return false
	}
	if len(sep) == 0 || sep[0] != '+' {
		s.err = fmt.Errorf("%w: separator line missing '+': %q", ErrInvalidRecord, sep)
		return false
	}

	qual, err := s.r.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(qual) > 0) {
		s.err = fmt.Errorf("%w: reading quality line: %w", errFastq, err)
		return false
	}

	s.rec = Record{
		Head: bytes.Clone(head),
		Seq:  bytes.Clone(seq),
		Sep:  bytes.Clone(sep),
		Qual: bytes.Clone(qual),
	}
	return true
}

// Record returns the most recently scanned record.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first non-EOF error encountered by Scan.
func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
