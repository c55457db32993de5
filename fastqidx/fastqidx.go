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

// Package fastqidx implements the .fqi FASTQ record index: a sparse,
// checkpointed mapping from record ordinal to uncompressed byte offset,
// and the range query that turns a requested record range into a
// checkpoint-aligned byte window plus leading/trailing trim counts.
package fastqidx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nh13/fqme/fastq"
)

// errFastqIdx is the base error for all fastqidx package errors.
var errFastqIdx = errors.New("fastqidx")

// Entry is a single checkpoint: the number of records and uncompressed
// bytes observed up to (and including) this point in the FASTQ stream.
type Entry struct {
	TotalRecords uint64
	TotalBytes   uint64
}

// Index is a loaded or built .fqi record index.
type Index struct {
	TotalRecords uint64
	Nth          uint64
	Entries      []Entry
}

// ByteCountingWriter counts the bytes written to it, optionally tee-ing
// them to an underlying writer. A nil underlying writer discards the
// bytes while still counting them.
type ByteCountingWriter struct {
	w io.Writer
	n uint64
}

// Write implements io.Writer.
func (c *ByteCountingWriter) Write(p []byte) (int, error) {
	if c.w == nil {
		c.n += uint64(len(p))
		return len(p), nil
	}
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

// Count returns the total number of bytes written so far.
func (c *ByteCountingWriter) Count() uint64 {
	return c.n
}

// Build streams FASTQ records from r, measuring each record's exact
// on-disk byte length by writing it unchanged through a
// ByteCountingWriter (never by summing parsed field lengths, which
// undercounts a commented '+' separator line). A checkpoint is recorded
// every nth records, plus a final entry recording the grand totals.
//
// If out is non-nil, every record's raw bytes are also written to out
// unchanged, alongside being counted.
func Build(r io.Reader, nth uint64, out io.Writer) (*Index, error) {
	if nth == 0 {
		nth = 1
	}

	idx := &Index{Nth: nth}
	counter := &ByteCountingWriter{w: out}
	sc := fastq.NewScanner(r)

	var totalRecords uint64
	for sc.Scan() {
		if totalRecords%nth == 0 {
			idx.Entries = append(idx.Entries, Entry{TotalRecords: totalRecords, TotalBytes: counter.Count()})
		}
		rec := sc.Record()
		if _, err := rec.WriteTo(counter); err != nil {
			return nil, fmt.Errorf("%w: measuring record %d: %w", errFastqIdx, totalRecords, err)
		}
		totalRecords++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: parsing fastq: %w", errFastqIdx, err)
	}

	idx.Entries = append(idx.Entries, Entry{TotalRecords: totalRecords, TotalBytes: counter.Count()})
	idx.TotalRecords = totalRecords

	return idx, nil
}

// Persist writes the index in its binary .fqi format:
//
//	u64 total_records
//	u64 nth
//	repeat { u64 entry.total_records; u64 entry.total_bytes }
func (idx *Index) Persist(w io.Writer) error {
	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header[0:8], idx.TotalRecords)
	binary.LittleEndian.PutUint64(header[8:16], idx.Nth)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w: writing header: %w", errFastqIdx, err)
	}

	for _, e := range idx.Entries {
		buf := make([]byte, 16)
		binary.LittleEndian.PutUint64(buf[0:8], e.TotalRecords)
		binary.LittleEndian.PutUint64(buf[8:16], e.TotalBytes)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w: writing entry: %w", errFastqIdx, err)
		}
	}
	return nil
}

// LoadFile opens path and loads a .fqi index from it.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening fqi index: %w", errFastqIdx, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a .fqi index from r.
func Load(r io.Reader) (*Index, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", errFastqIdx, err)
	}

	idx := &Index{
		TotalRecords: binary.LittleEndian.Uint64(header[0:8]),
		Nth:          binary.LittleEndian.Uint64(header[8:16]),
	}

	buf := make([]byte, 16)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading entry: %w", errFastqIdx, err)
		}
		idx.Entries = append(idx.Entries, Entry{
			TotalRecords: binary.LittleEndian.Uint64(buf[0:8]),
			TotalBytes:   binary.LittleEndian.Uint64(buf[8:16]),
		})
	}

	return idx, nil
}

// Range is the result of querying an Index for a record range: a
// checkpoint-aligned uncompressed byte window that is a superset of
// the requested records, plus the counts needed to trim it down to
// exactly the requested records.
type Range struct {
	StartByte       uint64
	EndByte         uint64
	LeadingRecords  uint64
	TrailingRecords uint64
	TotalRecords    uint64
}

// SelectedRecords returns the number of records actually requested,
// after trimming leading and trailing records from the window.
func (r Range) SelectedRecords() uint64 {
	return r.TotalRecords - r.LeadingRecords - r.TrailingRecords
}

// Range resolves a 1-based inclusive record range [start, end] against
// the index. It returns false if the range is entirely out of bounds:
// end < start, end < 1, or start beyond the index's total record count.
// An out-of-range start is clamped up to 1; an out-of-range end is
// clamped down to the index's total record count.
func (idx *Index) Range(start, end uint64) (Range, bool) {
	if end < start || end < 1 || start > idx.TotalRecords {
		return Range{}, false
	}
	if start < 1 {
		start = 1
	}
	if end > idx.TotalRecords {
		end = idx.TotalRecords
	}

	iLo := sort.Search(len(idx.Entries), func(i int) bool {
		return idx.Entries[i].TotalRecords >= start
	}) - 1

	var startByte, lastTotal uint64
	if iLo >= 0 {
		startByte = idx.Entries[iLo].TotalBytes
		lastTotal = idx.Entries[iLo].TotalRecords
	}

	jHi := sort.Search(len(idx.Entries), func(j int) bool {
		return idx.Entries[j].TotalRecords >= end
	})
	// jHi < len(idx.Entries) always holds: the final entry's
	// TotalRecords equals idx.TotalRecords, which is >= end by
	// construction above.
	endByte := idx.Entries[jHi].TotalBytes
	totalInWindow := idx.Entries[jHi].TotalRecords - lastTotal

	return Range{
		StartByte:       startByte,
		EndByte:         endByte,
		LeadingRecords:  start - lastTotal - 1,
		TrailingRecords: idx.Entries[jHi].TotalRecords - end,
		TotalRecords:    totalInWindow,
	}, true
}
