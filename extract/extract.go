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

// Package extract composes the .fqi record index, the .gzi block index,
// and the block-streaming BGZF reader into a single operation: given a
// 1-based inclusive record range, emit exactly those FASTQ records.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nh13/fqme/bgzf"
	"github.com/nh13/fqme/fastq"
	"github.com/nh13/fqme/fastqidx"
)

// errExtract is the base error for all extract package errors.
var errExtract = errors.New("extract")

// ErrUsage indicates the requested range itself is invalid (end before
// start); this is distinct from a range that is merely out of bounds,
// which is not an error (see Run).
var ErrUsage = fmt.Errorf("%w: invalid usage", errExtract)

// Run extracts FASTQ records [start, end] (1-based, inclusive) from the
// BGZF file at inputPath, using its sibling inputPath+".fqi" and
// inputPath+".gzi" index files, and writes them to out.
//
// If the requested range is entirely out of bounds for the indexed
// file, Run logs a warning and returns nil without writing anything;
// an out-of-range request is treated as non-fatal.
func Run(out io.Writer, inputPath string, start, end uint64) error {
	if end < start {
		return fmt.Errorf("%w: start (%d) must be <= end (%d)", ErrUsage, start, end)
	}

	fqi, err := fastqidx.LoadFile(inputPath + ".fqi")
	if err != nil {
		return fmt.Errorf("%w: loading fqi index: %w", errExtract, err)
	}

	rng, ok := fqi.Range(start, end)
	if !ok {
		slog.Warn("requested record range is out of bounds", "start", start, "end", end, "total_records", fqi.TotalRecords)
		return nil
	}

	gzi, err := bgzf.LoadIndexFile(inputPath + ".gzi")
	if err != nil {
		return fmt.Errorf("%w: loading gzi index: %w", errExtract, err)
	}
	if gzi.Len() < 1 {
		return fmt.Errorf("%w: gzi index is empty", errExtract)
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("%w: opening input: %w", errExtract, err)
	}
	defer f.Close()

	entry, numBlocks := gzi.Locate(rng.StartByte, rng.EndByte)
	r, err := bgzf.NewReader(f, int64(entry.CompressedOffset), numBlocks)
	if err != nil {
		return fmt.Errorf("%w: opening block reader: %w", errExtract, err)
	}

	if prime := rng.StartByte - entry.UncompressedOffset; prime > 0 {
		if err := r.Discard(int64(prime)); err != nil {
			return fmt.Errorf("%w: priming reader to start byte: %w", errExtract, err)
		}
	}

	sc := fastq.NewScanner(r)
	remaining := end - start + 1
	var i uint64
	for remaining > 0 && sc.Scan() {
		if i >= rng.LeadingRecords {
			rec := sc.Record()
			if _, err := rec.WriteTo(out); err != nil {
				return fmt.Errorf("%w: writing record: %w", errExtract, err)
			}
			remaining--
		}
		i++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: parsing fastq: %w", errExtract, err)
	}
	if remaining > 0 {
		return fmt.Errorf("%w: stream ended before emitting all requested records (%d remaining)", errExtract, remaining)
	}

	return nil
}
