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

package bgzf

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

// IndexEntry is one (compressed offset, uncompressed offset) pair from a
// .gzi block index.
type IndexEntry struct {
	CompressedOffset   uint64
	UncompressedOffset uint64
}

// Index is a loaded .gzi block index: a sparse, strictly increasing list
// of block boundaries. Entry 0 is always the synthetic (0, 0) head,
// prepended at load time; it is not present in the on-disk file.
type Index struct {
	entries []IndexEntry
}

// Len returns the number of entries, including the synthetic head entry.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// LoadIndexFile opens path and loads a .gzi block index from it.
func LoadIndexFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening gzi index: %w", errBgzf, err)
	}
	defer f.Close()
	return LoadIndex(f)
}

// LoadIndex reads a .gzi block index from r.
//
// Format: a little-endian u64 entry count N, followed by N little-endian
// (u64, u64) pairs.
func LoadIndex(r io.Reader) (*Index, error) {
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading gzi entry count: %w", errBgzf, err)
	}
	n := binary.LittleEndian.Uint64(countBuf[:])

	entries := make([]IndexEntry, 1, n+1)
	entries[0] = IndexEntry{0, 0}

	var pairBuf [16]byte
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(r, pairBuf[:]); err != nil {
			return nil, fmt.Errorf("%w: reading gzi entry %d: %w", errBgzf, i, err)
		}
		entries = append(entries, IndexEntry{
			CompressedOffset:   binary.LittleEndian.Uint64(pairBuf[0:8]),
			UncompressedOffset: binary.LittleEndian.Uint64(pairBuf[8:16]),
		})
	}

	return &Index{entries: entries}, nil
}

// Locate returns the block boundary at or before startByte, and the
// number of block boundaries between it and the first boundary at or
// after endByte. A negative numBlocks means the caller should read
// until the underlying BGZF stream's own EOF marker rather than a
// fixed block count, because the index has no boundary at or beyond
// endByte (endByte reaches into the final, unindexed tail of the file).
func (idx *Index) Locate(startByte, endByte uint64) (entry IndexEntry, numBlocks int64) {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].UncompressedOffset > startByte
	}) - 1
	if i < 0 {
		i = 0
	}
	entry = idx.entries[i]

	j := sort.Search(len(idx.entries), func(j int) bool {
		return idx.entries[j].UncompressedOffset >= endByte
	})
	if j >= len(idx.entries) {
		return entry, -1
	}
	numBlocks = int64(j - i)
	if numBlocks < 1 {
		numBlocks = 1
	}
	return entry, numBlocks
}
