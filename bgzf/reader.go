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
	"fmt"
	"io"
)

// Reader decodes a BGZF stream one block at a time starting at an
// arbitrary compressed-file offset, exposing the decompressed bytes as
// an io.Reader.
//
// Unlike a whole-file decompressor, Reader never holds more than one
// block's worth of decompressed data in memory, and it stops reading
// blocks once its block budget (numBlocks) is exhausted.
type Reader struct {
	rs         io.ReadSeeker
	dec        *blockDecoder
	buf        []byte
	pos        int
	blocksLeft int64 // negative means unlimited: read until the stream's own EOF marker.
}

// NewReader returns a Reader that begins decoding BGZF blocks at
// compressedOffset in rs. numBlocks bounds how many blocks will be
// decoded; a negative value means read until the stream ends.
func NewReader(rs io.ReadSeeker, compressedOffset int64, numBlocks int64) (*Reader, error) {
	if _, err := rs.Seek(compressedOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to block offset %d: %w", errBgzf, compressedOffset, err)
	}
	return &Reader{
		rs:         rs,
		dec:        newBlockDecoder(),
		blocksLeft: numBlocks,
	}, nil
}

// fill decodes the next block into r.buf, returning the number of bytes
// now available. It returns 0, nil at a clean end of stream.
func (r *Reader) fill() (int, error) {
	if r.blocksLeft == 0 {
		return 0, nil
	}
	data, _, err := r.dec.decode(r.rs)
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}
	r.buf = data
	r.pos = 0
	if r.blocksLeft > 0 {
		r.blocksLeft--
	}
	return len(r.buf), nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) {
		n, err := r.fill()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

// Discard advances the logical uncompressed position by exactly n
// bytes without returning them. It is used once, at construction time,
// to land the reader precisely on a record boundary inside the first
// decoded block. If the stream (or the block budget) ends before n bytes
// have been skipped, Discard stops there and returns nil; later reads
// then report io.EOF.
func (r *Reader) Discard(n int64) error {
	for n > 0 {
		if r.pos >= len(r.buf) {
			filled, err := r.fill()
			if err != nil {
				return err
			}
			if filled == 0 {
				return nil
			}
		}
		avail := int64(len(r.buf) - r.pos)
		adv := n
		if avail < adv {
			adv = avail
		}
		r.pos += int(adv)
		n -= adv
	}
	return nil
}
