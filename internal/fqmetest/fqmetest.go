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

// Package fqmetest builds true per-block BGZF fixtures (and their
// matching .gzi block index) for use by this module's own tests.
//
// Writing BGZF is not a product feature of fqme; this package exists
// only so the bgzf, fastqidx, and extract packages can be exercised
// end-to-end without shelling out to an external bgzip binary during
// tests. It must never be imported by non-test code.
package fqmetest

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	hdrGzipID1   byte = 0x1f
	hdrGzipID2   byte = 0x8b
	hdrDeflateCM byte = 0x08
	flgEXTRA     byte = 1 << 2
	bgzfSI1           = byte('B')
	bgzfSI2           = byte('C')

	blockHeaderLen  = 18
	blockTrailerLen = 8
)

// BlockOffset is one boundary in a fixture's .gzi index: the compressed
// and uncompressed byte offsets at the start of a block.
type BlockOffset struct {
	Compressed   uint64
	Uncompressed uint64
}

// WriteBGZF compresses data into true per-block BGZF: one independent
// gzip member per chunkSize bytes of uncompressed input (the final
// block may be shorter), followed by the standard empty BGZF EOF
// marker block. It returns the block boundaries suitable for building
// a matching .gzi fixture via WriteIndex.
func WriteBGZF(w io.Writer, data []byte, chunkSize int) ([]BlockOffset, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("fqmetest: chunkSize must be positive, got %d", chunkSize)
	}

	var offsets []BlockOffset
	var compressedOffset, uncompressedOffset uint64

	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]

		n, err := writeBlock(w, chunk)
		if err != nil {
			return nil, err
		}
		uncompressedOffset += uint64(len(chunk))
		compressedOffset += uint64(n)
		offsets = append(offsets, BlockOffset{
			Compressed:   compressedOffset,
			Uncompressed: uncompressedOffset,
		})
	}

	n, err := writeBlock(w, nil)
	if err != nil {
		return nil, err
	}
	compressedOffset += uint64(n)
	offsets = append(offsets, BlockOffset{
		Compressed:   compressedOffset,
		Uncompressed: uncompressedOffset,
	})

	return offsets, nil
}

// writeBlock writes a single BGZF member containing chunk and returns
// the member's total on-disk size.
func writeBlock(w io.Writer, chunk []byte) (int, error) {
	var compBuf bytes.Buffer
	fw, err := flate.NewWriter(&compBuf, flate.DefaultCompression)
	if err != nil {
		return 0, fmt.Errorf("fqmetest: creating deflate writer: %w", err)
	}
	if _, err := fw.Write(chunk); err != nil {
		return 0, fmt.Errorf("fqmetest: compressing block: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("fqmetest: closing deflate writer: %w", err)
	}
	compressed := compBuf.Bytes()

	blockSize := blockHeaderLen + len(compressed) + blockTrailerLen

	header := make([]byte, blockHeaderLen)
	header[0] = hdrGzipID1
	header[1] = hdrGzipID2
	header[2] = hdrDeflateCM
	header[3] = flgEXTRA
	header[9] = 0xff // OS: unknown.
	binary.LittleEndian.PutUint16(header[10:12], 6)
	header[12] = bgzfSI1
	header[13] = bgzfSI2
	binary.LittleEndian.PutUint16(header[14:16], 2)
	binary.LittleEndian.PutUint16(header[16:18], uint16(blockSize-1))

	if _, err := w.Write(header); err != nil {
		return 0, fmt.Errorf("fqmetest: writing block header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return 0, fmt.Errorf("fqmetest: writing block payload: %w", err)
	}

	trailer := make([]byte, blockTrailerLen)
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(chunk))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(chunk)))
	if _, err := w.Write(trailer); err != nil {
		return 0, fmt.Errorf("fqmetest: writing block trailer: %w", err)
	}

	return blockSize, nil
}

// WriteIndex writes a .gzi block index from offsets, in the same
// little-endian (count, then pairs) format bgzf.LoadIndex expects. The
// synthetic (0, 0) head entry is never written; callers pass only the
// boundaries returned by WriteBGZF.
func WriteIndex(w io.Writer, offsets []BlockOffset) error {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(len(offsets)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return fmt.Errorf("fqmetest: writing gzi entry count: %w", err)
	}

	for _, o := range offsets {
		var pairBuf [16]byte
		binary.LittleEndian.PutUint64(pairBuf[0:8], o.Compressed)
		binary.LittleEndian.PutUint64(pairBuf[8:16], o.Uncompressed)
		if _, err := w.Write(pairBuf[:]); err != nil {
			return fmt.Errorf("fqmetest: writing gzi entry: %w", err)
		}
	}
	return nil
}
