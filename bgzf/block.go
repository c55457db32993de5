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
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// gzip header values. See RFC-1952 Section 2.3.1.
const (
	hdrGzipID1   byte = 0x1f
	hdrGzipID2   byte = 0x8b
	hdrDeflateCM byte = 0x08
	flgEXTRA     byte = 1 << 2
)

// bgzfSI1, bgzfSI2 identify the BGZF "BC" extra subfield (SAM spec §4.1).
const (
	bgzfSI1 = byte('B')
	bgzfSI2 = byte('C')
)

const (
	// blockHeaderLen is the fixed size of a BGZF block header: the
	// 10-byte gzip fixed header, 2-byte XLEN, and the 6-byte BC subfield.
	blockHeaderLen = 18

	// blockTrailerLen is the 4-byte CRC-32 plus 4-byte ISIZE trailer.
	blockTrailerLen = 8

	// MaxBlockSize is the largest on-disk size of a single BGZF block.
	MaxBlockSize = 1 << 16
)

// blockDecoder decodes BGZF blocks one at a time, reusing its internal
// buffers and a single flate.Reader across calls to decode.
type blockDecoder struct {
	header     [blockHeaderLen]byte
	trailer    [blockTrailerLen]byte
	compressed []byte
	uncompressed []byte
	flate      flateResetter
}

// flateResetter is the subset of flate.Reader this package depends on;
// it lets the decoder reuse one instance across blocks instead of
// allocating a new one per block.
type flateResetter interface {
	io.Reader
	flate.Resetter
}

func newBlockDecoder() *blockDecoder {
	return &blockDecoder{
		compressed: make([]byte, 0, MaxBlockSize),
		flate:      flate.NewReader(nil).(flateResetter),
	}
}

// decode reads exactly one BGZF block from r and returns its decompressed
// payload (a slice owned by the decoder and invalidated by the next
// decode call) along with the block's total on-disk size.
//
// A truncated header is reported as io.EOF: a clean end of a BGZF
// stream is itself an empty BGZF block, but a reader may also simply
// stop at the last well-formed block, and both cases must be treated
// identically by callers.
func (d *blockDecoder) decode(r io.Reader) ([]byte, int64, error) {
	n, err := io.ReadFull(r, d.header[:])
	if err != nil {
		if n == 0 || err == io.ErrUnexpectedEOF {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("%w: reading block header: %w", errBgzf, err)
	}

	if d.header[0] != hdrGzipID1 || d.header[1] != hdrGzipID2 {
		return nil, 0, fmt.Errorf("%w: bad magic: %#x %#x", ErrBadHeader, d.header[0], d.header[1])
	}
	if d.header[2] != hdrDeflateCM {
		return nil, 0, fmt.Errorf("%w: unsupported compression method: %#x", ErrBadHeader, d.header[2])
	}
	if d.header[3]&flgEXTRA == 0 {
		return nil, 0, fmt.Errorf("%w: missing EXTRA field", ErrBadHeader)
	}
	if d.header[12] != bgzfSI1 || d.header[13] != bgzfSI2 {
		return nil, 0, fmt.Errorf("%w: missing BC subfield", ErrBadHeader)
	}

	bsize := binary.LittleEndian.Uint16(d.header[16:18])
	blockSize := int64(bsize) + 1
	compressedLen := blockSize - blockHeaderLen - blockTrailerLen
	if compressedLen < 0 {
		return nil, 0, fmt.Errorf("%w: block size too small: %d", ErrBadHeader, blockSize)
	}

	if cap(d.compressed) < int(compressedLen) {
		d.compressed = make([]byte, compressedLen)
	}
	d.compressed = d.compressed[:compressedLen]
	if _, err := io.ReadFull(r, d.compressed); err != nil {
		return nil, 0, fmt.Errorf("%w: reading block payload: %w", errBgzf, err)
	}

	if _, err := io.ReadFull(r, d.trailer[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: reading block trailer: %w", errBgzf, err)
	}
	wantCRC := binary.LittleEndian.Uint32(d.trailer[0:4])
	isize := binary.LittleEndian.Uint32(d.trailer[4:8])

	if cap(d.uncompressed) < int(isize) {
		d.uncompressed = make([]byte, isize)
	}
	d.uncompressed = d.uncompressed[:isize]

	if isize > 0 {
		if err := d.flate.Reset(bytes.NewReader(d.compressed), nil); err != nil {
			return nil, 0, fmt.Errorf("%w: resetting decompressor: %w", ErrDecompress, err)
		}
		if _, err := io.ReadFull(d.flate, d.uncompressed); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrDecompress, err)
		}
	}

	gotCRC := crc32.ChecksumIEEE(d.uncompressed)
	if gotCRC != wantCRC {
		return nil, 0, &ChecksumError{Found: gotCRC, Expected: wantCRC}
	}

	return d.uncompressed, blockSize, nil
}
