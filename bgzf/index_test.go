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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nh13/fqme/internal/fqmetest"
)

func TestLoadIndexPrependsHeadEntry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := fqmetest.WriteIndex(&buf, []fqmetest.BlockOffset{
		{Compressed: 30, Uncompressed: 100},
		{Compressed: 60, Uncompressed: 200},
	}); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}

	idx, err := LoadIndex(&buf)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}

	want := []IndexEntry{
		{0, 0},
		{30, 100},
		{60, 200},
	}
	if diff := cmp.Diff(want, idx.entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadIndexEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := fqmetest.WriteIndex(&buf, nil); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}

	idx, err := LoadIndex(&buf)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (synthetic head entry only)", idx.Len())
	}
}

func TestIndexLocate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := fqmetest.WriteIndex(&buf, []fqmetest.BlockOffset{
		{Compressed: 30, Uncompressed: 100},
		{Compressed: 60, Uncompressed: 200},
		{Compressed: 90, Uncompressed: 300},
	}); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}
	idx, err := LoadIndex(&buf)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}

	tests := []struct {
		name           string
		startByte      uint64
		endByte        uint64
		wantEntry      IndexEntry
		wantNumBlocks  int64
	}{
		{
			name:          "within first block",
			startByte:     50,
			endByte:       90,
			wantEntry:     IndexEntry{0, 0},
			wantNumBlocks: 1,
		},
		{
			name:          "spans two blocks",
			startByte:     150,
			endByte:       250,
			wantEntry:     IndexEntry{30, 100},
			wantNumBlocks: 2,
		},
		{
			name:          "exact boundary start",
			startByte:     200,
			endByte:       300,
			wantEntry:     IndexEntry{60, 200},
			wantNumBlocks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotEntry, gotNumBlocks := idx.Locate(tt.startByte, tt.endByte)
			if diff := cmp.Diff(tt.wantEntry, gotEntry); diff != "" {
				t.Errorf("Locate() entry mismatch (-want +got):\n%s", diff)
			}
			if gotNumBlocks != tt.wantNumBlocks {
				t.Errorf("Locate() numBlocks = %d, want %d", gotNumBlocks, tt.wantNumBlocks)
			}
		})
	}
}
