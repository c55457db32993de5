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

package fastqidx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fixtureRecord is a 34-byte FASTQ record: "@some-read-name\nGATTACA\n+\nIIIIIII\n".
const fixtureRecord = "@some-read-name\nGATTACA\n+\nIIIIIII\n"

func eightRecordIndex(t *testing.T) *Index {
	t.Helper()
	input := strings.Repeat(fixtureRecord, 8)
	idx, err := Build(strings.NewReader(input), 3, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return idx
}

func TestBuildCheckpointEntries(t *testing.T) {
	t.Parallel()

	idx := eightRecordIndex(t)
	if idx.TotalRecords != 8 {
		t.Fatalf("TotalRecords = %d, want 8", idx.TotalRecords)
	}

	recLen := uint64(len(fixtureRecord))
	want := []Entry{
		{TotalRecords: 0, TotalBytes: 0},
		{TotalRecords: 3, TotalBytes: 3 * recLen},
		{TotalRecords: 6, TotalBytes: 6 * recLen},
		{TotalRecords: 8, TotalBytes: 8 * recLen},
	}
	if diff := cmp.Diff(want, idx.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeScenarios(t *testing.T) {
	t.Parallel()

	idx := eightRecordIndex(t)
	recLen := uint64(len(fixtureRecord))

	tests := []struct {
		name     string
		start    uint64
		end      uint64
		want     Range
		selected uint64
		ok       bool
	}{
		{
			name:  "range(2,2)",
			start: 2, end: 2,
			want:     Range{StartByte: 0, EndByte: 3 * recLen, LeadingRecords: 1, TrailingRecords: 1, TotalRecords: 3},
			selected: 1,
			ok:       true,
		},
		{
			name:  "range(3,4)",
			start: 3, end: 4,
			want:     Range{StartByte: 0, EndByte: 6 * recLen, LeadingRecords: 2, TrailingRecords: 2, TotalRecords: 6},
			selected: 2,
			ok:       true,
		},
		{
			name:  "range(8,9) clamps end to total",
			start: 8, end: 9,
			want:     Range{StartByte: 6 * recLen, EndByte: 8 * recLen, LeadingRecords: 1, TrailingRecords: 0, TotalRecords: 2},
			selected: 1,
			ok:       true,
		},
		{
			name:  "range(1,8) whole file",
			start: 1, end: 8,
			want:     Range{StartByte: 0, EndByte: 8 * recLen, LeadingRecords: 0, TrailingRecords: 0, TotalRecords: 8},
			selected: 8,
			ok:       true,
		},
		{
			name:  "range(9,9) entirely out of bounds",
			start: 9, end: 9,
			ok: false,
		},
		{
			name:  "range(0,3) clamps start to 1",
			start: 0, end: 3,
			want:     Range{StartByte: 0, EndByte: 3 * recLen, LeadingRecords: 0, TrailingRecords: 0, TotalRecords: 3},
			selected: 3,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := idx.Range(tt.start, tt.end)
			if ok != tt.ok {
				t.Fatalf("Range(%d, %d) ok = %v, want %v", tt.start, tt.end, ok, tt.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Range(%d, %d) mismatch (-want +got):\n%s", tt.start, tt.end, diff)
			}
			if got.SelectedRecords() != tt.selected {
				t.Errorf("SelectedRecords() = %d, want %d", got.SelectedRecords(), tt.selected)
			}
		})
	}
}

func TestRangeInvalidInputs(t *testing.T) {
	t.Parallel()

	idx := eightRecordIndex(t)

	tests := []struct {
		name  string
		start uint64
		end   uint64
	}{
		{"end before start", 5, 3},
		{"end zero", 2, 0},
		{"start beyond total", 9, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, ok := idx.Range(tt.start, tt.end); ok {
				t.Errorf("Range(%d, %d) ok = true, want false", tt.start, tt.end)
			}
		})
	}
}

func TestPlusLineCommentMeasuredExactly(t *testing.T) {
	t.Parallel()

	input := "@r\nA\n+comment\nI\n"
	idx, err := Build(strings.NewReader(input), 100000, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, want := idx.Entries[len(idx.Entries)-1].TotalBytes, uint64(len(input)); got != want {
		t.Errorf("TotalBytes = %d, want %d (exact on-disk length, not field-sum estimate)", got, want)
	}
}

func TestBuildPassthrough(t *testing.T) {
	t.Parallel()

	input := strings.Repeat(fixtureRecord, 3)
	var out bytes.Buffer
	if _, err := Build(strings.NewReader(input), 1, &out); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if out.String() != input {
		t.Errorf("passthrough output mismatch")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	t.Parallel()

	idx := eightRecordIndex(t)

	var buf bytes.Buffer
	if err := idx.Persist(&buf); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(idx, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}
