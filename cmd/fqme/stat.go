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

package main

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/nh13/fqme/bgzf"
	"github.com/nh13/fqme/fastqidx"
)

func newStatCommand() *cli.Command {
	return &cli.Command{
		Name:  "stat",
		Usage: "report .fqi/.gzi index statistics for a BGZF FASTQ file",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "input",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "BGZF FASTQ path; sibling .fqi and .gzi index files are required",
			},
		},
		Action: func(c *cli.Context) error {
			sc := statCmd{input: c.Path("input")}
			return sc.Run()
		},
	}
}

type statCmd struct {
	input string
}

func (sc *statCmd) Run() error {
	fqi, err := fastqidx.LoadFile(sc.input + ".fqi")
	if err != nil {
		return fmt.Errorf("%w: loading fqi index: %w", errFqme, err)
	}

	gzi, err := bgzf.LoadIndexFile(sc.input + ".gzi")
	if err != nil {
		return fmt.Errorf("%w: loading gzi index: %w", errFqme, err)
	}

	var totalBytes uint64
	if n := len(fqi.Entries); n > 0 {
		totalBytes = fqi.Entries[n-1].TotalBytes
	}

	var avgCheckpoint float64
	if n := len(fqi.Entries) - 1; n > 0 {
		avgCheckpoint = float64(totalBytes) / float64(n)
	}

	var avgBlock float64
	if n := gzi.Len() - 1; n > 0 {
		avgBlock = float64(totalBytes) / float64(n)
	}

	tbl := table.New("total records", "nth", "checkpoints", "total bytes", "gzi blocks", "avg bytes/checkpoint", "avg bytes/block")
	tbl.AddRow(
		fqi.TotalRecords,
		fqi.Nth,
		len(fqi.Entries),
		totalBytes,
		gzi.Len(),
		fmt.Sprintf("%.1f", avgCheckpoint),
		fmt.Sprintf("%.1f", avgBlock),
	)
	tbl.Print()

	return nil
}
