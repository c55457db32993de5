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
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nh13/fqme/fastqidx"
)

func newIndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "build a .fqi record index from FASTQ read on stdin",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output .fqi path",
			},
			&cli.Uint64Flag{
				Name:    "nth",
				Aliases: []string{"n"},
				Value:   100000,
				Usage:   "record checkpoint stride",
			},
			&cli.BoolFlag{
				Name:               "no-stdout",
				Usage:              "do not re-emit the FASTQ input to stdout",
				DisableDefaultText: true,
			},
		},
		Action: func(c *cli.Context) error {
			ic := indexCmd{
				output:   c.Path("output"),
				nth:      c.Uint64("nth"),
				noStdout: c.Bool("no-stdout"),
			}
			return ic.Run(c.App.Writer)
		},
	}
}

type indexCmd struct {
	output   string
	nth      uint64
	noStdout bool
}

func (ic *indexCmd) Run(stdout io.Writer) error {
	out, err := os.Create(ic.output)
	if err != nil {
		return fmt.Errorf("%w: creating index file: %w", errFqme, err)
	}
	defer out.Close()

	var passthrough io.Writer
	if !ic.noStdout {
		passthrough = stdout
	}

	idx, err := fastqidx.Build(os.Stdin, ic.nth, passthrough)
	if err != nil {
		return fmt.Errorf("%w: building index: %w", errFqme, err)
	}

	if err := idx.Persist(out); err != nil {
		return fmt.Errorf("%w: writing index: %w", errFqme, err)
	}
	return nil
}
