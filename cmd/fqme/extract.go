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
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nh13/fqme/extract"
)

// errUsage indicates a request that parses fine but makes no sense,
// such as omitting both --start and --end, or --start > --end.
var errUsage = fmt.Errorf("%w: usage", errFqme)

func newExtractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "extract a record range from a BGZF-compressed FASTQ file",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "input",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "BGZF FASTQ path; sibling .fqi and .gzi index files are required",
			},
			&cli.Uint64Flag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "first record to extract (1-based, inclusive)",
			},
			&cli.Uint64Flag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "last record to extract (1-based, inclusive)",
			},
		},
		Action: func(c *cli.Context) error {
			start, end, err := resolveRange(c)
			if err != nil {
				return err
			}
			if err := extract.Run(c.App.Writer, c.Path("input"), start, end); err != nil {
				if errors.Is(err, extract.ErrUsage) {
					return fmt.Errorf("%w: %w", errUsage, err)
				}
				return err
			}
			return nil
		},
	}
}

// resolveRange resolves the (start, end) record range from the flags:
// both given, only one given (which then serves as both endpoints), or
// neither given (an error).
func resolveRange(c *cli.Context) (start, end uint64, err error) {
	hasStart := c.IsSet("start")
	hasEnd := c.IsSet("end")

	switch {
	case hasStart && hasEnd:
		return c.Uint64("start"), c.Uint64("end"), nil
	case hasStart:
		s := c.Uint64("start")
		return s, s, nil
	case hasEnd:
		e := c.Uint64("end")
		return e, e, nil
	default:
		return 0, 0, fmt.Errorf("%w: one of --start or --end is required", errUsage)
	}
}
