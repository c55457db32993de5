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

// Command fqme provides random access into BGZF-compressed FASTQ files.
package main

import (
	"fmt"
	"os"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "fqme: %v\n", r)
			os.Exit(ExitCodeUnknownError)
		}
	}()

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already reported err and set the exit code; cli
		// only returns here when ExitErrHandler itself is unset, which
		// newApp always sets. Nothing further to do.
		os.Exit(ExitCodeUnknownError)
	}
}
