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

// Package logging installs this module's process-wide structured
// logger, with its verbosity driven by the RUST_LOG environment
// variable.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup reads RUST_LOG, builds a level-appropriate slog.Logger writing
// to stderr, installs it as the default logger, and returns it.
func Setup() *slog.Logger {
	level := levelFromEnv(os.Getenv("RUST_LOG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// levelFromEnv maps a RUST_LOG value onto an slog.Level, defaulting to
// Info for an empty or unrecognized value. An unrecognized value is also
// reported as a warning through the default logger in place at the time
// of the call.
func levelFromEnv(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return slog.LevelInfo
	case "debug", "trace":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unrecognized RUST_LOG level, defaulting to info", "value", v)
		return slog.LevelInfo
	}
}
