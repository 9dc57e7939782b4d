// Copyright 2026 Key Portal Authors.
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

package log

import (
	"context"
	"fmt"
	"log/slog"
)

func defaultContext() context.Context {
	return context.Background()
}

// Info logs a message at info level.
func Info(args ...any) {
	GetLogger().Log(defaultContext(), slog.LevelInfo, fmt.Sprint(args...))
}

// Infow logs a structured message at info level.
func Infow(msg string, keysAndValues ...any) {
	GetLogger().Log(defaultContext(), slog.LevelInfo, msg, keysAndValues...)
}

// Debug logs a message at debug level.
func Debug(args ...any) {
	GetLogger().Log(defaultContext(), slog.LevelDebug, fmt.Sprint(args...))
}

// Debugw logs a structured message at debug level.
func Debugw(msg string, keysAndValues ...any) {
	GetLogger().Log(defaultContext(), slog.LevelDebug, msg, keysAndValues...)
}

// Warn logs a message at warn level.
func Warn(args ...any) {
	GetLogger().Log(defaultContext(), slog.LevelWarn, fmt.Sprint(args...))
}

// Warnw logs a structured message at warn level.
func Warnw(msg string, keysAndValues ...any) {
	GetLogger().Log(defaultContext(), slog.LevelWarn, msg, keysAndValues...)
}

// Error logs a message at error level.
func Error(args ...any) {
	GetLogger().Log(defaultContext(), slog.LevelError, fmt.Sprint(args...))
}

// Errorw logs a structured message at error level.
func Errorw(msg string, keysAndValues ...any) {
	GetLogger().Log(defaultContext(), slog.LevelError, msg, keysAndValues...)
}
