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
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.RWMutex
	global *slog.Logger
	once   sync.Once
)

// Conf defines logger configuration.
type Conf struct {
	Output     string `mapstructure:"output"`
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	KeepDays   int    `mapstructure:"keepDays"`
	RotateSize int    `mapstructure:"rotateSize"`
	RotateNum  int    `mapstructure:"rotateNum"`
}

// SetDefaults returns default logger configuration.
func SetDefaults() *Conf {
	return &Conf{
		Output:     "stdout",
		Path:       "./logs",
		Filename:   "keyportal.log",
		Level:      "INFO",
		KeepDays:   7,
		RotateSize: 100,
		RotateNum:  10,
	}
}

// Validate validates and normalizes logger configuration.
func (c *Conf) Validate() error {
	if c == nil {
		return fmt.Errorf("logger config is nil")
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Output == "file" {
		if c.Path == "" {
			return fmt.Errorf("log path is required when output is 'file'")
		}
		if c.Filename == "" {
			c.Filename = "keyportal.log"
		}
		if c.RotateSize <= 0 {
			c.RotateSize = 100
		}
		if c.RotateNum <= 0 {
			c.RotateNum = 10
		}
		if c.KeepDays <= 0 {
			c.KeepDays = 7
		}
	}
	return nil
}

// New creates a slog logger and also updates the global logger instance.
func New(conf *Conf) (*slog.Logger, error) {
	l, err := buildLogger(conf)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	global = l
	mu.Unlock()

	l.Log(context.Background(), slog.LevelDebug, "logger initialized", "output", conf.Output, "level", conf.Level)
	return l, nil
}

// buildLogger creates a slog logger from configuration.
func buildLogger(conf *Conf) (*slog.Logger, error) {
	if conf == nil {
		conf = SetDefaults()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	output, err := buildOutputWriter(conf)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{
		Level: parseLogLevel(conf.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	return slog.New(slog.NewTextHandler(output, handlerOptions)), nil
}

// Init initializes the global logger instance.
func Init(conf *Conf) error {
	_, err := New(conf)
	return err
}

// MustInit initializes the global logger and panics on failure.
func MustInit(conf *Conf) {
	if err := Init(conf); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// GetLogger returns the global slog logger.
func GetLogger() *slog.Logger {
	ensureLogger()
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// parseLogLevel converts string level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildOutputWriter builds the writer for stdout or file output.
func buildOutputWriter(conf *Conf) (io.Writer, error) {
	switch conf.Output {
	case "stdout":
		return os.Stdout, nil
	case "file":
		return getFileLogWriter(conf)
	default:
		return os.Stdout, nil
	}
}

// ensureLogger initializes global logger lazily with default configuration.
func ensureLogger() {
	mu.RLock()
	initialized := global != nil
	mu.RUnlock()
	if initialized {
		return
	}

	once.Do(func() {
		if _, err := New(SetDefaults()); err != nil {
			fallback := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			mu.Lock()
			global = fallback
			mu.Unlock()
		}
	})
}
