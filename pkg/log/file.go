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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// getFileLogWriter creates a rotating file writer.
func getFileLogWriter(conf *Conf) (io.Writer, error) {
	if err := os.MkdirAll(conf.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, conf.Filename),
		MaxSize:    conf.RotateSize,
		MaxBackups: conf.RotateNum,
		MaxAge:     conf.KeepDays,
		Compress:   true,
	}, nil
}
