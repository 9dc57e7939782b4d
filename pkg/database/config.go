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

package database

import (
	"fmt"
	"time"
)

const dataTablePrefix = "kp_"

// Database defines common database configuration.
type Database struct {
	MySQL        MySQLConfig `mapstructure:"mysql"`
	MaxOpenConns int         `mapstructure:"maxOpenConns"`
	MaxIdleConns int         `mapstructure:"maxIdleConns"`
	MaxLifetime  int         `mapstructure:"maxLifetime"` // seconds
	MaxIdleTime  int         `mapstructure:"maxIdleTime"` // seconds
	OutPut       bool        `mapstructure:"output"`      // enable SQL logging
}

// MySQLConfig defines the MySQL connection configuration.
type MySQLConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	User     string   `mapstructure:"user"`
	Password string   `mapstructure:"password"`
	DBName   string   `mapstructure:"dbName"`
	Primary  []string `mapstructure:"primary"`  // optional primary DSNs for dbresolver
	Replicas []string `mapstructure:"replicas"` // optional replica DSNs for dbresolver
}

// SetDefaults fills zero-valued pool settings.
func (d *Database) SetDefaults() {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 50
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = 10
	}
	if d.MySQL.Host == "" {
		d.MySQL.Host = "127.0.0.1"
	}
	if d.MySQL.Port == 0 {
		d.MySQL.Port = 3306
	}
}

// buildMySQLDSN builds the MySQL DSN string.
func buildMySQLDSN(user, password, host string, port int, dbName string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbName)
}

// GetConnMaxLifetime converts seconds to a duration with a sane default.
func GetConnMaxLifetime(seconds int) time.Duration {
	if seconds <= 0 {
		return time.Hour
	}
	return time.Duration(seconds) * time.Second
}

// GetConnMaxIdleTime converts seconds to a duration with a sane default.
func GetConnMaxIdleTime(seconds int) time.Duration {
	if seconds <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}
