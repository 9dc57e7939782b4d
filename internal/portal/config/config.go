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

package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/internal/pkg/notify"
	"github.com/keyportal/keyportal/pkg/cache"
	"github.com/keyportal/keyportal/pkg/database"
	"github.com/keyportal/keyportal/pkg/http"
	"github.com/keyportal/keyportal/pkg/log"
	"github.com/keyportal/keyportal/pkg/metrics"
)

type AppConfig struct {
	Log      log.Conf              `mapstructure:"log"`
	Http     http.Http             `mapstructure:"http"`
	Database database.Database     `mapstructure:"database"`
	Redis    cache.Redis           `mapstructure:"redis"`
	Crs      crs.Config            `mapstructure:"crs"`
	Notify   notify.Config         `mapstructure:"notify"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
}

func (c *AppConfig) setDefaults() {
	c.Http.SetDefaults()
	c.Metrics.SetDefaults()
	c.Notify.SetDefaults()
	c.Crs.SetDefaults()
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

func NewConf(confFile string) *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confFile)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return &cfg
}

// GetConfig returns a copy of the live configuration, safe to read while a
// hot reload is in flight.
func GetConfig() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile reads the configuration and keeps watching it for changes.
func LoadConfigFile(confFile string) (AppConfig, error) {
	config := viper.New()
	config.SetConfigFile(confFile)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, re-reading", "file", e.Name)
		if err := config.ReadInConfig(); err != nil {
			log.Errorw("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		mu.Lock()
		if err := config.Unmarshal(&cfg); err != nil {
			mu.Unlock()
			log.Errorw("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		cfg.setDefaults()
		mu.Unlock()
		log.Infow("configuration reloaded successfully", "file", e.Name)
	})

	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	cfg.setDefaults()
	log.Infow("config file loaded", "path", confFile)
	return cfg, nil
}
