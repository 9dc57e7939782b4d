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

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/keyportal/keyportal/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig defines the metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// SetDefaults fills zero-valued fields.
func (c *MetricsConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 9090
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// Server exposes a dedicated prometheus endpoint.
type Server struct {
	cfg      MetricsConfig
	registry *prometheus.Registry
	srv      *http.Server
}

// NewServer creates a metrics server with go runtime and process collectors.
func NewServer(cfg MetricsConfig) *Server {
	cfg.SetDefaults()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		cfg:      cfg,
		registry: registry,
	}
}

// GetRegistry returns the underlying registry for extra registrations.
func (s *Server) GetRegistry() *prometheus.Registry {
	return s.registry
}

// Start begins serving the metrics endpoint asynchronously.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		log.Debug("metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("metrics server started", "addr", s.srv.Addr, "path", s.cfg.Path)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("metrics server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the metrics server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
