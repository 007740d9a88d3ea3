// Package exporter orchestrates the service registry and the exposition
// lifecycle: it resolves the final list of monitored services once at
// startup, then periodically attaches any not-yet-registered collector
// while the exposition server answers scrapes concurrently.
package exporter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/internal/collector"
	"github.com/hadoop-jmx-exporter/internal/config"
	"github.com/hadoop-jmx-exporter/internal/discovery"
	"github.com/hadoop-jmx-exporter/internal/registry"
	"github.com/hadoop-jmx-exporter/internal/server"
	"github.com/hadoop-jmx-exporter/pkg/logger"
	"github.com/hadoop-jmx-exporter/pkg/metrics"
)

// Exporter owns the effective configuration and the service registry for
// the lifetime of the process.
type Exporter struct {
	cfg       *config.Config
	registers metrics.Registers
	registry  *registry.Registry
	server    *server.Server
}

// New resolves the monitored service list and builds the exporter. In
// config-file mode the list comes straight from the file; otherwise it is
// synthesized from the per-kind URLs, the whitelist and, when enabled, the
// discovery topology.
func New(cfg *config.Config, registers metrics.Registers) *Exporter {
	var specs []config.ServiceSpec
	if cfg.FromFile {
		specs = cfg.Services
	} else {
		specs = synthesize(cfg, discoveredEndpoints(cfg))
	}

	return &Exporter{
		cfg:       cfg,
		registers: registers,
		registry:  registry.Build(specs),
		server:    server.New(cfg.Server, registers),
	}
}

// discoveredEndpoints fetches the topology once at startup. Auto-discovery
// off, or no discovery URL configured, yields an empty map.
func discoveredEndpoints(cfg *config.Config) map[string]string {
	if !cfg.AutoDiscovery || cfg.DiscoveryURL == "" {
		return map[string]string{}
	}
	logger.Info("auto-discovery enabled, fetching cluster topology",
		zap.String("url", cfg.DiscoveryURL))
	return discovery.NewResolver().DiscoverLocalServices(cfg.DiscoveryURL)
}

// synthesize builds the service list on the flag/environment path. Per
// kind: an explicitly supplied URL wins; with auto-discovery on, a missing
// URL falls back to the discovered endpoint for this host, then to the
// well-known loopback default. The whitelist is checked before a spec is
// constructed - a disallowed kind is omitted even when its URL was supplied.
func synthesize(cfg *config.Config, discovered map[string]string) []config.ServiceSpec {
	if cfg.AutoDiscovery {
		logger.Info("enable service auto discovery mode")
	}

	var specs []config.ServiceSpec
	for _, kind := range config.ServiceKinds {
		url := cfg.ServiceURLs[kind.Code]
		if url == "" && cfg.AutoDiscovery {
			if ep, ok := discovered[kind.Code]; ok {
				url = ep
			} else {
				url = kind.DefaultURL
			}
		}
		if url == "" {
			continue
		}
		if !cfg.Whitelist.Allowed(kind.Code) {
			logger.Debug("service kind not in whitelist, skipping",
				zap.String("code", kind.Code), zap.String("url", url))
			continue
		}
		spec := config.ServiceSpec{Cluster: cfg.Cluster, URL: url, Type: kind.Type}
		logger.Info("added service", zap.Stringer("service", spec))
		specs = append(specs, spec)
	}
	return specs
}

// Registry exposes the service registry for inspection.
func (e *Exporter) Registry() *registry.Registry { return e.registry }

// Tick attaches every pending registration, constructing a fresh collector
// bound to (cluster, url) per attach attempt.
func (e *Exporter) Tick() int {
	return e.registry.Tick(func(spec config.ServiceSpec) error {
		return e.registers.Register(collector.New(spec.Type, spec.Cluster, spec.URL))
	})
}

// Run starts the exposition listener once, then loops: tick, sleep one
// period. Cancellation is observed only at the sleep boundary; in-flight
// work runs to completion. Returns after a graceful server shutdown.
func (e *Exporter) Run(ctx context.Context) error {
	if err := e.server.Start(); err != nil {
		return err
	}
	logger.Info("exporter started",
		zap.String("listen", e.cfg.Server.ListenAddr()),
		zap.String("path", e.cfg.Server.Path),
		zap.Duration("period", e.cfg.Server.Period),
		zap.Int("services", e.registry.Len()))

	for {
		e.Tick()
		logger.Debug("continue scraping metrics",
			zap.Duration("period", e.cfg.Server.Period))

		select {
		case <-ctx.Done():
			logger.Info("interrupted, shutting down")
			return e.server.Shutdown()
		case <-time.After(e.cfg.Server.Period):
		}
	}
}
