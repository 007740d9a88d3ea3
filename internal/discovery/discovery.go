// Package discovery correlates the local host identity against a
// cluster-wide topology document. The exporter is deployed identically on
// every node; the entries listed under the local hostname decide which
// services this instance monitors.
package discovery

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/pkg/logger"
)

// DefaultTimeout bounds the topology fetch. Discovery endpoints may answer
// slowly on large clusters, so it is far longer than a JMX scrape.
const DefaultTimeout = 2 * time.Minute

// Resolver fetches the topology document and extracts local endpoints.
type Resolver struct {
	httpClient *http.Client
	hostname   string
}

// NewResolver creates a Resolver using the canonical local hostname.
func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		hostname:   localHostname(),
	}
}

// NewResolverForHost creates a Resolver with a fixed hostname, for tests and
// for overriding the detected identity.
func NewResolverForHost(hostname string) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		hostname:   hostname,
	}
}

func localHostname() string {
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	name, err := os.Hostname()
	if err != nil {
		logger.Warn("failed to determine local hostname", zap.Error(err))
		return ""
	}
	return name
}

// Hostname returns the identity used for topology correlation.
func (r *Resolver) Hostname() string { return r.hostname }

// DiscoverLocalServices fetches the discovery document and returns, for each
// service short code, the endpoint listed under the local hostname. Every
// failure mode - unreachable endpoint, non-success status, malformed body,
// host absent from the document - reduces to an empty map; discovery never
// fails the caller.
func (r *Resolver) DiscoverLocalServices(discoveryURL string) map[string]string {
	found := map[string]string{}

	resp, err := r.httpClient.Get(discoveryURL)
	if err != nil {
		logger.Warn("discovery endpoint unreachable",
			zap.String("url", discoveryURL), zap.Error(err))
		return found
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("discovery endpoint returned non-success status",
			zap.String("url", discoveryURL), zap.Int("status", resp.StatusCode))
		return found
	}

	// Keys are service short codes; values are ordered lists of single-key
	// {hostname: endpoint} records.
	var topology map[string][]map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&topology); err != nil {
		logger.Warn("failed to decode discovery document",
			zap.String("url", discoveryURL), zap.Error(err))
		return found
	}

	for code, nodes := range topology {
		for _, node := range nodes {
			if endpoint, ok := node[r.hostname]; ok {
				found[code] = endpoint
				break
			}
		}
	}

	if len(found) == 0 {
		logger.Info("no services listed for this host in discovery document",
			zap.String("url", discoveryURL), zap.String("hostname", r.hostname))
	} else {
		logger.Info("discovered local services",
			zap.String("hostname", r.hostname), zap.Any("services", found))
	}
	return found
}
