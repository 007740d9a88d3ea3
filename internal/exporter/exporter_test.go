package exporter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadoop-jmx-exporter/internal/collector"
	"github.com/hadoop-jmx-exporter/internal/config"
	"github.com/hadoop-jmx-exporter/internal/exporter"
	"github.com/hadoop-jmx-exporter/pkg/metrics"
)

func baseServer() config.ServerConfig {
	return config.ServerConfig{
		Address: "127.0.0.1",
		Port:    config.DefaultPort,
		Path:    config.DefaultPath,
		Period:  config.DefaultPeriod,
	}
}

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	return byName
}

func TestFileModeRoundTrip(t *testing.T) {
	jmxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[{"name":"Hadoop:service=NameNode,name=JvmMetrics","GcCount":7}]}`))
	}))
	defer jmxSrv.Close()

	cfg := &config.Config{
		Server:   baseServer(),
		Cluster:  config.DefaultCluster,
		FromFile: true,
		Services: []config.ServiceSpec{
			{Cluster: "c1", URL: jmxSrv.URL, Type: collector.HDFSNameNode},
		},
	}

	promReg := prometheus.NewRegistry()
	exp := exporter.New(cfg, metrics.NewPromRegistry(promReg))

	require.Equal(t, 1, exp.Registry().Len())
	reg := exp.Registry().Registrations()[0]
	assert.False(t, reg.Attached())

	// One tick attaches the namenode collector; further ticks are no-ops.
	assert.Equal(t, 1, exp.Tick())
	assert.True(t, reg.Attached())
	assert.Equal(t, 0, exp.Tick())

	families := gatherNames(t, promReg)
	up := families["hadoop_hdfs_namenode_up"]
	require.NotNil(t, up, "attached collector must answer scrapes")
	require.Len(t, up.GetMetric(), 1)
	assert.Equal(t, 1.0, up.GetMetric()[0].GetGauge().GetValue())

	var cluster string
	for _, lp := range up.GetMetric()[0].GetLabel() {
		if lp.GetName() == "cluster" {
			cluster = lp.GetValue()
		}
	}
	assert.Equal(t, "c1", cluster)
	assert.Equal(t, 7.0, families["hadoop_hdfs_namenode_gc_count"].GetMetric()[0].GetGauge().GetValue())
}

func TestFlatModeSynthesizesFromExplicitURLs(t *testing.T) {
	cfg := &config.Config{
		Server:  baseServer(),
		Cluster: "c1",
		ServiceURLs: map[string]string{
			"nn": "http://nn:9870/jmx",
			"rm": "http://rm:8088/jmx",
		},
	}
	exp := exporter.New(cfg, metrics.NewPromRegistry(prometheus.NewRegistry()))

	require.Equal(t, 2, exp.Registry().Len())
	regs := exp.Registry().Registrations()
	assert.Equal(t, collector.HDFSNameNode, regs[0].Spec.Type)
	assert.Equal(t, collector.YARNResourceManager, regs[1].Spec.Type)
	assert.Equal(t, "c1", regs[0].Spec.Cluster)
}

func TestWhitelistBlocksSuppliedURL(t *testing.T) {
	// nn has a URL but only dn passes the whitelist: the namenode service
	// must never reach the registry.
	cfg := &config.Config{
		Server:      baseServer(),
		Cluster:     "c1",
		Whitelist:   config.ParseWhitelist("dn"),
		ServiceURLs: map[string]string{"nn": "http://a/jmx"},
	}
	exp := exporter.New(cfg, metrics.NewPromRegistry(prometheus.NewRegistry()))
	assert.Equal(t, 0, exp.Registry().Len())
}

func TestAutoDiscoveryDefaultsLoopbackURLs(t *testing.T) {
	cfg := &config.Config{
		Server:        baseServer(),
		Cluster:       "c1",
		AutoDiscovery: true,
		ServiceURLs:   map[string]string{"nn": "http://explicit:9870/jmx"},
	}
	exp := exporter.New(cfg, metrics.NewPromRegistry(prometheus.NewRegistry()))

	// All ten kinds register: nn keeps its explicit URL, the rest fall
	// back to the well-known loopback defaults.
	require.Equal(t, len(config.ServiceKinds), exp.Registry().Len())
	byCode := map[collector.Type]string{}
	for _, reg := range exp.Registry().Registrations() {
		byCode[reg.Spec.Type] = reg.Spec.URL
	}
	assert.Equal(t, "http://explicit:9870/jmx", byCode[collector.HDFSNameNode])
	assert.Equal(t, "http://localhost:9864/jmx", byCode[collector.HDFSDataNode])
	assert.Equal(t, "http://localhost:8088/jmx", byCode[collector.YARNResourceManager])
}

func TestAutoDiscoveryWithWhitelist(t *testing.T) {
	cfg := &config.Config{
		Server:        baseServer(),
		Cluster:       "c1",
		AutoDiscovery: true,
		Whitelist:     config.ParseWhitelist("nn,dn"),
		ServiceURLs:   map[string]string{},
	}
	exp := exporter.New(cfg, metrics.NewPromRegistry(prometheus.NewRegistry()))

	require.Equal(t, 2, exp.Registry().Len())
	assert.Equal(t, collector.HDFSNameNode, exp.Registry().Registrations()[0].Spec.Type)
	assert.Equal(t, collector.HDFSDataNode, exp.Registry().Registrations()[1].Spec.Type)
}

func TestNoServicesYieldsEmptyRegistry(t *testing.T) {
	cfg := &config.Config{
		Server:      baseServer(),
		Cluster:     "c1",
		ServiceURLs: map[string]string{},
	}
	exp := exporter.New(cfg, metrics.NewPromRegistry(prometheus.NewRegistry()))
	assert.Equal(t, 0, exp.Registry().Len())
	assert.Equal(t, 0, exp.Tick())
}
