package collector

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, c prometheus.Collector) map[string]*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	return byName
}

func gaugeValue(t *testing.T, mf *dto.MetricFamily) float64 {
	t.Helper()
	require.Len(t, mf.GetMetric(), 1)
	return mf.GetMetric()[0].GetGauge().GetValue()
}

func labels(mf *dto.MetricFamily) map[string]string {
	out := map[string]string{}
	for _, lp := range mf.GetMetric()[0].GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestCollectNameNodeBeans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"Hadoop:service=NameNode,name=JvmMetrics","MemHeapUsedM":512.25,"GcCount":17},
			{"name":"Hadoop:service=NameNode,name=FSNamesystem,State=active","CapacityTotal":1000,"BlocksTotal":42,"NumLiveDataNodes":3},
			{"name":"Hadoop:service=NameNode,name=SomethingElse","Irrelevant":9}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(HDFSNameNode, "c1", srv.URL))

	up := families["hadoop_hdfs_namenode_up"]
	require.NotNil(t, up)
	assert.Equal(t, 1.0, gaugeValue(t, up))
	assert.Equal(t, map[string]string{"cluster": "c1", "host": "127.0.0.1"}, labels(up))

	assert.Equal(t, 512.25, gaugeValue(t, families["hadoop_hdfs_namenode_mem_heap_used_m"]))
	assert.Equal(t, 17.0, gaugeValue(t, families["hadoop_hdfs_namenode_gc_count"]))
	assert.Equal(t, 1000.0, gaugeValue(t, families["hadoop_hdfs_namenode_capacity_total"]))
	assert.Equal(t, 42.0, gaugeValue(t, families["hadoop_hdfs_namenode_blocks_total"]))
	assert.Equal(t, 3.0, gaugeValue(t, families["hadoop_hdfs_namenode_num_live_data_nodes"]))

	// Beans outside the rule set contribute nothing.
	assert.NotContains(t, families, "hadoop_hdfs_namenode_irrelevant")
}

func TestCollectCompositeValueFansOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"java.lang:type=Memory","HeapMemoryUsage":{"used":100,"committed":200,"max":400,"init":50}}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(HiveServer2, "c1", srv.URL))

	assert.Equal(t, 100.0, gaugeValue(t, families["hadoop_hive_hiveserver2_heap_memory_usage_used"]))
	assert.Equal(t, 200.0, gaugeValue(t, families["hadoop_hive_hiveserver2_heap_memory_usage_committed"]))
	assert.Equal(t, 400.0, gaugeValue(t, families["hadoop_hive_hiveserver2_heap_memory_usage_max"]))
}

func TestCollectRootQueueOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"Hadoop:service=ResourceManager,name=QueueMetrics,q0=root","AppsRunning":5},
			{"name":"Hadoop:service=ResourceManager,name=QueueMetrics,q0=root,q1=default","AppsRunning":99}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(YARNResourceManager, "c1", srv.URL))
	assert.Equal(t, 5.0, gaugeValue(t, families["hadoop_yarn_resourcemanager_apps_running"]))
}

func metricByLabel(t *testing.T, mf *dto.MetricFamily, name, value string) float64 {
	t.Helper()
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("no metric with %s=%q", name, value)
	return 0
}

func TestCollectRpcActivityPerPort(t *testing.T) {
	// A NameNode with a service RPC port exposes one RpcActivity bean per
	// listener; both must survive one gather, told apart by the port label.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"Hadoop:service=NameNode,name=RpcActivityForPort8020","ReceivedBytes":100,"SentBytes":10},
			{"name":"Hadoop:service=NameNode,name=RpcActivityForPort8040","ReceivedBytes":200,"SentBytes":20}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(HDFSNameNode, "c1", srv.URL))

	received := families["hadoop_hdfs_namenode_received_bytes"]
	require.NotNil(t, received)
	require.Len(t, received.GetMetric(), 2)
	assert.Equal(t, 100.0, metricByLabel(t, received, "port", "8020"))
	assert.Equal(t, 200.0, metricByLabel(t, received, "port", "8040"))
	assert.Equal(t, 10.0, metricByLabel(t, families["hadoop_hdfs_namenode_sent_bytes"], "port", "8020"))
	assert.Equal(t, 20.0, metricByLabel(t, families["hadoop_hdfs_namenode_sent_bytes"], "port", "8040"))
}

func TestCollectJournalPerNameservice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"Hadoop:service=JournalNode,name=Journal-ns1","TxnsWritten":11},
			{"name":"Hadoop:service=JournalNode,name=Journal-ns2","TxnsWritten":22}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(HDFSJournalNode, "c1", srv.URL))

	txns := families["hadoop_hdfs_journalnode_txns_written"]
	require.NotNil(t, txns)
	require.Len(t, txns.GetMetric(), 2)
	assert.Equal(t, 11.0, metricByLabel(t, txns, "journal", "ns1"))
	assert.Equal(t, 22.0, metricByLabel(t, txns, "journal", "ns2"))
}

func TestCollectDuplicateUnlabeledMatchKeepsFirst(t *testing.T) {
	// A rule without a qualifier label must not emit twice for one scrape,
	// or the registry would reject the gather.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"beans":[
			{"name":"Hadoop:service=NameNode,name=JvmMetrics","GcCount":1},
			{"name":"Hadoop:service=NameNode,name=JvmMetrics","GcCount":2}
		]}`))
	}))
	defer srv.Close()

	families := gather(t, New(HDFSNameNode, "c1", srv.URL))
	assert.Equal(t, 1.0, gaugeValue(t, families["hadoop_hdfs_namenode_gc_count"]))
}

func TestCollectFetchFailureYieldsUpZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	families := gather(t, New(HDFSDataNode, "c1", url))
	require.Len(t, families, 1)
	assert.Equal(t, 0.0, gaugeValue(t, families["hadoop_hdfs_datanode_up"]))
}

func TestCollectNonSuccessStatusYieldsUpZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	families := gather(t, New(HDFSDataNode, "c1", srv.URL))
	require.Len(t, families, 1)
	assert.Equal(t, 0.0, gaugeValue(t, families["hadoop_hdfs_datanode_up"]))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"MemHeapUsedM":      "mem_heap_used_m",
		"GcCount":           "gc_count",
		"NumLiveDataNodes":  "num_live_data_nodes",
		"regionCount":       "region_count",
		"CapacityUsedNonDFS": "capacity_used_non_dfs",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestNumericCoercion(t *testing.T) {
	v, ok := numeric(3.5)
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	v, ok = numeric(true)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = numeric("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = numeric("active")
	assert.False(t, ok)

	_, ok = numeric(nil)
	assert.False(t, ok)
}
