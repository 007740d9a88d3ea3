package config

import "github.com/hadoop-jmx-exporter/internal/collector"

// ServiceKind describes one monitored service kind on the flag/environment
// path: its short code (also the flag name), the environment variable that
// mirrors the flag, the collector it maps to, and the well-known loopback
// endpoint substituted in auto-discovery mode when no address was supplied.
type ServiceKind struct {
	Code       string
	Env        string
	Type       collector.Type
	DefaultURL string
	Help       string
}

// ServiceKinds lists the ten service kinds in registration order.
var ServiceKinds = []ServiceKind{
	{"nn", "EXPORTER_NAMENODE_JMX", collector.HDFSNameNode,
		"http://localhost:9870/jmx", "HDFS namenode JMX URL"},
	{"dn", "EXPORTER_DATANODE_JMX", collector.HDFSDataNode,
		"http://localhost:9864/jmx", "HDFS datanode JMX URL"},
	{"jn", "EXPORTER_JOURNALNODE_JMX", collector.HDFSJournalNode,
		"http://localhost:8480/jmx", "HDFS journalnode JMX URL"},
	{"rm", "EXPORTER_RESOURCEMANAGER_JMX", collector.YARNResourceManager,
		"http://localhost:8088/jmx", "YARN resourcemanager JMX URL"},
	{"nm", "EXPORTER_NODEMANAGER_JMX", collector.YARNNodeManager,
		"http://localhost:8042/jmx", "YARN nodemanager JMX URL"},
	{"mrjh", "EXPORTER_MAPRED_JOBHISTORY_JMX", collector.MapredJobHistory,
		"http://localhost:19888/jmx", "MapReduce job history server JMX URL"},
	{"hs2", "EXPORTER_HIVESERVER2_JMX", collector.HiveServer2,
		"http://localhost:10002/jmx", "HiveServer2 JMX URL"},
	{"hllap", "EXPORTER_HIVELLAP_JMX", collector.HiveLLAPDaemon,
		"http://localhost:15002/jmx", "Hive LLAP daemon JMX URL"},
	{"hm", "EXPORTER_HMASTER_JMX", collector.HBaseMaster,
		"http://localhost:16010/jmx", "HBase master JMX URL"},
	{"hr", "EXPORTER_HREGION_JMX", collector.HBaseRegionServer,
		"http://localhost:16030/jmx", "HBase regionserver JMX URL"},
}
