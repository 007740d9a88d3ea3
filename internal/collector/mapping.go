// Package collector maps monitored Hadoop-ecosystem services to Prometheus
// collectors that scrape their JMX endpoints on demand.
package collector

import (
	"errors"
	"fmt"
)

// Type enumerates the supported component/service pairs.
type Type int

const (
	TypeUnknown Type = iota
	HDFSNameNode
	HDFSDataNode
	HDFSJournalNode
	YARNResourceManager
	YARNNodeManager
	MapredJobHistory
	HiveServer2
	HiveLLAPDaemon
	HBaseMaster
	HBaseRegionServer
)

// ErrUnknownCollector reports a component/service pair outside the fixed
// enumeration.
var ErrUnknownCollector = errors.New("unknown collector")

type typeMeta struct {
	component string
	service   string
}

var typeInfo = map[Type]typeMeta{
	HDFSNameNode:        {"hdfs", "namenode"},
	HDFSDataNode:        {"hdfs", "datanode"},
	HDFSJournalNode:     {"hdfs", "journalnode"},
	YARNResourceManager: {"yarn", "resourcemanager"},
	YARNNodeManager:     {"yarn", "nodemanager"},
	MapredJobHistory:    {"mapred", "jobhistory"},
	HiveServer2:         {"hive", "hiveserver2"},
	HiveLLAPDaemon:      {"hive", "llapdaemon"},
	HBaseMaster:         {"hbase", "master"},
	HBaseRegionServer:   {"hbase", "regionserver"},
}

// mapping is static; it is never mutated at runtime. The mapred job
// history collector is deliberately absent: it is reachable through the
// --mrjh flag path only, not through config-file entries.
var mapping = map[string]map[string]Type{
	"hdfs": {
		"namenode":    HDFSNameNode,
		"datanode":    HDFSDataNode,
		"journalnode": HDFSJournalNode,
	},
	"yarn": {
		"resourcemanager": YARNResourceManager,
		"nodemanager":     YARNNodeManager,
	},
	"hive": {
		"hiveserver2": HiveServer2,
		"llapdaemon":  HiveLLAPDaemon,
	},
	"hbase": {
		"master":       HBaseMaster,
		"regionserver": HBaseRegionServer,
	},
}

// Lookup resolves a component/service pair to its collector type.
func Lookup(component, service string) (Type, error) {
	services, ok := mapping[component]
	if !ok {
		return TypeUnknown, fmt.Errorf("%w: component %q", ErrUnknownCollector, component)
	}
	typ, ok := services[service]
	if !ok {
		return TypeUnknown, fmt.Errorf("%w: %s/%s", ErrUnknownCollector, component, service)
	}
	return typ, nil
}

// Component returns the component half of the pair, e.g. "hdfs".
func (t Type) Component() string { return typeInfo[t].component }

// Service returns the service half of the pair, e.g. "namenode".
func (t Type) Service() string { return typeInfo[t].service }

func (t Type) String() string {
	meta, ok := typeInfo[t]
	if !ok {
		return "unknown"
	}
	return meta.component + "_" + meta.service
}
