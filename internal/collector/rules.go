package collector

// beanRule selects fields out of one bean. A bean matches when its name
// contains match and does not contain exclude. Rules whose match is a
// family prefix (one bean per port, per journal, ...) carry a label name;
// the bean-name segment after match becomes that label's value, keeping
// repeated matches apart in the exposition.
type beanRule struct {
	match   string
	exclude string
	label   string
	fields  []string
}

// commonRules cover the beans every metrics2-instrumented JVM daemon exposes.
var commonRules = []beanRule{
	{
		match: "name=JvmMetrics",
		fields: []string{
			"MemNonHeapUsedM", "MemNonHeapCommittedM",
			"MemHeapUsedM", "MemHeapCommittedM", "MemHeapMaxM", "MemMaxM",
			"GcCount", "GcTimeMillis",
			"ThreadsNew", "ThreadsRunnable", "ThreadsBlocked",
			"ThreadsWaiting", "ThreadsTimedWaiting", "ThreadsTerminated",
			"LogFatal", "LogError", "LogWarn", "LogInfo",
		},
	},
	{
		match: "java.lang:type=OperatingSystem",
		fields: []string{
			"SystemLoadAverage", "ProcessCpuLoad", "SystemCpuLoad",
			"OpenFileDescriptorCount", "MaxFileDescriptorCount",
			"AvailableProcessors",
		},
	},
	{
		// HeapMemoryUsage/NonHeapMemoryUsage are composite values and fan
		// out into one gauge per sub-key.
		match:  "java.lang:type=Memory",
		fields: []string{"HeapMemoryUsage", "NonHeapMemoryUsage"},
	},
	{
		match:  "name=UgiMetrics",
		fields: []string{"LoginSuccessNumOps", "LoginFailureNumOps"},
	},
	{
		// One bean per listener, e.g. RpcActivityForPort8020 and
		// RpcActivityForPort8040 on a NameNode with a service RPC port.
		match: "name=RpcActivityForPort",
		label: "port",
		fields: []string{
			"ReceivedBytes", "SentBytes",
			"RpcQueueTimeNumOps", "RpcQueueTimeAvgTime",
			"RpcProcessingTimeNumOps", "RpcProcessingTimeAvgTime",
			"NumOpenConnections", "CallQueueLength",
		},
	},
}

var typeRules = map[Type][]beanRule{
	HDFSNameNode: {
		{
			match: "name=FSNamesystem,",
			fields: []string{
				"CapacityTotal", "CapacityUsed", "CapacityRemaining", "CapacityUsedNonDFS",
				"TotalLoad", "BlocksTotal", "FilesTotal",
				"MissingBlocks", "CorruptBlocks", "UnderReplicatedBlocks",
				"PendingReplicationBlocks", "ScheduledReplicationBlocks", "PendingDeletionBlocks",
				"NumLiveDataNodes", "NumDeadDataNodes", "NumDecomLiveDataNodes",
				"NumDecomDeadDataNodes", "NumStaleDataNodes",
			},
		},
		{
			match: "name=NameNodeActivity",
			fields: []string{
				"CreateFileOps", "FilesCreated", "FilesDeleted", "FilesRenamed",
				"GetListingOps", "FileInfoOps", "AddBlockOps", "GetBlockLocations",
				"TransactionsNumOps", "TransactionsAvgTime",
				"SyncsNumOps", "SyncsAvgTime",
				"BlockReportNumOps", "BlockReportAvgTime",
			},
		},
	},
	HDFSDataNode: {
		{
			match: "name=FSDatasetState",
			fields: []string{
				"Capacity", "DfsUsed", "Remaining", "NumFailedVolumes",
				"CacheUsed", "CacheCapacity", "NumBlocksCached", "NumBlocksFailedToCache",
			},
		},
		{
			match: "name=DataNodeActivity",
			fields: []string{
				"BytesWritten", "BytesRead", "BlocksWritten", "BlocksRead",
				"BlocksReplicated", "BlocksRemoved", "BlocksVerified",
				"ReadsFromLocalClient", "ReadsFromRemoteClient",
				"WritesFromLocalClient", "WritesFromRemoteClient",
				"HeartbeatsNumOps", "HeartbeatsAvgTime",
			},
		},
	},
	HDFSJournalNode: {
		{
			// One bean per nameservice on multi-nameservice journal nodes.
			match: "name=Journal-",
			label: "journal",
			fields: []string{
				"BatchesWritten", "TxnsWritten", "BytesWritten",
				"BatchesWrittenWhileLagging", "CurrentLagTxns",
				"LastWrittenTxId", "LastPromisedEpoch", "LastWriterEpoch",
			},
		},
	},
	YARNResourceManager: {
		{
			match: "name=ClusterMetrics",
			fields: []string{
				"NumActiveNMs", "NumDecommissionedNMs", "NumLostNMs",
				"NumUnhealthyNMs", "NumRebootedNMs",
				"AMLaunchDelayNumOps", "AMLaunchDelayAvgTime",
			},
		},
		{
			// Root queue only; child queues carry an extra q1 qualifier.
			match:   "name=QueueMetrics,q0=root",
			exclude: ",q1=",
			fields: []string{
				"AppsSubmitted", "AppsRunning", "AppsPending", "AppsCompleted",
				"AppsKilled", "AppsFailed",
				"AllocatedMB", "AllocatedVCores", "AllocatedContainers",
				"AvailableMB", "AvailableVCores",
				"PendingMB", "PendingVCores", "PendingContainers",
				"ReservedMB", "ReservedVCores", "ReservedContainers",
				"ActiveUsers", "ActiveApplications",
			},
		},
	},
	YARNNodeManager: {
		{
			match: "name=NodeManagerMetrics",
			fields: []string{
				"ContainersLaunched", "ContainersCompleted", "ContainersFailed",
				"ContainersKilled", "ContainersIniting", "ContainersRunning",
				"AllocatedGB", "AvailableGB", "AllocatedContainers",
				"AllocatedVCores", "AvailableVCores",
				"ContainerLaunchDurationNumOps", "ContainerLaunchDurationAvgTime",
			},
		},
	},
	// The job history server only exposes the common daemon beans.
	MapredJobHistory: nil,
	HiveServer2: {
		{
			match: "java.lang:type=Threading",
			fields: []string{
				"ThreadCount", "PeakThreadCount", "DaemonThreadCount",
				"TotalStartedThreadCount",
			},
		},
	},
	HiveLLAPDaemon: {
		{
			match: "java.lang:type=Threading",
			fields: []string{
				"ThreadCount", "PeakThreadCount", "DaemonThreadCount",
				"TotalStartedThreadCount",
			},
		},
	},
	HBaseMaster: {
		{
			match: "name=Master,sub=Server",
			fields: []string{
				"numRegionServers", "numDeadRegionServers",
				"clusterRequests", "averageLoad",
				"masterActiveTime", "masterStartTime",
			},
		},
		{
			match:  "name=Master,sub=AssignmentManager",
			fields: []string{"ritCount", "ritCountOverThreshold", "ritOldestAge"},
		},
	},
	HBaseRegionServer: {
		{
			match: "name=RegionServer,sub=Server",
			fields: []string{
				"regionCount", "storeCount", "storeFileCount", "storeFileSize",
				"memStoreSize", "totalRequestCount",
				"readRequestCount", "writeRequestCount",
				"blockCacheHitCount", "blockCacheMissCount", "blockCacheCountHitPercent",
				"compactionQueueLength", "flushQueueLength",
				"slowGetCount", "slowPutCount", "slowDeleteCount",
			},
		},
	},
}

// rulesFor returns the common rules plus the type-specific ones.
func rulesFor(typ Type) []beanRule {
	specific := typeRules[typ]
	rules := make([]beanRule, 0, len(commonRules)+len(specific))
	rules = append(rules, commonRules...)
	rules = append(rules, specific...)
	return rules
}
