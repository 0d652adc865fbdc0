package domain

import "time"

// NodeState is the binary live/offline state of a storage node. A node in
// SimulatedFailure behaves exactly like a dead node for every derivation.
type NodeState string

const (
	NodeOnline           NodeState = "online"
	NodeSimulatedFailure NodeState = "simulated_failure"
)

// StorageNode is one storage endpoint as reported by the node registry.
// Mutated only by registry probes and explicit simulation toggles.
type StorageNode struct {
	ID            string    `json:"node_id"`
	State         NodeState `json:"state"`
	CapacityBytes int64     `json:"capacity_bytes"`
	UsedBytes     int64     `json:"used_bytes"`
	FileCount     int       `json:"file_count"`
	LastChecked   time.Time `json:"last_checked"`
}

// Online reports whether the node currently serves its shards.
func (n StorageNode) Online() bool {
	return n.State == NodeOnline
}

// Snapshot is one point-in-time view of the node registry. A poll always
// replaces the previous snapshot wholesale; snapshots are never merged.
type Snapshot struct {
	Nodes   map[string]StorageNode
	TakenAt time.Time
}

// NodeOnline reports whether the referenced node exists and is online.
// Unknown node ids count as offline.
func (s Snapshot) NodeOnline(id string) bool {
	n, ok := s.Nodes[id]
	return ok && n.Online()
}

// Cluster health labels and their fixed step-function scores.
const (
	ClusterExcellent = "excellent"
	ClusterWarning   = "warning"
	ClusterCritical  = "critical"

	scoreExcellent = 100
	scoreWarning   = 75
	scoreCritical  = 35
)

// ClusterHealthSummary is the coarse fleet-wide signal. It is independent of
// per-file health and must not be confused with it.
type ClusterHealthSummary struct {
	TotalNodes   int    `json:"total_nodes"`
	OnlineNodes  int    `json:"online_nodes"`
	OfflineNodes int    `json:"offline_nodes"`
	HealthScore  int    `json:"health_score"`
	HealthLabel  string `json:"health_label"`
}

// Summarize rolls a registry snapshot into the fleet-wide classification:
// 0 offline -> excellent/100, 1 offline -> warning/75, 2+ -> critical/35.
func Summarize(snap Snapshot) ClusterHealthSummary {
	total := len(snap.Nodes)
	online := 0
	for _, n := range snap.Nodes {
		if n.Online() {
			online++
		}
	}
	offline := total - online

	summary := ClusterHealthSummary{
		TotalNodes:   total,
		OnlineNodes:  online,
		OfflineNodes: offline,
	}

	switch {
	case offline == 0:
		summary.HealthScore = scoreExcellent
		summary.HealthLabel = ClusterExcellent
	case offline == 1:
		summary.HealthScore = scoreWarning
		summary.HealthLabel = ClusterWarning
	default:
		summary.HealthScore = scoreCritical
		summary.HealthLabel = ClusterCritical
	}
	return summary
}
