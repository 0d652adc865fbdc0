package domain

// Health is the qualitative per-file classification.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
	HealthCritical Health = "critical"
	HealthUnknown  Health = "unknown"
)

// FileHealthStatus is derived on every read and never persisted.
type FileHealthStatus struct {
	OnlineShards    int    `json:"online_shards"`
	NeededShards    int    `json:"needed_shards"`
	CanSurviveMore  int    `json:"can_survive_more"`
	Reconstructable bool   `json:"reconstructable"`
	Health          Health `json:"health"`

	// SchemeIncomplete marks a status downgraded to Unknown because the
	// file's encoding configuration was absent or invalid. Callers should
	// surface this instead of silently guessing quorum parameters.
	SchemeIncomplete bool `json:"scheme_incomplete,omitempty"`
}

// Evaluate derives the redundancy health of one file against a registry
// snapshot. Pure and total: it never fails, shards referencing unknown nodes
// count as offline, and identical inputs always yield identical output.
func Evaluate(file FileRecord, snap Snapshot) FileHealthStatus {
	online := 0
	for _, shard := range file.Shards {
		if snap.NodeOnline(shard.NodeID) {
			online++
		}
	}

	needed, ok := file.Scheme.NeededShards()
	if !ok {
		// Missing or invalid scheme configuration: no quorum can be
		// trusted, so survivability must not be reported.
		return FileHealthStatus{
			OnlineShards:     online,
			Health:           HealthUnknown,
			SchemeIncomplete: true,
		}
	}

	status := FileHealthStatus{
		OnlineShards:    online,
		NeededShards:    needed,
		Reconstructable: online >= needed,
	}
	if online > needed {
		status.CanSurviveMore = online - needed
	}

	// No shards recorded: nothing to classify against.
	if len(file.Shards) == 0 {
		status.Health = HealthUnknown
		return status
	}

	total := len(file.Shards)
	switch file.Scheme.Algorithm {
	case AlgorithmReplication:
		switch {
		case online == total:
			status.Health = HealthHealthy
		case status.Reconstructable:
			status.Health = HealthDegraded
		default:
			status.Health = HealthCritical
		}
	case AlgorithmReedSolomon, AlgorithmXorParity:
		switch {
		case online == total:
			status.Health = HealthHealthy
		case status.Reconstructable:
			status.Health = HealthDegraded
		default:
			status.Health = HealthCritical
		}
	default:
		// NeededShards already rejects unknown algorithms; keep the
		// branch so new variants cannot fall through as healthy.
		status.Health = HealthUnknown
		status.SchemeIncomplete = true
	}
	return status
}
