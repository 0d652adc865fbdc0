package catalog

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cosmeon/cosmeon/internal/domain"
)

// catalogRow mirrors the loosely typed catalog schema. Legacy rows store the
// algorithm under `algorithm_used` and the parameters under
// `algorithm_config`, occasionally as JSON serialized into a string.
type catalogRow struct {
	ID              string          `json:"id"`
	Filename        string          `json:"filename"`
	OriginalSize    int64           `json:"original_size"`
	Algorithm       string          `json:"algorithm,omitempty"`
	AlgorithmUsed   string          `json:"algorithm_used,omitempty"`
	Config          json.RawMessage `json:"config,omitempty"`
	AlgorithmConfig json.RawMessage `json:"algorithm_config,omitempty"`
	Shards          json.RawMessage `json:"shards,omitempty"`
	CostEstimate    float64         `json:"cost_estimate"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// schemeParams is the parameter bag attached to a row's algorithm.
type schemeParams struct {
	ReplicationFactor int `json:"replication_factor"`
	K                 int `json:"k"`
	M                 int `json:"m"`
	Data              int `json:"data"`
	Parity            int `json:"parity"`
}

// shardRow is one shard entry as stored by the catalog.
type shardRow struct {
	ShardIndex int    `json:"shard_index"`
	Bucket     string `json:"bucket,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	ObjectKey  string `json:"object_key,omitempty"`
	URL        string `json:"url,omitempty"`
	Size       int64  `json:"size"`
}

var errRowMissingID = errors.New("row has no id")

// normalize converts a raw row into a domain record. A scheme whose
// parameters cannot be recovered is kept with its raw algorithm tag and empty
// parameters: the health evaluator reports such files as Unknown instead of
// this layer inventing a quorum.
func (r catalogRow) normalize() (domain.FileRecord, error) {
	if r.ID == "" {
		return domain.FileRecord{}, errRowMissingID
	}

	algorithm := r.Algorithm
	if algorithm == "" {
		algorithm = r.AlgorithmUsed
	}

	var params schemeParams
	decodeLoose(firstRaw(r.Config, r.AlgorithmConfig), &params)

	scheme := domain.EncodingScheme{Algorithm: domain.Algorithm(algorithm)}
	switch scheme.Algorithm {
	case domain.AlgorithmReplication:
		scheme.Factor = params.ReplicationFactor
	case domain.AlgorithmReedSolomon:
		scheme.DataShards = params.K
		scheme.ParityShards = params.M
	case domain.AlgorithmXorParity:
		scheme.DataShards = params.Data
		scheme.ParityShards = params.Parity
	}

	var shardRows []shardRow
	decodeLoose(r.Shards, &shardRows)

	shards := make([]domain.ShardRef, 0, len(shardRows))
	for _, s := range shardRows {
		nodeID := s.NodeID
		if nodeID == "" {
			nodeID = s.Bucket
		}
		key := s.ObjectKey
		if key == "" {
			key = s.Filename
		}
		shards = append(shards, domain.ShardRef{
			Index:     s.ShardIndex,
			NodeID:    nodeID,
			SizeBytes: s.Size,
			ObjectKey: key,
			URL:       s.URL,
		})
	}

	filename := r.Filename
	if filename == "" {
		filename = r.ID
	}

	return domain.FileRecord{
		ID:                r.ID,
		Filename:          filename,
		OriginalSizeBytes: r.OriginalSize,
		Scheme:            scheme,
		Shards:            shards,
		CostEstimate:      r.CostEstimate,
		UploadedAt:        r.CreatedAt,
	}, nil
}

// rowFromRecord renders a domain record in the catalog's canonical shape.
func rowFromRecord(rec *domain.FileRecord) catalogRow {
	params := schemeParams{}
	switch rec.Scheme.Algorithm {
	case domain.AlgorithmReplication:
		params.ReplicationFactor = rec.Scheme.Factor
	case domain.AlgorithmReedSolomon:
		params.K = rec.Scheme.DataShards
		params.M = rec.Scheme.ParityShards
	case domain.AlgorithmXorParity:
		params.Data = rec.Scheme.DataShards
		params.Parity = rec.Scheme.ParityShards
	}
	config, _ := json.Marshal(params)

	rows := make([]shardRow, 0, len(rec.Shards))
	for _, s := range rec.Shards {
		rows = append(rows, shardRow{
			ShardIndex: s.Index,
			NodeID:     s.NodeID,
			ObjectKey:  s.ObjectKey,
			URL:        s.URL,
			Size:       s.SizeBytes,
		})
	}
	shards, _ := json.Marshal(rows)

	return catalogRow{
		ID:           rec.ID,
		Filename:     rec.Filename,
		OriginalSize: rec.OriginalSizeBytes,
		Algorithm:    string(rec.Scheme.Algorithm),
		Config:       config,
		Shards:       shards,
		CostEstimate: rec.CostEstimate,
		CreatedAt:    rec.UploadedAt,
	}
}

// firstRaw returns the first non-empty raw message.
func firstRaw(raws ...json.RawMessage) json.RawMessage {
	for _, r := range raws {
		if len(r) > 0 && string(r) != "null" {
			return r
		}
	}
	return nil
}

// decodeLoose unmarshals raw JSON into out, unwrapping one level of
// JSON-in-a-string first when needed. Undecodable input leaves out zeroed.
func decodeLoose(raw json.RawMessage, out any) {
	if len(raw) == 0 {
		return
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return
		}
		raw = json.RawMessage(inner)
	}
	_ = json.Unmarshal(raw, out)
}
