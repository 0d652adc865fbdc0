package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidScheme = errors.New("invalid encoding scheme")

// Algorithm identifies the redundancy algorithm of an encoding scheme.
type Algorithm string

const (
	AlgorithmReplication Algorithm = "replication"
	AlgorithmReedSolomon Algorithm = "reed-solomon"
	AlgorithmXorParity   Algorithm = "xor-parity"
)

// EncodingScheme is the tagged redundancy descriptor declared at file-creation
// time. Exactly one parameter set is meaningful per algorithm:
//   - Replication: Factor copies, any single copy suffices.
//   - ReedSolomon: DataShards (k) + ParityShards (m), any k of k+m suffice.
//   - XorParity:   DataShards + ParityShards with the same quorum semantics.
//
// The scheme is immutable once stored. A scheme whose parameters are absent or
// out of range is reported via the ok=false return of the derivation methods;
// consumers must treat that as Unknown rather than guessing parameters.
type EncodingScheme struct {
	Algorithm    Algorithm `json:"algorithm"`
	Factor       int       `json:"replication_factor,omitempty"`
	DataShards   int       `json:"data_shards,omitempty"`
	ParityShards int       `json:"parity_shards,omitempty"`
}

// NeededShards returns the quorum: the minimum number of online shards that
// still reconstructs the file. ok is false when the scheme configuration is
// missing or invalid for its algorithm tag.
func (s EncodingScheme) NeededShards() (int, bool) {
	switch s.Algorithm {
	case AlgorithmReplication:
		if s.Factor < 1 {
			return 0, false
		}
		return 1, true
	case AlgorithmReedSolomon, AlgorithmXorParity:
		if s.DataShards < 1 || s.ParityShards < 0 {
			return 0, false
		}
		return s.DataShards, true
	default:
		return 0, false
	}
}

// TotalShards returns the declared shard count of the scheme, or 0 when the
// configuration is invalid.
func (s EncodingScheme) TotalShards() int {
	switch s.Algorithm {
	case AlgorithmReplication:
		if s.Factor < 1 {
			return 0
		}
		return s.Factor
	case AlgorithmReedSolomon, AlgorithmXorParity:
		if s.DataShards < 1 || s.ParityShards < 0 {
			return 0
		}
		return s.DataShards + s.ParityShards
	default:
		return 0
	}
}

// SurvivableFailures returns the declared failure tolerance: node losses the
// scheme absorbs while staying reconstructable with all shards initially live.
func (s EncodingScheme) SurvivableFailures() (int, bool) {
	needed, ok := s.NeededShards()
	if !ok {
		return 0, false
	}
	return s.TotalShards() - needed, true
}

// StorageOverhead returns the storage-cost multiplier relative to the
// original payload size (e.g. 3.0 for triple replication, ~1.67 for RS(3,2)).
func (s EncodingScheme) StorageOverhead() (float64, bool) {
	switch s.Algorithm {
	case AlgorithmReplication:
		if s.Factor < 1 {
			return 0, false
		}
		return float64(s.Factor), true
	case AlgorithmReedSolomon, AlgorithmXorParity:
		if s.DataShards < 1 || s.ParityShards < 0 {
			return 0, false
		}
		return float64(s.DataShards+s.ParityShards) / float64(s.DataShards), true
	default:
		return 0, false
	}
}

// Validate rejects schemes that cannot be stored.
func (s EncodingScheme) Validate() error {
	switch s.Algorithm {
	case AlgorithmReplication:
		if s.Factor < 1 {
			return fmt.Errorf("%w: replication factor %d", ErrInvalidScheme, s.Factor)
		}
	case AlgorithmReedSolomon, AlgorithmXorParity:
		if s.DataShards < 1 {
			return fmt.Errorf("%w: data shards %d", ErrInvalidScheme, s.DataShards)
		}
		if s.ParityShards < 0 {
			return fmt.Errorf("%w: parity shards %d", ErrInvalidScheme, s.ParityShards)
		}
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidScheme, s.Algorithm)
	}
	return nil
}
