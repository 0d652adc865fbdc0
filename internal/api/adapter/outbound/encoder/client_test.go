package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

func TestEncodeValidatesShardCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"shards": [][]byte{[]byte("a"), []byte("b")},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	scheme := domain.EncodingScheme{Algorithm: domain.AlgorithmReedSolomon, DataShards: 3, ParityShards: 2}
	_, err := client.Encode(context.Background(), scheme, []byte("payload"))
	if err == nil {
		t.Fatalf("expected shard-count mismatch error")
	}
}

func TestDecodeMarksMissingShards(t *testing.T) {
	var got decodeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"payload": []byte("rebuilt")})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	scheme := domain.EncodingScheme{Algorithm: domain.AlgorithmReedSolomon, DataShards: 2, ParityShards: 1}
	payload, err := client.Decode(context.Background(), scheme, 7, []port.EncodedShard{
		{Index: 0, Data: []byte("s0")},
		{Index: 1},
		{Index: 2, Data: []byte("s2")},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(payload) != "rebuilt" {
		t.Fatalf("payload = %q", payload)
	}
	if len(got.Shards) != 3 || got.Shards[1].Data != nil {
		t.Fatalf("missing shard must travel as null data: %+v", got.Shards)
	}
	if got.OriginalSize != 7 {
		t.Fatalf("original size = %d", got.OriginalSize)
	}
}

func TestDecodeSurfacesUpstreamDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "galois field mismatch", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Decode(context.Background(), domain.EncodingScheme{Algorithm: domain.AlgorithmReplication, Factor: 2}, 1, nil)

	var upstream *port.UpstreamError
	if !errors.As(err, &upstream) || upstream.Detail != "galois field mismatch" {
		t.Fatalf("expected verbatim upstream detail, got %v", err)
	}
}
