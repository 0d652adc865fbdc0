package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

func TestListFilesNormalizesLegacyRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		// Second row is legacy: algorithm_used + config as JSON-in-a-string,
		// shard entries keyed by bucket. Third row has no id and is dropped.
		_, _ = w.Write([]byte(`[
			{"id":"f1","filename":"a.bin","original_size":10,"algorithm":"replication",
			 "config":{"replication_factor":3},
			 "shards":[{"shard_index":0,"node_id":"node-1","object_key":"shards/f1_shard_000.cosm","size":10}]},
			{"id":"f2","algorithm_used":"reed-solomon",
			 "algorithm_config":"{\"k\":3,\"m\":2}",
			 "shards":"[{\"shard_index\":0,\"bucket\":\"node-2\",\"filename\":\"f2_shard_000.cosm\",\"size\":4}]"},
			{"filename":"orphan.bin"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	records, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	f1 := records[0]
	if f1.Scheme.Algorithm != domain.AlgorithmReplication || f1.Scheme.Factor != 3 {
		t.Fatalf("f1 scheme not normalized: %+v", f1.Scheme)
	}
	if f1.Shards[0].NodeID != "node-1" {
		t.Fatalf("f1 shard node: %+v", f1.Shards[0])
	}

	f2 := records[1]
	if f2.Scheme.Algorithm != domain.AlgorithmReedSolomon || f2.Scheme.DataShards != 3 || f2.Scheme.ParityShards != 2 {
		t.Fatalf("legacy scheme not normalized: %+v", f2.Scheme)
	}
	if f2.Shards[0].NodeID != "node-2" || f2.Shards[0].ObjectKey != "f2_shard_000.cosm" {
		t.Fatalf("legacy shard not normalized: %+v", f2.Shards[0])
	}
	if f2.Filename != "f2" {
		t.Fatalf("missing filename should fall back to id, got %q", f2.Filename)
	}
}

func TestGetFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.GetFile(context.Background(), "missing")
	if !errors.Is(err, port.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestServerErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog table migration in progress", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.ListFiles(context.Background())

	var upstream *port.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", upstream.Status)
	}
	if upstream.Detail != "catalog table migration in progress" {
		t.Fatalf("detail must be surfaced verbatim, got %q", upstream.Detail)
	}
}

func TestConnectionErrorIsNotUpstream(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.ListFiles(context.Background())
	if err == nil {
		t.Fatalf("expected connection error")
	}
	var upstream *port.UpstreamError
	if errors.As(err, &upstream) {
		t.Fatalf("no response reached the service; must not look like a server answer")
	}
}

func TestSchemeWithoutConfigStaysIncomplete(t *testing.T) {
	row := catalogRow{ID: "f3", Algorithm: "reed-solomon"}
	rec, err := row.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, ok := rec.Scheme.NeededShards(); ok {
		t.Fatalf("missing config must stay incomplete, got %+v", rec.Scheme)
	}
}
