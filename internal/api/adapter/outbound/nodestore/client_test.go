package nodestore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cosmeon/cosmeon/internal/domain"
)

func TestProbeNodeDegradesInsteadOfFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/buckets/node-1/"):
			_, _ = w.Write([]byte(`{"objects":[]}`))
		default:
			http.Error(w, "bucket gone", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	probe, err := client.ProbeNode(context.Background(), "node-1")
	if err != nil || !probe.Reachable {
		t.Fatalf("node-1 should be reachable: probe=%+v err=%v", probe, err)
	}

	probe, err = client.ProbeNode(context.Background(), "node-2")
	if err != nil {
		t.Fatalf("probe of a broken bucket must not error: %v", err)
	}
	if probe.Reachable {
		t.Fatalf("node-2 should be offline")
	}

	// No listener at all: still a probe result, not an error.
	dead := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	probe, err = dead.ProbeNode(context.Background(), "node-3")
	if err != nil || probe.Reachable {
		t.Fatalf("unreachable store should degrade: probe=%+v err=%v", probe, err)
	}
}

func TestUploadThenDownloadShard(t *testing.T) {
	var mu sync.Mutex
	blobs := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			blobs[r.URL.Path] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			if data, ok := blobs[r.URL.Path]; ok {
				_, _ = w.Write(data)
				return
			}
			http.NotFound(w, r)
		case http.MethodHead:
			if _, ok := blobs[r.URL.Path]; !ok {
				http.NotFound(w, r)
			}
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	ref, err := client.UploadShard(context.Background(), "node-1", "f1", 2, []byte("shard-bytes"))
	if err != nil {
		t.Fatalf("UploadShard: %v", err)
	}
	if ref.ObjectKey != "shards/f1_shard_002.cosm" {
		t.Fatalf("object key = %q", ref.ObjectKey)
	}
	if ref.NodeID != "node-1" || ref.Index != 2 || ref.SizeBytes != int64(len("shard-bytes")) {
		t.Fatalf("bad ref: %+v", ref)
	}

	if err := client.HeadShard(context.Background(), *ref); err != nil {
		t.Fatalf("HeadShard: %v", err)
	}

	data, err := client.DownloadShard(context.Background(), *ref)
	if err != nil {
		t.Fatalf("DownloadShard: %v", err)
	}
	if string(data) != "shard-bytes" {
		t.Fatalf("payload = %q", data)
	}
}

func TestSweepFileShards(t *testing.T) {
	var mu sync.Mutex
	deleted := []string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if got := r.URL.Query().Get("prefix"); got != "shards/f1_shard_" {
				t.Errorf("prefix = %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"objects": []map[string]string{
					{"key": "shards/f1_shard_000.cosm"},
					{"key": "shards/f1_shard_003.cosm"},
				},
			})
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	n, err := client.SweepFileShards(context.Background(), "node-1", "f1")
	if err != nil {
		t.Fatalf("SweepFileShards: %v", err)
	}
	if n != 2 || len(deleted) != 2 {
		t.Fatalf("deleted %d (%v)", n, deleted)
	}
}

func TestDeleteShardTreatsMissingAsDeleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.DeleteShard(context.Background(), domain.ShardRef{NodeID: "node-1", ObjectKey: "shards/x.cosm"})
	if err != nil {
		t.Fatalf("404 delete should be a no-op, got %v", err)
	}
}
