package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cosmeon/cosmeon/internal/domain"
)

func newClientAgainst(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestClientDecodesNodesStatus(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nodes/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_nodes":  2,
			"online_nodes": 1,
			"nodes": []map[string]any{
				{"node_id": "node-1", "state": "online"},
				{"node_id": "node-2", "state": "simulated_failure"},
			},
		})
	})

	status, err := client.NodesStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.TotalNodes != 2 || status.OnlineNodes != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Nodes[1].State != domain.NodeSimulatedFailure {
		t.Fatalf("state not decoded: %+v", status.Nodes[1])
	}
}

func TestClientMapsTransportFailureToConnectionError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.ListFiles(context.Background())
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
}

func TestClientMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404 is a client error",
			status: http.StatusNotFound,
			body:   `{"error":"file not found"}`,
			check: func(t *testing.T, err error) {
				var clientErr *ClientError
				if !errors.As(err, &clientErr) {
					t.Fatalf("expected ClientError, got %T", err)
				}
				if clientErr.Detail != "file not found" {
					t.Fatalf("detail not verbatim: %q", clientErr.Detail)
				}
			},
		},
		{
			name:   "409 is a client error",
			status: http.StatusConflict,
			body:   `{"error":"operation already in flight"}`,
			check: func(t *testing.T, err error) {
				var clientErr *ClientError
				if !errors.As(err, &clientErr) || clientErr.Status != http.StatusConflict {
					t.Fatalf("expected 409 ClientError, got %v", err)
				}
			},
		},
		{
			name:   "502 is a server error with verbatim detail",
			status: http.StatusBadGateway,
			body:   `{"error":"catalog returned 500: database down"}`,
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				if !errors.As(err, &serverErr) {
					t.Fatalf("expected ServerError, got %T", err)
				}
				if serverErr.Detail != "catalog returned 500: database down" {
					t.Fatalf("detail not verbatim: %q", serverErr.Detail)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.FileStatus(context.Background(), "f1")
			if err == nil {
				t.Fatalf("expected error")
			}
			tc.check(t, err)
		})
	}
}

func TestClientReconstructStreamsBody(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/f1/reconstruct" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("payload-bytes"))
	})

	var buf bytes.Buffer
	n, err := client.Reconstruct(context.Background(), "f1", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len("payload-bytes")) || buf.String() != "payload-bytes" {
		t.Fatalf("unexpected download: n=%d body=%q", n, buf.String())
	}
}

func TestClientClearFailures(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/nodes/failures/clear" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"restored": 3})
	})

	restored, err := client.ClearFailures(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored != 3 {
		t.Fatalf("expected 3 restored, got %d", restored)
	}
}
