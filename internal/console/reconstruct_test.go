package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cosmeon/cosmeon/internal/api/port"
)

type fakeReconstructAPI struct {
	info        *port.ReconstructInfo
	infoErr     error
	payload     []byte
	downloadErr error
	downloads   int
}

func (f *fakeReconstructAPI) ReconstructInfo(ctx context.Context, fileID string) (*port.ReconstructInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeReconstructAPI) Reconstruct(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	f.downloads++
	if f.downloadErr != nil {
		return 0, f.downloadErr
	}
	n, _ := w.Write(f.payload)
	return int64(n), nil
}

func feasible() *port.ReconstructInfo {
	return &port.ReconstructInfo{
		FileID:          "f1",
		TotalShards:     3,
		AvailableShards: 2,
		NeededShards:    2,
		CanReconstruct:  true,
	}
}

func TestWorkflowSavesWhenFeasible(t *testing.T) {
	api := &fakeReconstructAPI{info: feasible(), payload: []byte("rebuilt")}
	wf := NewReconstructWorkflow(api, "f1", nil)

	var buf bytes.Buffer
	outcome, err := wf.Run(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.State != StateSaved || outcome.Bytes != int64(len("rebuilt")) {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.AttemptID == "" {
		t.Fatalf("attempt id missing")
	}
	if buf.String() != "rebuilt" {
		t.Fatalf("payload not written")
	}
	if wf.State() != StateSaved {
		t.Fatalf("workflow state = %s", wf.State())
	}
}

func TestWorkflowBlockedNeverDownloads(t *testing.T) {
	api := &fakeReconstructAPI{info: &port.ReconstructInfo{
		FileID:          "f1",
		TotalShards:     3,
		AvailableShards: 1,
		NeededShards:    2,
		CanReconstruct:  false,
		Shortfall:       1,
	}}
	wf := NewReconstructWorkflow(api, "f1", nil)

	outcome, err := wf.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("blocked is not an error: %v", err)
	}
	if outcome.State != StateBlocked || outcome.Shortfall != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if api.downloads != 0 {
		t.Fatalf("download step must never run when blocked")
	}
}

func TestWorkflowConfirmDeclinedReturnsToIdle(t *testing.T) {
	api := &fakeReconstructAPI{info: feasible()}
	wf := NewReconstructWorkflow(api, "f1", func(info *port.ReconstructInfo) bool { return false })

	outcome, err := wf.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("declining is not an error: %v", err)
	}
	if !outcome.Cancelled || outcome.State != StateIdle {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if api.downloads != 0 {
		t.Fatalf("declined attempt must not download")
	}
	// The workflow is reusable after a declined attempt.
	wf.confirm = nil
	if _, err := wf.Run(context.Background(), io.Discard); err != nil {
		t.Fatalf("rerun after decline failed: %v", err)
	}
}

func TestWorkflowInfoFailureEndsFailed(t *testing.T) {
	api := &fakeReconstructAPI{infoErr: errors.New("catalog down")}
	wf := NewReconstructWorkflow(api, "f1", nil)

	outcome, err := wf.Run(context.Background(), io.Discard)
	if err == nil {
		t.Fatalf("expected error")
	}
	if outcome.State != StateFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestWorkflowDownloadFailureEndsFailed(t *testing.T) {
	api := &fakeReconstructAPI{info: feasible(), downloadErr: errors.New("timeout")}
	wf := NewReconstructWorkflow(api, "f1", nil)

	outcome, err := wf.Run(context.Background(), io.Discard)
	if err == nil {
		t.Fatalf("expected error")
	}
	if outcome.State != StateFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	// Failure clears the in-flight claim so a retry can start.
	api.downloadErr = nil
	api.payload = []byte("ok")
	if _, err := wf.Run(context.Background(), io.Discard); err != nil {
		t.Fatalf("retry after failure blocked: %v", err)
	}
}

func TestWorkflowDistinctAttemptIDs(t *testing.T) {
	api := &fakeReconstructAPI{info: feasible(), payload: []byte("x")}
	wf := NewReconstructWorkflow(api, "f1", nil)

	first, err := wf.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := wf.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.AttemptID == second.AttemptID {
		t.Fatalf("attempt ids must be unique per attempt")
	}
}
