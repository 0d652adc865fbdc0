package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/cosmeon/cosmeon/internal/api/port"
)

// WorkflowState is the phase of one reconstruction attempt.
type WorkflowState string

const (
	StateIdle         WorkflowState = "idle"
	StateFetchingInfo WorkflowState = "fetching_info"
	StateInfoReady    WorkflowState = "info_ready"
	StateDownloading  WorkflowState = "downloading"
	StateSaved        WorkflowState = "saved"
	StateBlocked      WorkflowState = "blocked"
	StateFailed       WorkflowState = "failed"
)

// ReconstructAPI is the slice of the client the workflow needs.
type ReconstructAPI interface {
	ReconstructInfo(ctx context.Context, fileID string) (*port.ReconstructInfo, error)
	Reconstruct(ctx context.Context, fileID string, w io.Writer) (int64, error)
}

// ReconstructOutcome is the terminal result of one attempt.
type ReconstructOutcome struct {
	AttemptID string
	FileID    string
	State     WorkflowState
	Bytes     int64

	// Shortfall is set when State is StateBlocked: how many more shards
	// would be needed before the download could run.
	Shortfall int

	// Cancelled marks an attempt the operator declined at the confirm hook.
	Cancelled bool
}

// ConfirmFunc decides whether to proceed once feasibility is known. The
// workflow itself never embeds confirmation UI.
type ConfirmFunc func(info *port.ReconstructInfo) bool

// ReconstructWorkflow drives one file's reconstruction attempt through
// fetching feasibility, an optional confirmation and the download. The
// download step is never reached when feasibility says no.
type ReconstructWorkflow struct {
	api     ReconstructAPI
	fileID  string
	confirm ConfirmFunc

	mu        sync.Mutex
	state     WorkflowState
	attemptID string
}

// NewReconstructWorkflow creates an idle workflow for one file. confirm may
// be nil to proceed unconditionally.
func NewReconstructWorkflow(api ReconstructAPI, fileID string, confirm ConfirmFunc) *ReconstructWorkflow {
	return &ReconstructWorkflow{
		api:     api,
		fileID:  fileID,
		confirm: confirm,
		state:   StateIdle,
	}
}

// State returns the current phase.
func (w *ReconstructWorkflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *ReconstructWorkflow) transition(to WorkflowState) {
	w.mu.Lock()
	w.state = to
	w.mu.Unlock()
}

// begin claims the workflow for a new attempt; only one may run at a time.
func (w *ReconstructWorkflow) begin() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateFetchingInfo, StateInfoReady, StateDownloading:
		return "", ErrCommandInFlight
	}
	w.state = StateFetchingInfo
	w.attemptID = uuid.NewString()
	return w.attemptID, nil
}

// Run executes one attempt, streaming the payload into dst on success. Every
// terminal state is reported through the outcome; the error is non-nil only
// for failures, not for blocked or cancelled attempts.
func (w *ReconstructWorkflow) Run(ctx context.Context, dst io.Writer) (*ReconstructOutcome, error) {
	attemptID, err := w.begin()
	if err != nil {
		return nil, err
	}
	outcome := &ReconstructOutcome{AttemptID: attemptID, FileID: w.fileID}

	info, err := w.api.ReconstructInfo(ctx, w.fileID)
	if err != nil {
		w.transition(StateFailed)
		outcome.State = StateFailed
		return outcome, fmt.Errorf("fetch reconstruct info: %w", err)
	}

	if !info.CanReconstruct {
		w.transition(StateBlocked)
		outcome.State = StateBlocked
		outcome.Shortfall = info.Shortfall
		return outcome, nil
	}

	w.transition(StateInfoReady)
	if w.confirm != nil && !w.confirm(info) {
		w.transition(StateIdle)
		outcome.State = StateIdle
		outcome.Cancelled = true
		return outcome, nil
	}

	w.transition(StateDownloading)
	n, err := w.api.Reconstruct(ctx, w.fileID, dst)
	if err != nil {
		w.transition(StateFailed)
		outcome.State = StateFailed
		outcome.Bytes = n
		return outcome, fmt.Errorf("download reconstructed file: %w", err)
	}

	w.transition(StateSaved)
	outcome.State = StateSaved
	outcome.Bytes = n
	return outcome, nil
}
