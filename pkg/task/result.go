package task

import (
	"fmt"

	"github.com/arthur-debert/imgrename/pkg/errors"
)

// Status is the outcome of one row
type Status string

const (
	// StatusPending rows were never reached (batch aborted or cancelled)
	StatusPending Status = "pending"
	// StatusRejected rows failed validation and were not attempted
	StatusRejected Status = "rejected"
	// StatusFailed rows were attempted and failed
	StatusFailed Status = "failed"
	// StatusRenamed rows were copied to their destination
	StatusRenamed Status = "renamed"
	// StatusPlanned rows passed a dry run
	StatusPlanned Status = "planned"
)

// RowResult is the outcome of one row
type RowResult struct {
	Index       int
	Source      string
	Destination string
	Status      Status
	Err         error
	// CleanupErrs holds END_ROW_FAIL listener errors
	CleanupErrs []error
	Bytes       int64
}

// OK reports whether the row is consumed (renamed, or planned in a dry run)
func (r RowResult) OK() bool {
	return r.Status == StatusRenamed || r.Status == StatusPlanned
}

// Result is the outcome of a batch
type Result struct {
	SessionID string
	DryRun    bool
	Dir       string
	Rows      []RowResult
	Summary   []string
	Succeeded []int
	Failed    []int
	Cancelled bool
	// Aborted is the batch-level failure, if any
	Aborted error
	// EndErrs holds END listener errors
	EndErrs []error
	Bytes   int64
}

func newResult(sessionID string, n int, dryRun bool) *Result {
	r := &Result{SessionID: sessionID, DryRun: dryRun, Rows: make([]RowResult, n)}
	for i := range r.Rows {
		r.Rows[i] = RowResult{Index: i, Status: StatusPending}
	}
	return r
}

// Retry returns the indices of rows that were not consumed: failed,
// rejected and never reached.
func (r *Result) Retry() []int {
	var out []int
	for _, rr := range r.Rows {
		if !rr.OK() {
			out = append(out, rr.Index)
		}
	}
	return out
}

// Err summarises the batch as one error, nil when every row succeeded
func (r *Result) Err() error {
	if r.Aborted != nil {
		return r.Aborted
	}
	if r.Cancelled {
		return errors.New(errors.ErrCancelled, "rename cancelled")
	}
	if len(r.Failed) > 0 {
		return errors.Newf(errors.ErrRowRejected, "%d of %d files failed to rename", len(r.Failed), len(r.Rows)).
			WithDetail("failed", len(r.Failed))
	}
	return nil
}

func (r *Result) renamed(i int, dest string, bytes int64) {
	rr := &r.Rows[i]
	rr.Destination = dest
	rr.Status = StatusRenamed
	rr.Bytes = bytes
	r.Bytes += bytes
	r.Succeeded = append(r.Succeeded, i)
	r.Summary = append(r.Summary, fmt.Sprintf("Renamed %s to %s", rr.Source, dest))
}

func (r *Result) planned(i int, dest string) {
	rr := &r.Rows[i]
	rr.Destination = dest
	rr.Status = StatusPlanned
	r.Succeeded = append(r.Succeeded, i)
	r.Summary = append(r.Summary, fmt.Sprintf("Would rename %s to %s", rr.Source, dest))
}

func (r *Result) failed(i int, status Status, err error) {
	rr := &r.Rows[i]
	rr.Status = status
	rr.Err = err
	r.Failed = append(r.Failed, i)
	r.Summary = append(r.Summary, fmt.Sprintf("ERROR: failed to rename %s", rr.Source))
}
