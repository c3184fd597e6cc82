package session

import (
	"context"

	"github.com/arthur-debert/imgrename/pkg/progress"
	"github.com/arthur-debert/imgrename/pkg/task"
)

// progressBuffer holds every update of a batch: percentages only increase,
// so there are at most 101 of them.
const progressBuffer = 128

// Handle is a rename task running in the background
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	progress chan progress.Update
	dir      string
	result   *task.Result
}

func newHandle(cancel context.CancelFunc, dir string) *Handle {
	return &Handle{
		cancel:   cancel,
		done:     make(chan struct{}),
		progress: make(chan progress.Update, progressBuffer),
		dir:      dir,
	}
}

// report never blocks the worker
func (h *Handle) report(u progress.Update) {
	select {
	case h.progress <- u:
	default:
	}
}

// Dir returns the output directory of the task
func (h *Handle) Dir() string { return h.dir }

// Progress delivers progress updates; it is closed when the task ends
func (h *Handle) Progress() <-chan progress.Update { return h.progress }

// Done is closed when the task ends
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel asks the task to stop after the row in flight
func (h *Handle) Cancel() { h.cancel() }

// Wait blocks until the task ends and returns its result
func (h *Handle) Wait() *task.Result {
	<-h.done
	return h.result
}
