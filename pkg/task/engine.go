package task

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/output"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/progress"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures an Engine
type Options struct {
	FS    types.FS
	Chain *plugin.Chain

	// KeepSource leaves the source file in place after a successful copy
	KeepSource bool
	// Overwrite replaces existing destination files
	Overwrite bool
	// PreserveModTime copies the source modification time to the destination
	PreserveModTime bool
	// AbortOnInvalidRow aborts the whole batch when any row fails validation
	AbortOnInvalidRow bool
	// DryRun validates and derives destinations without copying or notifying listeners
	DryRun bool

	DirPerm   os.FileMode
	ChunkUnit int64
	Progress  func(progress.Update)
	Logger    zerolog.Logger
}

// Engine runs rename batches. It holds no per-batch state and may run
// batches for several sessions concurrently.
type Engine struct {
	opts   Options
	fs     types.FS
	chain  *plugin.Chain
	logger zerolog.Logger
}

// New creates an engine
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("task")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	chain := opts.Chain
	if chain == nil {
		chain = &plugin.Chain{}
	}

	return &Engine{opts: opts, fs: fs, chain: chain, logger: logger}
}

// batch is the state of one Run
type batch struct {
	ctx      context.Context
	session  *plugin.Session
	rows     []*row.Row
	dir      string
	result   *Result
	tracker  *progress.Tracker
	rejected map[int]error
	// claimed maps destinations written (or planned) in this batch to their row
	claimed map[string]int
	log     zerolog.Logger
}

// Run processes rows in order into dir and returns the outcome. It never
// returns nil.
func (e *Engine) Run(ctx context.Context, s *plugin.Session, rows []*row.Row, dir string) *Result {
	start := time.Now()
	log := s.Logger
	if log.GetLevel() == zerolog.Disabled {
		log = e.logger
	}
	log = log.With().Str("session", s.ID).Logger()

	b := &batch{
		ctx:      ctx,
		session:  s,
		rows:     rows,
		dir:      dir,
		result:   newResult(s.ID, len(rows), e.opts.DryRun),
		rejected: make(map[int]error),
		claimed:  make(map[string]int),
		log:      log,
	}
	b.result.Dir = dir
	var total int64
	for i, r := range rows {
		b.result.Rows[i].Source = r.Target().Path()
		total += r.Target().Size()
	}
	b.tracker = progress.NewTracker(total, e.opts.ChunkUnit, e.opts.Progress)

	log.Info().
		Int("rows", len(rows)).
		Str("dir", dir).
		Bool("dryRun", e.opts.DryRun).
		Msg("rename batch starting")

	if e.opts.DryRun {
		e.dryRun(b)
	} else {
		e.run(b)
	}

	log.Info().
		Int("succeeded", len(b.result.Succeeded)).
		Int("failed", len(b.result.Failed)).
		Bool("cancelled", b.result.Cancelled).
		Dur("duration", time.Since(start)).
		Msg("rename batch finished")
	return b.result
}

func (e *Engine) run(b *batch) {
	if err := e.startSession(b); err != nil {
		e.abort(b, err)
		e.endSession(b)
		return
	}
	defer e.endSession(b)

	if err := output.Prepare(e.fs, b.dir, e.opts.DirPerm); err != nil {
		b.log.Error().Err(err).Str("dir", b.dir).Msg("output directory unusable")
		e.abort(b, err)
		return
	}

	if err := e.validateAll(b); err != nil {
		e.abort(b, err)
		return
	}

	for i, r := range b.rows {
		if b.ctx.Err() != nil {
			b.result.Cancelled = true
			b.log.Warn().Int("row", i).Msg("rename cancelled")
			return
		}
		if err, ok := b.rejected[i]; ok {
			b.tracker.Add(r.Target().Size(), i, r.Target().Path())
			e.failRow(b, i, row.NewPluginDataRow(r, i), StatusRejected, err)
			continue
		}
		e.processRow(b, i, r)
	}
	b.tracker.Finish()
}

func (e *Engine) dryRun(b *batch) {
	if err := e.validateAll(b); err != nil {
		e.abort(b, err)
		return
	}
	for i, r := range b.rows {
		if err, ok := b.rejected[i]; ok {
			b.result.failed(i, StatusRejected, err)
			continue
		}
		dest, err := e.destination(b, r)
		if err != nil {
			b.result.failed(i, StatusFailed, err)
			continue
		}
		b.claimed[dest] = i
		b.result.planned(i, dest)
	}
}

func (e *Engine) startSession(b *batch) error {
	for _, l := range e.chain.Listeners {
		if _, err := l.ProcessEvent(b.ctx, b.session, plugin.EventStart, nil); err != nil {
			b.log.Error().Err(err).Str("listener", l.Name()).Msg("session start failed")
			return errors.Wrapf(err, errors.ErrSessionStart, "listener %s failed to start the session", l.Name()).
				WithDetail("plugin", l.Name())
		}
	}
	return nil
}

func (e *Engine) endSession(b *batch) {
	for _, l := range e.chain.Listeners {
		if _, err := l.ProcessEvent(context.WithoutCancel(b.ctx), b.session, plugin.EventEnd, nil); err != nil {
			b.log.Error().Err(err).Str("listener", l.Name()).Msg("session end notification failed")
			b.result.EndErrs = append(b.result.EndErrs, err)
		}
	}
}

// abort fails every row that has not completed. Rows that failed
// validation keep their own error.
func (e *Engine) abort(b *batch, err error) {
	b.result.Aborted = err
	for i := range b.rows {
		if b.result.Rows[i].Status != StatusPending {
			continue
		}
		if rerr, ok := b.rejected[i]; ok {
			b.result.failed(i, StatusRejected, rerr)
			continue
		}
		b.result.failed(i, StatusFailed, err)
	}
}

// validateAll verifies fields and runs validators for every row before any
// copy. Data errors reject the row; any other error is returned and aborts
// the batch.
func (e *Engine) validateAll(b *batch) error {
	for i, r := range b.rows {
		if problems := r.Verify(); len(problems) > 0 {
			b.rejected[i] = errors.Newf(errors.ErrFieldInvalid, "%s: %s", r.Target().Name(), strings.Join(problems, "; ")).
				WithDetail("file", r.Target().Path())
			continue
		}
		pdr := row.NewPluginDataRow(r, i)
		for _, v := range e.chain.Validators {
			err := v.Validate(b.ctx, b.session, pdr)
			if err == nil {
				continue
			}
			if errors.IsDataError(err) {
				b.log.Info().Err(err).Str("validator", v.Name()).Str("file", r.Target().Path()).Msg("row rejected")
				b.rejected[i] = err
				break
			}
			b.log.Error().Err(err).Str("validator", v.Name()).Object("row", r).Msg("validator failed")
			return errors.Wrapf(err, errors.GetErrorCode(err), "validator %s failed on %s", v.Name(), r.Target().Path()).
				WithDetail("plugin", v.Name()).
				WithDetail("file", r.Target().Path())
		}
	}
	if e.opts.AbortOnInvalidRow && len(b.rejected) > 0 {
		for i := range b.rows {
			if err, ok := b.rejected[i]; ok {
				return errors.Wrapf(err, errors.ErrRowRejected, "%d rows failed validation; batch aborted", len(b.rejected)).
					WithDetail("file", b.rows[i].Target().Path())
			}
		}
	}
	return nil
}

// destination derives the row's output path. A path already taken by an
// earlier row of the batch is refused even when overwriting is allowed.
func (e *Engine) destination(b *batch, r *row.Row) (string, error) {
	name := output.DestinationName(r.Fields())
	if err := output.ValidateName(name, r.Target().Path()); err != nil {
		return "", err
	}
	dest := filepath.Join(b.dir, name)
	if dest == r.Target().Path() {
		return "", errors.Newf(errors.ErrDestinationExists, "%s already has the name %s", r.Target().Path(), name).
			WithDetail("file", dest)
	}
	if other, ok := b.claimed[dest]; ok {
		return "", errors.Newf(errors.ErrDestinationExists, "cannot rename %s: %s is also the destination of %s",
			r.Target().Path(), dest, b.rows[other].Target().Path()).
			WithDetail("file", r.Target().Path()).
			WithDetail("destination", dest)
	}
	if !e.opts.Overwrite {
		if _, err := e.fs.Stat(dest); err == nil {
			return "", errors.Newf(errors.ErrDestinationExists, "cannot rename %s: %s already exists", r.Target().Path(), dest).
				WithDetail("file", r.Target().Path()).
				WithDetail("destination", dest)
		}
	}
	return dest, nil
}

func (e *Engine) processRow(b *batch, i int, r *row.Row) {
	pdr := row.NewPluginDataRow(r, i)
	size := r.Target().Size()

	for _, l := range e.chain.Listeners {
		out, err := l.ProcessEvent(b.ctx, b.session, plugin.EventStartRow, pdr)
		if err != nil {
			b.log.Error().Err(err).Str("listener", l.Name()).Object("row", pdr.Row()).Msg("row start failed")
			e.failRow(b, i, pdr, StatusFailed, errors.Wrapf(err, errors.GetErrorCode(err), "listener %s failed", l.Name()).
				WithDetail("plugin", l.Name()).
				WithDetail("file", r.Target().Path()))
			b.tracker.Add(size, i, r.Target().Path())
			return
		}
		if out != nil {
			pdr = out
		}
	}

	// Past START_ROW the row runs to completion so listeners can commit or
	// release what they reserved.
	rowCtx := context.WithoutCancel(b.ctx)

	dest, err := e.destination(b, pdr.Row())
	if err != nil {
		b.tracker.Add(size, i, r.Target().Path())
		e.failRow(b, i, pdr, StatusFailed, err)
		return
	}
	pdr.SetDestination(dest)

	written, err := e.copyAtomic(r.Target(), dest, func(n int64) {
		b.tracker.Add(n, i, r.Target().Path())
	})
	if err != nil {
		b.log.Error().Err(err).Object("row", pdr.Row()).Msg("copy failed")
		if size > written {
			b.tracker.Add(size-written, i, r.Target().Path())
		}
		e.failRow(b, i, pdr, StatusFailed, err)
		return
	}
	if size > written {
		b.tracker.Add(size-written, i, r.Target().Path())
	}

	for _, l := range e.chain.Listeners {
		out, err := l.ProcessEvent(rowCtx, b.session, plugin.EventEndRowSuccess, pdr)
		if err != nil {
			b.log.Error().Err(err).Str("listener", l.Name()).Object("row", pdr.Row()).Msg("listener failed after successful copy")
			continue
		}
		if out != nil {
			pdr = out
		}
	}

	if !e.opts.KeepSource {
		if err := e.fs.Remove(r.Target().Path()); err != nil {
			b.log.Warn().Err(err).Str("path", r.Target().Path()).Msg("cannot remove source after copy")
		}
	}

	b.claimed[dest] = i
	b.result.renamed(i, dest, written)
	b.log.Debug().Str("source", r.Target().Path()).Str("destination", dest).Int64("bytes", written).Msg("renamed")
}

// failRow records a row failure and notifies END_ROW_FAIL listeners, even
// after cancellation. Their errors are logged and kept with the row.
func (e *Engine) failRow(b *batch, i int, pdr *row.PluginDataRow, status Status, err error) {
	b.result.failed(i, status, err)
	b.result.Rows[i].Destination = pdr.Destination()

	ctx := context.WithoutCancel(b.ctx)
	for _, l := range e.chain.Listeners {
		if _, lerr := l.ProcessEvent(ctx, b.session, plugin.EventEndRowFail, pdr); lerr != nil {
			b.log.Error().Err(lerr).Str("listener", l.Name()).Object("row", pdr.Row()).Msg("failure notification failed")
			b.result.Rows[i].CleanupErrs = append(b.result.Rows[i].CleanupErrs, lerr)
		}
	}
}
