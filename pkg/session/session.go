package session

import (
	"context"
	"os"
	"sync"

	"github.com/arthur-debert/imgrename/pkg/config"
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/output"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/scan"
	"github.com/arthur-debert/imgrename/pkg/sheet"
	"github.com/arthur-debert/imgrename/pkg/task"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures a session
type Options struct {
	Config *config.Config
	FS     types.FS
	// Chain overrides the plug-ins built from Config
	Chain  *plugin.Chain
	Logger zerolog.Logger
}

// StartOptions configures one rename task
type StartOptions struct {
	// Dir is the output directory chosen by the user; required in manual mode
	Dir    string
	DryRun bool
}

// Session holds the rows of one user and runs their rename tasks
type Session struct {
	mu       sync.Mutex
	cfg      *config.Config
	fs       types.FS
	template []fields.DataField
	resolver *output.Resolver
	dirPerm  os.FileMode
	chain    *plugin.Chain
	ownChain bool
	plugin   *plugin.Session
	log      zerolog.Logger

	rows    []*row.Row
	running *Handle
	last    *task.Result
}

// New builds the field template, output resolver and plug-in chain
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	log := opts.Logger
	if log.GetLevel() == zerolog.Disabled {
		log = logging.GetLogger("session")
	}

	template, err := cfg.Template()
	if err != nil {
		return nil, err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	perm, err := cfg.DirPerm()
	if err != nil {
		return nil, err
	}

	chain, own := opts.Chain, false
	if chain == nil {
		chain, err = plugin.BuildChain(plugin.Env{FS: fsys, Fields: template}, cfg.Validators, cfg.Listeners)
		if err != nil {
			return nil, err
		}
		own = true
	}

	ps := plugin.NewSession(cfg.User, log)
	log = log.With().Str("session", ps.ID).Logger()
	log.Debug().
		Str("user", cfg.User).
		Int("fields", len(template)).
		Int("validators", len(chain.Validators)).
		Int("listeners", len(chain.Listeners)).
		Msg("session created")

	return &Session{
		cfg:      cfg,
		fs:       fsys,
		template: template,
		resolver: resolver,
		dirPerm:  perm,
		chain:    chain,
		ownChain: own,
		plugin:   ps,
		log:      log,
	}, nil
}

// ID returns the session id passed to plug-ins
func (s *Session) ID() string { return s.plugin.ID }

// Template returns the configured fields
func (s *Session) Template() []fields.DataField { return s.template }

// Rows returns the current rows
func (s *Session) Rows() []*row.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*row.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Targets returns the sources of the current rows
func (s *Session) Targets() []types.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets()
}

func (s *Session) targets() []types.Target {
	out := make([]types.Target, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Target()
	}
	return out
}

// LastResult returns the result of the most recent finished task
func (s *Session) LastResult() *task.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// idle returns ErrTaskRunning while a task owns the rows; callers hold mu
func (s *Session) idle() error {
	if s.running != nil {
		return errors.New(errors.ErrTaskRunning, "a rename task is already running in this session").
			WithDetail("session", s.plugin.ID)
	}
	return nil
}

// Load discovers files under root and appends one row per file
func (s *Session) Load(root string) (int, error) {
	targets, err := scan.Discover(s.fs, root, s.cfg.Scan)
	if err != nil {
		return 0, err
	}
	return s.Add(targets)
}

// Add appends one row per target
func (s *Session) Add(targets []types.Target) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return 0, err
	}
	for _, t := range targets {
		s.rows = append(s.rows, row.New(t, s.template))
	}
	s.log.Info().Int("added", len(targets)).Int("rows", len(s.rows)).Msg("rows loaded")
	return len(targets), nil
}

// Clear removes every row
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return err
	}
	s.rows = nil
	return nil
}

// Set applies value to the named field of every row
func (s *Session) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return err
	}
	for _, r := range s.rows {
		if err := r.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// SetRow applies value to the named field of row i
func (s *Session) SetRow(i int, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return err
	}
	r, err := s.row(i)
	if err != nil {
		return err
	}
	return r.Set(name, value)
}

// CopyRow copies the editable values of row from into each of rows to
func (s *Session) CopyRow(from int, to ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return err
	}
	src, err := s.row(from)
	if err != nil {
		return err
	}
	for _, i := range to {
		dst, err := s.row(i)
		if err != nil {
			return err
		}
		if err := dst.CopyValuesFrom(src); err != nil {
			return err
		}
	}
	return nil
}

// ApplySheet sets row values from a value sheet and returns the number of
// rows it matched
func (s *Session) ApplySheet(sh *sheet.Sheet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return 0, err
	}
	return sh.Apply(s.rows)
}

func (s *Session) row(i int) (*row.Row, error) {
	if i < 0 || i >= len(s.rows) {
		return nil, errors.Newf(errors.ErrInvalidInput, "row %d out of range (session has %d rows)", i, len(s.rows)).
			WithDetail("row", i)
	}
	return s.rows[i], nil
}

// OutputDir resolves the output directory for the current rows
func (s *Session) OutputDir(manual string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Dir(manual, s.targets())
}

// RetryFailed drops the rows the last task consumed, keeping failed,
// rejected and never-reached rows for another attempt. It returns the number
// of rows kept.
func (s *Session) RetryFailed() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return 0, err
	}
	if s.last == nil || s.last.DryRun {
		return len(s.rows), nil
	}
	keep := s.last.Retry()
	rows := make([]*row.Row, 0, len(keep))
	for _, i := range keep {
		if i < len(s.rows) {
			rows = append(rows, s.rows[i])
		}
	}
	s.rows = rows
	s.last = nil
	return len(rows), nil
}

// Start runs a rename task over the current rows in a background goroutine.
// Only one task may run at a time.
func (s *Session) Start(ctx context.Context, opts StartOptions) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return nil, err
	}
	if len(s.rows) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "nothing to rename: the session has no rows")
	}
	dir, err := s.resolver.Dir(opts.Dir, s.targets())
	if err != nil {
		return nil, err
	}

	rows := make([]*row.Row, len(s.rows))
	copy(rows, s.rows)

	ctx, cancel := context.WithCancel(ctx)
	h := newHandle(cancel, dir)
	engine := task.New(task.Options{
		FS:                s.fs,
		Chain:             s.chain,
		KeepSource:        s.cfg.Copy.KeepSource,
		Overwrite:         s.cfg.Copy.Overwrite,
		PreserveModTime:   s.cfg.Copy.PreserveModTime,
		AbortOnInvalidRow: s.cfg.Task.AbortOnInvalidRow,
		DryRun:            opts.DryRun,
		DirPerm:           s.dirPerm,
		ChunkUnit:         s.cfg.Copy.ChunkSize,
		Progress:          h.report,
		Logger:            s.log,
	})
	s.running = h

	go func() {
		defer cancel()
		res := engine.Run(ctx, s.plugin, rows, dir)

		s.mu.Lock()
		h.result = res
		s.last = res
		s.running = nil
		s.mu.Unlock()

		close(h.progress)
		close(h.done)
	}()

	s.log.Info().Str("dir", dir).Int("rows", len(rows)).Bool("dryRun", opts.DryRun).Msg("rename task started")
	return h, nil
}

// Running returns the active task, or nil
func (s *Session) Running() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close cancels a running task, waits for it and releases the plug-ins the
// session built
func (s *Session) Close() error {
	if h := s.Running(); h != nil {
		h.Cancel()
		h.Wait()
	}
	if s.ownChain {
		return s.chain.Close()
	}
	return nil
}
