package traitregistry

import (
	"context"
	"strconv"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/tokens"
)

// TypeName is the plug-in type used in configuration
const TypeName = "trait-registry"

// Options configures both the validator and the listener
type Options struct {
	DSN string `mapstructure:"dsn"`
	// Line is a template deriving the line name from the row
	Line string `mapstructure:"line"`
	// RankField is the plug-in data field receiving the image rank (listener only)
	RankField string `mapstructure:"rank_field"`
}

func (o Options) check(env plugin.Env, name string, listener bool) (*tokens.Template, error) {
	if o.DSN == "" {
		return nil, plugin.ConfigError(name, "dsn", "is required")
	}
	line, err := env.Template(name, "line", o.Line)
	if err != nil {
		return nil, err
	}
	if listener {
		if err := env.PluginDataField(name, "rank_field", o.RankField); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// Validator rejects rows whose line is not registered
type Validator struct {
	name  string
	store *Store
	line  *tokens.Template
}

// NewValidator builds a validator over an open store
func NewValidator(name string, store *Store, line *tokens.Template) *Validator {
	return &Validator{name: name, store: store, line: line}
}

func (v *Validator) Name() string { return v.name }

// Validate checks the row's line exists in the registry
func (v *Validator) Validate(ctx context.Context, _ *plugin.Session, r *row.PluginDataRow) error {
	line := v.line.Derive(r)
	if line == "" {
		return errors.Newf(errors.ErrFieldInvalid, "%s: no line set", r.Target().Name()).
			WithDetail("property", "line").
			WithDetail("file", r.TargetFile())
	}
	ok, err := v.store.LineExists(ctx, line)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrResourceNotFound, "line %s is not registered", line).
			WithDetail("property", "line").
			WithDetail("value", line).
			WithDetail("file", r.TargetFile())
	}
	return nil
}

// Close closes the store
func (v *Validator) Close() error { return v.store.Close() }

// Listener keeps image records in step with the rename batch
type Listener struct {
	name      string
	store     *Store
	line      *tokens.Template
	rankField string
	// reserved maps row index to the provisional record id, per session
	reserved *plugin.SessionState[map[int]string]
}

// NewListener builds a listener over an open store
func NewListener(name string, store *Store, line *tokens.Template, rankField string) *Listener {
	return &Listener{
		name:      name,
		store:     store,
		line:      line,
		rankField: rankField,
		reserved:  plugin.NewSessionState(func() map[int]string { return make(map[int]string) }),
	}
}

func (l *Listener) Name() string { return l.name }

// ProcessEvent reserves a record on START_ROW and settles it when the row ends
func (l *Listener) ProcessEvent(ctx context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	log := s.Logger.With().Str("plugin", l.name).Str("event", e.String()).Logger()

	switch e {
	case plugin.EventStart:
		l.reserved.Reset(s.ID)
		return nil, l.store.Ping(ctx)

	case plugin.EventStartRow:
		line := l.line.Derive(r)
		rec, err := l.store.Reserve(ctx, line, s.ID, r.TargetFile())
		if err != nil {
			return nil, err
		}
		l.reserved.Do(s.ID, func(m *map[int]string) { (*m)[r.Index()] = rec.ID })
		if err := r.SetPluginDataValue(l.rankField, strconv.Itoa(rec.Rank)); err != nil {
			return nil, err
		}
		log.Debug().Str("line", line).Int("rank", rec.Rank).Str("record", rec.ID).Msg("image record reserved")
		return r, nil

	case plugin.EventEndRowSuccess:
		id, ok := l.take(s.ID, r.Index())
		if !ok {
			return nil, nil
		}
		return nil, l.store.Commit(ctx, id, r.Destination(), s.User)

	case plugin.EventEndRowFail:
		id, ok := l.take(s.ID, r.Index())
		if !ok {
			return nil, nil
		}
		return nil, l.store.Release(ctx, id)

	case plugin.EventEnd:
		l.reserved.Reset(s.ID)
		n, err := l.store.ReleaseSession(ctx, s.ID)
		if n > 0 {
			log.Warn().Int64("records", n).Msg("released provisional records left by the session")
		}
		return nil, err
	}
	return nil, nil
}

func (l *Listener) take(session string, index int) (string, bool) {
	var id string
	var ok bool
	l.reserved.Do(session, func(m *map[int]string) {
		id, ok = (*m)[index]
		delete(*m, index)
	})
	return id, ok
}

// Close closes the store
func (l *Listener) Close() error { return l.store.Close() }

func newValidator(env plugin.Env, name string, options map[string]interface{}) (plugin.RowValidator, error) {
	var opts Options
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	line, err := opts.check(env, name, false)
	if err != nil {
		return nil, err
	}
	store, err := Open(context.Background(), opts.DSN)
	if err != nil {
		return nil, err
	}
	return NewValidator(name, store, line), nil
}

func newListener(env plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	var opts Options
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	line, err := opts.check(env, name, true)
	if err != nil {
		return nil, err
	}
	store, err := Open(context.Background(), opts.DSN)
	if err != nil {
		return nil, err
	}
	return NewListener(name, store, line, opts.RankField), nil
}

func init() {
	plugin.MustRegisterValidator(TypeName, newValidator)
	plugin.MustRegisterListener(TypeName, newListener)
}
