// Package trigger notifies an external pipeline once per batch with the
// list of renamed files.
//
//	[[listeners]]
//	type = "trigger"
//	[listeners.options]
//	url = "https://pipeline.example.org/api/batches"
//	timeout = "30s"
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
)

// TypeName is the plug-in type used in configuration
const TypeName = "trigger"

// DefaultTimeout bounds the batch notification request
const DefaultTimeout = 30 * time.Second

// Options configures the listener
type Options struct {
	URL     string            `mapstructure:"url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
}

// File is one renamed file in a batch notification
type File struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Batch is the JSON body posted at the end of a session
type Batch struct {
	Session string `json:"session"`
	User    string `json:"user"`
	Files   []File `json:"files"`
}

// Listener collects renamed files and posts them when the batch ends
type Listener struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
	pending *plugin.SessionState[[]File]
}

// NewListener creates a trigger. A nil client uses one with opts.Timeout.
func NewListener(name string, opts Options, client *http.Client) *Listener {
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Listener{
		name:    name,
		url:     opts.URL,
		headers: opts.Headers,
		client:  client,
		pending: plugin.NewSessionState(func() []File { return nil }),
	}
}

func (l *Listener) Name() string { return l.name }

// ProcessEvent records successes and sends the batch on END
func (l *Listener) ProcessEvent(ctx context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	switch e {
	case plugin.EventStart:
		l.pending.Reset(s.ID)
	case plugin.EventEndRowSuccess:
		l.pending.Do(s.ID, func(files *[]File) {
			*files = append(*files, File{Source: r.TargetFile(), Destination: r.Destination()})
		})
	case plugin.EventEnd:
		files, _ := l.pending.Take(s.ID)
		if len(files) == 0 {
			return nil, nil
		}
		return nil, l.send(ctx, s, Batch{Session: s.ID, User: s.User, Files: files})
	}
	return nil, nil
}

func (l *Listener) send(ctx context.Context, s *plugin.Session, b Batch) error {
	body, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode batch notification")
	}

	fail := func(e *errors.RenameError) *errors.RenameError {
		return e.WithDetail("plugin", l.name).
			WithDetail("property", "url").
			WithDetail("value", l.url).
			WithDetail("files", len(b.Files))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return fail(errors.Wrapf(err, errors.ErrPluginConfig, "cannot build request for %s", l.url))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fail(errors.Wrapf(err, errors.ErrExternalSystem, "cannot notify %s", l.url))
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(errors.Newf(errors.ErrExternalSystem, "%s rejected the batch notification: %s", l.url, resp.Status)).
			WithDetail("status", resp.StatusCode)
	}
	s.Logger.Info().Str("plugin", l.name).Int("files", len(b.Files)).Str("url", l.url).Msg("batch notification sent")
	return nil
}

// Close releases idle connections
func (l *Listener) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func newListener(_ plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	opts := Options{Timeout: DefaultTimeout}
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	if opts.URL == "" {
		return nil, plugin.ConfigError(name, "url", "is required")
	}
	return NewListener(name, opts, nil), nil
}

func init() {
	plugin.MustRegisterListener(TypeName, newListener)
}
