// Package httpresource validates rows against an HTTP service: a URL is
// derived from the row and the row is accepted when the service answers with
// a 2xx status.
//
//	[[validators]]
//	type = "http-resource"
//	[validators.options]
//	url = "https://lines.example.org/api/line/${Line}"
//	timeout = "5s"
//	cache_ttl = "10m"
package httpresource

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/tokens"
)

// TypeName is the plug-in type used in configuration
const TypeName = "http-resource"

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 5 * time.Minute
)

// Options configures the validator
type Options struct {
	URL      string        `mapstructure:"url"`
	Method   string        `mapstructure:"method"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Validator checks that the URL derived from each row names an existing resource
type Validator struct {
	name   string
	url    *tokens.Template
	method string
	client *http.Client
	// found holds URLs already confirmed to exist
	found *plugin.TimedCache[string, bool]
}

// NewValidator creates a validator. A nil client uses one with the given timeout.
func NewValidator(name string, url *tokens.Template, opts Options, client *http.Client) *Validator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Validator{
		name:   name,
		url:    url,
		method: opts.Method,
		client: client,
		found:  plugin.NewTimedCache[string, bool](opts.CacheTTL),
	}
}

func (v *Validator) Name() string { return v.name }

// Cache exposes the positive-result cache
func (v *Validator) Cache() *plugin.TimedCache[string, bool] { return v.found }

// Validate requests the row's URL. 404 is a data error; any other failure is a
// system error.
func (v *Validator) Validate(ctx context.Context, s *plugin.Session, r *row.PluginDataRow) error {
	url := v.url.Derive(r)
	if ok, _ := v.found.Get(url); ok {
		return nil
	}

	detail := func(e *errors.RenameError) *errors.RenameError {
		return e.WithDetail("plugin", v.name).
			WithDetail("property", "url").
			WithDetail("value", url).
			WithDetail("file", r.TargetFile())
	}

	req, err := http.NewRequestWithContext(ctx, v.method, url, nil)
	if err != nil {
		return detail(errors.Wrapf(err, errors.ErrPluginConfig, "cannot build request for %s", url))
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return detail(errors.Wrapf(err, errors.ErrExternalSystem, "request to %s failed", url))
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	s.Logger.Debug().Str("plugin", v.name).Str("url", url).Int("status", resp.StatusCode).Msg("resource checked")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		v.found.Add(url, true)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return detail(errors.Newf(errors.ErrResourceNotFound, "%s: resource %s does not exist", r.Target().Name(), url))
	default:
		return detail(errors.Newf(errors.ErrExternalSystem, "%s answered %s", url, resp.Status)).
			WithDetail("status", resp.StatusCode)
	}
}

// Close releases idle connections
func (v *Validator) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

func newValidator(env plugin.Env, name string, options map[string]interface{}) (plugin.RowValidator, error) {
	opts := Options{Timeout: DefaultTimeout, CacheTTL: DefaultCacheTTL}
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	url, err := env.Template(name, "url", opts.URL)
	if err != nil {
		return nil, err
	}
	switch opts.Method {
	case "", http.MethodGet, http.MethodHead:
	default:
		return nil, plugin.ConfigError(name, "method", "must be GET or HEAD, got %q", opts.Method)
	}
	return NewValidator(name, url, opts, nil), nil
}

func init() {
	plugin.MustRegisterValidator(TypeName, newValidator)
}
