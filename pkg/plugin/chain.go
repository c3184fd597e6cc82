package plugin

import (
	stderrors "errors"
	"io"

	"github.com/arthur-debert/imgrename/pkg/errors"
)

// Config selects a plug-in type and carries its options
type Config struct {
	Type    string                 `koanf:"type" toml:"type"`
	Name    string                 `koanf:"name" toml:"name,omitempty"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty"`
}

// DisplayName is the configured name, falling back to the type
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Type
}

// Chain is the ordered set of validators and listeners for a batch
type Chain struct {
	Validators []RowValidator
	Listeners  []RowListener
}

// BuildChain instantiates every configured plug-in, in order. Any failure
// closes the plug-ins built so far.
func BuildChain(env Env, validators, listeners []Config) (*Chain, error) {
	chain := &Chain{}
	for _, c := range validators {
		factory, err := validatorFactories.Get(c.Type)
		if err != nil {
			_ = chain.Close()
			return nil, errors.Wrapf(err, errors.ErrPluginNotFound, "unknown validator type %q", c.Type).
				WithDetail("plugin", c.DisplayName())
		}
		v, err := factory(env, c.DisplayName(), c.Options)
		if err != nil {
			_ = chain.Close()
			return nil, err
		}
		chain.Validators = append(chain.Validators, v)
	}
	for _, c := range listeners {
		factory, err := listenerFactories.Get(c.Type)
		if err != nil {
			_ = chain.Close()
			return nil, errors.Wrapf(err, errors.ErrPluginNotFound, "unknown listener type %q", c.Type).
				WithDetail("plugin", c.DisplayName())
		}
		l, err := factory(env, c.DisplayName(), c.Options)
		if err != nil {
			_ = chain.Close()
			return nil, err
		}
		chain.Listeners = append(chain.Listeners, l)
	}
	return chain, nil
}

// Close releases plug-ins holding resources such as database handles.
// A plug-in appearing as both validator and listener is closed once.
func (c *Chain) Close() error {
	seen := make(map[io.Closer]bool)
	var errs []error
	closeOne := func(p interface{}) {
		cl, ok := p.(io.Closer)
		if !ok || seen[cl] {
			return
		}
		seen[cl] = true
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, v := range c.Validators {
		closeOne(v)
	}
	for _, l := range c.Listeners {
		closeOne(l)
	}
	return stderrors.Join(errs...)
}
