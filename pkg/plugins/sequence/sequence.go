// Package sequence numbers the rows of a batch. Rows sharing a key (derived
// from a template) share one counter, so each line, slide or specimen gets
// its own run of numbers.
//
//	[[listeners]]
//	type = "sequence"
//	[listeners.options]
//	field = "Seq"
//	key = "${Line}"
//	start = 1
//	width = 3
package sequence

import (
	"context"
	"fmt"

	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/tokens"
)

// TypeName is the plug-in type used in configuration
const TypeName = "sequence"

// Options configures the listener
type Options struct {
	Field string `mapstructure:"field"`
	Key   string `mapstructure:"key"`
	Start int    `mapstructure:"start"`
	Width int    `mapstructure:"width"`
}

type counters struct {
	next     map[string]int
	assigned map[int]assignment
}

type assignment struct {
	key string
	n   int
}

// Listener assigns sequence numbers on START_ROW
type Listener struct {
	name  string
	field string
	key   *tokens.Template
	start int
	width int
	state *plugin.SessionState[counters]
}

// NewListener creates a sequence listener. A nil key numbers every row from
// one counter.
func NewListener(name, field string, key *tokens.Template, start, width int) *Listener {
	return &Listener{
		name:  name,
		field: field,
		key:   key,
		start: start,
		width: width,
		state: plugin.NewSessionState(func() counters {
			return counters{next: make(map[string]int), assigned: make(map[int]assignment)}
		}),
	}
}

func (l *Listener) Name() string { return l.name }

// ProcessEvent assigns a number on START_ROW. A row that fails returns its
// number when no later number of the same key was handed out.
func (l *Listener) ProcessEvent(_ context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	switch e {
	case plugin.EventStart, plugin.EventEnd:
		l.state.Reset(s.ID)

	case plugin.EventStartRow:
		key := ""
		if l.key != nil {
			key = l.key.Derive(r)
		}
		var n int
		l.state.Do(s.ID, func(c *counters) {
			next, ok := c.next[key]
			if !ok {
				next = l.start
			}
			n = next
			c.next[key] = n + 1
			c.assigned[r.Index()] = assignment{key: key, n: n}
		})
		if err := r.SetPluginDataValue(l.field, fmt.Sprintf("%0*d", l.width, n)); err != nil {
			return nil, err
		}
		return r, nil

	case plugin.EventEndRowFail:
		l.state.Do(s.ID, func(c *counters) {
			a, ok := c.assigned[r.Index()]
			if !ok {
				return
			}
			delete(c.assigned, r.Index())
			if c.next[a.key] == a.n+1 {
				c.next[a.key] = a.n
			}
		})

	case plugin.EventEndRowSuccess:
		l.state.Do(s.ID, func(c *counters) { delete(c.assigned, r.Index()) })
	}
	return nil, nil
}

func newListener(env plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	opts := Options{Start: 1}
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	if err := env.PluginDataField(name, "field", opts.Field); err != nil {
		return nil, err
	}
	var key *tokens.Template
	if opts.Key != "" {
		t, err := env.Template(name, "key", opts.Key)
		if err != nil {
			return nil, err
		}
		key = t
	}
	if opts.Width < 0 || opts.Width > 12 {
		return nil, plugin.ConfigError(name, "width", "must be between 0 and 12, got %d", opts.Width)
	}
	return NewListener(name, opts.Field, key, opts.Start, opts.Width), nil
}

func init() {
	plugin.MustRegisterListener(TypeName, newListener)
}
