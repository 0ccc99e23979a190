package database

import (
	"github.com/rs/zerolog"

	"github.com/viant/sqlitekit/engine"
)

// DefaultBusyTimeout is the busy timeout, in milliseconds, applied on open.
const DefaultBusyTimeout = 100

type options struct {
	flags       engine.OpenFlags
	key         string
	busyTimeout int
	logger      zerolog.Logger
}

// Option configures Open.
type Option func(*options)

// WithFlags sets the open flags; the default is read-write and create.
func WithFlags(flags engine.OpenFlags) Option {
	return func(o *options) { o.flags = flags }
}

// WithKey sets the encryption key. It takes effect only on engine builds
// with encryption support.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithBusyTimeout sets the busy timeout in milliseconds applied on open. A
// non-positive value leaves busy waiting off.
func WithBusyTimeout(ms int) Option {
	return func(o *options) { o.busyTimeout = ms }
}

// WithLogger sets the logger used for connection and statement events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{
		flags:       engine.DefaultFlags,
		busyTimeout: DefaultBusyTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.flags == 0 {
		o.flags = engine.DefaultFlags
	}
	return o
}
