package stores

import (
	"github.com/dmitrijs2005/identitystore/internal/logging"
)

type options struct {
	cache bool
	watch bool
	log   logging.Logger
}

// Option configures a store.
type Option func(*options)

// WithCache keeps the collection in memory after the first load and writes
// it back on every change.
func WithCache() Option {
	return func(o *options) { o.cache = true }
}

// WithWatch reloads a cached file-backed collection when the file changes on
// disk. Only file stores honor it, and it implies WithCache.
func WithWatch() Option {
	return func(o *options) {
		o.cache = true
		o.watch = true
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Nop()
	}
	return o
}
