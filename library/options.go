package library

import (
	"log/slog"

	"github.com/hupe1980/tilematch/resource"
)

type options struct {
	controller *resource.Controller
	logger     *slog.Logger
}

// Option configures library builds and loads.
type Option func(*options)

// WithController bounds decoding workers, memory and IO with c.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
