package condsync

import (
	"log/slog"
)

type config struct {
	logger *slog.Logger
	name   string
}

// An Option configures a CondSync created with New.
type Option func(*config)

// WithLogger sets the logger that receives poisoning and close events. By
// default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName sets the value of the "condsync" attribute attached to every log
// record. Without a name, a random UUID identifies the CondSync in logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}
