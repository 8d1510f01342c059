package parser

import "log/slog"

// DefaultMaxDepth bounds statement and expression nesting. The depth
// counter historically fit in seven bits, so the default keeps that range.
const DefaultMaxDepth = 127

// Option configures a parse.
type Option func(*config)

type config struct {
	maxDepth int
	logger   *slog.Logger
}

// WithMaxDepth overrides the nesting ceiling. Values below one are
// ignored.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth >= 1 {
			c.maxDepth = depth
		}
	}
}

// WithLogger overrides the default stderr debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
