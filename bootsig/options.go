package bootsig

import "log/slog"

// writerOptions holds configuration for a Writer.
type writerOptions struct {
	logger *slog.Logger
	policy ShortImagePolicy
}

// Option is a functional option for configuring a Writer.
type Option func(*writerOptions)

// WithLogger configures the writer with a logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *writerOptions) {
		opts.logger = logger
	}
}

// WithShortImagePolicy selects how images shorter than one sector are handled.
func WithShortImagePolicy(policy ShortImagePolicy) Option {
	return func(opts *writerOptions) {
		opts.policy = policy
	}
}

func defaultOptions() *writerOptions {
	return &writerOptions{
		logger: nil,
		policy: PolicyPad,
	}
}

func applyOptions(opts *writerOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}
