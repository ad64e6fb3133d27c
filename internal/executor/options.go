package executor

import logging "github.com/hanpama/graphresolve/internal/logging"

type options struct {
	listConcurrency int
	logger          *logging.Logger
}

// Option configures an Executor.
type Option func(*options)

// WithListConcurrency resolves list items on up to n goroutines. Values of
// n below 2 keep list resolution sequential.
func WithListConcurrency(n int) Option {
	return func(o *options) { o.listConcurrency = n }
}

// WithLogger overrides the logger taken from the execution context.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}
