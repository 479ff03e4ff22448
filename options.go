package parmat

// Options configures a SparsityPattern.
type Options struct {
	// Logger receives structured diagnostics; defaults to a no-op logger.
	Logger *Logger
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = Options{
	Logger: NoopLogger(),
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}
