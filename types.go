package skillet

import "log/slog"

// NumberMode dictates how materialized numbers are represented.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number.
)

// DuplicateKeys selects how a repeated key inside one streamed object is
// treated.
type DuplicateKeys int

const (
	// DuplicateLast keeps the last occurrence silently.
	DuplicateLast DuplicateKeys = iota
	// DuplicateWarn keeps the last occurrence and reports a duplicate_key
	// diagnostic for final buffers.
	DuplicateWarn
	// DuplicateReject fails materialization with a duplicate_key issue.
	DuplicateReject
)

// DefaultMaxDepth bounds container nesting in streamed input.
const DefaultMaxDepth = 256

// Option configures Materialize and NewSession.
type Option func(*options)

type options struct {
	numberMode NumberMode
	maxDepth   int
	maxBytes   int64
	duplicates DuplicateKeys
	logger     *slog.Logger
}

func defaultOptions() options {
	return options{numberMode: NumberFloat64, maxDepth: DefaultMaxDepth}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithNumberMode selects the representation of materialized numbers.
func WithNumberMode(m NumberMode) Option { return func(o *options) { o.numberMode = m } }

// WithMaxDepth limits container nesting. n <= 0 disables the check.
func WithMaxDepth(n int) Option { return func(o *options) { o.maxDepth = n } }

// WithMaxBytes limits the size of the accumulated buffer. n <= 0 disables the check.
func WithMaxBytes(n int64) Option { return func(o *options) { o.maxBytes = n } }

// WithDuplicateKeys sets the policy for keys repeated within one object.
func WithDuplicateKeys(p DuplicateKeys) Option { return func(o *options) { o.duplicates = p } }

// WithLogger attaches a logger to a Session. Sessions without a logger stay silent.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }
