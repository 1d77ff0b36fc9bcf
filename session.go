package skillet

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Session accumulates the text of one streamed message and re-materializes
// the whole buffer on every Feed. It is owned by a single caller and is not
// safe for concurrent use.
type Session struct {
	id     string
	schema *Schema
	buf    strings.Builder
	opts   options
	log    *slog.Logger
}

// NewSession starts an empty session for s.
func NewSession(s *Schema, opts ...Option) *Session {
	o := buildOptions(opts)
	ss := &Session{id: uuid.NewString(), schema: s, opts: o}
	if o.logger != nil {
		ss.log = o.logger.With("session_id", ss.id)
	}
	return ss
}

// ID returns the session identifier used in log records.
func (ss *Session) ID() string { return ss.id }

// Schema returns the schema the session materializes against.
func (ss *Session) Schema() *Schema { return ss.schema }

// Text returns everything fed so far.
func (ss *Session) Text() string { return ss.buf.String() }

// Feed appends chunk and returns the snapshot of the whole buffer. final
// asserts that no more text will arrive.
func (ss *Session) Feed(chunk string, final bool) (Snapshot, error) {
	ss.buf.WriteString(chunk)
	text := ss.buf.String()
	snap, err := materialize(ss.schema, text, final, ss.opts)
	if ss.log == nil {
		return snap, err
	}
	ctx := context.Background()
	if err != nil {
		ss.log.ErrorContext(ctx, "materialize failed", "bytes", len(text), "error", err)
		return snap, err
	}
	ss.log.DebugContext(ctx, "fed chunk",
		"bytes", len(text),
		"final", final,
		"has_value", snap.HasValue,
		"state", snap.State().String(),
	)
	for _, d := range snap.Diagnostics {
		ss.log.WarnContext(ctx, "stream diagnostic",
			"code", d.Code,
			"path", d.Path,
			"offset", d.Offset,
			"fragment", d.InputFragment,
		)
	}
	return snap, nil
}
