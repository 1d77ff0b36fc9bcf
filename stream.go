package skillet

import (
	"context"
	"errors"
	"io"
)

// ChunkSource yields the text of one streamed message piece by piece. Next
// returns io.EOF once the message is finished.
type ChunkSource interface {
	Next(ctx context.Context) (string, error)
}

// ReaderSource reads r in chunks of at most size bytes. A size of zero or
// less selects 4096.
func ReaderSource(r io.Reader, size int) ChunkSource {
	if size <= 0 {
		size = 4096
	}
	return &readerSource{r: r, buf: make([]byte, size)}
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

func (s *readerSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return string(s.buf[:n]), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// ChunksSource replays a recorded chunk sequence.
func ChunksSource(chunks ...string) ChunkSource {
	return &sliceSource{chunks: chunks}
}

type sliceSource struct {
	chunks []string
	i      int
}

func (s *sliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.i >= len(s.chunks) {
		return "", io.EOF
	}
	c := s.chunks[s.i]
	s.i++
	return c, nil
}

// Drain feeds every chunk of src into sess and calls fn with each snapshot.
// The chunk after which src reports io.EOF is fed as final. Drain stops at
// the first error from src, from Feed or from fn, and when ctx is done.
func Drain(ctx context.Context, sess *Session, src ChunkSource, fn func(Snapshot) error) (Snapshot, error) {
	pending, err := src.Next(ctx)
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		return Snapshot{}, err
	}
	for {
		var next string
		if !eof {
			next, err = src.Next(ctx)
			eof = errors.Is(err, io.EOF)
			if err != nil && !eof {
				return Snapshot{}, err
			}
		}
		snap, err := sess.Feed(pending, eof)
		if err != nil {
			return snap, err
		}
		if fn != nil {
			if err := fn(snap); err != nil {
				return snap, err
			}
		}
		if eof {
			return snap, nil
		}
		pending = next
	}
}
