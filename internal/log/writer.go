package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"unicode"
)

// NewWriter returns an io.WriteCloser that logs each line written to it as a
// separate record at the given level. Blank lines are dropped and trailing
// whitespace is trimmed.
//
// Close must be called to log any final line that lacks a newline.
func NewWriter(ctx context.Context, logger *slog.Logger, level slog.Level) io.WriteCloser {
	return &writer{
		ctx:    ctx,
		logger: logger,
		level:  level,
	}
}

type writer struct {
	ctx     context.Context
	logger  *slog.Logger
	level   slog.Level
	pending bytes.Buffer
}

func (w *writer) emit(line []byte) {
	line = bytes.TrimRightFunc(line, unicode.IsSpace)
	if len(line) > 0 {
		w.logger.Log(w.ctx, w.level, string(line))
	}
}

func (w *writer) Write(p []byte) (int, error) {
	n := len(p)
	for {
		line, rest, found := bytes.Cut(p, []byte{'\n'})
		if !found {
			w.pending.Write(p)
			return n, nil
		}
		if w.pending.Len() > 0 {
			w.pending.Write(line)
			w.emit(w.pending.Bytes())
			w.pending.Reset()
		} else {
			w.emit(line)
		}
		p = rest
	}
}

func (w *writer) Close() error {
	if w.pending.Len() > 0 {
		w.emit(w.pending.Bytes())
		w.pending.Reset()
	}
	return nil
}
