/*
Package sample reads the bounded prefix of a file that the triage engine
analyses. Files can come from the local filesystem or from a blob bucket
(file://, gs:// or s3:// URLs); in both cases only the first Size bytes are
read, while the size of the whole file is reported alongside.
*/
package sample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const (
	// DefaultSize is the number of leading bytes read for statistics.
	DefaultSize = 2048

	// DefaultHeaderSize is the number of leading bytes needed for
	// signature detection.
	DefaultHeaderSize = 32
)

var ErrEmptyPath = errors.New("empty path")

// Sample is a prefix of a file together with the size of the whole file.
type Sample struct {
	Data     []byte
	FileSize int64
}

// Truncated reports whether the sample is shorter than the file.
func (s Sample) Truncated() bool {
	return int64(len(s.Data)) < s.FileSize
}

func limit(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	return size
}

// File reads up to size bytes from the start of the file at path.
// A size <= 0 means DefaultSize.
func File(path string, size int) (Sample, error) {
	if path == "" {
		return Sample{}, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Sample{}, err
	}
	if !info.Mode().IsRegular() {
		return Sample{}, fmt.Errorf("%s is not a regular file", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, int64(limit(size))))
	if err != nil {
		return Sample{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Sample{Data: data, FileSize: info.Size()}, nil
}

// Blob reads up to size bytes from the start of the object stored under key
// in bkt, using a range read so the rest of the object is never transferred.
// A size <= 0 means DefaultSize.
func Blob(ctx context.Context, bkt *blob.Bucket, key string, size int) (Sample, error) {
	if key == "" {
		return Sample{}, ErrEmptyPath
	}
	attrs, err := bkt.Attributes(ctx, key)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to get attributes of %s: %w", key, err)
	}

	n := int64(limit(size))
	if attrs.Size < n {
		n = attrs.Size
	}
	r, err := bkt.NewRangeReader(ctx, key, 0, n, nil)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return Sample{}, fmt.Errorf("reading %s: %w", key, err)
	}
	return Sample{Data: data, FileSize: attrs.Size}, nil
}
