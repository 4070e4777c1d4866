package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	api "github.com/ossf/content-triage/pkg/api/triage"
)

type ResultStore struct {
	bucket        string
	basePath      string
	constructPath bool
}

type (
	Option interface{ set(*ResultStore) }
	option func(*ResultStore) // option implements Option.
)

func (o option) set(rs *ResultStore) { o(rs) }

// ConstructPath will cause Save() to append the directory of the triaged
// object's path to the base path, so results mirror the layout of the
// objects bucket.
func ConstructPath() Option {
	return option(func(rs *ResultStore) { rs.constructPath = true })
}

// BasePath sets the base path used while saving files to storage.
func BasePath(base string) Option {
	return option(func(rs *ResultStore) { rs.basePath = base })
}

func New(bucket string, options ...Option) *ResultStore {
	rs := &ResultStore{
		bucket: bucket,
	}
	for _, o := range options {
		o.set(rs)
	}
	return rs
}

func (rs *ResultStore) String() string {
	if rs == nil {
		return ""
	}
	s := rs.bucket + "/" + rs.basePath
	if rs.constructPath {
		s += "+"
	}
	return s
}

func (rs *ResultStore) openBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, rs.bucket)
}

func (rs *ResultStore) generatePath(k api.Key) string {
	p := rs.basePath
	if rs.constructPath {
		if dir := path.Dir(strings.TrimPrefix(k.Path, "/")); dir != "." {
			p = path.Join(p, dir)
		}
	}
	return p
}

// MakeFilename returns the default filename to use for saving triage results,
// using an optional label.
// If the key has a path, the default filename is "<label>-<base>.json" if
// label is nonempty, or "<base>.json" otherwise, where base is the last
// element of the path. Without a path, the filename is "<label>.json" if label
// is nonempty, or "results.json" if not.
func MakeFilename(k api.Key, label string) string {
	prefix := "results"
	base := ""
	if p := strings.TrimSuffix(k.Path, "/"); p != "" {
		base = path.Base(p)
	}

	if base != "" && label != "" {
		prefix = label + "-" + base
	} else if base != "" {
		prefix = base
	} else if label != "" {
		prefix = label
	}
	return prefix + ".json"
}

// SaveWithFilename saves the record to the bucket with the given filename.
func (rs *ResultStore) SaveWithFilename(ctx context.Context, k api.Key, filename string, record any) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	bkt, err := rs.openBucket(ctx)
	if err != nil {
		return err
	}
	defer bkt.Close()

	uploadPath := path.Join(rs.generatePath(k), filename)
	slog.InfoContext(ctx, "Uploading results",
		"bucket", rs.bucket,
		"path", uploadPath)

	w, err := bkt.NewWriter(ctx, uploadPath, &blob.WriterOptions{ContentType: "application/json"})
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Save saves the record with the default filename.
func (rs *ResultStore) Save(ctx context.Context, k api.Key, record any) error {
	return rs.SaveWithFilename(ctx, k, MakeFilename(k, ""), record)
}
