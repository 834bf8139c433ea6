// Package tableio reads and writes tables on local disk or S3, choosing the
// codec from the path extension.
package tableio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/table"
)

// Store errors, split by direction so callers can tell a bad input from a
// failed output.
var (
	ErrRead  = errors.New("read table")
	ErrWrite = errors.New("write table")
)

// ObjectStore is the slice of an object-storage client the Store needs.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

// Store reads and writes tables. s3:// paths go through an ObjectStore that
// is created on first use.
type Store struct {
	s3cfg config.S3Config

	once    sync.Once
	objects ObjectStore
	initErr error
}

// NewStore returns a Store that builds an S3 client from cfg when an
// s3:// path is first used.
func NewStore(cfg config.S3Config) *Store {
	return &Store{s3cfg: cfg}
}

// NewStoreWithObjects returns a Store backed by the given ObjectStore.
func NewStoreWithObjects(objects ObjectStore) *Store {
	s := &Store{objects: objects}
	s.once.Do(func() {})
	return s
}

func (s *Store) objectStore(ctx context.Context) (ObjectStore, error) {
	s.once.Do(func() {
		s.objects, s.initErr = newS3Objects(ctx, s.s3cfg)
	})
	return s.objects, s.initErr
}

// Read loads the table at path: .csv as delimited text, .xlsx as the first
// worksheet, anything else as Parquet.
func (s *Store) Read(ctx context.Context, path string) (*table.Table, error) {
	t, err := s.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return t, nil
}

func (s *Store) read(ctx context.Context, path string) (*table.Table, error) {
	if bucket, key, ok := ParseS3URI(path); ok {
		objects, err := s.objectStore(ctx)
		if err != nil {
			return nil, err
		}
		data, err := objects.Get(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t, err := decode(path, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat table: %w", err)
	}
	t, err := decode(path, f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func decode(path string, r readerAt, size int64) (*table.Table, error) {
	switch ext(path) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadExcel(r)
	default:
		return ReadParquet(r, size)
	}
}

type readerAt interface {
	io.Reader
	io.ReaderAt
}

// Write stores t at path: .parquet as Parquet, anything else as CSV with a
// header row. Local parent directories are created as needed and the file
// is replaced atomically.
func (s *Store) Write(ctx context.Context, t *table.Table, path string) error {
	if err := s.write(ctx, t, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, t *table.Table, path string) error {
	var buf bytes.Buffer
	contentType := "text/csv"
	if ext(path) == ".parquet" {
		contentType = "application/vnd.apache.parquet"
		if err := WriteParquet(&buf, t); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	} else if err := WriteCSV(&buf, t); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if bucket, key, ok := ParseS3URI(path); ok {
		objects, err := s.objectStore(ctx)
		if err != nil {
			return err
		}
		if err := objects.Put(ctx, bucket, key, &buf, contentType); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
