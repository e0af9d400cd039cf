package filestore

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
)

// DiskStore writes uploads to a local directory, served by the API under urlPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

var _ core.FileStore = (*DiskStore)(nil) // interface compliance check

// NewDiskStore creates dir if missing.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &DiskStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) URLPrefix() string { return s.urlPrefix }

func (s *DiskStore) Save(ctx context.Context, name string, upload core.Upload, baseURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, upload.Content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing file")
	}

	return strings.TrimRight(baseURL, "/") + s.urlPrefix + "/" + url.PathEscape(filepath.Base(name)), nil
}

func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
