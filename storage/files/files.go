package filestore

import (
	"context"
	"fmt"

	"github.com/trezcool/entregas/core"
)

// Open returns the FileStore selected by conf.Storage.Backend.
func Open(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	switch conf.Storage.Backend {
	case core.StorageDisk, "":
		return NewDiskStore(conf.Storage.UploadDir, conf.Storage.URLPrefix)
	case core.StorageS3:
		return NewS3Store(ctx, conf)
	}
	return nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
}
