package core

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

type (
	// Upload is a file received along a request.
	Upload struct {
		Filename    string
		ContentType string
		Size        int64
		Content     io.Reader
	}

	// FileStore persists uploaded files and tells where they can be downloaded from.
	FileStore interface {
		// Save stores content under name and returns its absolute URL.
		// baseURL is the scheme://host of the current request; stores that serve
		// files themselves (eg. S3) may ignore it.
		Save(ctx context.Context, name string, upload Upload, baseURL string) (string, error)
		// Delete removes a file stored under name. Missing files are not an error.
		Delete(ctx context.Context, name string) error
	}
)

// NowFunc is mockable in tests.
var NowFunc = time.Now

// UniqueFilename builds a collision resistant name: <unix-millis>-<random 9 digits>-<original name>.
// Characters that would not survive a URL path round trip are replaced with '_'.
func UniqueFilename(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return -1
		case '%', '?', '#':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return fmt.Sprintf("%d-%d-%s", NowFunc().UnixMilli(), rand.Int63n(1e9), name)
}
