// Package upload walks a local directory tree and writes every eligible file in a
// remote workspace.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/slok/replup/internal/ignore"
	"github.com/slok/replup/internal/log"
	"github.com/slok/replup/internal/model"
)

// FileUploader knows how to write a single file in a workspace.
//
//go:generate mockery --case underscore --output uploadmock --outpkg uploadmock --name FileUploader
type FileUploader interface {
	UploadFile(ctx context.Context, workspaceID, relPath string, content io.Reader, size int64) error
}

// TreeUploaderConfig is the configuration of the tree uploader.
type TreeUploaderConfig struct {
	// FS is the local tree to upload, its root is the workspace root.
	FS fs.FS
	// FileUploader writes the files. Required.
	FileUploader FileUploader
	// Ignore decides the entries that are skipped, by default the fixed ignore table.
	Ignore func(name string) bool
	// Logger for logging.
	Logger log.Logger
}

func (c *TreeUploaderConfig) defaults() error {
	if c.FS == nil {
		return fmt.Errorf("fs is required")
	}
	if c.FileUploader == nil {
		return fmt.Errorf("file uploader is required")
	}
	if c.Ignore == nil {
		c.Ignore = ignore.Ignored
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "upload.TreeUploader"})
	return nil
}

// Summary has the totals of an upload.
type Summary struct {
	Files int
	Bytes int64
}

// TreeUploader uploads a directory tree.
type TreeUploader struct {
	fs       fs.FS
	uploader FileUploader
	ignore   func(name string) bool
	logger   log.Logger
}

// NewTreeUploader returns a new tree uploader.
func NewTreeUploader(cfg TreeUploaderConfig) (*TreeUploader, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &TreeUploader{
		fs:       cfg.FS,
		uploader: cfg.FileUploader,
		ignore:   cfg.Ignore,
		logger:   cfg.Logger,
	}, nil
}

type counters struct {
	files atomic.Int64
	bytes atomic.Int64
}

// Upload uploads the whole tree into the workspace. The entries of a directory are
// uploaded concurrently and the first failure cancels the rest of the upload, files
// already written are left as they are.
func (t *TreeUploader) Upload(ctx context.Context, workspaceID string) (*Summary, error) {
	c := &counters{}
	if err := t.uploadDir(ctx, workspaceID, ".", c); err != nil {
		return nil, err
	}

	return &Summary{
		Files: int(c.files.Load()),
		Bytes: c.bytes.Load(),
	}, nil
}

func (t *TreeUploader) uploadDir(ctx context.Context, workspaceID, dir string, c *counters) error {
	entries, err := fs.ReadDir(t.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Debugf("Directory %q vanished, skipping", dir)
			return nil
		}
		return fmt.Errorf("%w: listing %q: %w", model.ErrUpload, dir, err)
	}

	// Launch all the entries before waiting any of them.
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if t.ignore(e.Name()) {
			t.logger.Debugf("Ignoring %q", p)
			continue
		}

		g.Go(func() error {
			return t.uploadEntry(gctx, workspaceID, p, c)
		})
	}

	return g.Wait()
}

func (t *TreeUploader) uploadEntry(ctx context.Context, workspaceID, p string, c *counters) error {
	info, err := fs.Stat(t.fs, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Debugf("Entry %q vanished, skipping", p)
			return nil
		}
		return fmt.Errorf("%w: stat %q: %w", model.ErrUpload, p, err)
	}

	switch {
	case info.IsDir():
		return t.uploadDir(ctx, workspaceID, p, c)
	case info.Mode().IsRegular():
		return t.uploadFile(ctx, workspaceID, p, c)
	default:
		t.logger.Debugf("Entry %q is not a regular file, skipping", p)
		return nil
	}
}

func (t *TreeUploader) uploadFile(ctx context.Context, workspaceID, p string, c *counters) error {
	f, err := t.fs.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Debugf("File %q vanished, skipping", p)
			return nil
		}
		return fmt.Errorf("%w: opening %q: %w", model.ErrUpload, p, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %q: %w", model.ErrUpload, p, err)
	}

	if err := t.uploader.UploadFile(ctx, workspaceID, p, f, info.Size()); err != nil {
		return err
	}

	c.files.Add(1)
	c.bytes.Add(info.Size())
	t.logger.Debugf("File %q uploaded", p)

	return nil
}
