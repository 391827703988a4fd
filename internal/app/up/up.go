package up

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/oklog/ulid/v2"

	"github.com/slok/replup/internal/log"
	"github.com/slok/replup/internal/model"
	"github.com/slok/replup/internal/printer"
	"github.com/slok/replup/internal/upload"
)

// DefaultEntryFile is the file evaluated after the upload.
const DefaultEntryFile = "index.js"

// Bootstrapper allocates workspaces.
//
//go:generate mockery --case underscore --output upmock --outpkg upmock --name Bootstrapper
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (*model.Workspace, error)
}

// TreeUploader uploads the local tree into a workspace.
//
//go:generate mockery --case underscore --output upmock --outpkg upmock --name TreeUploader
type TreeUploader interface {
	Upload(ctx context.Context, workspaceID string) (*upload.Summary, error)
}

// Executor runs code on a workspace.
//
//go:generate mockery --case underscore --output upmock --outpkg upmock --name Executor
type Executor interface {
	Run(ctx context.Context, ws model.Workspace, code string) (*model.ExecResult, error)
}

// ServiceConfig is the configuration for the up service.
type ServiceConfig struct {
	Bootstrapper Bootstrapper
	TreeUploader TreeUploader
	Executor     Executor
	// FS is the local tree, used to find the entry file.
	FS      fs.FS
	Printer printer.Printer
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Bootstrapper == nil {
		return fmt.Errorf("bootstrapper is required")
	}
	if c.TreeUploader == nil {
		return fmt.Errorf("tree uploader is required")
	}
	if c.Executor == nil {
		return fmt.Errorf("executor is required")
	}
	if c.FS == nil {
		return fmt.Errorf("fs is required")
	}
	if c.Printer == nil {
		return fmt.Errorf("printer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Up"})
	return nil
}

// Service creates a workspace from the local tree and runs it.
type Service struct {
	bootstrapper Bootstrapper
	uploader     TreeUploader
	executor     Executor
	fs           fs.FS
	printer      printer.Printer
	logger       log.Logger
}

// NewService creates a new up service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		bootstrapper: cfg.Bootstrapper,
		uploader:     cfg.TreeUploader,
		executor:     cfg.Executor,
		fs:           cfg.FS,
		printer:      cfg.Printer,
		logger:       cfg.Logger,
	}, nil
}

// Request contains the parameters of a run.
type Request struct {
	// EntryFile is the file to evaluate, relative to the tree root. Defaults to index.js.
	EntryFile string
}

// Run bootstraps a workspace, uploads the tree and runs the entry file if present.
// Any failure aborts the remaining steps.
func (s *Service) Run(ctx context.Context, req Request) (*model.Report, error) {
	if req.EntryFile == "" {
		req.EntryFile = DefaultEntryFile
	}

	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"run-id": ulid.Make().String()})
	logger := s.logger.WithCtxValues(ctx)

	// 1. Workspace.
	s.printer.Start("Getting workspace")
	ws, err := s.bootstrapper.Bootstrap(ctx)
	if err != nil {
		s.printer.Fail()
		return nil, fmt.Errorf("could not get workspace: %w", err)
	}
	s.printer.Succeed()
	s.printer.Info(fmt.Sprintf("Workspace %s at %s", ws.ID, ws.URL.String()))
	logger.Infof("Workspace %s created at %s", ws.ID, ws.URL.String())

	// 2. Upload.
	s.printer.Start("Uploading files")
	sum, err := s.uploader.Upload(ctx, ws.ID)
	if err != nil {
		s.printer.Fail()
		return nil, fmt.Errorf("could not upload files: %w", err)
	}
	s.printer.Succeed()
	s.printer.Info(printer.UploadSummary(sum.Files, sum.Bytes))

	report := &model.Report{Workspace: *ws}

	// 3. Execution, only if there is something to run.
	code, err := fs.ReadFile(s.fs, req.EntryFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.printer.Warn(fmt.Sprintf("No %s found, skipping execution", req.EntryFile))
			logger.Warningf("Entry file %q missing, upload only", req.EntryFile)
			return report, nil
		}
		return nil, fmt.Errorf("could not read entry file %q: %w", req.EntryFile, err)
	}

	s.printer.Start("Running " + req.EntryFile)
	res, err := s.executor.Run(ctx, *ws, string(code))
	if err != nil {
		s.printer.Fail()
		return nil, fmt.Errorf("could not run %q: %w", req.EntryFile, err)
	}
	s.printer.Succeed()

	if res.IdleTimeout {
		logger.Debugf("Run finished by idle timeout")
	}
	if res.PortOpened {
		logger.Infof("Port opened, web endpoint at %s", ws.WebURL())
	}

	report.Executed = true
	report.Result = res

	return report, nil
}
