package lib

import (
	"errors"
	"io/fs"
	"time"

	"github.com/slok/replup/internal/model"
)

// Sentinel errors, one per step of a run.
var (
	// ErrNotValid is returned when the options are not valid.
	ErrNotValid = errors.New("not valid")
	// ErrBootstrap is returned when the workspace could not be allocated.
	ErrBootstrap = errors.New("bootstrap failed")
	// ErrUpload is returned when a file of the tree could not be uploaded.
	ErrUpload = errors.New("upload failed")
	// ErrToken is returned when the execution token could not be obtained.
	ErrToken = errors.New("token request failed")
	// ErrConnect is returned when the evaluation stream could not be established or broke.
	ErrConnect = errors.New("connection failed")
	// ErrExecution is returned when the platform reported an error while running the program.
	ErrExecution = errors.New("execution failed")
)

// UpOpts are the options of [Client.Up].
type UpOpts struct {
	// Dir is the local directory to upload.
	// Default: the current working directory. Ignored when FS is set.
	Dir string

	// FS is the tree to upload, it takes precedence over Dir.
	FS fs.FS

	// EntryFile is the file to run, relative to the tree root.
	// Default: index.js.
	EntryFile string

	// IdleTimeout is how long a run can go without a terminal event before it's
	// considered done.
	// Default: 8s.
	IdleTimeout time.Duration
}

// Result is the outcome of a successful [Client.Up].
type Result struct {
	// WorkspaceID is the platform identifier of the new REPL.
	WorkspaceID string
	// URL is the project URL of the new REPL.
	URL string
	// Executed is false when the tree had no entry file.
	Executed bool
	// PortOpened is true when the program opened a network port.
	PortOpened bool
	// IdleTimeout is true when the run ended because the program went idle.
	IdleTimeout bool
	// WebURL is the web endpoint of the REPL, only set when PortOpened is true.
	WebURL string
}

func fromInternalReport(r model.Report) *Result {
	res := &Result{
		WorkspaceID: r.Workspace.ID,
		URL:         r.Workspace.URL.String(),
		Executed:    r.Executed,
		WebURL:      r.WebURL(),
	}
	if r.Result != nil {
		res.PortOpened = r.Result.PortOpened
		res.IdleTimeout = r.Result.IdleTimeout
	}

	return res
}

var errorMappings = []struct {
	internal error
	public   error
}{
	{internal: model.ErrBootstrap, public: ErrBootstrap},
	{internal: model.ErrUpload, public: ErrUpload},
	{internal: model.ErrToken, public: ErrToken},
	{internal: model.ErrConnect, public: ErrConnect},
	{internal: model.ErrExecution, public: ErrExecution},
	{internal: model.ErrNotValid, public: ErrNotValid},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.internal) {
			return joinErrors(err, m.public)
		}
	}
	return err
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
