package up_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/replup/internal/app/up"
	"github.com/slok/replup/internal/app/up/upmock"
	"github.com/slok/replup/internal/log"
	"github.com/slok/replup/internal/model"
	"github.com/slok/replup/internal/printer"
	"github.com/slok/replup/internal/upload"
)

func workspace() *model.Workspace {
	u, _ := url.Parse("https://repl.it/repls/AbCd")
	return &model.Workspace{ID: "0123456789abcdef0123456789abcdef", URL: *u}
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    up.ServiceConfig
		expErr bool
		errMsg string
	}{
		"Valid config with all fields": {
			cfg: up.ServiceConfig{
				Bootstrapper: &upmock.MockBootstrapper{},
				TreeUploader: &upmock.MockTreeUploader{},
				Executor:     &upmock.MockExecutor{},
				FS:           fstest.MapFS{},
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &bytes.Buffer{}}),
				Logger:       log.Noop,
			},
		},
		"Missing bootstrapper returns error": {
			cfg: up.ServiceConfig{
				TreeUploader: &upmock.MockTreeUploader{},
				Executor:     &upmock.MockExecutor{},
				FS:           fstest.MapFS{},
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &bytes.Buffer{}}),
			},
			expErr: true,
			errMsg: "bootstrapper is required",
		},
		"Missing uploader returns error": {
			cfg: up.ServiceConfig{
				Bootstrapper: &upmock.MockBootstrapper{},
				Executor:     &upmock.MockExecutor{},
				FS:           fstest.MapFS{},
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &bytes.Buffer{}}),
			},
			expErr: true,
			errMsg: "tree uploader is required",
		},
		"Missing executor returns error": {
			cfg: up.ServiceConfig{
				Bootstrapper: &upmock.MockBootstrapper{},
				TreeUploader: &upmock.MockTreeUploader{},
				FS:           fstest.MapFS{},
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &bytes.Buffer{}}),
			},
			expErr: true,
			errMsg: "executor is required",
		},
		"Missing FS returns error": {
			cfg: up.ServiceConfig{
				Bootstrapper: &upmock.MockBootstrapper{},
				TreeUploader: &upmock.MockTreeUploader{},
				Executor:     &upmock.MockExecutor{},
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &bytes.Buffer{}}),
			},
			expErr: true,
			errMsg: "fs is required",
		},
		"Missing printer returns error": {
			cfg: up.ServiceConfig{
				Bootstrapper: &upmock.MockBootstrapper{},
				TreeUploader: &upmock.MockTreeUploader{},
				Executor:     &upmock.MockExecutor{},
				FS:           fstest.MapFS{},
			},
			expErr: true,
			errMsg: "printer is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := up.NewService(tt.cfg)

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

type mocks struct {
	boot *upmock.MockBootstrapper
	up   *upmock.MockTreeUploader
	exec *upmock.MockExecutor
}

func TestServiceRun(t *testing.T) {
	errWanted := errors.New("wanted")

	tests := map[string]struct {
		fs         fs.FS
		req        up.Request
		setupMocks func(m mocks)
		expReport  *model.Report
		expErr     error
		expOut     string
	}{
		"A tree with an entry file should be uploaded and run.": {
			fs: fstest.MapFS{"index.js": &fstest.MapFile{Data: []byte(`require("http")`)}},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(workspace(), nil)
				m.up.On("Upload", mock.Anything, workspace().ID).Once().Return(&upload.Summary{Files: 1, Bytes: 15}, nil)
				m.exec.On("Run", mock.Anything, *workspace(), `require("http")`).Once().Return(&model.ExecResult{PortOpened: true}, nil)
			},
			expReport: &model.Report{
				Workspace: *workspace(),
				Executed:  true,
				Result:    &model.ExecResult{PortOpened: true},
			},
			expOut: "- Getting workspace\n" +
				"✔ Getting workspace\n" +
				"ℹ Workspace 0123456789abcdef0123456789abcdef at https://repl.it/repls/AbCd\n" +
				"- Uploading files\n" +
				"✔ Uploading files\n" +
				"ℹ Uploaded 1 file (15 B)\n" +
				"- Running index.js\n" +
				"✔ Running index.js\n",
		},

		"A custom entry file should be the one run.": {
			fs: fstest.MapFS{
				"index.js":   &fstest.MapFile{Data: []byte("a")},
				"src/app.js": &fstest.MapFile{Data: []byte("b")},
			},
			req: up.Request{EntryFile: "src/app.js"},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(workspace(), nil)
				m.up.On("Upload", mock.Anything, workspace().ID).Once().Return(&upload.Summary{Files: 2, Bytes: 2}, nil)
				m.exec.On("Run", mock.Anything, *workspace(), "b").Once().Return(&model.ExecResult{IdleTimeout: true}, nil)
			},
			expReport: &model.Report{
				Workspace: *workspace(),
				Executed:  true,
				Result:    &model.ExecResult{IdleTimeout: true},
			},
		},

		"A tree without an entry file should only be uploaded.": {
			fs: fstest.MapFS{"README.md": &fstest.MapFile{Data: []byte("hi")}},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(workspace(), nil)
				m.up.On("Upload", mock.Anything, workspace().ID).Once().Return(&upload.Summary{Files: 1, Bytes: 2}, nil)
			},
			expReport: &model.Report{Workspace: *workspace()},
			expOut: "- Getting workspace\n" +
				"✔ Getting workspace\n" +
				"ℹ Workspace 0123456789abcdef0123456789abcdef at https://repl.it/repls/AbCd\n" +
				"- Uploading files\n" +
				"✔ Uploading files\n" +
				"ℹ Uploaded 1 file (2 B)\n" +
				"⚠ No index.js found, skipping execution\n",
		},

		"A bootstrap failure should abort the run.": {
			fs: fstest.MapFS{"index.js": &fstest.MapFile{Data: []byte("a")}},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(nil, errors.Join(model.ErrBootstrap, errWanted))
			},
			expErr: model.ErrBootstrap,
			expOut: "- Getting workspace\n✖ Getting workspace\n",
		},

		"An upload failure should abort the run before execution.": {
			fs: fstest.MapFS{"index.js": &fstest.MapFile{Data: []byte("a")}},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(workspace(), nil)
				m.up.On("Upload", mock.Anything, workspace().ID).Once().Return(nil, errors.Join(model.ErrUpload, errWanted))
			},
			expErr: model.ErrUpload,
		},

		"An execution failure should fail the run.": {
			fs: fstest.MapFS{"index.js": &fstest.MapFile{Data: []byte("a")}},
			setupMocks: func(m mocks) {
				m.boot.On("Bootstrap", mock.Anything).Once().Return(workspace(), nil)
				m.up.On("Upload", mock.Anything, workspace().ID).Once().Return(&upload.Summary{Files: 1, Bytes: 1}, nil)
				m.exec.On("Run", mock.Anything, *workspace(), "a").Once().Return(nil, errors.Join(model.ErrExecution, errWanted))
			},
			expErr: model.ErrExecution,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := mocks{
				boot: upmock.NewMockBootstrapper(t),
				up:   upmock.NewMockTreeUploader(t),
				exec: upmock.NewMockExecutor(t),
			}
			test.setupMocks(m)

			var out bytes.Buffer
			svc, err := up.NewService(up.ServiceConfig{
				Bootstrapper: m.boot,
				TreeUploader: m.up,
				Executor:     m.exec,
				FS:           test.fs,
				Printer:      printer.NewTerminalPrinter(printer.TerminalConfig{Out: &out, NoColor: true}),
			})
			require.NoError(err)

			report, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				assert.Nil(report)
			} else if assert.NoError(err) {
				assert.Equal(test.expReport, report)
			}
			if test.expOut != "" {
				assert.Equal(test.expOut, out.String())
			}
		})
	}
}
