package upload_test

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/replup/internal/model"
	"github.com/slok/replup/internal/upload"
	"github.com/slok/replup/internal/upload/uploadmock"
)

// recordingUploader stores every uploaded file content by path.
type recordingUploader struct {
	mu    sync.Mutex
	files map[string]string
}

func (r *recordingUploader) UploadFile(_ context.Context, _, relPath string, content io.Reader, _ int64) error {
	b, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.files == nil {
		r.files = map[string]string{}
	}
	r.files[relPath] = string(b)
	return nil
}

func (r *recordingUploader) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps := make([]string, 0, len(r.files))
	for p := range r.files {
		ps = append(ps, p)
	}
	sort.Strings(ps)
	return ps
}

// vanishingFS simulates entries removed between the directory listing and their stat.
type vanishingFS struct {
	fstest.MapFS
	gone map[string]bool
}

func (v vanishingFS) Stat(name string) (fs.FileInfo, error) {
	if v.gone[name] {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return v.MapFS.Stat(name)
}

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func TestNewTreeUploader(t *testing.T) {
	tests := map[string]struct {
		cfg    upload.TreeUploaderConfig
		expErr bool
	}{
		"Valid configuration should create the uploader.": {
			cfg: upload.TreeUploaderConfig{FS: fstest.MapFS{}, FileUploader: &recordingUploader{}},
		},

		"Missing FS should fail.": {
			cfg:    upload.TreeUploaderConfig{FileUploader: &recordingUploader{}},
			expErr: true,
		},

		"Missing file uploader should fail.": {
			cfg:    upload.TreeUploaderConfig{FS: fstest.MapFS{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			u, err := upload.NewTreeUploader(test.cfg)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
			}
		})
	}
}

func TestTreeUploaderUpload(t *testing.T) {
	tests := map[string]struct {
		fs         fs.FS
		expFiles   map[string]string
		expSummary upload.Summary
	}{
		"A flat tree should upload all its files.": {
			fs: fstest.MapFS{
				"index.js":     file(`console.log("hi")`),
				"package.json": file(`{}`),
			},
			expFiles: map[string]string{
				"index.js":     `console.log("hi")`,
				"package.json": `{}`,
			},
			expSummary: upload.Summary{Files: 2, Bytes: 19},
		},

		"A nested tree should upload files with their relative paths.": {
			fs: fstest.MapFS{
				"index.js":            file("a"),
				"src/lib/util.js":     file("bb"),
				"src/lib/deep/x/y.js": file("ccc"),
				"public/index.html":   file("dddd"),
			},
			expFiles: map[string]string{
				"index.js":            "a",
				"src/lib/util.js":     "bb",
				"src/lib/deep/x/y.js": "ccc",
				"public/index.html":   "dddd",
			},
			expSummary: upload.Summary{Files: 4, Bytes: 10},
		},

		"Ignored entries should never be uploaded at any depth.": {
			fs: fstest.MapFS{
				"index.js":                       file("a"),
				"package-lock.json":              file("lock"),
				"node_modules/left-pad/index.js": file("pad"),
				".git/HEAD":                      file("ref"),
				"src/node_modules/x.js":          file("x"),
				"src/yarn.lock":                  file("lock"),
				"src/app.js":                     file("app"),
			},
			expFiles: map[string]string{
				"index.js":   "a",
				"src/app.js": "app",
			},
			expSummary: upload.Summary{Files: 2, Bytes: 4},
		},

		"Empty directories should not upload anything.": {
			fs: fstest.MapFS{
				"empty": &fstest.MapFile{Mode: fs.ModeDir},
			},
			expFiles:   map[string]string{},
			expSummary: upload.Summary{},
		},

		"Entries that vanished while walking should be skipped.": {
			fs: vanishingFS{
				MapFS: fstest.MapFS{
					"index.js":  file("a"),
					"tmp.js":    file("tmp"),
					"gone/a.js": file("a"),
					"kept/b.js": file("b"),
				},
				gone: map[string]bool{"tmp.js": true, "gone": true},
			},
			expFiles: map[string]string{
				"index.js":  "a",
				"kept/b.js": "b",
			},
			expSummary: upload.Summary{Files: 2, Bytes: 2},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			rec := &recordingUploader{}
			u, err := upload.NewTreeUploader(upload.TreeUploaderConfig{
				FS:           test.fs,
				FileUploader: rec,
			})
			require.NoError(t, err)

			sum, err := u.Upload(context.Background(), "ws-id")
			require.NoError(t, err)

			expPaths := make([]string, 0, len(test.expFiles))
			for p := range test.expFiles {
				expPaths = append(expPaths, p)
			}
			sort.Strings(expPaths)

			assert.Equal(expPaths, rec.paths())
			for p, content := range test.expFiles {
				assert.Equal(content, rec.files[p])
			}
			assert.Equal(test.expSummary, *sum)
		})
	}
}

func TestTreeUploaderUploadFailure(t *testing.T) {
	tests := map[string]struct {
		fs   fstest.MapFS
		mock func(m *uploadmock.MockFileUploader)
	}{
		"A failing file should fail the whole upload.": {
			fs: fstest.MapFS{
				"a.js": file("a"),
				"b.js": file("b"),
			},
			mock: func(m *uploadmock.MockFileUploader) {
				m.On("UploadFile", mock.Anything, "ws-id", "a.js", mock.Anything, int64(1)).Maybe().Return(nil)
				m.On("UploadFile", mock.Anything, "ws-id", "b.js", mock.Anything, int64(1)).Once().Return(fmt.Errorf("%w: HTTP 500", model.ErrUpload))
			},
		},

		"A failing nested file should fail the whole upload.": {
			fs: fstest.MapFS{
				"a.js":     file("a"),
				"b.js":     file("b"),
				"dir/c.js": file("c"),
			},
			mock: func(m *uploadmock.MockFileUploader) {
				m.On("UploadFile", mock.Anything, "ws-id", "a.js", mock.Anything, int64(1)).Maybe().Return(nil)
				m.On("UploadFile", mock.Anything, "ws-id", "b.js", mock.Anything, int64(1)).Maybe().Return(nil)
				m.On("UploadFile", mock.Anything, "ws-id", "dir/c.js", mock.Anything, int64(1)).Once().Return(fmt.Errorf("%w: HTTP 403", model.ErrUpload))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := uploadmock.NewMockFileUploader(t)
			test.mock(m)

			u, err := upload.NewTreeUploader(upload.TreeUploaderConfig{FS: test.fs, FileUploader: m})
			require.NoError(t, err)

			_, err = u.Upload(context.Background(), "ws-id")
			assert.ErrorIs(t, err, model.ErrUpload)
		})
	}
}

func TestTreeUploaderCustomIgnore(t *testing.T) {
	rec := &recordingUploader{}
	u, err := upload.NewTreeUploader(upload.TreeUploaderConfig{
		FS: fstest.MapFS{
			"index.js":  file("a"),
			"secret.js": file("b"),
		},
		FileUploader: rec,
		Ignore:       func(name string) bool { return name == "secret.js" },
	})
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "ws-id")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js"}, rec.paths())
}
