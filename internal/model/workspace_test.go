package model_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/replup/internal/model"
)

func mustURL(t *testing.T, s string) url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return *u
}

func TestWorkspaceWebURL(t *testing.T) {
	tests := map[string]struct {
		url     string
		expSlug string
		expURL  string
	}{
		"A canonical repl URL should be lower cased into the web subdomain.": {
			url:     "https://repl.it/repls/AbCd",
			expSlug: "AbCd",
			expURL:  "https://abcd--five-nine.repl.co",
		},

		"A trailing slash should be ignored.": {
			url:     "https://repl.it/repls/FlawedLemonchiffonExam/",
			expSlug: "FlawedLemonchiffonExam",
			expURL:  "https://flawedlemonchiffonexam--five-nine.repl.co",
		},

		"Query and fragments should not be part of the slug.": {
			url:     "https://repl.it/@someone/QuietRiver?lang=nodejs#main",
			expSlug: "QuietRiver",
			expURL:  "https://quietriver--five-nine.repl.co",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			ws := model.Workspace{ID: "0123456789abcdef0123456789abcdef", URL: mustURL(t, test.url)}

			assert.Equal(test.expSlug, ws.Slug())
			assert.Equal(test.expURL, ws.WebURL())
		})
	}
}

func TestWorkspaceValidate(t *testing.T) {
	tests := map[string]struct {
		ws     model.Workspace
		expErr bool
	}{
		"A workspace with id and URL should be valid.": {
			ws:     model.Workspace{ID: "0123456789abcdef0123456789abcdef", URL: mustURL(t, "https://repl.it/repls/AbCd")},
			expErr: false,
		},

		"A workspace without id should fail.": {
			ws:     model.Workspace{URL: mustURL(t, "https://repl.it/repls/AbCd")},
			expErr: true,
		},

		"A workspace without URL should fail.": {
			ws:     model.Workspace{ID: "0123456789abcdef0123456789abcdef"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.ws.Validate()
			if test.expErr {
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportWebURL(t *testing.T) {
	ws := model.Workspace{ID: "0123456789abcdef0123456789abcdef", URL: mustURL(t, "https://repl.it/repls/AbCd")}

	tests := map[string]struct {
		report model.Report
		expURL string
	}{
		"Upload only runs should not have a web URL.": {
			report: model.Report{Workspace: ws},
			expURL: "",
		},

		"Runs without an opened port should not have a web URL.": {
			report: model.Report{Workspace: ws, Executed: true, Result: &model.ExecResult{IdleTimeout: true}},
			expURL: "",
		},

		"Runs with an opened port should have a web URL.": {
			report: model.Report{Workspace: ws, Executed: true, Result: &model.ExecResult{PortOpened: true}},
			expURL: "https://abcd--five-nine.repl.co",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expURL, test.report.WebURL())
		})
	}
}
