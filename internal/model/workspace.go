package model

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// WebURLTemplate is the subdomain template used to derive the web endpoint of a workspace.
const WebURLTemplate = "https://%s--five-nine.repl.co"

// Workspace is the remote project allocated for a run. It's immutable once created.
type Workspace struct {
	// ID is the opaque workspace identifier (lowercase hex like token).
	ID string
	// URL is the canonical location of the workspace.
	URL url.URL
}

// Validate validates the workspace.
func (w Workspace) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if w.URL.Host == "" {
		return fmt.Errorf("url is required: %w", ErrNotValid)
	}
	return nil
}

// Slug returns the last path segment of the workspace canonical URL.
func (w Workspace) Slug() string {
	p := strings.TrimSuffix(w.URL.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// WebURL derives the web facing URL of the workspace (e.g `https://repl.it/repls/AbCd`
// maps to `https://abcd--five-nine.repl.co`).
func (w Workspace) WebURL() string {
	return fmt.Sprintf(WebURLTemplate, strings.ToLower(w.Slug()))
}
