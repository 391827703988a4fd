package replit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/slok/replup/internal/model"
)

type signedURLsJSON struct {
	URLsByAction struct {
		Write string `json:"write"`
	} `json:"urls_by_action"`
}

// WriteLocation obtains a one time signed URL that allows writing the file at relPath
// of the workspace. Locations must not be reused.
func (c *Client) WriteLocation(ctx context.Context, workspaceID, relPath string) (string, error) {
	u := fmt.Sprintf("%s/data/repls/signed_urls/%s/%s", c.baseURL, url.PathEscape(workspaceID), escapePath(relPath))

	data, err := c.doRead(ctx, http.MethodGet, u)
	if err != nil {
		return "", fmt.Errorf("requesting write location of %q: %w", relPath, err)
	}

	var su signedURLsJSON
	if err := json.Unmarshal(data, &su); err != nil {
		return "", fmt.Errorf("parsing write location of %q: %w", relPath, err)
	}
	if su.URLsByAction.Write == "" {
		return "", fmt.Errorf("missing write location of %q: %w", relPath, model.ErrNotValid)
	}

	return su.URLsByAction.Write, nil
}

// WriteFile overwrites the file behind a signed write URL with the raw content.
func (c *Client) WriteFile(ctx context.Context, writeURL string, content io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, writeURL, content)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if size >= 0 {
		req.ContentLength = size
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// UploadFile writes a workspace file, it gets a fresh write location and writes the
// content on it.
func (c *Client) UploadFile(ctx context.Context, workspaceID, relPath string, content io.Reader, size int64) error {
	writeURL, err := c.WriteLocation(ctx, workspaceID, relPath)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrUpload, err)
	}

	if err := c.WriteFile(ctx, writeURL, content, size); err != nil {
		return fmt.Errorf("%w: %q: %w", model.ErrUpload, relPath, err)
	}

	c.logger.Debugf("Uploaded %s (%d bytes)", relPath, size)
	return nil
}

// escapePath escapes each segment of a slash separated relative path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
