package replit

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/slok/replup/internal/model"
)

// workspaceIDRegexp matches the first quoted `id` key followed by a quoted lowercase hex
// string of at least 30 characters.
var workspaceIDRegexp = regexp.MustCompile(`"id":"([a-f0-9-]{30,})"`)

// ExtractWorkspaceID scans a raw bootstrap response body and returns the first
// workspace identifier found. The body structure is ignored, only the first match counts.
func ExtractWorkspaceID(body []byte) (string, error) {
	m := workspaceIDRegexp.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no workspace id in response: %w", model.ErrBootstrap)
	}
	return string(m[1]), nil
}

// Bootstrap allocates a new anonymous workspace. It also sets the session cookies that
// every later request of the run relies on.
func (c *Client) Bootstrap(ctx context.Context) (*model.Workspace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+bootstrapPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// Non standard header name, sent as the web flow does.
	req.Header.Set("Referrer", bootstrapReferer)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrBootstrap, err)
	}
	defer resp.Body.Close()

	body, err := readAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrBootstrap, err)
	}

	id, err := ExtractWorkspaceID(body)
	if err != nil {
		return nil, err
	}

	// The request URL of the response is the final one after redirects.
	ws := &model.Workspace{
		ID:  id,
		URL: *resp.Request.URL,
	}
	c.logger.Debugf("Workspace %s allocated at %s", ws.ID, ws.URL.String())

	return ws, nil
}
