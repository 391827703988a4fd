package replit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/slok/replup/internal/model"
)

// ExecutionToken requests a short lived token that authenticates a single evaluation
// stream of the workspace.
func (c *Client) ExecutionToken(ctx context.Context, workspaceID string) (string, error) {
	u := fmt.Sprintf("%s/data/repls/%s/gen_repl_token", c.baseURL, url.PathEscape(workspaceID))

	data, err := c.doRead(ctx, http.MethodPost, u)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrToken, err)
	}

	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("%w: parsing token: %w", model.ErrToken, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty token", model.ErrToken)
	}

	return token, nil
}
