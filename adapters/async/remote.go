package async

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/upb/employee-management/adapters"
)

// remoteClient posts one request per employee to {endpoint}/tasks/{task}
type remoteClient struct {
	base   string
	client *http.Client
}

func newRemoteClient(endpoint string, client *http.Client) (*remoteClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint: %q", endpoint)
	}
	return &remoteClient{base: strings.TrimRight(endpoint, "/"), client: client}, nil
}

func (c *remoteClient) task(name string) TaskFunc {
	return func(ctx context.Context, employeeID string) (map[string]any, error) {
		body, err := json.Marshal(map[string]string{"employee_id": employeeID})
		if err != nil {
			return nil, err
		}

		target := c.base + "/tasks/" + url.PathEscape(name)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, adapters.NewOperationError(adapters.CategoryAsync, Provider, "remote_status",
				fmt.Sprintf("%s returned %d", target, resp.StatusCode),
				resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests, nil)
		}

		out := map[string]any{}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("malformed response from %s: %w", target, err)
			}
		}
		if _, ok := out["employee_id"]; !ok {
			out["employee_id"] = employeeID
		}
		return out, nil
	}
}
