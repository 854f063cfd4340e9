package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrGraphAPI = errors.New("microsoft graph API error")

const (
	defaultGraphURL     = "https://graph.microsoft.com/v1.0"
	defaultGraphTimeout = 30 * time.Second
)

// graphItem is one drive item as returned by the Graph children endpoint.
type graphItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	WebURL string `json:"webUrl"`
	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
}

// graphClient is a minimal Microsoft Graph client covering the OneDrive
// children listing Droply needs.
type graphClient struct {
	baseURL    string
	httpClient *http.Client
}

func newGraphClient() *graphClient {
	return &graphClient{
		baseURL:    defaultGraphURL,
		httpClient: &http.Client{Timeout: defaultGraphTimeout},
	}
}

// ListChildren lists the children of a OneDrive folder. folderID "root"
// addresses the drive root.
func (c *graphClient) ListChildren(ctx context.Context, accessToken, folderID string) ([]graphItem, error) {
	path := "/me/drive/items/" + url.PathEscape(folderID) + "/children"
	if folderID == "root" {
		path = "/me/drive/root/children"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseGraphError(resp)
	}

	var parsed struct {
		Value []graphItem `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	return parsed.Value, nil
}

func parseGraphError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("%w: status %d", ErrGraphAPI, resp.StatusCode)
	}

	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrGraphAPI, resp.StatusCode, parsed.Error.Message)
	}

	return fmt.Errorf("%w: status %d", ErrGraphAPI, resp.StatusCode)
}
