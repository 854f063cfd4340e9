// Package imagekit is a thin client for the ImageKit media API, covering the
// two things Droply needs from its object store: purging uploaded objects
// and signing browser-side upload requests.
package imagekit

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyPrivateKey = errors.New("imagekit private key is required")
	ErrImageKitAPI     = errors.New("imagekit API error")
)

const (
	defaultAPIURL  = "https://api.imagekit.io/v1"
	defaultTimeout = 30 * time.Second

	// uploadAuthTTL bounds how long a signed upload ticket stays usable.
	uploadAuthTTL = 30 * time.Minute

	maxRetries = 3
	retryDelay = 500 * time.Millisecond
)

// Client talks to the ImageKit media API.
type Client struct {
	publicKey  string
	privateKey string
	apiURL     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new ImageKit client.
func NewClient(publicKey, privateKey string, opts ...Option) (*Client, error) {
	if privateKey == "" {
		return nil, ErrEmptyPrivateKey
	}

	c := &Client{
		publicKey:  publicKey,
		privateKey: privateKey,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// DeleteObject permanently removes an uploaded object by its ImageKit file
// id. Deleting an object that is already gone returns nil, matching the
// idempotent-delete semantics of the row deletes it runs alongside.
func (c *Client) DeleteObject(ctx context.Context, remoteID string) error {
	if remoteID == "" {
		return fmt.Errorf("%w: empty file id", ErrImageKitAPI)
	}

	resp, err := c.makeRequest(ctx, http.MethodDelete, "/files/"+remoteID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// UploadAuth is the set of signed parameters the browser attaches to a
// direct-to-ImageKit upload.
type UploadAuth struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// UploadAuthParams mints a fresh single-use upload ticket. The signature is
// an HMAC-SHA1 of token+expire under the private key, per the ImageKit
// client-side upload contract.
func (c *Client) UploadAuthParams() UploadAuth {
	token := uuid.NewString()
	expire := time.Now().Add(uploadAuthTTL).Unix()

	mac := hmac.New(sha1.New, []byte(c.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))

	return UploadAuth{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}

// makeRequest sends one API call, retrying rate limits and server errors
// with exponential backoff. Retries are safe here: every call this client
// makes is idempotent.
func (c *Client) makeRequest(ctx context.Context, method, path string, reqBody io.Reader) (*http.Response, error) {
	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request failed: %w", err)
		}

		// The media API authenticates with the private key as a basic-auth
		// username and an empty password.
		req.SetBasicAuth(c.privateKey, "")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			// Object already gone; treat as success.
			return resp, nil
		}

		if retryable(resp.StatusCode) && attempt < maxRetries {
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay << attempt):
			}
			continue
		}

		break
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, parseError(resp)
	}

	return resp, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func parseError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("%w: status %d", ErrImageKitAPI, resp.StatusCode)
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrImageKitAPI, resp.StatusCode, parsed.Message)
	}

	return fmt.Errorf("%w: status %d", ErrImageKitAPI, resp.StatusCode)
}
