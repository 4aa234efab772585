package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
	"github.com/kadrio/clientkit/internal/common"
)

const defaultTimeout = 15 * time.Second

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	baseURL  string
	deviceID string
	http     *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewHTTPClient constructs a client for the given base URL. deviceID may be
// empty; when set it is sent on every request.
func NewHTTPClient(baseURL string, deviceID string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		deviceID: deviceID,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	data, err := c.call(ctx, http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return nil, err
	}
	return decodeLoginResult(data)
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	data, err := c.call(ctx, http.MethodPost, "/auth/register", "", req)
	if err != nil {
		return nil, err
	}
	return decodeLoginResult(data)
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.User, error) {
	data, err := c.call(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

func (c *HTTPClient) UserType(ctx context.Context, token string, id int64) ([]permission.RawModule, error) {
	data, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/user-types/%d", id), token, nil)
	if err != nil {
		return nil, err
	}
	return decodeUserTypeGrant(data)
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	data, err := c.call(ctx, http.MethodPost, "/auth/refresh", "", body)
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(data)
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/logout", token, nil)
	return err
}

// call performs one request and peels the response envelope, returning the
// envelope's data payload. All error mapping happens here.
func (c *HTTPClient) call(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+token)
	}
	if c.deviceID != "" {
		req.Header.Set(common.DeviceIDHeaderName, c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrorUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		// Status wins over an unreadable body.
		if err := statusError(resp.StatusCode, ""); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrorMalformedResponse, method, path, decodeErr)
	}

	if err := statusError(resp.StatusCode, env.Message); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

func statusError(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ServerError{Status: status, Message: message, sentinel: common.ErrorUnauthorized}
	case status == http.StatusNotFound:
		return &ServerError{Status: status, Message: message, sentinel: common.ErrorNotFound}
	case status >= 400:
		return &ServerError{Status: status, Message: message}
	default:
		return nil
	}
}
