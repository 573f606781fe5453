package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultClientID is the OAuth App Client ID for contriblens. This is public
// and safe to commit; the device flow needs no client secret.
//
// To use your own OAuth App, set GITHUB_CLIENT_ID.
const DefaultClientID = "Ov23liTn4KcVXq2dR9mA"

const oauthScopes = "read:user user:email"

// OAuthClient drives the GitHub device authorization flow.
type OAuthClient struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
}

// OAuthOption configures an OAuthClient.
type OAuthOption func(*OAuthClient)

// WithOAuthBaseURL overrides the github.com base URL.
func WithOAuthBaseURL(u string) OAuthOption { return func(c *OAuthClient) { c.baseURL = u } }

// NewOAuthClient creates an OAuth client. An empty clientID falls back to
// DefaultClientID.
func NewOAuthClient(clientID string, opts ...OAuthOption) *OAuthClient {
	if clientID == "" {
		clientID = DefaultClientID
	}
	c := &OAuthClient{
		clientID:   clientID,
		baseURL:    "https://github.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceCodeResponse contains the response from requesting a device code.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// RequestDeviceCode initiates the device authorization flow. The user must
// visit the VerificationURI and enter the UserCode.
func (c *OAuthClient) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	data := url.Values{
		"client_id": {c.clientID},
		"scope":     {oauthScopes},
	}

	var result DeviceCodeResponse
	if err := c.postForm(ctx, "/login/device/code", data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PollForToken polls GitHub for the access token after user authorization.
// It respects the interval from the device code response and backs off on
// slow_down. Returns the token when authorized, or an error if the code
// expired or access was denied.
func (c *OAuthClient) PollForToken(ctx context.Context, deviceCode string, interval int) (*OAuthToken, error) {
	if interval < 5 {
		interval = 5 // GitHub minimum
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			token, err := c.checkDeviceToken(ctx, deviceCode)
			if err != nil {
				if strings.Contains(err.Error(), "authorization_pending") {
					continue
				}
				if strings.Contains(err.Error(), "slow_down") {
					ticker.Reset(time.Duration(interval+5) * time.Second)
					continue
				}
				return nil, err
			}
			return token, nil
		}
	}
}

// checkDeviceToken attempts to exchange the device code for a token.
func (c *OAuthClient) checkDeviceToken(ctx context.Context, deviceCode string) (*OAuthToken, error) {
	data := url.Values{
		"client_id":   {c.clientID},
		"device_code": {deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}

	var result struct {
		OAuthToken
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	if err := c.postForm(ctx, "/login/oauth/access_token", data, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%s: %s", result.Error, result.ErrorDesc)
	}
	return &result.OAuthToken, nil
}

func (c *OAuthClient) postForm(ctx context.Context, path string, data url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AuthenticatedUser fetches the profile behind the client's credential.
func (c *Client) AuthenticatedUser(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/user", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
