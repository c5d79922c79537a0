package axonius

import (
	"net/http"
	"time"

	"github.com/axonius-community/go-axonius/internal/api"
	"github.com/axonius-community/go-axonius/internal/auth"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// Client is the Axonius API client.
type Client struct {
	// Devices provides access to device asset operations.
	Devices AssetService

	// Users provides access to user asset operations.
	Users AssetService

	transport *api.Transport
}

// NewClient creates a new Axonius client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	if cfg.apiKey == "" || cfg.apiSecret == "" {
		return nil, ErrNoCredentials
	}

	creds := &auth.Credentials{
		Key:    cfg.apiKey,
		Secret: cfg.apiSecret,
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	transport, err := api.NewTransport(cfg.baseURL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}

	client := &Client{
		transport: transport,
	}

	// Initialize services
	client.Devices = newAssetService(transport, AssetDevices)
	client.Users = newAssetService(transport, AssetUsers)

	return client, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}
