package axonius_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	axonius "github.com/axonius-community/go-axonius"
)

func TestNewClient(t *testing.T) {
	t.Run("success with required options", func(t *testing.T) {
		client, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
			axonius.WithAPIKey("key", "secret"),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, client.Devices)
		assert.NotNil(t, client.Users)
		assert.Equal(t, "https://axonius.example.com", client.BaseURL())
	})

	t.Run("error without base URL", func(t *testing.T) {
		_, err := axonius.NewClient(
			axonius.WithAPIKey("key", "secret"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, axonius.ErrNoBaseURL)
	})

	t.Run("error without credentials", func(t *testing.T) {
		_, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, axonius.ErrNoCredentials)
	})

	t.Run("error with partial credentials", func(t *testing.T) {
		_, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
			axonius.WithAPIKey("key", ""),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, axonius.ErrNoCredentials)
	})

	t.Run("success with all options", func(t *testing.T) {
		client, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
			axonius.WithAPIKey("key", "secret"),
			axonius.WithUserAgent("test-agent/1.0"),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("success with custom timeout", func(t *testing.T) {
		client, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
			axonius.WithAPIKey("key", "secret"),
			axonius.WithTimeout(60*time.Second),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("success with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{
			Timeout: 90 * time.Second,
		}
		client, err := axonius.NewClient(
			axonius.WithBaseURL("https://axonius.example.com"),
			axonius.WithAPIKey("key", "secret"),
			axonius.WithHTTPClient(customClient),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}
