package config

import (
	"fmt"
	"os"
	"strings"
)

// Default configuration values for the CLI client.
const (
	DefaultServerURL = "ws://localhost:8080"
	DefaultAPIBase   = "http://localhost:8000"
)

// Client holds CLI client configuration.
type Client struct {
	// ServerURL is the relay's websocket base URL (ws:// or wss://).
	ServerURL string

	// APIBase is the base URL of the collaborator services (translation,
	// correction, OCR, step execution).
	APIBase string
}

// Options carries CLI flag overrides for loading config.
type Options struct {
	ServerURL string
	APIBase   string
}

// Load reads client configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Client, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("PSEUDOCRONIC_SERVER")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = os.Getenv("PSEUDOCRONIC_API")
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}

	if !strings.HasPrefix(serverURL, "ws://") && !strings.HasPrefix(serverURL, "wss://") {
		return nil, fmt.Errorf("server URL must start with ws:// or wss://, got %q", serverURL)
	}

	return &Client{
		ServerURL: strings.TrimSuffix(serverURL, "/"),
		APIBase:   strings.TrimSuffix(apiBase, "/"),
	}, nil
}

// RoomURL returns the websocket endpoint for a room id and role.
func (c *Client) RoomURL(roomID, role string) string {
	return fmt.Sprintf("%s/ws/%s?role=%s", c.ServerURL, roomID, role)
}
