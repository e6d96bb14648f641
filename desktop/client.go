package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Client talks to the Gridball REST API and websocket endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for a server base URL such as http://localhost:8080
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(data))
		}
	}
	return nil
}

// CreateSession starts a session on a level; an empty id uses the server default
func (c *Client) CreateSession(configID string) (*SessionInfo, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var info SessionInfo
	if err := c.call("POST", "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	log.Printf("Created new session: %s (level: %s)", info.ID, info.ConfigName)
	return &info, nil
}

// ListSessions returns the server's sessions, most recently used first
func (c *Client) ListSessions() ([]SessionInfo, error) {
	var resp struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := c.call("GET", "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// ListConfigs returns the available levels
func (c *Client) ListConfigs() ([]ConfigInfo, error) {
	var configs []ConfigInfo
	if err := c.call("GET", "/api/configs", nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// State fetches a session's current game state
func (c *Client) State(sessionID string) (*GameState, error) {
	var state GameState
	if err := c.call("GET", "/api/sessions/"+sessionID+"/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Click sends a pointer click on a grid cell. The server runs the move to
// completion so the response holds the settled state.
func (c *Client) Click(sessionID, button string, column, row int) (*ActionResult, error) {
	body := map[string]interface{}{
		"button": button,
		"column": column,
		"row":    row,
		"settle": true,
	}
	var result ActionResult
	if err := c.call("POST", "/api/sessions/"+sessionID+"/click", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EndTurn hands control to the enemy
func (c *Client) EndTurn(sessionID string) (*ActionResult, error) {
	var result ActionResult
	if err := c.call("POST", "/api/sessions/"+sessionID+"/end-turn", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reset restarts the session's level
func (c *Client) Reset(sessionID string) (*GameState, error) {
	var resp struct {
		State *GameState `json:"state"`
	}
	if err := c.call("POST", "/api/sessions/"+sessionID+"/reset", nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// Dial opens the session's websocket
func (c *Client) Dial(sessionID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: u.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	log.Printf("WebSocket connected for session %s", sessionID)
	return conn, nil
}
