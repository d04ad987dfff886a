// Package chat is a thin client for the external conversational-agent API
// backing the site's chat widget. The API is treated as opaque: the client
// fetches the configured agent's identity and relays single messages.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Agent identifies the remote conversational agent shown in the widget.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the agent API over HTTPS.
type Client struct {
	baseURL string
	apiKey  string
	agentID string
	http    *http.Client
}

// NewClient creates a Client for the agent API at baseURL. apiKey is sent
// as a bearer token; agentID selects which agent answers the widget.
func NewClient(baseURL, apiKey, agentID string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		agentID: agentID,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Agent fetches the configured agent's identity.
func (c *Client) Agent(ctx context.Context) (Agent, error) {
	var agent Agent
	err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(c.agentID), nil, &agent)
	if err != nil {
		return Agent{}, err
	}
	if agent.ID == "" {
		agent.ID = c.agentID
	}
	return agent, nil
}

// Send relays a single user message to the agent and returns its reply.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	req := struct {
		Message string `json:"message"`
	}{Message: message}
	var resp struct {
		Response string `json:"response"`
	}
	path := "/agents/" + url.PathEscape(c.agentID) + "/chat"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("chat: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("chat: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the error message, but never echo
		// the whole upstream response.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("chat: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("chat: decode response: %w", err)
		}
	}
	return nil
}
