// Package assistant is the HTTP client for the managed conversation
// provider: retrieval-augmented chat over the documents uploaded to a named
// assistant. The provider's retrieval, ranking and chunking are opaque; this
// client only moves prompts, replies and thread identifiers.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// requestTimeout bounds every provider round-trip. The provider specifies no
// client-side timeout of its own; without one a slow reply would block the
// caller indefinitely.
const requestTimeout = 30 * time.Second

// Client talks to one named assistant.
type Client struct {
	baseURL   string
	apiKey    string
	assistant string
	client    *http.Client
}

// NewClient creates a client for the assistant hosted at baseURL.
func NewClient(baseURL, apiKey, assistant string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		assistant: assistant,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	ThreadID string        `json:"thread_id,omitempty"`
}

type chatResponse struct {
	Message  chatMessage `json:"message"`
	ThreadID string      `json:"thread_id,omitempty"`
}

// Chat sends one prompt. An empty threadID asks the provider for a fresh
// thread; the returned newThreadID is non-empty only when the provider
// minted one for this call.
func (c *Client) Chat(ctx context.Context, prompt, threadID string) (reply, newThreadID string, err error) {
	reqBody := chatRequest{
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		ThreadID: threadID,
	}
	var resp chatResponse
	if err := c.post(ctx, fmt.Sprintf("/assistant/chat/%s", c.assistant), reqBody, &resp); err != nil {
		return "", "", err
	}
	if resp.Message.Content == "" {
		return "", "", errors.New("empty reply from assistant")
	}
	if threadID == "" {
		newThreadID = resp.ThreadID
	}
	return resp.Message.Content, newThreadID, nil
}

// CreateThread asks the provider for a new conversation thread up front.
// Callers treat failure as non-fatal and fall back to lazy binding.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, fmt.Sprintf("/assistant/threads/%s", c.assistant), struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("provider returned no thread id")
	}
	return resp.ID, nil
}

// post sends a JSON request and decodes a JSON response.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	bodyBytes, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Api-Key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "assistant request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("assistant returned %s: %s", resp.Status, readErrorBody(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode assistant response")
	}
	return nil
}

// readErrorBody returns a truncated error payload for diagnostics.
func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}
