package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// File is one document known to the assistant.
type File struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// UploadFile streams one document to the assistant for ingestion. The
// provider handles conversion, chunking and indexing.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) (*File, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	url := fmt.Sprintf("%s/assistant/files/%s", c.baseURL, c.assistant)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, errors.Wrap(err, "build upload request")
	}
	httpReq.Header.Set("Api-Key", c.apiKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "upload file")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("assistant returned %s: %s", resp.Status, readErrorBody(resp.Body))
	}
	f := &File{}
	if err := json.NewDecoder(resp.Body).Decode(f); err != nil {
		return nil, errors.Wrap(err, "decode upload response")
	}
	return f, nil
}

// ListFiles returns the documents currently held by the assistant.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	url := fmt.Sprintf("%s/assistant/files/%s", c.baseURL, c.assistant)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build list request")
	}
	httpReq.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "list files")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("assistant returned %s: %s", resp.Status, readErrorBody(resp.Body))
	}
	var payload struct {
		Files []File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode file list")
	}
	return payload.Files, nil
}

// DeleteFile removes one document from the assistant.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	url := fmt.Sprintf("%s/assistant/files/%s/%s", c.baseURL, c.assistant, fileID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return errors.Wrap(err, "build delete request")
	}
	httpReq.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "delete file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.Errorf("assistant returned %s: %s", resp.Status, readErrorBody(resp.Body))
	}
	return nil
}
