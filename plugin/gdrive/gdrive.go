// Package gdrive reads documents out of a Google Drive folder so they can
// be uploaded to the assistant. It talks to the Drive v3 REST API directly
// with an oauth2-authorized HTTP client.
package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const baseURL = "https://www.googleapis.com/drive/v3"

// Google-native document types have no byte content and must be exported.
var exportFormats = map[string]struct {
	MimeType  string
	Extension string
}{
	"application/vnd.google-apps.document":     {"application/pdf", ".pdf"},
	"application/vnd.google-apps.spreadsheet":  {"text/csv", ".csv"},
	"application/vnd.google-apps.presentation": {"application/pdf", ".pdf"},
}

// File is one entry in a Drive folder listing.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Client wraps an authorized Drive HTTP client.
type Client struct {
	client *http.Client
}

// NewClient builds a Drive client from an OAuth installed-app credentials
// file and a cached token file. When no cached token exists the user is
// walked through the browser consent flow on stdin/stdout and the token is
// saved for next time.
func NewClient(ctx context.Context, credentialsPath, tokenPath string) (*Client, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, errors.Wrap(err, "read credentials file")
	}
	config, err := google.ConfigFromJSON(raw, "https://www.googleapis.com/auth/drive.readonly")
	if err != nil {
		return nil, errors.Wrap(err, "parse credentials file")
	}

	token, err := tokenFromFile(tokenPath)
	if err != nil {
		token, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, token); err != nil {
			return nil, err
		}
	}
	return &Client{client: config.Client(ctx, token)}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the link in your browser and paste the authorization code:\n%s\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, errors.Wrap(err, "read authorization code")
	}
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange authorization code")
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "save oauth token")
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// ListFolder returns the non-trashed files directly under the given folder.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
	query.Set("fields", "files(id, name, mimeType)")
	query.Set("pageSize", "1000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/files?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list drive folder")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("list drive folder: status %d", resp.StatusCode)
	}

	var listing struct {
		Files []File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, errors.Wrap(err, "decode drive listing")
	}
	return listing.Files, nil
}

// Download fetches a file's content into dir and returns the local path.
// Google-native documents are exported to a portable format; anything else
// is downloaded as is.
func (c *Client) Download(ctx context.Context, file File, dir string) (string, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media", baseURL, url.PathEscape(file.ID))
	name := file.Name
	if format, ok := exportFormats[file.MimeType]; ok {
		endpoint = fmt.Sprintf("%s/files/%s/export?mimeType=%s",
			baseURL, url.PathEscape(file.ID), url.QueryEscape(format.MimeType))
		name += format.Extension
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "download %s", file.Name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("download %s: status %d", file.Name, resp.StatusCode)
	}

	path := fmt.Sprintf("%s/%s", dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
