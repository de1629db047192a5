// Package release publishes tagged builds: it creates a GitHub release
// record for a version tag and uploads each platform archive as an asset.
package release

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrInvalidRepo = errors.New("invalid repository: expected owner/name")

// Client is a minimal GitHub Releases API client.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	uploadURL  string
}

// NewClient creates a release client authenticating with token.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL:   "https://api.github.com",
		uploadURL: "https://uploads.github.com",
	}
}

// Release is the subset of the release record the publisher needs.
type Release struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	Draft   bool   `json:"draft"`
	HTMLURL string `json:"html_url"`
}

type createReleaseRequest struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	Draft   bool   `json:"draft"`
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, repo)
	}
	return parts[0], parts[1], nil
}

// CreateOrUpdate creates the release record for tag, or updates the body
// of an existing record with the same tag.
func (c *Client) CreateOrUpdate(ctx context.Context, repo, tag, name, body string, draft bool) (*Release, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	if rel, err := c.getByTag(ctx, owner, repoName, tag); err == nil && rel != nil {
		return c.update(ctx, owner, repoName, rel.ID, name, body)
	}

	reqBody, err := json.Marshal(createReleaseRequest{TagName: tag, Name: name, Body: body, Draft: draft})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/repos/%s/%s/releases", c.baseURL, owner, repoName)
	var rel Release
	if err := c.doJSON(ctx, http.MethodPost, u, reqBody, http.StatusCreated, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *Client) getByTag(ctx context.Context, owner, repoName, tag string) (*Release, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repoName, url.PathEscape(tag))
	var rel Release
	if err := c.doJSON(ctx, http.MethodGet, u, nil, http.StatusOK, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *Client) update(ctx context.Context, owner, repoName string, id int64, name, body string) (*Release, error) {
	reqBody, err := json.Marshal(map[string]string{"name": name, "body": body})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/repos/%s/%s/releases/%d", c.baseURL, owner, repoName, id)
	var rel Release
	if err := c.doJSON(ctx, http.MethodPatch, u, reqBody, http.StatusOK, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// UploadAsset attaches the archive at path to the release.
func (c *Client) UploadAsset(ctx context.Context, repo string, releaseID int64, path string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading asset: %w", err)
	}
	name := filepath.Base(path)
	u := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets?name=%s",
		c.uploadURL, owner, repoName, releaseID, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	req.Header.Set("Content-Type", ct)
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, u string, body []byte, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(b))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
