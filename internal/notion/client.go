package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
)

// Client issues page creation and block append calls. It never retries.
type Client struct {
	client  *http.Client
	token   string
	baseURL string
	version string
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithVersion(v string) ClientOption {
	return func(c *Client) {
		if v = strings.TrimSpace(v); v != "" {
			c.version = v
		}
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.client = h
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:   token,
		baseURL: DefaultBaseURL,
		version: DefaultVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type parentRef struct {
	PageID string `json:"page_id"`
}

type titleText struct {
	Text TextContent `json:"text"`
}

type pageProperties struct {
	Title []titleText `json:"title"`
}

type createPageRequest struct {
	Parent     parentRef      `json:"parent"`
	Properties pageProperties `json:"properties"`
	Children   []Object       `json:"children"`
}

type appendRequest struct {
	Children []Object `json:"children"`
}

// Page is the part of the creation response the publisher consumes.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a child page of parentID titled title, carrying children.
func (c *Client) CreatePage(ctx context.Context, parentID, title string, children []Object) (*Page, error) {
	payload := createPageRequest{
		Parent:     parentRef{PageID: parentID},
		Properties: pageProperties{Title: []titleText{{Text: TextContent{Content: title}}}},
		Children:   nonNil(children),
	}

	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/pages", payload)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode page response: %w", err)
	}
	if strings.TrimSpace(page.ID) == "" {
		return nil, fmt.Errorf("page response has no id")
	}
	return &page, nil
}

// AppendChildren appends children to the block (or page) blockID.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []Object) error {
	_, err := c.do(ctx, http.MethodPatch, c.baseURL+"/blocks/"+blockID+"/children", appendRequest{Children: nonNil(children)})
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func nonNil(objs []Object) []Object {
	if objs == nil {
		return []Object{}
	}
	return objs
}
