// Package ipfs pins documents to a Pinata-compatible pinning service and
// reads them back through an HTTP gateway.
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"zoblogs/internal/providers"
	"zoblogs/internal/structures"
)

const (
	URIScheme      = "ipfs://"
	DefaultTimeout = 30 * time.Second

	pinJSONPath = "/pinning/pinJSONToIPFS"
	pinFilePath = "/pinning/pinFileToIPFS"

	// maxDocumentSize caps gateway reads.
	maxDocumentSize = 4 << 20
)

var ErrEmptyCid = errors.New("pinning service returned no CID")

type ClientInterface interface {
	PinJSON(ctx context.Context, name string, content any) (string, error)
	PinFile(ctx context.Context, name, contentType string, data []byte) (string, error)
	FetchJSON(ctx context.Context, uri string, out any) error
}

type Client struct {
	pinningUrl string
	jwt        string
	gateway    string
	client     *http.Client
	metrics    providers.MetricsProviderInterface
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

func NewClient(conf *structures.Config, metrics providers.MetricsProviderInterface, opts ...ClientOption) *Client {
	timeout := conf.Storage.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		pinningUrl: strings.TrimRight(conf.Storage.PinningUrl, "/"),
		jwt:        conf.Storage.Jwt,
		gateway:    strings.TrimRight(conf.Storage.Gateway, "/"),
		client:     &http.Client{Timeout: timeout},
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pinMetadata struct {
	Name string `json:"name"`
}

type pinJSONRequest struct {
	PinataContent  any         `json:"pinataContent"`
	PinataMetadata pinMetadata `json:"pinataMetadata"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinJSON pins content as a JSON document and returns its CID.
func (c *Client) PinJSON(ctx context.Context, name string, content any) (string, error) {
	body, err := json.Marshal(pinJSONRequest{
		PinataContent:  content,
		PinataMetadata: pinMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("marshal pin request: %w", err)
	}
	return c.pin(ctx, "pin_json", pinJSONPath, "application/json", body)
}

// PinFile uploads data as a multipart file and returns its CID.
func (c *Client) PinFile(ctx context.Context, name, contentType string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(fileHeader(name, contentType))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}

	meta, err := json.Marshal(pinMetadata{Name: name})
	if err != nil {
		return "", fmt.Errorf("marshal pin metadata: %w", err)
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("write metadata field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	return c.pin(ctx, "pin_file", pinFilePath, w.FormDataContentType(), buf.Bytes())
}

func (c *Client) pin(ctx context.Context, operation, path, contentType string, body []byte) (cid string, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(operation, err != nil, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pinningUrl+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("read pin response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pinning service status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var pr pinResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return "", fmt.Errorf("unmarshal pin response: %w", err)
	}
	if pr.IpfsHash == "" {
		return "", ErrEmptyCid
	}
	return pr.IpfsHash, nil
}

// GatewayURL turns a CID, an ipfs:// URI or an http(s) URL into a fetchable URL.
func (c *Client) GatewayURL(uri string) string {
	switch {
	case strings.HasPrefix(uri, URIScheme):
		return c.gateway + "/ipfs/" + strings.TrimPrefix(uri, URIScheme)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return uri
	default:
		return c.gateway + "/ipfs/" + uri
	}
}

// FetchJSON reads the document at uri through the gateway into out.
func (c *Client) FetchJSON(ctx context.Context, uri string, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("gateway_fetch", err != nil, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GatewayURL(uri), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway status %d for %s", resp.StatusCode, uri)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", uri, err)
	}
	return nil
}

// URI formats cid as an ipfs:// URI.
func URI(cid string) string {
	return URIScheme + cid
}
