// Package protocol talks to the coin issuance protocol: the coin indexer,
// the deployer relay and the trade relay.
package protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/structures"
)

const (
	DefaultTimeout = 15 * time.Second
	apiKeyHeader   = "api-key"
	maxBodySize    = 1 << 20
)

type IndexerInterface interface {
	GetCoin(ctx context.Context, address string) (*Coin, error)
}

type DeployerInterface interface {
	CreateCoin(ctx context.Context, params CreateCoinParams) (*Deployment, error)
}

type TraderInterface interface {
	SubmitTrade(ctx context.Context, descriptor models.TradeDescriptor) (*models.TradeReceipt, error)
}

type ClientInterface interface {
	IndexerInterface
	DeployerInterface
	TraderInterface
}

type Client struct {
	apiUrl      string
	deployerUrl string
	tradeUrl    string
	apiKey      string
	chainID     int64
	client      *http.Client
	metrics     providers.MetricsProviderInterface
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, opts ...ClientOption) *Client {
	timeout := conf.Protocol.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if conf.Protocol.ApiKey == "" {
		logger.Warnf(providers.TypeApp, "Protocol API key is not set, indexer requests are unauthenticated")
	}

	c := &Client{
		apiUrl:      strings.TrimRight(conf.Protocol.ApiUrl, "/"),
		deployerUrl: strings.TrimRight(conf.Protocol.DeployerUrl, "/"),
		tradeUrl:    strings.TrimRight(conf.Protocol.TradeUrl, "/"),
		apiKey:      conf.Protocol.ApiKey,
		chainID:     conf.Platform.ChainID,
		client:      &http.Client{Timeout: timeout},
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// do sends a JSON request and decodes a 2xx response into out. Transport
// failures are KindNetwork; error responses are classified from their body.
func (c *Client) do(ctx context.Context, op, method, url string, payload, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(op, err != nil, time.Since(start)) }()

	var body io.Reader
	if payload != nil {
		b, mErr := json.Marshal(payload)
		if mErr != nil {
			return fmt.Errorf("%s: marshal request: %w", op, mErr)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(op, resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidRecord, err)
	}
	return nil
}

func decodeError(op string, status int, body []byte) *Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == nil {
		msg := strings.TrimSpace(string(body))
		kind := Classify("", msg)
		if kind == KindUnknown && status >= 500 {
			kind = KindNetwork
		}
		return &Error{Kind: kind, Op: op, Status: status, Message: msg}
	}
	// code is either a string or a number (e.g. 4001)
	code := strings.Trim(string(eb.Error.Code), `"`)
	return &Error{
		Kind:    Classify(code, eb.Error.Message),
		Op:      op,
		Status:  status,
		Code:    code,
		Message: eb.Error.Message,
	}
}

// IsNotFound reports whether err means the indexer has no record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
