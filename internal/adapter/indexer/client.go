package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	domainRepo "coinctl/internal/domain/repository"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ domainRepo.CoinIndexer = (*Client)(nil)

const headerAPIKey = "api-key"

// Client reads coin data from the indexer REST API.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates an indexer client for cfg.URL.
func NewClient(cfg config.IndexerConfig, logger *zap.Logger) domainRepo.CoinIndexer {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey.Reveal(),
		timeout: cfg.Timeout,
		logger:  logger.Named("CoinIndexer"),
	}
}

type response struct {
	status int
	body   []byte
	err    error
}

// GetCoin fetches a single coin. A missing token is not an error: Data.Zora20Token stays nil.
// Cancelling ctx returns immediately; the in-flight request is left to finish within its timeout.
func (c *Client) GetCoin(ctx context.Context, address string, chainID int64) (*entity.CoinResponse, error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	c.logger.Debug("Querying coin",
		zap.String("address", address),
		zap.Int64("chainId", chainID),
		zap.Duration("timeout", timeout),
	)

	done := make(chan response, 1)
	go func() {
		done <- c.query(address, chainID, timeout)
	}()

	var resp response
	select {
	case resp = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("coin query cancelled: %w", context.Cause(ctx))
	}

	if err := resp.err; err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("%w: coin query timed out after %v: %v", apperrors.ErrTimeout, timeout, err)
		}
		return nil, fmt.Errorf("%w: coin query failed: %v", apperrors.ErrExternalServiceFailure, err)
	}

	switch resp.status {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%w: indexer has no coin %s on chain %d", apperrors.ErrNotFound, address, chainID)
	default:
		c.logger.Debug("Indexer returned non-OK status",
			zap.Int("statusCode", resp.status),
			zap.ByteString("body", resp.body),
		)
		return nil, fmt.Errorf("%w: indexer returned status %d",
			apperrors.ErrExternalServiceFailure, resp.status,
		)
	}

	var data entity.CoinResponseData
	if err := json.Unmarshal(resp.body, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to parse indexer response: %v", apperrors.ErrExternalServiceFailure, err)
	}

	return &entity.CoinResponse{Data: data}, nil
}

func (c *Client) query(address string, chainID int64, timeout time.Duration) response {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/coin")
	req.URI().QueryArgs().Set("address", address)
	req.URI().QueryArgs().Set("chain", strconv.FormatInt(chainID, 10))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return response{err: err}
	}
	return response{status: resp.StatusCode(), body: append([]byte(nil), resp.Body()...)}
}
