package chainlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	dto "coinctl/internal/adapter/storage/chainlist/dto"
	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	domainRepo "coinctl/internal/domain/repository"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ domainRepo.ChainRepository = (*Repository)(nil)

// Repository implements ChainRepository for fetching data from the Chainlist source.
type Repository struct {
	client *fasthttp.Client
	url    string
	logger *zap.Logger
}

// NewRepository creates a new Chainlist repository instance.
func NewRepository(cfg config.ChainlistConfig, logger *zap.Logger) domainRepo.ChainRepository {
	return &Repository{
		client: &fasthttp.Client{},
		url:    cfg.URL,
		logger: logger.Named("ChainlistStorage"),
	}
}

// GetAllChains fetches the full list of chains from the configured Chainlist URL.
func (r *Repository) GetAllChains(ctx context.Context) ([]entity.Chain, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := 15 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	r.logger.Debug("Fetching chains from Chainlist", zap.String("url", r.url), zap.Duration("timeout", timeout))

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: failed to execute request to Chainlist: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		return nil, fmt.Errorf("%w: chainlist source reported not found (%s)", apperrors.ErrNotFound, r.url)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Debug("Chainlist returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("%w: chainlist returned status %d",
			apperrors.ErrExternalServiceFailure, resp.StatusCode(),
		)
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		var err error
		body, err = resp.BodyGunzip()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decompress chainlist response: %v",
				apperrors.ErrExternalServiceFailure, err,
			)
		}
	}

	var rawChains []dto.ChainRaw
	if err := json.Unmarshal(body, &rawChains); err != nil {
		r.logger.Debug("Failed to unmarshal Chainlist response",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: failed to parse chainlist response: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	chains := toDomainChains(rawChains, r.logger)
	r.logger.Debug("Fetched chains from Chainlist", zap.Int("raw", len(rawChains)), zap.Int("mapped", len(chains)))

	return chains, nil
}
