package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/vincent-petithory/dataurl"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain"
	"coinctl/internal/domain/entity"
	domainService "coinctl/internal/domain/service"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ domainService.MetadataValidator = (*Validator)(nil)

const (
	maxRedirects    = 5
	defaultMaxBytes = 1 << 20
)

var allowedContentTypes = map[string]struct{}{
	"application/json": {},
	"text/plain":       {},
}

// Validator resolves metadata URIs to content and checks it is usable coin metadata.
type Validator struct {
	client         *fasthttp.Client
	ipfsGateway    string
	arweaveGateway string
	timeout        time.Duration
	maxBytes       int
	logger         *zap.Logger
}

// NewValidator creates a metadata validator using the configured gateways and limits.
func NewValidator(cfg config.MetadataConfig, logger *zap.Logger) domainService.MetadataValidator {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Validator{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBytes,
		},
		ipfsGateway:    withTrailingSlash(cfg.IPFSGateway),
		arweaveGateway: withTrailingSlash(cfg.ArweaveGateway),
		timeout:        timeout,
		maxBytes:       maxBytes,
		logger:         logger.Named("MetadataValidator"),
	}
}

// ValidateContent fetches the document behind uri and checks the required metadata fields.
func (v *Validator) ValidateContent(ctx context.Context, uri entity.MetadataURI) (*entity.MetadataValidation, error) {
	result := &entity.MetadataValidation{URI: uri}

	var (
		body []byte
		err  error
	)
	if uri.Scheme() == "data:" {
		result.ResolvedURL = uri.String()
		body, result.ContentType, err = v.decodeDataURI(uri)
	} else {
		result.ResolvedURL, err = v.resolve(uri)
		if err != nil {
			return nil, err
		}
		body, result.ContentType, err = v.fetch(ctx, result.ResolvedURL)
	}
	if err != nil {
		return nil, err
	}

	if _, ok := allowedContentTypes[result.ContentType]; !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidMetadata, result.ContentType)
	}

	meta, err := parseMetadata(body)
	if err != nil {
		return nil, err
	}

	result.Metadata = meta
	result.Valid = true
	return result, nil
}

// resolve maps a content-addressed URI to a gateway URL.
func (v *Validator) resolve(uri entity.MetadataURI) (string, error) {
	raw := uri.String()
	switch uri.Scheme() {
	case "ipfs://":
		path := strings.TrimPrefix(strings.TrimPrefix(raw, "ipfs://"), "ipfs/")
		if path == "" {
			return "", fmt.Errorf("%w: empty ipfs path", domain.ErrInvalidMetadataURIFormat)
		}
		return v.ipfsGateway + path, nil
	case "ar://":
		id := strings.TrimPrefix(raw, "ar://")
		if id == "" {
			return "", fmt.Errorf("%w: empty arweave id", domain.ErrInvalidMetadataURIFormat)
		}
		return v.arweaveGateway + id, nil
	case "https://":
		return raw, nil
	}
	return "", fmt.Errorf("%w: must start with %s", domain.ErrInvalidMetadataURIFormat, entity.AllowedMetadataURIPrefixes())
}

// decodeDataURI accepts both the base64 form and the raw form with unescaped or percent-encoded payload.
func (v *Validator) decodeDataURI(uri entity.MetadataURI) ([]byte, string, error) {
	header, payload, found := strings.Cut(strings.TrimPrefix(uri.String(), "data:"), ",")
	if !found {
		return nil, "", fmt.Errorf("%w: malformed data URI: missing comma", domain.ErrInvalidMetadata)
	}

	var (
		data        []byte
		contentType string
	)
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(header)), ";base64") {
		decoded, err := dataurl.DecodeString(uri.String())
		if err != nil {
			return nil, "", fmt.Errorf("%w: malformed data URI: %v", domain.ErrInvalidMetadata, err)
		}
		data, contentType = decoded.Data, decoded.MediaType.ContentType()
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: malformed data URI: %v", domain.ErrInvalidMetadata, err)
		}
		data, contentType = []byte(unescaped), mediaType(header)
		if contentType == "" {
			contentType = "text/plain"
		}
	}

	if len(data) > v.maxBytes {
		return nil, "", fmt.Errorf("%w: data URI exceeds %d bytes", domain.ErrInvalidMetadata, v.maxBytes)
	}
	return data, contentType, nil
}

type fetchResult struct {
	status      int
	body        []byte
	contentType string
	err         error
}

// fetch runs the request off the caller's goroutine so that ctx cancellation returns immediately.
// The abandoned request still ends within its own timeout.
func (v *Validator) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	timeout := v.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	v.logger.Debug("Fetching metadata", zap.String("url", rawURL), zap.Duration("timeout", timeout))

	done := make(chan fetchResult, 1)
	go func() {
		done <- v.doFetch(rawURL, timeout)
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, "", fmt.Errorf("metadata fetch from %s cancelled: %w", rawURL, context.Cause(ctx))
	}

	if res.err != nil {
		switch {
		case errors.Is(res.err, errInsecureRedirect):
			return nil, "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidMetadata, rawURL, res.err)
		case errors.Is(res.err, fasthttp.ErrTimeout):
			return nil, "", fmt.Errorf("%w: metadata fetch from %s timed out: %v", apperrors.ErrTimeout, rawURL, res.err)
		case errors.Is(res.err, fasthttp.ErrBodyTooLarge):
			return nil, "", fmt.Errorf("%w: metadata at %s exceeds %d bytes", domain.ErrInvalidMetadata, rawURL, v.maxBytes)
		}
		return nil, "", fmt.Errorf("%w: metadata fetch from %s failed: %v", apperrors.ErrExternalServiceFailure, rawURL, res.err)
	}

	if res.status != fasthttp.StatusOK {
		return nil, "", fmt.Errorf("%w: metadata fetch from %s returned status %d",
			apperrors.ErrExternalServiceFailure, rawURL, res.status,
		)
	}

	return res.body, res.contentType, nil
}

var errInsecureRedirect = errors.New("redirect from https to a non-https location")

// doFetch follows up to maxRedirects redirects by hand. Once on https, it never leaves it.
func (v *Validator) doFetch(rawURL string, timeout time.Duration) fetchResult {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json, text/plain")
	req.SetTimeout(timeout)

	secure := string(req.URI().Scheme()) == "https"
	for redirects := 0; ; redirects++ {
		if err := v.client.Do(req, resp); err != nil {
			return fetchResult{err: err}
		}
		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}
		if redirects >= maxRedirects {
			return fetchResult{err: fasthttp.ErrTooManyRedirects}
		}

		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if len(location) == 0 {
			return fetchResult{err: fasthttp.ErrMissingLocation}
		}
		req.URI().UpdateBytes(location)
		next := req.URI().String()
		if secure && string(req.URI().Scheme()) != "https" {
			return fetchResult{err: fmt.Errorf("%w: %s", errInsecureRedirect, next)}
		}

		v.logger.Debug("Following metadata redirect", zap.String("location", next))
		req.SetRequestURI(next)
		resp.Reset()
	}

	return fetchResult{
		status:      resp.StatusCode(),
		body:        append([]byte(nil), resp.Body()...),
		contentType: mediaType(string(resp.Header.ContentType())),
	}
}

func parseMetadata(body []byte) (*entity.CoinMetadata, error) {
	var meta entity.CoinMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("%w: content is not a JSON object: %v", domain.ErrInvalidMetadata, err)
	}

	required := []struct {
		field string
		value string
	}{
		{"name", meta.Name},
		{"description", meta.Description},
		{"image", meta.Image},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidMetadata, r.field)
		}
	}

	if !entity.IsValidMetadataURI(meta.Image) {
		return nil, fmt.Errorf("%w: image must start with %s", domain.ErrInvalidMetadata, entity.AllowedMetadataURIPrefixes())
	}
	if meta.AnimationURL != "" && !entity.IsValidMetadataURI(meta.AnimationURL) {
		return nil, fmt.Errorf("%w: animation_url must start with %s", domain.ErrInvalidMetadata, entity.AllowedMetadataURIPrefixes())
	}
	if meta.Content != nil && meta.Content.URI != "" && !entity.IsValidMetadataURI(meta.Content.URI) {
		return nil, fmt.Errorf("%w: content.uri must start with %s", domain.ErrInvalidMetadata, entity.AllowedMetadataURIPrefixes())
	}

	return &meta, nil
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func withTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
