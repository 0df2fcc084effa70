package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	domainService "coinctl/internal/domain/service"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ domainService.RPCChecker = (*Checker)(nil)

// Checker implements the domainService.RPCChecker interface.
type Checker struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker creates a new RPC checker instance.
func NewChecker(cfg config.CheckerConfig, logger *zap.Logger) domainService.RPCChecker {
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		client: &fasthttp.Client{
			ReadTimeout: timeout,
		},
		timeout: timeout,
		logger:  logger.Named("RPCChecker"),
	}
}

// chainIDPayload asks the node which chain it serves.
var chainIDPayload = []byte(`{"jsonrpc":"2.0","method":"eth_chainId","params":[],"id":1}`)

// JSONRPCResponse defines the basic structure for a JSON-RPC response.
type JSONRPCResponse struct {
	ID      interface{}     `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure for a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CheckRPC probes rpcURL with eth_chainId over the transport its scheme selects.
// The returned detail is filled in even when the check fails.
func (c *Checker) CheckRPC(ctx context.Context, rpcURL entity.RPCURL) (entity.RPCDetail, error) {
	detail := entity.RPCDetail{URL: rpcURL, Protocol: rpcURL.Protocol()}
	startTime := time.Now()

	var (
		body []byte
		err  error
	)
	switch detail.Protocol {
	case entity.ProtocolHTTP, entity.ProtocolHTTPS:
		body, err = c.callHTTP(ctx, rpcURL.String())
	case entity.ProtocolWS, entity.ProtocolWSS:
		body, err = c.callWS(ctx, rpcURL.String())
	default:
		c.logger.Warn("Skipping check for unsupported protocol", zap.String("url", rpcURL.String()))
		return detail, fmt.Errorf("%w: unsupported protocol in URL %s", apperrors.ErrInvalidInput, rpcURL)
	}
	detail.LatencyMs = time.Since(startTime).Milliseconds()
	if err != nil {
		return detail, err
	}

	chainID, err := c.parseChainID(rpcURL.String(), body)
	if err != nil {
		return detail, err
	}

	detail.ChainID = chainID
	detail.IsWorking = true
	return detail, nil
}

// callHTTP performs the JSON-RPC call over HTTP/HTTPS.
func (c *Checker) callHTTP(ctx context.Context, rpcURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(chainIDPayload)

	timeout := c.effectiveTimeout(ctx)

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			c.logger.Debug("HTTP RPC check timed out",
				zap.String("url", rpcURL),
				zap.Duration("timeout", timeout),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: http request to %s timed out after %v: %v",
				apperrors.ErrTimeout, rpcURL, timeout, err,
			)
		}
		c.logger.Debug("HTTP RPC check request failed", zap.String("url", rpcURL), zap.Error(err))
		return nil, fmt.Errorf("%w: http request to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Debug("HTTP RPC check returned non-OK status",
			zap.String("url", rpcURL),
			zap.Int("statusCode", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: rpc %s returned non-OK http status: %d",
			apperrors.ErrExternalServiceFailure, rpcURL, resp.StatusCode(),
		)
	}

	return append([]byte(nil), resp.Body()...), nil
}

// callWS performs the JSON-RPC call over WS/WSS.
func (c *Checker) callWS(ctx context.Context, rpcURL string) ([]byte, error) {
	timeout := c.effectiveTimeout(ctx)
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	c.logger.Debug("Attempting WS connection", zap.String("url", rpcURL), zap.Duration("handshakeTimeout", timeout))

	conn, _, err := dialer.DialContext(ctx, rpcURL, nil)
	if err != nil {
		c.logger.Debug("WS dial failed", zap.String("url", rpcURL), zap.Error(err))
		return nil, wsError(ctx, "dial", rpcURL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, chainIDPayload); err != nil {
		c.logger.Debug("WS write message failed", zap.String("url", rpcURL), zap.Error(err))
		return nil, wsError(ctx, "write", rpcURL, err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.logger.Debug("WS read message failed", zap.String("url", rpcURL), zap.Error(err))
		return nil, wsError(ctx, "read", rpcURL, err)
	}

	c.logger.Debug("WS received response", zap.String("url", rpcURL), zap.ByteString("body", message))
	return message, nil
}

func wsError(ctx context.Context, op, rpcURL string, err error) error {
	if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
		return fmt.Errorf("%w: ws %s %s timed out: %v", apperrors.ErrTimeout, op, rpcURL, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: ws %s %s timed out: %v", apperrors.ErrTimeout, op, rpcURL, err)
	}
	return fmt.Errorf("%w: ws %s %s failed: %v", apperrors.ErrExternalServiceFailure, op, rpcURL, err)
}

// effectiveTimeout caps the configured timeout by the context deadline.
func (c *Checker) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// parseChainID validates the JSON-RPC envelope and decodes the hex chain id result.
func (c *Checker) parseChainID(rpcURL string, body []byte) (int64, error) {
	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		c.logger.Debug("RPC check failed to unmarshal JSON response",
			zap.String("url", rpcURL),
			zap.ByteString("body", body),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: rpc %s returned invalid JSON response: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	if rpcResp.Error != nil {
		c.logger.Debug("RPC check returned JSON-RPC error",
			zap.String("url", rpcURL),
			zap.Int("errorCode", rpcResp.Error.Code),
			zap.String("errorMessage", rpcResp.Error.Message),
		)
		return 0, fmt.Errorf("%w: rpc %s returned json-rpc error: %d %s",
			apperrors.ErrExternalServiceFailure, rpcURL, rpcResp.Error.Code, rpcResp.Error.Message,
		)
	}

	if rpcResp.Jsonrpc != "2.0" || rpcResp.Result == nil {
		return 0, fmt.Errorf("%w: rpc %s returned invalid JSON-RPC structure",
			apperrors.ErrExternalServiceFailure, rpcURL,
		)
	}

	var hexID string
	if err := json.Unmarshal(rpcResp.Result, &hexID); err != nil {
		return 0, fmt.Errorf("%w: rpc %s returned non-string chain id: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}
	chainID, err := hexutil.DecodeUint64(hexID)
	if err != nil {
		return 0, fmt.Errorf("%w: rpc %s returned malformed chain id %q: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, hexID, err,
		)
	}

	return int64(chainID), nil
}
