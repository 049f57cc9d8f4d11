package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/logger"
)

// RPCProvider talks JSON-RPC to a wallet endpoint. Signature prompts are
// approved by a human, so no timeout is imposed here beyond what the
// caller's context carries.
type RPCProvider struct {
	client *rpc.Client
	logger *zap.Logger
}

// DialRPC connects to a wallet provider endpoint.
func DialRPC(ctx context.Context, url string) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &RPCProvider{client: client, logger: logger.Log}, nil
}

// Request performs a single JSON-RPC round trip against the wallet.
func (p *RPCProvider) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	var result json.RawMessage

	// Positional params spread into individual RPC arguments.
	args, ok := params.([]interface{})
	if !ok {
		args = []interface{}{params}
	}

	start := time.Now()
	err := p.client.CallContext(ctx, &result, method, args...)
	if err != nil {
		p.logger.Debug("Wallet request failed",
			zap.String("method", method),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, p.translateError(err)
	}

	return result, nil
}

// translateError maps EIP-1193 error codes onto the package sentinels so
// callers can branch on kind rather than provider-specific payloads.
func (p *RPCProvider) translateError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.ErrorCode() == userRejectedCode {
			return fmt.Errorf("%w: %v", ErrUserRejected, err)
		}
		return err
	}
	// Transport-level failures mean the wallet is not reachable.
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// Close releases the underlying RPC connection.
func (p *RPCProvider) Close() {
	p.client.Close()
}
