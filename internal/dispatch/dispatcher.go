package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// ErrDispatch wraps a provider failure while submitting a prepared batch.
var ErrDispatch = errors.New("call batch dispatch failed")

// Dispatcher submits prepared call batches atomically from a designated
// sending account. It never retries: resubmitting a signed atomic batch is
// not safely idempotent, so retries are a caller decision.
type Dispatcher struct {
	provider wallet.Provider
	chainID  uint64
	logger   *zap.Logger
}

// New creates a dispatcher bound to the configured chain.
func New(provider wallet.Provider, chainID uint64) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		chainID:  chainID,
		logger:   logger.Log,
	}
}

// SendCalls submits the calls as one atomic batch from the given account
// and returns the wallet's correlation id for it.
func (d *Dispatcher) SendCalls(ctx context.Context, from common.Address, calls []wallet.Call) (string, error) {
	if len(calls) == 0 {
		return "", fmt.Errorf("%w: empty call batch", ErrDispatch)
	}

	id, err := wallet.SendCalls(ctx, d.provider, wallet.SendCallsParams{
		Version:        "2.0",
		ChainID:        hexutil.Uint64(d.chainID),
		AtomicRequired: true,
		From:           from,
		Calls:          calls,
	})
	if err != nil {
		// Keep the user-rejection kind visible through the wrap.
		if errors.Is(err, wallet.ErrUserRejected) {
			return "", fmt.Errorf("%w: %w", ErrDispatch, err)
		}
		return "", fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	d.logger.Info("Call batch dispatched",
		zap.String("from", from.Hex()),
		zap.Int("calls", len(calls)),
		zap.String("calls_id", id))

	return id, nil
}
