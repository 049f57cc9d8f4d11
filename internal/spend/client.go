package spend

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/currency"
	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// Client handles all interactions with the external delegation protocol:
// requesting grants, checking status, preparing spend calls and revoking.
type Client struct {
	provider wallet.Provider
	chainID  uint64
	store    *Store
	guard    *guard
	logger   *zap.Logger
	now      func() time.Time
}

// NewClient creates a permission protocol client for the configured chain.
func NewClient(provider wallet.Provider, chainID uint64, store *Store) *Client {
	return &Client{
		provider: provider,
		chainID:  chainID,
		store:    store,
		guard:    newGuard(),
		logger:   logger.Log,
		now:      time.Now,
	}
}

// Store exposes the session's permission store.
func (c *Client) Store() *Store {
	return c.store
}

// Lock acquires the per-permission mutex and returns its release function.
// Callers must hold it across any status-check-then-spend sequence.
func (c *Client) Lock(hash common.Hash) (unlock func()) {
	return c.guard.lock(hash)
}

// RequestPermission builds a delegation valid from now for periodInDays
// days, presents it to the owner's wallet for an EIP-712 signature, and
// returns the granted permission. Unsupported tokens are rejected before
// any signature prompt is shown.
func (c *Client) RequestPermission(ctx context.Context, account, spender, token common.Address, allowance *big.Int, periodInDays int) (Permission, error) {
	if _, err := currency.ByToken(token); err != nil {
		return Permission{}, err
	}
	if allowance == nil || allowance.Sign() <= 0 {
		return Permission{}, fmt.Errorf("allowance must be positive")
	}
	if periodInDays <= 0 {
		return Permission{}, fmt.Errorf("period must be at least one day")
	}

	salt, err := randomSalt()
	if err != nil {
		return Permission{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	now := uint64(c.now().Unix())
	period := uint64(periodInDays) * 86400
	permission := Permission{
		Account:   account,
		Spender:   spender,
		Token:     token,
		ChainID:   c.chainID,
		Allowance: new(big.Int).Set(allowance),
		Period:    period,
		Start:     now,
		End:       now + period,
		Salt:      salt,
		ExtraData: hexutil.Bytes{},
	}
	if err := permission.Validate(); err != nil {
		return Permission{}, err
	}

	hash, err := HashPermission(permission)
	if err != nil {
		return Permission{}, err
	}
	permission.PermissionHash = hash

	signature, err := wallet.SignTypedData(ctx, c.provider, account, GrantTypedData(permission))
	if err != nil {
		return Permission{}, fmt.Errorf("permission grant not signed: %w", err)
	}
	permission.Signature = signature

	c.store.Put(permission)
	c.logger.Info("Spend permission granted",
		zap.String("permission_hash", hash.Hex()),
		zap.String("account", account.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("allowance", allowance.String()),
		zap.Int("period_days", periodInDays))

	return permission, nil
}

// CheckStatus queries the authoritative protocol status for a permission.
// When the query fails it degrades to a local time-only check instead of
// failing the caller; the returned status is then marked approximate. The
// approximation ignores spend already consumed within the current period,
// so callers must not treat an approximate remaining allowance as exact.
func (c *Client) CheckStatus(ctx context.Context, p Permission) (Status, error) {
	raw, err := c.provider.Request(ctx, wallet.MethodFetchPermissionStatus, []interface{}{p})
	if err == nil {
		var status Status
		if jsonErr := json.Unmarshal(raw, &status); jsonErr == nil {
			if status.RemainingSpend == nil {
				status.RemainingSpend = new(big.Int)
			}
			return status, nil
		} else {
			err = jsonErr
		}
	}

	c.logger.Warn("Permission status query failed, using local time-only approximation",
		zap.String("permission_hash", p.PermissionHash.Hex()),
		zap.Error(fmt.Errorf("%w: %v", ErrStatusQueryFailed, err)))

	return c.localStatus(p), nil
}

// localStatus is the time-only fallback: active while within the validity
// window, with the full allowance reported as remaining.
func (c *Client) localStatus(p Permission) Status {
	status := Status{RemainingSpend: new(big.Int), Approximate: true}
	if p.ActiveAt(c.now()) {
		status.IsActive = true
		status.RemainingSpend = new(big.Int).Set(p.Allowance)
	}
	return status
}

// PrepareSpend produces the call batch that moves amount under the
// permission without executing it. A nil amount spends the full remaining
// allowance. With an explicit amount no status check is performed; the
// caller is expected to hold the permission's lock and to have verified
// the remaining allowance itself.
func (c *Client) PrepareSpend(ctx context.Context, p Permission, amount *big.Int) ([]wallet.Call, error) {
	if !p.Granted() {
		return nil, fmt.Errorf("%w: %s", ErrNotGranted, p.PermissionHash.Hex())
	}

	if amount == nil {
		status, err := c.CheckStatus(ctx, p)
		if err != nil {
			return nil, err
		}
		if !status.IsActive || status.RemainingSpend.Sign() <= 0 {
			return nil, fmt.Errorf("%w: nothing left to spend", ErrInsufficientAllowance)
		}
		amount = status.RemainingSpend
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("spend amount must be positive")
	}
	if amount.Cmp(p.Allowance) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds allowance %s", ErrInsufficientAllowance, amount.String(), p.Allowance.String())
	}

	return []wallet.Call{EncodeSpendCall(p.PermissionHash, amount)}, nil
}

// RequestRevoke asks the owner to sign a revocation over
// {permissionHash, account}, submits it, and returns the correlation id.
// Revoking an already-revoked permission is a protocol no-op but still
// requires a fresh signature.
func (c *Client) RequestRevoke(ctx context.Context, p Permission) (string, error) {
	unlock := c.guard.lock(p.PermissionHash)
	defer unlock()

	typedData := RevokeTypedData(c.chainID, p.PermissionHash, p.Account)
	if _, err := wallet.SignTypedData(ctx, c.provider, p.Account, typedData); err != nil {
		return "", fmt.Errorf("revocation not signed: %w", err)
	}

	id, err := wallet.SendCalls(ctx, c.provider, wallet.SendCallsParams{
		Version:        "2.0",
		ChainID:        hexutil.Uint64(c.chainID),
		AtomicRequired: true,
		From:           p.Account,
		Calls:          []wallet.Call{EncodeRevokeCall(p.PermissionHash)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit revocation: %w", err)
	}

	c.store.Remove(p.PermissionHash)
	c.logger.Info("Spend permission revoked",
		zap.String("permission_hash", p.PermissionHash.Hex()),
		zap.String("calls_id", id))

	return id, nil
}

// fetchPermissionsParams is the wire shape of the fetch query.
type fetchPermissionsParams struct {
	Account common.Address `json:"account"`
	ChainID uint64         `json:"chainId"`
	Spender common.Address `json:"spender"`
}

// FetchUserPermissions lists all delegations from account to spender on
// the configured chain, filtered to the supported token set, and
// repopulates the session store with the result.
func (c *Client) FetchUserPermissions(ctx context.Context, account, spender common.Address) ([]Permission, error) {
	raw, err := c.provider.Request(ctx, wallet.MethodFetchPermissions, []interface{}{
		fetchPermissionsParams{Account: account, ChainID: c.chainID, Spender: spender},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	var fetched []Permission
	if err := json.Unmarshal(raw, &fetched); err != nil {
		return nil, fmt.Errorf("failed to decode permissions response: %w", err)
	}

	kept := make([]Permission, 0, len(fetched))
	for _, p := range fetched {
		if !currency.IsSupported(p.Token) {
			continue
		}
		if err := p.Validate(); err != nil {
			c.logger.Warn("Dropping malformed permission from fetch result",
				zap.String("permission_hash", p.PermissionHash.Hex()),
				zap.Error(err))
			continue
		}
		kept = append(kept, p)
	}

	c.store.Replace(kept)
	return c.store.List(), nil
}

// randomSalt draws a fresh 256-bit uniqueness nonce.
func randomSalt() (*big.Int, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(buf), nil
}
