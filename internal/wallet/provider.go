package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Wallet RPC methods used by the application.
const (
	MethodRequestAccounts       = "eth_requestAccounts"
	MethodAccounts              = "eth_accounts"
	MethodSignTypedData         = "eth_signTypedData_v4"
	MethodSendCalls             = "wallet_sendCalls"
	MethodFetchPermissions      = "coinbase_fetchPermissions"
	MethodFetchPermissionStatus = "coinbase_fetchPermissionStatus"
)

var (
	// ErrUserRejected is returned when the owner declines a signature or
	// approval prompt in their wallet.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrProviderUnavailable is returned when no wallet provider is reachable.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
)

// userRejectedCode is the EIP-1193 error code for a declined request.
const userRejectedCode = 4001

// Provider is an EIP-1193 style request/response interface to a wallet.
// Implementations must honor context cancellation so an abandoned session
// does not leak a suspended call.
type Provider interface {
	Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
}

// Call is a single operation within an atomic call batch.
type Call struct {
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value,omitempty"`
	Data  hexutil.Bytes  `json:"data"`
}

// SendCallsParams is the wallet_sendCalls v2.0 payload.
type SendCallsParams struct {
	Version        string         `json:"version"`
	ChainID        hexutil.Uint64 `json:"chainId"`
	AtomicRequired bool           `json:"atomicRequired"`
	From           common.Address `json:"from"`
	Calls          []Call         `json:"calls"`
}

// sendCallsResult is the wallet_sendCalls response envelope.
type sendCallsResult struct {
	ID string `json:"id"`
}

// RequestAccounts prompts the wallet to connect and returns the account
// addresses. The first address is the universal account, the second (when
// present) the spending sub-account.
func RequestAccounts(ctx context.Context, p Provider) ([]common.Address, error) {
	return accounts(ctx, p, MethodRequestAccounts)
}

// Accounts returns the already-connected accounts without prompting.
func Accounts(ctx context.Context, p Provider) ([]common.Address, error) {
	return accounts(ctx, p, MethodAccounts)
}

func accounts(ctx context.Context, p Provider, method string) ([]common.Address, error) {
	raw, err := p.Request(ctx, method, []interface{}{})
	if err != nil {
		return nil, err
	}
	var addrs []common.Address
	if err := json.Unmarshal(raw, &addrs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts response: %w", err)
	}
	return addrs, nil
}

// SignTypedData asks the wallet to sign an EIP-712 payload with the given
// account and returns the signature bytes.
func SignTypedData(ctx context.Context, p Provider, account common.Address, typedData apitypes.TypedData) ([]byte, error) {
	payload, err := json.Marshal(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode typed data: %w", err)
	}

	raw, err := p.Request(ctx, MethodSignTypedData, []interface{}{account.Hex(), json.RawMessage(payload)})
	if err != nil {
		return nil, err
	}

	var sigHex string
	if err := json.Unmarshal(raw, &sigHex); err != nil {
		return nil, fmt.Errorf("failed to decode signature response: %w", err)
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return nil, fmt.Errorf("wallet returned malformed signature: %w", err)
	}
	return sig, nil
}

// SendCalls submits an atomic call batch and returns the wallet's
// correlation id for it.
func SendCalls(ctx context.Context, p Provider, params SendCallsParams) (string, error) {
	raw, err := p.Request(ctx, MethodSendCalls, []interface{}{params})
	if err != nil {
		return "", err
	}

	// Newer wallets return {"id": "0x..."}, older ones a bare string.
	var envelope sendCallsResult
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.ID != "" {
		return envelope.ID, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("failed to decode wallet_sendCalls response: %w", err)
	}
	return id, nil
}
