// Package simulated provides an in-memory wallet provider for development
// and tests. It is selected explicitly by configuration, never as a
// runtime fallback when a real wallet is missing.
package simulated

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/quickfund/quickfund-api/internal/spend"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// Provider simulates a wallet holding a universal account and a spending
// sub-account. It signs EIP-712 payloads with real ephemeral keys and
// tracks granted permissions, cumulative spend and revocations so the full
// permission lifecycle can run without a live wallet.
type Provider struct {
	mu         sync.Mutex
	keys       map[common.Address]*ecdsa.PrivateKey
	accounts   []common.Address
	perms      map[common.Hash]*grantedPermission
	rejectNext bool
	failStatus bool
	now        func() time.Time
}

type grantedPermission struct {
	permission spend.Permission
	spent      *big.Int
	revoked    bool
}

// New creates a simulated provider with a fresh universal account and
// sub-account.
func New() (*Provider, error) {
	p := &Provider{
		keys:  make(map[common.Address]*ecdsa.PrivateKey),
		perms: make(map[common.Hash]*grantedPermission),
		now:   time.Now,
	}
	for i := 0; i < 2; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		p.keys[addr] = key
		p.accounts = append(p.accounts, addr)
	}
	return p, nil
}

// UniversalAccount returns the simulated owner account.
func (p *Provider) UniversalAccount() common.Address { return p.accounts[0] }

// SubAccount returns the simulated spending account.
func (p *Provider) SubAccount() common.Address { return p.accounts[1] }

// RejectNextSignature makes the next signing request fail as if the user
// declined the wallet prompt.
func (p *Provider) RejectNextSignature() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejectNext = true
}

// FailPermissionStatus toggles failure of authoritative status queries so
// the local fallback path can be exercised.
func (p *Provider) FailPermissionStatus(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failStatus = fail
}

// SetNow overrides the provider's clock.
func (p *Provider) SetNow(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

// Request implements wallet.Provider.
func (p *Provider) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args, err := encodeArgs(params)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch method {
	case wallet.MethodRequestAccounts, wallet.MethodAccounts:
		return marshal(p.accounts)
	case wallet.MethodSignTypedData:
		return p.signTypedData(args)
	case wallet.MethodSendCalls:
		return p.sendCalls(args)
	case wallet.MethodFetchPermissions:
		return p.fetchPermissions(args)
	case wallet.MethodFetchPermissionStatus:
		return p.fetchPermissionStatus(args)
	default:
		return nil, fmt.Errorf("simulated wallet does not support %s", method)
	}
}

func (p *Provider) signTypedData(args []json.RawMessage) (json.RawMessage, error) {
	if p.rejectNext {
		p.rejectNext = false
		return nil, wallet.ErrUserRejected
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("eth_signTypedData_v4 expects [address, typedData]")
	}

	var addrHex string
	if err := json.Unmarshal(args[0], &addrHex); err != nil {
		return nil, fmt.Errorf("invalid signer address: %w", err)
	}
	key, ok := p.keys[common.HexToAddress(addrHex)]
	if !ok {
		return nil, fmt.Errorf("unknown account %s", addrHex)
	}

	var typedData apitypes.TypedData
	if err := json.Unmarshal(args[1], &typedData); err != nil {
		return nil, fmt.Errorf("invalid typed data: %w", err)
	}
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	signature, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	signature[crypto.RecoveryIDOffset] += 27

	if typedData.PrimaryType == "SpendPermission" {
		if err := p.registerGrant(typedData, common.BytesToHash(digest), signature); err != nil {
			return nil, err
		}
	}

	return marshal(hexutil.Encode(signature))
}

// registerGrant records a signed permission so later fetch/status/spend
// calls see it, mirroring what the real protocol indexer does.
func (p *Provider) registerGrant(typedData apitypes.TypedData, hash common.Hash, signature []byte) error {
	msg := typedData.Message

	allowance, err := messageBig(msg, "allowance")
	if err != nil {
		return err
	}
	salt, err := messageBig(msg, "salt")
	if err != nil {
		return err
	}
	period, err := messageBig(msg, "period")
	if err != nil {
		return err
	}
	start, err := messageBig(msg, "start")
	if err != nil {
		return err
	}
	end, err := messageBig(msg, "end")
	if err != nil {
		return err
	}
	chainID := (*big.Int)(typedData.Domain.ChainId)

	p.perms[hash] = &grantedPermission{
		permission: spend.Permission{
			PermissionHash: hash,
			Account:        messageAddress(msg, "account"),
			Spender:        messageAddress(msg, "spender"),
			Token:          messageAddress(msg, "token"),
			ChainID:        chainID.Uint64(),
			Allowance:      allowance,
			Period:         period.Uint64(),
			Start:          start.Uint64(),
			End:            end.Uint64(),
			Salt:           salt,
			ExtraData:      hexutil.Bytes{},
			Signature:      signature,
		},
		spent: new(big.Int),
	}
	return nil
}

func (p *Provider) sendCalls(args []json.RawMessage) (json.RawMessage, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("wallet_sendCalls expects a single batch")
	}
	var batch wallet.SendCallsParams
	if err := json.Unmarshal(args[0], &batch); err != nil {
		return nil, fmt.Errorf("invalid call batch: %w", err)
	}
	if len(batch.Calls) == 0 {
		return nil, fmt.Errorf("empty call batch")
	}

	// The batch is atomic: validate every call before applying any effect.
	for _, call := range batch.Calls {
		if hash, amount, ok := spend.DecodeSpendCall(call); ok {
			if err := p.checkSpend(hash, amount, batch.From); err != nil {
				return nil, err
			}
		}
	}
	for _, call := range batch.Calls {
		if hash, amount, ok := spend.DecodeSpendCall(call); ok {
			p.perms[hash].spent.Add(p.perms[hash].spent, amount)
			continue
		}
		if hash, ok := spend.DecodeRevokeCall(call); ok {
			if granted, found := p.perms[hash]; found {
				granted.revoked = true
			}
		}
	}

	id := make([]byte, 32)
	if _, err := rand.Read(id); err != nil {
		return nil, err
	}
	return marshal(map[string]string{"id": hexutil.Encode(id)})
}

func (p *Provider) checkSpend(hash common.Hash, amount *big.Int, from common.Address) error {
	granted, ok := p.perms[hash]
	if !ok {
		return fmt.Errorf("unknown permission %s", hash.Hex())
	}
	if granted.revoked {
		return fmt.Errorf("permission %s is revoked", hash.Hex())
	}
	if granted.permission.Spender != from {
		return fmt.Errorf("permission %s does not authorize %s", hash.Hex(), from.Hex())
	}
	if !granted.permission.ActiveAt(p.now()) {
		return fmt.Errorf("permission %s is outside its validity window", hash.Hex())
	}
	remaining := new(big.Int).Sub(granted.permission.Allowance, granted.spent)
	if amount.Cmp(remaining) > 0 {
		return fmt.Errorf("spend %s exceeds remaining allowance %s", amount.String(), remaining.String())
	}
	return nil
}

type fetchQuery struct {
	Account common.Address `json:"account"`
	ChainID uint64         `json:"chainId"`
	Spender common.Address `json:"spender"`
}

func (p *Provider) fetchPermissions(args []json.RawMessage) (json.RawMessage, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("fetchPermissions expects a single query")
	}
	var query fetchQuery
	if err := json.Unmarshal(args[0], &query); err != nil {
		return nil, fmt.Errorf("invalid fetch query: %w", err)
	}

	matches := []spend.Permission{}
	for _, granted := range p.perms {
		perm := granted.permission
		if granted.revoked || perm.Account != query.Account || perm.Spender != query.Spender || perm.ChainID != query.ChainID {
			continue
		}
		matches = append(matches, perm)
	}
	return marshal(matches)
}

func (p *Provider) fetchPermissionStatus(args []json.RawMessage) (json.RawMessage, error) {
	if p.failStatus {
		return nil, fmt.Errorf("status backend unavailable")
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("fetchPermissionStatus expects a single permission")
	}
	var perm spend.Permission
	if err := json.Unmarshal(args[0], &perm); err != nil {
		return nil, fmt.Errorf("invalid permission: %w", err)
	}

	status := spend.Status{RemainingSpend: new(big.Int)}
	granted, ok := p.perms[perm.PermissionHash]
	if ok && !granted.revoked && granted.permission.ActiveAt(p.now()) {
		status.IsActive = true
		status.RemainingSpend = new(big.Int).Sub(granted.permission.Allowance, granted.spent)
	}
	return marshal(status)
}

// encodeArgs normalizes the positional params into raw JSON values.
func encodeArgs(params interface{}) ([]json.RawMessage, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("params must be a positional array: %w", err)
	}
	return args, nil
}

func marshal(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func messageAddress(msg apitypes.TypedDataMessage, field string) common.Address {
	s, _ := msg[field].(string)
	return common.HexToAddress(s)
}

// messageBig parses an integer message field, which arrives either as a
// decimal string or a 0x-prefixed hex string after the JSON round trip.
func messageBig(msg apitypes.TypedDataMessage, field string) (*big.Int, error) {
	switch v := msg[field].(type) {
	case string:
		if strings.HasPrefix(v, "0x") {
			return hexutil.DecodeBig(v)
		}
		value, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer for %s: %q", field, v)
		}
		return value, nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("missing integer field %s", field)
	}
}
