package spend

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ManagerAddress is the spend permission manager contract the typed-data
// domain binds signatures to.
var ManagerAddress = common.HexToAddress("0xf85210B21cC50302F477BA56686d2019dC9b67Ad")

const (
	domainName    = "Spend Permission Manager"
	domainVersion = "1"

	grantPrimaryType  = "SpendPermission"
	revokePrimaryType = "RevokeSpendPermission"
)

func domain(chainID uint64) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              domainName,
		Version:           domainVersion,
		ChainId:           math.NewHexOrDecimal256(int64(chainID)),
		VerifyingContract: ManagerAddress.Hex(),
	}
}

var eip712DomainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

var grantType = []apitypes.Type{
	{Name: "account", Type: "address"},
	{Name: "spender", Type: "address"},
	{Name: "token", Type: "address"},
	{Name: "allowance", Type: "uint160"},
	{Name: "period", Type: "uint48"},
	{Name: "start", Type: "uint48"},
	{Name: "end", Type: "uint48"},
	{Name: "salt", Type: "uint256"},
	{Name: "extraData", Type: "bytes"},
}

var revokeType = []apitypes.Type{
	{Name: "permissionHash", Type: "bytes32"},
	{Name: "account", Type: "address"},
}

// GrantTypedData builds the EIP-712 payload the owner signs to grant a
// permission.
func GrantTypedData(p Permission) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":    eip712DomainType,
			grantPrimaryType: grantType,
		},
		PrimaryType: grantPrimaryType,
		Domain:      domain(p.ChainID),
		Message: apitypes.TypedDataMessage{
			"account":   p.Account.Hex(),
			"spender":   p.Spender.Hex(),
			"token":     p.Token.Hex(),
			"allowance": (*math.HexOrDecimal256)(new(big.Int).Set(p.Allowance)),
			"period":    (*math.HexOrDecimal256)(new(big.Int).SetUint64(p.Period)),
			"start":     (*math.HexOrDecimal256)(new(big.Int).SetUint64(p.Start)),
			"end":       (*math.HexOrDecimal256)(new(big.Int).SetUint64(p.End)),
			"salt":      (*math.HexOrDecimal256)(new(big.Int).Set(p.Salt)),
			"extraData": hexutil.Encode(p.ExtraData),
		},
	}
}

// RevokeTypedData builds the EIP-712 payload the owner signs to revoke a
// granted permission.
func RevokeTypedData(chainID uint64, permissionHash common.Hash, account common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":     eip712DomainType,
			revokePrimaryType: revokeType,
		},
		PrimaryType: revokePrimaryType,
		Domain:      domain(chainID),
		Message: apitypes.TypedDataMessage{
			"permissionHash": permissionHash.Hex(),
			"account":        account.Hex(),
		},
	}
}

// HashPermission derives the permission's content hash, the EIP-712 digest
// of its grant payload. The hash is the permission's identity everywhere:
// in the store, in spend call data, and in revocations.
func HashPermission(p Permission) (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(GrantTypedData(p))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash permission: %w", err)
	}
	return common.BytesToHash(digest), nil
}
