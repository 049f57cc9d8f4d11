package spend

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quickfund/quickfund-api/internal/wallet"
)

// 4-byte function selectors for the manager contract calls the spender
// submits. Derived from the canonical signatures, same as solidity would.
var (
	spendSelector  = crypto.Keccak256([]byte("spend(bytes32,uint160)"))[:4]
	revokeSelector = crypto.Keccak256([]byte("revoke(bytes32)"))[:4]
)

// leftPad32 pads b on the left to a 32-byte word.
func leftPad32(b []byte) []byte {
	return common.LeftPadBytes(b, 32)
}

// EncodeSpendCall produces the manager-contract call that moves amount
// (in the asset's smallest unit) under the identified permission.
func EncodeSpendCall(permissionHash common.Hash, amount *big.Int) wallet.Call {
	data := make([]byte, 0, 4+64)
	data = append(data, spendSelector...)
	data = append(data, permissionHash.Bytes()...)
	data = append(data, leftPad32(amount.Bytes())...)
	return wallet.Call{To: ManagerAddress, Data: data}
}

// DecodeSpendCall parses a spend call back into its permission hash and
// amount. Used by the simulated wallet to track consumption.
func DecodeSpendCall(call wallet.Call) (common.Hash, *big.Int, bool) {
	if call.To != ManagerAddress || len(call.Data) != 4+64 || !bytes.Equal(call.Data[:4], spendSelector) {
		return common.Hash{}, nil, false
	}
	hash := common.BytesToHash(call.Data[4:36])
	amount := new(big.Int).SetBytes(call.Data[36:68])
	return hash, amount, true
}

// EncodeRevokeCall produces the manager-contract call that revokes the
// identified permission. The owner's revocation signature is collected
// separately by the wallet before submission.
func EncodeRevokeCall(permissionHash common.Hash) wallet.Call {
	data := make([]byte, 0, 4+32)
	data = append(data, revokeSelector...)
	data = append(data, permissionHash.Bytes()...)
	return wallet.Call{To: ManagerAddress, Data: data}
}

// DecodeRevokeCall parses a revoke call back into its permission hash.
func DecodeRevokeCall(call wallet.Call) (common.Hash, bool) {
	if call.To != ManagerAddress || len(call.Data) != 4+32 || !bytes.Equal(call.Data[:4], revokeSelector) {
		return common.Hash{}, false
	}
	return common.BytesToHash(call.Data[4:36]), true
}
