package dispatch

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/quickfund/quickfund-api/internal/currency"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// erc20TransferSelector is transfer(address,uint256).
var erc20TransferSelector = hexutil.MustDecode("0xa9059cbb")

// TransferCall builds the single call that moves amount (smallest units)
// of the asset to the recipient: an ERC-20 transfer for tokens, a plain
// value call for the native asset.
func TransferCall(asset currency.Asset, to common.Address, amount *big.Int) wallet.Call {
	if asset.Native {
		return wallet.Call{
			To:    to,
			Value: (*hexutil.Big)(new(big.Int).Set(amount)),
			Data:  hexutil.Bytes{},
		}
	}

	data := make([]byte, 0, 4+64)
	data = append(data, erc20TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return wallet.Call{To: asset.Address, Data: data}
}
