package spend

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickfund/quickfund-api/internal/wallet"
)

func TestSpendCallRoundTrip(t *testing.T) {
	hash := common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000000001")
	amount := big.NewInt(12_500_000)

	call := EncodeSpendCall(hash, amount)
	assert.Equal(t, ManagerAddress, call.To)
	require.Len(t, call.Data, 4+64)

	gotHash, gotAmount, ok := DecodeSpendCall(call)
	require.True(t, ok)
	assert.Equal(t, hash, gotHash)
	assert.Equal(t, amount.String(), gotAmount.String())
}

func TestRevokeCallRoundTrip(t *testing.T) {
	hash := common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000000002")

	call := EncodeRevokeCall(hash)
	assert.Equal(t, ManagerAddress, call.To)
	require.Len(t, call.Data, 4+32)

	gotHash, ok := DecodeRevokeCall(call)
	require.True(t, ok)
	assert.Equal(t, hash, gotHash)
}

func TestDecodeRejectsForeignCalls(t *testing.T) {
	hash := common.HexToHash("0x01")

	tests := []struct {
		name string
		call wallet.Call
	}{
		{
			name: "wrong target",
			call: func() wallet.Call {
				c := EncodeSpendCall(hash, big.NewInt(1))
				c.To = common.HexToAddress("0x2222222222222222222222222222222222222222")
				return c
			}(),
		},
		{
			name: "truncated data",
			call: func() wallet.Call {
				c := EncodeSpendCall(hash, big.NewInt(1))
				c.Data = c.Data[:10]
				return c
			}(),
		},
		{
			name: "revoke selector on spend decoder",
			call: EncodeRevokeCall(hash),
		},
		{
			name: "empty call",
			call: wallet.Call{To: ManagerAddress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := DecodeSpendCall(tt.call)
			assert.False(t, ok)
		})
	}

	// The revoke decoder must not accept spend calls either.
	_, ok := DecodeRevokeCall(EncodeSpendCall(hash, big.NewInt(1)))
	assert.False(t, ok)
}
