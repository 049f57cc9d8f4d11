package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quickfund/quickfund-api/internal/currency"
	"github.com/quickfund/quickfund-api/internal/dispatch"
	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/mocks"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

func init() {
	logger.Init("test")
}

var (
	sender    = common.HexToAddress("0xbbb0000000000000000000000000000000000002")
	recipient = common.HexToAddress("0xccc0000000000000000000000000000000000003")
)

func TestSendCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	dispatcher := dispatch.New(provider, 8453)

	call := dispatch.TransferCall(currency.ETH, recipient, big.NewInt(5))

	provider.EXPECT().
		Request(gomock.Any(), wallet.MethodSendCalls, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params interface{}) (json.RawMessage, error) {
			batch := params.([]interface{})[0].(wallet.SendCallsParams)
			assert.Equal(t, "2.0", batch.Version)
			assert.True(t, batch.AtomicRequired)
			assert.Equal(t, uint64(8453), uint64(batch.ChainID))
			assert.Equal(t, sender, batch.From)
			require.Len(t, batch.Calls, 1)
			return json.RawMessage(`{"id":"0xabc123"}`), nil
		})

	id, err := dispatcher.SendCalls(context.Background(), sender, []wallet.Call{call})
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", id)
}

func TestSendCallsBareStringResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	dispatcher := dispatch.New(provider, 8453)

	provider.EXPECT().
		Request(gomock.Any(), wallet.MethodSendCalls, gomock.Any()).
		Return(json.RawMessage(`"0xdef456"`), nil)

	id, err := dispatcher.SendCalls(context.Background(), sender,
		[]wallet.Call{dispatch.TransferCall(currency.ETH, recipient, big.NewInt(1))})
	require.NoError(t, err)
	assert.Equal(t, "0xdef456", id)
}

func TestSendCallsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	dispatcher := dispatch.New(provider, 8453)
	ctx := context.Background()

	_, err := dispatcher.SendCalls(ctx, sender, nil)
	assert.ErrorIs(t, err, dispatch.ErrDispatch)

	provider.EXPECT().
		Request(gomock.Any(), wallet.MethodSendCalls, gomock.Any()).
		Return(nil, wallet.ErrUserRejected)

	_, err = dispatcher.SendCalls(ctx, sender,
		[]wallet.Call{dispatch.TransferCall(currency.ETH, recipient, big.NewInt(1))})
	assert.ErrorIs(t, err, dispatch.ErrDispatch)
	assert.ErrorIs(t, err, wallet.ErrUserRejected, "rejection kind must stay visible through the wrap")
}

func TestTransferCallNative(t *testing.T) {
	amount := big.NewInt(1_000_000_000_000_000_000)
	call := dispatch.TransferCall(currency.ETH, recipient, amount)

	assert.Equal(t, recipient, call.To)
	require.NotNil(t, call.Value)
	assert.Equal(t, amount.String(), (*big.Int)(call.Value).String())
	assert.Empty(t, call.Data)
}

func TestTransferCallERC20(t *testing.T) {
	amount := big.NewInt(10_500_000)
	call := dispatch.TransferCall(currency.USDC, recipient, amount)

	assert.Equal(t, currency.USDCBaseAddress, call.To)
	assert.Nil(t, call.Value)
	require.Len(t, call.Data, 4+64)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, []byte(call.Data[:4]))
	assert.True(t, bytes.Equal(common.LeftPadBytes(recipient.Bytes(), 32), call.Data[4:36]))
	assert.Equal(t, amount.String(), new(big.Int).SetBytes(call.Data[36:68]).String())
}
