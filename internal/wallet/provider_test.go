package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providerFunc adapts a function to the Provider interface.
type providerFunc func(ctx context.Context, method string, params interface{}) (json.RawMessage, error)

func (f providerFunc) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	return f(ctx, method, params)
}

func TestAccountsDecoding(t *testing.T) {
	provider := providerFunc(func(_ context.Context, method string, _ interface{}) (json.RawMessage, error) {
		assert.Equal(t, MethodRequestAccounts, method)
		return json.RawMessage(`["0xaaa0000000000000000000000000000000000001","0xbbb0000000000000000000000000000000000002"]`), nil
	})

	accounts, err := RequestAccounts(context.Background(), provider)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, common.HexToAddress("0xaaa0000000000000000000000000000000000001"), accounts[0])
}

func TestSendCallsResultShapes(t *testing.T) {
	tests := []struct {
		name    string
		result  string
		want    string
		wantErr bool
	}{
		{"envelope", `{"id":"0x01"}`, "0x01", false},
		{"bare string", `"0x02"`, "0x02", false},
		{"garbage", `42`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := providerFunc(func(_ context.Context, _ string, _ interface{}) (json.RawMessage, error) {
				return json.RawMessage(tt.result), nil
			})
			id, err := SendCalls(context.Background(), provider, SendCallsParams{Version: "2.0"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSignTypedDataRejectsMalformedSignature(t *testing.T) {
	provider := providerFunc(func(_ context.Context, _ string, _ interface{}) (json.RawMessage, error) {
		return json.RawMessage(`"not-hex"`), nil
	})

	_, err := SignTypedData(context.Background(), provider, common.Address{}, apitypes.TypedData{})
	assert.Error(t, err)
}
