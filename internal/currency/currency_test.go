package currency

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		asset   Asset
		want    string
		wantErr bool
	}{
		{
			name:  "whole usdc",
			input: "10",
			asset: USDC,
			want:  "10000000",
		},
		{
			name:  "fractional usdc",
			input: "10.50",
			asset: USDC,
			want:  "10500000",
		},
		{
			name:  "smallest usdc unit",
			input: "0.000001",
			asset: USDC,
			want:  "1",
		},
		{
			name:  "eth full precision",
			input: "1.000000000000000001",
			asset: ETH,
			want:  "1000000000000000001",
		},
		{
			name:  "leading dot",
			input: ".5",
			asset: USDC,
			want:  "500000",
		},
		{
			name:    "excess precision rejected",
			input:   "0.0000001",
			asset:   USDC,
			wantErr: true,
		},
		{
			name:    "negative rejected",
			input:   "-1",
			asset:   USDC,
			wantErr: true,
		},
		{
			name:    "empty rejected",
			input:   "",
			asset:   USDC,
			wantErr: true,
		},
		{
			name:    "garbage rejected",
			input:   "ten",
			asset:   USDC,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.asset)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBaseUnitConversions(t *testing.T) {
	whole := big.NewInt(1234)

	units := ToBaseUnits(whole, USDC)
	assert.Equal(t, "1234000000", units.String())

	back, err := FromBaseUnits(units, USDC)
	require.NoError(t, err)
	assert.Equal(t, whole.String(), back.String())

	// Values up to 10^12 whole units stay exact.
	large := new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
	roundTrip, err := FromBaseUnits(ToBaseUnits(large, ETH), ETH)
	require.NoError(t, err)
	assert.Equal(t, large.String(), roundTrip.String())

	_, err = FromBaseUnits(big.NewInt(1500000), USDC)
	assert.Error(t, err, "fractional whole units must not round silently")
}

func TestAssetLookup(t *testing.T) {
	asset, err := ByToken(USDCBaseAddress)
	require.NoError(t, err)
	assert.Equal(t, "USDC", asset.Symbol)
	assert.Equal(t, 6, asset.Decimals)
	assert.False(t, asset.Native)

	asset, err = ByToken(NativeTokenAddress)
	require.NoError(t, err)
	assert.Equal(t, "ETH", asset.Symbol)
	assert.Equal(t, 18, asset.Decimals)
	assert.True(t, asset.Native)

	_, err = ByToken(common.HexToAddress("0x1111111111111111111111111111111111111111"))
	assert.ErrorIs(t, err, ErrUnsupportedAsset)

	_, err = BySymbol("DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedAsset)

	assert.True(t, IsSupported(USDCBaseAddress))
	assert.False(t, IsSupported(common.Address{}))
}
