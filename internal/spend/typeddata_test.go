package spend

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickfund/quickfund-api/internal/currency"
)

func testPermission() Permission {
	start := uint64(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Unix())
	return Permission{
		Account:   common.HexToAddress("0xaaa0000000000000000000000000000000000001"),
		Spender:   common.HexToAddress("0xbbb0000000000000000000000000000000000002"),
		Token:     currency.USDCBaseAddress,
		ChainID:   8453,
		Allowance: big.NewInt(50_000_000),
		Period:    7 * 86400,
		Start:     start,
		End:       start + 7*86400,
		Salt:      big.NewInt(42),
		ExtraData: hexutil.Bytes{},
	}
}

func TestHashPermissionIsStable(t *testing.T) {
	p := testPermission()

	first, err := HashPermission(p)
	require.NoError(t, err)
	second, err := HashPermission(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, common.Hash{}, first)

	// Any field change must produce a different identity.
	p.Salt = big.NewInt(43)
	changed, err := HashPermission(p)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestGrantTypedDataShape(t *testing.T) {
	p := testPermission()
	typedData := GrantTypedData(p)

	assert.Equal(t, "SpendPermission", typedData.PrimaryType)
	assert.Equal(t, "Spend Permission Manager", typedData.Domain.Name)
	assert.Equal(t, "1", typedData.Domain.Version)
	assert.Equal(t, ManagerAddress.Hex(), typedData.Domain.VerifyingContract)
	assert.Equal(t, big.NewInt(8453).String(), (*big.Int)(typedData.Domain.ChainId).String())

	assert.Equal(t, p.Account.Hex(), typedData.Message["account"])
	assert.Equal(t, p.Spender.Hex(), typedData.Message["spender"])
	assert.Equal(t, p.Token.Hex(), typedData.Message["token"])

	// Integer fields must survive a JSON round trip, the form in which the
	// wallet receives them.
	data, err := json.Marshal(typedData.Message)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	allowance, ok := decoded["allowance"].(string)
	require.True(t, ok, "allowance must serialize as a string, not a float")
	parsed, err := hexutil.DecodeBig(allowance)
	require.NoError(t, err)
	assert.Equal(t, p.Allowance.String(), parsed.String())
}

func TestRevokeTypedDataShape(t *testing.T) {
	hash := common.HexToHash("0x0badc0de0000000000000000000000000000000000000000000000000000cafe")
	account := common.HexToAddress("0xaaa0000000000000000000000000000000000001")

	typedData := RevokeTypedData(8453, hash, account)
	assert.Equal(t, "RevokeSpendPermission", typedData.PrimaryType)
	assert.Equal(t, hash.Hex(), typedData.Message["permissionHash"])
	assert.Equal(t, account.Hex(), typedData.Message["account"])
	require.Len(t, typedData.Types["RevokeSpendPermission"], 2)
}
