package funding

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	// 2^160-1, the largest value an allowance can take on the wire.
	huge, ok := new(big.Int).SetString("1461501637330902918203684832716283019655932542975", 10)
	require.True(t, ok)

	for _, v := range []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(-5), huge} {
		back, err := numericToBig(bigToNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v.String(), back.String())
	}

	// nil is stored as zero.
	back, err := numericToBig(bigToNumeric(nil))
	require.NoError(t, err)
	assert.Equal(t, "0", back.String())
}

func TestNumericToBigScales(t *testing.T) {
	// NUMERIC(78,0) can come back with a positive exponent for round values.
	got, err := numericToBig(pgtype.Numeric{Int: big.NewInt(15), Exp: 6, Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "15000000", got.String())

	// Fractional values indicate schema corruption and are rejected.
	_, err = numericToBig(pgtype.Numeric{Int: big.NewInt(15), Exp: -1, Valid: true})
	assert.Error(t, err)

	// NULL scans to zero rather than a nil pointer.
	got, err = numericToBig(pgtype.Numeric{})
	require.NoError(t, err)
	assert.Equal(t, "0", got.String())
}
