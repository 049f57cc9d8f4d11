package currency

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupportedAsset is returned for tokens outside the supported set.
var ErrUnsupportedAsset = errors.New("unsupported asset")

// NativeTokenAddress is the ERC-7528 sentinel for the chain's native asset.
var NativeTokenAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// USDCBaseAddress is the USDC contract on Base mainnet.
var USDCBaseAddress = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")

// Asset describes a supported fungible asset and its on-chain precision.
type Asset struct {
	Symbol   string
	Address  common.Address
	Decimals int
	Native   bool
}

var (
	// USDC is the platform stablecoin, 6 decimals.
	USDC = Asset{Symbol: "USDC", Address: USDCBaseAddress, Decimals: 6}
	// ETH is the native asset, 18 decimals.
	ETH = Asset{Symbol: "ETH", Address: NativeTokenAddress, Decimals: 18, Native: true}
)

var supported = []Asset{USDC, ETH}

// ByToken returns the supported asset for a token address.
func ByToken(token common.Address) (Asset, error) {
	for _, a := range supported {
		if a.Address == token {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: token %s", ErrUnsupportedAsset, token.Hex())
}

// BySymbol returns the supported asset for a currency symbol.
func BySymbol(symbol string) (Asset, error) {
	for _, a := range supported {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: symbol %q", ErrUnsupportedAsset, symbol)
}

// IsSupported reports whether a token address is in the supported set.
func IsSupported(token common.Address) bool {
	_, err := ByToken(token)
	return err == nil
}

// pow10 returns 10^n as a big integer.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ToBaseUnits converts a whole-unit amount to the asset's smallest unit.
// The conversion is exact integer arithmetic; no floating point is involved.
func ToBaseUnits(whole *big.Int, asset Asset) *big.Int {
	return new(big.Int).Mul(whole, pow10(asset.Decimals))
}

// FromBaseUnits converts base units back to whole units. It fails if the
// amount is not an integral number of whole units.
func FromBaseUnits(units *big.Int, asset Asset) (*big.Int, error) {
	whole, rem := new(big.Int).QuoRem(units, pow10(asset.Decimals), new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("amount %s is not a whole number of %s", units.String(), asset.Symbol)
	}
	return whole, nil
}

// ParseAmount converts a decimal string like "12.50" into base units,
// exactly. Fractional digits beyond the asset's precision are rejected
// rather than rounded.
func ParseAmount(s string, asset Asset) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		return nil, fmt.Errorf("amount must be positive: %s", s)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > asset.Decimals {
		return nil, fmt.Errorf("amount %s exceeds %s precision of %d decimals", s, asset.Symbol, asset.Decimals)
	}

	// Pad the fraction out to the asset's precision and treat the whole
	// thing as one integer.
	padded := intPart + fracPart + strings.Repeat("0", asset.Decimals-len(fracPart))
	units, ok := new(big.Int).SetString(padded, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	return units, nil
}
