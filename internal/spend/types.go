package spend

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrInsufficientAllowance is returned when a spend exceeds the
	// permission's remaining allowance.
	ErrInsufficientAllowance = errors.New("insufficient remaining allowance")

	// ErrStatusQueryFailed marks a status check that could not reach the
	// authoritative source and fell back to a local approximation.
	ErrStatusQueryFailed = errors.New("permission status query failed")

	// ErrNotGranted is returned when an operation requires a signed
	// permission but the record carries no signature.
	ErrNotGranted = errors.New("permission has not been granted")
)

// Permission is a signed, time-boxed, amount-capped delegation letting the
// spender move the account's assets without per-transaction approval.
// Monetary fields are integers in the asset's smallest unit. A granted
// permission is immutable; revoke-and-recreate is the only way to change
// its terms.
type Permission struct {
	PermissionHash common.Hash    `json:"permissionHash"`
	Account        common.Address `json:"account"`
	Spender        common.Address `json:"spender"`
	Token          common.Address `json:"token"`
	ChainID        uint64         `json:"chainId"`
	Allowance      *big.Int       `json:"allowance"`
	Period         uint64         `json:"period"` // seconds
	Start          uint64         `json:"start"`  // unix
	End            uint64         `json:"end"`    // unix
	Salt           *big.Int       `json:"salt"`
	ExtraData      hexutil.Bytes  `json:"extraData"`
	Signature      hexutil.Bytes  `json:"signature,omitempty"`
}

// Status is the result of a permission status check.
type Status struct {
	IsActive       bool     `json:"isActive"`
	RemainingSpend *big.Int `json:"remainingSpend"`

	// Approximate is set when the authoritative source was unreachable and
	// the status was derived from local time bounds only. An approximate
	// status ignores spend already consumed within the current period.
	Approximate bool `json:"approximate,omitempty"`
}

// PeriodInDays returns the validity window length in whole days.
func (p Permission) PeriodInDays() int {
	return int(p.Period / 86400)
}

// Granted reports whether the owner has signed the permission.
func (p Permission) Granted() bool {
	return len(p.Signature) > 0
}

// ActiveAt reports whether t falls within the permission's validity window.
func (p Permission) ActiveAt(t time.Time) bool {
	now := uint64(t.Unix())
	return p.Start <= now && now < p.End
}

// Validate rejects partially populated records at the boundary instead of
// defaulting fields silently.
func (p Permission) Validate() error {
	switch {
	case p.Account == (common.Address{}):
		return fmt.Errorf("permission account is required")
	case p.Spender == (common.Address{}):
		return fmt.Errorf("permission spender is required")
	case p.Token == (common.Address{}):
		return fmt.Errorf("permission token is required")
	case p.ChainID == 0:
		return fmt.Errorf("permission chain id is required")
	case p.Allowance == nil || p.Allowance.Sign() <= 0:
		return fmt.Errorf("permission allowance must be positive")
	case p.Salt == nil:
		return fmt.Errorf("permission salt is required")
	case p.End <= p.Start:
		return fmt.Errorf("permission end %d must be after start %d", p.End, p.Start)
	case p.Period == 0:
		return fmt.Errorf("permission period is required")
	}
	return nil
}
