package funding

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a proposal or donation does not exist.
var ErrNotFound = errors.New("record not found")

// ProposalStatus is the lifecycle state of a funding proposal.
type ProposalStatus string

const (
	ProposalActive    ProposalStatus = "active"
	ProposalFunded    ProposalStatus = "funded"
	ProposalCancelled ProposalStatus = "cancelled"
	ProposalCompleted ProposalStatus = "completed"
)

// DonationStatus is the lifecycle state of a donation. Donations are
// created pending and transition to a terminal state on dispatch result.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationConfirmed DonationStatus = "confirmed"
	DonationFailed    DonationStatus = "failed"
)

// Proposal is a funding proposal. Monetary fields are integers in the
// smallest unit of the proposal's currency.
type Proposal struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	TargetAmount    *big.Int       `json:"targetAmount"`
	CurrentFunding  *big.Int       `json:"currentFunding"`
	Currency        string         `json:"currency"`
	Creator         common.Address `json:"creator"`
	CreatorBaseName string         `json:"creatorBaseName,omitempty"`
	Category        string         `json:"category,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Status          ProposalStatus `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Validate rejects incomplete proposals at the boundary.
func (p Proposal) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("proposal title is required")
	case p.TargetAmount == nil || p.TargetAmount.Sign() <= 0:
		return fmt.Errorf("proposal target amount must be positive")
	case p.Currency == "":
		return fmt.Errorf("proposal currency is required")
	case p.Creator == (common.Address{}):
		return fmt.Errorf("proposal creator is required")
	}
	return nil
}

// Donation is a single contribution toward a proposal.
type Donation struct {
	ID            uuid.UUID      `json:"id"`
	ProposalID    uuid.UUID      `json:"proposalId"`
	Donor         common.Address `json:"donorAddress"`
	DonorBaseName string         `json:"donorBaseName,omitempty"`
	Amount        *big.Int       `json:"amount"`
	Currency      string         `json:"currency"`
	Status        DonationStatus `json:"status"`
	TransactionID string         `json:"transactionId,omitempty"`
	Message       string         `json:"message,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
