package funding

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/currency"
	"github.com/quickfund/quickfund-api/internal/dispatch"
	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/spend"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// DonationRequest describes a single donation attempt.
type DonationRequest struct {
	ProposalID uuid.UUID
	// Donor is the universal (owner) account making the donation.
	Donor common.Address
	// SpendingAccount is the sub-account transfers are sent from; it is
	// also the spender on any permission used.
	SpendingAccount common.Address
	// Amount is in the smallest unit of the proposal's currency.
	Amount        *big.Int
	Message       string
	DonorBaseName string
}

// Orchestrator drives a donation attempt through its state machine:
// record pending, pick the permission or direct-transfer path, dispatch,
// then reconcile local state with the outcome.
type Orchestrator struct {
	repo        Repository
	permissions *spend.Client
	dispatcher  *dispatch.Dispatcher
	logger      *zap.Logger
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(repo Repository, permissions *spend.Client, dispatcher *dispatch.Dispatcher) *Orchestrator {
	return &Orchestrator{
		repo:        repo,
		permissions: permissions,
		dispatcher:  dispatcher,
		logger:      logger.Log,
	}
}

// Donate executes one donation attempt. The donation is recorded pending
// and the proposal's running total incremented before dispatch; on any
// dispatch failure both are reconciled (donation failed, funding
// decremented by the same amount, exactly once) and the error is returned
// for the caller to surface.
func (o *Orchestrator) Donate(ctx context.Context, req DonationRequest) (Donation, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return Donation{}, fmt.Errorf("donation amount must be positive")
	}

	proposal, err := o.repo.GetProposal(ctx, req.ProposalID)
	if err != nil {
		return Donation{}, err
	}
	if proposal.Status != ProposalActive {
		return Donation{}, fmt.Errorf("proposal %s is not accepting donations (status %s)", proposal.ID, proposal.Status)
	}
	asset, err := currency.BySymbol(proposal.Currency)
	if err != nil {
		return Donation{}, err
	}

	donation, err := o.repo.CreateDonation(ctx, Donation{
		ProposalID:    proposal.ID,
		Donor:         req.Donor,
		DonorBaseName: req.DonorBaseName,
		Amount:        new(big.Int).Set(req.Amount),
		Currency:      proposal.Currency,
		Status:        DonationPending,
		Message:       req.Message,
	})
	if err != nil {
		return Donation{}, err
	}

	// Optimistic funding update; reverted exactly once if dispatch fails.
	if _, err := o.repo.UpdateProposalFunding(ctx, proposal.ID, req.Amount); err != nil {
		o.failDonation(ctx, donation.ID, nil, proposal.ID)
		return Donation{}, fmt.Errorf("failed to record funding: %w", err)
	}

	callsID, dispatchErr := o.dispatchDonation(ctx, proposal, asset, req)
	if dispatchErr != nil {
		o.failDonation(ctx, donation.ID, req.Amount, proposal.ID)
		donation.Status = DonationFailed
		o.logger.Warn("Donation failed",
			zap.String("donation_id", donation.ID.String()),
			zap.String("proposal_id", proposal.ID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(dispatchErr))
		return donation, dispatchErr
	}

	if err := o.repo.UpdateDonationStatus(ctx, donation.ID, DonationConfirmed, callsID); err != nil {
		return donation, fmt.Errorf("donation dispatched but status update failed: %w", err)
	}
	donation.Status = DonationConfirmed
	donation.TransactionID = callsID

	o.logger.Info("Donation confirmed",
		zap.String("donation_id", donation.ID.String()),
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("calls_id", callsID))

	return donation, nil
}

// dispatchDonation picks the payment path. A granted permission for the
// proposal's token is used when it is active with sufficient remaining
// allowance; otherwise the donation is a direct transfer from the donor's
// spending account to the creator.
func (o *Orchestrator) dispatchDonation(ctx context.Context, proposal Proposal, asset currency.Asset, req DonationRequest) (string, error) {
	if permission, ok := o.permissions.Store().FindByToken(asset.Address); ok {
		// Hold the permission's lock across check-then-spend so two
		// concurrent donations cannot both pass a stale allowance check.
		unlock := o.permissions.Lock(permission.PermissionHash)

		status, err := o.permissions.CheckStatus(ctx, permission)
		if err == nil && status.IsActive && status.RemainingSpend.Cmp(req.Amount) >= 0 {
			calls, err := o.permissions.PrepareSpend(ctx, permission, req.Amount)
			if err == nil {
				id, err := o.dispatcher.SendCalls(ctx, permission.Spender, calls)
				unlock()
				return id, err
			}
			o.logger.Warn("Failed to prepare permission spend, falling back to direct transfer",
				zap.String("permission_hash", permission.PermissionHash.Hex()),
				zap.Error(err))
		}
		unlock()
	}

	call := dispatch.TransferCall(asset, proposal.Creator, req.Amount)
	return o.dispatcher.SendCalls(ctx, req.SpendingAccount, []wallet.Call{call})
}

// failDonation reconciles local state after a failed attempt. compensate
// is nil when the optimistic funding update never happened.
func (o *Orchestrator) failDonation(ctx context.Context, donationID uuid.UUID, compensate *big.Int, proposalID uuid.UUID) {
	if err := o.repo.UpdateDonationStatus(ctx, donationID, DonationFailed, ""); err != nil {
		o.logger.Error("Failed to mark donation failed",
			zap.String("donation_id", donationID.String()),
			zap.Error(err))
	}
	if compensate != nil {
		if _, err := o.repo.UpdateProposalFunding(ctx, proposalID, new(big.Int).Neg(compensate)); err != nil {
			o.logger.Error("Failed to compensate proposal funding",
				zap.String("proposal_id", proposalID.String()),
				zap.String("amount", compensate.String()),
				zap.Error(err))
		}
	}
}
