package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quickfund/quickfund-api/internal/auth"
	"github.com/quickfund/quickfund-api/internal/funding"
)

// DonationHandler manages donation endpoints.
type DonationHandler struct {
	common *CommonServices
}

// NewDonationHandler creates a new DonationHandler
func NewDonationHandler(common *CommonServices) *DonationHandler {
	return &DonationHandler{common: common}
}

// DonateRequest is the payload for making a donation. The amount is a
// decimal string in whole units of the proposal's currency.
type DonateRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Message string `json:"message"`
}

// ListDonations returns all donations, newest first.
func (h *DonationHandler) ListDonations(c *gin.Context) {
	donations, err := h.common.repo.ListDonations(c.Request.Context())
	if err != nil {
		handleDomainError(c, err, "Donations not found")
		return
	}
	sendList(c, donations)
}

// Donate executes a donation from the authenticated wallet to a
// proposal. The payment runs over a granted spend permission when one
// covers the amount, and as a direct transfer otherwise; a failed
// dispatch leaves the proposal's funding unchanged.
func (h *DonationHandler) Donate(c *gin.Context) {
	proposalID, err := uuid.Parse(c.Param("proposal_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid proposal ID", err)
		return
	}

	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	donor, ok := auth.WalletAddress(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "Wallet not connected", nil)
		return
	}

	_, spendingAccount, err := h.common.session.Accounts()
	if err != nil {
		handleDomainError(c, err, "Session not found")
		return
	}

	proposal, err := h.common.repo.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		handleDomainError(c, err, "Proposal not found")
		return
	}

	amount, _, err := parseAmount(req.Amount, proposal.Currency)
	if err != nil {
		handleAmountError(c, err, "Invalid donation amount")
		return
	}

	state := h.common.session.State()
	donation, err := h.common.orchestrator.Donate(c.Request.Context(), funding.DonationRequest{
		ProposalID:      proposalID,
		Donor:           donor,
		SpendingAccount: spendingAccount,
		Amount:          amount,
		Message:         req.Message,
		DonorBaseName:   state.UniversalBaseName,
	})
	if err != nil {
		// A recorded-but-failed donation is returned alongside the error
		// status so clients can show the failed attempt.
		if donation.ID != uuid.Nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    "Donation dispatch failed",
				"donation": donation,
			})
			return
		}
		handleDomainError(c, err, "Proposal not found")
		return
	}

	sendSuccess(c, http.StatusCreated, donation)
}
