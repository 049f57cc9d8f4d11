package handlers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quickfund/quickfund-api/internal/funding"
)

// ProposalHandler manages proposal endpoints.
type ProposalHandler struct {
	common *CommonServices
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(common *CommonServices) *ProposalHandler {
	return &ProposalHandler{common: common}
}

// CreateProposalRequest is the payload for creating a proposal. The
// target amount is a decimal string in whole units of the currency.
type CreateProposalRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	TargetAmount string     `json:"targetAmount" binding:"required"`
	Currency     string     `json:"currency" binding:"required"`
	Creator      string     `json:"creator" binding:"required"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"imageUrl"`
	Deadline     *time.Time `json:"deadline"`
	Tags         []string   `json:"tags"`
}

// ListProposals returns all proposals, newest first.
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	proposals, err := h.common.repo.ListProposals(c.Request.Context())
	if err != nil {
		handleDomainError(c, err, "Proposals not found")
		return
	}
	sendList(c, proposals)
}

// GetProposal returns a single proposal by id.
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("proposal_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid proposal ID", err)
		return
	}

	proposal, err := h.common.repo.GetProposal(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err, "Proposal not found")
		return
	}
	sendSuccess(c, http.StatusOK, proposal)
}

// CreateProposal creates a new proposal for the authenticated creator.
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !common.IsHexAddress(req.Creator) {
		sendError(c, http.StatusBadRequest, "Invalid creator address", nil)
		return
	}

	target, _, err := parseAmount(req.TargetAmount, req.Currency)
	if err != nil {
		handleAmountError(c, err, "Invalid target amount")
		return
	}

	creator := common.HexToAddress(req.Creator)
	creatorBaseName := ""
	if name, err := h.common.resolver.ReverseResolve(c.Request.Context(), creator); err == nil {
		creatorBaseName = name
	}

	proposal, err := h.common.repo.CreateProposal(c.Request.Context(), funding.Proposal{
		Title:           req.Title,
		Description:     req.Description,
		TargetAmount:    target,
		Currency:        req.Currency,
		Creator:         creator,
		CreatorBaseName: creatorBaseName,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		Deadline:        req.Deadline,
		Tags:            req.Tags,
	})
	if err != nil {
		handleDomainError(c, err, "Proposal not found")
		return
	}
	sendSuccess(c, http.StatusCreated, proposal)
}

// ListProposalDonations returns a proposal's donations, newest first.
func (h *ProposalHandler) ListProposalDonations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("proposal_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid proposal ID", err)
		return
	}

	donations, err := h.common.repo.ListDonationsByProposal(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err, "Proposal not found")
		return
	}
	sendList(c, donations)
}
