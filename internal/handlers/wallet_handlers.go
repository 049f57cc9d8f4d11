package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickfund/quickfund-api/internal/auth"
	"github.com/quickfund/quickfund-api/internal/session"
)

// WalletHandler manages wallet session endpoints.
type WalletHandler struct {
	common *CommonServices
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(common *CommonServices) *WalletHandler {
	return &WalletHandler{common: common}
}

// SessionResponse is the wallet session payload returned to clients.
type SessionResponse struct {
	Session session.State `json:"session"`
	Token   string        `json:"token,omitempty"`
}

// Connect prompts the wallet for accounts, establishes a session, and
// returns a session token for subsequent authenticated requests.
func (h *WalletHandler) Connect(c *gin.Context) {
	state, err := h.common.session.Connect(c.Request.Context())
	if err != nil {
		handleDomainError(c, err, "Wallet not found")
		return
	}

	token, err := auth.IssueSessionToken(h.common.jwtSecret, state.UniversalAddress)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to issue session token", err)
		return
	}

	sendSuccess(c, http.StatusOK, SessionResponse{Session: state, Token: token})
}

// GetSession restores persisted session state without prompting the wallet.
func (h *WalletHandler) GetSession(c *gin.Context) {
	state, err := h.common.session.Restore(c.Request.Context())
	if err != nil {
		handleDomainError(c, err, "Session not found")
		return
	}
	sendSuccess(c, http.StatusOK, SessionResponse{Session: state})
}

// Disconnect tears down the session and clears the local permission set.
func (h *WalletHandler) Disconnect(c *gin.Context) {
	if err := h.common.session.Teardown(c.Request.Context()); err != nil {
		handleDomainError(c, err, "Session not found")
		return
	}
	sendSuccessMessage(c, http.StatusOK, "Wallet disconnected")
}
