package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/quickfund/quickfund-api/internal/auth"
	"github.com/quickfund/quickfund-api/internal/spend"
)

// PermissionHandler manages spend permission endpoints.
type PermissionHandler struct {
	common *CommonServices
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(common *CommonServices) *PermissionHandler {
	return &PermissionHandler{common: common}
}

// RequestPermissionRequest is the payload for requesting a spend
// permission grant. The allowance is a decimal string in whole units.
type RequestPermissionRequest struct {
	Currency     string `json:"currency" binding:"required"`
	Allowance    string `json:"allowance" binding:"required"`
	PeriodInDays int    `json:"periodInDays" binding:"required"`
}

// RevokeResponse carries the call batch id of a revoke dispatch.
type RevokeResponse struct {
	CallsID string `json:"callsId"`
}

// RequestPermission asks the connected wallet to sign a new spend
// permission for the session's spending account.
func (h *PermissionHandler) RequestPermission(c *gin.Context) {
	var req RequestPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PeriodInDays <= 0 {
		sendError(c, http.StatusBadRequest, "Period must be at least one day", nil)
		return
	}

	account, ok := auth.WalletAddress(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "Wallet not connected", nil)
		return
	}
	_, spender, err := h.common.session.Accounts()
	if err != nil {
		handleDomainError(c, err, "Session not found")
		return
	}

	allowance, asset, err := parseAmount(req.Allowance, req.Currency)
	if err != nil {
		handleAmountError(c, err, "Invalid allowance")
		return
	}

	permission, err := h.common.permissions.RequestPermission(
		c.Request.Context(), account, spender, asset.Address, allowance, req.PeriodInDays)
	if err != nil {
		handleDomainError(c, err, "Permission not found")
		return
	}
	sendSuccess(c, http.StatusCreated, permission)
}

// ListPermissions fetches the wallet's permissions for the session's
// account pair, refreshing the local set.
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	account, ok := auth.WalletAddress(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "Wallet not connected", nil)
		return
	}
	_, spender, err := h.common.session.Accounts()
	if err != nil {
		handleDomainError(c, err, "Session not found")
		return
	}

	permissions, err := h.common.permissions.FetchUserPermissions(c.Request.Context(), account, spender)
	if err != nil {
		handleDomainError(c, err, "Permissions not found")
		return
	}
	sendList(c, permissions)
}

// GetPermissionStatus returns the live status of a held permission.
func (h *PermissionHandler) GetPermissionStatus(c *gin.Context) {
	permission, ok := h.permissionFromPath(c)
	if !ok {
		return
	}

	status, err := h.common.permissions.CheckStatus(c.Request.Context(), permission)
	if err != nil {
		handleDomainError(c, err, "Permission not found")
		return
	}
	sendSuccess(c, http.StatusOK, status)
}

// RevokePermission asks the wallet to sign and dispatch an on-chain
// revocation, then drops the permission from the local set.
func (h *PermissionHandler) RevokePermission(c *gin.Context) {
	permission, ok := h.permissionFromPath(c)
	if !ok {
		return
	}

	callsID, err := h.common.permissions.RequestRevoke(c.Request.Context(), permission)
	if err != nil {
		handleDomainError(c, err, "Permission not found")
		return
	}
	sendSuccess(c, http.StatusOK, RevokeResponse{CallsID: callsID})
}

func (h *PermissionHandler) permissionFromPath(c *gin.Context) (spend.Permission, bool) {
	raw := c.Param("permission_hash")
	if len(raw) != 66 || raw[:2] != "0x" {
		sendError(c, http.StatusBadRequest, "Invalid permission hash", nil)
		return spend.Permission{}, false
	}

	permission, ok := h.common.permissions.Store().Get(common.HexToHash(raw))
	if !ok {
		sendError(c, http.StatusNotFound, "Permission not found", nil)
		return spend.Permission{}, false
	}
	return permission, true
}
