// Package handlers exposes the HTTP surface of the API: wallet
// sessions, proposals, donations, and spend permissions.
package handlers

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/currency"
	"github.com/quickfund/quickfund-api/internal/dispatch"
	"github.com/quickfund/quickfund-api/internal/funding"
	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/names"
	"github.com/quickfund/quickfund-api/internal/session"
	"github.com/quickfund/quickfund-api/internal/spend"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	repo         funding.Repository
	orchestrator *funding.Orchestrator
	permissions  *spend.Client
	dispatcher   *dispatch.Dispatcher
	session      *session.Manager
	resolver     *names.Client
	jwtSecret    string
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(
	repo funding.Repository,
	orchestrator *funding.Orchestrator,
	permissions *spend.Client,
	dispatcher *dispatch.Dispatcher,
	sessionManager *session.Manager,
	resolver *names.Client,
	jwtSecret string,
) *CommonServices {
	return &CommonServices{
		repo:         repo,
		orchestrator: orchestrator,
		permissions:  permissions,
		dispatcher:   dispatcher,
		session:      sessionManager,
		resolver:     resolver,
		jwtSecret:    jwtSecret,
	}
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleDomainError maps domain errors to HTTP status codes.
func handleDomainError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, funding.ErrNotFound):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	case errors.Is(err, currency.ErrUnsupportedAsset):
		sendError(c, http.StatusUnprocessableEntity, "Unsupported asset", err)
	case errors.Is(err, wallet.ErrUserRejected):
		sendError(c, http.StatusConflict, "Request rejected in wallet", err)
	case errors.Is(err, wallet.ErrProviderUnavailable):
		sendError(c, http.StatusBadGateway, "Wallet provider unavailable", err)
	case errors.Is(err, spend.ErrInsufficientAllowance):
		sendError(c, http.StatusUnprocessableEntity, "Insufficient remaining allowance", err)
	case errors.Is(err, session.ErrNotConnected):
		sendError(c, http.StatusUnauthorized, "Wallet not connected", err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendSuccessMessage is a helper function that sends a success message
func sendSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, SuccessResponse{Message: message})
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

// handleAmountError distinguishes an unsupported asset from a malformed
// amount string.
func handleAmountError(c *gin.Context, err error, message string) {
	if errors.Is(err, currency.ErrUnsupportedAsset) {
		sendError(c, http.StatusUnprocessableEntity, "Unsupported asset", err)
		return
	}
	sendError(c, http.StatusBadRequest, message, err)
}

// parseAmount converts a decimal amount string into base units for the
// named currency.
func parseAmount(amount, symbol string) (*big.Int, currency.Asset, error) {
	asset, err := currency.BySymbol(symbol)
	if err != nil {
		return nil, currency.Asset{}, err
	}
	units, err := currency.ParseAmount(amount, asset)
	if err != nil {
		return nil, currency.Asset{}, err
	}
	return units, asset, nil
}
