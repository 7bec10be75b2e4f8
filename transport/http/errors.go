package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletgate/core"
)

// authErrorStatus maps an authentication failure to its status and code.
func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMissingHeaders):
		return http.StatusUnauthorized, "missing_headers"
	case errors.Is(err, core.ErrLegacySignatureFormat):
		return http.StatusUnauthorized, "legacy_signature_format"
	case errors.Is(err, core.ErrMalformedHeader):
		return http.StatusUnauthorized, "malformed_header"
	case errors.Is(err, core.ErrTimestampExpired):
		return http.StatusUnauthorized, "timestamp_expired"
	case errors.Is(err, core.ErrInvalidSignature):
		return http.StatusUnauthorized, "invalid_signature"
	case errors.Is(err, core.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, core.ErrInsufficientPermissions):
		return http.StatusForbidden, "insufficient_permissions"
	default:
		return http.StatusUnauthorized, "unauthenticated"
	}
}

func abortWithAuthError(c *gin.Context, err error) {
	status, code := authErrorStatus(err)
	c.AbortWithStatusJSON(status, gin.H{"error": publicAuthMessage(code, err), "code": code})
}

func publicAuthMessage(code string, err error) string {
	switch code {
	case "not_authorized":
		return core.ErrNotAuthorized.Error()
	case "insufficient_permissions":
		return err.Error()
	case "unauthenticated":
		return "authentication failed"
	default:
		return err.Error()
	}
}

// storeError writes the response for a failed store call.
func storeError(c *gin.Context, logger watermill.LoggerAdapter, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": "not_found"})
	case errors.Is(err, core.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists", "code": "already_exists"})
	case errors.Is(err, core.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
	case errors.Is(err, core.ErrNoRequestIdentity):
		c.JSON(http.StatusForbidden, gin.H{"error": core.ErrNotAuthorized.Error(), "code": "not_authorized"})
	default:
		logger.Error(fallback, err, watermill.LogFields{"path": c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "code": "internal"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_input"})
}
