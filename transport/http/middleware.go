package http

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletgate/core"
)

// RequestAuthenticator authenticates a request from its headers
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, h http.Header) (context.Context, core.AuthenticatedIdentity, error)
}

const identityKey = "walletIdentity"

// AuthMiddleware creates middleware that authenticates every request from
// its wallet signature headers
func AuthMiddleware(auth RequestAuthenticator, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id, err := auth.Authenticate(c.Request.Context(), c.Request.Header)
		if err != nil {
			_, code := authErrorStatus(err)
			metrics.observeAuth(code)
			abortWithAuthError(c, err)
			return
		}
		metrics.observeAuth("ok")

		c.Request = c.Request.WithContext(ctx)
		c.Set(identityKey, id)

		c.Next()
	}
}

// RequireRole creates middleware that rejects identities ranked below role.
// It must run after AuthMiddleware.
func RequireRole(role core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			abortWithAuthError(c, core.ErrNotAuthorized)
			return
		}
		if err := core.RequireRole(id.Role, role); err != nil {
			abortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (core.AuthenticatedIdentity, bool) {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(core.AuthenticatedIdentity); ok {
			return id, true
		}
	}
	return core.AuthenticatedIdentityFromContext(c.Request.Context())
}

var corsAllowedHeaders = strings.Join(append([]string{"Content-Type"}, core.AuthHeaderNames...), ", ")

// CORSMiddleware answers cross-origin requests to /api from the allowed
// origins. "*" allows any origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Next()
			return
		}

		if !allowAny && !slices.Contains(allowedOrigins, origin) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Max-Age", strconv.Itoa(600))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
