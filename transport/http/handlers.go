package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// Handlers contains the HTTP handlers of the CMS API
type Handlers struct {
	store  ports.MetadataStore
	lookup ports.AuthorizationLookup
	rpc    config.RPCClientConfig
	logger watermill.LoggerAdapter
}

// NewHandlers creates new handlers
func NewHandlers(store ports.MetadataStore, lookup ports.AuthorizationLookup, rpc config.RPCClientConfig, logger watermill.LoggerAdapter) *Handlers {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Handlers{
		store:  store,
		lookup: lookup,
		rpc:    rpc,
		logger: logger,
	}
}

// WalletAuthorization reports whether a wallet may sign in
func (h *Handlers) WalletAuthorization(c *gin.Context) {
	c.JSON(http.StatusOK, h.lookup.Lookup(c.Request.Context(), c.Param("address")))
}

// Me returns the authenticated identity
func (h *Handlers) Me(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortWithAuthError(c, core.ErrNotAuthorized)
		return
	}
	c.JSON(http.StatusOK, id)
}

// Network returns the chain endpoint wallet adapters should use
func (h *Handlers) Network(c *gin.Context) {
	c.JSON(http.StatusOK, h.rpc)
}

// ListWallets lists authorized wallets
func (h *Handlers) ListWallets(c *gin.Context) {
	wallets, err := h.store.ListWallets(c.Request.Context())
	if err != nil {
		storeError(c, h.logger, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, wallets)
}

// AddWallet authorizes a new wallet
func (h *Handlers) AddWallet(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address"`
		Name          string `json:"name"`
		Role          string `json:"role"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	address := strings.TrimSpace(req.WalletAddress)
	if address == "" {
		badRequest(c, "Wallet address is required")
		return
	}
	if !verifier.ValidIdentity(address) {
		badRequest(c, "Invalid wallet address format")
		return
	}
	if req.Role == "" {
		req.Role = core.RoleEditor.String()
	}
	role, err := core.ParseAssignableRole(req.Role)
	if err != nil {
		badRequest(c, "Invalid role")
		return
	}

	id, err := h.store.AddWallet(c.Request.Context(), core.WalletInput{
		Address: address,
		Name:    req.Name,
		Role:    role,
		Notes:   req.Notes,
	})
	if err != nil {
		storeError(c, h.logger, err, "Failed to add user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "User added successfully"})
}

// UpdateWallet changes the provided fields of a wallet
func (h *Handlers) UpdateWallet(c *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
		Notes    *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	upd := core.WalletUpdate{Name: req.Name, IsActive: req.IsActive, Notes: req.Notes}
	if req.Role != nil {
		role, err := core.ParseAssignableRole(*req.Role)
		if err != nil {
			badRequest(c, "Invalid role")
			return
		}
		upd.Role = &role
	}
	if upd.Empty() {
		badRequest(c, "No fields to update")
		return
	}

	address := c.Param("wallet")
	if upd.IsActive != nil && !*upd.IsActive && h.isSelf(c, address) {
		badRequest(c, "Cannot deactivate your own account")
		return
	}

	wallet, err := h.store.UpdateWallet(c.Request.Context(), address, upd)
	if err != nil {
		storeError(c, h.logger, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// DeactivateWallet revokes a wallet without deleting it
func (h *Handlers) DeactivateWallet(c *gin.Context) {
	address := c.Param("wallet")
	if h.isSelf(c, address) {
		badRequest(c, "Cannot deactivate your own account")
		return
	}

	if err := h.store.DeactivateWallet(c.Request.Context(), address); err != nil {
		storeError(c, h.logger, err, "Failed to deactivate user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}

func (h *Handlers) isSelf(c *gin.Context, address string) bool {
	id, ok := identityFrom(c)
	return ok && id.Identity == address
}

// ListTokens lists token metadata overrides
func (h *Handlers) ListTokens(c *gin.Context) {
	q := core.TokenQuery{
		ActiveOnly:     c.Query("active_only") != "false",
		IncludeDeleted: c.Query("include_deleted") == "true",
		Search:         c.Query("search"),
		Limit:          queryInt(c, "limit", core.DefaultTokenPageSize),
		Offset:         queryInt(c, "offset", 0),
	}.Normalize()

	tokens, hasMore, err := h.store.ListTokens(c.Request.Context(), q)
	if err != nil {
		storeError(c, h.logger, err, "Failed to fetch tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": tokens,
		"pagination": gin.H{
			"limit":   q.Limit,
			"offset":  q.Offset,
			"hasMore": hasMore,
		},
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// GetToken returns the override of a single mint
func (h *Handlers) GetToken(c *gin.Context) {
	token, err := h.store.GetToken(c.Request.Context(), c.Param("mint"))
	if err != nil {
		storeError(c, h.logger, err, "Failed to fetch token")
		return
	}
	c.JSON(http.StatusOK, token)
}

// CreateToken creates or replaces an override from the request body
func (h *Handlers) CreateToken(c *gin.Context) {
	var in core.TokenInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	h.upsertToken(c, in, http.StatusCreated)
}

// UpdateToken replaces the override of the mint in the path
func (h *Handlers) UpdateToken(c *gin.Context) {
	var in core.TokenInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	in.Mint = c.Param("mint")
	h.upsertToken(c, in, http.StatusOK)
}

func (h *Handlers) upsertToken(c *gin.Context, in core.TokenInput, status int) {
	in.Mint = strings.TrimSpace(in.Mint)
	if in.Mint == "" {
		badRequest(c, "Mint address is required")
		return
	}
	if !core.ValidMintAddress(in.Mint) {
		badRequest(c, "Invalid mint address format")
		return
	}

	token, err := h.store.UpsertToken(c.Request.Context(), in)
	if err != nil {
		storeError(c, h.logger, err, "Failed to save token metadata")
		return
	}
	c.JSON(status, token)
}

// DeleteToken soft-deletes an override
func (h *Handlers) DeleteToken(c *gin.Context) {
	if err := h.store.SoftDeleteToken(c.Request.Context(), c.Param("mint")); err != nil {
		storeError(c, h.logger, err, "Failed to delete token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token deleted successfully"})
}

// RestoreToken revives a soft-deleted override
func (h *Handlers) RestoreToken(c *gin.Context) {
	token, err := h.store.RestoreToken(c.Request.Context(), c.Param("mint"))
	if err != nil {
		storeError(c, h.logger, err, "Failed to restore token")
		return
	}
	c.JSON(http.StatusOK, token)
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
