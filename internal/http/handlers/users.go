package handlers

import (
	"net/http"

	"taskboard/internal/domain"

	"github.com/gin-gonic/gin"
)

// SearchUsers handles GET /users.
func (h *Handler) SearchUsers(c *gin.Context) {
	if _, ok := externalID(c); !ok {
		return
	}

	result, err := h.Users.SearchUsers(
		c.Request.Context(),
		c.Query("search"),
		queryInt(c, "page", 1),
		queryInt(c, "pageSize", domain.DefaultPageSize),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me handles GET /users/me, provisioning the caller on first contact.
func (h *Handler) Me(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	user, err := h.Users.GetCurrentUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByExternalID handles GET /users/:externalId.
func (h *Handler) GetUserByExternalID(c *gin.Context) {
	if _, ok := externalID(c); !ok {
		return
	}

	summary, err := h.Users.GetUserSummaryByExternalID(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ProvisionUser handles POST /users/provision. With a name and email in
// the body it creates the user explicitly; otherwise it lazily provisions
// from the directory.
func (h *Handler) ProvisionUser(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional; a missing one means lazy provisioning

	if req.Name != "" && req.Email != "" {
		user, err := h.Users.CreateNewUser(c.Request.Context(), id, req.Name, req.Email)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Location", "/api/v1/users/"+user.ExternalID)
		c.JSON(http.StatusCreated, user)
		return
	}

	user, err := h.Users.ProvisionCurrentUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me with a partial {name} body.
func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	user, err := h.Users.UpdateCurrentUser(c.Request.Context(), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
