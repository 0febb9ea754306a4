package organization

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// clientIP reads the address captured by the audit middleware; importing
// the middleware package here would form a cycle through auth.
func clientIP(c *gin.Context) string {
	if ip := c.GetString("client_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

type createOrgReq struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contactEmail" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Plan         string `json:"plan"`
	Status       string `json:"status"`
}

// POST /createorg (also mounted at POST /orgs)
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req createOrgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, contact email and phone are required"})
		return
	}

	org, err := h.service.Create(c.Request.Context(), CreateInput(req),
		c.GetUint("user_id"), clientIP(c))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization input"})
			return
		}
		log.Printf("organization: create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Organization created", "organization": org})
}

// GET /orgs
func (h *Handler) ListOrganizations(c *gin.Context) {
	orgs, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("organization: list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, orgs)
}

type updateOrgReq struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contactEmail"`
	Phone        *string `json:"phone"`
	Plan         *string `json:"plan"`
	Status       *string `json:"status"`
}

// PUT /orgs/:id
func (h *Handler) UpdateOrganization(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	var req updateOrgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	org, err := h.service.Update(c.Request.Context(), uint(id), UpdateInput(req),
		c.GetUint("user_id"), clientIP(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization input"})
		default:
			log.Printf("organization: update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization updated", "organization": org})
}

// DELETE /orgs/:id
func (h *Handler) DeleteOrganization(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	err = h.service.Delete(c.Request.Context(), uint(id),
		c.GetUint("user_id"), clientIP(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
		log.Printf("organization: delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}
