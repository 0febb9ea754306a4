package importledger

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler { return &Handler{s} }

// clientIP reads the address captured by the audit middleware; importing
// the middleware package here would form a cycle through auth.
func clientIP(c *gin.Context) string {
	if ip := c.GetString("client_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

type uploadRequest struct {
	FileName string                   `json:"fileName"`
	FileType string                   `json:"fileType"`
	Records  int                      `json:"records"`
	Data     []map[string]interface{} `json:"data"`
	UserID   uint                     `json:"userId"`
	UserName string                   `json:"userName"`
	OrgID    uint                     `json:"orgId"`
	OrgName  string                   `json:"orgName"`
	Notes    string                   `json:"notes"`
}

// Upload records one client-side parsed file. The client's row count is
// ignored in favour of len(data).
func (h *Handler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	imp, err := h.service.RecordImport(c.Request.Context(), RecordInput{
		FileName: req.FileName,
		FileType: req.FileType,
		Data:     req.Data,
		UserID:   req.UserID,
		UserName: req.UserName,
		OrgID:    req.OrgID,
		OrgName:  req.OrgName,
		Notes:    req.Notes,
	}, clientIP(c))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fileName, data, userId, userName, orgId and orgName are required"})
			return
		}
		log.Printf("record import failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Import recorded", "import": imp})
}

func (h *Handler) PastImports(c *gin.Context) {
	orgID, err := strconv.ParseUint(c.Param("orgId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization id"})
		return
	}

	imports, err := h.service.ListImports(c.Request.Context(), uint(orgID))
	if err != nil {
		log.Printf("list imports failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imports": imports})
}

// ExportImports streams the org's import history as csv, xlsx or pdf.
func (h *Handler) ExportImports(c *gin.Context) {
	orgID, err := strconv.ParseUint(c.Param("orgId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization id"})
		return
	}

	format := c.DefaultQuery("format", FormatCSV)
	data, filename, contentType, err := h.service.ExportImports(c.Request.Context(), uint(orgID), format)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format"})
			return
		}
		log.Printf("export imports failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
