package handler

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"property_portal/internal/model"
	"property_portal/internal/service"
	"property_portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// maxRequestBody leaves room for the text fields next to a full-size image.
const maxRequestBody = storage.MaxFileSize + 1<<20

// PropertyHandler handles property listing requests
type PropertyHandler struct {
	service service.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(s service.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: s}
}

func parsePropertyID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return 0, false
	}
	return id, true
}

// bindPropertyInput accepts a multipart form (with an optional "image"
// file) or a JSON body. It writes the error response itself and reports
// whether the handler should continue.
func bindPropertyInput(c *gin.Context) (model.PropertyInput, *multipart.FileHeader, bool) {
	var input model.PropertyInput
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)

	if err := c.ShouldBind(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": storage.ErrFileTooLarge.Error()})
			return input, nil, false
		}
		respondBindError(c, err, &input)
		return input, nil, false
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return input, nil, true
	}
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload: " + err.Error()})
		return input, nil, false
	}
	return input, file, true
}

// respondUploadError handles rejected images; it reports false for any
// other error.
func respondUploadError(c *gin.Context, err error) bool {
	if errors.Is(err, storage.ErrInvalidFileType) || errors.Is(err, storage.ErrFileTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return true
	}
	return false
}

func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties, err := h.service.ListProperties(c.Request.Context())
	if err != nil {
		log.Printf("Error listing properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}

	property, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Error getting property %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	input, file, ok := bindPropertyInput(c)
	if !ok {
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), input, file)
	if err != nil {
		if respondUploadError(c, err) {
			return
		}
		log.Printf("Error creating property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	input, file, ok := bindPropertyInput(c)
	if !ok {
		return
	}

	property, err := h.service.UpdateProperty(c.Request.Context(), id, input, file)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		if respondUploadError(c, err) {
			return
		}
		log.Printf("Error updating property %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Error deleting property %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Property deleted"})
}

func (h *PropertyHandler) ExportPropertiesCSV(c *gin.Context) {
	csvBuffer, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		log.Printf("Error exporting properties to CSV: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export properties to CSV"})
		return
	}

	fileName := fmt.Sprintf("properties_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

func (h *PropertyHandler) ImportPropertiesXLSX(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed: " + err.Error()})
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx files can be imported"})
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Printf("Error opening uploaded workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer f.Close()

	result, err := h.service.ImportXLSX(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWorkbook) || errors.Is(err, service.ErrEmptyWorkbook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error importing properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import properties"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterPropertyRoutes registers property routes; writes go through authMW
func (h *PropertyHandler) RegisterPropertyRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	properties := rg.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.POST("", authMW, h.CreateProperty)
		properties.PUT("/:id", authMW, h.UpdateProperty)
		properties.DELETE("/:id", authMW, h.DeleteProperty)
		properties.GET("/export", authMW, h.ExportPropertiesCSV)
		properties.POST("/import", authMW, h.ImportPropertiesXLSX)
	}
}
