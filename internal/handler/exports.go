package handler

import (
	"net/http"
	"path/filepath"

	"merchquote/internal/apierror"
	"merchquote/internal/dto"
	"merchquote/internal/model"
	"merchquote/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExportsHandler struct{ svc service.ExportService }

func NewExportsHandler(svc service.ExportService) *ExportsHandler {
	return &ExportsHandler{svc: svc}
}

// Enqueue godoc
// @Summary Request a PDF or spreadsheet export of a quote session
// @Tags exports
// @Accept json
// @Produce json
// @Param body body dto.ExportRequest true "Session, format and optional recipient"
// @Success 202 {object} dto.ExportResponse
// @Router /v1/exports [post]
func (h *ExportsHandler) Enqueue(c *gin.Context) {
	var req dto.ExportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Enqueue(c.Request.Context(), operatorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Preview returns the document exactly as an export of the session would
// render it, letterhead included.
func (h *ExportsHandler) Preview(c *gin.Context) {
	resp, err := h.svc.Preview(c.Request.Context(), c.Param("sid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExportsHandler) Get(c *gin.Context) {
	id, ok := parseExportID(c)
	if !ok {
		return
	}
	operatorID, ok := operatorIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), operatorID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExportsHandler) List(c *gin.Context) {
	var filter dto.ExportFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	operatorID, ok := operatorIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), operatorID, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Download streams the rendered file once the export completes.
func (h *ExportsHandler) Download(c *gin.Context) {
	id, ok := parseExportID(c)
	if !ok {
		return
	}
	operatorID, ok := operatorIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), operatorID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if resp.Status != model.ExportCompleted || resp.FilePath == "" {
		c.JSON(http.StatusConflict, apierror.New("Export is not ready"))
		return
	}
	c.FileAttachment(resp.FilePath, filepath.Base(resp.FilePath))
}

func parseExportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid export id"))
		return uuid.Nil, false
	}
	return id, true
}
