package handler

import (
	"net/http"

	"merchquote/internal/apierror"
	"merchquote/internal/dto"
	"merchquote/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingsService }

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) GetLetterhead(c *gin.Context) {
	key, ok := letterheadKey(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetLetterhead(c.Request.Context(), key)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) UpdateLetterhead(c *gin.Context) {
	key, ok := letterheadKey(c)
	if !ok {
		return
	}
	var req dto.UpdateLetterheadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLetterhead(c.Request.Context(), key, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) GetDefaults(c *gin.Context) {
	resp, err := h.svc.GetDefaults(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) UpdateDefaults(c *gin.Context) {
	var req dto.UpdateDefaultsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateDefaults(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func letterheadKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if key != "primary" && key != "secondary" {
		c.JSON(http.StatusBadRequest, apierror.New("Unknown letterhead key"))
		return "", false
	}
	return key, true
}
