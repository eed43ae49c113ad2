package handler

import (
	"net/http"
	"strconv"

	"merchquote/internal/apierror"
	"merchquote/internal/dto"
	"merchquote/internal/middleware"
	"merchquote/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuotesHandler struct{ svc service.QuoteService }

func NewQuotesHandler(svc service.QuoteService) *QuotesHandler {
	return &QuotesHandler{svc: svc}
}

// ─── Sessions ────────────────────────────────────────────────────────────────

func (h *QuotesHandler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.svc.CreateSession())
}

func (h *QuotesHandler) GetSession(c *gin.Context) {
	resp, err := h.svc.GetSession(c.Param("sid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) DeleteSession(c *gin.Context) {
	if err := h.svc.DeleteSession(c.Param("sid")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Lines ───────────────────────────────────────────────────────────────────

// CommitLine godoc
// @Summary Add a priced line to a quote session
// @Tags quotes
// @Accept json
// @Produce json
// @Param sid path string true "Session id"
// @Param body body dto.CommitLineRequest true "Product, selection and addons"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError "Sold out"
// @Failure 422 {object} apierror.APIError "Required option missing"
// @Router /v1/quotes/sessions/{sid}/lines [post]
func (h *QuotesHandler) CommitLine(c *gin.Context) {
	var req dto.CommitLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CommitLine(c.Request.Context(), c.Param("sid"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) CommitAddonLine(c *gin.Context) {
	var req dto.AddonSelectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CommitAddonLine(c.Request.Context(), c.Param("sid"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) CommitManualLine(c *gin.Context) {
	var req dto.ManualLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CommitManualLine(c.Param("sid"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) UpdateLine(c *gin.Context) {
	lineID, ok := parseLineID(c)
	if !ok {
		return
	}
	var req dto.UpdateLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLine(c.Param("sid"), lineID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) RemoveLine(c *gin.Context) {
	lineID, ok := parseLineID(c)
	if !ok {
		return
	}
	resp, err := h.svc.RemoveLine(c.Param("sid"), lineID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) ClearLines(c *gin.Context) {
	resp, err := h.svc.ClearLines(c.Param("sid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Overrides ───────────────────────────────────────────────────────────────

func (h *QuotesHandler) OverrideLine(c *gin.Context) {
	lineID, ok := parseLineID(c)
	if !ok {
		return
	}
	var req dto.OverrideLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OverrideLine(c.Param("sid"), lineID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) ClearOverride(c *gin.Context) {
	lineID, ok := parseLineID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ClearOverride(c.Param("sid"), lineID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Settings ────────────────────────────────────────────────────────────────

func (h *QuotesHandler) UpdateSettings(c *gin.Context) {
	var req dto.QuoteSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSettings(c.Param("sid"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Saved quotes ────────────────────────────────────────────────────────────

func (h *QuotesHandler) Save(c *gin.Context) {
	var req dto.SaveQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Save(c.Request.Context(), c.Param("sid"), operatorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *QuotesHandler) ListSaved(c *gin.Context) {
	var filter dto.SavedQuoteFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListSaved(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) GetSaved(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid quote id"))
		return
	}
	resp, err := h.svc.GetSaved(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotesHandler) DeleteSaved(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid quote id"))
		return
	}
	if err := h.svc.DeleteSaved(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func parseLineID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("lineID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid line id"))
		return 0, false
	}
	return id, true
}

func operatorIDFromClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Authentication required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
		return uuid.Nil, false
	}
	return id, true
}
