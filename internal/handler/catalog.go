package handler

import (
	"net/http"
	"strconv"

	"merchquote/internal/apierror"
	"merchquote/internal/dto"
	"merchquote/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Search godoc
// @Summary Search storefront products
// @Tags catalog
// @Produce json
// @Param q query string false "Name or code fragment"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ProductListResponse
// @Router /v1/catalog/products [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	var filter dto.CatalogSearchFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResolvePrice prices an option selection without touching any quote session.
// The storefront UI calls this on every option change.
func (h *CatalogHandler) ResolvePrice(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	var req dto.ResolvePriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ResolvePrice(c.Request.Context(), id, req.Selected)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListAddons(c *gin.Context) {
	resp, err := h.svc.ListAddons(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product id"))
		return 0, false
	}
	return id, true
}
