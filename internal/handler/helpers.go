package handler

import (
	"errors"
	"net/http"

	"merchquote/internal/apierror"
	"merchquote/internal/infra"
	"merchquote/internal/pricing"
	"merchquote/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate binds query-string filters and runs validator tags.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps domain errors to distinct status codes and messages.
// Pricing conditions each get their own message so the UI can surface the
// exact reason a selection was rejected.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrMissingRequiredOption):
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Required option not selected"))
	case errors.Is(err, pricing.ErrSoldOut):
		c.JSON(http.StatusConflict, apierror.New("Selected combination is sold out"))
	case errors.Is(err, pricing.ErrOptionRequired):
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Addon option not selected"))
	case errors.Is(err, pricing.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Session not found"))
	case errors.Is(err, service.ErrLineNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Line not found"))
	case errors.Is(err, service.ErrAddonNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Addon not found"))
	case errors.Is(err, service.ErrEmptyQuote):
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Quote has no lines"))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Not found"))
	case errors.Is(err, infra.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, apierror.New("Catalog service unavailable"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}
