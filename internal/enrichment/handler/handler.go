package handler

import (
	"errors"
	"net/http"

	"funnel_backend/internal/enrichment/client"
	"funnel_backend/internal/enrichment/service"
	"funnel_backend/internal/enrichment/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the enrichment gateway over HTTP.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new enrichment handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the enrichment routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/search", h.Search)
}

func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	if !req.HasLookupKey() {
		httpkit.Error(c, http.StatusBadRequest, "at least one lookup key is required", nil)
		return
	}

	results, err := h.service.Enrich(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"results": results, "total": len(results)})
}

func respondError(c *gin.Context, err error) {
	var unavailable *client.ProviderUnavailableError
	if errors.As(err, &unavailable) {
		httpkit.Error(c, http.StatusBadGateway, "enrichment provider unavailable", nil)
		return
	}
	var rejected *client.ProviderRejectedError
	if errors.As(err, &rejected) {
		httpkit.Error(c, http.StatusUnprocessableEntity, rejected.Error(), gin.H{"code": rejected.Code})
		return
	}
	httpkit.HandleError(c, err)
}
