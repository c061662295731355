package handler

import (
	"errors"
	"net/http"

	"funnel_backend/internal/leads/conversion"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/funnel"
	"funnel_backend/internal/leads/management"
	"funnel_backend/internal/leads/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler exposes the lead lifecycle operations over HTTP.
type Handler struct {
	management *management.Service
	funnel     *funnel.Service
	conversion *conversion.Service
	val        *validator.Validator
}

// New creates a new leads handler.
func New(mgmt *management.Service, fun *funnel.Service, conv *conversion.Service, val *validator.Validator) *Handler {
	return &Handler{management: mgmt, funnel: fun, conversion: conv, val: val}
}

// RegisterRoutes mounts the lead routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/activities", h.LogActivity)
	rg.POST("/:id/score/recompute", h.RecomputeScore)
	rg.PUT("/:id/qualification", h.SetQualification)
	rg.GET("/:id/qualification", h.EvaluateQualification)
	rg.POST("/:id/transition", h.Transition)
	rg.POST("/:id/disqualify", h.Disqualify)
	rg.POST("/:id/convert", h.Convert)
}

// RegisterCustomerRoutes mounts the converted-customer routes.
func (h *Handler) RegisterCustomerRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetCustomer)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leads, err := h.management.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"leads": leads, "total": len(leads)})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.management.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) LogActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.LogActivity(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) RecomputeScore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.management.RecomputeScore(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) SetQualification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SetQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.SetQualification(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) EvaluateQualification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.funnel.Evaluate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.funnel.Transition(c.Request.Context(), id, domain.TransitionRequest{
		Target:   domain.Stage(req.TargetStage),
		Override: req.Override,
		Reason:   domain.OverrideReason(req.Reason),
	}, identity.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Disqualify(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.DisqualifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.funnel.Disqualify(c.Request.Context(), id, req.Reason, identity.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Convert(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customer, err := h.conversion.Convert(c.Request.Context(), id, req, identity.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.conversion.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, customer)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps typed domain errors to HTTP responses; anything not
// recognized falls through to the apperr mapping.
func respondError(c *gin.Context, err error) {
	var invalid *domain.InvalidEntityError
	if errors.As(err, &invalid) {
		httpkit.Error(c, http.StatusBadRequest, invalid.Error(), gin.H{"field": invalid.Field, "kind": invalid.Kind})
		return
	}
	var illegal *domain.IllegalTransitionError
	if errors.As(err, &illegal) {
		httpkit.Error(c, http.StatusConflict, illegal.Error(), gin.H{"from": illegal.From, "to": illegal.To})
		return
	}
	var incomplete *domain.QualificationIncompleteError
	if errors.As(err, &incomplete) {
		httpkit.Error(c, http.StatusUnprocessableEntity, incomplete.Error(), gin.H{"missing": incomplete.Missing})
		return
	}
	var precondition *domain.PreconditionError
	if errors.As(err, &precondition) {
		httpkit.Error(c, http.StatusUnprocessableEntity, precondition.Error(), gin.H{"condition": precondition.Condition})
		return
	}
	httpkit.HandleError(c, err)
}
