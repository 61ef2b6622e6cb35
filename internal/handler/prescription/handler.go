package prescription

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/prescription"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	prescriptions := rg.Group("/prescriptions")
	{
		prescriptions.POST("", h.CreatePrescription)
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.POST("/:id/complete", h.CompletePrescription)
		prescriptions.POST("/:id/cancel", h.CancelPrescription)
	}
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreatePrescription(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid prescription id", err))
		return
	}

	found, err := h.service.GetPrescription(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) CompletePrescription(c *gin.Context) {
	h.transition(c, string(model.PrescriptionStatusCompleted))
}

func (h *Handler) CancelPrescription(c *gin.Context) {
	h.transition(c, string(model.PrescriptionStatusCancelled))
}

func (h *Handler) transition(c *gin.Context, target string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid prescription id", err))
		return
	}

	updated, err := h.service.TransitionStatus(c.Request.Context(), id, target)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	var filter model.PrescriptionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}
	filter.Normalize()

	prescriptions, total, err := h.service.ListPrescriptions(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, prescriptions, filter.Page, filter.PageSize, total)
}
