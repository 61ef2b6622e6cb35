package appointment

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/appointment"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	appts := rg.Group("/appointments")
	{
		appts.POST("", h.CreateAppointment)
		appts.GET("", h.ListAppointments)
		appts.GET("/:id", h.GetAppointment)
		appts.PUT("/:id", h.UpdateAppointment)
		appts.POST("/:id/complete", h.CompleteAppointment)
		appts.DELETE("/:id", h.CancelAppointment)
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest("invalid appointment id", err)
	}
	return id, nil
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	found, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	completed, err := h.service.CompleteAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, completed)
}

// CancelAppointment soft-deletes: the booking flips to cancelled and frees
// its slot. The body is optional.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CancelAppointmentRequest
	_ = c.ShouldBindJSON(&req)

	cancelled, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cancelled)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filter model.AppointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}
	filter.Normalize()

	appts, total, err := h.service.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appts, filter.Page, filter.PageSize, total)
}
