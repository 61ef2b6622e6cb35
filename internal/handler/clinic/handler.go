package clinic

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/clinic"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

type Handler struct {
	service *clinic.Service
}

func NewHandler(service *clinic.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/clinic", h.GetClinic)
	rg.PUT("/clinic", h.UpdateClinic)
}

func (h *Handler) GetClinic(c *gin.Context) {
	found, err := h.service.GetClinic(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateClinic(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}
