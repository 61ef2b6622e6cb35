package series

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

// Handler exposes the identifier series configuration to administrators.
// current_number is read-only through this surface; it only ever moves via
// document creation.
type Handler struct {
	service *sequence.Service
}

func NewHandler(service *sequence.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/series", h.ListSeries)
	rg.POST("/series", h.CreateSeries)
}

func (h *Handler) ListSeries(c *gin.Context) {
	series, err := h.service.ListSeries(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, series)
}

type createSeriesRequest struct {
	Code        string `json:"code" binding:"required,alphanum,uppercase"`
	Prefix      string `json:"prefix"`
	Suffix      string `json:"suffix"`
	Padding     int    `json:"padding" binding:"gte=0,lte=12"`
	Format      string `json:"format"`
	StartNumber int64  `json:"start_number" binding:"gte=0"`
}

func (h *Handler) CreateSeries(c *gin.Context) {
	var req createSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	series := &model.Series{
		Code:        req.Code,
		Prefix:      req.Prefix,
		Suffix:      req.Suffix,
		Padding:     req.Padding,
		Format:      req.Format,
		StartNumber: req.StartNumber,
		IsActive:    true,
	}
	if err := h.service.CreateSeries(c.Request.Context(), series); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, series)
}
