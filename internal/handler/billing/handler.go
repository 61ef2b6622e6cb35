package billing

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/billing"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bills := rg.Group("/bills")
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
		bills.POST("/:id/pay", h.PayBill)
		bills.POST("/:id/cancel", h.CancelBill)
	}
}

func (h *Handler) CreateBill(c *gin.Context) {
	var req model.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreateBill(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetBill(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid bill id", err))
		return
	}

	found, err := h.service.GetBill(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) PayBill(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid bill id", err))
		return
	}

	var req model.PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	paid, err := h.service.PayBill(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, paid)
}

func (h *Handler) CancelBill(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid bill id", err))
		return
	}

	var req model.CancelBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	cancelled, err := h.service.CancelBill(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cancelled)
}

func (h *Handler) ListBills(c *gin.Context) {
	var filter model.BillFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}
	filter.Normalize()

	bills, total, err := h.service.ListBills(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, bills, filter.Page, filter.PageSize, total)
}
