package labtest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/catalog"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/httputil"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tests := rg.Group("/lab-tests")
	{
		tests.POST("", h.CreateTest)
		tests.GET("", h.ListTests)
		tests.GET("/:id", h.GetTest)
		tests.PUT("/:id", h.UpdateTest)
		tests.POST("/import", h.ImportTests)
		tests.GET("/duplicates", h.FindDuplicates)
		tests.POST("/duplicates/resolve", h.ResolveDuplicates)
	}
}

func (h *Handler) CreateTest(c *gin.Context) {
	var req model.CreateLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreateTest(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetTest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid lab test id", err))
		return
	}

	found, err := h.service.GetTest(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateTest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid lab test id", err))
		return
	}

	var req model.UpdateLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateTest(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.service.ListActiveTests(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) ImportTests(c *gin.Context) {
	var req model.ImportLabTestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	imported, err := h.service.ImportTests(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, imported)
}

func (h *Handler) FindDuplicates(c *gin.Context) {
	key, err := catalog.ParseGroupKey(c.Query("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	groups, err := h.service.FindDuplicates(c.Request.Context(), key)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, groups)
}

func (h *Handler) ResolveDuplicates(c *gin.Context) {
	key, err := catalog.ParseGroupKey(c.Query("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resolutions, err := h.service.ResolveAll(c.Request.Context(), key)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resolutions)
}
