package tariffs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type handler struct {
	client *upstream.Client
	val    *validator.Validator
}

func (h *handler) bind(c *gin.Context, req *SettingsRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	if !domain.ServiceType(req.ServiceType).Valid() {
		httpkit.Error(c, http.StatusBadRequest, "unknown service type", nil)
		return false
	}
	return true
}

func (h *handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.client.ListQuoteSettings(c.Request.Context(), page, limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, list)
}

func (h *handler) Create(c *gin.Context) {
	var req SettingsRequest
	if !h.bind(c, &req) {
		return
	}

	settings, err := h.client.CreateQuoteSettings(c.Request.Context(), req.toDomain())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, settings)
}

func (h *handler) Update(c *gin.Context) {
	var req SettingsRequest
	if !h.bind(c, &req) {
		return
	}

	settings, err := h.client.UpdateQuoteSettings(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, settings)
}

func (h *handler) Delete(c *gin.Context) {
	if err := h.client.DeleteQuoteSettings(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
