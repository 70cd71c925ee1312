// Package handler exposes the quote endpoints over Gin. All routes run
// behind the access-token check and the session middleware, so every
// request context already carries the upstream bearer token.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/service"
	"simcoe_portal/internal/quotes/transport"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id/status", h.SetStatus)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/edit", h.EditAsDraft)
	rg.GET("/:id/invoice", h.DownloadInvoice)
	rg.POST("/:id/invoice/send", h.SendInvoice)

	rg.POST("/drafts", h.CreateDraft)
	rg.GET("/drafts/:draftId", h.GetDraft)
	rg.DELETE("/drafts/:draftId", h.DiscardDraft)
	rg.PUT("/drafts/:draftId/client-info", h.UpdateClientInfo)
	rg.PUT("/drafts/:draftId/discount", h.SetDiscount)
	rg.DELETE("/drafts/:draftId/lines/:index", h.RemoveLine)
	rg.POST("/drafts/:draftId/submit", h.SubmitDraft)

	rg.POST("/drafts/:draftId/editor/begin", h.BeginLine)
	rg.POST("/drafts/:draftId/editor/edit", h.EditLine)
	rg.PUT("/drafts/:draftId/editor/service-type", h.SetServiceType)
	rg.PUT("/drafts/:draftId/editor/units", h.SetUnits)
	rg.PUT("/drafts/:draftId/editor/measurements", h.SetMeasurements)
	rg.POST("/drafts/:draftId/editor/cancel", h.CancelLine)
	rg.POST("/drafts/:draftId/editor/submit", h.SubmitLine)
}

// bind decodes and validates a JSON body, replying 400 itself on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var query transport.ListQuotesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListQuotes(c.Request.Context(), id.UserID(), service.ListParams{
		Page:   query.Page,
		Limit:  query.Limit,
		Text:   query.Text,
		UserID: query.UserID,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Get(c *gin.Context) {
	quote, stale, err := h.svc.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.QuoteResponse{Quote: quote, Stale: stale})
}

func (h *Handler) SetStatus(c *gin.Context) {
	var req transport.SetStatusRequest
	if !h.bind(c, &req) {
		return
	}

	quote, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), domain.QuoteStatus(req.Status))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.QuoteResponse{Quote: quote})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteQuote(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DownloadInvoice(c *gin.Context) {
	raw, filename, err := h.svc.RenderInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", raw)
}

func (h *Handler) SendInvoice(c *gin.Context) {
	if err := h.svc.SendInvoice(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"message": "invoice delivery queued"})
}
