package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/service"
	"simcoe_portal/internal/quotes/transport"
	"simcoe_portal/platform/httpkit"
)

// draftCall runs a draft operation for the authenticated user and writes
// the refreshed draft view.
func (h *Handler) draftCall(c *gin.Context, fn func(userID, draftID string) (service.DraftView, error)) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	draftView, err := fn(id.UserID(), c.Param("draftId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, draftView)
}

func (h *Handler) CreateDraft(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	draftView, err := h.svc.CreateDraft(c.Request.Context(), id.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, draftView)
}

func (h *Handler) EditAsDraft(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	draftView, err := h.svc.EditQuote(c.Request.Context(), id.UserID(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, draftView)
}

func (h *Handler) GetDraft(c *gin.Context) {
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.GetDraft(c.Request.Context(), userID, draftID)
	})
}

func (h *Handler) DiscardDraft(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	if err := h.svc.DiscardDraft(c.Request.Context(), id.UserID(), c.Param("draftId")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateClientInfo(c *gin.Context) {
	var req transport.ClientInfoRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.UpdateClientInfo(c.Request.Context(), userID, draftID, req.ToDomain())
	})
}

func (h *Handler) SetDiscount(c *gin.Context) {
	var req transport.SetDiscountRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.SetDiscount(c.Request.Context(), userID, draftID, domain.DiscountType(req.Type), req.Value)
	})
}

func (h *Handler) RemoveLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.RemoveLine(c.Request.Context(), userID, draftID, index)
	})
}

func (h *Handler) SubmitDraft(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	quote, err := h.svc.SubmitDraft(c.Request.Context(), id.UserID(), c.Param("draftId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.QuoteResponse{Quote: quote})
}

func (h *Handler) BeginLine(c *gin.Context) {
	var req transport.BeginLineRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorBegin(c.Request.Context(), userID, draftID, domain.ServiceType(req.ServiceType))
	})
}

func (h *Handler) EditLine(c *gin.Context) {
	var req transport.EditLineRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorBeginEdit(c.Request.Context(), userID, draftID, req.Index)
	})
}

func (h *Handler) SetServiceType(c *gin.Context) {
	var req transport.SetServiceTypeRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorSetServiceType(c.Request.Context(), userID, draftID, domain.ServiceType(req.ServiceType))
	})
}

func (h *Handler) SetUnits(c *gin.Context) {
	var req transport.SetUnitsRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorSetUnits(c.Request.Context(), userID, draftID, req.Units)
	})
}

func (h *Handler) SetMeasurements(c *gin.Context) {
	var req transport.SetMeasurementsRequest
	if !h.bind(c, &req) {
		return
	}
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorSetMeasurements(c.Request.Context(), userID, draftID, req.ToDomain())
	})
}

func (h *Handler) CancelLine(c *gin.Context) {
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorCancel(c.Request.Context(), userID, draftID)
	})
}

func (h *Handler) SubmitLine(c *gin.Context) {
	h.draftCall(c, func(userID, draftID string) (service.DraftView, error) {
		return h.svc.EditorSubmit(c.Request.Context(), userID, draftID)
	})
}
