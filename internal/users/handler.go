package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/phone"
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

func (h *handler) bind(c *gin.Context, req interface{}) bool {
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

// normalizeInput puts a recognizable phone number into E.164 before it
// reaches the quote service, which is what its OTP login expects.
func normalizeInput(input upstream.UserInput) upstream.UserInput {
	if phone.IsValid(input.PhoneNumber) {
		input.PhoneNumber = phone.NormalizeE164(input.PhoneNumber)
	}
	return input
}

func (h *handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.client.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, list)
}

func (h *handler) Get(c *gin.Context) {
	user, err := h.client.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, user)
}

func (h *handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.client.CreateUser(c.Request.Context(), normalizeInput(req.toInput()))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, user)
}

func (h *handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.client.UpdateUser(c.Request.Context(), c.Param("id"), normalizeInput(req.toInput()))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, user)
}

func (h *handler) Delete(c *gin.Context) {
	if err := h.client.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
