package handler

import (
	"net/http"

	"klikpos/internal/service"

	"github.com/gin-gonic/gin"
)

type POSProfileHandler struct{ svc service.ProfileService }

func NewPOSProfileHandler(svc service.ProfileService) *POSProfileHandler {
	return &POSProfileHandler{svc: svc}
}

// Current godoc
// @Summary Get the caller's POS profile
// @Tags pos-profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.POSProfileResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/pos-profile [get]
func (h *POSProfileHandler) Current(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Current(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentModes godoc
// @Summary List the payment modes of the caller's POS profile
// @Tags pos-profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PaymentModeResponse
// @Router /v1/pos-profile/payment-modes [get]
func (h *POSProfileHandler) PaymentModes(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.PaymentModes(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
