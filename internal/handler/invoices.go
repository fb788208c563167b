package handler

import (
	"fmt"
	"net/http"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/repository"
	"klikpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Totals godoc
// @Summary Preview invoice totals without saving
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ComputeTotalsRequest true "Net total and taxes"
// @Success 200 {object} dto.TotalsResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/invoices/totals [post]
func (h *InvoicesHandler) Totals(c *gin.Context) {
	var req dto.ComputeTotalsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ComputeTotals(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a sales invoice in the caller's open session
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Submit godoc
// @Summary Submit a draft invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/invoices/{id}/submit [post]
func (h *InvoicesHandler) Submit(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Return godoc
// @Summary Create a return against a submitted invoice
// @Description A declared refund that differs from the computed one by less than the epsilon is absorbed as rounding.
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Original invoice ID"
// @Param body body dto.ReturnInvoiceRequest true "Refund"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/invoices/{id}/return [post]
func (h *InvoicesHandler) Return(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReturnInvoiceRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateReturn(c.Request.Context(), a, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type invoiceListQuery struct {
	SessionID   string `form:"session_id"`
	Status      string `form:"status"`
	PostingDate string `form:"posting_date"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// List godoc
// @Summary List invoices visible to the caller
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param session_id query string false "Session ID"
// @Param status query string false "draft | submitted | all"
// @Param posting_date query string false "YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.InvoiceListResponse
// @Router /v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var q invoiceListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	filter := repository.InvoiceFilter{
		Status:      q.Status,
		PostingDate: q.PostingDate,
		Page:        q.Page,
		Limit:       q.Limit,
	}
	if q.SessionID != "" {
		id, err := uuid.Parse(q.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid session_id"))
			return
		}
		filter.SessionID = &id
	}
	resp, err := h.svc.List(c.Request.Context(), a, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary Download the invoice receipt
// @Tags invoices
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/{id}/pdf [get]
func (h *InvoicesHandler) PDF(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, filename, err := h.svc.PDF(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// WhatsApp godoc
// @Summary Queue the invoice for WhatsApp delivery
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body dto.SendWhatsAppRequest false "Override mobile number"
// @Success 202 {object} dto.NotificationResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/invoices/{id}/whatsapp [post]
func (h *InvoicesHandler) WhatsApp(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SendWhatsAppRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SendWhatsApp(c.Request.Context(), a, id, req.Mobile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
