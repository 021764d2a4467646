package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/services"
)

type EventPaymentHandler struct {
	paymentService *services.EventPaymentService
}

func NewEventPaymentHandler(paymentService *services.EventPaymentService) *EventPaymentHandler {
	return &EventPaymentHandler{paymentService: paymentService}
}

// @Summary List Event Payments
// @Description Get all payments recorded for an event
// @Tags EventPayments
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /events/{event_id}/payments [get]
func (h *EventPaymentHandler) Index(c *gin.Context) {
	eventID, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)

	payments, err := h.paymentService.FindByEvent(c.Request.Context(), uint(eventID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	collected, err := h.paymentService.Collected(c.Request.Context(), uint(eventID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses, "collected": collected})
}

type EventPaymentRequest struct {
	FloorID     uint    `json:"floor_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

// @Summary Record Event Payment
// @Description Record a (possibly partial) payment of a floor's event quota
// @Tags EventPayments
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param request body EventPaymentRequest true "Payment Data"
// @Success 201 {object} models.EventPaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id}/payments [post]
func (h *EventPaymentHandler) Create(c *gin.Context) {
	eventID, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)

	var req EventPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate, err := parseDateOrToday(req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de pago inválida"})
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(),
		uint(eventID), req.FloorID, req.Amount, paymentDate,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse(), "message": "Aporte registrado"})
}

type UpdateEventPaymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

// @Summary Update Event Payment
// @Description Edit a payment's amount or date; the balance absorbs only the difference
// @Tags EventPayments
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param payment_id path int true "Payment ID"
// @Param request body UpdateEventPaymentRequest true "Payment Data"
// @Success 200 {object} models.EventPaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id}/payments/{payment_id} [put]
func (h *EventPaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req UpdateEventPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aporte no encontrado"})
		return
	}
	if req.Amount == 0 {
		req.Amount = current.AmountPaid
	}
	paymentDate := current.PaymentDate
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de pago inválida"})
			return
		}
	}

	payment, err := h.paymentService.Update(c.Request.Context(),
		uint(id), req.Amount, paymentDate,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Aporte actualizado"})
}

// @Summary Delete Event Payment
// @Description Delete a payment and debit its amount from the balance
// @Tags EventPayments
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id}/payments/{payment_id} [delete]
func (h *EventPaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err := h.paymentService.Delete(c.Request.Context(), uint(id),
		getUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Aporte eliminado"})
}
