package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
)

type MonthlyPaymentHandler struct {
	paymentService *services.MonthlyPaymentService
}

func NewMonthlyPaymentHandler(paymentService *services.MonthlyPaymentService) *MonthlyPaymentHandler {
	return &MonthlyPaymentHandler{paymentService: paymentService}
}

// @Summary List Monthly Payments
// @Description Get a paginated list of monthly dues payments
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param month query string false "Filter by month (YYYY-MM)"
// @Param floor_id query int false "Filter by floor"
// @Param is_complete query bool false "Filter by completion"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /monthly_payments [get]
func (h *MonthlyPaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["month"] = c.Query("month")
	query.Filters["floor_id"] = c.Query("floor_id")
	query.Filters["is_complete"] = c.Query("is_complete")

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Monthly Payment
// @Description Get a monthly dues payment by ID
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.MonthlyPaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /monthly_payments/{payment_id} [get]
func (h *MonthlyPaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pago no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Remaining Dues
// @Description Get the remaining dues for a floor and month
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param floor_id query int true "Floor ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /monthly_payments/remaining [get]
func (h *MonthlyPaymentHandler) Remaining(c *gin.Context) {
	floorID, _ := strconv.ParseUint(c.Query("floor_id"), 10, 32)
	month := c.Query("month")
	if floorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "floor_id is required"})
		return
	}

	remaining, err := h.paymentService.Remaining(c.Request.Context(), uint(floorID), month)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"floor_id":  uint(floorID),
		"month":     month,
		"remaining": remaining,
		"complete":  remaining <= 0,
	})
}

type MonthlyPaymentRequest struct {
	FloorID     uint    `json:"floor_id"`
	Month       string  `json:"month"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

// @Summary Record Monthly Payment
// @Description Record a (possibly partial) dues payment for a floor
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param request body MonthlyPaymentRequest true "Payment Data"
// @Success 201 {object} models.MonthlyPaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /monthly_payments [post]
func (h *MonthlyPaymentHandler) Create(c *gin.Context) {
	var req MonthlyPaymentRequest
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
		req.FloorID, req.Month, req.Amount, paymentDate,
		h.getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse(), "message": "Pago registrado"})
}

type UpdateMonthlyPaymentRequest struct {
	Amount      float64 `json:"amount"`
	Month       string  `json:"month"`
	PaymentDate string  `json:"payment_date"`
}

// @Summary Update Monthly Payment
// @Description Edit a payment's amount, date, or month; the balance absorbs only the difference
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body UpdateMonthlyPaymentRequest true "Payment Data"
// @Success 200 {object} models.MonthlyPaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /monthly_payments/{payment_id} [put]
func (h *MonthlyPaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req UpdateMonthlyPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Month and date default to the stored record
	current, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pago no encontrado"})
		return
	}
	if req.Month == "" {
		req.Month = current.Month
	}
	paymentDate := current.PaymentDate
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de pago inválida"})
			return
		}
	}
	if req.Amount == 0 {
		req.Amount = current.AmountPaid
	}

	payment, err := h.paymentService.Update(c.Request.Context(),
		uint(id), req.Amount, paymentDate, req.Month,
		h.getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago actualizado"})
}

// @Summary Delete Monthly Payment
// @Description Delete a payment and debit its amount from the balance
// @Tags MonthlyPayments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /monthly_payments/{payment_id} [delete]
func (h *MonthlyPaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err := h.paymentService.Delete(c.Request.Context(), uint(id),
		h.getUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pago eliminado"})
}

func (h *MonthlyPaymentHandler) getUserID(c *gin.Context) uint {
	id, exists := c.Get("userID")
	if !exists {
		return 0
	}
	switch v := id.(type) {
	case uint:
		return v
	case float64:
		return uint(v)
	default:
		return 0
	}
}

// parseDateOrToday parses a YYYY-MM-DD date, defaulting to today when empty
func parseDateOrToday(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", value)
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidMonth), errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrExceedsRemaining),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrEventClosed),
		errors.Is(err, services.ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
