package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
	"github.com/sjperalta/condominio-api/internal/storage"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// @Summary List Expenses
// @Description Get a paginated list of expenses
// @Tags Expenses
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param expense_type query string false "Filter: monthly | event"
// @Param event_id query int false "Filter by event"
// @Param start_date query string false "Filter from date (YYYY-MM-DD)"
// @Param end_date query string false "Filter to date (YYYY-MM-DD)"
// @Param search_term query string false "Search in description"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["expense_type"] = c.Query("expense_type")
	query.Filters["event_id"] = c.Query("event_id")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	expenses, total, err := h.expenseService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range expenses {
		responses = append(responses, expenses[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Expense
// @Description Get an expense by ID
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} models.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id} [get]
func (h *ExpenseHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	expense, err := h.expenseService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense.ToResponse()})
}

type ExpenseRequest struct {
	ExpenseType string  `json:"expense_type"`
	EventID     *uint   `json:"event_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	ExpenseDate string  `json:"expense_date"`
	PaidThrough string  `json:"paid_through"`
}

// @Summary Record Expense
// @Description Record an expense and debit the shared balance; the fund never goes negative
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body ExpenseRequest true "Expense Data"
// @Success 201 {object} models.ExpenseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := BindNestedOrFlat(c, "expense", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenseDate, err := parseDateOrToday(req.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha del gasto inválida"})
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(),
		req.ExpenseType, req.EventID, req.Description, req.Amount, expenseDate, req.PaidThrough,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense.ToResponse(), "message": "Gasto registrado"})
}

// @Summary Update Expense
// @Description Edit an expense; the balance absorbs only the difference
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Param request body ExpenseRequest true "Expense Data"
// @Success 200 {object} models.ExpenseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)

	var req ExpenseRequest
	if err := BindNestedOrFlat(c, "expense", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.expenseService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
		return
	}
	if req.Description == "" {
		req.Description = current.Description
	}
	if req.Amount == 0 {
		req.Amount = current.Amount
	}
	expenseDate := current.ExpenseDate
	if req.ExpenseDate != "" {
		expenseDate, err = time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha del gasto inválida"})
			return
		}
	}

	expense, err := h.expenseService.Update(c.Request.Context(),
		uint(id), req.Description, req.Amount, expenseDate, req.PaidThrough,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense.ToResponse(), "message": "Gasto actualizado"})
}

// @Summary Delete Expense
// @Description Delete an expense and return its amount to the balance
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	if err := h.expenseService.Delete(c.Request.Context(), uint(id),
		getUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gasto eliminado"})
}

// @Summary Upload Expense Receipt
// @Description Upload a receipt image/pdf for an expense
// @Tags Expenses
// @Accept multipart/form-data
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Param receipt formData file true "Receipt File"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id}/upload_receipt [post]
func (h *ExpenseHandler) UploadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	if c.Request.ContentLength > 0 && c.Request.ContentLength > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo demasiado grande"})
		return
	}

	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de archivo inválido"})
		return
	}

	if _, err := h.expenseService.UploadReceipt(c.Request.Context(), uint(id), file, header); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comprobante subido exitosamente"})
}

// @Summary Download Expense Receipt
// @Description Download the receipt stored for an expense
// @Tags Expenses
// @Produce application/octet-stream
// @Param expense_id path int true "Expense ID"
// @Success 200 {file} file "receipt"
// @Security BearerAuth
// @Router /expenses/{expense_id}/download_receipt [get]
func (h *ExpenseHandler) DownloadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)

	fullPath, err := h.expenseService.ReceiptPath(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comprobante no encontrado"})
		return
	}

	c.File(fullPath)
}
