package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/middleware"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
)

type FloorHandler struct {
	floorService          *services.FloorService
	monthlyPaymentService *services.MonthlyPaymentService
}

func NewFloorHandler(floorService *services.FloorService, monthlyPaymentService *services.MonthlyPaymentService) *FloorHandler {
	return &FloorHandler{floorService: floorService, monthlyPaymentService: monthlyPaymentService}
}

// @Summary List Floors
// @Description Get all floors of the building
// @Tags Floors
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /floors [get]
func (h *FloorHandler) Index(c *gin.Context) {
	floors, err := h.floorService.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, f := range floors {
		responses = append(responses, f.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"floors": responses})
}

// @Summary Get Floor
// @Description Get a floor by ID
// @Tags Floors
// @Accept json
// @Produce json
// @Param floor_id path int true "Floor ID"
// @Success 200 {object} models.FloorResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /floors/{floor_id} [get]
func (h *FloorHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("floor_id"), 10, 32)
	floor, err := h.floorService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Piso no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"floor": floor.ToResponse()})
}

// @Summary Floor Dues Status
// @Description Get the remaining monthly dues for a floor and month
// @Tags Floors
// @Accept json
// @Produce json
// @Param floor_id path int true "Floor ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /floors/{floor_id}/dues [get]
func (h *FloorHandler) Dues(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("floor_id"), 10, 32)
	month := c.Query("month")

	remaining, err := h.monthlyPaymentService.Remaining(c.Request.Context(), uint(id), month)
	if err != nil {
		if err == services.ErrInvalidMonth {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Piso no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"floor_id":  uint(id),
		"month":     month,
		"remaining": remaining,
		"complete":  remaining <= 0,
	})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter: read | unread"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unread, _ := h.notificationService.CountUnread(c.Request.Context(), userID)

	var responses []interface{}
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": responses,
		"unread_count":  unread,
		"pagination":    gin.H{"total": total},
	})
}

// @Summary Get Notification
// @Description Get a notification by ID
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} models.NotificationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [get]
func (h *NotificationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	notification, err := h.notificationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notificación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification.ToResponse()})
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id}/mark_as_read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación marcada como leída"})
}

// @Summary Delete Notification
// @Description Delete a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación eliminada"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todas las notificaciones marcadas como leídas"})
}

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// @Summary Monthly Statement PDF
// @Description Download the monthly statement (dues per floor, expenses, balance) as PDF
// @Tags Reports
// @Produce application/pdf
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {file} file "statement.pdf"
// @Security BearerAuth
// @Router /reports/monthly_statement_pdf [get]
func (h *ReportHandler) MonthlyStatementPDF(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month is required"})
		return
	}

	buf, err := h.reportService.GenerateMonthlyStatementPDF(c.Request.Context(), month)
	if err != nil {
		if err == services.ErrInvalidMonth {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=statement_%s.pdf", month))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Ledger CSV
// @Description Download the combined ledger (dues, event payments, expenses) as CSV
// @Tags Reports
// @Produce text/csv
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {file} file "ledger.csv"
// @Security BearerAuth
// @Router /reports/ledger_csv [get]
func (h *ReportHandler) LedgerCSV(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	buf, err := h.reportService.GenerateLedgerCSV(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=ledger.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Ledger XLSX
// @Description Download the combined ledger as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {file} file "ledger.xlsx"
// @Security BearerAuth
// @Router /reports/ledger_xlsx [get]
func (h *ReportHandler) LedgerXLSX(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	data, filename, err := h.exportService.ExportLedgerXLSX(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	offset := (page - 1) * perPage

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": gin.H{"total": total, "page": page, "per_page": perPage}})
}
