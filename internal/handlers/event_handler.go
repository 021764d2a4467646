package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
)

type EventHandler struct {
	eventService   *services.EventService
	paymentService *services.EventPaymentService
}

func NewEventHandler(eventService *services.EventService, paymentService *services.EventPaymentService) *EventHandler {
	return &EventHandler{eventService: eventService, paymentService: paymentService}
}

// @Summary List Events
// @Description Get a paginated list of maintenance events
// @Tags Events
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter: open | closed"
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")

	events, total, err := h.eventService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range events {
		collected, err := h.eventService.Collected(c.Request.Context(), events[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		responses = append(responses, events[i].ToResponse(collected))
	}

	c.JSON(http.StatusOK, gin.H{"events": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Event
// @Description Get a maintenance event with its payments and expenses
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id} [get]
func (h *EventHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)
	event, err := h.eventService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado"})
		return
	}

	collected, err := h.eventService.Collected(c.Request.Context(), event.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var payments []interface{}
	for i := range event.Payments {
		payments = append(payments, event.Payments[i].ToResponse())
	}
	var expenses []interface{}
	for i := range event.Expenses {
		expenses = append(expenses, event.Expenses[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"event":    event.ToResponse(collected),
		"payments": payments,
		"expenses": expenses,
	})
}

type EventRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	TotalCost   float64 `json:"total_cost"`
	EventDate   string  `json:"event_date"`
}

// @Summary Create Event
// @Description Create a maintenance event; its cost is split evenly across floors
// @Tags Events
// @Accept json
// @Produce json
// @Param request body EventRequest true "Event Data"
// @Success 201 {object} models.MaintenanceEventResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req EventRequest
	if err := BindNestedOrFlat(c, "event", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre del evento es requerido"})
		return
	}

	eventDate, err := parseDateOrToday(req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha del evento inválida"})
		return
	}

	event, err := h.eventService.Create(c.Request.Context(),
		req.Name, req.Description, req.TotalCost, eventDate,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event.ToResponse(0), "message": "Evento creado"})
}

// @Summary Update Event
// @Description Update a maintenance event and recompute the per-floor share
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param request body EventRequest true "Event Data"
// @Success 200 {object} models.MaintenanceEventResponse
// @Security BearerAuth
// @Router /events/{event_id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)

	var req EventRequest
	if err := BindNestedOrFlat(c, "event", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.eventService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado"})
		return
	}
	if req.Name == "" {
		req.Name = current.Name
	}
	if req.Description == "" {
		req.Description = current.Description
	}
	if req.TotalCost == 0 {
		req.TotalCost = current.TotalCost
	}
	eventDate := current.EventDate
	if req.EventDate != "" {
		eventDate, err = time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha del evento inválida"})
			return
		}
	}

	event, err := h.eventService.Update(c.Request.Context(),
		uint(id), req.Name, req.Description, req.TotalCost, eventDate,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	collected, _ := h.eventService.Collected(c.Request.Context(), event.ID)
	c.JSON(http.StatusOK, gin.H{"event": event.ToResponse(collected), "message": "Evento actualizado"})
}

// @Summary Close Event
// @Description Close an event; closed events reject new payments
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} models.MaintenanceEventResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id}/close [post]
func (h *EventHandler) Close(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)
	event, err := h.eventService.Close(c.Request.Context(), uint(id),
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	collected, _ := h.eventService.Collected(c.Request.Context(), event.ID)
	c.JSON(http.StatusOK, gin.H{"event": event.ToResponse(collected), "message": "Evento cerrado"})
}

// @Summary Reopen Event
// @Description Reopen a closed event
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} models.MaintenanceEventResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id}/reopen [post]
func (h *EventHandler) Reopen(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)
	event, err := h.eventService.Reopen(c.Request.Context(), uint(id),
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	collected, _ := h.eventService.Collected(c.Request.Context(), event.ID)
	c.JSON(http.StatusOK, gin.H{"event": event.ToResponse(collected), "message": "Evento reabierto"})
}

// @Summary Delete Event
// @Description Delete an event with its payments and expenses; the balance absorbs the net effect
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /events/{event_id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err := h.eventService.Delete(c.Request.Context(), uint(id),
		getUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Evento eliminado"})
}

// @Summary Pending Floors
// @Description List floors that still owe part of the event's quota
// @Tags Events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /events/{event_id}/pending_floors [get]
func (h *EventHandler) PendingFloors(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("event_id"), 10, 32)
	pending, err := h.paymentService.PendingFloors(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_floors": pending})
}

// getUserID extracts the authenticated user's ID from the context
func getUserID(c *gin.Context) uint {
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
