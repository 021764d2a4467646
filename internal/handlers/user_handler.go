package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/middleware"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary List Users
// @Description Get a paginated list of users
// @Tags Users
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, email, or phone"
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Param floor_id query int false "Filter by floor"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["role"] = c.Query("role")
	query.Filters["floor_id"] = c.Query("floor_id")

	status := c.Query("status")
	if status == "" {
		status = models.StatusActive
	} else if status == "all" {
		status = ""
	}
	query.Filters["status"] = status

	users, total, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.UserResponse
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"users": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get User
// @Description Get a user by ID
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /users/{user_id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)
	user, err := h.userService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse()})
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	FloorID  *uint  `json:"floor_id"`
}

// @Summary Create User
// @Description Create a new user account (Admin)
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User Data"
// @Success 201 {object} models.UserResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		FloorID:  req.FloorID,
	}

	if err := h.userService.Create(c.Request.Context(), user, req.Password, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user.ToResponse(), "message": "Usuario creado"})
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	FloorID  *uint  `json:"floor_id"`
}

// @Summary Update User
// @Description Update a user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body UpdateUserRequest true "User Data"
// @Success 200 {object} models.UserResponse
// @Security BearerAuth
// @Router /users/{user_id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)

	user, err := h.userService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.FloorID != nil {
		user.FloorID = req.FloorID
	}

	if err := h.userService.Update(c.Request.Context(), user, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse(), "message": "Usuario actualizado"})
}

// @Summary Delete User
// @Description Soft delete a user (Admin)
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /users/{user_id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err := h.userService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado"})
}

// @Summary Restore User
// @Description Restore a soft-deleted user (Admin)
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /users/{user_id}/restore [post]
func (h *UserHandler) Restore(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err := h.userService.Restore(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario restaurado"})
}

// @Summary Toggle User Status
// @Description Toggle a user between active and inactive (Admin)
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Security BearerAuth
// @Router /users/{user_id}/toggle_status [put]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)
	user, err := h.userService.ToggleStatus(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse(), "message": "Estado actualizado"})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// @Summary Change Password
// @Description Change the current user's password
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /users/{user_id}/change_password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("user_id"), 10, 32)

	// Only admin or the owner may change a password
	if !middleware.IsAdmin(c) && middleware.GetUserID(c) != uint(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tienes acceso a esta sección"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contraseña actual y nueva son requeridas"})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), uint(id), req.CurrentPassword, req.NewPassword, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contraseña actualizada"})
}
