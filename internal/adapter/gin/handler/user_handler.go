package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-admin-service/internal/usecase/user"
	apperrors "user-admin-service/pkg/errors"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// ErrorResponse represents a field-level error response
type ErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Errors: map[string]string{"body": "Request body must be a valid JSON object"},
		})
		return
	}

	h.log.Info("Gin CreateUser request", zap.String("email", req.Email))

	resp, err := h.uc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, "CreateUser", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	req, ok := h.bindPaging(c)
	if !ok {
		return
	}

	h.log.Info("Gin ListUsers request", zap.Int("page", req.Page), zap.Int("limit", req.Limit))

	resp, err := h.uc.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, "ListUsers", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListUsersCreatedLastDay handles GET /users/createdLastDay
func (h *UserHandler) ListUsersCreatedLastDay(c *gin.Context) {
	req, ok := h.bindPaging(c)
	if !ok {
		return
	}

	h.log.Info("Gin ListUsersCreatedLastDay request", zap.Int("page", req.Page), zap.Int("limit", req.Limit))

	resp, err := h.uc.ListUsersCreatedLastDay(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, "ListUsersCreatedLastDay", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeactivateUser handles PUT /users/deactivate/:id
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	h.log.Info("Gin DeactivateUser request", zap.Int64("id", id))

	if err := h.uc.DeactivateUser(c.Request.Context(), id); err != nil {
		h.handleError(c, "DeactivateUser", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	h.log.Info("Gin DeleteUser request", zap.Int64("id", id))

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, "DeleteUser", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) bindID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Errors: map[string]string{"id": "User ID must be a valid number"},
		})
		return 0, false
	}
	return id, true
}

// bindPaging reads page and limit query parameters. Range checks are left to the usecase.
func (h *UserHandler) bindPaging(c *gin.Context) (user.ListUsersRequest, bool) {
	fields := map[string]string{}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		fields["page"] = "Page must be a valid number"
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(user.DefaultListLimit)))
	if err != nil {
		fields["limit"] = "Limit must be a valid number"
	}

	if len(fields) > 0 {
		h.log.Warn("Invalid paging parameters", zap.Any("errors", fields))
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: fields})
		return user.ListUsersRequest{}, false
	}
	return user.ListUsersRequest{Page: page, Limit: limit}, true
}

// handleError converts usecase errors to HTTP responses.
// Validation failures are returned as a JSON field map, every other known error as plain text.
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		h.log.Warn("Gin "+op+" rejected", zap.Error(err))
		c.JSON(validationErr.HTTPStatus(), ErrorResponse{Errors: validationErr.Fields})
		return
	}

	var statuser apperrors.HTTPStatuser
	if errors.As(err, &statuser) {
		status := statuser.HTTPStatus()
		if status >= http.StatusInternalServerError {
			h.log.Error("Gin "+op+" failed", zap.Error(err), zap.NamedError("cause", errors.Unwrap(err)))
		} else {
			h.log.Warn("Gin "+op+" rejected", zap.Error(err))
		}
		c.String(status, statuser.Error())
		return
	}

	h.log.Error("Gin "+op+" failed", zap.Error(err))
	c.String(http.StatusInternalServerError, "An internal error occurred")
}
