package api

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/logger"
	"alcyxob/exercise-tracker/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
	log         *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// CreateUserRequest accepts form-encoded or JSON bodies.
type CreateUserRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// MapUserToResponse converts a domain.User to UserResponse DTO.
func MapUserToResponse(u *domain.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{Username: u.Username, ID: u.ID.Hex()}
}

// MapUsersToResponse converts a slice of domain.User to a slice of UserResponse DTO.
func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	return responses
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternalError(c, h.log, "create_user_failed", err)
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ListUsers handles GET /api/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondInternalError(c, h.log, "list_users_failed", err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// respondInternalError logs err with request context and hides it from the client.
func respondInternalError(c *gin.Context, log *logger.Logger, event string, err error) {
	requestID, _ := getRequestIDFromContext(c)
	if log != nil {
		log.Errorw(event, "err", err, "request_id", requestID, "route", c.FullPath())
	}
	abortWithError(c, http.StatusInternalServerError, "internal server error")
}
