package api

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/logger"
	"alcyxob/exercise-tracker/internal/service"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const errUserNotFound = "User not found"

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	log             *logger.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, log *logger.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the accepted fields for logging an exercise.
// Date is optional and defaults to today.
type CreateExerciseRequest struct {
	Description string `form:"description" json:"description" binding:"required"`
	Duration    int    `form:"duration" json:"duration" binding:"required,min=1"`
	Date        string `form:"date" json:"date"`
}

// ExerciseResponse echoes the logged exercise together with its user.
type ExerciseResponse struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntryResponse is one exercise inside a log.
type LogEntryResponse struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogResponse is the body of GET /api/users/:_id/logs.
type LogResponse struct {
	ID       string             `json:"_id"`
	Username string             `json:"username"`
	Count    int                `json:"count"`
	Log      []LogEntryResponse `json:"log"`
}

// MapExerciseToResponse converts a user and their new exercise to ExerciseResponse DTO.
func MapExerciseToResponse(user *domain.User, ex *domain.Exercise) ExerciseResponse {
	if user == nil || ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          user.ID.Hex(),
		Username:    user.Username,
		Date:        domain.FormatDate(ex.Date),
		Duration:    ex.Duration,
		Description: ex.Description,
	}
}

// MapLogToResponse converts a domain.ExerciseLog to LogResponse DTO.
func MapLogToResponse(l *domain.ExerciseLog) LogResponse {
	entries := make([]LogEntryResponse, len(l.Exercises))
	for i, ex := range l.Exercises {
		entries[i] = LogEntryResponse{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        domain.FormatDate(ex.Date),
		}
	}
	return LogResponse{
		ID:       l.User.ID.Hex(),
		Username: l.User.Username,
		Count:    len(entries),
		Log:      entries,
	}
}

// --- Handler Methods ---

// AddExercise handles POST /api/users/:_id/exercises.
func (h *ExerciseHandler) AddExercise(c *gin.Context) {
	userID, ok := parseUserID(c.Param("_id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, errUserNotFound)
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}

	user, exercise, err := h.exerciseService.AddExercise(c.Request.Context(), userID, service.NewExercise{
		Description: req.Description,
		Duration:    req.Duration,
		Date:        date,
	})
	if err != nil {
		h.handleServiceError(c, "add_exercise_failed", err)
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(user, exercise))
}

// GetLogs handles GET /api/users/:_id/logs?from=&to=&limit=.
func (h *ExerciseHandler) GetLogs(c *gin.Context) {
	userID, ok := parseUserID(c.Param("_id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, errUserNotFound)
		return
	}

	var (
		q   service.LogQuery
		err error
	)
	if qs := c.Query("from"); strings.TrimSpace(qs) != "" {
		if q.From, err = parseDate(qs); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid 'from': "+err.Error())
			return
		}
	}
	if qs := c.Query("to"); strings.TrimSpace(qs) != "" {
		if q.To, err = parseRangeEnd(qs); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid 'to': "+err.Error())
			return
		}
	}
	if q.Limit, err = parseLimit(c.Query("limit")); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	exerciseLog, err := h.exerciseService.GetLog(c.Request.Context(), userID, q)
	if err != nil {
		h.handleServiceError(c, "get_logs_failed", err)
		return
	}

	c.JSON(http.StatusOK, MapLogToResponse(exerciseLog))
}

func (h *ExerciseHandler) handleServiceError(c *gin.Context, event string, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, errUserNotFound)
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternalError(c, h.log, event, err)
	}
}
